package unit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const unitFile = "Unit.json"

// Tribe 是封闭的种族枚举，来源 JSON 用字符串，加载时校验。
type Tribe string

const (
	TribeRomans  Tribe = "romans"
	TribeGauls   Tribe = "gauls"
	TribeTeutons Tribe = "teutons"
)

// Cost 按四种资源计价。
type Cost struct {
	Wood int64 `json:"wood"`
	Clay int64 `json:"clay"`
	Iron int64 `json:"iron"`
	Crop int64 `json:"crop"`
}

// Unit 是兵种静态数值（加载后只读）。
type Unit struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Tribe       Tribe  `json:"tribe"`
	Attack      int64  `json:"attack"`
	DefInfantry int64  `json:"def_infantry"`
	DefCavalry  int64  `json:"def_cavalry"`
	Speed       int64  `json:"speed"` // 格/小时
	Carry       int64  `json:"carry"` // 负重
	Cavalry     bool   `json:"cavalry"`
	TrainTime   int64  `json:"train_time"` // 秒/个（1 倍速）
	Cost        Cost   `json:"cost"`
	Upkeep      int64  `json:"upkeep"` // 粮耗
}

type unitConf struct {
	Title string  `json:"title"`
	List  []*Unit `json:"list"`
	units map[string]*Unit
}

var UnitConf = &unitConf{}

// Load 保持与 building 配置模块一致的调用方式。
func Load() {
	UnitConf.Load()
}

func (u *unitConf) Load() {
	if u == nil {
		panic("load Unit config failed: UnitConf is nil")
	}

	_, file, _, ok := runtime.Caller(0)
	if !ok {
		panic("load Unit config failed: runtime.Caller(0) error")
	}

	path := filepath.Join(filepath.Dir(file), unitFile)
	raw, err := os.ReadFile(path)
	if err != nil {
		panic(fmt.Errorf("load Unit config failed: read %q: %w", path, err))
	}
	if err := json.Unmarshal(raw, u); err != nil {
		panic(fmt.Errorf("load Unit config failed: unmarshal %q: %w", path, err))
	}

	u.units = make(map[string]*Unit, len(u.List))
	for _, item := range u.List {
		if item.Key == "" {
			panic(fmt.Errorf("load Unit config failed: empty unit key in %q", path))
		}
		switch item.Tribe {
		case TribeRomans, TribeGauls, TribeTeutons:
		default:
			panic(fmt.Errorf("load Unit config failed: unknown tribe %q for unit %q", item.Tribe, item.Key))
		}
		if _, exists := u.units[item.Key]; exists {
			panic(fmt.Errorf("load Unit config failed: duplicate unit key %q", item.Key))
		}
		u.units[item.Key] = item
	}
}

func (u *unitConf) GetUnit(key string) (*Unit, bool) {
	if u == nil || u.units == nil {
		return nil, false
	}
	v, ok := u.units[key]
	return v, ok
}

func (u *unitConf) All() map[string]*Unit {
	if u == nil {
		return nil
	}
	return u.units
}

func GetUnit(key string) (*Unit, bool) {
	return UnitConf.GetUnit(key)
}

func All() map[string]*Unit {
	return UnitConf.All()
}
