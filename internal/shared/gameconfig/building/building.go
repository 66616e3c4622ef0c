package building

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"
)

const buildingFile = "Building.json"

// Category 区分建筑对模拟的作用方式。
type Category string

const (
	// CategoryResource 产量建筑：woodcutter/clay_pit/iron_mine/cropland
	CategoryResource Category = "resource"
	// CategoryStorage 仓储建筑：warehouse/granary
	CategoryStorage Category = "storage"
	// CategoryMilitary 军事建筑：barracks/stable/rally_point/wall
	CategoryMilitary Category = "military"
	// CategoryInfra 基础建筑：main_building 等
	CategoryInfra Category = "infra"
)

type Cost struct {
	Wood int64 `json:"wood"`
	Clay int64 `json:"clay"`
	Iron int64 `json:"iron"`
	Crop int64 `json:"crop"`
}

// Building 是建筑静态数值（加载后只读）。
// 升级曲线是几何级数：cost(n) = base * costFactor^(n-1)，时间/产量/容量同理。
type Building struct {
	Key        string   `json:"key"`
	Name       string   `json:"name"`
	Category   Category `json:"category"`
	MaxLevel   int      `json:"max_level"`
	BaseCost   Cost     `json:"base_cost"`
	CostFactor float64  `json:"cost_factor"`
	BaseTime   int64    `json:"base_time"` // 秒（1 级，1 倍速）
	TimeFactor float64  `json:"time_factor"`
	// 产量建筑：1 级每小时产量与增长系数；Resource 指明产哪种资源
	Resource   string  `json:"resource,omitempty"`
	BaseRate   int64   `json:"base_rate,omitempty"`
	RateFactor float64 `json:"rate_factor,omitempty"`
	// 仓储建筑：1 级容量与增长系数
	BaseCapacity   int64   `json:"base_capacity,omitempty"`
	CapacityFactor float64 `json:"capacity_factor,omitempty"`
}

// CostAt 返回升到 level 级需要的资源。
func (b *Building) CostAt(level int) Cost {
	f := geom(b.CostFactor, level)
	return Cost{
		Wood: scale(b.BaseCost.Wood, f),
		Clay: scale(b.BaseCost.Clay, f),
		Iron: scale(b.BaseCost.Iron, f),
		Crop: scale(b.BaseCost.Crop, f),
	}
}

// DurationAt 返回升到 level 级的建造时长（秒，未除世界速度）。
func (b *Building) DurationAt(level int) int64 {
	return scale(b.BaseTime, geom(b.TimeFactor, level))
}

// RateAt 返回 level 级的每小时产量（产量建筑以外返回 0）。
func (b *Building) RateAt(level int) int64 {
	if b.Category != CategoryResource || level <= 0 {
		return 0
	}
	return scale(b.BaseRate, geom(b.RateFactor, level))
}

// CapacityAt 返回 level 级提供的仓储容量（仓储建筑以外返回 0）。
func (b *Building) CapacityAt(level int) int64 {
	if b.Category != CategoryStorage || level <= 0 {
		return 0
	}
	return scale(b.BaseCapacity, geom(b.CapacityFactor, level))
}

func geom(factor float64, level int) float64 {
	if factor <= 0 {
		factor = 1
	}
	return math.Pow(factor, float64(level-1))
}

func scale(base int64, f float64) int64 {
	return int64(math.Round(float64(base) * f))
}

type buildingConf struct {
	Title     string      `json:"title"`
	List      []*Building `json:"list"`
	buildings map[string]*Building
}

var BuildingConf = &buildingConf{}

// Load 保持与 unit 配置模块一致的调用方式。
func Load() {
	BuildingConf.Load()
}

func (b *buildingConf) Load() {
	if b == nil {
		panic("load Building config failed: BuildingConf is nil")
	}

	_, file, _, ok := runtime.Caller(0)
	if !ok {
		panic("load Building config failed: runtime.Caller(0) error")
	}

	path := filepath.Join(filepath.Dir(file), buildingFile)
	raw, err := os.ReadFile(path)
	if err != nil {
		panic(fmt.Errorf("load Building config failed: read %q: %w", path, err))
	}
	if err := json.Unmarshal(raw, b); err != nil {
		panic(fmt.Errorf("load Building config failed: unmarshal %q: %w", path, err))
	}

	b.buildings = make(map[string]*Building, len(b.List))
	for _, item := range b.List {
		if item.Key == "" || item.MaxLevel <= 0 {
			panic(fmt.Errorf("load Building config failed: bad building entry in %q", path))
		}
		if _, exists := b.buildings[item.Key]; exists {
			panic(fmt.Errorf("load Building config failed: duplicate building key %q", item.Key))
		}
		b.buildings[item.Key] = item
	}
}

func (b *buildingConf) GetBuilding(key string) (*Building, bool) {
	if b == nil || b.buildings == nil {
		return nil, false
	}
	v, ok := b.buildings[key]
	return v, ok
}

func GetBuilding(key string) (*Building, bool) {
	return BuildingConf.GetBuilding(key)
}
