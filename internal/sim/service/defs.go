package service

import (
	"VillageWars/internal/shared/gameconfig/building"
	"VillageWars/internal/shared/gameconfig/unit"
)

// Defs 是启动时加载一次的静态数值表，模拟期间只读。
// 显式传入各 resolver，不让纯函数去摸全局状态。
type Defs struct {
	Units     map[string]*unit.Unit
	Buildings map[string]*building.Building
}

// LoadedDefs 从已加载的 gameconfig 表构建 Defs。
// 调用前必须先 unit.Load() / building.Load()。
func LoadedDefs() Defs {
	d := Defs{
		Units:     make(map[string]*unit.Unit),
		Buildings: make(map[string]*building.Building),
	}
	for k, v := range unit.All() {
		d.Units[k] = v
	}
	for _, item := range building.BuildingConf.List {
		d.Buildings[item.Key] = item
	}
	return d
}

func (d Defs) Unit(key string) (*unit.Unit, bool) {
	u, ok := d.Units[key]
	return u, ok
}

func (d Defs) Building(key string) (*building.Building, bool) {
	b, ok := d.Buildings[key]
	return b, ok
}
