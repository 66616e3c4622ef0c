package serverconfig

import (
	"os"
	"path/filepath"

	"VillageWars/internal/shared/config"
)

const defaultConfigRelPath = "configs/conf.yml"

var Conf Config

// Load 读服务配置。
// 约定：
// 1) 传入 cfgName（相对/绝对路径）则优先使用；
// 2) 否则从当前目录开始向上查找 `configs/conf.yml`。
func Load(cfgName string) {
	curDir, err := os.Getwd()
	if err != nil {
		panic(err)
	}

	path := cfgName
	switch {
	case path == "":
		found, ok := config.FindUpward(curDir, defaultConfigRelPath)
		if !ok {
			panic("config file not exist, searched configs/conf.yml from: " + curDir)
		}
		path = found
	case !filepath.IsAbs(path):
		path = filepath.Join(curDir, path)
	}

	config.Load(path, &Conf)
	applyDefaults(&Conf)
}

// applyDefaults 回填零值参数，避免配置缺项把整个世界“暂停”。
func applyDefaults(c *Config) {
	if c.Sim.TickTimeS <= 0 {
		c.Sim.TickTimeS = 60
	}
	if c.Sim.Speed <= 0 {
		c.Sim.Speed = 1
	}
	if c.Sim.WinnerDampening <= 0 {
		c.Sim.WinnerDampening = 0.2
	}
	if c.Sim.RaidLootShare <= 0 {
		c.Sim.RaidLootShare = 1
	}
	if c.Sim.CancelWindow <= 0 {
		c.Sim.CancelWindow = 0.5
	}
	if c.Sim.QueueParallelism <= 0 {
		c.Sim.QueueParallelism = 1
	}
	if c.Sim.VillageBudgetMS <= 0 {
		c.Sim.VillageBudgetMS = 2000
	}
	if c.Sim.VillageParallel <= 0 {
		c.Sim.VillageParallel = 8
	}
	if c.Sim.TickBudgetMS <= 0 {
		c.Sim.TickBudgetMS = 45000
	}
	if c.Store.Driver == "" {
		c.Store.Driver = "memory"
	}
}
