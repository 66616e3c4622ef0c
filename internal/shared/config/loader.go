package config

import (
	"fmt"
	"log"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

var loadMu sync.Mutex

// Load 把 configPath 指向的配置文件（yml/json，按扩展名识别）解码进 out。
//
// 约定：
// 1) 配置文件必须存在，缺失直接 panic（配置错误没有降级的意义）；
// 2) 服务配置（conf.yml）启用 fsnotify 热更新；静态游戏数值表用 LoadOnce。
func Load(configPath string, out any) {
	loadMu.Lock()
	defer loadMu.Unlock()

	v := newViper(configPath)
	v.OnConfigChange(func(e fsnotify.Event) {
		log.Println("配置文件变更:", e.Name)
		loadMu.Lock()
		defer loadMu.Unlock()
		if err := v.Unmarshal(out); err != nil {
			log.Printf("配置热更新解码失败（保留旧配置）: %v", err)
		}
	})
	v.WatchConfig()

	if err := v.Unmarshal(out); err != nil {
		panic(fmt.Errorf("unmarshal config %q: %w", configPath, err))
	}
}

// LoadOnce 只加载一次，不监听变更。用于启动时读入的静态数值表。
func LoadOnce(configPath string, out any) {
	v := newViper(configPath)
	if err := v.Unmarshal(out); err != nil {
		panic(fmt.Errorf("unmarshal config %q: %w", configPath, err))
	}
}

func newViper(configPath string) *viper.Viper {
	if !fileExist(configPath) {
		panic(fmt.Sprintf("config file not exist, configPath=%v", configPath))
	}
	v := viper.New()
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		panic(fmt.Errorf("read config %q: %w", configPath, err))
	}
	return v
}
