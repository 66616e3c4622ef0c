package config

import (
	"os"
	"path/filepath"
)

// FindUpward 从 startDir 开始向上逐级查找 relPath（例如 configs/conf.yml）。
// 这样无论从仓库根还是 cmd 子目录启动都能找到配置。
func FindUpward(startDir, relPath string) (string, bool) {
	dir := startDir
	for {
		candidate := filepath.Join(dir, relPath)
		if fileExist(candidate) {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func fileExist(fileName string) bool {
	_, err := os.Stat(fileName)
	return err == nil
}
