package logs

import (
	"io"
	"os"
	"strings"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"VillageWars/internal/shared/serverconfig"
)

var logger *zap.Logger = zap.NewNop()

// Init 初始化全局 logger：控制台彩色输出 + 文件 JSON 输出（lumberjack 切割）。
func Init(appName string, cfg serverconfig.LogConfig) error {
	// 解析日志级别，解析失败回退到 info。
	lvl := zapcore.InfoLevel
	if err := lvl.UnmarshalText([]byte(strings.ToLower(cfg.Level))); err != nil {
		lvl = zapcore.InfoLevel
	}
	// AtomicLevel 方便未来动态调整级别（热更新）。
	atomicLevel := zap.NewAtomicLevelAt(lvl)

	encoderCfg := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stack",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	consoleCfg := encoderCfg
	consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	consoleEncoder := zapcore.NewConsoleEncoder(consoleCfg)

	fileCfg := encoderCfg
	fileCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	jsonEncoder := zapcore.NewJSONEncoder(fileCfg)

	// 文件输出带切割；未配置路径时丢弃文件输出（只留控制台）。
	var fileWriter io.Writer
	if cfg.FileDir != "" {
		fileWriter = &lumberjack.Logger{
			Filename:   cfg.FileDir,
			MaxSize:    max(1, cfg.MaxSize),
			MaxBackups: max(0, cfg.MaxBackups),
			MaxAge:     max(0, cfg.MaxAge),
			Compress:   cfg.Compress,
		}
	} else {
		fileWriter = io.Discard
	}

	consoleSyncer := zapcore.Lock(os.Stderr)
	fileSyncer := zapcore.AddSync(fileWriter)

	// 两路 core：控制台彩色、文件 JSON。不把 ANSI 转义写进日志文件。
	core := zapcore.NewCore(consoleEncoder, zapcore.NewMultiWriteSyncer(consoleSyncer, fileSyncer), atomicLevel)
	if cfg.FileDir != "" {
		core = zapcore.NewTee(
			zapcore.NewCore(consoleEncoder, consoleSyncer, atomicLevel),
			zapcore.NewCore(jsonEncoder, fileSyncer, atomicLevel),
		)
	}

	opts := []zap.Option{zap.AddCaller()}
	if cfg.Dev {
		opts = append(opts, zap.Development(), zap.AddStacktrace(zapcore.WarnLevel))
	}

	l := zap.New(core, opts...).Named(appName)
	if logger != nil {
		_ = logger.Sync()
	}
	logger = l
	return nil
}

// Logger 返回底层 zap.Logger（给 logx 适配器 / 基础设施用）。
func Logger() *zap.Logger {
	return logger
}

// 常用级别的便捷封装；logger 未初始化时 no-op，避免空指针 panic。

func Debug(msg string, fields ...zap.Field) {
	if logger != nil {
		logger.Debug(msg, fields...)
	}
}

func Info(msg string, fields ...zap.Field) {
	if logger != nil {
		logger.Info(msg, fields...)
	}
}

func Warn(msg string, fields ...zap.Field) {
	if logger != nil {
		logger.Warn(msg, fields...)
	}
}

func Error(msg string, fields ...zap.Field) {
	if logger != nil {
		logger.Error(msg, fields...)
	}
}

func Fatal(msg string, fields ...zap.Field) {
	if logger != nil {
		logger.Fatal(msg, fields...)
	}
}
