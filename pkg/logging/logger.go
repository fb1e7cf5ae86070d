// Package logging 基于 zerolog 构建结构化日志。
//
// 生产环境输出 JSON，开发环境可用 console 格式：
//
//	log := logging.New(logging.Config{Level: "debug", Format: "console"})
//	log.Info().Int64("user_id", uid).Msg("recommend")
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config 是日志配置。
type Config struct {
	Level  string    // trace / debug / info / warn / error，默认 info
	Format string    // json / console，默认 json
	Output io.Writer // 默认 os.Stderr
}

// New 按配置构建 logger。无法识别的级别按 info 处理。
func New(cfg Config) zerolog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if strings.EqualFold(cfg.Format, "console") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}
	zerolog.TimeFieldFormat = time.RFC3339
	return zerolog.New(out).Level(ParseLevel(cfg.Level)).With().Timestamp().Logger()
}

// ParseLevel 解析日志级别，空串或未知值返回 info。
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "warning":
		return zerolog.WarnLevel
	case "":
		return zerolog.InfoLevel
	}
	l, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || l == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return l
}

// Component 派生带 component 字段的子 logger。
func Component(log zerolog.Logger, name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}
