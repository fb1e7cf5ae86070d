package feature

import "strings"

// 识别的游戏模式，大小写敏感，必须完全匹配。
const (
	ModeSinglePlayer = "Single-player"
	ModeCoop         = "Co-op"
	ModeMultiPlayer  = "Multi-player"
)

// ModeFlags 是从模式字符串拆出的三个 0/1 标志。
type ModeFlags struct {
	SinglePlayer float64
	Coop         float64
	MultiPlayer  float64
}

// ParseModes 把逗号分隔的模式字符串拆成三个标志。
// 未知 token 忽略；空字符串得到全 0。
func ParseModes(modes string) ModeFlags {
	var flags ModeFlags
	if strings.TrimSpace(modes) == "" {
		return flags
	}
	for _, token := range strings.Split(modes, ",") {
		switch strings.TrimSpace(token) {
		case ModeSinglePlayer:
			flags.SinglePlayer = 1
		case ModeCoop:
			flags.Coop = 1
		case ModeMultiPlayer:
			flags.MultiPlayer = 1
		}
	}
	return flags
}
