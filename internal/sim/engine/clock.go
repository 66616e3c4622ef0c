package engine

import "time"

// Clock 提供“现在”。引擎本身只接收显式的 now，
// Clock 给外层的 tick 循环和测试用（测试注入假时钟）。
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
