package actors

import (
	"context"
	"time"

	"VillageWars/internal/sim/engine"
	"VillageWars/internal/sim/entity/domain"
	"VillageWars/modules/kit/tracex"
)

// TickVillage 请求单个村庄结算到 now。
// 进程内消息，直接用普通结构体，不走序列化。
// TraceID 随消息跨 actor 邮箱透传，村庄侧日志挂回本 tick 的 trace。
type TickVillage struct {
	VillageID domain.VillageID
	Now       time.Time
	TraceID   string
}

// Context 还原处理该消息用的 ctx。取消不跨邮箱传递，只透传 trace。
func (m *TickVillage) Context() context.Context {
	ctx := context.Background()
	if m.TraceID != "" {
		ctx = tracex.WithTraceID(ctx, m.TraceID)
	}
	return ctx
}

type TickVillageResult struct {
	Report engine.VillageReport
	Err    error
}
