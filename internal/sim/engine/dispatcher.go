package engine

import (
	"context"
	"time"

	"VillageWars/internal/sim/entity/domain"
)

// VillageProcessor 是单村结算的入口，由 Engine 实现；
// actors 包用它把每个村庄的处理串到独立 actor 里。
type VillageProcessor interface {
	ProcessVillage(ctx context.Context, id domain.VillageID, now time.Time) (VillageReport, error)
}

// Dispatcher 决定单村结算怎么执行：直接调用，或经由 per-village actor。
// 不管哪种实现，同一村庄的处理都必须串行（单写者）。
type Dispatcher interface {
	TickVillage(ctx context.Context, id domain.VillageID, now time.Time) (VillageReport, error)
}

// directDispatcher 直接在调用方 goroutine 上执行；
// ProcessVillage 结合 errgroup 的去重保证单写者（每个村庄 id 只派发一次）。
type directDispatcher struct {
	p VillageProcessor
}

func (d directDispatcher) TickVillage(ctx context.Context, id domain.VillageID, now time.Time) (VillageReport, error) {
	return d.p.ProcessVillage(ctx, id, now)
}
