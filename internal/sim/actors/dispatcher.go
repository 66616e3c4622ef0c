package actors

import (
	"context"
	"errors"
	"time"

	"VillageWars/internal/sim/engine"
	"VillageWars/internal/sim/entity/domain"
	"VillageWars/modules/kit/errx"
	"VillageWars/modules/kit/tracex"

	"github.com/asynkron/protoactor-go/actor"
)

// Dispatcher 把单村结算请求投递到 per-village actor，实现 engine.Dispatcher。
// RequestFuture 的超时略大于单村预算：预算内超时由 ProcessVillage 自己上报，
// 这里的超时只兜底邮箱积压的极端情况。
type Dispatcher struct {
	root    *actor.RootContext
	manager *actor.PID
	timeout time.Duration
}

func NewDispatcher(root *actor.RootContext, manager *actor.PID, villageBudget time.Duration) *Dispatcher {
	return &Dispatcher{
		root:    root,
		manager: manager,
		timeout: villageBudget * 2,
	}
}

func (d *Dispatcher) TickVillage(ctx context.Context, id domain.VillageID, now time.Time) (engine.VillageReport, error) {
	msg := &TickVillage{VillageID: id, Now: now}
	if traceID, ok := tracex.TraceIDFrom(ctx); ok {
		msg.TraceID = traceID
	}
	fut := d.root.RequestFuture(d.manager, msg, d.timeout)
	raw, err := fut.Result()
	if err != nil {
		if errors.Is(err, actor.ErrTimeout) {
			return engine.VillageReport{}, errx.ErrTimeout.WithData("village_id", int64(id))
		}
		return engine.VillageReport{}, errx.ErrUnavailable.WithCause(err)
	}
	res, ok := raw.(*TickVillageResult)
	if !ok {
		return engine.VillageReport{}, errx.ErrInternal.WithData("reason", "unexpected actor response")
	}
	return res.Report, res.Err
}
