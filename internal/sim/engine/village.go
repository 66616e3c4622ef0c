package engine

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"VillageWars/internal/shared/gameconfig/building"
	"VillageWars/internal/sim/entity"
	"VillageWars/internal/sim/entity/domain"
	"VillageWars/internal/sim/errs"
	"VillageWars/internal/sim/service"
)

// 无仓储建筑时的基础容量（主楼自带的存量空间）。
const baseStorageCapacity int64 = 800

// ProcessVillage 结算单个村庄：资源累积 → 队列推进 → 写回。
// 同一村庄永远只被一个调用者处理（Dispatcher 保证），
// 所以这里不需要任何村内锁。
func (e *Engine) ProcessVillage(ctx context.Context, id domain.VillageID, now time.Time) (VillageReport, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.VillageBudget)
	defer cancel()

	rep := VillageReport{VillageID: id}

	v, err := e.store.LoadVillage(ctx, id)
	if errors.Is(err, entity.ErrVillageNotFound) {
		// 村庄已经没了：它的队列任务不能静默消失，标记取消并上报。
		n, cerr := e.cancelOrphanJobs(ctx, id)
		rep.JobsCancelled += n
		return rep, cerr
	}
	if err != nil {
		return rep, errs.Wrap("engine.LoadVillage", errs.KindInfra, err, map[string]any{"village_id": id})
	}

	// (1) 资源累积。elapsed ≤ 0 说明本 tick 已结算过（幂等保护）。
	if elapsed := now.Sub(v.UpdatedAt); elapsed > 0 {
		delta, aerr := service.AccumulateResources(v, elapsed, e.cfg.Speed)
		if aerr != nil {
			return rep, aerr
		}
		v.Amounts = delta.Amounts
		v.UpdatedAt = delta.UpdatedAt
		rep.Gained = delta.Gained
	}

	// (2) 队列推进。
	buildings, err := e.store.LoadBuildings(ctx, id)
	if err != nil {
		return rep, errs.Wrap("engine.LoadBuildings", errs.KindInfra, err, map[string]any{"village_id": id})
	}
	stacks, err := e.store.LoadTroopStacks(ctx, id)
	if err != nil {
		return rep, errs.Wrap("engine.LoadTroopStacks", errs.KindInfra, err, map[string]any{"village_id": id})
	}
	jobs, err := e.store.LoadQueueJobs(ctx, id)
	if err != nil {
		return rep, errs.Wrap("engine.LoadQueueJobs", errs.KindInfra, err, map[string]any{"village_id": id})
	}

	res, err := service.ResolveDueJobs(jobs, buildings, stacks, now, e.defs, service.QueueConfig{
		Parallelism: e.cfg.QueueParallelism,
		Speed:       e.cfg.Speed,
	})
	if err != nil {
		return rep, err
	}
	rep.JobsCompleted = len(res.Completed)
	rep.JobsPromoted = len(res.Promoted)
	rep.JobsCancelled = len(res.Cancelled)
	for _, c := range res.Cancelled {
		e.log.WithContext(ctx).Warn("queue job cancelled",
			zap.Int64("village_id", int64(id)),
			zap.Int64("job_id", int64(c.Job.ID)),
			zap.Error(c.Reason),
		)
	}

	// 有建筑完工时重算产量与容量（等级变了，曲线跟着变）。
	builtSomething := false
	for _, j := range res.Completed {
		if j.Category == domain.JobBuilding {
			builtSomething = true
			break
		}
	}
	if builtSomething {
		e.recomputeVillageStats(v, res.Buildings)
	}

	// (3) 写回，村庄粒度原子。版本冲突整村放弃，下个 tick 自愈。
	if err := e.store.SaveVillage(ctx, v); err != nil {
		return rep, err
	}
	if len(res.Completed) > 0 || len(res.Cancelled) > 0 {
		if err := e.store.SaveBuildings(ctx, id, res.Buildings); err != nil {
			return rep, errs.Wrap("engine.SaveBuildings", errs.KindInfra, err, map[string]any{"village_id": id})
		}
		if err := e.store.SaveTroopStacks(ctx, id, res.Stacks); err != nil {
			return rep, errs.Wrap("engine.SaveTroopStacks", errs.KindInfra, err, map[string]any{"village_id": id})
		}
	}
	for _, j := range res.Completed {
		if err := e.store.SaveQueueJob(ctx, j); err != nil {
			return rep, errs.Wrap("engine.SaveQueueJob", errs.KindInfra, err, map[string]any{"job_id": j.ID})
		}
	}
	for _, j := range res.Promoted {
		if err := e.store.SaveQueueJob(ctx, j); err != nil {
			return rep, errs.Wrap("engine.SaveQueueJob", errs.KindInfra, err, map[string]any{"job_id": j.ID})
		}
	}
	for _, c := range res.Cancelled {
		if err := e.store.SaveQueueJob(ctx, c.Job); err != nil {
			return rep, errs.Wrap("engine.SaveQueueJob", errs.KindInfra, err, map[string]any{"job_id": c.Job.ID})
		}
	}
	return rep, nil
}

// recomputeVillageStats 从建筑等级反推产量与容量。
// 容量：基础 + 仓库（木/泥/铁）或粮仓（粮）；产量：各产量建筑之和。
func (e *Engine) recomputeVillageStats(v *domain.Village, bs []*domain.BuildingInstance) {
	var rates domain.Resources
	warehouse, granary := int64(0), int64(0)
	for _, b := range bs {
		def, ok := e.defs.Building(b.Key)
		if !ok {
			continue
		}
		switch def.Category {
		case building.CategoryResource:
			rate := def.RateAt(b.Level)
			switch def.Resource {
			case "wood":
				rates.Wood += rate
			case "clay":
				rates.Clay += rate
			case "iron":
				rates.Iron += rate
			case "crop":
				rates.Crop += rate
			}
		case building.CategoryStorage:
			switch b.Key {
			case "granary":
				granary += def.CapacityAt(b.Level)
			default:
				warehouse += def.CapacityAt(b.Level)
			}
		}
	}
	v.Rates = rates
	v.Capacity = domain.Resources{
		Wood: baseStorageCapacity + warehouse,
		Clay: baseStorageCapacity + warehouse,
		Iron: baseStorageCapacity + warehouse,
		Crop: baseStorageCapacity + granary,
	}
}

func (e *Engine) cancelOrphanJobs(ctx context.Context, id domain.VillageID) (int, error) {
	jobs, err := e.store.LoadQueueJobs(ctx, id)
	if err != nil {
		return 0, errs.Wrap("engine.LoadQueueJobs", errs.KindInfra, err, map[string]any{"village_id": id})
	}
	n := 0
	for _, j := range jobs {
		if j.Status == domain.JobCompleted || j.Status == domain.JobCancelled {
			continue
		}
		j.Status = domain.JobCancelled
		if err := e.store.SaveQueueJob(ctx, j); err != nil {
			return n, errs.Wrap("engine.SaveQueueJob", errs.KindInfra, err, map[string]any{"job_id": j.ID})
		}
		n++
		e.log.WithContext(ctx).Warn("job cancelled: village gone",
			zap.Int64("village_id", int64(id)),
			zap.Int64("job_id", int64(j.ID)),
		)
	}
	return n, nil
}
