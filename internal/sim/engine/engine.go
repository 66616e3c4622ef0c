package engine

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"VillageWars/internal/shared/serverconfig"
	"VillageWars/internal/shared/utils"
	"VillageWars/internal/sim/entity/domain"
	"VillageWars/internal/sim/errs"
	"VillageWars/internal/sim/service"
	"VillageWars/internal/sim/service/port"
	"VillageWars/modules/kit/errx"
	"VillageWars/modules/kit/logx"
	"VillageWars/modules/kit/tracex"
)

// Config 是世界模拟参数，构造时显式注入，决不读全局可变状态。
type Config struct {
	Speed            float64
	WinnerDampening  float64
	RaidLootShare    float64
	CancelWindow     float64
	QueueParallelism int
	VillageBudget    time.Duration
	VillageParallel  int
	TickBudget       time.Duration
}

// ConfigFromServer 把 serverconfig 的 sim 段转成引擎配置。
func ConfigFromServer(sc serverconfig.SimConfig) Config {
	return Config{
		Speed:            sc.Speed,
		WinnerDampening:  sc.WinnerDampening,
		RaidLootShare:    sc.RaidLootShare,
		CancelWindow:     sc.CancelWindow,
		QueueParallelism: sc.QueueParallelism,
		VillageBudget:    time.Duration(sc.VillageBudgetMS) * time.Millisecond,
		VillageParallel:  sc.VillageParallel,
		TickBudget:       time.Duration(sc.TickBudgetMS) * time.Millisecond,
	}
}

// Engine 按 tick 推进整个世界：资源结算、队列推进、行军与战斗。
type Engine struct {
	store    port.Store
	defs     service.Defs
	cfg      Config
	ids      *utils.Snowflake
	log      logx.Logger
	dispatch Dispatcher
}

func New(store port.Store, defs service.Defs, cfg Config, ids *utils.Snowflake, log logx.Logger) *Engine {
	if cfg.Speed <= 0 {
		cfg.Speed = 1
	}
	if cfg.QueueParallelism <= 0 {
		cfg.QueueParallelism = 1
	}
	if cfg.VillageBudget <= 0 {
		cfg.VillageBudget = 2 * time.Second
	}
	if cfg.VillageParallel <= 0 {
		cfg.VillageParallel = 8
	}
	if cfg.TickBudget <= 0 {
		cfg.TickBudget = 45 * time.Second
	}
	if log == nil {
		log = logx.NewZapLogger(nil)
	}
	e := &Engine{
		store: store,
		defs:  defs,
		cfg:   cfg,
		ids:   ids,
		log:   log,
	}
	e.dispatch = directDispatcher{p: e}
	return e
}

// WithDispatcher 替换单村执行策略（actors.Dispatcher 走 per-village actor）。
func (e *Engine) WithDispatcher(d Dispatcher) *Engine {
	if d != nil {
		e.dispatch = d
	}
	return e
}

// Tick 把世界推进到 now。
//
// 步骤：(1) 待结算村庄的资源累积 + 队列推进（村庄间并行、村庄内串行），
// (2) 到期行军推进（到达触发战斗结算，然后回程）。
// 幂等：同一个 now 连跑两次，第二次不会产生新的变更
// （由 updated_at / 任务与行军的 status 保证）。
// 只有“拉取待办清单”失败会让 Tick 返回错误；单实体错误收进 report.Errors，
// 下个 tick 自愈。
func (e *Engine) Tick(ctx context.Context, now time.Time) (*TickReport, error) {
	ctx = tracex.WithTraceID(ctx, tracex.NewTraceID())
	ctx, cancel := context.WithTimeout(ctx, e.cfg.TickBudget)
	defer cancel()

	log := e.log.WithContext(ctx)
	report := &TickReport{}

	villageIDs, err := e.dueVillageIDs(ctx, now)
	if err != nil {
		return report, err
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.VillageParallel)
	for _, id := range villageIDs {
		id := id
		g.Go(func() error {
			rep, err := e.dispatch.TickVillage(gctx, id, now)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				report.mergeVillage(rep)
			case errors.Is(err, errx.ErrTimeout) || errors.Is(err, context.DeadlineExceeded):
				// 单村超预算：跳过，下个 tick 再来。不拖垮整个世界。
				report.Skipped++
				log.Warn("village tick over budget, skipped", zap.Int64("village_id", int64(id)))
			case errors.Is(err, port.ErrVersionConflict):
				report.Conflicts++
				log.Warn("village save conflict, retry next tick", zap.Int64("village_id", int64(id)))
			default:
				report.Errors = append(report.Errors, err)
				log.Error("village tick failed", zap.Int64("village_id", int64(id)), zap.Error(err))
			}
			// 村庄之间互不影响，永远不让一个村的失败打断其他村。
			return nil
		})
	}
	_ = g.Wait()

	if err := e.tickMovements(ctx, now, report, log); err != nil {
		return report, err
	}

	log.Info("tick done",
		zap.Time("now", now),
		zap.Int("villages", report.Villages),
		zap.Int("skipped", report.Skipped),
		zap.Int("conflicts", report.Conflicts),
		zap.Int("movements", report.MovementsAdvanced),
		zap.Int("battles", report.Battles),
		zap.Int("errors", len(report.Errors)),
	)
	return report, nil
}

// dueVillageIDs 合并两类待办：资源待结算的村庄，和有到期队列任务的村庄
// （后者可能刚结算过资源，但队列照样要推进）。
func (e *Engine) dueVillageIDs(ctx context.Context, now time.Time) ([]domain.VillageID, error) {
	villages, err := e.store.LoadVillagesDue(ctx, now)
	if err != nil {
		return nil, errs.Wrap("engine.LoadVillagesDue", errs.KindInfra, err, nil)
	}
	jobs, err := e.store.LoadDueQueueJobs(ctx, now)
	if err != nil {
		return nil, errs.Wrap("engine.LoadDueQueueJobs", errs.KindInfra, err, nil)
	}

	seen := make(map[domain.VillageID]bool, len(villages)+len(jobs))
	ids := make([]domain.VillageID, 0, len(villages)+len(jobs))
	for _, v := range villages {
		if !seen[v.ID] {
			seen[v.ID] = true
			ids = append(ids, v.ID)
		}
	}
	for _, j := range jobs {
		if !seen[j.VillageID] {
			seen[j.VillageID] = true
			ids = append(ids, j.VillageID)
		}
	}
	sort.Slice(ids, func(i, k int) bool { return ids[i] < ids[k] })
	return ids, nil
}
