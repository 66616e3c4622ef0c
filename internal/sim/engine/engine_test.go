package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"VillageWars/internal/shared/gameconfig/building"
	"VillageWars/internal/shared/gameconfig/unit"
	"VillageWars/internal/shared/utils"
	"VillageWars/internal/sim/entity/domain"
	"VillageWars/internal/sim/infra/persistence/memory"
	"VillageWars/internal/sim/service"
	"VillageWars/internal/sim/service/port"
)

var tickNow = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func engineDefs() service.Defs {
	return service.Defs{
		Units: map[string]*unit.Unit{
			"legionnaire": {Key: "legionnaire", Attack: 40, DefInfantry: 35, DefCavalry: 50, Speed: 6, Carry: 50, TrainTime: 1600},
		},
		Buildings: map[string]*building.Building{
			"woodcutter": {
				Key: "woodcutter", Category: building.CategoryResource, MaxLevel: 20,
				BaseTime: 300, TimeFactor: 1.5, Resource: "wood", BaseRate: 10, RateFactor: 1.4,
			},
			"warehouse": {
				Key: "warehouse", Category: building.CategoryStorage, MaxLevel: 20,
				BaseTime: 600, TimeFactor: 1.5, BaseCapacity: 1200, CapacityFactor: 1.3,
			},
		},
	}
}

func newTestEngine(t *testing.T, store port.Store) *Engine {
	t.Helper()
	ids, err := utils.NewSnowflake(1)
	if err != nil {
		t.Fatalf("init snowflake: %v", err)
	}
	return New(store, engineDefs(), Config{
		Speed:           1,
		WinnerDampening: 0.2,
		RaidLootShare:   0.5,
	}, ids, nil)
}

func seedVillage(store *memory.Store, id domain.VillageID, updatedAt time.Time) *domain.Village {
	v := &domain.Village{
		ID:        id,
		PlayerID:  domain.PlayerID(id * 100),
		Amounts:   domain.Resources{Wood: 1000, Clay: 1000, Iron: 1000, Crop: 1000},
		Capacity:  domain.Resources{Wood: 10000, Clay: 10000, Iron: 10000, Crop: 10000},
		Rates:     domain.Resources{Wood: 10, Clay: 10, Iron: 10, Crop: 10},
		UpdatedAt: updatedAt,
	}
	store.SeedVillage(v)
	return v
}

func TestTick_资源结算且同时刻重跑幂等(t *testing.T) {
	store := memory.NewStore()
	seedVillage(store, 1, tickNow.Add(-time.Hour))
	e := newTestEngine(t, store)

	report, err := e.Tick(context.Background(), tickNow)
	if err != nil {
		t.Fatalf("期望 tick 成功, got=%v", err)
	}
	if report.Villages != 1 || len(report.Errors) != 0 {
		t.Fatalf("期望处理 1 村无错误, got=%+v", report)
	}

	v, err := store.LoadVillage(context.Background(), 1)
	if err != nil {
		t.Fatalf("期望村庄存在, got=%v", err)
	}
	if v.Amounts.Wood != 1010 {
		t.Fatalf("期望 1 小时累积到 1010, got=%d", v.Amounts.Wood)
	}
	if !v.UpdatedAt.Equal(tickNow) {
		t.Fatalf("期望结算时间推进到 now, got=%v", v.UpdatedAt)
	}

	// 同一个 now 重跑：没有待结算对象，不产生新变更
	report2, err := e.Tick(context.Background(), tickNow)
	if err != nil {
		t.Fatalf("期望重跑成功, got=%v", err)
	}
	if report2.Villages != 0 {
		t.Fatalf("期望重跑无待结算村庄, got=%d", report2.Villages)
	}
	v2, _ := store.LoadVillage(context.Background(), 1)
	if v2.Amounts != v.Amounts {
		t.Fatalf("期望重跑资源不变, got=%+v", v2.Amounts)
	}
}

func TestTick_建筑完工后产量容量重算(t *testing.T) {
	store := memory.NewStore()
	seedVillage(store, 1, tickNow.Add(-time.Minute))
	store.SeedBuildings(1, []*domain.BuildingInstance{
		{VillageID: 1, Key: "woodcutter", Level: 1, Slot: 1},
		{VillageID: 1, Key: "warehouse", Level: 1, Slot: 2},
	})
	store.SeedQueueJob(&domain.QueueJob{
		ID: 5, VillageID: 1, Category: domain.JobBuilding,
		BuildingKey: "woodcutter", Slot: 1, TargetLevel: 2,
		StartAt: tickNow.Add(-time.Hour), CompleteAt: tickNow.Add(-time.Second),
		Status: domain.JobInProgress,
	})
	e := newTestEngine(t, store)

	report, err := e.Tick(context.Background(), tickNow)
	if err != nil {
		t.Fatalf("期望 tick 成功, got=%v", err)
	}
	if report.JobsCompleted != 1 {
		t.Fatalf("期望 1 个任务完成, got=%d", report.JobsCompleted)
	}

	bs, _ := store.LoadBuildings(context.Background(), 1)
	if len(bs) != 2 || bs[0].Level != 2 {
		t.Fatalf("期望伐木场升到 2 级, got=%+v", bs)
	}

	defs := engineDefs()
	v, _ := store.LoadVillage(context.Background(), 1)
	wantRate := defs.Buildings["woodcutter"].RateAt(2)
	if v.Rates.Wood != wantRate {
		t.Fatalf("期望木材产量按 2 级曲线重算为 %d, got=%d", wantRate, v.Rates.Wood)
	}
	wantCap := baseStorageCapacity + defs.Buildings["warehouse"].CapacityAt(1)
	if v.Capacity.Wood != wantCap {
		t.Fatalf("期望仓库容量 %d, got=%d", wantCap, v.Capacity.Wood)
	}
}

func TestTick_攻击到达结算战斗并回程(t *testing.T) {
	store := memory.NewStore()
	attackerHome := seedVillage(store, 1, tickNow.Add(-time.Minute))
	_ = attackerHome
	seedVillage(store, 2, tickNow.Add(-time.Minute))
	store.SeedTroopStacks(1, []*domain.TroopStack{
		{VillageID: 1, UnitKey: "legionnaire", InAttack: 100},
	})
	store.SeedTroopStacks(2, []*domain.TroopStack{
		{VillageID: 2, UnitKey: "legionnaire", InVillage: 50},
	})
	// 去程 1 小时，1 小时前已到达：本 tick 战斗 + 回程到家一步完成
	store.SeedMovement(&domain.Movement{
		ID: 9, PlayerID: 100, From: 1, To: 2, Type: domain.MovementAttack,
		Troops:    map[string]int64{"legionnaire": 100},
		StartedAt: tickNow.Add(-2 * time.Hour),
		ArrivesAt: tickNow.Add(-time.Hour),
		Status:    domain.MovementTravelling,
	})
	e := newTestEngine(t, store)

	report, err := e.Tick(context.Background(), tickNow)
	if err != nil {
		t.Fatalf("期望 tick 成功, got=%v", err)
	}
	if report.Battles != 1 || report.MovementsAdvanced != 1 {
		t.Fatalf("期望 1 场战斗 1 次行军推进, got=%+v", report)
	}
	if len(report.Errors) != 0 {
		t.Fatalf("期望无错误, got=%v", report.Errors)
	}

	reports := store.BattleReports()
	if len(reports) != 1 {
		t.Fatalf("期望落 1 份战报, got=%d", len(reports))
	}
	br := reports[0]
	if !br.AttackerWon || br.MovementID != 9 {
		t.Fatalf("期望攻方胜且关联行军, got=%+v", br)
	}
	if br.DefenderLosses["legionnaire"] != 50 || br.AttackerLosses["legionnaire"] != 9 {
		t.Fatalf("期望守方全灭攻方损 9, got=%+v %+v", br.DefenderLosses, br.AttackerLosses)
	}

	// 守方兵堆清零，资源被抢走战利品
	defStacks, _ := store.LoadTroopStacks(context.Background(), 2)
	if len(defStacks) != 1 || defStacks[0].InVillage != 0 {
		t.Fatalf("期望守方驻军清零, got=%+v", defStacks)
	}
	dv, _ := store.LoadVillage(context.Background(), 2)
	if dv.Amounts.Total() >= 4000 {
		t.Fatalf("期望守方资源被掠走一部分, got=%+v", dv.Amounts)
	}

	// 幸存 91 人带着战利品到家
	m, ok := store.MovementByID(9)
	if !ok || m.Status != domain.MovementCompleted {
		t.Fatalf("期望行军完结, got=%+v", m)
	}
	atkStacks, _ := store.LoadTroopStacks(context.Background(), 1)
	if len(atkStacks) != 1 || atkStacks[0].InVillage != 91 || atkStacks[0].InAttack != 0 {
		t.Fatalf("期望 91 人归队, got=%+v", atkStacks)
	}
	hv, _ := store.LoadVillage(context.Background(), 1)
	if hv.Amounts.Total() <= 4000+40 {
		// 4000 初始 + 本 tick 产出(4*10/60)，战利品必须在此之上
		t.Fatalf("期望战利品入库, got=%+v", hv.Amounts)
	}
}

func TestTick_援防到达驻为外来援军(t *testing.T) {
	store := memory.NewStore()
	seedVillage(store, 1, tickNow.Add(-time.Minute))
	seedVillage(store, 2, tickNow.Add(-time.Minute))
	store.SeedMovement(&domain.Movement{
		ID: 11, PlayerID: 100, From: 1, To: 2, Type: domain.MovementReinforce,
		Troops:    map[string]int64{"legionnaire": 30},
		StartedAt: tickNow.Add(-time.Hour),
		ArrivesAt: tickNow.Add(-time.Minute),
		Status:    domain.MovementTravelling,
	})
	e := newTestEngine(t, store)

	if _, err := e.Tick(context.Background(), tickNow); err != nil {
		t.Fatalf("期望 tick 成功, got=%v", err)
	}

	m, ok := store.MovementByID(11)
	if !ok || m.Status != domain.MovementCompleted {
		t.Fatalf("期望援防到达即完结, got=%+v", m)
	}
	stacks, _ := store.LoadTroopStacks(context.Background(), 2)
	if len(stacks) != 1 || stacks[0].InSupport != 30 {
		t.Fatalf("期望 30 人以援军身份驻下, got=%+v", stacks)
	}
}

func TestTick_目标村不存在行军作废(t *testing.T) {
	store := memory.NewStore()
	seedVillage(store, 1, tickNow.Add(-time.Minute))
	store.SeedMovement(&domain.Movement{
		ID: 13, PlayerID: 100, From: 1, To: 999, Type: domain.MovementRaid,
		Troops:    map[string]int64{"legionnaire": 10},
		StartedAt: tickNow.Add(-time.Hour),
		ArrivesAt: tickNow.Add(-time.Minute),
		Status:    domain.MovementTravelling,
	})
	e := newTestEngine(t, store)

	report, err := e.Tick(context.Background(), tickNow)
	if err != nil {
		t.Fatalf("期望 tick 成功, got=%v", err)
	}
	if report.MovementsCancelled != 1 {
		t.Fatalf("期望 1 次行军作废, got=%+v", report)
	}
	m, ok := store.MovementByID(13)
	if !ok || m.Status != domain.MovementCancelled {
		t.Fatalf("期望行军撤销态, got=%+v", m)
	}
}

func TestTick_村庄消失时队列任务取消上报(t *testing.T) {
	store := memory.NewStore()
	store.SeedQueueJob(&domain.QueueJob{
		ID: 7, VillageID: 404, Category: domain.JobBuilding,
		BuildingKey: "woodcutter", Slot: 1, TargetLevel: 2,
		StartAt: tickNow.Add(-time.Hour), CompleteAt: tickNow.Add(-time.Second),
		Status: domain.JobInProgress,
	})
	e := newTestEngine(t, store)

	report, err := e.Tick(context.Background(), tickNow)
	if err != nil {
		t.Fatalf("期望 tick 成功, got=%v", err)
	}
	if report.JobsCancelled != 1 {
		t.Fatalf("期望孤儿任务取消, got=%+v", report)
	}
}

// stacksFailStore 对指定村庄的兵堆写入失败若干次，之后恢复正常。
type stacksFailStore struct {
	*memory.Store
	failVillage domain.VillageID
	remaining   int
}

func (s *stacksFailStore) SaveTroopStacks(ctx context.Context, id domain.VillageID, ts []*domain.TroopStack) error {
	if s.remaining > 0 && id == s.failVillage {
		s.remaining--
		return errors.New("storage hiccup")
	}
	return s.Store.SaveTroopStacks(ctx, id, ts)
}

type conflictStore struct {
	*memory.Store
}

func (s *conflictStore) SaveVillage(ctx context.Context, v *domain.Village) error {
	return port.ErrVersionConflict
}

type stallStore struct {
	*memory.Store
}

func (s *stallStore) LoadVillage(ctx context.Context, id domain.VillageID) (*domain.Village, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestTick_结算中途写失败重试不会二次掠夺(t *testing.T) {
	base := memory.NewStore()
	seedVillage(base, 1, tickNow.Add(-time.Minute))
	seedVillage(base, 2, tickNow.Add(-time.Minute))
	base.SeedTroopStacks(1, []*domain.TroopStack{
		{VillageID: 1, UnitKey: "legionnaire", InAttack: 100},
	})
	base.SeedTroopStacks(2, []*domain.TroopStack{
		{VillageID: 2, UnitKey: "legionnaire", InVillage: 50},
	})
	base.SeedMovement(&domain.Movement{
		ID: 21, PlayerID: 100, From: 1, To: 2, Type: domain.MovementAttack,
		Troops:    map[string]int64{"legionnaire": 100},
		StartedAt: tickNow.Add(-2 * time.Hour),
		ArrivesAt: tickNow.Add(-time.Hour),
		Status:    domain.MovementTravelling,
	})
	// 守方兵堆第一次写入失败，模拟结算中途存储抖动
	store := &stacksFailStore{Store: base, failVillage: 2, remaining: 1}
	e := newTestEngine(t, store)

	report, err := e.Tick(context.Background(), tickNow)
	if err != nil {
		t.Fatalf("期望 tick 成功, got=%v", err)
	}
	if report.Battles != 1 || len(report.Errors) != 1 {
		t.Fatalf("期望 1 场战斗 1 个单体错误, got=%+v", report)
	}
	// 回程转换在写失败前已落库：行军不再停留在去程
	m, ok := base.MovementByID(21)
	if !ok || m.Status == domain.MovementTravelling || m.Status == domain.MovementArrived {
		t.Fatalf("期望行军已转入回程, got=%+v", m)
	}
	dv1, _ := base.LoadVillage(context.Background(), 2)
	lootedTotal := dv1.Amounts.Total()

	// 同一个 now 重跑：战斗不重打，守方资源不被二次扣除
	report2, err := e.Tick(context.Background(), tickNow)
	if err != nil {
		t.Fatalf("期望重跑成功, got=%v", err)
	}
	if report2.Battles != 0 || len(report2.Errors) != 0 {
		t.Fatalf("期望重跑无战斗无错误, got=%+v", report2)
	}
	dv2, _ := base.LoadVillage(context.Background(), 2)
	if dv2.Amounts.Total() != lootedTotal {
		t.Fatalf("期望守方资源只被掠一次, got=%d want=%d", dv2.Amounts.Total(), lootedTotal)
	}
	if got := len(base.BattleReports()); got != 1 {
		t.Fatalf("期望只落 1 份战报, got=%d", got)
	}
	m2, _ := base.MovementByID(21)
	if m2.Status != domain.MovementCompleted {
		t.Fatalf("期望回程到家完结, got=%+v", m2)
	}
}

func TestTick_库中残留到达态行军续算战斗(t *testing.T) {
	store := memory.NewStore()
	seedVillage(store, 1, tickNow.Add(-time.Minute))
	seedVillage(store, 2, tickNow.Add(-time.Minute))
	store.SeedTroopStacks(1, []*domain.TroopStack{
		{VillageID: 1, UnitKey: "legionnaire", InAttack: 100},
	})
	store.SeedTroopStacks(2, []*domain.TroopStack{
		{VillageID: 2, UnitKey: "legionnaire", InVillage: 50},
	})
	store.SeedMovement(&domain.Movement{
		ID: 23, PlayerID: 100, From: 1, To: 2, Type: domain.MovementAttack,
		Troops:    map[string]int64{"legionnaire": 100},
		StartedAt: tickNow.Add(-2 * time.Hour),
		ArrivesAt: tickNow.Add(-time.Hour),
		Status:    domain.MovementArrived,
	})
	e := newTestEngine(t, store)

	report, err := e.Tick(context.Background(), tickNow)
	if err != nil {
		t.Fatalf("期望 tick 成功, got=%v", err)
	}
	if report.Battles != 1 || len(report.Errors) != 0 {
		t.Fatalf("期望续算 1 场战斗, got=%+v", report)
	}
	m, ok := store.MovementByID(23)
	if !ok || m.Status != domain.MovementCompleted {
		t.Fatalf("期望续算后回程到家完结, got=%+v", m)
	}
	defStacks, _ := store.LoadTroopStacks(context.Background(), 2)
	if len(defStacks) != 1 || defStacks[0].InVillage != 0 {
		t.Fatalf("期望守方驻军清零, got=%+v", defStacks)
	}
}

func TestTick_回程老家消失作废并计数(t *testing.T) {
	store := memory.NewStore()
	store.SeedMovement(&domain.Movement{
		ID: 25, PlayerID: 100, From: 2, To: 999, Type: domain.MovementReturn,
		Troops:    map[string]int64{"legionnaire": 40},
		Loot:      domain.Resources{Wood: 100},
		StartedAt: tickNow.Add(-time.Hour),
		ArrivesAt: tickNow.Add(-time.Minute),
		Status:    domain.MovementTravelling,
	})
	e := newTestEngine(t, store)

	report, err := e.Tick(context.Background(), tickNow)
	if err != nil {
		t.Fatalf("期望 tick 成功, got=%v", err)
	}
	if report.MovementsCancelled != 1 {
		t.Fatalf("期望回程无家可归计入作废数, got=%+v", report)
	}
	m, ok := store.MovementByID(25)
	if !ok || m.Status != domain.MovementCancelled {
		t.Fatalf("期望行军撤销态, got=%+v", m)
	}
}

func TestTick_版本冲突计入Conflicts(t *testing.T) {
	base := memory.NewStore()
	seedVillage(base, 1, tickNow.Add(-time.Hour))
	e := newTestEngine(t, &conflictStore{Store: base})

	report, err := e.Tick(context.Background(), tickNow)
	if err != nil {
		t.Fatalf("期望 tick 成功, got=%v", err)
	}
	if report.Conflicts != 1 || report.Villages != 0 || len(report.Errors) != 0 {
		t.Fatalf("期望冲突只计入 Conflicts, got=%+v", report)
	}
}

func TestTick_单村超预算计入Skipped(t *testing.T) {
	base := memory.NewStore()
	seedVillage(base, 1, tickNow.Add(-time.Hour))
	ids, err := utils.NewSnowflake(1)
	if err != nil {
		t.Fatalf("init snowflake: %v", err)
	}
	e := New(&stallStore{Store: base}, engineDefs(), Config{
		Speed:         1,
		VillageBudget: time.Millisecond,
	}, ids, nil)

	report, err := e.Tick(context.Background(), tickNow)
	if err != nil {
		t.Fatalf("期望 tick 成功, got=%v", err)
	}
	if report.Skipped != 1 || report.Villages != 0 || len(report.Errors) != 0 {
		t.Fatalf("期望超预算只计入 Skipped, got=%+v", report)
	}
}
