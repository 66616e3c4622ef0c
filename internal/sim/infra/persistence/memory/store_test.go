package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"VillageWars/internal/sim/entity"
	"VillageWars/internal/sim/entity/domain"
	"VillageWars/internal/sim/service/port"
)

var storeNow = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func TestStore_村庄乐观锁(t *testing.T) {
	s := NewStore()
	v := &domain.Village{ID: 1, UpdatedAt: storeNow}
	s.SeedVillage(v)

	loaded, err := s.LoadVillage(context.Background(), 1)
	if err != nil {
		t.Fatalf("期望加载成功, got=%v", err)
	}
	stale, _ := s.LoadVillage(context.Background(), 1)

	loaded.Amounts.Wood = 100
	if err := s.SaveVillage(context.Background(), loaded); err != nil {
		t.Fatalf("期望首次保存成功, got=%v", err)
	}

	// 旧版本写回必须冲突
	stale.Amounts.Wood = 999
	if err := s.SaveVillage(context.Background(), stale); !errors.Is(err, port.ErrVersionConflict) {
		t.Fatalf("期望版本冲突, got=%v", err)
	}

	got, _ := s.LoadVillage(context.Background(), 1)
	if got.Amounts.Wood != 100 {
		t.Fatalf("期望冲突写入被拒绝, got=%d", got.Amounts.Wood)
	}
}

func TestStore_读写都是深拷贝(t *testing.T) {
	s := NewStore()
	s.SeedVillage(&domain.Village{ID: 1, Amounts: domain.Resources{Wood: 100}, UpdatedAt: storeNow})

	a, _ := s.LoadVillage(context.Background(), 1)
	a.Amounts.Wood = 777

	b, _ := s.LoadVillage(context.Background(), 1)
	if b.Amounts.Wood != 100 {
		t.Fatalf("期望调用方修改不影响存储, got=%d", b.Amounts.Wood)
	}

	m := &domain.Movement{
		ID: 1, From: 1, To: 2, Type: domain.MovementAttack,
		Troops:    map[string]int64{"legionnaire": 10},
		StartedAt: storeNow, ArrivesAt: storeNow.Add(time.Hour),
	}
	s.SeedMovement(m)
	m.Troops["legionnaire"] = 999

	got, _ := s.MovementByID(1)
	if got.Troops["legionnaire"] != 10 {
		t.Fatalf("期望行军部队 map 深拷贝, got=%d", got.Troops["legionnaire"])
	}
}

func TestStore_缺失村庄返回领域哨兵(t *testing.T) {
	s := NewStore()
	if _, err := s.LoadVillage(context.Background(), 404); !errors.Is(err, entity.ErrVillageNotFound) {
		t.Fatalf("期望 ErrVillageNotFound, got=%v", err)
	}
}

func TestStore_到期行军筛选(t *testing.T) {
	s := NewStore()
	// 行进中未到达：不取
	s.SeedMovement(&domain.Movement{
		ID: 1, From: 1, To: 2, Type: domain.MovementAttack,
		Troops:    map[string]int64{},
		StartedAt: storeNow, ArrivesAt: storeNow.Add(time.Hour),
		Status: domain.MovementTravelling,
	})
	// 行进中已到达：取
	s.SeedMovement(&domain.Movement{
		ID: 2, From: 1, To: 2, Type: domain.MovementAttack,
		Troops:    map[string]int64{},
		StartedAt: storeNow.Add(-2 * time.Hour), ArrivesAt: storeNow.Add(-time.Hour),
		Status: domain.MovementTravelling,
	})
	// 回程中 ETA 未到：不取（ETA = arrives + 去程时长）
	s.SeedMovement(&domain.Movement{
		ID: 3, From: 1, To: 2, Type: domain.MovementAttack,
		Troops:    map[string]int64{},
		StartedAt: storeNow.Add(-time.Hour), ArrivesAt: storeNow.Add(-10 * time.Minute),
		Status: domain.MovementReturning,
	})
	// 完结：永远不取
	s.SeedMovement(&domain.Movement{
		ID: 4, From: 1, To: 2, Type: domain.MovementAttack,
		Troops:    map[string]int64{},
		StartedAt: storeNow.Add(-3 * time.Hour), ArrivesAt: storeNow.Add(-2 * time.Hour),
		Status: domain.MovementCompleted,
	})

	due, err := s.LoadDueMovements(context.Background(), storeNow)
	if err != nil {
		t.Fatalf("期望成功, got=%v", err)
	}
	if len(due) != 1 || due[0].ID != 2 {
		t.Fatalf("期望只取已到达的行军 2, got=%+v", due)
	}
}

func TestStore_到期任务筛选(t *testing.T) {
	s := NewStore()
	s.SeedQueueJob(&domain.QueueJob{
		ID: 1, VillageID: 1, Category: domain.JobBuilding,
		StartAt: storeNow.Add(-time.Hour), CompleteAt: storeNow.Add(-time.Minute),
		Status: domain.JobInProgress,
	})
	s.SeedQueueJob(&domain.QueueJob{
		ID: 2, VillageID: 1, Category: domain.JobBuilding,
		StartAt: storeNow.Add(-time.Hour), CompleteAt: storeNow.Add(time.Minute),
		Status: domain.JobInProgress,
	})
	s.SeedQueueJob(&domain.QueueJob{
		ID: 3, VillageID: 1, Category: domain.JobBuilding,
		StartAt: storeNow.Add(-time.Hour), CompleteAt: storeNow.Add(-time.Minute),
		Status: domain.JobPending, // 排队中的不算到期
	})

	due, err := s.LoadDueQueueJobs(context.Background(), storeNow)
	if err != nil {
		t.Fatalf("期望成功, got=%v", err)
	}
	if len(due) != 1 || due[0].ID != 1 {
		t.Fatalf("期望只取进行中且到期的任务 1, got=%+v", due)
	}
}
