package service

import (
	"errors"
	"testing"
	"time"

	"VillageWars/internal/sim/entity/domain"
	"VillageWars/modules/kit/errx"
)

var marchStart = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func testMovement(typ domain.MovementType) *domain.Movement {
	return &domain.Movement{
		ID:        1,
		PlayerID:  100,
		From:      1,
		To:        2,
		Type:      typ,
		Troops:    map[string]int64{"legionnaire": 50},
		StartedAt: marchStart,
		ArrivesAt: marchStart.Add(time.Hour),
		Status:    domain.MovementTravelling,
	}
}

func TestAdvanceMovement_未到达不动(t *testing.T) {
	m := testMovement(domain.MovementAttack)
	events, err := AdvanceMovement(m, marchStart.Add(30*time.Minute))
	if err != nil {
		t.Fatalf("期望成功, got=%v", err)
	}
	if len(events) != 0 || m.Status != domain.MovementTravelling {
		t.Fatalf("期望仍在行进, got=%v %v", events, m.Status)
	}
}

func TestAdvanceMovement_攻击到达后停住等战斗(t *testing.T) {
	m := testMovement(domain.MovementAttack)
	events, err := AdvanceMovement(m, marchStart.Add(time.Hour))
	if err != nil {
		t.Fatalf("期望成功, got=%v", err)
	}
	if len(events) != 1 || events[0].Type != EventArrived {
		t.Fatalf("期望单个 arrived 事件, got=%v", events)
	}
	if m.Status != domain.MovementArrived {
		t.Fatalf("期望停在 arrived, got=%v", m.Status)
	}
}

func TestAdvanceMovement_援防到达即完结没有回程(t *testing.T) {
	m := testMovement(domain.MovementReinforce)
	events, err := AdvanceMovement(m, marchStart.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("期望成功, got=%v", err)
	}
	if len(events) != 2 || events[0].Type != EventArrived || events[1].Type != EventCompleted {
		t.Fatalf("期望 arrived+completed, got=%v", events)
	}
	if m.Status != domain.MovementCompleted {
		t.Fatalf("期望完结, got=%v", m.Status)
	}
}

func TestAdvanceMovement_回程与去程等长(t *testing.T) {
	m := testMovement(domain.MovementAttack)
	if _, err := AdvanceMovement(m, marchStart.Add(time.Hour)); err != nil {
		t.Fatalf("期望成功, got=%v", err)
	}
	if _, err := BeginReturn(m, map[string]int64{"legionnaire": 40}, domain.Resources{Wood: 100}, marchStart.Add(time.Hour)); err != nil {
		t.Fatalf("期望成功, got=%v", err)
	}
	if m.Status != domain.MovementReturning {
		t.Fatalf("期望回程中, got=%v", m.Status)
	}

	// 回家时刻 = arrives_at + 去程时长
	events, err := AdvanceMovement(m, marchStart.Add(time.Hour+59*time.Minute))
	if err != nil {
		t.Fatalf("期望成功, got=%v", err)
	}
	if len(events) != 0 {
		t.Fatalf("期望回程未到家不动, got=%v", events)
	}

	events, err = AdvanceMovement(m, marchStart.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("期望成功, got=%v", err)
	}
	if len(events) != 1 || events[0].Type != EventCompleted {
		t.Fatalf("期望到家完结, got=%v", events)
	}
	if m.Troops["legionnaire"] != 40 || m.Loot.Wood != 100 {
		t.Fatalf("期望带着幸存部队与战利品, got=%+v %+v", m.Troops, m.Loot)
	}
}

func TestBeginReturn_全军覆没直接完结(t *testing.T) {
	m := testMovement(domain.MovementAttack)
	if _, err := AdvanceMovement(m, marchStart.Add(time.Hour)); err != nil {
		t.Fatalf("期望成功, got=%v", err)
	}
	events, err := BeginReturn(m, map[string]int64{"legionnaire": 0}, domain.Resources{}, marchStart.Add(time.Hour))
	if err != nil {
		t.Fatalf("期望成功, got=%v", err)
	}
	if len(events) != 1 || events[0].Type != EventCompleted {
		t.Fatalf("期望直接完结, got=%v", events)
	}
	if m.Status != domain.MovementCompleted {
		t.Fatalf("期望完结, got=%v", m.Status)
	}
}

func TestCancelMovement_窗口内可撤回(t *testing.T) {
	m := testMovement(domain.MovementRaid)
	events, err := CancelMovement(m, marchStart.Add(29*time.Minute), 0.5)
	if err != nil {
		t.Fatalf("期望窗口内撤回成功, got=%v", err)
	}
	if len(events) != 1 || events[0].Type != EventCancelled {
		t.Fatalf("期望 cancelled 事件, got=%v", events)
	}
	if m.Status != domain.MovementCancelled {
		t.Fatalf("期望撤回态, got=%v", m.Status)
	}
}

func TestCancelMovement_过窗口拒绝(t *testing.T) {
	m := testMovement(domain.MovementRaid)
	if _, err := CancelMovement(m, marchStart.Add(30*time.Minute), 0.5); !errors.Is(err, ErrCancelWindowClosed) {
		t.Fatalf("期望过窗口拒绝（窗口边界不含）, got=%v", err)
	}
	if m.Status != domain.MovementTravelling {
		t.Fatalf("期望状态不变, got=%v", m.Status)
	}

	arrived := testMovement(domain.MovementAttack)
	if _, err := AdvanceMovement(arrived, marchStart.Add(time.Hour)); err != nil {
		t.Fatalf("期望成功, got=%v", err)
	}
	if _, err := CancelMovement(arrived, marchStart.Add(time.Hour), 0.5); !errors.Is(err, ErrCancelWindowClosed) {
		t.Fatalf("期望到达后不可撤回, got=%v", err)
	}
}

func TestAdvanceMovement_非法行程拒绝(t *testing.T) {
	if _, err := AdvanceMovement(nil, marchStart); !errors.Is(err, errx.ErrInvalidArgument) {
		t.Fatalf("期望 nil 行军被拒绝, got=%v", err)
	}
	m := testMovement(domain.MovementAttack)
	m.ArrivesAt = m.StartedAt
	if _, err := AdvanceMovement(m, marchStart); !errors.Is(err, errx.ErrInvalidArgument) {
		t.Fatalf("期望零时长行程被拒绝, got=%v", err)
	}
}
