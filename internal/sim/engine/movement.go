package engine

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"

	"VillageWars/internal/sim/entity"
	"VillageWars/internal/sim/entity/domain"
	"VillageWars/internal/sim/errs"
	"VillageWars/internal/sim/service"
	"VillageWars/modules/kit/logx"
)

// tickMovements 推进所有到期行军。
// 行军结算会同时动两个村庄（防守方资源、双方兵堆），为避免和村庄 actor
// 抢写，放在所有村庄结算完成之后串行处理，按 (arrives_at, id) 定序。
func (e *Engine) tickMovements(ctx context.Context, now time.Time, report *TickReport, log logx.Logger) error {
	movements, err := e.store.LoadDueMovements(ctx, now)
	if err != nil {
		return errs.Wrap("engine.LoadDueMovements", errs.KindInfra, err, nil)
	}
	sort.Slice(movements, func(i, k int) bool {
		if !movements[i].ArrivesAt.Equal(movements[k].ArrivesAt) {
			return movements[i].ArrivesAt.Before(movements[k].ArrivesAt)
		}
		return movements[i].ID < movements[k].ID
	})

	for _, m := range movements {
		if err := e.processMovement(ctx, m, now, report); err != nil {
			report.Errors = append(report.Errors, err)
			log.Error("movement tick failed",
				zap.Int64("movement_id", int64(m.ID)),
				zap.Error(err),
			)
		}
	}
	return nil
}

func (e *Engine) processMovement(ctx context.Context, m *domain.Movement, now time.Time, report *TickReport) error {
	events, err := service.AdvanceMovement(m, now)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		// 库里残留 arrived 的攻击行军（上次结算中途失败）不会再出新事件，
		// 直接续算，否则它每个 tick 都被捞出来却永远不动。
		if m.Status == domain.MovementArrived &&
			(m.Type == domain.MovementAttack || m.Type == domain.MovementRaid) {
			report.MovementsAdvanced++
			if err := e.settleArrival(ctx, m, now, report); err != nil {
				return err
			}
			return e.saveMovement(ctx, m)
		}
		return nil
	}
	report.MovementsAdvanced++

	for _, ev := range events {
		switch ev.Type {
		case service.EventArrived:
			if m.Type == domain.MovementAttack || m.Type == domain.MovementRaid {
				if err := e.settleArrival(ctx, m, now, report); err != nil {
					return err
				}
			}
		case service.EventCompleted:
			switch m.Type {
			case domain.MovementReinforce:
				if err := e.stationReinforcement(ctx, m, report); err != nil {
					return err
				}
			case domain.MovementReturn:
				if err := e.completeReturnTo(ctx, m, m.To, report); err != nil {
					return err
				}
			case domain.MovementAttack, domain.MovementRaid:
				// 回程到家：arrived 阶段已处理过战斗。
				if err := e.completeReturn(ctx, m, report); err != nil {
					return err
				}
			}
		}
	}

	return e.saveMovement(ctx, m)
}

// settleArrival 攻击/掠夺到达后的完整结算：战斗、回程；
// 长 tick 时回程可能当场到家。
func (e *Engine) settleArrival(ctx context.Context, m *domain.Movement, now time.Time, report *TickReport) error {
	if err := e.resolveArrivalBattle(ctx, m, now, report); err != nil {
		return err
	}
	more, err := service.AdvanceMovement(m, now)
	if err != nil {
		return err
	}
	for _, ev := range more {
		if ev.Type == service.EventCompleted {
			if err := e.completeReturn(ctx, m, report); err != nil {
				return err
			}
		}
	}
	return nil
}

// resolveArrivalBattle 攻击/掠夺到达：结算战斗、落战报、开始回程。
func (e *Engine) resolveArrivalBattle(ctx context.Context, m *domain.Movement, now time.Time, report *TickReport) error {
	dv, err := e.store.LoadVillage(ctx, m.To)
	if errors.Is(err, entity.ErrVillageNotFound) {
		// 目标村已不存在：行军作废并上报，攻方部队视作遣散。
		m.Status = domain.MovementCancelled
		report.MovementsCancelled++
		return e.saveMovement(ctx, m)
	}
	if err != nil {
		return errs.Wrap("engine.LoadVillage", errs.KindInfra, err, map[string]any{"village_id": m.To})
	}

	// 防守方资源先结算到开战时刻，战利品按最新存量算。
	if elapsed := m.ArrivesAt.Sub(dv.UpdatedAt); elapsed > 0 {
		delta, aerr := service.AccumulateResources(dv, elapsed, e.cfg.Speed)
		if aerr != nil {
			return aerr
		}
		dv.Amounts = delta.Amounts
		dv.UpdatedAt = delta.UpdatedAt
	}

	stacks, err := e.store.LoadTroopStacks(ctx, m.To)
	if err != nil {
		return errs.Wrap("engine.LoadTroopStacks", errs.KindInfra, err, map[string]any{"village_id": m.To})
	}
	defenderComp := make(map[string]int64, len(stacks))
	for _, t := range stacks {
		home := t.InVillage + t.InDefense + t.InSupport
		if home > 0 {
			defenderComp[t.UnitKey] += home
		}
	}

	lootShare := 1.0
	if m.Type == domain.MovementRaid {
		lootShare = e.cfg.RaidLootShare
	}
	attackerBefore := m.TroopsCopy()
	outcome, err := service.ResolveBattle(m.Troops, defenderComp, dv.Amounts, e.defs, service.BattleConfig{
		WinnerDampening: e.cfg.WinnerDampening,
		LootShare:       lootShare,
	})
	if err != nil {
		return err
	}
	report.Battles++

	// 回程转换先落库：它是整场结算的提交点。后面任何一步写失败，
	// 重试时行军已不在去程，同一场战斗不会被二次结算、战利品不会被二次扣除。
	if _, err := service.BeginReturn(m, outcome.AttackerSurvivors, outcome.Loot, now); err != nil {
		return err
	}
	if err := e.saveMovement(ctx, m); err != nil {
		return err
	}

	// 防守方损失落到兵堆：先扣驻守，再扣防御序列，最后扣外来援军。
	applyDefenderLosses(stacks, outcome.DefenderLosses)
	if outcome.AttackerWon {
		dv.Amounts = dv.Amounts.Sub(outcome.Loot).ClampTo(dv.Capacity)
	}
	if err := e.store.SaveVillage(ctx, dv); err != nil {
		return err
	}
	if err := e.store.SaveTroopStacks(ctx, m.To, stacks); err != nil {
		return errs.Wrap("engine.SaveTroopStacks", errs.KindInfra, err, map[string]any{"village_id": m.To})
	}

	// 攻方损失同步回老家兵堆的“出征中”分区。
	if err := e.reduceAttackerInAttack(ctx, m.From, outcome.AttackerLosses); err != nil {
		return err
	}

	return e.appendBattleReport(ctx, m, dv, attackerBefore, defenderComp, outcome, now)
}

// completeReturn 回程到家：幸存部队归队，战利品入库（溢出丢弃）。
func (e *Engine) completeReturn(ctx context.Context, m *domain.Movement, report *TickReport) error {
	return e.completeReturnTo(ctx, m, m.From, report)
}

func (e *Engine) completeReturnTo(ctx context.Context, m *domain.Movement, home domain.VillageID, report *TickReport) error {
	hv, err := e.store.LoadVillage(ctx, home)
	if errors.Is(err, entity.ErrVillageNotFound) {
		// 老家没了：部队无处可归，行军作废并上报，和去程目标消失同口径。
		m.Status = domain.MovementCancelled
		report.MovementsCancelled++
		e.log.WithContext(ctx).Warn("return home gone, troops disbanded",
			zap.Int64("movement_id", int64(m.ID)),
			zap.Int64("village_id", int64(home)),
			zap.Any("troops", m.Troops),
			zap.Any("loot", m.Loot),
		)
		return nil
	}
	if err != nil {
		return errs.Wrap("engine.LoadVillage", errs.KindInfra, err, map[string]any{"village_id": home})
	}

	stacks, err := e.store.LoadTroopStacks(ctx, home)
	if err != nil {
		return errs.Wrap("engine.LoadTroopStacks", errs.KindInfra, err, map[string]any{"village_id": home})
	}
	for key, count := range m.Troops {
		if count <= 0 {
			continue
		}
		found := false
		for _, t := range stacks {
			if t.UnitKey == key {
				t.InVillage += count
				if t.InAttack >= count {
					t.InAttack -= count
				} else {
					t.InAttack = 0
				}
				found = true
				break
			}
		}
		if !found {
			stacks = append(stacks, &domain.TroopStack{
				VillageID: home,
				UnitKey:   key,
				InVillage: count,
			})
		}
	}

	if !m.Loot.IsZero() {
		hv.Deposit(m.Loot)
		if err := e.store.SaveVillage(ctx, hv); err != nil {
			return err
		}
	}
	if err := e.store.SaveTroopStacks(ctx, home, stacks); err != nil {
		return errs.Wrap("engine.SaveTroopStacks", errs.KindInfra, err, map[string]any{"village_id": home})
	}
	return nil
}

// stationReinforcement 援防到达：部队在目标村以“外来援军”身份驻下。
func (e *Engine) stationReinforcement(ctx context.Context, m *domain.Movement, report *TickReport) error {
	stacks, err := e.store.LoadTroopStacks(ctx, m.To)
	if err != nil {
		if errors.Is(err, entity.ErrVillageNotFound) {
			m.Status = domain.MovementCancelled
			report.MovementsCancelled++
			return nil
		}
		return errs.Wrap("engine.LoadTroopStacks", errs.KindInfra, err, map[string]any{"village_id": m.To})
	}
	for key, count := range m.Troops {
		if count <= 0 {
			continue
		}
		found := false
		for _, t := range stacks {
			if t.UnitKey == key {
				t.InSupport += count
				found = true
				break
			}
		}
		if !found {
			stacks = append(stacks, &domain.TroopStack{
				VillageID: m.To,
				UnitKey:   key,
				InSupport: count,
			})
		}
	}
	if err := e.store.SaveTroopStacks(ctx, m.To, stacks); err != nil {
		return errs.Wrap("engine.SaveTroopStacks", errs.KindInfra, err, map[string]any{"village_id": m.To})
	}
	return nil
}

func (e *Engine) reduceAttackerInAttack(ctx context.Context, home domain.VillageID, losses map[string]int64) error {
	stacks, err := e.store.LoadTroopStacks(ctx, home)
	if err != nil {
		if errors.Is(err, entity.ErrVillageNotFound) {
			return nil
		}
		return errs.Wrap("engine.LoadTroopStacks", errs.KindInfra, err, map[string]any{"village_id": home})
	}
	changed := false
	for _, t := range stacks {
		lost := losses[t.UnitKey]
		if lost <= 0 {
			continue
		}
		if t.InAttack >= lost {
			t.InAttack -= lost
		} else {
			t.InAttack = 0
		}
		changed = true
	}
	if !changed {
		return nil
	}
	if err := e.store.SaveTroopStacks(ctx, home, stacks); err != nil {
		return errs.Wrap("engine.SaveTroopStacks", errs.KindInfra, err, map[string]any{"village_id": home})
	}
	return nil
}

// applyDefenderLosses 把防守方损失从兵堆分区里扣掉：驻守 → 防御 → 援军。
func applyDefenderLosses(stacks []*domain.TroopStack, losses map[string]int64) {
	for _, t := range stacks {
		lost := losses[t.UnitKey]
		if lost <= 0 {
			continue
		}
		for _, part := range []*int64{&t.InVillage, &t.InDefense, &t.InSupport} {
			if lost <= 0 {
				break
			}
			take := *part
			if take > lost {
				take = lost
			}
			*part -= take
			lost -= take
		}
	}
}

func (e *Engine) appendBattleReport(
	ctx context.Context,
	m *domain.Movement,
	dv *domain.Village,
	attackerBefore map[string]int64,
	defenderBefore map[string]int64,
	outcome service.BattleOutcome,
	now time.Time,
) error {
	id := e.ids.NextID()
	r := &domain.BattleReport{
		ID:              domain.ReportID(id),
		MovementID:      m.ID,
		AttackerID:      m.PlayerID,
		DefenderID:      dv.PlayerID,
		AttackerVillage: m.From,
		DefenderVillage: m.To,
		AttackerBefore:  attackerBefore,
		DefenderBefore:  defenderBefore,
		AttackerLosses:  outcome.AttackerLosses,
		DefenderLosses:  outcome.DefenderLosses,
		Loot:            outcome.Loot,
		AttackerWon:     outcome.AttackerWon,
		CreatedAt:       now,
	}
	if err := e.store.AppendBattleReport(ctx, r); err != nil {
		return errs.Wrap("engine.AppendBattleReport", errs.KindInfra, err, map[string]any{"report_id": id})
	}
	return nil
}

func (e *Engine) saveMovement(ctx context.Context, m *domain.Movement) error {
	if err := e.store.SaveMovement(ctx, m); err != nil {
		return errs.Wrap("engine.SaveMovement", errs.KindInfra, err, map[string]any{"movement_id": m.ID})
	}
	return nil
}
