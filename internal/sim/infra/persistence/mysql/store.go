package mysql

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"VillageWars/internal/sim/entity"
	"VillageWars/internal/sim/entity/domain"
	"VillageWars/internal/sim/errs"
	"VillageWars/internal/sim/infra/persistence/model"
	"VillageWars/internal/sim/service/port"
)

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

const OpLoadVillagesDue = "repo.sim.LoadVillagesDue"

func (s *Store) LoadVillagesDue(ctx context.Context, now time.Time) ([]*domain.Village, error) {
	var ms []model.Village
	err := s.db.WithContext(ctx).
		Where("updated_at < ?", now).
		Order("id").
		Find(&ms).Error
	if err != nil {
		return nil, errs.Wrap(OpLoadVillagesDue, errs.KindInfra, err, nil)
	}
	out := make([]*domain.Village, 0, len(ms))
	for i := range ms {
		out = append(out, model.VillageToEntity(&ms[i]))
	}
	return out, nil
}

const OpLoadDueQueueJobs = "repo.sim.LoadDueQueueJobs"

func (s *Store) LoadDueQueueJobs(ctx context.Context, now time.Time) ([]*domain.QueueJob, error) {
	var ms []model.QueueJob
	err := s.db.WithContext(ctx).
		Where("status = ? AND complete_at <= ?", int8(domain.JobInProgress), now).
		Order("complete_at, id").
		Find(&ms).Error
	if err != nil {
		return nil, errs.Wrap(OpLoadDueQueueJobs, errs.KindInfra, err, nil)
	}
	out := make([]*domain.QueueJob, 0, len(ms))
	for i := range ms {
		out = append(out, model.QueueJobToEntity(&ms[i]))
	}
	return out, nil
}

const OpLoadDueMovements = "repo.sim.LoadDueMovements"

func (s *Store) LoadDueMovements(ctx context.Context, now time.Time) ([]*domain.Movement, error) {
	var ms []model.Movement
	// 到期 = 行进中已到达、停在到达态、或回程已到家（回程时长与去程相同）。
	err := s.db.WithContext(ctx).
		Where("(status = ? AND arrives_at <= ?) OR status = ? OR (status = ? AND TIMESTAMPADD(SECOND, TIMESTAMPDIFF(SECOND, started_at, arrives_at), arrives_at) <= ?)",
			int8(domain.MovementTravelling), now,
			int8(domain.MovementArrived),
			int8(domain.MovementReturning), now,
		).
		Order("arrives_at, id").
		Find(&ms).Error
	if err != nil {
		return nil, errs.Wrap(OpLoadDueMovements, errs.KindInfra, err, nil)
	}
	out := make([]*domain.Movement, 0, len(ms))
	for i := range ms {
		m, merr := model.MovementToEntity(&ms[i])
		if merr != nil {
			return nil, errs.Wrap(OpLoadDueMovements, errs.KindInfra, merr, map[string]any{"movement_id": ms[i].Id})
		}
		out = append(out, m)
	}
	return out, nil
}

const OpLoadVillage = "repo.sim.LoadVillage"

func (s *Store) LoadVillage(ctx context.Context, id domain.VillageID) (*domain.Village, error) {
	var m model.Village
	err := s.db.WithContext(ctx).Where("id = ?", int64(id)).First(&m).Error
	switch {
	case err == nil:
		return model.VillageToEntity(&m), nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, entity.ErrVillageNotFound
	default:
		// 纯技术错误（连接超时等），包装返回给上级
		return nil, errs.Wrap(OpLoadVillage, errs.KindInfra, err, map[string]any{"village_id": id})
	}
}

const OpLoadBuildings = "repo.sim.LoadBuildings"

func (s *Store) LoadBuildings(ctx context.Context, id domain.VillageID) ([]*domain.BuildingInstance, error) {
	var ms []model.Building
	err := s.db.WithContext(ctx).Where("village_id = ?", int64(id)).Order("slot").Find(&ms).Error
	if err != nil {
		return nil, errs.Wrap(OpLoadBuildings, errs.KindInfra, err, map[string]any{"village_id": id})
	}
	out := make([]*domain.BuildingInstance, 0, len(ms))
	for i := range ms {
		out = append(out, model.BuildingToEntity(&ms[i]))
	}
	return out, nil
}

const OpLoadTroopStacks = "repo.sim.LoadTroopStacks"

func (s *Store) LoadTroopStacks(ctx context.Context, id domain.VillageID) ([]*domain.TroopStack, error) {
	var ms []model.TroopStack
	err := s.db.WithContext(ctx).Where("village_id = ?", int64(id)).Order("unit_key").Find(&ms).Error
	if err != nil {
		return nil, errs.Wrap(OpLoadTroopStacks, errs.KindInfra, err, map[string]any{"village_id": id})
	}
	out := make([]*domain.TroopStack, 0, len(ms))
	for i := range ms {
		out = append(out, model.TroopStackToEntity(&ms[i]))
	}
	return out, nil
}

const OpLoadQueueJobs = "repo.sim.LoadQueueJobs"

func (s *Store) LoadQueueJobs(ctx context.Context, id domain.VillageID) ([]*domain.QueueJob, error) {
	var ms []model.QueueJob
	err := s.db.WithContext(ctx).Where("village_id = ?", int64(id)).Order("id").Find(&ms).Error
	if err != nil {
		return nil, errs.Wrap(OpLoadQueueJobs, errs.KindInfra, err, map[string]any{"village_id": id})
	}
	out := make([]*domain.QueueJob, 0, len(ms))
	for i := range ms {
		out = append(out, model.QueueJobToEntity(&ms[i]))
	}
	return out, nil
}

const OpSaveVillage = "repo.sim.SaveVillage"

// SaveVillage 乐观锁写回：WHERE version = 旧值，命中则 version+1。
// 没命中且记录存在说明并发改过，返回 ErrVersionConflict 留给下个 tick。
func (s *Store) SaveVillage(ctx context.Context, v *domain.Village) error {
	m := model.VillageToModel(v)
	m.Version = v.Version + 1

	res := s.db.WithContext(ctx).
		Model(&model.Village{}).
		Where("id = ? AND version = ?", m.Id, v.Version).
		Select("*").
		Updates(m)
	if res.Error != nil {
		return errs.Wrap(OpSaveVillage, errs.KindInfra, res.Error, map[string]any{"village_id": v.ID})
	}
	if res.RowsAffected > 0 {
		v.Version = m.Version
		return nil
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Village{}).Where("id = ?", m.Id).Count(&count).Error; err != nil {
		return errs.Wrap(OpSaveVillage, errs.KindInfra, err, map[string]any{"village_id": v.ID})
	}
	if count > 0 {
		return port.ErrVersionConflict
	}
	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return errs.Wrap(OpSaveVillage, errs.KindInfra, err, map[string]any{"village_id": v.ID})
	}
	v.Version = m.Version
	return nil
}

const OpSaveBuildings = "repo.sim.SaveBuildings"

func (s *Store) SaveBuildings(ctx context.Context, id domain.VillageID, bs []*domain.BuildingInstance) error {
	ms := make([]*model.Building, 0, len(bs))
	for _, b := range bs {
		ms = append(ms, model.BuildingToModel(b))
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("village_id = ?", int64(id)).Delete(&model.Building{}).Error; err != nil {
			return err
		}
		if len(ms) == 0 {
			return nil
		}
		return tx.Create(ms).Error
	})
	if err != nil {
		return errs.Wrap(OpSaveBuildings, errs.KindInfra, err, map[string]any{"village_id": id})
	}
	return nil
}

const OpSaveTroopStacks = "repo.sim.SaveTroopStacks"

func (s *Store) SaveTroopStacks(ctx context.Context, id domain.VillageID, ts []*domain.TroopStack) error {
	ms := make([]*model.TroopStack, 0, len(ts))
	for _, t := range ts {
		ms = append(ms, model.TroopStackToModel(t))
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("village_id = ?", int64(id)).Delete(&model.TroopStack{}).Error; err != nil {
			return err
		}
		if len(ms) == 0 {
			return nil
		}
		return tx.Create(ms).Error
	})
	if err != nil {
		return errs.Wrap(OpSaveTroopStacks, errs.KindInfra, err, map[string]any{"village_id": id})
	}
	return nil
}

const OpSaveQueueJob = "repo.sim.SaveQueueJob"

func (s *Store) SaveQueueJob(ctx context.Context, j *domain.QueueJob) error {
	m := model.QueueJobToModel(j)
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(m).Error
	if err != nil {
		return errs.Wrap(OpSaveQueueJob, errs.KindInfra, err, map[string]any{"job_id": j.ID})
	}
	return nil
}

const OpSaveMovement = "repo.sim.SaveMovement"

func (s *Store) SaveMovement(ctx context.Context, mv *domain.Movement) error {
	m, err := model.MovementToModel(mv)
	if err != nil {
		return errs.Wrap(OpSaveMovement, errs.KindInfra, err, map[string]any{"movement_id": mv.ID})
	}
	m.Version = mv.Version + 1

	res := s.db.WithContext(ctx).
		Model(&model.Movement{}).
		Where("id = ? AND version = ?", m.Id, mv.Version).
		Select("*").
		Updates(m)
	if res.Error != nil {
		return errs.Wrap(OpSaveMovement, errs.KindInfra, res.Error, map[string]any{"movement_id": mv.ID})
	}
	if res.RowsAffected > 0 {
		mv.Version = m.Version
		return nil
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Movement{}).Where("id = ?", m.Id).Count(&count).Error; err != nil {
		return errs.Wrap(OpSaveMovement, errs.KindInfra, err, map[string]any{"movement_id": mv.ID})
	}
	if count > 0 {
		return port.ErrVersionConflict
	}
	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return errs.Wrap(OpSaveMovement, errs.KindInfra, err, map[string]any{"movement_id": mv.ID})
	}
	mv.Version = m.Version
	return nil
}

const OpAppendBattleReport = "repo.sim.AppendBattleReport"

func (s *Store) AppendBattleReport(ctx context.Context, r *domain.BattleReport) error {
	m, err := model.BattleReportToModel(r)
	if err != nil {
		return errs.Wrap(OpAppendBattleReport, errs.KindInfra, err, map[string]any{"report_id": r.ID})
	}
	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return errs.Wrap(OpAppendBattleReport, errs.KindInfra, err, map[string]any{"report_id": r.ID})
	}
	return nil
}
