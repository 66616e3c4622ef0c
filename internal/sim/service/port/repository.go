package port

import (
	"context"
	"time"

	"VillageWars/internal/sim/entity/domain"
	"VillageWars/modules/kit/errx"
)

// ErrVersionConflict：乐观锁冲突。实体留到下个 tick 重试，不是致命错误。
var ErrVersionConflict = errx.ErrConflict

// Store 是模拟核心唯一的持久化协作方。
// 每个 Save*/Append* 按单条记录原子生效；SaveVillage/SaveMovement
// 以 Version 做乐观锁，版本不符返回 ErrVersionConflict。
type Store interface {
	// 结算对象拉取
	LoadVillagesDue(ctx context.Context, now time.Time) ([]*domain.Village, error)
	LoadDueQueueJobs(ctx context.Context, now time.Time) ([]*domain.QueueJob, error)
	LoadDueMovements(ctx context.Context, now time.Time) ([]*domain.Movement, error)

	// 村庄粒度读取
	LoadVillage(ctx context.Context, id domain.VillageID) (*domain.Village, error)
	LoadBuildings(ctx context.Context, id domain.VillageID) ([]*domain.BuildingInstance, error)
	LoadTroopStacks(ctx context.Context, id domain.VillageID) ([]*domain.TroopStack, error)
	LoadQueueJobs(ctx context.Context, id domain.VillageID) ([]*domain.QueueJob, error)

	// 写回
	SaveVillage(ctx context.Context, v *domain.Village) error
	SaveBuildings(ctx context.Context, id domain.VillageID, bs []*domain.BuildingInstance) error
	SaveTroopStacks(ctx context.Context, id domain.VillageID, ts []*domain.TroopStack) error
	SaveQueueJob(ctx context.Context, j *domain.QueueJob) error
	SaveMovement(ctx context.Context, m *domain.Movement) error
	AppendBattleReport(ctx context.Context, r *domain.BattleReport) error
}
