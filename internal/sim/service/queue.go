package service

import (
	"math"
	"sort"
	"time"

	"VillageWars/internal/sim/entity"
	"VillageWars/internal/sim/entity/domain"
	"VillageWars/modules/kit/errx"
)

// QueueConfig 是队列推进参数。
type QueueConfig struct {
	Parallelism int     // 每村每类队列同时进行的任务数（参考实现为 1）
	Speed       float64 // 世界速度，作用于新开工任务的时长
}

// CancelledJob 记录被取消的任务及原因；上报而不是静默丢弃。
type CancelledJob struct {
	Job    *domain.QueueJob
	Reason error
}

// QueueResolution 是一个村庄一次队列推进的全部变更。
type QueueResolution struct {
	Completed []*domain.QueueJob
	Promoted  []*domain.QueueJob // pending -> in_progress
	Cancelled []CancelledJob
	Buildings []*domain.BuildingInstance // 升级/新建后的建筑实例（全量）
	Stacks    []*domain.TroopStack       // 增兵后的兵堆（全量）
}

// ResolveDueJobs 推进单个村庄的建造/训练队列。
//
// 到期任务按 (complete_at, id) 升序结算——同一 tick 内多个任务完成时，
// 建筑等级影响后续任务的数值，结算顺序必须确定。
// 引用了未知建筑/兵种的任务标记 cancelled 并上报，不影响其他任务。
// 结算后按 start_time 升序把 pending 提升为 in_progress，直到并行上限。
func ResolveDueJobs(
	jobs []*domain.QueueJob,
	buildings []*domain.BuildingInstance,
	stacks []*domain.TroopStack,
	now time.Time,
	defs Defs,
	cfg QueueConfig,
) (QueueResolution, error) {
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = 1
	}
	if cfg.Speed <= 0 {
		return QueueResolution{}, errx.ErrInvalidArgument.WithData("reason", "non-positive speed")
	}
	for _, j := range jobs {
		if j == nil {
			return QueueResolution{}, errx.ErrInvalidArgument.WithData("reason", "nil job")
		}
		if j.CompleteAt.Before(j.StartAt) {
			return QueueResolution{}, errx.ErrInvalidArgument.
				WithData("job_id", int64(j.ID)).
				WithData("reason", "complete_at before start_at")
		}
	}

	res := QueueResolution{
		Buildings: buildings,
		Stacks:    stacks,
	}

	due := make([]*domain.QueueJob, 0, len(jobs))
	for _, j := range jobs {
		if j.DueAt(now) {
			due = append(due, j)
		}
	}
	sort.Slice(due, func(i, k int) bool {
		if !due[i].CompleteAt.Equal(due[k].CompleteAt) {
			return due[i].CompleteAt.Before(due[k].CompleteAt)
		}
		return due[i].ID < due[k].ID
	})

	for _, j := range due {
		switch j.Category {
		case JobBuilding:
			if err := applyBuildingJob(j, &res, defs); err != nil {
				j.Status = domain.JobCancelled
				res.Cancelled = append(res.Cancelled, CancelledJob{Job: j, Reason: err})
				continue
			}
		case JobTraining:
			if err := applyTrainingJob(j, &res, defs); err != nil {
				j.Status = domain.JobCancelled
				res.Cancelled = append(res.Cancelled, CancelledJob{Job: j, Reason: err})
				continue
			}
		default:
			j.Status = domain.JobCancelled
			res.Cancelled = append(res.Cancelled, CancelledJob{
				Job:    j,
				Reason: errx.ErrInvalidArgument.WithData("reason", "unknown job category"),
			})
			continue
		}
		j.Status = domain.JobCompleted
		res.Completed = append(res.Completed, j)
	}

	promote(jobs, now, defs, cfg, &res)
	return res, nil
}

// JobBuilding/JobTraining 的别名，避免 service 层到处写 domain 前缀。
const (
	JobBuilding = domain.JobBuilding
	JobTraining = domain.JobTraining
)

func applyBuildingJob(j *domain.QueueJob, res *QueueResolution, defs Defs) error {
	def, ok := defs.Building(j.BuildingKey)
	if !ok {
		return errx.ErrNotFound.
			WithData("building_key", j.BuildingKey).
			WithCause(entity.ErrBuildingNotFound)
	}

	target := j.TargetLevel
	for _, b := range res.Buildings {
		if b.Slot == j.Slot {
			if target <= 0 {
				target = b.Level + 1
			}
			if target > def.MaxLevel {
				target = def.MaxLevel
			}
			b.Level = target
			b.Key = j.BuildingKey
			return nil
		}
	}

	// 该地块还没有建筑：新建
	if target <= 0 {
		target = 1
	}
	if target > def.MaxLevel {
		target = def.MaxLevel
	}
	res.Buildings = append(res.Buildings, &domain.BuildingInstance{
		VillageID: j.VillageID,
		Key:       j.BuildingKey,
		Level:     target,
		Slot:      j.Slot,
	})
	return nil
}

func applyTrainingJob(j *domain.QueueJob, res *QueueResolution, defs Defs) error {
	if _, ok := defs.Unit(j.UnitKey); !ok {
		return errx.ErrNotFound.
			WithData("unit_key", j.UnitKey).
			WithCause(entity.ErrUnitNotFound)
	}
	if j.Count <= 0 {
		return errx.ErrInvalidArgument.
			WithData("job_id", int64(j.ID)).
			WithData("reason", "non-positive train count")
	}

	for _, t := range res.Stacks {
		if t.UnitKey == j.UnitKey {
			t.InVillage += j.Count
			return nil
		}
	}
	res.Stacks = append(res.Stacks, &domain.TroopStack{
		VillageID: j.VillageID,
		UnitKey:   j.UnitKey,
		InVillage: j.Count,
	})
	return nil
}

// promote 把排队中的任务提升到进行中，直到每类队列的并行上限。
// 新开工任务的完成时间按当前数值表重算：建筑等级变了，时长也会变。
func promote(jobs []*domain.QueueJob, now time.Time, defs Defs, cfg QueueConfig, res *QueueResolution) {
	for _, cat := range []domain.JobCategory{JobBuilding, JobTraining} {
		running := 0
		pending := make([]*domain.QueueJob, 0)
		for _, j := range jobs {
			if j.Category != cat {
				continue
			}
			switch j.Status {
			case domain.JobInProgress:
				running++
			case domain.JobPending:
				pending = append(pending, j)
			}
		}
		sort.Slice(pending, func(i, k int) bool {
			if !pending[i].StartAt.Equal(pending[k].StartAt) {
				return pending[i].StartAt.Before(pending[k].StartAt)
			}
			return pending[i].ID < pending[k].ID
		})

		for _, j := range pending {
			if running >= cfg.Parallelism {
				break
			}
			d, err := jobDuration(j, defs)
			if err != nil {
				j.Status = domain.JobCancelled
				res.Cancelled = append(res.Cancelled, CancelledJob{Job: j, Reason: err})
				continue
			}
			j.Status = domain.JobInProgress
			j.StartAt = now
			j.CompleteAt = now.Add(scaleDuration(d, cfg.Speed))
			res.Promoted = append(res.Promoted, j)
			running++
		}
	}
}

func jobDuration(j *domain.QueueJob, defs Defs) (time.Duration, error) {
	switch j.Category {
	case JobBuilding:
		def, ok := defs.Building(j.BuildingKey)
		if !ok {
			return 0, errx.ErrNotFound.
				WithData("building_key", j.BuildingKey).
				WithCause(entity.ErrBuildingNotFound)
		}
		level := j.TargetLevel
		if level <= 0 {
			level = 1
		}
		return time.Duration(def.DurationAt(level)) * time.Second, nil
	case JobTraining:
		def, ok := defs.Unit(j.UnitKey)
		if !ok {
			return 0, errx.ErrNotFound.
				WithData("unit_key", j.UnitKey).
				WithCause(entity.ErrUnitNotFound)
		}
		if j.Count <= 0 {
			return 0, errx.ErrInvalidArgument.WithData("reason", "non-positive train count")
		}
		return time.Duration(def.TrainTime*j.Count) * time.Second, nil
	default:
		return 0, errx.ErrInvalidArgument.WithData("reason", "unknown job category")
	}
}

func scaleDuration(d time.Duration, speed float64) time.Duration {
	return time.Duration(math.Round(float64(d) / speed))
}
