package domain

import "time"

type JobID int64

// JobCategory 区分建造队列和训练队列；每村每类队列独立推进。
type JobCategory int8

const (
	JobBuilding JobCategory = 1 // 建造/升级
	JobTraining JobCategory = 2 // 练兵
)

func (c JobCategory) String() string {
	switch c {
	case JobBuilding:
		return "building"
	case JobTraining:
		return "training"
	default:
		return "unknown"
	}
}

type JobStatus int8

const (
	JobPending    JobStatus = 0 // 排队中
	JobInProgress JobStatus = 1 // 进行中
	JobCompleted  JobStatus = 2
	JobCancelled  JobStatus = 3
)

func (s JobStatus) String() string {
	switch s {
	case JobPending:
		return "pending"
	case JobInProgress:
		return "in_progress"
	case JobCompleted:
		return "completed"
	case JobCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// QueueJob 是一个限时任务：建筑升级或练兵。
// 不变式：CompleteAt > StartAt。
// entity
type QueueJob struct {
	ID        JobID
	VillageID VillageID
	Category  JobCategory
	// 建造任务
	BuildingKey string // 建筑类型 key
	Slot        int    // 目标地块
	TargetLevel int    // 完成后的等级
	// 训练任务
	UnitKey    string // 兵种 key
	Count      int64  // 训练数量
	StartAt    time.Time
	CompleteAt time.Time
	Status     JobStatus
}

// DueAt 任务是否在 now 时刻到期（只有进行中的任务会到期）。
func (j *QueueJob) DueAt(now time.Time) bool {
	return j.Status == JobInProgress && !now.Before(j.CompleteAt)
}
