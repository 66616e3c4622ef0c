package model

import (
	"time"

	"VillageWars/internal/sim/entity/domain"
)

// model
type QueueJob struct {
	Id          int64     `gorm:"column:id;type:bigint;comment:任务id;primaryKey;not null;" json:"id"`
	VillageId   int64     `gorm:"column:village_id;type:bigint;comment:村庄id;not null;index;" json:"village_id"`
	Category    int8      `gorm:"column:category;type:tinyint;comment:1建造 2练兵;not null;" json:"category"`
	BuildingKey string    `gorm:"column:building_key;type:varchar(50);comment:建筑类型;" json:"building_key"`
	Slot        int       `gorm:"column:slot;type:int;comment:目标地块;default:0;" json:"slot"`
	TargetLevel int       `gorm:"column:target_level;type:int;comment:目标等级;default:0;" json:"target_level"`
	UnitKey     string    `gorm:"column:unit_key;type:varchar(50);comment:兵种;" json:"unit_key"`
	Count       int64     `gorm:"column:count;type:bigint;comment:训练数量;default:0;" json:"count"`
	StartAt     time.Time `gorm:"column:start_at;type:timestamp;comment:开始时间;not null;" json:"start_at"`
	CompleteAt  time.Time `gorm:"column:complete_at;type:timestamp;comment:完成时间;not null;index;" json:"complete_at"`
	Status      int8      `gorm:"column:status;type:tinyint;comment:0排队 1进行中 2完成 3取消;not null;default:0;index;" json:"status"`
}

func (j *QueueJob) TableName() string {
	return "village_queue_job"
}

func QueueJobToModel(j *domain.QueueJob) *QueueJob {
	return &QueueJob{
		Id:          int64(j.ID),
		VillageId:   int64(j.VillageID),
		Category:    int8(j.Category),
		BuildingKey: j.BuildingKey,
		Slot:        j.Slot,
		TargetLevel: j.TargetLevel,
		UnitKey:     j.UnitKey,
		Count:       j.Count,
		StartAt:     j.StartAt,
		CompleteAt:  j.CompleteAt,
		Status:      int8(j.Status),
	}
}

func QueueJobToEntity(m *QueueJob) *domain.QueueJob {
	return &domain.QueueJob{
		ID:          domain.JobID(m.Id),
		VillageID:   domain.VillageID(m.VillageId),
		Category:    domain.JobCategory(m.Category),
		BuildingKey: m.BuildingKey,
		Slot:        m.Slot,
		TargetLevel: m.TargetLevel,
		UnitKey:     m.UnitKey,
		Count:       m.Count,
		StartAt:     m.StartAt,
		CompleteAt:  m.CompleteAt,
		Status:      domain.JobStatus(m.Status),
	}
}
