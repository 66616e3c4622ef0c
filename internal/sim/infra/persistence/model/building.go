package model

import (
	"VillageWars/internal/sim/entity/domain"
)

// model
type Building struct {
	VillageId int64  `gorm:"column:village_id;type:bigint;comment:村庄id;primaryKey;not null;" json:"village_id"`
	Slot      int    `gorm:"column:slot;type:int;comment:地块编号;primaryKey;not null;" json:"slot"`
	Key       string `gorm:"column:building_key;type:varchar(50);comment:建筑类型;not null;" json:"building_key"`
	Level     int    `gorm:"column:level;type:int;comment:等级;not null;default:1;" json:"level"`
}

func (b *Building) TableName() string {
	return "village_building"
}

func BuildingToModel(b *domain.BuildingInstance) *Building {
	return &Building{
		VillageId: int64(b.VillageID),
		Slot:      b.Slot,
		Key:       b.Key,
		Level:     b.Level,
	}
}

func BuildingToEntity(m *Building) *domain.BuildingInstance {
	return &domain.BuildingInstance{
		VillageID: domain.VillageID(m.VillageId),
		Slot:      m.Slot,
		Key:       m.Key,
		Level:     m.Level,
	}
}
