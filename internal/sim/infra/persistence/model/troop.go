package model

import (
	"VillageWars/internal/sim/entity/domain"
)

// model
type TroopStack struct {
	VillageId int64  `gorm:"column:village_id;type:bigint;comment:村庄id;primaryKey;not null;" json:"village_id"`
	UnitKey   string `gorm:"column:unit_key;type:varchar(50);comment:兵种;primaryKey;not null;" json:"unit_key"`
	InVillage int64  `gorm:"column:in_village;type:bigint;comment:驻守在家;not null;default:0;" json:"in_village"`
	InAttack  int64  `gorm:"column:in_attack;type:bigint;comment:出征中;not null;default:0;" json:"in_attack"`
	InDefense int64  `gorm:"column:in_defense;type:bigint;comment:防御序列;not null;default:0;" json:"in_defense"`
	InSupport int64  `gorm:"column:in_support;type:bigint;comment:援防在外;not null;default:0;" json:"in_support"`
}

func (t *TroopStack) TableName() string {
	return "village_troop"
}

func TroopStackToModel(t *domain.TroopStack) *TroopStack {
	return &TroopStack{
		VillageId: int64(t.VillageID),
		UnitKey:   t.UnitKey,
		InVillage: t.InVillage,
		InAttack:  t.InAttack,
		InDefense: t.InDefense,
		InSupport: t.InSupport,
	}
}

func TroopStackToEntity(m *TroopStack) *domain.TroopStack {
	return &domain.TroopStack{
		VillageID: domain.VillageID(m.VillageId),
		UnitKey:   m.UnitKey,
		InVillage: m.InVillage,
		InAttack:  m.InAttack,
		InDefense: m.InDefense,
		InSupport: m.InSupport,
	}
}
