package model

import (
	"encoding/json"
	"time"

	"VillageWars/internal/sim/entity/domain"
)

// 战报只追加不修改，mysql 侧兵力明细直接存 json。
// model
type BattleReport struct {
	Id              int64     `gorm:"column:id;type:bigint;comment:战报id;primaryKey;not null;" json:"id"`
	MovementId      int64     `gorm:"column:movement_id;type:bigint;comment:行军id;not null;index;" json:"movement_id"`
	AttackerId      int64     `gorm:"column:attacker_id;type:bigint;comment:攻方玩家;not null;index;" json:"attacker_id"`
	DefenderId      int64     `gorm:"column:defender_id;type:bigint;comment:守方玩家;not null;index;" json:"defender_id"`
	AttackerVillage int64     `gorm:"column:attacker_village;type:bigint;comment:攻方村庄;not null;" json:"attacker_village"`
	DefenderVillage int64     `gorm:"column:defender_village;type:bigint;comment:守方村庄;not null;" json:"defender_village"`
	AttackerBefore  string    `gorm:"column:attacker_before;type:varchar(2000);comment:攻方开战兵力 json;" json:"attacker_before"`
	DefenderBefore  string    `gorm:"column:defender_before;type:varchar(2000);comment:守方开战兵力 json;" json:"defender_before"`
	AttackerLosses  string    `gorm:"column:attacker_losses;type:varchar(2000);comment:攻方损失 json;" json:"attacker_losses"`
	DefenderLosses  string    `gorm:"column:defender_losses;type:varchar(2000);comment:守方损失 json;" json:"defender_losses"`
	LootWood        int64     `gorm:"column:loot_wood;type:bigint;comment:战利品木;default:0;" json:"loot_wood"`
	LootClay        int64     `gorm:"column:loot_clay;type:bigint;comment:战利品泥;default:0;" json:"loot_clay"`
	LootIron        int64     `gorm:"column:loot_iron;type:bigint;comment:战利品铁;default:0;" json:"loot_iron"`
	LootCrop        int64     `gorm:"column:loot_crop;type:bigint;comment:战利品粮;default:0;" json:"loot_crop"`
	AttackerWon     bool      `gorm:"column:attacker_won;type:tinyint(1);comment:攻方是否获胜;not null;default:0;" json:"attacker_won"`
	CreatedAt       time.Time `gorm:"column:created_at;type:timestamp;not null;default:CURRENT_TIMESTAMP;" json:"created_at"`
}

func (r *BattleReport) TableName() string {
	return "battle_report"
}

func BattleReportToModel(r *domain.BattleReport) (*BattleReport, error) {
	ab, err := json.Marshal(r.AttackerBefore)
	if err != nil {
		return nil, err
	}
	db, err := json.Marshal(r.DefenderBefore)
	if err != nil {
		return nil, err
	}
	al, err := json.Marshal(r.AttackerLosses)
	if err != nil {
		return nil, err
	}
	dl, err := json.Marshal(r.DefenderLosses)
	if err != nil {
		return nil, err
	}
	return &BattleReport{
		Id:              int64(r.ID),
		MovementId:      int64(r.MovementID),
		AttackerId:      int64(r.AttackerID),
		DefenderId:      int64(r.DefenderID),
		AttackerVillage: int64(r.AttackerVillage),
		DefenderVillage: int64(r.DefenderVillage),
		AttackerBefore:  string(ab),
		DefenderBefore:  string(db),
		AttackerLosses:  string(al),
		DefenderLosses:  string(dl),
		LootWood:        r.Loot.Wood,
		LootClay:        r.Loot.Clay,
		LootIron:        r.Loot.Iron,
		LootCrop:        r.Loot.Crop,
		AttackerWon:     r.AttackerWon,
		CreatedAt:       r.CreatedAt,
	}, nil
}
