package model

import (
	"encoding/json"
	"time"

	"VillageWars/internal/sim/entity/domain"
)

// model
type Movement struct {
	Id        int64     `gorm:"column:id;type:bigint;comment:行军id;primaryKey;not null;" json:"id"`
	PlayerId  int64     `gorm:"column:player_id;type:bigint;comment:发起玩家;not null;" json:"player_id"`
	FromId    int64     `gorm:"column:from_id;type:bigint;comment:出发村庄;not null;index;" json:"from_id"`
	ToId      int64     `gorm:"column:to_id;type:bigint;comment:目标村庄;not null;index;" json:"to_id"`
	Type      int8      `gorm:"column:type;type:tinyint;comment:1攻击 2掠夺 3援防 4召回;not null;" json:"type"`
	Troops    string    `gorm:"column:troops;type:varchar(2000);comment:兵种->数量 json;" json:"troops"`
	LootWood  int64     `gorm:"column:loot_wood;type:bigint;comment:战利品木;default:0;" json:"loot_wood"`
	LootClay  int64     `gorm:"column:loot_clay;type:bigint;comment:战利品泥;default:0;" json:"loot_clay"`
	LootIron  int64     `gorm:"column:loot_iron;type:bigint;comment:战利品铁;default:0;" json:"loot_iron"`
	LootCrop  int64     `gorm:"column:loot_crop;type:bigint;comment:战利品粮;default:0;" json:"loot_crop"`
	StartedAt time.Time `gorm:"column:started_at;type:timestamp;comment:出发时间;not null;" json:"started_at"`
	ArrivesAt time.Time `gorm:"column:arrives_at;type:timestamp;comment:到达时间;not null;index;" json:"arrives_at"`
	Status    int8      `gorm:"column:status;type:tinyint;comment:0行进 1到达 2回程 3完结 4撤回;not null;default:0;index;" json:"status"`
	Version   int64     `gorm:"column:version;type:bigint;comment:乐观锁版本;not null;default:0;" json:"version"`
}

func (m *Movement) TableName() string {
	return "movement"
}

func MovementToModel(m *domain.Movement) (*Movement, error) {
	troops, err := json.Marshal(m.Troops)
	if err != nil {
		return nil, err
	}
	return &Movement{
		Id:        int64(m.ID),
		PlayerId:  int64(m.PlayerID),
		FromId:    int64(m.From),
		ToId:      int64(m.To),
		Type:      int8(m.Type),
		Troops:    string(troops),
		LootWood:  m.Loot.Wood,
		LootClay:  m.Loot.Clay,
		LootIron:  m.Loot.Iron,
		LootCrop:  m.Loot.Crop,
		StartedAt: m.StartedAt,
		ArrivesAt: m.ArrivesAt,
		Status:    int8(m.Status),
		Version:   m.Version,
	}, nil
}

func MovementToEntity(m *Movement) (*domain.Movement, error) {
	troops := make(map[string]int64)
	if m.Troops != "" {
		if err := json.Unmarshal([]byte(m.Troops), &troops); err != nil {
			return nil, err
		}
	}
	return &domain.Movement{
		ID:        domain.MovementID(m.Id),
		PlayerID:  domain.PlayerID(m.PlayerId),
		From:      domain.VillageID(m.FromId),
		To:        domain.VillageID(m.ToId),
		Type:      domain.MovementType(m.Type),
		Troops:    troops,
		Loot:      domain.Resources{Wood: m.LootWood, Clay: m.LootClay, Iron: m.LootIron, Crop: m.LootCrop},
		StartedAt: m.StartedAt,
		ArrivesAt: m.ArrivesAt,
		Status:    domain.MovementStatus(m.Status),
		Version:   m.Version,
	}, nil
}
