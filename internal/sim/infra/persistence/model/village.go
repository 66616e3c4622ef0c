package model

import (
	"time"

	"VillageWars/internal/sim/entity/domain"
)

// model
type Village struct {
	Id        int64     `gorm:"column:id;type:bigint;comment:村庄id;primaryKey;not null;" json:"id"`
	PlayerId  int64     `gorm:"column:player_id;type:bigint;comment:归属玩家;not null;index;" json:"player_id"`
	X         int       `gorm:"column:x;type:int;comment:x坐标;not null;" json:"x"`
	Y         int       `gorm:"column:y;type:int;comment:y坐标;not null;" json:"y"`
	Wood      int64     `gorm:"column:wood;type:bigint;comment:木材存量;not null;default:0;" json:"wood"`
	Clay      int64     `gorm:"column:clay;type:bigint;comment:黏土存量;not null;default:0;" json:"clay"`
	Iron      int64     `gorm:"column:iron;type:bigint;comment:铁存量;not null;default:0;" json:"iron"`
	Crop      int64     `gorm:"column:crop;type:bigint;comment:粮食存量;not null;default:0;" json:"crop"`
	CapWood   int64     `gorm:"column:cap_wood;type:bigint;comment:木材上限;not null;default:0;" json:"cap_wood"`
	CapClay   int64     `gorm:"column:cap_clay;type:bigint;comment:黏土上限;not null;default:0;" json:"cap_clay"`
	CapIron   int64     `gorm:"column:cap_iron;type:bigint;comment:铁上限;not null;default:0;" json:"cap_iron"`
	CapCrop   int64     `gorm:"column:cap_crop;type:bigint;comment:粮食上限;not null;default:0;" json:"cap_crop"`
	RateWood  int64     `gorm:"column:rate_wood;type:bigint;comment:木材时产;not null;default:0;" json:"rate_wood"`
	RateClay  int64     `gorm:"column:rate_clay;type:bigint;comment:黏土时产;not null;default:0;" json:"rate_clay"`
	RateIron  int64     `gorm:"column:rate_iron;type:bigint;comment:铁时产;not null;default:0;" json:"rate_iron"`
	RateCrop  int64     `gorm:"column:rate_crop;type:bigint;comment:粮食时产;not null;default:0;" json:"rate_crop"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamp;comment:上次结算时间;not null;index;" json:"updated_at"`
	Version   int64     `gorm:"column:version;type:bigint;comment:乐观锁版本;not null;default:0;" json:"version"`
}

func (v *Village) TableName() string {
	return "village"
}

func VillageToModel(v *domain.Village) *Village {
	return &Village{
		Id:        int64(v.ID),
		PlayerId:  int64(v.PlayerID),
		X:         v.X,
		Y:         v.Y,
		Wood:      v.Amounts.Wood,
		Clay:      v.Amounts.Clay,
		Iron:      v.Amounts.Iron,
		Crop:      v.Amounts.Crop,
		CapWood:   v.Capacity.Wood,
		CapClay:   v.Capacity.Clay,
		CapIron:   v.Capacity.Iron,
		CapCrop:   v.Capacity.Crop,
		RateWood:  v.Rates.Wood,
		RateClay:  v.Rates.Clay,
		RateIron:  v.Rates.Iron,
		RateCrop:  v.Rates.Crop,
		UpdatedAt: v.UpdatedAt,
		Version:   v.Version,
	}
}

func VillageToEntity(m *Village) *domain.Village {
	return &domain.Village{
		ID:        domain.VillageID(m.Id),
		PlayerID:  domain.PlayerID(m.PlayerId),
		X:         m.X,
		Y:         m.Y,
		Amounts:   domain.Resources{Wood: m.Wood, Clay: m.Clay, Iron: m.Iron, Crop: m.Crop},
		Capacity:  domain.Resources{Wood: m.CapWood, Clay: m.CapClay, Iron: m.CapIron, Crop: m.CapCrop},
		Rates:     domain.Resources{Wood: m.RateWood, Clay: m.RateClay, Iron: m.RateIron, Crop: m.RateCrop},
		UpdatedAt: m.UpdatedAt,
		Version:   m.Version,
	}
}
