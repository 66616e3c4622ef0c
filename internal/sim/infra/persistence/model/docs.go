package model

import (
	"time"

	"VillageWars/internal/sim/entity/domain"
)

// mongodb 文档。兵力明细存原生 map，不走 json 字符串。

type VillageDoc struct {
	Id        int64        `bson:"_id"`
	PlayerId  int64        `bson:"player_id"`
	X         int          `bson:"x"`
	Y         int          `bson:"y"`
	Amounts   ResourcesDoc `bson:"amounts"`
	Capacity  ResourcesDoc `bson:"capacity"`
	Rates     ResourcesDoc `bson:"rates"`
	UpdatedAt time.Time    `bson:"updated_at"`
	Version   int64        `bson:"version"`
}

type ResourcesDoc struct {
	Wood int64 `bson:"wood"`
	Clay int64 `bson:"clay"`
	Iron int64 `bson:"iron"`
	Crop int64 `bson:"crop"`
}

type BuildingDoc struct {
	VillageId int64  `bson:"village_id"`
	Slot      int    `bson:"slot"`
	Key       string `bson:"building_key"`
	Level     int    `bson:"level"`
}

type TroopStackDoc struct {
	VillageId int64  `bson:"village_id"`
	UnitKey   string `bson:"unit_key"`
	InVillage int64  `bson:"in_village"`
	InAttack  int64  `bson:"in_attack"`
	InDefense int64  `bson:"in_defense"`
	InSupport int64  `bson:"in_support"`
}

type QueueJobDoc struct {
	Id          int64     `bson:"_id"`
	VillageId   int64     `bson:"village_id"`
	Category    int8      `bson:"category"`
	BuildingKey string    `bson:"building_key,omitempty"`
	Slot        int       `bson:"slot,omitempty"`
	TargetLevel int       `bson:"target_level,omitempty"`
	UnitKey     string    `bson:"unit_key,omitempty"`
	Count       int64     `bson:"count,omitempty"`
	StartAt     time.Time `bson:"start_at"`
	CompleteAt  time.Time `bson:"complete_at"`
	Status      int8      `bson:"status"`
}

type MovementDoc struct {
	Id        int64            `bson:"_id"`
	PlayerId  int64            `bson:"player_id"`
	FromId    int64            `bson:"from_id"`
	ToId      int64            `bson:"to_id"`
	Type      int8             `bson:"type"`
	Troops    map[string]int64 `bson:"troops"`
	Loot      ResourcesDoc     `bson:"loot"`
	StartedAt time.Time        `bson:"started_at"`
	ArrivesAt time.Time        `bson:"arrives_at"`
	Status    int8             `bson:"status"`
	Version   int64            `bson:"version"`
}

type BattleReportDoc struct {
	Id              int64            `bson:"_id"`
	MovementId      int64            `bson:"movement_id"`
	AttackerId      int64            `bson:"attacker_id"`
	DefenderId      int64            `bson:"defender_id"`
	AttackerVillage int64            `bson:"attacker_village"`
	DefenderVillage int64            `bson:"defender_village"`
	AttackerBefore  map[string]int64 `bson:"attacker_before"`
	DefenderBefore  map[string]int64 `bson:"defender_before"`
	AttackerLosses  map[string]int64 `bson:"attacker_losses"`
	DefenderLosses  map[string]int64 `bson:"defender_losses"`
	Loot            ResourcesDoc     `bson:"loot"`
	AttackerWon     bool             `bson:"attacker_won"`
	CreatedAt       time.Time        `bson:"created_at"`
}

func resourcesToDoc(r domain.Resources) ResourcesDoc {
	return ResourcesDoc{Wood: r.Wood, Clay: r.Clay, Iron: r.Iron, Crop: r.Crop}
}

func docToResources(d ResourcesDoc) domain.Resources {
	return domain.Resources{Wood: d.Wood, Clay: d.Clay, Iron: d.Iron, Crop: d.Crop}
}

func VillageToDoc(v *domain.Village) VillageDoc {
	return VillageDoc{
		Id:        int64(v.ID),
		PlayerId:  int64(v.PlayerID),
		X:         v.X,
		Y:         v.Y,
		Amounts:   resourcesToDoc(v.Amounts),
		Capacity:  resourcesToDoc(v.Capacity),
		Rates:     resourcesToDoc(v.Rates),
		UpdatedAt: v.UpdatedAt,
		Version:   v.Version,
	}
}

func DocToVillage(d VillageDoc) *domain.Village {
	return &domain.Village{
		ID:        domain.VillageID(d.Id),
		PlayerID:  domain.PlayerID(d.PlayerId),
		X:         d.X,
		Y:         d.Y,
		Amounts:   docToResources(d.Amounts),
		Capacity:  docToResources(d.Capacity),
		Rates:     docToResources(d.Rates),
		UpdatedAt: d.UpdatedAt,
		Version:   d.Version,
	}
}

func BuildingToDoc(b *domain.BuildingInstance) BuildingDoc {
	return BuildingDoc{
		VillageId: int64(b.VillageID),
		Slot:      b.Slot,
		Key:       b.Key,
		Level:     b.Level,
	}
}

func DocToBuilding(d BuildingDoc) *domain.BuildingInstance {
	return &domain.BuildingInstance{
		VillageID: domain.VillageID(d.VillageId),
		Slot:      d.Slot,
		Key:       d.Key,
		Level:     d.Level,
	}
}

func TroopStackToDoc(t *domain.TroopStack) TroopStackDoc {
	return TroopStackDoc{
		VillageId: int64(t.VillageID),
		UnitKey:   t.UnitKey,
		InVillage: t.InVillage,
		InAttack:  t.InAttack,
		InDefense: t.InDefense,
		InSupport: t.InSupport,
	}
}

func DocToTroopStack(d TroopStackDoc) *domain.TroopStack {
	return &domain.TroopStack{
		VillageID: domain.VillageID(d.VillageId),
		UnitKey:   d.UnitKey,
		InVillage: d.InVillage,
		InAttack:  d.InAttack,
		InDefense: d.InDefense,
		InSupport: d.InSupport,
	}
}

func QueueJobToDoc(j *domain.QueueJob) QueueJobDoc {
	return QueueJobDoc{
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

func DocToQueueJob(d QueueJobDoc) *domain.QueueJob {
	return &domain.QueueJob{
		ID:          domain.JobID(d.Id),
		VillageID:   domain.VillageID(d.VillageId),
		Category:    domain.JobCategory(d.Category),
		BuildingKey: d.BuildingKey,
		Slot:        d.Slot,
		TargetLevel: d.TargetLevel,
		UnitKey:     d.UnitKey,
		Count:       d.Count,
		StartAt:     d.StartAt,
		CompleteAt:  d.CompleteAt,
		Status:      domain.JobStatus(d.Status),
	}
}

func MovementToDoc(m *domain.Movement) MovementDoc {
	return MovementDoc{
		Id:        int64(m.ID),
		PlayerId:  int64(m.PlayerID),
		FromId:    int64(m.From),
		ToId:      int64(m.To),
		Type:      int8(m.Type),
		Troops:    m.TroopsCopy(),
		Loot:      resourcesToDoc(m.Loot),
		StartedAt: m.StartedAt,
		ArrivesAt: m.ArrivesAt,
		Status:    int8(m.Status),
		Version:   m.Version,
	}
}

func DocToMovement(d MovementDoc) *domain.Movement {
	troops := d.Troops
	if troops == nil {
		troops = make(map[string]int64)
	}
	return &domain.Movement{
		ID:        domain.MovementID(d.Id),
		PlayerID:  domain.PlayerID(d.PlayerId),
		From:      domain.VillageID(d.FromId),
		To:        domain.VillageID(d.ToId),
		Type:      domain.MovementType(d.Type),
		Troops:    troops,
		Loot:      docToResources(d.Loot),
		StartedAt: d.StartedAt,
		ArrivesAt: d.ArrivesAt,
		Status:    domain.MovementStatus(d.Status),
		Version:   d.Version,
	}
}

func BattleReportToDoc(r *domain.BattleReport) BattleReportDoc {
	return BattleReportDoc{
		Id:              int64(r.ID),
		MovementId:      int64(r.MovementID),
		AttackerId:      int64(r.AttackerID),
		DefenderId:      int64(r.DefenderID),
		AttackerVillage: int64(r.AttackerVillage),
		DefenderVillage: int64(r.DefenderVillage),
		AttackerBefore:  r.AttackerBefore,
		DefenderBefore:  r.DefenderBefore,
		AttackerLosses:  r.AttackerLosses,
		DefenderLosses:  r.DefenderLosses,
		Loot:            resourcesToDoc(r.Loot),
		AttackerWon:     r.AttackerWon,
		CreatedAt:       r.CreatedAt,
	}
}
