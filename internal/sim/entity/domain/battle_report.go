package domain

import "time"

type ReportID int64

// BattleReport 是一次战斗的不可变战报，只追加，生成后永不修改。
// entity
type BattleReport struct {
	ID              ReportID
	MovementID      MovementID
	AttackerID      PlayerID
	DefenderID      PlayerID
	AttackerVillage VillageID
	DefenderVillage VillageID
	AttackerBefore  map[string]int64 // 开战时兵力
	DefenderBefore  map[string]int64
	AttackerLosses  map[string]int64
	DefenderLosses  map[string]int64
	Loot            Resources
	AttackerWon     bool
	CreatedAt       time.Time
}
