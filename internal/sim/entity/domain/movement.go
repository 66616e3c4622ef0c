package domain

import "time"

type MovementID int64

type MovementType int8

const (
	MovementAttack    MovementType = 1 // 攻击：打完回程
	MovementRaid      MovementType = 2 // 掠夺：打完回程，携带资源受 raid_loot_share 限制
	MovementReinforce MovementType = 3 // 援防：到达即驻扎，没有回程
	MovementReturn    MovementType = 4 // 召回：到达即归队
)

func (t MovementType) String() string {
	switch t {
	case MovementAttack:
		return "attack"
	case MovementRaid:
		return "raid"
	case MovementReinforce:
		return "reinforce"
	case MovementReturn:
		return "return"
	default:
		return "unknown"
	}
}

type MovementStatus int8

const (
	MovementTravelling MovementStatus = 0
	MovementArrived    MovementStatus = 1
	MovementReturning  MovementStatus = 2
	MovementCompleted  MovementStatus = 3
	MovementCancelled  MovementStatus = 4
)

func (s MovementStatus) String() string {
	switch s {
	case MovementTravelling:
		return "travelling"
	case MovementArrived:
		return "arrived"
	case MovementReturning:
		return "returning"
	case MovementCompleted:
		return "completed"
	case MovementCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Movement 是两村之间在途的部队/资源。
// 不变式：ArrivesAt > StartedAt；状态只能单调前进
// （travelling → arrived → returning → completed，或仅从 travelling → cancelled）。
// entity
type Movement struct {
	ID        MovementID
	PlayerID  PlayerID
	From      VillageID
	To        VillageID
	Type      MovementType
	Troops    map[string]int64 // 兵种 key -> 数量（出发时的快照）
	Loot      Resources        // 回程携带的战利品
	StartedAt time.Time
	ArrivesAt time.Time
	Status    MovementStatus
	Version   int64
}

// TravelDuration 单程时长。
func (m *Movement) TravelDuration() time.Duration {
	return m.ArrivesAt.Sub(m.StartedAt)
}

// ReturnETA 回程到家时刻：原路返回，时长与去程相同。
func (m *Movement) ReturnETA() time.Time {
	return m.ArrivesAt.Add(m.TravelDuration())
}

// CanTransition 校验状态迁移是否合法（单调，cancelled 只能来自 travelling）。
func (m *Movement) CanTransition(next MovementStatus) bool {
	switch m.Status {
	case MovementTravelling:
		return next == MovementArrived || next == MovementCancelled
	case MovementArrived:
		return next == MovementReturning || next == MovementCompleted
	case MovementReturning:
		return next == MovementCompleted
	default:
		return false
	}
}

// TroopsCopy 返回部队快照的拷贝，避免共享 map 被多处修改。
func (m *Movement) TroopsCopy() map[string]int64 {
	out := make(map[string]int64, len(m.Troops))
	for k, v := range m.Troops {
		out[k] = v
	}
	return out
}
