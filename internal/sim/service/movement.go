package service

import (
	"time"

	"VillageWars/internal/sim/entity/domain"
	"VillageWars/modules/kit/errx"
)

// MovementEventType 是行军状态机的一次迁移。
type MovementEventType int8

const (
	EventArrived MovementEventType = iota + 1
	EventReturning
	EventCompleted
	EventCancelled
)

func (t MovementEventType) String() string {
	switch t {
	case EventArrived:
		return "arrived"
	case EventReturning:
		return "returning"
	case EventCompleted:
		return "completed"
	case EventCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// MovementEvent 每次状态迁移发出一条；部队/资源的重算由引擎落库。
type MovementEvent struct {
	Type     MovementEventType
	Movement *domain.Movement
	At       time.Time
}

// ErrCancelWindowClosed：行军已过可撤回窗口（或已不在 travelling）。
var ErrCancelWindowClosed = errx.NewBiz("MOVEMENT_CANCEL_WINDOW_CLOSED", "行军已过可撤回窗口")

// AdvanceMovement 把行军状态机推进到 now。
//
// travelling --(now≥arrives_at)--> arrived；
// 攻击/掠夺在 arrived 停住，等引擎结算战斗后调 BeginReturn；
// 援防/召回到达即完结（援防没有回程）；
// returning --(now≥return_eta)--> completed，回程时长与去程相同。
func AdvanceMovement(m *domain.Movement, now time.Time) ([]MovementEvent, error) {
	if m == nil {
		return nil, errx.ErrInvalidArgument.WithData("reason", "nil movement")
	}
	if !m.ArrivesAt.After(m.StartedAt) {
		return nil, errx.ErrInvalidArgument.
			WithData("movement_id", int64(m.ID)).
			WithData("reason", "arrives_at not after started_at")
	}

	var events []MovementEvent

	if m.Status == domain.MovementTravelling && !now.Before(m.ArrivesAt) {
		m.Status = domain.MovementArrived
		events = append(events, MovementEvent{Type: EventArrived, Movement: m, At: m.ArrivesAt})

		switch m.Type {
		case domain.MovementReinforce, domain.MovementReturn:
			// 到达即完结：援防驻下、召回归队，永远不会出现回程。
			m.Status = domain.MovementCompleted
			events = append(events, MovementEvent{Type: EventCompleted, Movement: m, At: m.ArrivesAt})
		case domain.MovementAttack, domain.MovementRaid:
			// 停在 arrived，等战斗结算决定回程还是全灭。
		default:
			return nil, errx.ErrInvalidArgument.
				WithData("movement_id", int64(m.ID)).
				WithData("reason", "unknown movement type")
		}
	}

	if m.Status == domain.MovementReturning && !now.Before(m.ReturnETA()) {
		m.Status = domain.MovementCompleted
		events = append(events, MovementEvent{Type: EventCompleted, Movement: m, At: m.ReturnETA()})
	}

	return events, nil
}

// BeginReturn 战斗结算后开始回程：幸存部队带着战利品按原路返程。
// survivors 为空表示全军覆没，行军直接完结，没有回程。
func BeginReturn(m *domain.Movement, survivors map[string]int64, loot domain.Resources, now time.Time) ([]MovementEvent, error) {
	if m == nil {
		return nil, errx.ErrInvalidArgument.WithData("reason", "nil movement")
	}
	if m.Status != domain.MovementArrived {
		return nil, errx.ErrInvalidArgument.
			WithData("movement_id", int64(m.ID)).
			WithData("reason", "begin return from status "+m.Status.String())
	}

	alive := int64(0)
	for _, c := range survivors {
		alive += c
	}
	m.Troops = survivors
	m.Loot = loot

	if alive <= 0 {
		m.Status = domain.MovementCompleted
		return []MovementEvent{{Type: EventCompleted, Movement: m, At: now}}, nil
	}
	m.Status = domain.MovementReturning
	return []MovementEvent{{Type: EventReturning, Movement: m, At: now}}, nil
}

// CancelMovement 撤回行军：只允许 travelling 且行程未过 window（默认 0.5）。
func CancelMovement(m *domain.Movement, now time.Time, window float64) ([]MovementEvent, error) {
	if m == nil {
		return nil, errx.ErrInvalidArgument.WithData("reason", "nil movement")
	}
	if window <= 0 || window > 1 {
		window = 0.5
	}
	if m.Status != domain.MovementTravelling {
		return nil, ErrCancelWindowClosed.WithData("status", m.Status.String())
	}
	deadline := m.StartedAt.Add(time.Duration(float64(m.TravelDuration()) * window))
	if !now.Before(deadline) {
		return nil, ErrCancelWindowClosed.WithData("movement_id", int64(m.ID))
	}
	m.Status = domain.MovementCancelled
	return []MovementEvent{{Type: EventCancelled, Movement: m, At: now}}, nil
}
