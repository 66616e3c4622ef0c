package actors

import (
	"VillageWars/internal/sim/engine"
	"VillageWars/internal/sim/entity/domain"

	"github.com/asynkron/protoactor-go/actor"
)

type VillageID = domain.VillageID

// ManagerActor 按 village_id 路由到子 actor，保证同一村庄的结算串行（单写者）。
type ManagerActor struct {
	proc          engine.VillageProcessor
	villageActors map[VillageID]*actor.PID // village_id -> actor.pid
	pidVillages   map[string]VillageID     // pid.Id -> village_id，子 actor 退出时反查
}

func NewManagerActor(proc engine.VillageProcessor) *ManagerActor {
	return &ManagerActor{
		proc:          proc,
		villageActors: make(map[VillageID]*actor.PID),
		pidVillages:   make(map[string]VillageID),
	}
}

func (m *ManagerActor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *TickVillage:
		if msg == nil || msg.VillageID <= 0 {
			ctx.Respond(&TickVillageResult{Err: errInvalidVillage})
			return
		}
		ctx.Forward(m.getOrSpawn(ctx, msg.VillageID))
	case *actor.Terminated:
		// 子 actor 闲置自停后从路由表摘掉，下次请求重新拉起。
		if id, ok := m.pidVillages[msg.Who.GetId()]; ok {
			delete(m.villageActors, id)
			delete(m.pidVillages, msg.Who.GetId())
		}
	default:
		return
	}
}

func (m *ManagerActor) getOrSpawn(ctx actor.Context, villageID VillageID) *actor.PID {
	if pid, ok := m.villageActors[villageID]; ok && pid != nil {
		return pid
	}

	props := actor.PropsFromProducer(func() actor.Actor {
		return NewVillageActor(villageID, m.proc)
	})
	// ManagerActor 创建 子 actor
	pid := ctx.Spawn(props)
	ctx.Watch(pid)
	m.villageActors[villageID] = pid
	m.pidVillages[pid.GetId()] = villageID
	return pid
}
