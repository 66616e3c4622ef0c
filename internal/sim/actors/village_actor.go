package actors

import (
	"time"

	"VillageWars/internal/sim/engine"
	"VillageWars/modules/kit/errx"

	"github.com/asynkron/protoactor-go/actor"
)

var errInvalidVillage = errx.ErrInvalidArgument.WithData("reason", "invalid village_id")

// 闲置村庄的 actor 不常驻：一段时间没有结算请求就自停，下次由 Manager 重新拉起。
const idleTimeout = 5 * time.Minute

// VillageActor 持有一个村庄的处理权，邮箱天然把该村的结算串成单线。
// 结算本身无状态（每次从 Store 加载），actor 只负责排队。
type VillageActor struct {
	villageID VillageID
	proc      engine.VillageProcessor
}

func NewVillageActor(villageID VillageID, proc engine.VillageProcessor) *VillageActor {
	return &VillageActor{
		villageID: villageID,
		proc:      proc,
	}
}

func (v *VillageActor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		ctx.SetReceiveTimeout(idleTimeout)
	case *actor.ReceiveTimeout:
		ctx.Stop(ctx.Self())
	case *TickVillage:
		// 单村预算由 ProcessVillage 内部的超时控制；trace 从消息还原。
		rep, err := v.proc.ProcessVillage(msg.Context(), msg.VillageID, msg.Now)
		ctx.Respond(&TickVillageResult{Report: rep, Err: err})
	default:
		return
	}
}
