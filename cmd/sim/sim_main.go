package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	protoactor "github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"

	"VillageWars/internal/shared/gameconfig/building"
	"VillageWars/internal/shared/gameconfig/unit"
	shareddb "VillageWars/internal/shared/infrastructure/db"
	sharedmongo "VillageWars/internal/shared/infrastructure/mongo"
	"VillageWars/internal/shared/logs"
	"VillageWars/internal/shared/serverconfig"
	"VillageWars/internal/shared/utils"
	simactors "VillageWars/internal/sim/actors"
	"VillageWars/internal/sim/engine"
	"VillageWars/internal/sim/infra/persistence/memory"
	simmongo "VillageWars/internal/sim/infra/persistence/mongodb"
	simmysql "VillageWars/internal/sim/infra/persistence/mysql"
	"VillageWars/internal/sim/service"
	"VillageWars/internal/sim/service/port"
	"VillageWars/modules/kit/logx"
)

const managerActorName = "village-manager"

func main() {
	serverconfig.Load("")
	if err := logs.Init("sim", serverconfig.Conf.Log); err != nil {
		panic(err)
	}
	logs.Info("conf", zap.Any("conf", serverconfig.Conf))

	unit.Load()
	building.Load()

	ids, err := utils.NewSnowflake(serverconfig.Conf.Sim.SnowflakeNodeID)
	if err != nil {
		logs.Fatal("init snowflake failed", zap.Error(err))
	}

	store, cleanup, err := openStore(serverconfig.Conf)
	if err != nil {
		logs.Fatal("open store failed", zap.Error(err))
	}
	defer cleanup()

	eng := engine.New(
		store,
		service.LoadedDefs(),
		engine.ConfigFromServer(serverconfig.Conf.Sim),
		ids,
		logx.NewZapLogger(logs.Logger()),
	)

	system := protoactor.NewActorSystem()
	root := system.Root
	props := protoactor.PropsFromProducer(func() protoactor.Actor {
		return simactors.NewManagerActor(eng)
	})
	managerPID, err := root.SpawnNamed(props, managerActorName)
	if err != nil {
		logs.Fatal("spawn village manager failed", zap.Error(err))
	}
	eng.WithDispatcher(simactors.NewDispatcher(root, managerPID, time.Duration(serverconfig.Conf.Sim.VillageBudgetMS)*time.Millisecond))

	logs.Info("sim started",
		zap.String("actor", managerActorName),
		zap.String("pid", managerPID.String()),
		zap.Int("tick_time_s", serverconfig.Conf.Sim.TickTimeS),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(time.Duration(serverconfig.Conf.Sim.TickTimeS) * time.Second)
	defer ticker.Stop()
	var clock engine.Clock = engine.SystemClock{}

	for {
		select {
		case <-ctx.Done():
			logs.Info("收到退出信号，准备优雅退出")
			system.Shutdown()
			return
		case <-ticker.C:
			report, err := eng.Tick(ctx, clock.Now())
			if err != nil {
				logs.Error("tick failed", zap.Error(err))
				continue
			}
			if len(report.Errors) > 0 {
				logs.Warn("tick finished with entity errors", zap.Int("count", len(report.Errors)))
			}
		}
	}
}

// openStore 按配置选持久化实现；memory 用于本地开发。
func openStore(conf serverconfig.Config) (port.Store, func(), error) {
	switch conf.Store.Driver {
	case "mysql":
		gdb, err := shareddb.Open(conf.MySQL)
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() {
			if sqlDB, derr := gdb.DB(); derr == nil {
				_ = sqlDB.Close()
			}
		}
		return simmysql.NewStore(gdb), cleanup, nil
	case "mongodb":
		client, err := sharedmongo.Open(conf.MongoDB, logs.Logger())
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() {
			_ = client.Disconnect(context.Background())
		}
		return simmongo.NewStore(client.Database(conf.MongoDB.Database)), cleanup, nil
	default:
		return memory.NewStore(), func() {}, nil
	}
}
