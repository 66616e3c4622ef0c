package domain

import "time"

type VillageID int64
type PlayerID int64

// Village 是资源结算的最小单元。
// entity
type Village struct {
	ID        VillageID
	PlayerID  PlayerID
	X         int       // x坐标
	Y         int       // y坐标
	Amounts   Resources // 当前资源量，不变式 0 ≤ amount ≤ capacity
	Capacity  Resources // 仓储上限（仓库/粮仓等级决定）
	Rates     Resources // 每小时产量（未乘世界速度）
	UpdatedAt time.Time // 上次结算时间，同时是乐观锁依据
	Version   int64     // 乐观锁版本号
}

// Deposit 把 loot/回运资源入库，超出容量的部分溢出丢弃。
func (v *Village) Deposit(r Resources) {
	v.Amounts = v.Amounts.Add(r).ClampTo(v.Capacity)
}

// BuildingInstance 是村内某个地块上的建筑。
// 不变式：每村每个 slot 至多一个实例。
// entity
type BuildingInstance struct {
	VillageID VillageID
	Key       string // 建筑类型 key（gameconfig/building）
	Level     int    // 1..max_level
	Slot      int    // 地块编号
}
