package engine

import (
	"VillageWars/internal/sim/entity/domain"
)

// VillageReport 是单个村庄一次 tick 处理的汇总。
type VillageReport struct {
	VillageID     domain.VillageID
	Gained        domain.Resources
	JobsCompleted int
	JobsPromoted  int
	JobsCancelled int
}

// TickReport 是一次 tick 的汇总；Errors 收集单实体错误，tick 本身不会因它们失败。
type TickReport struct {
	Villages           int // 成功处理的村庄数
	Skipped            int // 超时跳过、留给下个 tick 的村庄数
	Conflicts          int // 乐观锁冲突（下个 tick 自愈）
	JobsCompleted      int
	JobsPromoted       int
	JobsCancelled      int
	MovementsAdvanced  int
	MovementsCancelled int
	Battles            int
	Errors             []error
}

func (r *TickReport) mergeVillage(v VillageReport) {
	r.Villages++
	r.JobsCompleted += v.JobsCompleted
	r.JobsPromoted += v.JobsPromoted
	r.JobsCancelled += v.JobsCancelled
}
