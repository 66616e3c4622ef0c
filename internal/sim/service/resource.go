package service

import (
	"math"
	"time"

	"VillageWars/internal/sim/entity/domain"
	"VillageWars/modules/kit/errx"
)

// ResourceDelta 是一次资源结算的结果，调用方负责落库。
type ResourceDelta struct {
	Amounts   domain.Resources // 结算后的资源量（已按容量夹紧）
	Gained    domain.Resources // 实际入库增量
	UpdatedAt time.Time        // 新的结算时间
}

// AccumulateResources 把 village 的资源推进 elapsed 时长。
//
// 每种资源：new = min(capacity, amount + rate*speed*elapsed/3600)。
// 纯函数：不修改入参，elapsed == 0 时是幂等 no-op。
func AccumulateResources(v *domain.Village, elapsed time.Duration, speed float64) (ResourceDelta, error) {
	if v == nil {
		return ResourceDelta{}, errx.ErrInvalidArgument.WithData("reason", "nil village")
	}
	if elapsed < 0 {
		return ResourceDelta{}, errx.ErrInvalidArgument.
			WithData("village_id", int64(v.ID)).
			WithData("reason", "negative elapsed")
	}
	if speed <= 0 {
		return ResourceDelta{}, errx.ErrInvalidArgument.WithData("reason", "non-positive speed")
	}
	if v.Rates.HasNegative() || v.Amounts.HasNegative() || v.Capacity.HasNegative() {
		return ResourceDelta{}, errx.ErrInvalidArgument.
			WithData("village_id", int64(v.ID)).
			WithData("reason", "negative amount/rate/capacity")
	}

	sec := elapsed.Seconds()
	next := domain.Resources{
		Wood: accrue(v.Amounts.Wood, v.Rates.Wood, speed, sec, v.Capacity.Wood),
		Clay: accrue(v.Amounts.Clay, v.Rates.Clay, speed, sec, v.Capacity.Clay),
		Iron: accrue(v.Amounts.Iron, v.Rates.Iron, speed, sec, v.Capacity.Iron),
		Crop: accrue(v.Amounts.Crop, v.Rates.Crop, speed, sec, v.Capacity.Crop),
	}

	return ResourceDelta{
		Amounts:   next,
		Gained:    next.Sub(v.Amounts),
		UpdatedAt: v.UpdatedAt.Add(elapsed),
	}, nil
}

func accrue(amount, ratePerHour int64, speed, sec float64, cap int64) int64 {
	gained := int64(math.Floor(float64(ratePerHour) * speed * sec / 3600))
	next := amount + gained
	if next > cap {
		next = cap
	}
	// 已经超限的存量（例如配置下调容量后）不回收，只是不再增长。
	if next < amount {
		next = amount
	}
	return next
}
