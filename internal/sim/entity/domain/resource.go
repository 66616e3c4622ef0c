package domain

// Resources 是四资源向量（木/泥/铁/粮）。
// entity
type Resources struct {
	Wood int64
	Clay int64
	Iron int64
	Crop int64
}

func (r Resources) Add(o Resources) Resources {
	return Resources{
		Wood: r.Wood + o.Wood,
		Clay: r.Clay + o.Clay,
		Iron: r.Iron + o.Iron,
		Crop: r.Crop + o.Crop,
	}
}

func (r Resources) Sub(o Resources) Resources {
	return Resources{
		Wood: r.Wood - o.Wood,
		Clay: r.Clay - o.Clay,
		Iron: r.Iron - o.Iron,
		Crop: r.Crop - o.Crop,
	}
}

// ClampTo 把每种资源夹到 [0, cap]。入库前统一走这里，保证容量不被突破。
func (r Resources) ClampTo(cap Resources) Resources {
	return Resources{
		Wood: clamp(r.Wood, cap.Wood),
		Clay: clamp(r.Clay, cap.Clay),
		Iron: clamp(r.Iron, cap.Iron),
		Crop: clamp(r.Crop, cap.Crop),
	}
}

func (r Resources) Total() int64 {
	return r.Wood + r.Clay + r.Iron + r.Crop
}

func (r Resources) HasNegative() bool {
	return r.Wood < 0 || r.Clay < 0 || r.Iron < 0 || r.Crop < 0
}

func (r Resources) IsZero() bool {
	return r == Resources{}
}

func clamp(v, cap int64) int64 {
	if v < 0 {
		return 0
	}
	if v > cap {
		return cap
	}
	return v
}
