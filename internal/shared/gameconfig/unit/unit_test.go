package unit

import "testing"

func TestLoad_兵种表加载与索引(t *testing.T) {
	Load()

	u, ok := GetUnit("legionnaire")
	if !ok {
		t.Fatalf("期望罗马步兵存在")
	}
	if u.Attack != 40 || u.DefInfantry != 35 {
		t.Fatalf("期望 attack=40 def_infantry=35, got=%+v", u)
	}
	if u.Cavalry {
		t.Fatalf("期望罗马步兵不是骑兵")
	}

	if _, ok := GetUnit("dragon"); ok {
		t.Fatalf("期望未知兵种查不到")
	}
}

func TestLoad_全表字段合法(t *testing.T) {
	Load()

	if len(All()) == 0 {
		t.Fatalf("期望兵种表非空")
	}
	for key, u := range All() {
		if u.Key != key {
			t.Fatalf("期望索引 key 与兵种 key 一致, got=%s vs %s", key, u.Key)
		}
		if u.Attack < 0 || u.DefInfantry < 0 || u.DefCavalry < 0 {
			t.Fatalf("期望战斗数值非负, got=%+v", u)
		}
		if u.Speed <= 0 || u.TrainTime <= 0 {
			t.Fatalf("期望速度/训练时长为正, got=%+v", u)
		}
		switch u.Tribe {
		case TribeRomans, TribeGauls, TribeTeutons:
		default:
			t.Fatalf("期望种族在枚举内, got=%s", u.Tribe)
		}
	}
}
