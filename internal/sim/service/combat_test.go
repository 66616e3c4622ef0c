package service

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"VillageWars/internal/sim/entity/domain"
	"VillageWars/modules/kit/errx"
)

func battleCfg() BattleConfig {
	return BattleConfig{WinnerDampening: 0.2, LootShare: 1}
}

func TestResolveBattle_攻方优势碾压(t *testing.T) {
	attacker := map[string]int64{"legionnaire": 100} // 100 * 40 = 4000
	defender := map[string]int64{"legionnaire": 50}  // 50 * 35 = 1750（纯步兵看 def_infantry）
	res := domain.Resources{Wood: 400, Clay: 400, Iron: 400, Crop: 400}

	out, err := ResolveBattle(attacker, defender, res, testDefs(), battleCfg())
	if err != nil {
		t.Fatalf("期望成功, got=%v", err)
	}
	if !out.AttackerWon {
		t.Fatalf("期望攻方胜")
	}
	if math.Abs(out.Ratio-4000.0/1750.0) > 1e-9 {
		t.Fatalf("期望战力比 ≈2.2857, got=%v", out.Ratio)
	}
	// 败方全灭；胜方损失 round(100 * (1750/4000) * 0.2) = round(8.75) = 9
	if out.DefenderLosses["legionnaire"] != 50 {
		t.Fatalf("期望守方全灭, got=%d", out.DefenderLosses["legionnaire"])
	}
	if out.AttackerLosses["legionnaire"] != 9 {
		t.Fatalf("期望攻方损失 9, got=%d", out.AttackerLosses["legionnaire"])
	}
	if out.AttackerSurvivors["legionnaire"] != 91 {
		t.Fatalf("期望攻方幸存 91, got=%d", out.AttackerSurvivors["legionnaire"])
	}
}

func TestResolveBattle_平局按攻方失败(t *testing.T) {
	attacker := map[string]int64{"legionnaire": 35}
	defender := map[string]int64{"legionnaire": 40}
	// 35*40 = 1400 攻 vs 40*35 = 1400 防，ratio == 1

	out, err := ResolveBattle(attacker, defender, domain.Resources{}, testDefs(), battleCfg())
	if err != nil {
		t.Fatalf("期望成功, got=%v", err)
	}
	if out.AttackerWon {
		t.Fatalf("期望平局判攻方败")
	}
	if out.AttackerLosses["legionnaire"] != 35 {
		t.Fatalf("期望攻方全灭, got=%d", out.AttackerLosses["legionnaire"])
	}
	if !out.Loot.IsZero() {
		t.Fatalf("期望败方无战利品, got=%+v", out.Loot)
	}
}

func TestResolveBattle_骑兵占比加权防御(t *testing.T) {
	// 纯骑兵进攻：防御只看 def_cavalry
	attacker := map[string]int64{"paladin": 100} // 100 * 55 = 5500
	defender := map[string]int64{"phalanx": 100} // 100 * 50(def_cavalry) = 5000

	out, err := ResolveBattle(attacker, defender, domain.Resources{}, testDefs(), battleCfg())
	if err != nil {
		t.Fatalf("期望成功, got=%v", err)
	}
	if math.Abs(out.Ratio-5500.0/5000.0) > 1e-9 {
		t.Fatalf("期望纯骑兵只按 def_cavalry 加权, got=%v", out.Ratio)
	}
}

func TestResolveBattle_每兵种数量守恒(t *testing.T) {
	attacker := map[string]int64{"legionnaire": 73, "paladin": 21}
	defender := map[string]int64{"phalanx": 55, "legionnaire": 13}

	out, err := ResolveBattle(attacker, defender, domain.Resources{Wood: 100}, testDefs(), battleCfg())
	if err != nil {
		t.Fatalf("期望成功, got=%v", err)
	}
	for key, before := range attacker {
		if got := out.AttackerLosses[key] + out.AttackerSurvivors[key]; got != before {
			t.Fatalf("攻方 %s 数量不守恒: %d != %d", key, got, before)
		}
	}
	for key, before := range defender {
		if got := out.DefenderLosses[key] + out.DefenderSurvivors[key]; got != before {
			t.Fatalf("守方 %s 数量不守恒: %d != %d", key, got, before)
		}
	}
}

func TestResolveBattle_同输入同输出(t *testing.T) {
	attacker := map[string]int64{"legionnaire": 73, "paladin": 21}
	defender := map[string]int64{"phalanx": 55, "legionnaire": 13}
	res := domain.Resources{Wood: 123, Clay: 456, Iron: 789, Crop: 1000}

	a, err := ResolveBattle(attacker, defender, res, testDefs(), battleCfg())
	if err != nil {
		t.Fatalf("期望成功, got=%v", err)
	}
	b, err := ResolveBattle(attacker, defender, res, testDefs(), battleCfg())
	if err != nil {
		t.Fatalf("期望成功, got=%v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("期望结算结果确定, got=%+v vs %+v", a, b)
	}
}

func TestResolveBattle_战利品受负重限制(t *testing.T) {
	attacker := map[string]int64{"legionnaire": 10} // 幸存 10，负重 10*50 = 500
	defender := map[string]int64{}
	res := domain.Resources{Wood: 1000, Clay: 1000, Iron: 1000, Crop: 1000}

	out, err := ResolveBattle(attacker, defender, res, testDefs(), battleCfg())
	if err != nil {
		t.Fatalf("期望成功, got=%v", err)
	}
	if !out.AttackerWon {
		t.Fatalf("期望无人防守判攻方胜")
	}
	if out.Loot.Total() != out.CarryCapacity {
		t.Fatalf("期望战利品总量是满负重 %d, got=%d", out.CarryCapacity, out.Loot.Total())
	}
	// 存量均匀时按占比均分
	if out.Loot.Wood != 125 || out.Loot.Crop != 125 {
		t.Fatalf("期望均分 125, got=%+v", out.Loot)
	}
}

func TestResolveBattle_掠夺比例限量(t *testing.T) {
	attacker := map[string]int64{"paladin": 100} // 负重远超存量
	defender := map[string]int64{}
	res := domain.Resources{Wood: 100, Clay: 100, Iron: 100, Crop: 100}

	cfg := battleCfg()
	cfg.LootShare = 0.5
	out, err := ResolveBattle(attacker, defender, res, testDefs(), cfg)
	if err != nil {
		t.Fatalf("期望成功, got=%v", err)
	}
	if out.Loot.Total() != 200 {
		t.Fatalf("期望掠夺上限是存量的一半 200, got=%d", out.Loot.Total())
	}
	if out.Loot.Wood > res.Wood {
		t.Fatalf("期望单资源不超存量, got=%+v", out.Loot)
	}
}

func TestResolveBattle_非法兵力拒绝(t *testing.T) {
	if _, err := ResolveBattle(map[string]int64{"legionnaire": -1}, nil, domain.Resources{}, testDefs(), battleCfg()); !errors.Is(err, errx.ErrInvalidArgument) {
		t.Fatalf("期望负数量被拒绝, got=%v", err)
	}
	if _, err := ResolveBattle(map[string]int64{"dragon": 10}, nil, domain.Resources{}, testDefs(), battleCfg()); !errors.Is(err, errx.ErrNotFound) {
		t.Fatalf("期望未知兵种被拒绝, got=%v", err)
	}
	if _, err := ResolveBattle(nil, nil, domain.Resources{Wood: -1}, testDefs(), battleCfg()); !errors.Is(err, errx.ErrInvalidArgument) {
		t.Fatalf("期望负资源被拒绝, got=%v", err)
	}
}
