package service

import (
	"math"
	"sort"

	"VillageWars/internal/sim/entity"
	"VillageWars/internal/sim/entity/domain"
	"VillageWars/modules/kit/errx"
)

// BattleConfig 是战斗调参项（损失曲线常数是策划参数，不是硬编码）。
type BattleConfig struct {
	WinnerDampening float64 // 胜方损失衰减，默认 0.2
	LootShare       float64 // 可带走的防守方资源比例（attack=1.0，raid 可调低）
}

// BattleOutcome 是一次战斗的完整结果。纯数据，调用方负责落库与战报。
type BattleOutcome struct {
	AttackerWon       bool
	Ratio             float64 // 攻方战力 / 防方战力
	AttackerLosses    map[string]int64
	DefenderLosses    map[string]int64
	AttackerSurvivors map[string]int64
	DefenderSurvivors map[string]int64
	Loot              domain.Resources // 攻方胜利时带走的资源
	CarryCapacity     int64            // 幸存攻方部队的总负重
}

// ResolveBattle 计算战斗结果。
//
// 确定性要求：没有随机数，相同输入永远得到相同输出（回放与测试依赖这一点）。
//
// 战力：attackerPower = Σ count*attack；
// 防御按攻方骑兵占比加权：def = cavFrac*def_cavalry + (1-cavFrac)*def_infantry，
// 纯步兵只看 def_infantry，纯骑兵只看 def_cavalry。
// ratio > 1 攻方胜。败方损失比例 min(1, r)，胜方 min(1, 1/r)*dampening，
// 其中 r 是从胜方视角看的战力比（≥1）。
func ResolveBattle(
	attacker map[string]int64,
	defender map[string]int64,
	defenderRes domain.Resources,
	defs Defs,
	cfg BattleConfig,
) (BattleOutcome, error) {
	if cfg.WinnerDampening <= 0 {
		cfg.WinnerDampening = 0.2
	}
	if cfg.LootShare <= 0 || cfg.LootShare > 1 {
		cfg.LootShare = 1
	}
	if defenderRes.HasNegative() {
		return BattleOutcome{}, errx.ErrInvalidArgument.WithData("reason", "negative defender resources")
	}

	attackerPower, cavFrac, err := attackPower(attacker, defs)
	if err != nil {
		return BattleOutcome{}, err
	}
	defenderPower, err := defensePower(defender, cavFrac, defs)
	if err != nil {
		return BattleOutcome{}, err
	}

	ratio := attackerPower / math.Max(1, defenderPower)
	attackerWon := ratio > 1

	// r 取胜方视角（≥1）；平局按攻方失败处理。
	r := ratio
	if !attackerWon {
		if ratio <= 0 {
			r = math.Inf(1)
		} else {
			r = 1 / ratio
		}
	}
	loserFrac := math.Min(1, r)
	winnerFrac := math.Min(1, 1/r) * cfg.WinnerDampening

	out := BattleOutcome{
		AttackerWon: attackerWon,
		Ratio:       ratio,
	}
	if attackerWon {
		out.AttackerLosses, out.AttackerSurvivors = applyLossFraction(attacker, winnerFrac)
		out.DefenderLosses, out.DefenderSurvivors = applyLossFraction(defender, loserFrac)
	} else {
		out.AttackerLosses, out.AttackerSurvivors = applyLossFraction(attacker, loserFrac)
		out.DefenderLosses, out.DefenderSurvivors = applyLossFraction(defender, winnerFrac)
	}

	if attackerWon {
		carry := int64(0)
		for _, key := range sortedKeys(out.AttackerSurvivors) {
			def, _ := defs.Unit(key)
			carry += out.AttackerSurvivors[key] * def.Carry
		}
		out.CarryCapacity = carry
		out.Loot = splitLoot(carry, defenderRes, cfg.LootShare)
	}
	return out, nil
}

func attackPower(units map[string]int64, defs Defs) (power float64, cavFrac float64, err error) {
	var total, cavalry int64
	for _, key := range sortedKeys(units) {
		count := units[key]
		if count < 0 {
			return 0, 0, errx.ErrInvalidArgument.
				WithData("unit_key", key).
				WithData("reason", "negative count")
		}
		if count == 0 {
			continue
		}
		def, ok := defs.Unit(key)
		if !ok {
			return 0, 0, errx.ErrNotFound.
				WithData("unit_key", key).
				WithCause(entity.ErrUnitNotFound)
		}
		power += float64(count * def.Attack)
		total += count
		if def.Cavalry {
			cavalry += count
		}
	}
	if total > 0 {
		cavFrac = float64(cavalry) / float64(total)
	}
	return power, cavFrac, nil
}

func defensePower(units map[string]int64, cavFrac float64, defs Defs) (float64, error) {
	var power float64
	for _, key := range sortedKeys(units) {
		count := units[key]
		if count < 0 {
			return 0, errx.ErrInvalidArgument.
				WithData("unit_key", key).
				WithData("reason", "negative count")
		}
		if count == 0 {
			continue
		}
		def, ok := defs.Unit(key)
		if !ok {
			return 0, errx.ErrNotFound.
				WithData("unit_key", key).
				WithCause(entity.ErrUnitNotFound)
		}
		weighted := cavFrac*float64(def.DefCavalry) + (1-cavFrac)*float64(def.DefInfantry)
		power += float64(count) * weighted
	}
	return power, nil
}

// applyLossFraction 给每个兵种算损失，四舍五入后夹到 [0, count]。
// 守恒：losses + survivors == 原始数量，对每个兵种都成立。
func applyLossFraction(units map[string]int64, frac float64) (losses, survivors map[string]int64) {
	losses = make(map[string]int64, len(units))
	survivors = make(map[string]int64, len(units))
	for _, key := range sortedKeys(units) {
		count := units[key]
		lost := int64(math.Round(float64(count) * frac))
		if lost > count {
			lost = count
		}
		if lost < 0 {
			lost = 0
		}
		losses[key] = lost
		survivors[key] = count - lost
	}
	return losses, survivors
}

// splitLoot 把战利品按防守方各资源存量占比分摊，余数按 木→泥→铁→粮 顺序补齐。
// 每种资源不会拿走超过存量的部分。
func splitLoot(carry int64, available domain.Resources, share float64) domain.Resources {
	availTotal := available.Total()
	if carry <= 0 || availTotal <= 0 {
		return domain.Resources{}
	}
	total := int64(math.Floor(float64(availTotal) * share))
	if total > carry {
		total = carry
	}
	if total <= 0 {
		return domain.Resources{}
	}

	avail := [4]int64{available.Wood, available.Clay, available.Iron, available.Crop}
	var loot [4]int64
	var taken int64
	for i, a := range avail {
		loot[i] = total * a / availTotal
		taken += loot[i]
	}
	// 整除余数：按固定顺序补到还有存量的资源上，保持确定性。
	for i := 0; taken < total && i < 4; i++ {
		room := avail[i] - loot[i]
		give := total - taken
		if give > room {
			give = room
		}
		loot[i] += give
		taken += give
	}

	return domain.Resources{Wood: loot[0], Clay: loot[1], Iron: loot[2], Crop: loot[3]}
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
