package domain

// TroopStack 是某村某兵种的数量，按去向分区。
// 不变式：各分区非负。
// entity
type TroopStack struct {
	VillageID VillageID
	UnitKey   string
	InVillage int64 // 驻守在家
	InAttack  int64 // 出征中
	InDefense int64 // 防御序列
	InSupport int64 // 援防在外
}

func (t *TroopStack) Total() int64 {
	return t.InVillage + t.InAttack + t.InDefense + t.InSupport
}

func (t *TroopStack) Valid() bool {
	return t.InVillage >= 0 && t.InAttack >= 0 && t.InDefense >= 0 && t.InSupport >= 0
}
