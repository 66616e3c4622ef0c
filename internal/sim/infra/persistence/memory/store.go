package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"VillageWars/internal/sim/entity"
	"VillageWars/internal/sim/entity/domain"
	"VillageWars/internal/sim/service/port"
)

// Store 是纯内存实现，开发调试和测试用。
// 读写都走深拷贝，调用方拿到的对象改了也不会影响存储内状态；
// SaveVillage/SaveMovement 跟数据库实现一样做乐观锁版本检查。
type Store struct {
	mu        sync.RWMutex
	villages  map[domain.VillageID]*domain.Village
	buildings map[domain.VillageID][]*domain.BuildingInstance
	troops    map[domain.VillageID][]*domain.TroopStack
	jobs      map[domain.JobID]*domain.QueueJob
	movements map[domain.MovementID]*domain.Movement
	reports   []*domain.BattleReport
}

func NewStore() *Store {
	return &Store{
		villages:  make(map[domain.VillageID]*domain.Village),
		buildings: make(map[domain.VillageID][]*domain.BuildingInstance),
		troops:    make(map[domain.VillageID][]*domain.TroopStack),
		jobs:      make(map[domain.JobID]*domain.QueueJob),
		movements: make(map[domain.MovementID]*domain.Movement),
	}
}

// SeedVillage 直接放入一个村庄，版本随对象给定。测试与本地初始化用。
func (s *Store) SeedVillage(v *domain.Village) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.villages[v.ID] = copyVillage(v)
}

func (s *Store) SeedBuildings(id domain.VillageID, bs []*domain.BuildingInstance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buildings[id] = copyBuildings(bs)
}

func (s *Store) SeedTroopStacks(id domain.VillageID, ts []*domain.TroopStack) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.troops[id] = copyTroops(ts)
}

func (s *Store) SeedQueueJob(j *domain.QueueJob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[j.ID] = copyJob(j)
}

func (s *Store) SeedMovement(m *domain.Movement) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.movements[m.ID] = copyMovement(m)
}

func (s *Store) LoadVillagesDue(ctx context.Context, now time.Time) ([]*domain.Village, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Village, 0, len(s.villages))
	for _, v := range s.villages {
		if v.UpdatedAt.Before(now) {
			out = append(out, copyVillage(v))
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })
	return out, nil
}

func (s *Store) LoadDueQueueJobs(ctx context.Context, now time.Time) ([]*domain.QueueJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.QueueJob
	for _, j := range s.jobs {
		if j.DueAt(now) {
			out = append(out, copyJob(j))
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })
	return out, nil
}

func (s *Store) LoadDueMovements(ctx context.Context, now time.Time) ([]*domain.Movement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.Movement
	for _, m := range s.movements {
		due := false
		switch m.Status {
		case domain.MovementTravelling:
			due = !now.Before(m.ArrivesAt)
		case domain.MovementArrived:
			due = true
		case domain.MovementReturning:
			due = !now.Before(m.ReturnETA())
		}
		if due {
			out = append(out, copyMovement(m))
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })
	return out, nil
}

func (s *Store) LoadVillage(ctx context.Context, id domain.VillageID) (*domain.Village, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.villages[id]
	if !ok {
		return nil, entity.ErrVillageNotFound
	}
	return copyVillage(v), nil
}

func (s *Store) LoadBuildings(ctx context.Context, id domain.VillageID) ([]*domain.BuildingInstance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyBuildings(s.buildings[id]), nil
}

func (s *Store) LoadTroopStacks(ctx context.Context, id domain.VillageID) ([]*domain.TroopStack, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyTroops(s.troops[id]), nil
}

func (s *Store) LoadQueueJobs(ctx context.Context, id domain.VillageID) ([]*domain.QueueJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.QueueJob
	for _, j := range s.jobs {
		if j.VillageID == id {
			out = append(out, copyJob(j))
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })
	return out, nil
}

func (s *Store) SaveVillage(ctx context.Context, v *domain.Village) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.villages[v.ID]
	if ok && cur.Version != v.Version {
		return port.ErrVersionConflict
	}
	next := copyVillage(v)
	next.Version = v.Version + 1
	s.villages[v.ID] = next
	// 调用方持有的对象同步版本，连续两次保存不会自冲突
	v.Version = next.Version
	return nil
}

func (s *Store) SaveBuildings(ctx context.Context, id domain.VillageID, bs []*domain.BuildingInstance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buildings[id] = copyBuildings(bs)
	return nil
}

func (s *Store) SaveTroopStacks(ctx context.Context, id domain.VillageID, ts []*domain.TroopStack) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.troops[id] = copyTroops(ts)
	return nil
}

func (s *Store) SaveQueueJob(ctx context.Context, j *domain.QueueJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[j.ID] = copyJob(j)
	return nil
}

func (s *Store) SaveMovement(ctx context.Context, m *domain.Movement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.movements[m.ID]
	if ok && cur.Version != m.Version {
		return port.ErrVersionConflict
	}
	next := copyMovement(m)
	next.Version = m.Version + 1
	s.movements[m.ID] = next
	m.Version = next.Version
	return nil
}

func (s *Store) AppendBattleReport(ctx context.Context, r *domain.BattleReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, r)
	return nil
}

// MovementByID 返回行军快照，测试断言用。
func (s *Store) MovementByID(id domain.MovementID) (*domain.Movement, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.movements[id]
	if !ok {
		return nil, false
	}
	return copyMovement(m), true
}

// BattleReports 返回全部战报快照，测试断言用。
func (s *Store) BattleReports() []*domain.BattleReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.BattleReport, len(s.reports))
	copy(out, s.reports)
	return out
}

func copyVillage(v *domain.Village) *domain.Village {
	c := *v
	return &c
}

func copyBuildings(bs []*domain.BuildingInstance) []*domain.BuildingInstance {
	out := make([]*domain.BuildingInstance, 0, len(bs))
	for _, b := range bs {
		c := *b
		out = append(out, &c)
	}
	return out
}

func copyTroops(ts []*domain.TroopStack) []*domain.TroopStack {
	out := make([]*domain.TroopStack, 0, len(ts))
	for _, t := range ts {
		c := *t
		out = append(out, &c)
	}
	return out
}

func copyJob(j *domain.QueueJob) *domain.QueueJob {
	c := *j
	return &c
}

func copyMovement(m *domain.Movement) *domain.Movement {
	c := *m
	c.Troops = m.TroopsCopy()
	return &c
}
