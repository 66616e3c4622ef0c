package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"VillageWars/internal/sim/entity"
	"VillageWars/internal/sim/entity/domain"
	"VillageWars/internal/sim/errs"
	"VillageWars/internal/sim/infra/persistence/model"
	"VillageWars/internal/sim/service/port"
)

const (
	collVillages  = "villages"
	collBuildings = "village_buildings"
	collTroops    = "village_troops"
	collQueueJobs = "queue_jobs"
	collMovements = "movements"
	collReports   = "battle_reports"
)

type Store struct {
	db *mongo.Database
}

func NewStore(db *mongo.Database) *Store {
	return &Store{db: db}
}

const OpLoadVillagesDue = "repo.sim.LoadVillagesDue"

func (s *Store) LoadVillagesDue(ctx context.Context, now time.Time) ([]*domain.Village, error) {
	cur, err := s.db.Collection(collVillages).Find(
		ctx,
		bson.M{"updated_at": bson.M{"$lt": now}},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, errs.Wrap(OpLoadVillagesDue, errs.KindInfra, err, nil)
	}
	var docs []model.VillageDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errs.Wrap(OpLoadVillagesDue, errs.KindInfra, err, nil)
	}
	out := make([]*domain.Village, 0, len(docs))
	for _, d := range docs {
		out = append(out, model.DocToVillage(d))
	}
	return out, nil
}

const OpLoadDueQueueJobs = "repo.sim.LoadDueQueueJobs"

func (s *Store) LoadDueQueueJobs(ctx context.Context, now time.Time) ([]*domain.QueueJob, error) {
	cur, err := s.db.Collection(collQueueJobs).Find(
		ctx,
		bson.M{
			"status":      int8(domain.JobInProgress),
			"complete_at": bson.M{"$lte": now},
		},
		options.Find().SetSort(bson.D{{Key: "complete_at", Value: 1}, {Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, errs.Wrap(OpLoadDueQueueJobs, errs.KindInfra, err, nil)
	}
	var docs []model.QueueJobDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errs.Wrap(OpLoadDueQueueJobs, errs.KindInfra, err, nil)
	}
	out := make([]*domain.QueueJob, 0, len(docs))
	for _, d := range docs {
		out = append(out, model.DocToQueueJob(d))
	}
	return out, nil
}

const OpLoadDueMovements = "repo.sim.LoadDueMovements"

func (s *Store) LoadDueMovements(ctx context.Context, now time.Time) ([]*domain.Movement, error) {
	// 回程到期没法在查询里算 ETA（= arrives_at + 去程时长），
	// 先把回程态全拉出来，在内存里过滤。回程中的行军量级很小。
	cur, err := s.db.Collection(collMovements).Find(
		ctx,
		bson.M{"$or": bson.A{
			bson.M{"status": int8(domain.MovementTravelling), "arrives_at": bson.M{"$lte": now}},
			bson.M{"status": int8(domain.MovementArrived)},
			bson.M{"status": int8(domain.MovementReturning)},
		}},
		options.Find().SetSort(bson.D{{Key: "arrives_at", Value: 1}, {Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, errs.Wrap(OpLoadDueMovements, errs.KindInfra, err, nil)
	}
	var docs []model.MovementDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errs.Wrap(OpLoadDueMovements, errs.KindInfra, err, nil)
	}
	out := make([]*domain.Movement, 0, len(docs))
	for _, d := range docs {
		m := model.DocToMovement(d)
		if m.Status == domain.MovementReturning && now.Before(m.ReturnETA()) {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

const OpLoadVillage = "repo.sim.LoadVillage"

func (s *Store) LoadVillage(ctx context.Context, id domain.VillageID) (*domain.Village, error) {
	var doc model.VillageDoc
	err := s.db.Collection(collVillages).FindOne(ctx, bson.M{"_id": int64(id)}).Decode(&doc)
	switch {
	case err == nil:
		return model.DocToVillage(doc), nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return nil, entity.ErrVillageNotFound
	default:
		return nil, errs.Wrap(OpLoadVillage, errs.KindInfra, err, map[string]any{"village_id": id})
	}
}

const OpLoadBuildings = "repo.sim.LoadBuildings"

func (s *Store) LoadBuildings(ctx context.Context, id domain.VillageID) ([]*domain.BuildingInstance, error) {
	cur, err := s.db.Collection(collBuildings).Find(
		ctx,
		bson.M{"village_id": int64(id)},
		options.Find().SetSort(bson.D{{Key: "slot", Value: 1}}),
	)
	if err != nil {
		return nil, errs.Wrap(OpLoadBuildings, errs.KindInfra, err, map[string]any{"village_id": id})
	}
	var docs []model.BuildingDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errs.Wrap(OpLoadBuildings, errs.KindInfra, err, map[string]any{"village_id": id})
	}
	out := make([]*domain.BuildingInstance, 0, len(docs))
	for _, d := range docs {
		out = append(out, model.DocToBuilding(d))
	}
	return out, nil
}

const OpLoadTroopStacks = "repo.sim.LoadTroopStacks"

func (s *Store) LoadTroopStacks(ctx context.Context, id domain.VillageID) ([]*domain.TroopStack, error) {
	cur, err := s.db.Collection(collTroops).Find(
		ctx,
		bson.M{"village_id": int64(id)},
		options.Find().SetSort(bson.D{{Key: "unit_key", Value: 1}}),
	)
	if err != nil {
		return nil, errs.Wrap(OpLoadTroopStacks, errs.KindInfra, err, map[string]any{"village_id": id})
	}
	var docs []model.TroopStackDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errs.Wrap(OpLoadTroopStacks, errs.KindInfra, err, map[string]any{"village_id": id})
	}
	out := make([]*domain.TroopStack, 0, len(docs))
	for _, d := range docs {
		out = append(out, model.DocToTroopStack(d))
	}
	return out, nil
}

const OpLoadQueueJobs = "repo.sim.LoadQueueJobs"

func (s *Store) LoadQueueJobs(ctx context.Context, id domain.VillageID) ([]*domain.QueueJob, error) {
	cur, err := s.db.Collection(collQueueJobs).Find(
		ctx,
		bson.M{"village_id": int64(id)},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, errs.Wrap(OpLoadQueueJobs, errs.KindInfra, err, map[string]any{"village_id": id})
	}
	var docs []model.QueueJobDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errs.Wrap(OpLoadQueueJobs, errs.KindInfra, err, map[string]any{"village_id": id})
	}
	out := make([]*domain.QueueJob, 0, len(docs))
	for _, d := range docs {
		out = append(out, model.DocToQueueJob(d))
	}
	return out, nil
}

const OpSaveVillage = "repo.sim.SaveVillage"

// SaveVillage 乐观锁写回：ReplaceOne 的过滤条件带上旧 version，
// 没匹配到且文档存在说明并发改过，返回 ErrVersionConflict。
func (s *Store) SaveVillage(ctx context.Context, v *domain.Village) error {
	doc := model.VillageToDoc(v)
	doc.Version = v.Version + 1

	res, err := s.db.Collection(collVillages).ReplaceOne(
		ctx,
		bson.M{"_id": doc.Id, "version": v.Version},
		doc,
	)
	if err != nil {
		return errs.Wrap(OpSaveVillage, errs.KindInfra, err, map[string]any{"village_id": v.ID})
	}
	if res.MatchedCount > 0 {
		v.Version = doc.Version
		return nil
	}

	count, err := s.db.Collection(collVillages).CountDocuments(ctx, bson.M{"_id": doc.Id})
	if err != nil {
		return errs.Wrap(OpSaveVillage, errs.KindInfra, err, map[string]any{"village_id": v.ID})
	}
	if count > 0 {
		return port.ErrVersionConflict
	}
	if _, err := s.db.Collection(collVillages).InsertOne(ctx, doc); err != nil {
		return errs.Wrap(OpSaveVillage, errs.KindInfra, err, map[string]any{"village_id": v.ID})
	}
	v.Version = doc.Version
	return nil
}

const OpSaveBuildings = "repo.sim.SaveBuildings"

func (s *Store) SaveBuildings(ctx context.Context, id domain.VillageID, bs []*domain.BuildingInstance) error {
	coll := s.db.Collection(collBuildings)
	if _, err := coll.DeleteMany(ctx, bson.M{"village_id": int64(id)}); err != nil {
		return errs.Wrap(OpSaveBuildings, errs.KindInfra, err, map[string]any{"village_id": id})
	}
	if len(bs) == 0 {
		return nil
	}
	docs := make([]any, 0, len(bs))
	for _, b := range bs {
		docs = append(docs, model.BuildingToDoc(b))
	}
	if _, err := coll.InsertMany(ctx, docs); err != nil {
		return errs.Wrap(OpSaveBuildings, errs.KindInfra, err, map[string]any{"village_id": id})
	}
	return nil
}

const OpSaveTroopStacks = "repo.sim.SaveTroopStacks"

func (s *Store) SaveTroopStacks(ctx context.Context, id domain.VillageID, ts []*domain.TroopStack) error {
	coll := s.db.Collection(collTroops)
	if _, err := coll.DeleteMany(ctx, bson.M{"village_id": int64(id)}); err != nil {
		return errs.Wrap(OpSaveTroopStacks, errs.KindInfra, err, map[string]any{"village_id": id})
	}
	if len(ts) == 0 {
		return nil
	}
	docs := make([]any, 0, len(ts))
	for _, t := range ts {
		docs = append(docs, model.TroopStackToDoc(t))
	}
	if _, err := coll.InsertMany(ctx, docs); err != nil {
		return errs.Wrap(OpSaveTroopStacks, errs.KindInfra, err, map[string]any{"village_id": id})
	}
	return nil
}

const OpSaveQueueJob = "repo.sim.SaveQueueJob"

func (s *Store) SaveQueueJob(ctx context.Context, j *domain.QueueJob) error {
	doc := model.QueueJobToDoc(j)
	_, err := s.db.Collection(collQueueJobs).ReplaceOne(
		ctx,
		bson.M{"_id": doc.Id},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return errs.Wrap(OpSaveQueueJob, errs.KindInfra, err, map[string]any{"job_id": j.ID})
	}
	return nil
}

const OpSaveMovement = "repo.sim.SaveMovement"

func (s *Store) SaveMovement(ctx context.Context, m *domain.Movement) error {
	doc := model.MovementToDoc(m)
	doc.Version = m.Version + 1

	res, err := s.db.Collection(collMovements).ReplaceOne(
		ctx,
		bson.M{"_id": doc.Id, "version": m.Version},
		doc,
	)
	if err != nil {
		return errs.Wrap(OpSaveMovement, errs.KindInfra, err, map[string]any{"movement_id": m.ID})
	}
	if res.MatchedCount > 0 {
		m.Version = doc.Version
		return nil
	}

	count, err := s.db.Collection(collMovements).CountDocuments(ctx, bson.M{"_id": doc.Id})
	if err != nil {
		return errs.Wrap(OpSaveMovement, errs.KindInfra, err, map[string]any{"movement_id": m.ID})
	}
	if count > 0 {
		return port.ErrVersionConflict
	}
	if _, err := s.db.Collection(collMovements).InsertOne(ctx, doc); err != nil {
		return errs.Wrap(OpSaveMovement, errs.KindInfra, err, map[string]any{"movement_id": m.ID})
	}
	m.Version = doc.Version
	return nil
}

const OpAppendBattleReport = "repo.sim.AppendBattleReport"

func (s *Store) AppendBattleReport(ctx context.Context, r *domain.BattleReport) error {
	doc := model.BattleReportToDoc(r)
	if _, err := s.db.Collection(collReports).InsertOne(ctx, doc); err != nil {
		return errs.Wrap(OpAppendBattleReport, errs.KindInfra, err, map[string]any{"report_id": r.ID})
	}
	return nil
}
