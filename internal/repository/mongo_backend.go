package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jcthewizard/Goalshare-sub000/internal/model"
	"github.com/jcthewizard/Goalshare-sub000/internal/util"
	"github.com/jcthewizard/Goalshare-sub000/pkg/tracing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoBackend is the document/query-store flavor of the goal backend.
// Documents carry server-assigned ObjectIDs and timestamps that may arrive in
// several historical encodings; both are translated here and nowhere else.
type MongoBackend struct {
	coll *mongo.Collection
}

func NewMongoBackend(db *mongo.Database, collection string) *MongoBackend {
	if collection == "" {
		collection = "goals"
	}
	return &MongoBackend{coll: db.Collection(collection)}
}

// flexTime decodes the timestamp shapes found in the wild: native datetimes,
// wrapped {seconds, nanoseconds} subdocuments from the old mobile export, and
// plain millisecond numbers.
type flexTime struct {
	time.Time
}

func (f flexTime) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(f.Time)
}

func (f *flexTime) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	rv := bson.RawValue{Type: t, Value: data}
	switch t {
	case bson.TypeDateTime:
		f.Time = rv.Time()
	case bson.TypeInt64:
		f.Time = time.UnixMilli(rv.Int64())
	case bson.TypeInt32:
		f.Time = time.UnixMilli(int64(rv.Int32()))
	case bson.TypeDouble:
		f.Time = time.UnixMilli(int64(rv.Double()))
	case bson.TypeEmbeddedDocument:
		var wrapped struct {
			Seconds  int64 `bson:"seconds"`
			Nanos    int64 `bson:"nanoseconds"`
			XSeconds int64 `bson:"_seconds"`
			XNanos   int64 `bson:"_nanoseconds"`
		}
		if err := bson.Unmarshal(rv.Value, &wrapped); err != nil {
			return err
		}
		secs, nanos := wrapped.Seconds, wrapped.Nanos
		if secs == 0 && wrapped.XSeconds != 0 {
			secs, nanos = wrapped.XSeconds, wrapped.XNanos
		}
		f.Time = time.Unix(secs, nanos)
	case bson.TypeNull:
		f.Time = time.Time{}
	default:
		return fmt.Errorf("unsupported timestamp encoding %s", t)
	}
	return nil
}

type stepDoc struct {
	ID            string   `bson:"_id"`
	Title         string   `bson:"title"`
	Description   string   `bson:"description,omitempty"`
	ImageURL      string   `bson:"image_url,omitempty"`
	ThumbnailURL  string   `bson:"thumbnail_url,omitempty"`
	IsSignificant bool     `bson:"is_significant"`
	Completed     bool     `bson:"completed"`
	CreatedAt     flexTime `bson:"created_at"`
}

type themeDoc struct {
	Primary   string `bson:"primary"`
	Secondary string `bson:"secondary"`
	Accent    string `bson:"accent"`
}

type goalDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	UserID      string             `bson:"user_id"`
	Title       string             `bson:"title"`
	TargetDate  *flexTime          `bson:"target_date,omitempty"`
	Completed   bool               `bson:"completed"`
	CompletedAt *flexTime          `bson:"completed_at,omitempty"`
	Pinned      bool               `bson:"pinned"`
	Milestones  []stepDoc          `bson:"milestones"`
	Timeline    []stepDoc          `bson:"timeline"`
	Theme       *themeDoc          `bson:"theme,omitempty"`
	CreatedAt   flexTime           `bson:"created_at"`
}

func stepFromMilestone(m model.Milestone) stepDoc {
	return stepDoc{
		ID:            m.ID,
		Title:         m.Title,
		Description:   m.Description,
		ImageURL:      m.ImageURL,
		ThumbnailURL:  m.ThumbnailURL,
		IsSignificant: m.IsSignificant,
		Completed:     m.Completed,
		CreatedAt:     flexTime{m.CreatedAt},
	}
}

func stepFromTimeline(t model.TimelineItem) stepDoc {
	return stepDoc{
		ID:            t.ID,
		Title:         t.Title,
		Description:   t.Description,
		ImageURL:      t.ImageURL,
		ThumbnailURL:  t.ThumbnailURL,
		IsSignificant: t.IsSignificant,
		Completed:     t.Completed,
		CreatedAt:     flexTime{t.CreatedAt},
	}
}

func (d *goalDoc) toModel() model.Goal {
	g := model.Goal{
		ID:        d.ID.Hex(),
		UserID:    d.UserID,
		Title:     d.Title,
		Completed: d.Completed,
		Pinned:    d.Pinned,
		CreatedAt: d.CreatedAt.Time,
	}
	if d.TargetDate != nil && !d.TargetDate.IsZero() {
		td := d.TargetDate.Time
		g.TargetDate = &td
	}
	if d.CompletedAt != nil && !d.CompletedAt.IsZero() {
		ca := d.CompletedAt.Time
		g.CompletedAt = &ca
	}
	if d.Theme != nil {
		g.Theme = model.GoalTheme{Primary: d.Theme.Primary, Secondary: d.Theme.Secondary, Accent: d.Theme.Accent}
	}
	g.Milestones = make([]model.Milestone, 0, len(d.Milestones))
	for _, s := range d.Milestones {
		g.Milestones = append(g.Milestones, model.Milestone{
			ID: s.ID, Title: s.Title, Description: s.Description,
			ImageURL: s.ImageURL, ThumbnailURL: s.ThumbnailURL,
			IsSignificant: s.IsSignificant, Completed: s.Completed,
			CreatedAt: s.CreatedAt.Time,
		})
	}
	g.Timeline = make([]model.TimelineItem, 0, len(d.Timeline))
	for _, s := range d.Timeline {
		g.Timeline = append(g.Timeline, model.TimelineItem{
			ID: s.ID, Title: s.Title, Description: s.Description,
			ImageURL: s.ImageURL, ThumbnailURL: s.ThumbnailURL,
			IsSignificant: s.IsSignificant, Completed: s.Completed,
			CreatedAt: s.CreatedAt.Time,
		})
	}
	normalizeGoal(&g)
	return g
}

func (b *MongoBackend) objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, util.ErrGoalNotFound
	}
	return oid, nil
}

func (b *MongoBackend) FetchAll(ctx context.Context, ownerID string) ([]model.Goal, error) {
	ctx, span := tracing.Tracer.Start(ctx, "backend.mongo.fetchAll")
	defer span.End()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := b.coll.Find(ctx, bson.M{"user_id": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrFetchFailed, err)
	}
	defer cursor.Close(ctx)

	var raws []bson.Raw
	if err := cursor.All(ctx, &raws); err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrFetchFailed, err)
	}

	goals := make([]model.Goal, 0, len(raws))
	for _, raw := range raws {
		var doc goalDoc
		if err := bson.Unmarshal(raw, &doc); err != nil {
			// A malformed document still occupies a slot on the server;
			// coerce it to a hydratable default instead of dropping it.
			fallback := model.Goal{UserID: ownerID}
			if oid, ok := raw.Lookup("_id").ObjectIDOK(); ok {
				fallback.ID = oid.Hex()
			} else {
				fallback.ID = model.GenerateID()
			}
			normalizeGoal(&fallback)
			goals = append(goals, fallback)
			continue
		}
		goals = append(goals, doc.toModel())
	}
	return goals, nil
}

func (b *MongoBackend) Create(ctx context.Context, goal *model.Goal) (*model.Goal, error) {
	ctx, span := tracing.Tracer.Start(ctx, "backend.mongo.create")
	defer span.End()

	doc := goalDoc{
		UserID:    goal.UserID,
		Title:     goal.Title,
		Completed: goal.Completed,
		Pinned:    goal.Pinned,
		CreatedAt: flexTime{goal.CreatedAt},
		Theme: &themeDoc{
			Primary:   goal.Theme.Primary,
			Secondary: goal.Theme.Secondary,
			Accent:    goal.Theme.Accent,
		},
		Milestones: []stepDoc{},
		Timeline:   []stepDoc{},
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = flexTime{time.Now()}
	}
	if goal.TargetDate != nil {
		doc.TargetDate = &flexTime{*goal.TargetDate}
	}
	for _, m := range goal.Milestones {
		doc.Milestones = append(doc.Milestones, stepFromMilestone(m))
	}
	for _, t := range goal.Timeline {
		doc.Timeline = append(doc.Timeline, stepFromTimeline(t))
	}

	res, err := b.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrFetchFailed, err)
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	created := doc.toModel()
	return &created, nil
}

func (b *MongoBackend) Update(ctx context.Context, id string, patch GoalPatch) (*model.Goal, error) {
	oid, err := b.objectID(id)
	if err != nil {
		return nil, err
	}

	set := bson.M{}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.TargetDate != nil {
		set["target_date"] = *patch.TargetDate
	}
	if patch.Completed != nil {
		set["completed"] = *patch.Completed
	}
	if patch.CompletedAt != nil {
		set["completed_at"] = *patch.CompletedAt
	}
	if patch.Pinned != nil {
		set["pinned"] = *patch.Pinned
	}
	if patch.Theme != nil {
		set["theme"] = themeDoc{Primary: patch.Theme.Primary, Secondary: patch.Theme.Secondary, Accent: patch.Theme.Accent}
	}
	if len(set) == 0 {
		return b.findOne(ctx, oid)
	}
	return b.findOneAndUpdate(ctx, oid, bson.M{"$set": set})
}

func (b *MongoBackend) Delete(ctx context.Context, id string) error {
	oid, err := b.objectID(id)
	if err != nil {
		return err
	}
	res, err := b.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("%w: %v", util.ErrFetchFailed, err)
	}
	if res.DeletedCount == 0 {
		return util.ErrGoalNotFound
	}
	return nil
}

func (b *MongoBackend) AddMilestone(ctx context.Context, goalID string, m model.Milestone) (*model.Goal, error) {
	return b.pushStep(ctx, goalID, "milestones", stepFromMilestone(m))
}

func (b *MongoBackend) UpdateMilestone(ctx context.Context, goalID, milestoneID string, patch StepPatch) (*model.Goal, error) {
	return b.patchStep(ctx, goalID, "milestones", milestoneID, patch)
}

func (b *MongoBackend) DeleteMilestone(ctx context.Context, goalID, milestoneID string) (*model.Goal, error) {
	return b.pullStep(ctx, goalID, "milestones", milestoneID)
}

func (b *MongoBackend) AddTimelineItem(ctx context.Context, goalID string, item model.TimelineItem) (*model.Goal, error) {
	return b.pushStep(ctx, goalID, "timeline", stepFromTimeline(item))
}

func (b *MongoBackend) UpdateTimelineItem(ctx context.Context, goalID, itemID string, patch StepPatch) (*model.Goal, error) {
	return b.patchStep(ctx, goalID, "timeline", itemID, patch)
}

func (b *MongoBackend) DeleteTimelineItem(ctx context.Context, goalID, itemID string) (*model.Goal, error) {
	return b.pullStep(ctx, goalID, "timeline", itemID)
}

// pushStep prepends: entries are newest-first on the server as well.
func (b *MongoBackend) pushStep(ctx context.Context, goalID, field string, step stepDoc) (*model.Goal, error) {
	oid, err := b.objectID(goalID)
	if err != nil {
		return nil, err
	}
	update := bson.M{"$push": bson.M{field: bson.M{"$each": []stepDoc{step}, "$position": 0}}}
	return b.findOneAndUpdate(ctx, oid, update)
}

func (b *MongoBackend) patchStep(ctx context.Context, goalID, field, stepID string, patch StepPatch) (*model.Goal, error) {
	oid, err := b.objectID(goalID)
	if err != nil {
		return nil, err
	}

	set := bson.M{}
	prefix := field + ".$[el]."
	if patch.Title != nil {
		set[prefix+"title"] = *patch.Title
	}
	if patch.Description != nil {
		set[prefix+"description"] = *patch.Description
	}
	if patch.ImageURL != nil {
		set[prefix+"image_url"] = *patch.ImageURL
	}
	if patch.ThumbnailURL != nil {
		set[prefix+"thumbnail_url"] = *patch.ThumbnailURL
	}
	if patch.IsSignificant != nil {
		set[prefix+"is_significant"] = *patch.IsSignificant
	}
	if patch.Completed != nil {
		set[prefix+"completed"] = *patch.Completed
	}
	if len(set) == 0 {
		return b.findOne(ctx, oid)
	}

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetArrayFilters(options.ArrayFilters{Filters: []interface{}{bson.M{"el._id": stepID}}})

	var doc goalDoc
	err = b.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, util.ErrGoalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrFetchFailed, err)
	}
	g := doc.toModel()
	return &g, nil
}

func (b *MongoBackend) pullStep(ctx context.Context, goalID, field, stepID string) (*model.Goal, error) {
	oid, err := b.objectID(goalID)
	if err != nil {
		return nil, err
	}
	update := bson.M{"$pull": bson.M{field: bson.M{"_id": stepID}}}
	return b.findOneAndUpdate(ctx, oid, update)
}

func (b *MongoBackend) findOne(ctx context.Context, oid primitive.ObjectID) (*model.Goal, error) {
	var doc goalDoc
	err := b.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, util.ErrGoalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrFetchFailed, err)
	}
	g := doc.toModel()
	return &g, nil
}

func (b *MongoBackend) findOneAndUpdate(ctx context.Context, oid primitive.ObjectID, update bson.M) (*model.Goal, error) {
	ctx, span := tracing.Tracer.Start(ctx, "backend.mongo.update")
	defer span.End()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc goalDoc
	err := b.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, util.ErrGoalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrFetchFailed, err)
	}
	g := doc.toModel()
	return &g, nil
}
