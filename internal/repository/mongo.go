package repository

import (
	"context"
	"errors"
	"time"

	"socialapi/internal/database"
	"socialapi/internal/models"
	"socialapi/internal/observability"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type userDocument struct {
	ID        primitive.ObjectID   `bson:"_id"`
	Username  string               `bson:"username"`
	Email     string               `bson:"email"`
	Thoughts  []primitive.ObjectID `bson:"thoughts"`
	Friends   []primitive.ObjectID `bson:"friends"`
	CreatedAt time.Time            `bson:"createdAt"`
	UpdatedAt time.Time            `bson:"updatedAt"`
}

type reactionDocument struct {
	ReactionID   primitive.ObjectID `bson:"reactionId"`
	ReactionBody string             `bson:"reactionBody"`
	Username     string             `bson:"username"`
	CreatedAt    time.Time          `bson:"createdAt"`
}

type thoughtDocument struct {
	ID          primitive.ObjectID `bson:"_id"`
	ThoughtText string             `bson:"thoughtText"`
	Username    string             `bson:"username"`
	UserID      primitive.ObjectID `bson:"userId"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
	Reactions   []reactionDocument `bson:"reactions"`
}

// mongoNow matches the millisecond precision of BSON dates.
func mongoNow() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func hexIDs(ids []primitive.ObjectID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.Hex())
	}
	return out
}

// objectIDs parses hex ids, dropping malformed ones; they cannot name a document.
func objectIDs(ids []string) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			out = append(out, oid)
		}
	}
	return out
}

func (d userDocument) toModel() models.User {
	return models.User{
		ID:         d.ID.Hex(),
		Username:   d.Username,
		Email:      d.Email,
		ThoughtIDs: hexIDs(d.Thoughts),
		FriendIDs:  hexIDs(d.Friends),
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

func (d thoughtDocument) toModel() models.Thought {
	t := models.Thought{
		ID:          d.ID.Hex(),
		ThoughtText: d.ThoughtText,
		Username:    d.Username,
		UserID:      d.UserID.Hex(),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
		Reactions:   make([]models.Reaction, 0, len(d.Reactions)),
	}
	for _, r := range d.Reactions {
		t.Reactions = append(t.Reactions, models.Reaction{
			ReactionID:   r.ReactionID.Hex(),
			ThoughtID:    t.ID,
			ReactionBody: r.ReactionBody,
			Username:     r.Username,
			CreatedAt:    r.CreatedAt,
		})
	}
	return t
}

type mongoUserRepository struct {
	users   *mongo.Collection
	metrics *observability.Metrics
}

// NewMongoUserRepository returns a UserRepository over the users collection.
// Friends and thoughts are id arrays on the user document.
func NewMongoUserRepository(db *mongo.Database, metrics *observability.Metrics) UserRepository {
	return &mongoUserRepository{users: db.Collection(database.UsersCollection), metrics: metrics}
}

func (r *mongoUserRepository) Create(ctx context.Context, user *models.User) error {
	defer r.metrics.TrackQuery("create", database.UsersCollection)()

	now := mongoNow()
	doc := userDocument{
		ID:        primitive.NewObjectID(),
		Username:  user.Username,
		Email:     user.Email,
		Thoughts:  []primitive.ObjectID{},
		Friends:   []primitive.ObjectID{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := r.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return duplicateUserError()
		}
		return models.NewInternalError(err)
	}

	*user = doc.toModel()
	return nil
}

func (r *mongoUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	defer r.metrics.TrackQuery("query", database.UsersCollection)()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.NewNotFoundError("User", id)
	}

	var doc userDocument
	if err := r.users.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.NewNotFoundError("User", id)
		}
		return nil, models.NewInternalError(err)
	}
	user := doc.toModel()
	return &user, nil
}

func (r *mongoUserRepository) GetByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	defer r.metrics.TrackQuery("query", database.UsersCollection)()

	oids := objectIDs(uniqueStrings(ids))
	if len(oids) == 0 {
		return []models.User{}, nil
	}

	docs, err := r.find(ctx, bson.M{"_id": bson.M{"$in": oids}}, nil)
	if err != nil {
		return nil, err
	}

	byID := make(map[primitive.ObjectID]userDocument, len(docs))
	for _, d := range docs {
		byID[d.ID] = d
	}
	users := make([]models.User, 0, len(docs))
	for _, oid := range oids {
		if d, ok := byID[oid]; ok {
			users = append(users, d.toModel())
		}
	}
	return users, nil
}

func (r *mongoUserRepository) List(ctx context.Context) ([]models.User, error) {
	defer r.metrics.TrackQuery("query", database.UsersCollection)()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	docs, err := r.find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	users := make([]models.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, d.toModel())
	}
	return users, nil
}

func (r *mongoUserRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]userDocument, error) {
	var findOpts []*options.FindOptions
	if opts != nil {
		findOpts = append(findOpts, opts)
	}
	cur, err := r.users.Find(ctx, filter, findOpts...)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	var docs []userDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, models.NewInternalError(err)
	}
	return docs, nil
}

func (r *mongoUserRepository) Update(ctx context.Context, user *models.User) error {
	defer r.metrics.TrackQuery("update", database.UsersCollection)()

	oid, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		return models.NewNotFoundError("User", user.ID)
	}

	res, err := r.users.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"username":  user.Username,
		"email":     user.Email,
		"updatedAt": mongoNow(),
	}})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return duplicateUserError()
		}
		return models.NewInternalError(err)
	}
	if res.MatchedCount == 0 {
		return models.NewNotFoundError("User", user.ID)
	}
	return nil
}

func (r *mongoUserRepository) AddFriend(ctx context.Context, userID, friendID string) error {
	defer r.metrics.TrackQuery("update", database.UsersCollection)()

	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return models.NewNotFoundError("User", userID)
	}
	fid, err := primitive.ObjectIDFromHex(friendID)
	if err != nil {
		return models.NewNotFoundError("User", friendID)
	}

	res, err := r.users.UpdateOne(ctx, bson.M{"_id": uid}, bson.M{"$addToSet": bson.M{"friends": fid}})
	if err != nil {
		return models.NewInternalError(err)
	}
	if res.MatchedCount == 0 {
		return models.NewNotFoundError("User", userID)
	}
	return nil
}

type mongoThoughtRepository struct {
	thoughts *mongo.Collection
	users    *mongo.Collection
	metrics  *observability.Metrics
}

// NewMongoThoughtRepository returns a ThoughtRepository over the thoughts
// collection. Reactions are embedded in the thought document.
func NewMongoThoughtRepository(db *mongo.Database, metrics *observability.Metrics) ThoughtRepository {
	return &mongoThoughtRepository{
		thoughts: db.Collection(database.ThoughtsCollection),
		users:    db.Collection(database.UsersCollection),
		metrics:  metrics,
	}
}

// Create inserts the thought, then pushes its id onto the author. The two
// writes are not atomic; a failure between them leaves an unlinked thought.
func (r *mongoThoughtRepository) Create(ctx context.Context, thought *models.Thought) error {
	defer r.metrics.TrackQuery("create", database.ThoughtsCollection)()

	uid, err := primitive.ObjectIDFromHex(thought.UserID)
	if err != nil {
		return models.NewNotFoundError("User", thought.UserID)
	}

	now := mongoNow()
	doc := thoughtDocument{
		ID:          primitive.NewObjectID(),
		ThoughtText: thought.ThoughtText,
		Username:    thought.Username,
		UserID:      uid,
		CreatedAt:   now,
		UpdatedAt:   now,
		Reactions:   []reactionDocument{},
	}
	if _, err := r.thoughts.InsertOne(ctx, doc); err != nil {
		return models.NewInternalError(err)
	}

	res, err := r.users.UpdateOne(ctx, bson.M{"_id": uid}, bson.M{"$push": bson.M{"thoughts": doc.ID}})
	if err != nil {
		return models.NewInternalError(err)
	}
	if res.MatchedCount == 0 {
		return models.NewNotFoundError("User", thought.UserID)
	}

	*thought = doc.toModel()
	return nil
}

func (r *mongoThoughtRepository) GetByID(ctx context.Context, id string) (*models.Thought, error) {
	defer r.metrics.TrackQuery("query", database.ThoughtsCollection)()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.NewNotFoundError("Thought", id)
	}

	var doc thoughtDocument
	if err := r.thoughts.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.NewNotFoundError("Thought", id)
		}
		return nil, models.NewInternalError(err)
	}
	thought := doc.toModel()
	return &thought, nil
}

func (r *mongoThoughtRepository) List(ctx context.Context) ([]models.Thought, error) {
	defer r.metrics.TrackQuery("query", database.ThoughtsCollection)()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.thoughts.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	var docs []thoughtDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, models.NewInternalError(err)
	}

	thoughts := make([]models.Thought, 0, len(docs))
	for _, d := range docs {
		thoughts = append(thoughts, d.toModel())
	}
	return thoughts, nil
}

func (r *mongoThoughtRepository) UpdateText(ctx context.Context, id, text string) error {
	defer r.metrics.TrackQuery("update", database.ThoughtsCollection)()

	return r.updateOne(ctx, id, bson.M{"$set": bson.M{"thoughtText": text, "updatedAt": mongoNow()}})
}

func (r *mongoThoughtRepository) AddReaction(ctx context.Context, thoughtID string, reaction *models.Reaction) error {
	defer r.metrics.TrackQuery("update", database.ThoughtsCollection)()

	doc := reactionDocument{
		ReactionID:   primitive.NewObjectID(),
		ReactionBody: reaction.ReactionBody,
		Username:     reaction.Username,
		CreatedAt:    mongoNow(),
	}
	if err := r.updateOne(ctx, thoughtID, bson.M{"$push": bson.M{"reactions": doc}}); err != nil {
		return err
	}

	reaction.ReactionID = doc.ReactionID.Hex()
	reaction.ThoughtID = thoughtID
	reaction.CreatedAt = doc.CreatedAt
	return nil
}

func (r *mongoThoughtRepository) updateOne(ctx context.Context, id string, update bson.M) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.NewNotFoundError("Thought", id)
	}
	res, err := r.thoughts.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return models.NewInternalError(err)
	}
	if res.MatchedCount == 0 {
		return models.NewNotFoundError("Thought", id)
	}
	return nil
}
