package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/perchsocial/perch/internal/infrastructure/database"
	"github.com/perchsocial/perch/internal/model"
)

// Storage-level sentinels. Services translate these into client-facing
// errors with endpoint-specific messages.
var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate key")
)

type UserRepo struct {
	client        *mongo.Client
	users         *mongo.Collection
	notifications *mongo.Collection
}

func NewUserRepo(m *database.Mongo) *UserRepo {
	return &UserRepo{
		client:        m.Client,
		users:         m.Users,
		notifications: m.Notifications,
	}
}

func (r *UserRepo) Create(ctx context.Context, user *model.User) error {
	_, err := r.users.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func (r *UserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepo) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	var user model.User
	err := r.users.FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Update replaces the stored document. Unique-index collisions from a
// username or email change surface as ErrDuplicate.
func (r *UserRepo) Update(ctx context.Context, user *model.User) error {
	user.UpdatedAt = time.Now().UTC()
	res, err := r.users.ReplaceOne(ctx, bson.M{"_id": user.ID}, user)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Suggested samples up to limit users excluding the given ids, with the
// password stripped server-side. Order is random by construction.
func (r *UserRepo) Suggested(ctx context.Context, exclude []primitive.ObjectID, limit int) ([]model.User, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": bson.M{"$nin": exclude}}}},
		{{Key: "$project", Value: bson.M{"password": 0}}},
		{{Key: "$sample", Value: bson.M{"size": limit}}},
	}

	cursor, err := r.users.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("sampling users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []model.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Follow adds both graph edges and the follow notification in a single
// transaction, so a partial edge is never observable.
func (r *UserRepo) Follow(ctx context.Context, followerID, targetID primitive.ObjectID) error {
	return r.inTransaction(ctx, func(sc mongo.SessionContext) error {
		if _, err := r.users.UpdateByID(sc, targetID,
			bson.M{"$addToSet": bson.M{"followers": followerID}}); err != nil {
			return err
		}
		if _, err := r.users.UpdateByID(sc, followerID,
			bson.M{"$addToSet": bson.M{"following": targetID}}); err != nil {
			return err
		}
		_, err := r.notifications.InsertOne(sc, &model.Notification{
			ID:        primitive.NewObjectID(),
			From:      followerID,
			To:        targetID,
			Type:      model.NotificationFollow,
			CreatedAt: time.Now().UTC(),
		})
		return err
	})
}

// Unfollow removes both graph edges transactionally. No notification is
// emitted for unfollows.
func (r *UserRepo) Unfollow(ctx context.Context, followerID, targetID primitive.ObjectID) error {
	return r.inTransaction(ctx, func(sc mongo.SessionContext) error {
		if _, err := r.users.UpdateByID(sc, targetID,
			bson.M{"$pull": bson.M{"followers": followerID}}); err != nil {
			return err
		}
		_, err := r.users.UpdateByID(sc, followerID,
			bson.M{"$pull": bson.M{"following": targetID}})
		return err
	})
}

func (r *UserRepo) inTransaction(ctx context.Context, fn func(sc mongo.SessionContext) error) error {
	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("starting session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
