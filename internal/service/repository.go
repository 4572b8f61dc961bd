package service

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/perchsocial/perch/internal/model"
)

// UserRepository is the persistence surface the services depend on.
// Follow and Unfollow mutate both sides of the graph edge atomically;
// Follow also records the follow notification in the same unit.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	Suggested(ctx context.Context, exclude []primitive.ObjectID, limit int) ([]model.User, error)
	Follow(ctx context.Context, followerID, targetID primitive.ObjectID) error
	Unfollow(ctx context.Context, followerID, targetID primitive.ObjectID) error
}

type NotificationRepository interface {
	ListByRecipient(ctx context.Context, to primitive.ObjectID) ([]model.Notification, error)
	MarkRead(ctx context.Context, to primitive.ObjectID) error
	DeleteByRecipient(ctx context.Context, to primitive.ObjectID) error
}
