package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/perchsocial/perch/internal/infrastructure/database"
	"github.com/perchsocial/perch/internal/model"
)

type NotificationRepo struct {
	notifications *mongo.Collection
}

func NewNotificationRepo(m *database.Mongo) *NotificationRepo {
	return &NotificationRepo{notifications: m.Notifications}
}

// ListByRecipient returns the recipient's notifications, newest first.
func (r *NotificationRepo) ListByRecipient(ctx context.Context, to primitive.ObjectID) ([]model.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.notifications.Find(ctx, bson.M{"to": to}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []model.Notification
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkRead flags every unread notification of the recipient as read.
func (r *NotificationRepo) MarkRead(ctx context.Context, to primitive.ObjectID) error {
	_, err := r.notifications.UpdateMany(ctx,
		bson.M{"to": to, "read": false},
		bson.M{"$set": bson.M{"read": true}})
	return err
}

// DeleteByRecipient clears the recipient's inbox.
func (r *NotificationRepo) DeleteByRecipient(ctx context.Context, to primitive.ObjectID) error {
	_, err := r.notifications.DeleteMany(ctx, bson.M{"to": to})
	return err
}
