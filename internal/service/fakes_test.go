package service

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/perchsocial/perch/internal/model"
	"github.com/perchsocial/perch/internal/repository"
)

// fakeUserRepo is an in-memory UserRepository with the same observable
// semantics as the mongo implementation, including the $addToSet /
// $pull behavior of the follow edges.
type fakeUserRepo struct {
	users         map[primitive.ObjectID]*model.User
	notifications []model.Notification

	followErr error
	updateErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]*model.User)}
}

func (r *fakeUserRepo) add(u *model.User) *model.User {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.Followers == nil {
		u.Followers = []primitive.ObjectID{}
	}
	if u.Following == nil {
		u.Following = []primitive.ObjectID{}
	}
	r.users[u.ID] = u
	return u
}

func (r *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	r.add(user)
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, user *model.User) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	for _, u := range r.users {
		if u.ID != user.ID && (u.Username == user.Username || u.Email == user.Email) {
			return repository.ErrDuplicate
		}
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) Suggested(_ context.Context, exclude []primitive.ObjectID, limit int) ([]model.User, error) {
	excluded := make(map[primitive.ObjectID]bool, len(exclude))
	for _, id := range exclude {
		excluded[id] = true
	}
	var out []model.User
	for _, u := range r.users {
		if excluded[u.ID] || len(out) >= limit {
			continue
		}
		cp := *u
		cp.Password = ""
		out = append(out, cp)
	}
	return out, nil
}

func (r *fakeUserRepo) Follow(_ context.Context, followerID, targetID primitive.ObjectID) error {
	if r.followErr != nil {
		return r.followErr
	}
	target := r.users[targetID]
	follower := r.users[followerID]
	target.Followers = addToSet(target.Followers, followerID)
	follower.Following = addToSet(follower.Following, targetID)
	r.notifications = append(r.notifications, model.Notification{
		ID:        primitive.NewObjectID(),
		From:      followerID,
		To:        targetID,
		Type:      model.NotificationFollow,
		CreatedAt: time.Now(),
	})
	return nil
}

func (r *fakeUserRepo) Unfollow(_ context.Context, followerID, targetID primitive.ObjectID) error {
	target := r.users[targetID]
	follower := r.users[followerID]
	target.Followers = pull(target.Followers, followerID)
	follower.Following = pull(follower.Following, targetID)
	return nil
}

func addToSet(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}

func pull(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := ids[:0]
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}

type fakeNotificationRepo struct {
	items map[primitive.ObjectID][]model.Notification
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{items: make(map[primitive.ObjectID][]model.Notification)}
}

func (r *fakeNotificationRepo) ListByRecipient(_ context.Context, to primitive.ObjectID) ([]model.Notification, error) {
	return append([]model.Notification(nil), r.items[to]...), nil
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, to primitive.ObjectID) error {
	for i := range r.items[to] {
		r.items[to][i].Read = true
	}
	return nil
}

func (r *fakeNotificationRepo) DeleteByRecipient(_ context.Context, to primitive.ObjectID) error {
	delete(r.items, to)
	return nil
}

// fakeImageStore records uploads and deletions.
type fakeImageStore struct {
	uploads   []string
	deleted   []string
	uploadErr error
	deleteErr error
}

func (s *fakeImageStore) Upload(_ context.Context, _ []byte, contentType string) (string, error) {
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	url := fmt.Sprintf("https://img.test/%s/%d", contentType, len(s.uploads))
	s.uploads = append(s.uploads, url)
	return url, nil
}

func (s *fakeImageStore) Delete(_ context.Context, rawURL string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, rawURL)
	return nil
}
