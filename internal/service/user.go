package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/perchsocial/perch/internal/apperr"
	"github.com/perchsocial/perch/internal/infrastructure/imagestore"
	"github.com/perchsocial/perch/internal/model"
	"github.com/perchsocial/perch/internal/repository"
)

const suggestedLimit = 10

type UserService struct {
	users  UserRepository
	images imagestore.Store
}

func NewUserService(users UserRepository, images imagestore.Store) *UserService {
	return &UserService{users: users, images: images}
}

// GetProfile returns the user behind a username.
func (s *UserService) GetProfile(ctx context.Context, username string) (*model.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	return user, nil
}

// Suggested samples up to 10 users the caller does not already follow.
// Order is intentionally random.
func (s *UserService) Suggested(ctx context.Context, callerID primitive.ObjectID) ([]model.User, error) {
	caller, err := s.users.GetByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, fmt.Errorf("looking up caller: %w", err)
	}

	exclude := append([]primitive.ObjectID{callerID}, caller.Following...)
	users, err := s.users.Suggested(ctx, exclude, suggestedLimit)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []model.User{}
	}
	return users, nil
}

// FollowUnfollow toggles the edge between caller and target. It reports
// whether the caller now follows the target. Following emits exactly one
// follow notification; unfollowing emits none.
func (s *UserService) FollowUnfollow(ctx context.Context, callerID, targetID primitive.ObjectID) (bool, error) {
	if callerID == targetID {
		return false, apperr.Validation("You can't follow/unfollow yourself")
	}

	caller, err := s.users.GetByID(ctx, callerID)
	if err != nil {
		return false, s.lookupErr(err)
	}
	if _, err := s.users.GetByID(ctx, targetID); err != nil {
		return false, s.lookupErr(err)
	}

	if caller.IsFollowing(targetID) {
		if err := s.users.Unfollow(ctx, callerID, targetID); err != nil {
			return false, fmt.Errorf("unfollowing: %w", err)
		}
		return false, nil
	}

	if err := s.users.Follow(ctx, callerID, targetID); err != nil {
		return false, fmt.Errorf("following: %w", err)
	}
	return true, nil
}

func (s *UserService) lookupErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("User not found")
	}
	return fmt.Errorf("looking up user: %w", err)
}

type UpdateProfileInput struct {
	FullName        string
	Email           string
	Username        string
	Bio             string
	Link            string
	CurrentPassword string
	NewPassword     string
	ProfileImage    string // base64 payload, optionally a data: URI
	CoverImage      string
}

// UpdateProfile merges the provided fields into the stored user. Empty
// fields are left untouched. A password change requires both the current
// and the new password; a new image replaces the hosted asset.
func (s *UserService) UpdateProfile(ctx context.Context, callerID primitive.ObjectID, in UpdateProfileInput) (*model.User, error) {
	user, err := s.users.GetByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if (in.CurrentPassword == "") != (in.NewPassword == "") {
		return nil, apperr.Validation("Please provide both current and new password")
	}
	if in.CurrentPassword != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.CurrentPassword)); err != nil {
			return nil, apperr.Auth("Invalid current password")
		}
		if len(in.NewPassword) < minPasswordLen {
			return nil, apperr.Validation("New password must be at least 6 characters long")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hashing password: %w", err)
		}
		user.Password = string(hash)
	}

	if in.ProfileImage != "" {
		url, err := s.replaceImage(ctx, user.ProfileImage, in.ProfileImage)
		if err != nil {
			return nil, err
		}
		user.ProfileImage = url
	}
	if in.CoverImage != "" {
		url, err := s.replaceImage(ctx, user.CoverImage, in.CoverImage)
		if err != nil {
			return nil, err
		}
		user.CoverImage = url
	}

	if in.FullName != "" {
		user.FullName = in.FullName
	}
	if in.Email != "" {
		if !emailPattern.MatchString(in.Email) {
			return nil, apperr.Validation("Invalid email format")
		}
		user.Email = in.Email
	}
	if in.Username != "" {
		user.Username = in.Username
	}
	if in.Bio != "" {
		user.Bio = in.Bio
	}
	if in.Link != "" {
		user.Link = in.Link
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Duplicate("Username or email is already taken")
		}
		return nil, fmt.Errorf("updating user: %w", err)
	}
	return user, nil
}

// replaceImage deletes the previously hosted asset (if any) and uploads
// the new one. Any image-store failure aborts the whole update so the
// document never references a dangling asset.
func (s *UserService) replaceImage(ctx context.Context, oldURL, payload string) (string, error) {
	data, err := decodeImagePayload(payload)
	if err != nil {
		return "", apperr.Validation("Invalid image data")
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", apperr.Validation("Unsupported image type")
	}

	if oldURL != "" {
		if err := s.images.Delete(ctx, oldURL); err != nil {
			return "", fmt.Errorf("deleting previous image: %w", err)
		}
	}

	url, err := s.images.Upload(ctx, data, mt.String())
	if err != nil {
		return "", fmt.Errorf("uploading image: %w", err)
	}
	return url, nil
}

// decodeImagePayload accepts either a bare base64 string or a data URI
// ("data:image/png;base64,....").
func decodeImagePayload(payload string) ([]byte, error) {
	if strings.HasPrefix(payload, "data:") {
		_, rest, ok := strings.Cut(payload, ",")
		if !ok {
			return nil, errors.New("malformed data URI")
		}
		payload = rest
	}
	return base64.StdEncoding.DecodeString(payload)
}
