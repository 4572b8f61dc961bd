package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/perchsocial/perch/internal/apperr"
	"github.com/perchsocial/perch/internal/config"
	"github.com/perchsocial/perch/internal/model"
	"github.com/perchsocial/perch/internal/repository"
)

const minPasswordLen = 6

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type AuthService struct {
	users    UserRepository
	secret   []byte
	tokenTTL time.Duration
}

func NewAuthService(users UserRepository, cfg config.SessionConfig) *AuthService {
	return &AuthService{
		users:    users,
		secret:   []byte(cfg.Secret),
		tokenTTL: time.Duration(cfg.ExpireDays) * 24 * time.Hour,
	}
}

type SignupInput struct {
	FullName string
	Username string
	Email    string
	Password string
}

// Signup creates the user and returns it together with a fresh session
// token. The token is minted only after the insert succeeds, so a failed
// save never leaves the client holding a token for a missing user.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*model.User, string, error) {
	if !emailPattern.MatchString(in.Email) {
		return nil, "", apperr.Validation("Invalid email format")
	}
	if err := s.checkAvailable(ctx, in.Username, in.Email); err != nil {
		return nil, "", err
	}
	if len(in.Password) < minPasswordLen {
		return nil, "", apperr.Validation("Password must be at least 6 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:        primitive.NewObjectID(),
		Username:  in.Username,
		FullName:  in.FullName,
		Email:     in.Email,
		Password:  string(hash),
		Followers: []primitive.ObjectID{},
		Following: []primitive.ObjectID{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// Lost a race against a concurrent signup; the pre-checks
			// above already passed.
			return nil, "", apperr.Duplicate("Username or email is already taken")
		}
		return nil, "", fmt.Errorf("creating user: %w", err)
	}

	token, err := s.generateToken(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("generating token: %w", err)
	}
	return user, token, nil
}

func (s *AuthService) checkAvailable(ctx context.Context, username, email string) error {
	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return apperr.Duplicate("Username is already taken")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("checking username: %w", err)
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return apperr.Duplicate("Email is already taken")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("checking email: %w", err)
	}
	return nil
}

// Login verifies the credentials and returns the user plus a session
// token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*model.User, string, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", apperr.NotFound("User not found")
		}
		return nil, "", fmt.Errorf("looking up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", apperr.Auth("Invalid password")
	}

	token, err := s.generateToken(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("generating token: %w", err)
	}
	return user, token, nil
}

// CurrentUser resolves a verified session's user id. The id can stop
// resolving if the account disappears after the token was minted.
func (s *AuthService) CurrentUser(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	return user, nil
}

// TokenTTL is the session lifetime, exposed so the API layer can set a
// matching cookie Max-Age.
func (s *AuthService) TokenTTL() time.Duration {
	return s.tokenTTL
}

func (s *AuthService) generateToken(userID primitive.ObjectID) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID.Hex(),
		"exp":     time.Now().Add(s.tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}
