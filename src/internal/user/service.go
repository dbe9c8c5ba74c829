package user

import (
	"context"
	"errors"
	"fmt"

	"gamingrealm-backend/src/internal/config"
	"gamingrealm-backend/src/internal/credentials"
	"gamingrealm-backend/src/internal/models"
	"gamingrealm-backend/src/internal/session"

	"github.com/sirupsen/logrus"
)

type Service interface {
	Signup(ctx context.Context, req *SignupRequest) (*session.Session, *Profile, error)
	Login(ctx context.Context, req *LoginRequest, presentedSessionID string) (*session.Session, *Profile, error)
	Logout(ctx context.Context, sessionID string) error

	GetProfile(ctx context.Context, id string) (*Profile, int64, int64, error)
	IsFollowing(ctx context.Context, viewerID, targetID string) (bool, error)
	Follow(ctx context.Context, userID, targetID string) error
	Unfollow(ctx context.Context, userID, targetID string) error
}

type userService struct {
	repo     Repository
	sessions session.Store
	hasher   *credentials.Hasher
	cfg      *config.Configuration
}

func NewUserService(repo Repository, sessions session.Store, hasher *credentials.Hasher, cfg *config.Configuration) Service {
	return &userService{
		repo:     repo,
		sessions: sessions,
		hasher:   hasher,
		cfg:      cfg,
	}
}

func (s *userService) validate(username, password string) error {
	if !ValidUsername(username) {
		return fmt.Errorf("username cannot contain special characters other than underscores and dashes")
	}
	if len(password) < s.cfg.Security.MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", s.cfg.Security.MinPasswordLength)
	}
	return nil
}

func (s *userService) Signup(ctx context.Context, req *SignupRequest) (*session.Session, *Profile, error) {
	if err := s.validate(req.Username, req.Password); err != nil {
		return nil, nil, err
	}

	existing, err := s.repo.FindByUsernameOrEmail(ctx, req.Username, req.Email)
	if err != nil {
		return nil, nil, err
	}
	if existing != nil {
		logrus.Debug("Sign up attempted with username or email which already exists")
		return nil, nil, models.ErrDuplicateAccount
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		logrus.WithError(err).Error("Failed to hash password")
		return nil, nil, err
	}

	created, err := s.repo.Insert(ctx, &User{
		Username: req.Username,
		Email:    req.Email,
		Password: hash,
	})
	if err != nil {
		return nil, nil, err
	}

	sess, err := s.sessions.CreateSession(ctx, created.ID.Hex())
	if err != nil {
		return nil, nil, err
	}

	logrus.WithFields(logrus.Fields{
		"username": created.Username,
		"user_id":  created.ID.Hex(),
	}).Info("Account successfully created")

	return sess, created.ToProfile(), nil
}

func (s *userService) Login(ctx context.Context, req *LoginRequest, presentedSessionID string) (*session.Session, *Profile, error) {
	u, err := s.repo.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, nil, err
	}

	// absent user and wrong password are indistinguishable on purpose
	if u == nil {
		return nil, nil, models.ErrInvalidCredentials
	}
	ok, err := s.hasher.Verify(req.Password, u.Password)
	if err != nil {
		if errors.Is(err, models.ErrCredentialFormat) {
			logrus.WithField("user_id", u.ID.Hex()).Error("Stored password hash is malformed")
		}
		return nil, nil, err
	}
	if !ok {
		return nil, nil, models.ErrInvalidCredentials
	}

	sess, err := s.sessions.CreateSession(ctx, u.ID.Hex())
	if err != nil {
		return nil, nil, err
	}

	// multi-session cleanup: drop the session the client was still holding
	if presentedSessionID != "" {
		exists, err := s.sessions.Contains(ctx, presentedSessionID)
		if err == nil && exists {
			if err := s.sessions.DeleteSession(ctx, presentedSessionID); err == nil {
				logrus.WithField("session_id", presentedSessionID).
					Warn("Deleted session since a new session has been created")
			}
		}
	}

	logrus.WithFields(logrus.Fields{
		"session_id": sess.ID,
		"username":   u.Username,
	}).Info("Session successfully created")

	return sess, u.ToProfile(), nil
}

func (s *userService) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.DeleteSession(ctx, sessionID)
}

func (s *userService) GetProfile(ctx context.Context, id string) (*Profile, int64, int64, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, 0, 0, err
	}
	if u == nil {
		return nil, 0, 0, models.ErrRecordNotFound
	}

	followers, err := s.repo.CountFollowers(ctx, id)
	if err != nil {
		return nil, 0, 0, err
	}
	following, err := s.repo.CountFollowing(ctx, id)
	if err != nil {
		return nil, 0, 0, err
	}

	return u.ToProfile(), followers, following, nil
}

func (s *userService) IsFollowing(ctx context.Context, viewerID, targetID string) (bool, error) {
	return s.repo.IsFollowing(ctx, viewerID, targetID)
}

func (s *userService) Follow(ctx context.Context, userID, targetID string) error {
	if userID == targetID {
		return fmt.Errorf("cannot follow yourself")
	}

	target, err := s.repo.FindByID(ctx, targetID)
	if err != nil {
		return err
	}
	if target == nil {
		return models.ErrRecordNotFound
	}

	return s.repo.Follow(ctx, userID, targetID)
}

func (s *userService) Unfollow(ctx context.Context, userID, targetID string) error {
	return s.repo.Unfollow(ctx, userID, targetID)
}
