// Package auth signs admins in and out. Tokens are JWTs bound to a
// revocable row in user_sessions.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bhutan-travel/core/internal/models"
	"github.com/bhutan-travel/core/internal/pkg/authz"
	sessionpkg "github.com/bhutan-travel/core/internal/pkg/session"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ErrInvalidCredentials covers both an unknown account and a wrong password.
var ErrInvalidCredentials = errors.New("invalid username or password")

// dummyHash keeps the unknown-user path as slow as a real comparison.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-password"), bcrypt.DefaultCost)

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *models.UserModel
}

type Service struct {
	db     *gorm.DB
	ttl    time.Duration
	logger *zap.Logger
}

func NewService(db *gorm.DB, ttl time.Duration, logger *zap.Logger) *Service {
	if ttl <= 0 {
		ttl = sessionpkg.DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: db, ttl: ttl, logger: logger.Named("auth")}
}

// Login accepts a username or an email address.
func (s *Service) Login(ctx context.Context, identifier, password, ip, ua string) (*LoginResult, error) {
	identifier = strings.ToLower(strings.TrimSpace(identifier))
	if identifier == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	var u models.UserModel
	err := s.db.WithContext(ctx).Where("username = ? OR email = ?", identifier, identifier).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		s.logger.Info("login rejected", zap.String("username", u.Username), zap.String("ip", ip))
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	if err := s.db.WithContext(ctx).Model(&u).UpdateColumns(map[string]interface{}{
		"last_login_time": now,
		"last_login_ip":   ip,
	}).Error; err != nil {
		s.logger.Warn("record last login failed", zap.String("user_id", u.ID), zap.Error(err))
	}
	u.LastLoginTime = &now
	u.LastLoginIP = ip

	token, session, err := sessionpkg.Issue(ctx, s.db, u.ID, ip, ua, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("issue session: %w", err)
	}
	return &LoginResult{Token: token, ExpiresAt: session.ExpiresAt, User: &u}, nil
}

// Logout revokes the actor's current session. An already closed session
// is not an error.
func (s *Service) Logout(ctx context.Context, actor authz.Actor) error {
	if err := actor.Require(); err != nil {
		return err
	}
	err := sessionpkg.Revoke(ctx, s.db, actor.UserID, actor.SessionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}

// Current returns the signed-in account, or nil if it no longer exists.
func (s *Service) Current(ctx context.Context, actor authz.Actor) (*models.UserModel, error) {
	if err := actor.Require(); err != nil {
		return nil, err
	}
	var u models.UserModel
	err := s.db.WithContext(ctx).First(&u, "id = ?", actor.UserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Service) Sessions(ctx context.Context, actor authz.Actor) ([]models.UserSession, error) {
	if err := actor.Require(); err != nil {
		return nil, err
	}
	return sessionpkg.ListActive(ctx, s.db, actor.UserID)
}

// RevokeSession ends one of the actor's own sessions.
func (s *Service) RevokeSession(ctx context.Context, actor authz.Actor, sessionID string) (bool, error) {
	if err := actor.Require(); err != nil {
		return false, err
	}
	err := sessionpkg.Revoke(ctx, s.db, actor.UserID, sessionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return err == nil, err
}

// RevokeOthers ends every session of the actor except the current one.
func (s *Service) RevokeOthers(ctx context.Context, actor authz.Actor) error {
	if err := actor.Require(); err != nil {
		return err
	}
	return sessionpkg.RevokeAll(ctx, s.db, actor.UserID, actor.SessionID)
}
