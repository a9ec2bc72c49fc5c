package user

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/bhutan-travel/core/internal/config"
	"github.com/bhutan-travel/core/internal/models"
	"github.com/bhutan-travel/core/internal/modules/catalog"
	"github.com/bhutan-travel/core/internal/pkg/authz"
	"github.com/bhutan-travel/core/internal/pkg/pagination"
	"github.com/bhutan-travel/core/internal/pkg/response"
	sessionpkg "github.com/bhutan-travel/core/internal/pkg/session"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: db, logger: logger.Named("user")}
}

func (s *Service) List(ctx context.Context, q string, page pagination.Query) ([]models.UserModel, response.Pagination, error) {
	db := s.db.WithContext(ctx).Model(&models.UserModel{})
	if q = strings.TrimSpace(q); q != "" {
		like := "%" + q + "%"
		db = db.Where("username LIKE ? OR email LIKE ? OR name LIKE ?", like, like, like)
	}
	var rows []models.UserModel
	pag, err := pagination.Paginate(db.Order("created_at ASC, id ASC"), page, &rows)
	return rows, pag, err
}

func (s *Service) GetByID(ctx context.Context, id string) (*models.UserModel, error) {
	return catalog.FindByID[models.UserModel](ctx, s.db, id)
}

func (s *Service) Create(ctx context.Context, actor authz.Actor, dto *CreateDTO) (*models.UserModel, error) {
	if err := actor.Require(); err != nil {
		return nil, err
	}
	return s.create(ctx, dto)
}

func (s *Service) create(ctx context.Context, dto *CreateDTO) (*models.UserModel, error) {
	username, err := normalizeUsername(dto.Username)
	if err != nil {
		return nil, err
	}
	email, err := normalizeEmail(dto.Email)
	if err != nil {
		return nil, err
	}
	hash, err := hashPassword(dto.Password)
	if err != nil {
		return nil, err
	}
	if err := s.checkUnique(ctx, "", username, email); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(dto.Name)
	if name == "" {
		name = username
	}
	u := models.UserModel{
		Username: username,
		Email:    email,
		Name:     name,
		Role:     models.RoleAdmin,
		Password: hash,
	}
	if err := s.db.WithContext(ctx).Create(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &u, nil
}

// Update edits an account. A password change ends every other session of
// that user; the caller's own session survives when they edit themselves.
func (s *Service) Update(ctx context.Context, actor authz.Actor, id string, dto *UpdateDTO) (*models.UserModel, error) {
	if err := actor.Require(); err != nil {
		return nil, err
	}
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, catalog.ErrNotFound
	}

	var changes catalog.Changes
	if dto.Username != nil {
		username, err := normalizeUsername(*dto.Username)
		if err != nil {
			return nil, err
		}
		u.Username = username
		changes.Mark("username")
	}
	if dto.Email != nil {
		email, err := normalizeEmail(*dto.Email)
		if err != nil {
			return nil, err
		}
		u.Email = email
		changes.Mark("email")
	}
	if dto.Name != nil {
		u.Name = strings.TrimSpace(*dto.Name)
		changes.Mark("name")
	}
	rotated := false
	if dto.Password != nil && *dto.Password != "" {
		hash, err := hashPassword(*dto.Password)
		if err != nil {
			return nil, err
		}
		u.Password = hash
		changes.Mark("password")
		rotated = true
	}
	if changes.Empty() {
		return u, nil
	}
	if changes.Has("username") || changes.Has("email") {
		if err := s.checkUnique(ctx, u.ID, u.Username, u.Email); err != nil {
			return nil, err
		}
	}

	if err := changes.Save(ctx, s.db, u); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	if rotated {
		keep := ""
		if actor.UserID == u.ID {
			keep = actor.SessionID
		}
		if err := sessionpkg.RevokeAll(ctx, s.db, u.ID, keep); err != nil {
			s.logger.Warn("revoke sessions after password change failed", zap.String("user_id", u.ID), zap.Error(err))
		}
	}
	return u, nil
}

// Delete removes an account and closes its sessions. Admins cannot delete
// themselves, so at least one account always remains.
func (s *Service) Delete(ctx context.Context, actor authz.Actor, id string) (bool, error) {
	if err := actor.Require(); err != nil {
		return false, err
	}
	if id == actor.UserID {
		return false, ErrDeleteSelf
	}
	res := s.db.WithContext(ctx).Unscoped().Delete(&models.UserModel{}, "id = ?", id)
	if res.Error != nil {
		return false, fmt.Errorf("delete user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	if err := sessionpkg.RevokeAll(ctx, s.db, id, ""); err != nil {
		s.logger.Warn("revoke sessions of deleted user failed", zap.String("user_id", id), zap.Error(err))
	}
	return true, nil
}

// EnsureBootstrapAdmin creates the configured first account when no user
// exists yet. It reports whether an account was created.
func (s *Service) EnsureBootstrapAdmin(ctx context.Context, cfg config.BootstrapAdminConfig) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.UserModel{}).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	if strings.TrimSpace(cfg.Username) == "" || cfg.Password == "" {
		s.logger.Warn("no users exist and no bootstrap admin is configured")
		return false, nil
	}
	email := cfg.Email
	if strings.TrimSpace(email) == "" {
		email = cfg.Username + "@localhost"
	}
	u, err := s.create(ctx, &CreateDTO{Username: cfg.Username, Email: email, Name: cfg.Name, Password: cfg.Password})
	if err != nil {
		return false, fmt.Errorf("bootstrap admin: %w", err)
	}
	s.logger.Info("bootstrap admin created", zap.String("username", u.Username))
	return true, nil
}

func (s *Service) checkUnique(ctx context.Context, selfID, username, email string) error {
	taken := func(column, value string) (bool, error) {
		var count int64
		q := s.db.WithContext(ctx).Model(&models.UserModel{}).Where(column+" = ?", value)
		if selfID != "" {
			q = q.Where("id <> ?", selfID)
		}
		err := q.Count(&count).Error
		return count > 0, err
	}
	if ok, err := taken("username", username); err != nil {
		return err
	} else if ok {
		return ErrUsernameTaken
	}
	if ok, err := taken("email", email); err != nil {
		return err
	} else if ok {
		return ErrEmailTaken
	}
	return nil
}

func normalizeUsername(raw string) (string, error) {
	username := strings.ToLower(strings.TrimSpace(raw))
	if len(username) < 3 {
		return "", catalog.Invalid("username must be at least 3 characters")
	}
	if strings.ContainsAny(username, " @/") {
		return "", catalog.Invalid("username contains invalid characters")
	}
	return username, nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", catalog.Invalid("email is not valid")
	}
	return email, nil
}

func hashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
