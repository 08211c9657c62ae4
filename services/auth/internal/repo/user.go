package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/planbookai/platform/services/auth/internal/models"
)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *GormRepo) findOne(ctx context.Context, query string, args ...any) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where(query, args...).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

func (r *GormRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, "username = ?", username)
}

func (r *GormRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, "email = ?", normalizeEmail(email))
}

// FindByUsernameOrEmail resolves a login identifier. A username match wins
// over an email match.
func (r *GormRepo) FindByUsernameOrEmail(ctx context.Context, identifier string) (*models.User, error) {
	user, err := r.FindByUsername(ctx, identifier)
	if err == nil || !errors.Is(err, ErrUserNotFound) {
		return user, err
	}
	return r.FindByEmail(ctx, identifier)
}

// Save inserts a new user. The unique indexes are authoritative; the
// pre-check only gives a cheap answer for the common case.
func (r *GormRepo) Save(ctx context.Context, u *models.User) error {
	u.Email = normalizeEmail(u.Email)
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	db := r.DB.WithContext(ctx)

	var count int64
	if err := db.Model(&models.User{}).
		Where("username = ? OR email = ?", u.Username, u.Email).
		Count(&count).Error; err != nil {
		return fmt.Errorf("check identity: %w", err)
	}
	if count > 0 {
		return ErrDuplicateIdentity
	}

	if err := db.Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateIdentity
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}
