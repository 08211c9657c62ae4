package revocation

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RevokedToken struct {
	ID        uint      `gorm:"primaryKey"                            json:"id"`
	TokenHash string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"token_hash"`
	ExpiresAt time.Time `gorm:"index;not null"                        json:"expires_at"`
	CreatedAt time.Time `                                             json:"created_at"`
}

func (RevokedToken) TableName() string {
	return "revoked_tokens"
}

type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) Migrate() error {
	return s.DB.AutoMigrate(&RevokedToken{})
}

func (s *GormStore) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) (bool, error) {
	row := RevokedToken{
		TokenHash: Fingerprint(tokenID),
		ExpiresAt: expiresAt.UTC(),
	}
	res := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "token_hash"}}, DoNothing: true}).
		Create(&row)
	if res.Error != nil {
		return false, fmt.Errorf("revoke token: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *GormStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&RevokedToken{}).
		Where("token_hash = ?", Fingerprint(tokenID)).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("lookup revoked token: %w", err)
	}
	return count > 0, nil
}

func (s *GormStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res := s.DB.WithContext(ctx).
		Where("expires_at <= ?", now.UTC()).
		Delete(&RevokedToken{})
	if res.Error != nil {
		return 0, fmt.Errorf("purge revoked tokens: %w", res.Error)
	}
	return res.RowsAffected, nil
}
