// internals/features/users/auth/repository/auth_repository.go
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	authModel "notesku_backend/internals/features/users/auth/model"
)

/* ====================== USER ====================== */

func FindUserByEmail(ctx context.Context, db *gorm.DB, email string) (*authModel.UserModel, error) {
	var user authModel.UserModel
	if err := db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func FindUserByID(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*authModel.UserModel, error) {
	var user authModel.UserModel
	if err := db.WithContext(ctx).Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func IsEmailTaken(ctx context.Context, db *gorm.DB, email string) (bool, error) {
	var n int64
	if err := db.WithContext(ctx).Model(&authModel.UserModel{}).Where("email = ?", email).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func CreateUser(ctx context.Context, db *gorm.DB, user *authModel.UserModel) error {
	return db.WithContext(ctx).Create(user).Error
}

func ConfirmUser(ctx context.Context, db *gorm.DB, userID uuid.UUID, at time.Time) error {
	return db.WithContext(ctx).Model(&authModel.UserModel{}).
		Where("id = ? AND email_confirmed_at IS NULL", userID).
		Update("email_confirmed_at", at).Error
}

/* ====================== EMAIL CONFIRMATION ====================== */

func CreateEmailConfirmation(ctx context.Context, db *gorm.DB, ec *authModel.EmailConfirmationModel) error {
	return db.WithContext(ctx).Create(ec).Error
}

// UseEmailConfirmation menandai token terpakai; gagal bila sudah dipakai / expired.
func UseEmailConfirmation(ctx context.Context, db *gorm.DB, hash []byte, now time.Time) (*authModel.EmailConfirmationModel, error) {
	var ec authModel.EmailConfirmationModel
	if err := db.WithContext(ctx).
		Where("token_hash = ? AND used_at IS NULL AND expires_at > ?", hash, now).
		First(&ec).Error; err != nil {
		return nil, err
	}
	res := db.WithContext(ctx).Model(&authModel.EmailConfirmationModel{}).
		Where("id = ? AND used_at IS NULL", ec.ID).
		Update("used_at", now)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &ec, nil
}

/* ====================== REFRESH TOKEN ====================== */

func CreateRefreshToken(ctx context.Context, db *gorm.DB, token *authModel.RefreshTokenModel) error {
	return db.WithContext(ctx).Create(token).Error
}

// Cari refresh token yang aktif (belum di-revoke, belum expired)
func FindRefreshTokenByHashActive(ctx context.Context, db *gorm.DB, hash []byte, now time.Time) (*authModel.RefreshTokenModel, error) {
	var rt authModel.RefreshTokenModel
	if err := db.WithContext(ctx).
		Where("token_hash = ? AND revoked_at IS NULL AND expires_at > ?", hash, now).
		Limit(1).
		Find(&rt).Error; err != nil {
		return nil, err
	}
	if rt.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &rt, nil
}

// Revoke by ID
func RevokeRefreshTokenByID(ctx context.Context, db *gorm.DB, id uuid.UUID, now time.Time) error {
	res := db.WithContext(ctx).Model(&authModel.RefreshTokenModel{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Update("revoked_at", now)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func RevokeRefreshTokenByHash(ctx context.Context, db *gorm.DB, hash []byte, now time.Time) error {
	return db.WithContext(ctx).Model(&authModel.RefreshTokenModel{}).
		Where("token_hash = ? AND revoked_at IS NULL", hash).
		Update("revoked_at", now).Error
}

/* ====================== BLACKLIST TOKEN ====================== */

func BlacklistToken(ctx context.Context, db *gorm.DB, token string, until time.Time) error {
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&authModel.TokenBlacklistModel{Token: token, ExpiredAt: until}).Error
}

func IsTokenBlacklisted(ctx context.Context, db *gorm.DB, token string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).Model(&authModel.TokenBlacklistModel{}).Where("token = ?", token).Count(&n).Error
	return n > 0, err
}

// CleanupExpiredBlacklist: hapus entri yang expired_at-nya sebelum `before`.
func CleanupExpiredBlacklist(ctx context.Context, db *gorm.DB, before time.Time) (int64, error) {
	res := db.WithContext(ctx).Where("expired_at < ?", before).Delete(&authModel.TokenBlacklistModel{})
	return res.RowsAffected, res.Error
}

func CleanupRefreshTokens(ctx context.Context, db *gorm.DB, before time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Where("expires_at < ? OR (revoked_at IS NOT NULL AND revoked_at < ?)", before, before).
		Delete(&authModel.RefreshTokenModel{})
	return res.RowsAffected, res.Error
}

/* ====================== CLIENT SESSION ====================== */

func SaveClientSession(ctx context.Context, db *gorm.DB, s *authModel.ClientSessionModel) error {
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "client_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"access_token", "refresh_token", "expires_at", "updated_at"}),
		}).
		Create(s).Error
}

// LoadClientSession: (nil, nil) bila tidak ada.
func LoadClientSession(ctx context.Context, db *gorm.DB, clientID uuid.UUID) (*authModel.ClientSessionModel, error) {
	var s authModel.ClientSessionModel
	err := db.WithContext(ctx).Where("client_id = ?", clientID).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func DeleteClientSession(ctx context.Context, db *gorm.DB, clientID uuid.UUID) error {
	return db.WithContext(ctx).Where("client_id = ?", clientID).Delete(&authModel.ClientSessionModel{}).Error
}

func CleanupClientSessions(ctx context.Context, db *gorm.DB, idleBefore time.Time) (int64, error) {
	res := db.WithContext(ctx).Where("updated_at < ?", idleBefore).Delete(&authModel.ClientSessionModel{})
	return res.RowsAffected, res.Error
}
