package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RefreshTokenModel struct {
	ID     uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`

	// simpan HASH token (bukan plaintext)
	TokenHash []byte `gorm:"column:token_hash;type:bytea;not null;uniqueIndex" json:"-"`

	ExpiresAt time.Time  `gorm:"column:expires_at;not null" json:"expires_at"`
	RevokedAt *time.Time `gorm:"column:revoked_at" json:"revoked_at,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (RefreshTokenModel) TableName() string { return "refresh_tokens" }

func (m *RefreshTokenModel) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// TokenBlacklistModel: access token yang sudah di-logout sebelum exp.
type TokenBlacklistModel struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Token     string    `gorm:"type:text;not null;unique" json:"token"`
	ExpiredAt time.Time `gorm:"column:expired_at;not null;index" json:"expired_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (TokenBlacklistModel) TableName() string { return "token_blacklist" }

// ClientSessionModel: sesi yang dipegang klien auth per browser (client_id dari cookie).
type ClientSessionModel struct {
	ClientID     uuid.UUID `gorm:"column:client_id;type:uuid;primaryKey" json:"client_id"`
	AccessToken  string    `gorm:"column:access_token;type:text;not null" json:"-"`
	RefreshToken string    `gorm:"column:refresh_token;type:text;not null" json:"-"`
	ExpiresAt    time.Time `gorm:"column:expires_at;not null" json:"expires_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime;index" json:"updated_at"`
}

func (ClientSessionModel) TableName() string { return "client_sessions" }

func AllModels() []any {
	return []any{
		&UserModel{},
		&EmailConfirmationModel{},
		&RefreshTokenModel{},
		&TokenBlacklistModel{},
		&ClientSessionModel{},
	}
}
