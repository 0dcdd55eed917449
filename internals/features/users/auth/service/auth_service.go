package service

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	authModel "notesku_backend/internals/features/users/auth/model"
	authRepo "notesku_backend/internals/features/users/auth/repository"
	"notesku_backend/internals/gateway"
	helper "notesku_backend/internals/helpers"
	"notesku_backend/internals/logger"
)

/* ==========================
   Const & Types
========================== */

const (
	accessTTLDefault  = time.Hour
	refreshTTLDefault = 7 * 24 * time.Hour
	confirmTTL        = 48 * time.Hour

	MinPasswordLen = 6
)

type Config struct {
	JWTSecret     string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	AutoConfirm   bool
	PublicBaseURL string
}

// Service: backend auth (akun, token, konfirmasi email) di atas gorm.
type Service struct {
	DB  *gorm.DB
	cfg Config
	Now func() time.Time
	log zerolog.Logger

	// BcryptCost bisa diturunkan di test.
	BcryptCost int
}

func NewService(db *gorm.DB, cfg Config) (*Service, error) {
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return nil, errors.New("JWT_SECRET belum diset")
	}
	if strings.TrimSpace(cfg.RefreshSecret) == "" {
		return nil, errors.New("JWT_REFRESH_SECRET belum diset")
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = accessTTLDefault
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = refreshTTLDefault
	}
	return &Service{
		DB:         db,
		cfg:        cfg,
		Now:        func() time.Time { return time.Now().UTC() },
		log:        logger.Component("auth"),
		BcryptCost: bcrypt.DefaultCost,
	}, nil
}

/* ==========================
   Small Helpers
========================== */

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func computeRefreshHash(token, secret string) []byte {
	m := hmac.New(sha256.New, []byte(secret))
	_, _ = m.Write([]byte(token))
	return m.Sum(nil)
}

func computeConfirmHash(token string) []byte {
	sum := sha256.Sum256([]byte(token))
	return sum[:]
}

func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func identityOf(u *authModel.UserModel) gateway.Identity {
	return gateway.Identity{ID: u.ID, Email: u.Email, ConfirmedAt: u.EmailConfirmedAt}
}

/* ==========================
   SIGN UP / CONFIRM
========================== */

// SignUp membuat akun baru. Tanpa AUTH_AUTOCONFIRM akun harus dikonfirmasi
// lewat link yang dicatat di log sebelum bisa login.
func (s *Service) SignUp(ctx context.Context, email, password string) (gateway.Identity, error) {
	email = normalizeEmail(email)
	if err := helper.ValidateVar(email, "required,email"); err != nil {
		return gateway.Identity{}, fmt.Errorf("%w: invalid email address", gateway.ErrInvalidInput)
	}
	if len(password) < MinPasswordLen {
		return gateway.Identity{}, fmt.Errorf("%w: password must be at least %d characters", gateway.ErrInvalidInput, MinPasswordLen)
	}

	taken, err := authRepo.IsEmailTaken(ctx, s.DB, email)
	if err != nil {
		return gateway.Identity{}, err
	}
	if taken {
		return gateway.Identity{}, gateway.ErrConflict
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.BcryptCost)
	if err != nil {
		return gateway.Identity{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.Now()
	user := authModel.UserModel{Email: email, PasswordHash: string(hash)}
	if s.cfg.AutoConfirm {
		user.EmailConfirmedAt = &now
	}
	if err := authRepo.CreateUser(ctx, s.DB, &user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return gateway.Identity{}, gateway.ErrConflict
		}
		return gateway.Identity{}, err
	}

	if !s.cfg.AutoConfirm {
		token, err := s.issueConfirmation(ctx, user.ID)
		if err != nil {
			return gateway.Identity{}, err
		}
		s.log.Info().
			Str("email", email).
			Str("link", s.cfg.PublicBaseURL+"/api/auth/confirm?token="+token).
			Msg("confirmation link issued")
	}
	return identityOf(&user), nil
}

func (s *Service) issueConfirmation(ctx context.Context, userID uuid.UUID) (string, error) {
	token, err := randomToken(32)
	if err != nil {
		return "", err
	}
	ec := authModel.EmailConfirmationModel{
		UserID:    userID,
		TokenHash: computeConfirmHash(token),
		ExpiresAt: s.Now().Add(confirmTTL),
	}
	if err := authRepo.CreateEmailConfirmation(ctx, s.DB, &ec); err != nil {
		return "", err
	}
	return token, nil
}

// IssueConfirmationToken: token konfirmasi baru untuk email yang belum dikonfirmasi.
func (s *Service) IssueConfirmationToken(ctx context.Context, email string) (string, error) {
	user, err := authRepo.FindUserByEmail(ctx, s.DB, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", gateway.ErrNotFound
		}
		return "", err
	}
	if user.EmailConfirmedAt != nil {
		return "", gateway.ErrConflict
	}
	return s.issueConfirmation(ctx, user.ID)
}

func (s *Service) Confirm(ctx context.Context, token string) (gateway.Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return gateway.Identity{}, gateway.ErrInvalidToken
	}
	now := s.Now()
	ec, err := authRepo.UseEmailConfirmation(ctx, s.DB, computeConfirmHash(token), now)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return gateway.Identity{}, gateway.ErrInvalidToken
		}
		return gateway.Identity{}, err
	}
	if err := authRepo.ConfirmUser(ctx, s.DB, ec.UserID, now); err != nil {
		return gateway.Identity{}, err
	}
	user, err := authRepo.FindUserByID(ctx, s.DB, ec.UserID)
	if err != nil {
		return gateway.Identity{}, err
	}
	s.log.Info().Str("user_id", user.ID.String()).Msg("email confirmed")
	return identityOf(user), nil
}

/* ==========================
   SIGN IN / REFRESH / SIGN OUT
========================== */

func (s *Service) SignIn(ctx context.Context, email, password string) (*gateway.Session, error) {
	user, err := authRepo.FindUserByEmail(ctx, s.DB, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gateway.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, gateway.ErrInvalidCredentials
	}
	if user.EmailConfirmedAt == nil {
		return nil, gateway.ErrEmailNotConfirmed
	}
	return s.issueTokens(ctx, user)
}

// Refresh: rotasi refresh token (yang lama di-revoke).
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*gateway.Session, error) {
	claims, err := s.parse(refreshToken, s.cfg.RefreshSecret, "refresh")
	if err != nil {
		return nil, err
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, gateway.ErrInvalidToken
	}

	now := s.Now()
	rt, err := authRepo.FindRefreshTokenByHashActive(ctx, s.DB, computeRefreshHash(refreshToken, s.cfg.RefreshSecret), now)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gateway.ErrInvalidToken
		}
		return nil, err
	}
	if rt.UserID != userID {
		return nil, gateway.ErrInvalidToken
	}
	if err := authRepo.RevokeRefreshTokenByID(ctx, s.DB, rt.ID, now); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// dipakai bersamaan oleh request lain
			return nil, gateway.ErrInvalidToken
		}
		return nil, err
	}

	user, err := authRepo.FindUserByID(ctx, s.DB, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gateway.ErrInvalidToken
		}
		return nil, err
	}
	return s.issueTokens(ctx, user)
}

// SignOut: blacklist access token sampai exp-nya, revoke refresh token.
func (s *Service) SignOut(ctx context.Context, sess *gateway.Session) error {
	if sess == nil {
		return nil
	}
	now := s.Now()
	if sess.AccessToken != "" {
		until := sess.ExpiresAt
		if until.Before(now) {
			until = now.Add(time.Minute)
		}
		if err := authRepo.BlacklistToken(ctx, s.DB, sess.AccessToken, until); err != nil {
			s.log.Warn().Err(err).Msg("blacklist access token")
		}
	}
	if sess.RefreshToken != "" {
		hash := computeRefreshHash(sess.RefreshToken, s.cfg.RefreshSecret)
		if err := authRepo.RevokeRefreshTokenByHash(ctx, s.DB, hash, now); err != nil {
			return err
		}
	}
	return nil
}

// Verify: validasi access token dan kembalikan identitasnya.
func (s *Service) Verify(ctx context.Context, accessToken string) (gateway.Identity, error) {
	claims, err := s.parse(accessToken, s.cfg.JWTSecret, "access")
	if err != nil {
		return gateway.Identity{}, err
	}
	blocked, err := authRepo.IsTokenBlacklisted(ctx, s.DB, accessToken)
	if err != nil {
		return gateway.Identity{}, err
	}
	if blocked {
		return gateway.Identity{}, gateway.ErrInvalidToken
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return gateway.Identity{}, gateway.ErrInvalidToken
	}
	user, err := authRepo.FindUserByID(ctx, s.DB, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return gateway.Identity{}, gateway.ErrInvalidToken
		}
		return gateway.Identity{}, err
	}
	return identityOf(user), nil
}

/* ==========================
   JWT
========================== */

type tokenClaims struct {
	Type  string `json:"typ"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

func (s *Service) parse(raw, secret, typ string) (*tokenClaims, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, gateway.ErrInvalidToken
	}
	claims := &tokenClaims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	tok, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid || claims.Type != typ {
		return nil, gateway.ErrInvalidToken
	}
	// exp dicek terhadap jam service (bisa di-mock di test)
	if claims.ExpiresAt == nil || !s.Now().Before(claims.ExpiresAt.Time) {
		return nil, gateway.ErrInvalidToken
	}
	return claims, nil
}

func (s *Service) sign(claims tokenClaims, secret string) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func (s *Service) issueTokens(ctx context.Context, user *authModel.UserModel) (*gateway.Session, error) {
	now := s.Now()
	accessExp := now.Add(s.cfg.AccessTTL)
	refreshExp := now.Add(s.cfg.RefreshTTL)

	access, err := s.sign(tokenClaims{
		Type:  "access",
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(accessExp),
		},
	}, s.cfg.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := s.sign(tokenClaims{
		Type: "refresh",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(refreshExp),
		},
	}, s.cfg.RefreshSecret)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	if err := authRepo.CreateRefreshToken(ctx, s.DB, &authModel.RefreshTokenModel{
		UserID:    user.ID,
		TokenHash: computeRefreshHash(refresh, s.cfg.RefreshSecret),
		ExpiresAt: refreshExp,
	}); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &gateway.Session{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    accessExp,
		User:         identityOf(user),
	}, nil
}
