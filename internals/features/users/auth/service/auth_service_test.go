package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	authModel "notesku_backend/internals/features/users/auth/model"
	authRepo "notesku_backend/internals/features/users/auth/repository"
	"notesku_backend/internals/gateway"
)

func newTestService(t *testing.T, autoConfirm bool) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(authModel.AllModels()...))

	svc, err := NewService(db, Config{
		JWTSecret:     "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     time.Hour,
		RefreshTTL:    24 * time.Hour,
		AutoConfirm:   autoConfirm,
		PublicBaseURL: "http://localhost:3000",
	})
	require.NoError(t, err)
	svc.BcryptCost = bcrypt.MinCost
	return svc
}

func TestNewServiceRequiresSecrets(t *testing.T) {
	_, err := NewService(nil, Config{RefreshSecret: "x"})
	assert.Error(t, err)
	_, err = NewService(nil, Config{JWTSecret: "x"})
	assert.Error(t, err)
}

func TestSignUpRequiresConfirmation(t *testing.T) {
	svc := newTestService(t, false)
	ctx := context.Background()

	id, err := svc.SignUp(ctx, " Student@Uni.edu ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "student@uni.edu", id.Email)
	assert.Nil(t, id.ConfirmedAt)

	_, err = svc.SignIn(ctx, "student@uni.edu", "secret1")
	assert.ErrorIs(t, err, gateway.ErrEmailNotConfirmed)

	token, err := svc.IssueConfirmationToken(ctx, "student@uni.edu")
	require.NoError(t, err)
	confirmed, err := svc.Confirm(ctx, token)
	require.NoError(t, err)
	assert.NotNil(t, confirmed.ConfirmedAt)

	// token sekali pakai
	_, err = svc.Confirm(ctx, token)
	assert.ErrorIs(t, err, gateway.ErrInvalidToken)

	sess, err := svc.SignIn(ctx, "STUDENT@uni.edu", "secret1")
	require.NoError(t, err)
	assert.Equal(t, id.ID, sess.User.ID)
	assert.NotEmpty(t, sess.AccessToken)
	assert.NotEmpty(t, sess.RefreshToken)
}

func TestSignUpValidationAndConflict(t *testing.T) {
	svc := newTestService(t, true)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "not-an-email", "secret1")
	assert.ErrorIs(t, err, gateway.ErrInvalidInput)

	_, err = svc.SignUp(ctx, "a@b.co", "abc")
	assert.ErrorIs(t, err, gateway.ErrInvalidInput)

	_, err = svc.SignUp(ctx, "a@b.co", "secret1")
	require.NoError(t, err)
	_, err = svc.SignUp(ctx, "A@B.co", "secret2")
	assert.ErrorIs(t, err, gateway.ErrConflict)
}

func TestSignInWrongPassword(t *testing.T) {
	svc := newTestService(t, true)
	ctx := context.Background()
	_, err := svc.SignUp(ctx, "a@b.co", "secret1")
	require.NoError(t, err)

	_, err = svc.SignIn(ctx, "a@b.co", "secret2")
	assert.ErrorIs(t, err, gateway.ErrInvalidCredentials)
	_, err = svc.SignIn(ctx, "nobody@b.co", "secret1")
	assert.ErrorIs(t, err, gateway.ErrInvalidCredentials)
}

func TestRefreshRotatesAndSignOutRevokes(t *testing.T) {
	svc := newTestService(t, true)
	ctx := context.Background()
	_, err := svc.SignUp(ctx, "a@b.co", "secret1")
	require.NoError(t, err)
	sess, err := svc.SignIn(ctx, "a@b.co", "secret1")
	require.NoError(t, err)

	id, err := svc.Verify(ctx, sess.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, id.ID)

	// refresh token tidak diterima sebagai access token
	_, err = svc.Verify(ctx, sess.RefreshToken)
	assert.ErrorIs(t, err, gateway.ErrInvalidToken)

	next, err := svc.Refresh(ctx, sess.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, sess.RefreshToken, next.RefreshToken)

	_, err = svc.Refresh(ctx, sess.RefreshToken)
	assert.ErrorIs(t, err, gateway.ErrInvalidToken)

	require.NoError(t, svc.SignOut(ctx, next))
	_, err = svc.Verify(ctx, next.AccessToken)
	assert.ErrorIs(t, err, gateway.ErrInvalidToken)
	_, err = svc.Refresh(ctx, next.RefreshToken)
	assert.ErrorIs(t, err, gateway.ErrInvalidToken)
}

type eventLog struct {
	mu     sync.Mutex
	events []gateway.AuthEvent
}

func (l *eventLog) add(ev gateway.AuthEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
}

func (l *eventLog) kinds() []gateway.AuthEventKind {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]gateway.AuthEventKind, 0, len(l.events))
	for _, ev := range l.events {
		out = append(out, ev.Kind)
	}
	return out
}

func TestClientLifecycle(t *testing.T) {
	svc := newTestService(t, true)
	ctx := context.Background()
	_, err := svc.SignUp(ctx, "a@b.co", "secret1")
	require.NoError(t, err)

	clientID := uuid.New()
	c := svc.NewClient(clientID)
	defer c.Close()
	var log eventLog
	unsubscribe := c.OnSessionChange(log.add)

	sess, err := c.GetSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, sess)

	_, err = c.SignInWithPassword(ctx, "a@b.co", "secret1")
	require.NoError(t, err)

	// browser yang sama (client_id sama) memulihkan sesi dari client_sessions
	restored := svc.NewClient(clientID)
	defer restored.Close()
	var log2 eventLog
	restored.OnSessionChange(log2.add)
	got, err := restored.GetSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "a@b.co", got.User.Email)
	assert.Equal(t, []gateway.AuthEventKind{gateway.EventInitialSession}, log2.kinds())

	c.RefreshNow()
	current, err := c.GetSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, current)

	require.NoError(t, c.SignOut(ctx))
	after, err := c.GetSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, after)

	assert.Equal(t, []gateway.AuthEventKind{
		gateway.EventInitialSession,
		gateway.EventSignedIn,
		gateway.EventTokenRefreshed,
		gateway.EventSignedOut,
	}, log.kinds())

	unsubscribe()
	_, err = c.SignInWithPassword(ctx, "a@b.co", "secret1")
	require.NoError(t, err)
	assert.Len(t, log.kinds(), 4)
}

func TestClientRefreshFailureSignsOut(t *testing.T) {
	svc := newTestService(t, true)
	ctx := context.Background()
	_, err := svc.SignUp(ctx, "a@b.co", "secret1")
	require.NoError(t, err)

	c := svc.NewClient(uuid.New())
	defer c.Close()
	sess, err := c.SignInWithPassword(ctx, "a@b.co", "secret1")
	require.NoError(t, err)

	// refresh token dicabut di tempat lain
	require.NoError(t, svc.SignOut(ctx, sess))

	var log eventLog
	c.OnSessionChange(log.add)
	c.RefreshNow()

	require.Equal(t, []gateway.AuthEventKind{gateway.EventSignedOut}, log.kinds())
	assert.Nil(t, log.events[0].Session)
	got, err := c.GetSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestConcurrentRestoreRefreshesOnce(t *testing.T) {
	svc := newTestService(t, true)
	ctx := context.Background()
	_, err := svc.SignUp(ctx, "a@b.co", "secret1")
	require.NoError(t, err)

	clientID := uuid.New()
	first := svc.NewClient(clientID)
	_, err = first.SignInWithPassword(ctx, "a@b.co", "secret1")
	require.NoError(t, err)
	first.Close()

	// restart setelah access token habis; refresh token masih berlaku
	later := time.Now().Add(2 * time.Hour)
	svc.Now = func() time.Time { return later }

	restored := svc.NewClient(clientID)
	defer restored.Close()

	const n = 8
	sessions := make([]*gateway.Session, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sess, err := restored.GetSession(ctx)
			assert.NoError(t, err)
			sessions[i] = sess
		}(i)
	}
	wg.Wait()

	for _, sess := range sessions {
		require.NotNil(t, sess)
		assert.Equal(t, sessions[0].AccessToken, sess.AccessToken)
	}

	row, err := authRepo.LoadClientSession(ctx, svc.DB, clientID)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, sessions[0].RefreshToken, row.RefreshToken)
}
