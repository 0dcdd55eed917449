package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	authModel "notesku_backend/internals/features/users/auth/model"
	authRepo "notesku_backend/internals/features/users/auth/repository"
	"notesku_backend/internals/gateway"
)

// refreshMargin: refresh otomatis dijalankan sebelum access token habis.
const refreshMargin = 30 * time.Second

// Client: klien auth milik satu browser (client_id). Menyimpan sesi di
// client_sessions, refresh otomatis sebelum expiry, dan push event ke listener.
type Client struct {
	svc      *Service
	clientID uuid.UUID
	log      zerolog.Logger

	// restoreMu: hanya satu restore per client; refresh token sekali pakai.
	restoreMu sync.Mutex

	mu        sync.Mutex
	session   *gateway.Session
	restored  bool
	closed    bool
	timer     *time.Timer
	listeners map[int]func(gateway.AuthEvent)
	nextID    int
}

var _ gateway.Auth = (*Client)(nil)

func (s *Service) NewClient(clientID uuid.UUID) *Client {
	return &Client{
		svc:       s,
		clientID:  clientID,
		log:       s.log.With().Str("client_id", clientID.String()).Logger(),
		listeners: map[int]func(gateway.AuthEvent){},
	}
}

func (c *Client) SignUp(ctx context.Context, email, password string) (gateway.Identity, error) {
	return c.svc.SignUp(ctx, email, password)
}

func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*gateway.Session, error) {
	sess, err := c.svc.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	c.adopt(ctx, sess)
	c.emit(gateway.AuthEvent{Kind: gateway.EventSignedIn, Session: sess})
	return sess, nil
}

func (c *Client) SignOut(ctx context.Context) error {
	c.mu.Lock()
	sess := c.session
	c.mu.Unlock()

	if err := c.svc.SignOut(ctx, sess); err != nil {
		return err
	}
	c.clear(ctx)
	c.emit(gateway.AuthEvent{Kind: gateway.EventSignedOut})
	return nil
}

// GetSession: sesi aktif, atau (nil, nil). Panggilan pertama memulihkan sesi
// dari client_sessions (refresh bila access token sudah lewat).
func (c *Client) GetSession(ctx context.Context) (*gateway.Session, error) {
	c.mu.Lock()
	if c.restored {
		sess := c.session
		c.mu.Unlock()
		return sess, nil
	}
	c.mu.Unlock()

	c.restoreMu.Lock()
	defer c.restoreMu.Unlock()

	// request lain sudah selesai restore selama kita menunggu
	c.mu.Lock()
	if c.restored {
		sess := c.session
		c.mu.Unlock()
		return sess, nil
	}
	c.mu.Unlock()

	sess, err := c.restore(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	first := !c.restored
	c.restored = true
	if sess != nil {
		c.session = sess
		c.scheduleLocked()
	}
	sess = c.session
	c.mu.Unlock()

	if first {
		c.emit(gateway.AuthEvent{Kind: gateway.EventInitialSession, Session: sess})
	}
	return sess, nil
}

func (c *Client) restore(ctx context.Context) (*gateway.Session, error) {
	row, err := authRepo.LoadClientSession(ctx, c.svc.DB, c.clientID)
	if err != nil || row == nil {
		return nil, err
	}

	now := c.svc.Now()
	if now.Before(row.ExpiresAt) {
		if id, err := c.svc.Verify(ctx, row.AccessToken); err == nil {
			return &gateway.Session{
				AccessToken:  row.AccessToken,
				RefreshToken: row.RefreshToken,
				ExpiresAt:    row.ExpiresAt,
				User:         id,
			}, nil
		}
	}

	sess, err := c.svc.Refresh(ctx, row.RefreshToken)
	if err != nil {
		c.log.Info().Err(err).Msg("stored session no longer valid")
		_ = authRepo.DeleteClientSession(ctx, c.svc.DB, c.clientID)
		return nil, nil
	}
	c.persist(ctx, sess)
	return sess, nil
}

func (c *Client) OnSessionChange(fn func(gateway.AuthEvent)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

// Close menghentikan timer refresh dan melepas semua listener.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.listeners = map[int]func(gateway.AuthEvent){}
}

func (c *Client) adopt(ctx context.Context, sess *gateway.Session) {
	c.persist(ctx, sess)
	c.mu.Lock()
	c.session = sess
	c.restored = true
	c.scheduleLocked()
	c.mu.Unlock()
}

func (c *Client) clear(ctx context.Context) {
	if err := authRepo.DeleteClientSession(ctx, c.svc.DB, c.clientID); err != nil {
		c.log.Warn().Err(err).Msg("delete client session")
	}
	c.mu.Lock()
	c.session = nil
	c.restored = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()
}

func (c *Client) persist(ctx context.Context, sess *gateway.Session) {
	err := authRepo.SaveClientSession(ctx, c.svc.DB, &authModel.ClientSessionModel{
		ClientID:     c.clientID,
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		ExpiresAt:    sess.ExpiresAt,
	})
	if err != nil {
		c.log.Warn().Err(err).Msg("persist client session")
	}
}

// scheduleLocked: c.mu harus sudah dipegang.
func (c *Client) scheduleLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.closed || c.session == nil {
		return
	}
	wait := c.session.ExpiresAt.Sub(c.svc.Now()) - refreshMargin
	if wait < 0 {
		wait = 0
	}
	c.timer = time.AfterFunc(wait, c.autoRefresh)
}

func (c *Client) autoRefresh() {
	c.mu.Lock()
	sess := c.session
	closed := c.closed
	c.mu.Unlock()
	if sess == nil || closed {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	next, err := c.svc.Refresh(ctx, sess.RefreshToken)
	if err != nil {
		c.log.Info().Err(err).Msg("auto refresh failed, signing out")
		c.clear(ctx)
		c.emit(gateway.AuthEvent{Kind: gateway.EventSignedOut})
		return
	}
	c.adopt(ctx, next)
	c.emit(gateway.AuthEvent{Kind: gateway.EventTokenRefreshed, Session: next})
}

// RefreshNow menjalankan refresh di luar jadwal timer.
func (c *Client) RefreshNow() { c.autoRefresh() }

// emit memanggil listener di luar lock.
func (c *Client) emit(ev gateway.AuthEvent) {
	c.mu.Lock()
	fns := make([]func(gateway.AuthEvent), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
