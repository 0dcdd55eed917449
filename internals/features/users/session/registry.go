package session

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"notesku_backend/internals/features/catalog/navigator"
	"notesku_backend/internals/gateway"
	"notesku_backend/internals/logger"
	"notesku_backend/internals/metrics"
)

const (
	CookieName = "notes_client"
	localsKey  = "notes_client"

	DefaultMaxClients = 10000
	cookieMaxAge      = 30 * 24 * time.Hour
)

// Client: state milik satu browser.
type Client struct {
	ID      uuid.UUID
	Guard   *Guard
	Browser *navigator.Browser
	Auth    gateway.Auth

	lastSeen time.Time
	unsub    func()
}

// AuthFactory membuat klien auth untuk client_id tertentu.
type AuthFactory func(clientID uuid.UUID) gateway.Auth

type Registry struct {
	newAuth AuthFactory
	nav     *navigator.Navigator
	idleTTL time.Duration
	log     zerolog.Logger

	Metrics *metrics.Metrics
	Now     func() time.Time
	// MaxClients: lewat batas ini client paling lama tidak aktif dibuang.
	MaxClients int

	secret []byte

	mu      sync.Mutex
	clients map[uuid.UUID]*Client
}

func NewRegistry(newAuth AuthFactory, nav *navigator.Navigator, idleTTL time.Duration) *Registry {
	if idleTTL <= 0 {
		idleTTL = 30 * time.Minute
	}
	secret := make([]byte, 32)
	_, _ = rand.Read(secret)
	return &Registry{
		newAuth:    newAuth,
		nav:        nav,
		idleTTL:    idleTTL,
		log:        logger.Component("registry"),
		Now:        time.Now,
		MaxClients: DefaultMaxClients,
		secret:     secret,
		clients:    map[uuid.UUID]*Client{},
	}
}

// SetCookieSecret mengganti kunci tanda tangan cookie. Tanpa ini kunci acak
// per proses, jadi cookie lama tidak berlaku lagi setelah restart.
func (r *Registry) SetCookieSecret(secret string) {
	if secret == "" {
		return
	}
	sum := sha256.Sum256([]byte(secret))
	r.secret = sum[:]
}

func (r *Registry) sign(id uuid.UUID) string {
	m := hmac.New(sha256.New, r.secret)
	m.Write([]byte(id.String()))
	return id.String() + "." + base64.RawURLEncoding.EncodeToString(m.Sum(nil))
}

// verify: hanya id yang pernah ditandatangani server yang diterima.
func (r *Registry) verify(value string) (uuid.UUID, bool) {
	raw, sig, ok := strings.Cut(value, ".")
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	want, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil {
		return uuid.Nil, false
	}
	m := hmac.New(sha256.New, r.secret)
	m.Write([]byte(raw))
	if !hmac.Equal(m.Sum(nil), want) {
		return uuid.Nil, false
	}
	return id, true
}

// Get mengembalikan client untuk id, membuat baru bila belum ada.
func (r *Registry) Get(id uuid.UUID) *Client {
	r.mu.Lock()
	c, ok := r.clients[id]
	if ok {
		c.lastSeen = r.Now()
		r.mu.Unlock()
		return c
	}
	var dropped *Client
	if r.MaxClients > 0 && len(r.clients) >= r.MaxClients {
		dropped = r.oldestLocked()
		delete(r.clients, dropped.ID)
	}

	auth := r.newAuth(id)
	c = &Client{
		ID:       id,
		Guard:    NewGuard(auth),
		Browser:  navigator.NewBrowser(r.nav),
		Auth:     auth,
		lastSeen: r.Now(),
	}
	m := r.Metrics
	c.unsub = auth.OnSessionChange(func(ev gateway.AuthEvent) {
		m.AuthEvent(string(ev.Kind))
	})
	r.clients[id] = c
	n := len(r.clients)
	r.mu.Unlock()

	if dropped != nil {
		dropped.close()
		r.log.Warn().Int("max", r.MaxClients).Str("client_id", dropped.ID.String()).Msg("client limit reached, oldest dropped")
	}
	r.Metrics.SetClients(n)
	r.log.Debug().Str("client_id", id.String()).Msg("client created")
	return c
}

func (r *Registry) oldestLocked() *Client {
	var oldest *Client
	for _, c := range r.clients {
		if oldest == nil || c.lastSeen.Before(oldest.lastSeen) {
			oldest = c
		}
	}
	return oldest
}

// Spawn membuat client dengan id baru yang belum dipakai cookie manapun.
func (r *Registry) Spawn() *Client {
	return r.Get(uuid.New())
}

// Discard membuang client dari registry lalu menutupnya.
func (r *Registry) Discard(cl *Client) {
	if cl == nil {
		return
	}
	r.mu.Lock()
	cur, ok := r.clients[cl.ID]
	owned := ok && cur == cl
	if owned {
		delete(r.clients, cl.ID)
	}
	n := len(r.clients)
	r.mu.Unlock()
	// sudah dibuang janitor / batas MaxClients
	if !owned {
		return
	}
	cl.close()
	r.Metrics.SetClients(n)
}

// Swap memindahkan request ke client next (id baru, cookie baru) dan membuang
// client lama. View navigasi ikut pindah.
func (r *Registry) Swap(c *fiber.Ctx, old, next *Client) {
	if old != nil && old != next {
		next.Browser = old.Browser
		r.Discard(old)
	}
	r.setCookie(c, next.ID)
	c.Locals(localsKey, next)
}

func (r *Registry) setCookie(c *fiber.Ctx, id uuid.UUID) {
	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    r.sign(id),
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		MaxAge:   int(cookieMaxAge.Seconds()),
	})
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// Evict menutup client yang idle lebih lama dari idleTTL.
func (r *Registry) Evict() int {
	cutoff := r.Now().Add(-r.idleTTL)

	r.mu.Lock()
	var idle []*Client
	for id, c := range r.clients {
		if c.lastSeen.Before(cutoff) {
			idle = append(idle, c)
			delete(r.clients, id)
		}
	}
	n := len(r.clients)
	r.mu.Unlock()

	for _, c := range idle {
		c.close()
	}
	if len(idle) > 0 {
		r.Metrics.SetClients(n)
		r.log.Info().Int("evicted", len(idle)).Int("remaining", n).Msg("idle clients evicted")
	}
	return len(idle)
}

// StartJanitor menjalankan Evict tiap interval sampai ctx selesai.
func (r *Registry) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.Evict()
			}
		}
	}()
}

// Close menutup semua client (shutdown).
func (r *Registry) Close() {
	r.mu.Lock()
	all := make([]*Client, 0, len(r.clients))
	for id, c := range r.clients {
		all = append(all, c)
		delete(r.clients, id)
	}
	r.mu.Unlock()
	for _, c := range all {
		c.close()
	}
	r.Metrics.SetClients(0)
}

func (c *Client) close() {
	if c.unsub != nil {
		c.unsub()
	}
	c.Guard.Close()
	if closer, ok := c.Auth.(interface{ Close() }); ok {
		closer.Close()
	}
}

// Middleware membaca cookie notes_client yang ditandatangani server. Cookie
// kosong, palsu, atau salah tanda tangan diganti id baru. *Client ditaruh di
// Locals dan Guard.Restore jalan di tiap request.
func (r *Registry) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := r.verify(c.Cookies(CookieName))
		if !ok {
			id = uuid.New()
			r.setCookie(c, id)
		}

		cl := r.Get(id)
		if _, err := cl.Guard.Restore(c.UserContext()); err != nil {
			r.log.Warn().Err(err).Str("client_id", id.String()).Msg("restore session")
		}
		c.Locals(localsKey, cl)
		return c.Next()
	}
}

// FromCtx: client yang dipasang Middleware, nil bila tidak ada.
func FromCtx(c *fiber.Ctx) *Client {
	cl, _ := c.Locals(localsKey).(*Client)
	return cl
}
