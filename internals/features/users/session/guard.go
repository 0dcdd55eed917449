// Package session menjaga identitas yang sedang login per client dan
// menurunkan affordance UI (form upload, tombol sign in/out) darinya.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"notesku_backend/internals/gateway"
	helper "notesku_backend/internals/helpers"
	"notesku_backend/internals/logger"
)

const minPasswordLen = 6

// Affordances: seluruhnya diturunkan dari currentUser.
type Affordances struct {
	SignedIn       bool   `json:"signed_in"`
	Email          string `json:"email,omitempty"`
	CanUpload      bool   `json:"can_upload"`
	ShowUploadForm bool   `json:"show_upload_form"`
	ShowSignIn     bool   `json:"show_sign_in"`
	ShowSignOut    bool   `json:"show_sign_out"`
}

func affordancesFor(u *gateway.Identity) Affordances {
	if u == nil {
		return Affordances{ShowSignIn: true}
	}
	return Affordances{
		SignedIn:       true,
		Email:          u.Email,
		CanUpload:      true,
		ShowUploadForm: true,
		ShowSignOut:    true,
	}
}

type Guard struct {
	auth gateway.Auth
	log  zerolog.Logger

	mu          sync.RWMutex
	current     *gateway.Identity
	affordances Affordances
	unsubscribe func()

	// OnChange dipanggil setiap affordance diturunkan ulang.
	OnChange func(Affordances)
}

// NewGuard langsung berlangganan event sesi dari auth.
func NewGuard(auth gateway.Auth) *Guard {
	g := &Guard{
		auth:        auth,
		log:         logger.Component("session"),
		affordances: affordancesFor(nil),
	}
	g.unsubscribe = auth.OnSessionChange(g.handleEvent)
	return g
}

func (g *Guard) handleEvent(ev gateway.AuthEvent) {
	var id *gateway.Identity
	if ev.Session != nil {
		u := ev.Session.User
		id = &u
	}
	g.log.Debug().Str("event", string(ev.Kind)).Bool("identity", id != nil).Msg("session changed")
	g.adopt(id)
}

func (g *Guard) adopt(id *gateway.Identity) {
	g.mu.Lock()
	g.current = id
	g.affordances = affordancesFor(id)
	a := g.affordances
	hook := g.OnChange
	g.mu.Unlock()

	if hook != nil {
		hook(a)
	}
}

// SignUp tidak pernah mengisi currentUser: akun harus dikonfirmasi dulu.
func (g *Guard) SignUp(ctx context.Context, email, password, confirm string) (gateway.Identity, error) {
	email = strings.TrimSpace(email)
	switch {
	case email == "" || password == "" || confirm == "":
		return gateway.Identity{}, helper.Validation("", "Please fill in all fields.")
	case confirm != password:
		return gateway.Identity{}, helper.Validation("confirm", "Passwords do not match.")
	case len(password) < minPasswordLen:
		return gateway.Identity{}, helper.Validation("password", "Password must be at least 6 characters.")
	}

	id, err := g.auth.SignUp(ctx, email, password)
	if err != nil {
		return gateway.Identity{}, g.fail("sign up", err)
	}
	return id, nil
}

func (g *Guard) SignIn(ctx context.Context, email, password string) (Affordances, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return g.Affordances(), helper.Validation("", "Please enter email and password.")
	}
	sess, err := g.auth.SignInWithPassword(ctx, email, password)
	if err != nil {
		return g.Affordances(), g.fail("sign in", err)
	}
	u := sess.User
	g.adopt(&u)
	return g.Affordances(), nil
}

func (g *Guard) SignOut(ctx context.Context) (Affordances, error) {
	if err := g.auth.SignOut(ctx); err != nil {
		return g.Affordances(), g.fail("sign out", err)
	}
	g.adopt(nil)
	return g.Affordances(), nil
}

// Restore: ambil sesi yang masih valid dari gateway (passive restore).
func (g *Guard) Restore(ctx context.Context) (Affordances, error) {
	sess, err := g.auth.GetSession(ctx)
	if err != nil {
		return g.Affordances(), g.fail("restore session", err)
	}
	if sess == nil {
		g.adopt(nil)
	} else {
		u := sess.User
		g.adopt(&u)
	}
	return g.Affordances(), nil
}

func (g *Guard) CurrentUser() *gateway.Identity {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.current == nil {
		return nil
	}
	u := *g.current
	return &u
}

func (g *Guard) Affordances() Affordances {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.affordances
}

// Close melepas langganan event.
func (g *Guard) Close() {
	g.mu.Lock()
	unsub := g.unsubscribe
	g.unsubscribe = nil
	g.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

func (g *Guard) fail(op string, err error) error {
	switch {
	case errors.Is(err, gateway.ErrInvalidCredentials):
		return helper.Unauthenticated("Invalid login credentials.")
	case errors.Is(err, gateway.ErrEmailNotConfirmed):
		return helper.Unauthenticated("Please confirm your email before signing in.")
	case errors.Is(err, gateway.ErrConflict):
		return helper.Conflict("An account with this email already exists.", err)
	case errors.Is(err, gateway.ErrInvalidInput):
		msg := strings.TrimPrefix(err.Error(), gateway.ErrInvalidInput.Error()+": ")
		return &helper.Failure{Kind: helper.FailValidation, Message: msg, Err: err}
	}
	g.log.Error().Err(err).Str("op", op).Msg("auth gateway failed")
	return helper.Gateway("Authentication service unavailable, please try again.", err)
}
