// Package gateway berisi kontrak ke backend (auth, tabel relasional, object
// storage). Service di features/catalog dan features/users/session hanya
// bergantung ke interface di sini; implementasinya ada di repository gorm,
// auth service, dan package storage (OSS / lokal).
package gateway

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("gateway: record not found")
	ErrConflict = errors.New("gateway: duplicate record")

	ErrInvalidInput       = errors.New("gateway: invalid input")
	ErrInvalidCredentials = errors.New("gateway: invalid login credentials")
	ErrEmailNotConfirmed  = errors.New("gateway: email not confirmed")
	ErrInvalidToken       = errors.New("gateway: invalid or expired token")
)

/* =========================================================
   AUTH
   ========================================================= */

type Identity struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
}

type Session struct {
	AccessToken  string    `json:"-"`
	RefreshToken string    `json:"-"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         Identity  `json:"user"`
}

type AuthEventKind string

const (
	EventInitialSession AuthEventKind = "INITIAL_SESSION"
	EventSignedIn       AuthEventKind = "SIGNED_IN"
	EventSignedOut      AuthEventKind = "SIGNED_OUT"
	EventTokenRefreshed AuthEventKind = "TOKEN_REFRESHED"
)

// AuthEvent: Session nil berarti tidak ada identitas aktif.
type AuthEvent struct {
	Kind    AuthEventKind
	Session *Session
}

// Auth adalah klien auth milik satu browser (client), setara supabase.auth.
type Auth interface {
	SignUp(ctx context.Context, email, password string) (Identity, error)
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context) error
	// GetSession mengembalikan (nil, nil) bila tidak ada sesi valid.
	GetSession(ctx context.Context) (*Session, error)
	// OnSessionChange mendaftarkan listener; hasilnya fungsi unsubscribe.
	OnSessionChange(fn func(AuthEvent)) (unsubscribe func())
}

/* =========================================================
   CATALOG (tabel)
   ========================================================= */

type Node struct {
	ID          uuid.UUID `json:"id"`
	Level       Level     `json:"level"`
	ParentID    uuid.UUID `json:"parent_id"` // uuid.Nil untuk branch
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// DocumentPath: hasil join Subject → Section → Semester → Branch.
type DocumentPath struct {
	Subject  Node `json:"subject"`
	Section  Node `json:"section"`
	Semester Node `json:"semester"`
	Branch   Node `json:"branch"`
}

type Document struct {
	ID          uuid.UUID      `json:"id"`
	SubjectID   uuid.UUID      `json:"subject_id"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	FileURL     string         `json:"file_url"`
	FileType    string         `json:"file_type"`
	FileSize    int64          `json:"file_size"`
	UploadedBy  *uuid.UUID     `json:"uploaded_by,omitempty"`
	StorageKey  string         `json:"storage_key,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	Path        *DocumentPath  `json:"path,omitempty"`
}

type DocumentOrder string

const (
	OrderNewest  DocumentOrder = "newest"
	OrderTitleAZ DocumentOrder = "title"
)

type DocumentQuery struct {
	SubjectID    *uuid.UUID
	CreatedSince *time.Time
	OrderBy      DocumentOrder
	Limit        int
	WithPath     bool
}

type Catalog interface {
	// ListChildren: anak dari parentID pada level, urut nama naik. Level branch mengabaikan parentID.
	ListChildren(ctx context.Context, level Level, parentID uuid.UUID) ([]Node, error)
	GetNode(ctx context.Context, level Level, id uuid.UUID) (Node, error)
	InsertNode(ctx context.Context, node Node) (Node, error)
	CountNodes(ctx context.Context, level Level) (int64, error)

	ListDocuments(ctx context.Context, q DocumentQuery) ([]Document, error)
	CountDocuments(ctx context.Context, q DocumentQuery) (int64, error)
	GetDocument(ctx context.Context, id uuid.UUID) (Document, error)
	InsertDocument(ctx context.Context, doc Document) (Document, error)
}

/* =========================================================
   STORAGE
   ========================================================= */

type Storage interface {
	Upload(ctx context.Context, bucket, key string, body io.Reader, size int64, contentType string) error
	PublicURL(bucket, key string) string
}
