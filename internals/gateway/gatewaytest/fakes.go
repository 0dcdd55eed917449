// Package gatewaytest menyediakan implementasi in-memory gateway.* untuk test
// service.
package gatewaytest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"notesku_backend/internals/gateway"
)

/* =========================================================
   CATALOG
   ========================================================= */

type Catalog struct {
	mu    sync.Mutex
	Nodes []gateway.Node
	Docs  []gateway.Document

	// Err dipakai sebagai hasil semua operasi bila diisi.
	Err error

	Inserts     int
	DocInserts  int
	ListCalls   int
	lastCreated time.Time
}

var _ gateway.Catalog = (*Catalog)(nil)

func NewCatalog() *Catalog { return &Catalog{} }

// AddNode menambah node langsung (tanpa menghitung sebagai insert).
func (c *Catalog) AddNode(level gateway.Level, parentID uuid.UUID, name string) gateway.Node {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := gateway.Node{ID: uuid.New(), Level: level, ParentID: parentID, Name: name, CreatedAt: c.tick()}
	c.Nodes = append(c.Nodes, n)
	return n
}

// AddDocument menambah document; CreatedAt kosong diisi waktu monoton.
func (c *Catalog) AddDocument(d gateway.Document) gateway.Document {
	c.mu.Lock()
	defer c.mu.Unlock()
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = c.tick()
	}
	c.Docs = append(c.Docs, d)
	return d
}

func (c *Catalog) tick() time.Time {
	now := time.Now()
	if !now.After(c.lastCreated) {
		now = c.lastCreated.Add(time.Millisecond)
	}
	c.lastCreated = now
	return now
}

func (c *Catalog) ListChildren(_ context.Context, level gateway.Level, parentID uuid.UUID) ([]gateway.Node, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ListCalls++
	if c.Err != nil {
		return nil, c.Err
	}
	var out []gateway.Node
	for _, n := range c.Nodes {
		if n.Level != level {
			continue
		}
		if !level.IsRoot() && n.ParentID != parentID {
			continue
		}
		out = append(out, n)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (c *Catalog) GetNode(_ context.Context, level gateway.Level, id uuid.UUID) (gateway.Node, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return gateway.Node{}, c.Err
	}
	for _, n := range c.Nodes {
		if n.Level == level && n.ID == id {
			return n, nil
		}
	}
	return gateway.Node{}, gateway.ErrNotFound
}

func (c *Catalog) InsertNode(_ context.Context, node gateway.Node) (gateway.Node, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return gateway.Node{}, c.Err
	}
	if !node.Level.IsNode() {
		return gateway.Node{}, fmt.Errorf("insert node: %s is not a node level", node.Level)
	}
	if node.ID == uuid.Nil {
		node.ID = uuid.New()
	}
	node.CreatedAt = c.tick()
	c.Nodes = append(c.Nodes, node)
	c.Inserts++
	return node, nil
}

func (c *Catalog) CountNodes(_ context.Context, level gateway.Level) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return 0, c.Err
	}
	if level == gateway.LevelDocument {
		return int64(len(c.Docs)), nil
	}
	var n int64
	for _, node := range c.Nodes {
		if node.Level == level {
			n++
		}
	}
	return n, nil
}

func (c *Catalog) filterDocs(q gateway.DocumentQuery) []gateway.Document {
	var out []gateway.Document
	for _, d := range c.Docs {
		if q.SubjectID != nil && d.SubjectID != *q.SubjectID {
			continue
		}
		if q.CreatedSince != nil && d.CreatedAt.Before(*q.CreatedSince) {
			continue
		}
		out = append(out, d)
	}
	return out
}

func (c *Catalog) ListDocuments(_ context.Context, q gateway.DocumentQuery) ([]gateway.Document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ListCalls++
	if c.Err != nil {
		return nil, c.Err
	}
	out := c.filterDocs(q)
	switch q.OrderBy {
	case gateway.OrderTitleAZ:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	default:
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	if q.WithPath {
		for i := range out {
			out[i].Path = c.pathOf(out[i].SubjectID)
		}
	}
	return out, nil
}

func (c *Catalog) CountDocuments(_ context.Context, q gateway.DocumentQuery) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return 0, c.Err
	}
	return int64(len(c.filterDocs(q))), nil
}

func (c *Catalog) GetDocument(_ context.Context, id uuid.UUID) (gateway.Document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return gateway.Document{}, c.Err
	}
	for _, d := range c.Docs {
		if d.ID == id {
			d.Path = c.pathOf(d.SubjectID)
			return d, nil
		}
	}
	return gateway.Document{}, gateway.ErrNotFound
}

func (c *Catalog) InsertDocument(_ context.Context, doc gateway.Document) (gateway.Document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return gateway.Document{}, c.Err
	}
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	doc.CreatedAt = c.tick()
	c.Docs = append(c.Docs, doc)
	c.DocInserts++
	return doc, nil
}

func (c *Catalog) find(level gateway.Level, id uuid.UUID) (gateway.Node, bool) {
	for _, n := range c.Nodes {
		if n.Level == level && n.ID == id {
			return n, true
		}
	}
	return gateway.Node{}, false
}

func (c *Catalog) pathOf(subjectID uuid.UUID) *gateway.DocumentPath {
	var p gateway.DocumentPath
	var ok bool
	if p.Subject, ok = c.find(gateway.LevelSubject, subjectID); !ok {
		return nil
	}
	p.Section, _ = c.find(gateway.LevelSection, p.Subject.ParentID)
	p.Semester, _ = c.find(gateway.LevelSemester, p.Section.ParentID)
	p.Branch, _ = c.find(gateway.LevelBranch, p.Semester.ParentID)
	return &p
}

/* =========================================================
   STORAGE
   ========================================================= */

type StoredObject struct {
	Bucket      string
	Key         string
	Size        int64
	ContentType string
	Body        []byte
}

type Storage struct {
	mu      sync.Mutex
	Objects []StoredObject
	Err     error
	BaseURL string
	// KeepBody: simpan isi file; default hanya dihitung.
	KeepBody bool
	Attempts int
}

var _ gateway.Storage = (*Storage)(nil)

func NewStorage() *Storage { return &Storage{BaseURL: "https://storage.test"} }

func (s *Storage) Upload(_ context.Context, bucket, key string, body io.Reader, size int64, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Attempts++
	if s.Err != nil {
		return s.Err
	}
	obj := StoredObject{Bucket: bucket, Key: key, Size: size, ContentType: contentType}
	if body != nil {
		var buf bytes.Buffer
		w := io.Writer(&buf)
		if !s.KeepBody {
			w = io.Discard
		}
		n, err := io.Copy(w, body)
		if err != nil {
			return err
		}
		if n != size {
			return fmt.Errorf("short body: got %d bytes, want %d", n, size)
		}
		obj.Body = buf.Bytes()
	}
	s.Objects = append(s.Objects, obj)
	return nil
}

func (s *Storage) PublicURL(bucket, key string) string {
	return strings.TrimRight(s.BaseURL, "/") + "/" + bucket + "/" + key
}

func (s *Storage) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Objects)
}

/* =========================================================
   AUTH
   ========================================================= */

// Auth: klien auth palsu. Password disimpan plain, cukup untuk test.
type Auth struct {
	mu        sync.Mutex
	users     map[string]string
	ids       map[string]uuid.UUID
	session   *gateway.Session
	listeners map[int]func(gateway.AuthEvent)
	nextID    int

	Err         error
	SignUpCalls int
	SignInCalls int
}

var _ gateway.Auth = (*Auth)(nil)

func NewAuth() *Auth {
	return &Auth{
		users:     map[string]string{},
		ids:       map[string]uuid.UUID{},
		listeners: map[int]func(gateway.AuthEvent){},
	}
}

func (a *Auth) SignUp(_ context.Context, email, password string) (gateway.Identity, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.SignUpCalls++
	if a.Err != nil {
		return gateway.Identity{}, a.Err
	}
	if _, ok := a.users[email]; ok {
		return gateway.Identity{}, gateway.ErrConflict
	}
	a.users[email] = password
	a.ids[email] = uuid.New()
	return gateway.Identity{ID: a.ids[email], Email: email}, nil
}

func (a *Auth) SignInWithPassword(_ context.Context, email, password string) (*gateway.Session, error) {
	a.mu.Lock()
	a.SignInCalls++
	if a.Err != nil {
		a.mu.Unlock()
		return nil, a.Err
	}
	if pw, ok := a.users[email]; !ok || pw != password {
		a.mu.Unlock()
		return nil, gateway.ErrInvalidCredentials
	}
	now := time.Now()
	s := &gateway.Session{
		AccessToken: uuid.NewString(),
		ExpiresAt:   now.Add(time.Hour),
		User:        gateway.Identity{ID: a.ids[email], Email: email, ConfirmedAt: &now},
	}
	a.session = s
	a.mu.Unlock()

	a.Emit(gateway.AuthEvent{Kind: gateway.EventSignedIn, Session: s})
	return s, nil
}

func (a *Auth) SignOut(_ context.Context) error {
	a.mu.Lock()
	if a.Err != nil {
		a.mu.Unlock()
		return a.Err
	}
	a.session = nil
	a.mu.Unlock()

	a.Emit(gateway.AuthEvent{Kind: gateway.EventSignedOut})
	return nil
}

func (a *Auth) GetSession(_ context.Context) (*gateway.Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Err != nil {
		return nil, a.Err
	}
	return a.session, nil
}

func (a *Auth) OnSessionChange(fn func(gateway.AuthEvent)) func() {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := a.nextID
	a.nextID++
	a.listeners[id] = fn
	return func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		delete(a.listeners, id)
	}
}

// SetSession mengganti sesi tanpa memicu event.
func (a *Auth) SetSession(s *gateway.Session) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.session = s
}

// Emit mengirim event ke semua listener (di luar lock).
func (a *Auth) Emit(ev gateway.AuthEvent) {
	a.mu.Lock()
	fns := make([]func(gateway.AuthEvent), 0, len(a.listeners))
	for _, fn := range a.listeners {
		fns = append(fns, fn)
	}
	a.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}

func (a *Auth) Listeners() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.listeners)
}
