package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notesku_backend/internals/configs"
	"notesku_backend/internals/features/catalog/navigator"
	"notesku_backend/internals/features/users/session"
	"notesku_backend/internals/gateway"
	"notesku_backend/internals/gateway/gatewaytest"
	"notesku_backend/internals/metrics"
)

type testEnv struct {
	app      *fiber.App
	catalog  *gatewaytest.Catalog
	storage  *gatewaytest.Storage
	auth     *gatewaytest.Auth
	registry *session.Registry
	section  gateway.Node
	subject  gateway.Node
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	catalog := gatewaytest.NewCatalog()
	branch := catalog.AddNode(gateway.LevelBranch, uuid.Nil, "CSE")
	semester := catalog.AddNode(gateway.LevelSemester, branch.ID, "Semester 3")
	section := catalog.AddNode(gateway.LevelSection, semester.ID, "Section A")
	subject := catalog.AddNode(gateway.LevelSubject, section.ID, "Algorithms")

	auth := gatewaytest.NewAuth()
	_, err := auth.SignUp(context.Background(), "student@uni.edu", "secret1")
	require.NoError(t, err)

	nav := navigator.New(catalog)
	m := metrics.New()
	reg := session.NewRegistry(func(uuid.UUID) gateway.Auth { return auth }, nav, 0)
	reg.Metrics = m
	t.Cleanup(reg.Close)

	env := &testEnv{
		app:      fiber.New(),
		catalog:  catalog,
		storage:  gatewaytest.NewStorage(),
		auth:     auth,
		registry: reg,
		section:  section,
		subject:  subject,
	}
	SetupRoutes(env.app, Deps{
		Config:    configs.App{AdminCode: "s3cret", StorageBucket: "notes"},
		Metrics:   m,
		Catalog:   catalog,
		Storage:   env.storage,
		Navigator: nav,
		Registry:  reg,
	})
	return env
}

func (e *testEnv) do(t *testing.T, req *http.Request, cookie string) (*http.Response, map[string]any) {
	t.Helper()
	if cookie != "" {
		req.Header.Set("Cookie", session.CookieName+"="+cookie)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &body))
	}
	return resp, body
}

func clientCookie(resp *http.Response) string {
	for _, ck := range resp.Cookies() {
		if ck.Name == session.CookieName {
			return ck.Value
		}
	}
	return ""
}

func jsonRequest(method, path string, body any) *http.Request {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func uploadRequest(t *testing.T, fields map[string]string, fileName, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if fileName != "" {
		fw, err := w.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/documents", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestAnonymousUploadIsRejected(t *testing.T) {
	env := newTestEnv(t)
	req := uploadRequest(t, map[string]string{
		"section_id": env.section.ID.String(),
		"subject_id": env.subject.ID.String(),
		"title":      "Week 1",
	}, "notes.pdf", "%PDF-1.4")

	resp, body := env.do(t, req, "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Please sign in to upload notes.", body["message"])
	assert.Zero(t, env.storage.Calls())
	assert.Zero(t, env.catalog.DocInserts)
}

func TestSignInThenUpload(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, httptest.NewRequest(http.MethodGet, "/api/auth/session", nil), "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	cookie := clientCookie(resp)
	require.NotEmpty(t, cookie)
	aff := body["data"].(map[string]any)["affordances"].(map[string]any)
	assert.Equal(t, false, aff["show_upload_form"])

	resp, body = env.do(t, jsonRequest(http.MethodPost, "/api/auth/signin", map[string]string{
		"email": "student@uni.edu", "password": "secret1",
	}), cookie)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, body)
	aff = body["data"].(map[string]any)["affordances"].(map[string]any)
	assert.Equal(t, true, aff["show_upload_form"])

	// client id dirotasi saat sign in
	rotated := clientCookie(resp)
	require.NotEmpty(t, rotated)
	assert.NotEqual(t, cookie, rotated)
	cookie = rotated
	assert.Equal(t, 1, env.registry.Len())

	req := uploadRequest(t, map[string]string{
		"section_id": env.section.ID.String(),
		"subject_id": env.subject.ID.String(),
		"title":      "Week 1",
	}, "notes.pdf", "%PDF-1.4")
	resp, body = env.do(t, req, cookie)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, body)
	assert.Equal(t, 1, env.storage.Calls())
	assert.Equal(t, 1, env.catalog.DocInserts)

	form := body["data"].(map[string]any)["form"].(map[string]any)
	assert.Equal(t, env.subject.ID.String(), form["subject_id"])
	assert.Equal(t, "", form["title"])
}

func TestUploadValidationKeepsForm(t *testing.T) {
	env := newTestEnv(t)
	env.auth.SetSession(&gateway.Session{User: gateway.Identity{ID: uuid.New(), Email: "a@b.co"}})

	req := uploadRequest(t, map[string]string{
		"section_id": env.section.ID.String(),
		"subject_id": env.subject.ID.String(),
		"title":      "   ",
	}, "notes.pdf", "x")
	resp, body := env.do(t, req, "")
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "Please enter a title.", body["message"])
	assert.Equal(t, "   ", body["data"].(map[string]any)["title"])
	assert.Zero(t, env.storage.Calls())
}

func TestCreateBranchWithAdminCode(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, jsonRequest(http.MethodPost, "/api/catalog/branch", map[string]string{
		"admin_code": "nope", "name": "EEE",
	}), "")
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "❌ Incorrect admin code!", body["message"])
	assert.Equal(t, "EEE", body["data"].(map[string]any)["name"])
	assert.Zero(t, env.catalog.Inserts)

	resp, body = env.do(t, jsonRequest(http.MethodPost, "/api/catalog/branch", map[string]string{
		"admin_code": "s3cret", "name": "EEE",
	}), "")
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, body)
	assert.Equal(t, 1, env.catalog.Inserts)
	form := body["data"].(map[string]any)["form"].(map[string]any)
	assert.Equal(t, "", form["name"])
}

func TestBrowseAndSearch(t *testing.T) {
	env := newTestEnv(t)
	env.catalog.AddDocument(gateway.Document{SubjectID: env.subject.ID, Title: "Algorithms Notes", FileType: "application", FileSize: 10})

	resp, body := env.do(t, httptest.NewRequest(http.MethodGet, "/api/catalog/browse", nil), "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	cards := body["data"].(map[string]any)["cards"].([]any)
	require.Len(t, cards, 1)
	assert.Equal(t, "CSE", cards[0].(map[string]any)["title"])

	resp, body = env.do(t, httptest.NewRequest(http.MethodGet, "/api/catalog/browse?level=nonsense", nil), "")
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	resp, body = env.do(t, httptest.NewRequest(http.MethodGet, "/api/documents/search?q=ALGO", nil), "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, body["data"].(map[string]any)["total"])
}

func TestDownloadRedirects(t *testing.T) {
	env := newTestEnv(t)
	doc := env.catalog.AddDocument(gateway.Document{SubjectID: env.subject.ID, Title: "X", FileURL: "https://storage.test/notes/1_x.pdf"})

	resp, _ := env.do(t, httptest.NewRequest(http.MethodGet, "/api/documents/"+doc.ID.String()+"/download", nil), "")
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "https://storage.test/notes/1_x.pdf", resp.Header.Get("Location"))

	resp, _ = env.do(t, httptest.NewRequest(http.MethodGet, "/api/documents/"+uuid.NewString()+"/download", nil), "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestHealthWithoutDatabase(t *testing.T) {
	env := newTestEnv(t)
	resp, body := env.do(t, httptest.NewRequest(http.MethodGet, "/health", nil), "")
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "DOWN", body["status"])
}
