package api

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mansionapp/mansion-server/internal/auth"
	"github.com/mansionapp/mansion-server/internal/domain"
	"github.com/mansionapp/mansion-server/internal/media/uploads"
	"github.com/mansionapp/mansion-server/internal/service"
	"github.com/mansionapp/mansion-server/internal/store/sqlite"
	"github.com/mansionapp/mansion-server/internal/validation"
)

const (
	testAdminUser     = "admin"
	testAdminPassword = "test-password"
)

// setupTestServer creates a server with real dependencies against a
// throwaway database.
func setupTestServer(t *testing.T) (*Server, *sqlite.Store) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dir := t.TempDir()

	store, err := sqlite.Open(filepath.Join(dir, "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	storage, err := uploads.NewStorage(filepath.Join(dir, "uploads"))
	require.NoError(t, err)
	pipeline := uploads.NewPipeline(store, storage, logger)

	credentials, err := auth.NewCredentials(testAdminUser, testAdminPassword)
	require.NoError(t, err)
	signer := auth.NewSigner("test-secret-key")

	galleryService := service.NewGalleryService(store, logger)
	profileService := service.NewProfileService(store, pipeline, validation.New(), logger)
	sessionService := service.NewSessionService(store, credentials, signer, time.Hour, logger)

	server, err := NewServer(store, galleryService, profileService, sessionService, Config{
		UploadsPath:     filepath.Join(dir, "uploads"),
		MaxUploadSize:   10 << 20,
		SecureCookies:   false,
		SessionDuration: time.Hour,
	}, logger)
	require.NoError(t, err)

	return server, store
}

func createProfileRow(t *testing.T, store *sqlite.Store, name string) *domain.Profile {
	t.Helper()
	p := &domain.Profile{Name: name}
	require.NoError(t, store.CreateProfile(context.Background(), p))
	return p
}

// loginCookie performs a real login and returns the session cookie.
func loginCookie(t *testing.T, server *Server) *http.Cookie {
	t.Helper()

	form := url.Values{"username": {testAdminUser}, "password": {testAdminPassword}}
	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/admin", rec.Header().Get("Location"))

	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == sessionCookieName && cookie.Value != "" {
			return cookie
		}
	}
	t.Fatal("no session cookie set after login")
	return nil
}

func TestHealthCheck(t *testing.T) {
	server, _ := setupTestServer(t)

	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestIndexPage(t *testing.T) {
	server, store := setupTestServer(t)
	createProfileRow(t, store, "Homepage Star")

	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Homepage Star")
}

func TestCategoryPageFilters(t *testing.T) {
	server, store := setupTestServer(t)
	ctx := context.Background()

	tagged := createProfileRow(t, store, "Tagged Profile")
	createProfileRow(t, store, "Untagged Profile")

	category, err := store.GetCategoryBySlug(ctx, "latina")
	require.NoError(t, err)
	require.NoError(t, store.SetProfileCategories(ctx, tagged.ID, []int64{category.ID}))

	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/category/latina", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Tagged Profile")
	assert.NotContains(t, rec.Body.String(), "Untagged Profile")
}

func TestProfilePage(t *testing.T) {
	server, store := setupTestServer(t)
	p := createProfileRow(t, store, "Detail Person")

	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/profile/"+itoa(p.ID), nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Detail Person")
}

func TestProfilePageUnknownIDRedirectsHome(t *testing.T) {
	server, _ := setupTestServer(t)

	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/profile/9999", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/profile/not-a-number", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestUnknownRouteRenders404Page(t *testing.T) {
	server, _ := setupTestServer(t)

	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/no/such/page", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "404")
}

func TestAPIListProfiles(t *testing.T) {
	server, store := setupTestServer(t)
	ctx := context.Background()

	p := createProfileRow(t, store, "API Person")
	category, err := store.GetCategoryBySlug(ctx, "bikini")
	require.NoError(t, err)
	require.NoError(t, store.SetProfileCategories(ctx, p.ID, []int64{category.ID}))

	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/profiles", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var rows []profileRow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "API Person", rows[0].Name)
	assert.Equal(t, "Bikini", rows[0].Categories)
	assert.Zero(t, rows[0].MediaCount)
}

func TestAPIListProfilesCategoryFilter(t *testing.T) {
	server, store := setupTestServer(t)

	createProfileRow(t, store, "Filtered Out")

	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/profiles?category=bikini", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var rows []profileRow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	assert.Empty(t, rows)
}

func TestAdminRequiresSession(t *testing.T) {
	server, _ := setupTestServer(t)

	paths := []string{"/admin", "/admin/profile/new", "/admin/profile/1/edit", "/admin/logout"}
	for _, path := range paths {
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusSeeOther, rec.Code, "path %s", path)
		assert.Equal(t, "/admin/login", rec.Header().Get("Location"), "path %s", path)
	}
}

func TestLoginPageRenders(t *testing.T) {
	server, _ := setupTestServer(t)

	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/login", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "password")
}

func TestLoginWrongPasswordRedirectsBack(t *testing.T) {
	server, _ := setupTestServer(t)

	form := url.Values{"username": {testAdminUser}, "password": {"wrong"}}
	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/login", rec.Header().Get("Location"))

	// No session cookie handed out.
	for _, cookie := range rec.Result().Cookies() {
		assert.NotEqual(t, sessionCookieName, cookie.Name)
	}
}

func TestLoginThenDashboard(t *testing.T) {
	server, store := setupTestServer(t)
	createProfileRow(t, store, "Dashboard Row")

	cookie := loginCookie(t, server)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Dashboard Row")
}

func TestLogoutInvalidatesSession(t *testing.T) {
	server, _ := setupTestServer(t)
	cookie := loginCookie(t, server)

	req := httptest.NewRequest(http.MethodGet, "/admin/logout", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	// The old cookie no longer opens the dashboard.
	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/login", rec.Header().Get("Location"))
}

func TestTamperedSessionCookieRejected(t *testing.T) {
	server, _ := setupTestServer(t)
	cookie := loginCookie(t, server)
	cookie.Value += "tampered"

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/login", rec.Header().Get("Location"))
}

// multipartProfileForm builds a profile submission with optional files.
func multipartProfileForm(t *testing.T, fields map[string]string, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	for name, content := range files {
		part, err := writer.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	return &body, writer.FormDataContentType()
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 12, 12))
	for y := 0; y < 12; y++ {
		for x := 0; x < 12; x++ {
			img.Set(x, y, color.RGBA{R: 10, G: 200, B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestCreateProfileWithUpload(t *testing.T) {
	server, store := setupTestServer(t)
	cookie := loginCookie(t, server)
	ctx := context.Background()

	category, err := store.GetCategoryBySlug(ctx, "latina")
	require.NoError(t, err)

	body, contentType := multipartProfileForm(t,
		map[string]string{
			"name":        "Uploaded Person",
			"description": "with one photo",
			"categories":  itoa(category.ID),
		},
		map[string][]byte{"photo.png": testPNG(t)},
	)

	req := httptest.NewRequest(http.MethodPost, "/admin/profile/new", body)
	req.Header.Set("Content-Type", contentType)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin", rec.Header().Get("Location"))

	profiles, err := store.ListProfiles(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "Uploaded Person", profiles[0].Name)
	assert.True(t, profiles[0].HasCover())

	media, err := store.ListProfileMedia(ctx, profiles[0].ID)
	require.NoError(t, err)
	require.Len(t, media, 1)
	assert.Equal(t, domain.MediaImage, media[0].MediaType)
}

func TestCreateProfileEmptyNameRedirectsBack(t *testing.T) {
	server, store := setupTestServer(t)
	cookie := loginCookie(t, server)

	body, contentType := multipartProfileForm(t, map[string]string{"name": ""}, nil)
	req := httptest.NewRequest(http.MethodPost, "/admin/profile/new", body)
	req.Header.Set("Content-Type", contentType)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/profile/new", rec.Header().Get("Location"))

	profiles, err := store.ListProfiles(context.Background())
	require.NoError(t, err)
	assert.Empty(t, profiles)
}

func TestEditUnknownProfileRedirectsToDashboard(t *testing.T) {
	server, _ := setupTestServer(t)
	cookie := loginCookie(t, server)

	req := httptest.NewRequest(http.MethodGet, "/admin/profile/9999/edit", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin", rec.Header().Get("Location"))
}

func TestServeUploadRejectsTraversal(t *testing.T) {
	server, _ := setupTestServer(t)

	paths := []string{
		"/uploads/images/..%2F..%2Fmansion.db",
		"/uploads/images/.hidden",
		"/uploads/videos/..%2Fimages%2Fx.jpg",
	}
	for _, path := range paths {
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, "path %s", path)
	}

	// The database file and uploads root are never servable.
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/mansion.db", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
