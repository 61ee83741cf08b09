package app_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-container/app"
	foundation "github.com/km-arc/go-container/framework/app"
	"github.com/km-arc/go-container/framework/container"
)

func newApplication(t *testing.T) *foundation.Application {
	t.Helper()
	t.Setenv("APP_ENV", "testing")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("AWS_BUCKET", "test-photos")

	application, err := foundation.New()
	require.NoError(t, err)
	require.NoError(t, application.Register(&app.AppServiceProvider{}))
	require.NoError(t, application.Boot())
	return application
}

func get(t *testing.T, a *foundation.Application, method, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	a.Router().ServeHTTP(rr, req)

	var m map[string]any
	if rr.Body.Len() > 0 {
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&m))
	}
	return rr.Code, m
}

func TestStorageDrivers(t *testing.T) {
	s3 := app.NewS3("bucket", "eu-west-1")
	url, err := s3.URL("/cat.png")
	require.NoError(t, err)
	assert.Equal(t, "https://bucket.s3.eu-west-1.amazonaws.com/cat.png", url)

	local := app.NewLocal("/var/data")
	url, err = local.URL("cat.png")
	require.NoError(t, err)
	assert.Equal(t, "file:///var/data/cat.png", url)

	_, err = s3.URL("")
	assert.ErrorIs(t, err, app.ErrEmptyName)
	_, err = local.URL("/")
	assert.ErrorIs(t, err, app.ErrEmptyName)
}

func TestProvider_GlobalBindingUsesS3(t *testing.T) {
	a := newApplication(t)

	photos, err := container.Resolve[*app.PhotoController](a.Container, "PhotoController")
	require.NoError(t, err)
	require.IsType(t, &app.S3{}, photos.Storage)

	s3 := photos.Storage.(*app.S3)
	assert.Equal(t, "test-photos", s3.Bucket, "bucket comes from the contextual factory")
	assert.Equal(t, "us-east-1", s3.Region, "region falls back to its default")
}

func TestProvider_ContextualBindingUsesLocal(t *testing.T) {
	a := newApplication(t)

	avatars, err := container.Resolve[*app.AvatarController](a.Container, "AvatarController")
	require.NoError(t, err)
	require.IsType(t, &app.Local{}, avatars.Storage)
	assert.Equal(t, "./storage", avatars.Storage.(*app.Local).Root)
}

func TestProvider_ControllersAreFreshPerCreate(t *testing.T) {
	a := newApplication(t)

	first, err := container.Resolve[*app.PhotoController](a.Container, "PhotoController")
	require.NoError(t, err)
	second, err := container.Resolve[*app.PhotoController](a.Container, "PhotoController")
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.NotSame(t, first.Storage, second.Storage)
}

func TestRoutes(t *testing.T) {
	a := newApplication(t)

	code, body := get(t, a, http.MethodGet, "/photos", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]any{"driver": "s3"}, body["data"])

	code, body = get(t, a, http.MethodPost, "/photos", `{"name":"cat.png"}`)
	assert.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "https://test-photos.s3.us-east-1.amazonaws.com/cat.png", body["data"].(map[string]any)["url"])

	code, _ = get(t, a, http.MethodPost, "/photos", `{"name":""}`)
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	code, body = get(t, a, http.MethodGet, "/photos/dog.png", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "dog.png", body["data"].(map[string]any)["id"])

	code, _ = get(t, a, http.MethodDelete, "/photos/dog.png", "")
	assert.Equal(t, http.StatusNoContent, code)

	code, body = get(t, a, http.MethodGet, "/avatars/ada", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "local", body["data"].(map[string]any)["driver"])
	assert.Equal(t, "file://storage/ada.png", body["data"].(map[string]any)["url"])

	code, body = get(t, a, http.MethodGet, "/drivers", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, []any{"s3", "local"}, body["data"])
}

func TestRoutes_RebindingTakesEffect(t *testing.T) {
	a := newApplication(t)
	require.NoError(t, a.Bind("Storage", "Local"))

	_, body := get(t, a, http.MethodGet, "/photos", "")
	assert.Equal(t, map[string]any{"driver": "local"}, body["data"])
}

func TestRoutes_ServesLocalFiles(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "ada.png"), []byte("png-bytes"), 0o644))
	t.Setenv("STORAGE_ROOT", root)
	a := newApplication(t)

	avatars, err := container.Resolve[*app.AvatarController](a.Container, "AvatarController")
	require.NoError(t, err)
	assert.Equal(t, root, avatars.Storage.(*app.Local).Root)

	rr := httptest.NewRecorder()
	a.Router().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/files/ada.png", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	body, _ := io.ReadAll(rr.Body)
	assert.Equal(t, "png-bytes", string(body))

	rr = httptest.NewRecorder()
	a.Router().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/files/missing.png", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
