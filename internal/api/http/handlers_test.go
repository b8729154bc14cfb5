package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drivekeep/drivekeep/internal/api/middleware"
	"github.com/drivekeep/drivekeep/internal/domain/auth"
	"github.com/drivekeep/drivekeep/internal/domain/clipboard"
	"github.com/drivekeep/drivekeep/internal/domain/drive"
	"github.com/drivekeep/drivekeep/internal/domain/files"
	"github.com/drivekeep/drivekeep/internal/domain/permission"
	"github.com/drivekeep/drivekeep/internal/domain/session"
	"github.com/drivekeep/drivekeep/internal/domain/usage"
	"github.com/drivekeep/drivekeep/internal/i18n"
	"github.com/drivekeep/drivekeep/internal/infrastructure/logging"
	"github.com/drivekeep/drivekeep/internal/infrastructure/monitoring"
)

// Prometheus collectors register globally, so the whole test binary
// shares one instance.
var testMetrics = monitoring.NewMetrics()

type testEnv struct {
	router *gin.Engine
	auth   *auth.Service
	perms  *permission.Store
	reg    *drive.Registry
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg, err := drive.NewRegistry([]drive.Drive{
		{Label: "HardDrive-1", Root: t.TempDir()},
		{Label: "HardDrive-2", Root: t.TempDir()},
	})
	require.NoError(t, err)

	perms, err := permission.NewStore(nil)
	require.NoError(t, err)

	clip := clipboard.NewManager()
	sessions := session.NewManager(time.Hour, clip.Clear)
	t.Cleanup(sessions.Stop)

	authSvc, err := auth.NewService(nil, sessions)
	require.NoError(t, err)
	require.NoError(t, authSvc.Seed("root", "rootpass1", true))
	require.NoError(t, authSvc.Seed("alice", "alicepass1", false))

	log := logging.NewNop()
	filesSvc := files.NewService(reg, perms, log)
	usageRep := usage.NewReporter(reg)

	handlers := NewHandlers(filesSvc, authSvc, sessions, clip, usageRep, perms, testMetrics, log)

	router := gin.New()
	router.GET("/health", handlers.Health)
	router.POST("/auth/login", handlers.Login)

	authed := router.Group("/", middleware.Auth(sessions, authSvc))
	{
		authed.POST("/auth/logout", handlers.Logout)
		authed.GET("/auth/me", handlers.Me)

		authed.GET("/drives", handlers.ListDrives)
		authed.GET("/drives/:drive/list", handlers.Listing)
		authed.POST("/drives/:drive/folders", handlers.CreateFolder)
		authed.POST("/drives/:drive/rename", handlers.Rename)
		authed.POST("/drives/:drive/delete", handlers.Delete)
		authed.POST("/drives/:drive/bulk-delete", handlers.BulkDelete)
		authed.POST("/drives/:drive/upload", handlers.Upload)
		authed.GET("/drives/:drive/download", handlers.Download)
		authed.POST("/drives/:drive/compress", handlers.Compress)
		authed.POST("/drives/:drive/uncompress", handlers.Uncompress)

		authed.POST("/clipboard/copy", handlers.ClipboardCopy)
		authed.POST("/clipboard/cut", handlers.ClipboardCut)
		authed.GET("/clipboard", handlers.ClipboardGet)
		authed.DELETE("/clipboard", handlers.ClipboardClear)
		authed.POST("/clipboard/paste", handlers.ClipboardPaste)

		authed.GET("/usage", handlers.Usage)

		admin := authed.Group("/", middleware.RequireAdmin())
		{
			admin.GET("/permissions", handlers.ListPermissions)
			admin.POST("/permissions", handlers.GrantPermission)
			admin.DELETE("/permissions/:id", handlers.RevokePermission)
			admin.GET("/users", handlers.ListUsers)
			admin.POST("/users", handlers.CreateUser)
		}
	}

	return &testEnv{router: router, auth: authSvc, perms: perms, reg: reg}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) login(t *testing.T, username, password string) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/auth/login", "", gin.H{"username": username, "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func (e *testEnv) seedFile(t *testing.T, label, rel, content string) {
	t.Helper()
	abs, err := e.reg.Resolve(label, rel)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
	require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
}

func TestLoginFlow(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(t, http.MethodPost, "/auth/login", "", gin.H{"username": "root", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token := e.login(t, "root", "rootpass1")

	w = e.do(t, http.MethodGet, "/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"admin":true`)

	w = e.do(t, http.MethodPost, "/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodGet, "/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUnauthenticatedRequestsRejected(t *testing.T) {
	e := newTestEnv(t)

	for _, path := range []string{"/drives", "/usage", "/clipboard"} {
		w := e.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestListingAndFolderLifecycle(t *testing.T) {
	e := newTestEnv(t)
	token := e.login(t, "root", "rootpass1")

	w := e.do(t, http.MethodPost, "/drives/HardDrive-1/folders", token, gin.H{"name": "projects"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	e.seedFile(t, "HardDrive-1", "projects/notes.txt", "n")

	w = e.do(t, http.MethodGet, "/drives/HardDrive-1/list?path=projects", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "notes.txt")

	w = e.do(t, http.MethodPost, "/drives/HardDrive-1/rename", token, gin.H{"path": "projects/notes.txt", "new_name": "renamed.txt"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = e.do(t, http.MethodPost, "/drives/HardDrive-1/delete", token, gin.H{"path": "projects/renamed.txt"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = e.do(t, http.MethodGet, "/drives/HardDrive-1/list?path=projects", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "renamed.txt")
}

func TestListingErrors(t *testing.T) {
	e := newTestEnv(t)
	token := e.login(t, "root", "rootpass1")

	w := e.do(t, http.MethodGet, "/drives/NoSuchDrive/list", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(t, http.MethodGet, "/drives/HardDrive-1/list?path=missing", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(t, http.MethodGet, "/drives/HardDrive-1/list?path=../../etc", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPermissionGatedDriveVisibility(t *testing.T) {
	e := newTestEnv(t)
	rootTok := e.login(t, "root", "rootpass1")
	aliceTok := e.login(t, "alice", "alicepass1")

	w := e.do(t, http.MethodGet, "/drives", aliceTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "HardDrive-1")

	w = e.do(t, http.MethodPost, "/permissions", rootTok, gin.H{
		"username": "alice", "prefix": "HardDrive-1/docs", "can_view": true,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = e.do(t, http.MethodGet, "/drives", aliceTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "HardDrive-1")
	assert.NotContains(t, w.Body.String(), "HardDrive-2")
}

func TestViewOnlyUserCannotMutate(t *testing.T) {
	e := newTestEnv(t)
	rootTok := e.login(t, "root", "rootpass1")
	aliceTok := e.login(t, "alice", "alicepass1")

	w := e.do(t, http.MethodPost, "/permissions", rootTok, gin.H{
		"username": "alice", "prefix": "HardDrive-1", "can_view": true,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = e.do(t, http.MethodGet, "/drives/HardDrive-1/list", aliceTok, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodPost, "/drives/HardDrive-1/folders", aliceTok, gin.H{"name": "nope"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminEndpointsRequireAdmin(t *testing.T) {
	e := newTestEnv(t)
	aliceTok := e.login(t, "alice", "alicepass1")

	w := e.do(t, http.MethodGet, "/permissions", aliceTok, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = e.do(t, http.MethodPost, "/users", aliceTok, gin.H{"username": "mallory", "password": "password1"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestPermissionRevoke(t *testing.T) {
	e := newTestEnv(t)
	rootTok := e.login(t, "root", "rootpass1")

	w := e.do(t, http.MethodPost, "/permissions", rootTok, gin.H{
		"username": "alice", "prefix": "HardDrive-1", "can_view": true,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Permission permission.Entry `json:"permission"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	w = e.do(t, http.MethodDelete, "/permissions/"+resp.Permission.ID, rootTok, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodDelete, "/permissions/"+resp.Permission.ID, rootTok, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGrantForUnknownUserRejected(t *testing.T) {
	e := newTestEnv(t)
	rootTok := e.login(t, "root", "rootpass1")

	w := e.do(t, http.MethodPost, "/permissions", rootTok, gin.H{
		"username": "ghost", "prefix": "HardDrive-1", "can_view": true,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUserManagement(t *testing.T) {
	e := newTestEnv(t)
	rootTok := e.login(t, "root", "rootpass1")

	w := e.do(t, http.MethodPost, "/users", rootTok, gin.H{"username": "carol", "password": "carolpass1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "password")

	w = e.do(t, http.MethodPost, "/users", rootTok, gin.H{"username": "carol", "password": "carolpass1"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = e.do(t, http.MethodGet, "/users", rootTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "carol")
	assert.NotContains(t, w.Body.String(), "password_hash")
}

func TestClipboardCopyPaste(t *testing.T) {
	e := newTestEnv(t)
	token := e.login(t, "root", "rootpass1")
	e.seedFile(t, "HardDrive-1", "src/report.pdf", "content")

	w := e.do(t, http.MethodPost, "/clipboard/copy", token, gin.H{"sources": []string{"HardDrive-1/src/report.pdf"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = e.do(t, http.MethodGet, "/clipboard", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"mode":"copy"`)

	w = e.do(t, http.MethodPost, "/clipboard/paste", token, gin.H{"drive": "HardDrive-2", "path": ""})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	abs, _ := e.reg.Resolve("HardDrive-2", "report.pdf")
	_, err := os.Stat(abs)
	assert.NoError(t, err, "pasted file should exist")

	// Copy mode keeps the clipboard for repeated pastes.
	w = e.do(t, http.MethodGet, "/clipboard", token, nil)
	assert.Contains(t, w.Body.String(), `"empty":false`)
}

func TestClipboardCutClearsAfterPaste(t *testing.T) {
	e := newTestEnv(t)
	token := e.login(t, "root", "rootpass1")
	e.seedFile(t, "HardDrive-1", "move-me.txt", "x")

	w := e.do(t, http.MethodPost, "/clipboard/cut", token, gin.H{"sources": []string{"HardDrive-1/move-me.txt"}})
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodPost, "/clipboard/paste", token, gin.H{"drive": "HardDrive-2"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	abs, _ := e.reg.Resolve("HardDrive-1", "move-me.txt")
	_, err := os.Stat(abs)
	assert.True(t, os.IsNotExist(err), "cut source should be gone")

	w = e.do(t, http.MethodGet, "/clipboard", token, nil)
	assert.Contains(t, w.Body.String(), `"empty":true`)
}

func TestClipboardPasteEmpty(t *testing.T) {
	e := newTestEnv(t)
	token := e.login(t, "root", "rootpass1")

	w := e.do(t, http.MethodPost, "/clipboard/paste", token, gin.H{"drive": "HardDrive-1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClipboardIsPerSession(t *testing.T) {
	e := newTestEnv(t)
	tok1 := e.login(t, "root", "rootpass1")
	tok2 := e.login(t, "root", "rootpass1")
	e.seedFile(t, "HardDrive-1", "a.txt", "a")

	w := e.do(t, http.MethodPost, "/clipboard/copy", tok1, gin.H{"sources": []string{"HardDrive-1/a.txt"}})
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodGet, "/clipboard", tok2, nil)
	assert.Contains(t, w.Body.String(), `"empty":true`)
}

func TestUploadAndDownload(t *testing.T) {
	e := newTestEnv(t)
	token := e.login(t, "root", "rootpass1")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "hello.txt")
	require.NoError(t, err)
	fmt.Fprint(fw, "hello upload")
	require.NoError(t, mw.WriteField("path", ""))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/drives/HardDrive-1/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w2 := e.do(t, http.MethodGet, "/drives/HardDrive-1/download?path=hello.txt", token, nil)
	require.Equal(t, http.StatusOK, w2.Code)
	assert.Equal(t, "hello upload", w2.Body.String())
	assert.Contains(t, w2.Header().Get("Content-Disposition"), "hello.txt")
}

func TestDownloadFolderStreamsZip(t *testing.T) {
	e := newTestEnv(t)
	token := e.login(t, "root", "rootpass1")
	e.seedFile(t, "HardDrive-1", "album/track.mp3", "mp3")

	before := testutil.ToFloat64(testMetrics.BytesDownloaded)
	w := e.do(t, http.MethodGet, "/drives/HardDrive-1/download?path=album", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/zip", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "album.zip")
	// Zip local file header magic.
	assert.Equal(t, "PK", w.Body.String()[:2])
	assert.Equal(t, float64(w.Body.Len()), testutil.ToFloat64(testMetrics.BytesDownloaded)-before)
}

func TestCompressAndUncompress(t *testing.T) {
	e := newTestEnv(t)
	token := e.login(t, "root", "rootpass1")
	e.seedFile(t, "HardDrive-1", "docs/a.txt", "a")
	e.seedFile(t, "HardDrive-1", "docs/b.txt", "b")

	w := e.do(t, http.MethodPost, "/drives/HardDrive-1/compress", token, gin.H{
		"path": "docs", "items": []string{"docs/a.txt", "docs/b.txt"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// Find the created archive.
	list := e.do(t, http.MethodGet, "/drives/HardDrive-1/list?path=docs", token, nil)
	require.Contains(t, list.Body.String(), ".zip")

	var listing struct {
		Entries []struct {
			Name string `json:"name"`
		} `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(list.Body.Bytes(), &listing))
	var archive string
	for _, en := range listing.Entries {
		if filepath.Ext(en.Name) == ".zip" {
			archive = en.Name
		}
	}
	require.NotEmpty(t, archive)

	w = e.do(t, http.MethodPost, "/drives/HardDrive-1/folders", token, gin.H{"name": "out"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = e.do(t, http.MethodPost, "/drives/HardDrive-1/uncompress", token, gin.H{
		"path": "out", "archive": "docs/" + archive,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	abs, _ := e.reg.Resolve("HardDrive-1", "out/a.txt")
	_, err := os.Stat(abs)
	assert.NoError(t, err, "extracted file should exist")
}

func TestUncompressRejectsNonZip(t *testing.T) {
	e := newTestEnv(t)
	token := e.login(t, "root", "rootpass1")
	e.seedFile(t, "HardDrive-1", "plain.txt", "not a zip")

	w := e.do(t, http.MethodPost, "/drives/HardDrive-1/uncompress", token, gin.H{
		"path": "", "archive": "plain.txt",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBulkDeleteEndpoint(t *testing.T) {
	e := newTestEnv(t)
	token := e.login(t, "root", "rootpass1")
	e.seedFile(t, "HardDrive-1", "a.txt", "a")
	e.seedFile(t, "HardDrive-1", "b.txt", "b")

	w := e.do(t, http.MethodPost, "/drives/HardDrive-1/bulk-delete", token, gin.H{
		"paths": []string{"a.txt", "missing.txt", "b.txt"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Result files.BulkResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Result.Succeeded)
	assert.Len(t, resp.Result.Failed, 1)
}

func TestUsageEndpoint(t *testing.T) {
	e := newTestEnv(t)
	token := e.login(t, "root", "rootpass1")

	w := e.do(t, http.MethodGet, "/usage", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Drives []usage.DriveUsage `json:"drives"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Drives, 2)
	assert.NotZero(t, resp.Drives[0].TotalBytes)
	assert.NotEmpty(t, resp.Drives[0].Total)
}

func TestSpanishMessages(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(t, http.MethodPost, "/auth/login?lang=es", "", gin.H{"username": "root", "password": "bad"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "contraseña")

	w = e.do(t, http.MethodPost, "/auth/login", "", gin.H{"username": "root", "password": "bad"})
	assert.Contains(t, w.Body.String(), i18n.Pick("en", "").T(i18n.KeyInvalidCreds))
}
