package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"alphaboard/internal/config"
	"alphaboard/internal/database"
	"alphaboard/internal/featureflags"
	"alphaboard/internal/middleware"
	"alphaboard/internal/repository"
	"alphaboard/internal/service"
	"alphaboard/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testJWTSecret = "handler-test-secret"

// newTestApp wires a full server against an in-memory sqlite database and
// the in-memory blob store, with the real route stack minus the metrics
// middleware (its collectors register globally and cannot be set up twice).
func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	return newTestAppWithFlags(t, "")
}

func newTestAppWithFlags(t *testing.T, features string) (*fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}

	cfg := &config.Config{JWTSecret: testJWTSecret, Env: "test", Features: features}
	middleware.InitMiddleware(cfg)

	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	voteRepo := repository.NewVoteRepository(db)
	attachRepo := repository.NewAttachmentRepository(db)
	blobs := storage.NewMemoryStore()

	s := &Server{
		config:      cfg,
		db:          db,
		flags:       featureflags.NewManager(cfg.Features),
		postRepo:    postRepo,
		commentRepo: commentRepo,
		voteRepo:    voteRepo,
		attachRepo:  attachRepo,
	}
	s.postService = service.NewPostService(postRepo, voteRepo, attachRepo, blobs)
	s.commentService = service.NewCommentService(commentRepo, postRepo, voteRepo, attachRepo, blobs)
	s.voteService = service.NewVoteService(voteRepo)

	app := fiber.New()
	s.SetupRoutes(app)
	return app, db
}

// bearerToken mints a token the auth middleware accepts.
func bearerToken(t *testing.T, userID uint, name string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	if name != "" {
		claims["name"] = name
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return "Bearer " + token
}

func doJSON(t *testing.T, app *fiber.App, method, url, auth string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, url, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	_ = resp.Body.Close()

	var decoded map[string]interface{}
	if len(raw) > 0 && raw[0] == '{' {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			t.Fatalf("decode response %q: %v", raw, err)
		}
	}
	return resp, decoded
}

func doJSONList(t *testing.T, app *fiber.App, method, url, auth string) (*http.Response, []interface{}) {
	t.Helper()

	req := httptest.NewRequest(method, url, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	_ = resp.Body.Close()

	var decoded []interface{}
	if len(raw) > 0 && raw[0] == '[' {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			t.Fatalf("decode response %q: %v", raw, err)
		}
	}
	return resp, decoded
}
