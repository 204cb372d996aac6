package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/coursebooking/internal/config"
	"github.com/yigit/coursebooking/internal/pkg/auth"
	"golang.org/x/crypto/bcrypt"
)

func memoryConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("MAIL_OUTBOX_DIR", filepath.Join(t.TempDir(), "outbox"))

	cfg, err := config.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	return cfg
}

func TestSetupStoreSeedsMemoryStore(t *testing.T) {
	cfg := memoryConfig(t)

	store, err := SetupStore(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer store.Close()

	courses, err := store.ListCourseSummaries(context.Background())
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, 10, courses[0].TotalSeats)
}

func TestBuildDependenciesMountsAdminOnlyWhenConfigured(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := memoryConfig(t)
	store, err := SetupStore(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer store.Close()

	deps, err := BuildDependencies(cfg, store, zerolog.Nop())
	require.NoError(t, err)
	assert.Nil(t, deps.Controllers.Admin)
	assert.False(t, deps.NotificationService.TransportConfigured())

	router := SetupRouter(cfg, deps, zerolog.Nop())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/admin/login", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)
	cfg.Admin.JWTSecret = "s3cret"
	cfg.Admin.PasswordHash = string(hash)
	deps, err = BuildDependencies(cfg, store, zerolog.Nop())
	require.NoError(t, err)
	assert.NotNil(t, deps.Controllers.Admin)
	assert.NotNil(t, deps.Controllers.AuthMiddleware)
}

func TestBuildDependenciesRejectsMalformedPasswordHash(t *testing.T) {
	cfg := memoryConfig(t)
	store, err := SetupStore(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer store.Close()

	cfg.Admin.JWTSecret = "s3cret"
	cfg.Admin.PasswordHash = "hunter2"
	_, err = BuildDependencies(cfg, store, zerolog.Nop())
	assert.ErrorIs(t, err, auth.ErrMalformedHash)
}
