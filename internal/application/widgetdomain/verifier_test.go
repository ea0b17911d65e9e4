package widgetdomain

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	domain "github.com/embedgate/embedgate/internal/domain/widgetdomain"
	"github.com/embedgate/embedgate/internal/infrastructure/persistence/models"
	"github.com/embedgate/embedgate/internal/infrastructure/repository"
	"github.com/embedgate/embedgate/internal/shared/biztime"
	"github.com/embedgate/embedgate/internal/shared/logger"
)

func newTestDomainRepo(t *testing.T) (domain.Repository, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.WidgetDomainModel{}))

	return repository.NewWidgetDomainRepository(db), db
}

func seedDomain(t *testing.T, db *gorm.DB, name, status string, isActive, isVerified bool) {
	t.Helper()
	require.NoError(t, db.Create(&models.WidgetDomainModel{
		Name:       name,
		IsActive:   isActive,
		Status:     status,
		IsVerified: isVerified,
		CreatedAt:  biztime.NowUTC(),
		UpdatedAt:  biztime.NowUTC(),
	}).Error)
}

func TestVerifier_Direct(t *testing.T) {
	repo, db := newTestDomainRepo(t)
	verifier := NewDirectVerifier(repo, nil, logger.NewLogger())
	ctx := context.Background()

	seedDomain(t, db, "shop.example.com", "active", true, true)
	seedDomain(t, db, "pending.example.com", "pending", true, false)
	seedDomain(t, db, "disabled.example.com", "active", false, true)

	tests := []struct {
		name         string
		rawDomain    string
		authorized   bool
		domainExists bool
		reason       domain.Reason
	}{
		{
			name:         "registered active domain is authorized",
			rawDomain:    "shop.example.com",
			authorized:   true,
			domainExists: true,
			reason:       domain.ReasonAuthorized,
		},
		{
			name:         "raw url normalizes before lookup",
			rawDomain:    "HTTPS://WWW.Shop.Example.COM:443/cart?x=1",
			authorized:   true,
			domainExists: true,
			reason:       domain.ReasonAuthorized,
		},
		{
			name:         "active flag without active status is unauthorized",
			rawDomain:    "pending.example.com",
			authorized:   false,
			domainExists: true,
			reason:       domain.ReasonInactive,
		},
		{
			name:         "active status without active flag is unauthorized",
			rawDomain:    "disabled.example.com",
			authorized:   false,
			domainExists: true,
			reason:       domain.ReasonInactive,
		},
		{
			name:         "unregistered domain",
			rawDomain:    "unknown.example.com",
			authorized:   false,
			domainExists: false,
			reason:       domain.ReasonNotFound,
		},
		{
			name:         "empty input is a validation error",
			rawDomain:    "",
			authorized:   false,
			domainExists: false,
			reason:       domain.ReasonValidationError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := verifier.Verify(ctx, tt.rawDomain)
			assert.Equal(t, tt.authorized, result.Authorized)
			assert.Equal(t, tt.domainExists, result.DomainExists)
			assert.Equal(t, tt.reason, result.Reason)
		})
	}
}

func TestVerifier_DevHostsForceAuthorized(t *testing.T) {
	repo, _ := newTestDomainRepo(t)
	verifier := NewDirectVerifier(repo, nil, logger.NewLogger())
	ctx := context.Background()

	for _, host := range []string{
		"localhost",
		"127.0.0.1",
		"::1",
		"app.localhost",
		"staging.test",
		"http://localhost:3000",
	} {
		result := verifier.Verify(ctx, host)
		assert.True(t, result.Authorized, "host %q should be force-authorized", host)
		assert.Equal(t, domain.ReasonForced, result.Reason)
	}
}

func TestVerifier_DevSuffixMustBeSuffix(t *testing.T) {
	repo, _ := newTestDomainRepo(t)
	verifier := NewDirectVerifier(repo, nil, logger.NewLogger())

	result := verifier.Verify(context.Background(), "test.example.com")
	assert.False(t, result.Authorized)
	assert.Equal(t, domain.ReasonNotFound, result.Reason)
}

type fakeVerdictCache struct {
	verdicts map[string]domain.Result
	hits     int
}

func (c *fakeVerdictCache) Get(_ context.Context, name string) (*domain.Result, error) {
	if v, ok := c.verdicts[name]; ok {
		c.hits++
		return &v, nil
	}
	return nil, nil
}

func (c *fakeVerdictCache) Set(_ context.Context, name string, result domain.Result) error {
	c.verdicts[name] = result
	return nil
}

func TestVerifier_DirectCachesVerdicts(t *testing.T) {
	repo, db := newTestDomainRepo(t)
	cache := &fakeVerdictCache{verdicts: map[string]domain.Result{}}
	verifier := NewDirectVerifier(repo, cache, logger.NewLogger())
	ctx := context.Background()

	seedDomain(t, db, "cached.example.com", "active", true, false)

	first := verifier.Verify(ctx, "cached.example.com")
	require.True(t, first.Authorized)
	assert.Equal(t, 0, cache.hits)

	second := verifier.Verify(ctx, "cached.example.com")
	assert.Equal(t, first, second)
	assert.Equal(t, 1, cache.hits)
}

func remoteEndpoint(t *testing.T, result domain.Result) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/widget/verify", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data":    result,
		})
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestVerifier_RemoteAuthorized(t *testing.T) {
	server := remoteEndpoint(t, domain.Result{
		Authorized:   true,
		DomainExists: true,
		IsVerified:   true,
		Status:       "active",
		Message:      "domain is authorized",
		Reason:       domain.ReasonAuthorized,
	})

	verifier := NewRemoteVerifier(server.URL, time.Second, logger.NewLogger())

	result := verifier.Verify(context.Background(), "shop.example.com")
	assert.True(t, result.Authorized)
	assert.Equal(t, domain.ReasonAuthorized, result.Reason)
	assert.True(t, result.IsVerified)
}

func TestVerifier_RemoteUnreachableFailsClosed(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	verifier := NewRemoteVerifier(server.URL, time.Second, logger.NewLogger())

	result := verifier.Verify(context.Background(), "shop.example.com")
	assert.False(t, result.Authorized)
	assert.Equal(t, domain.ReasonValidationError, result.Reason)
}

func TestVerifier_RemoteServerErrorFailsClosed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	verifier := NewRemoteVerifier(server.URL, time.Second, logger.NewLogger())

	result := verifier.Verify(context.Background(), "shop.example.com")
	assert.False(t, result.Authorized)
	assert.Equal(t, domain.ReasonValidationError, result.Reason)
}

func TestVerifier_RemoteMalformedBodyFailsClosed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	t.Cleanup(server.Close)

	verifier := NewRemoteVerifier(server.URL, time.Second, logger.NewLogger())

	result := verifier.Verify(context.Background(), "shop.example.com")
	assert.False(t, result.Authorized)
	assert.Equal(t, domain.ReasonValidationError, result.Reason)
}

func TestVerifier_RemoteNotConfiguredFailsClosed(t *testing.T) {
	verifier := NewRemoteVerifier("", time.Second, logger.NewLogger())

	result := verifier.Verify(context.Background(), "shop.example.com")
	assert.False(t, result.Authorized)
	assert.Equal(t, domain.ReasonValidationError, result.Reason)
}
