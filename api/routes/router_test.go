package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	cartsvc "github.com/hendrawijaya/shopfront-backend/internal/cart"
	"github.com/hendrawijaya/shopfront-backend/internal/catalog"
	"github.com/hendrawijaya/shopfront-backend/pkg/config"
)

type nopPinger struct{}

func (nopPinger) Ping(ctx context.Context) error { return nil }

type nopCart struct{}

func (nopCart) Add(ctx context.Context, sessionID string, line cartsvc.Line) error { return nil }
func (nopCart) Update(ctx context.Context, sessionID string, productID uuid.UUID, quantity int) error {
	return nil
}
func (nopCart) Remove(ctx context.Context, sessionID string, productID uuid.UUID) error { return nil }
func (nopCart) Clear(ctx context.Context, sessionID string) error                       { return nil }
func (nopCart) Content(ctx context.Context, sessionID string) ([]cartsvc.Line, error) {
	return nil, nil
}
func (nopCart) Total(ctx context.Context, sessionID string) (decimal.Decimal, error) {
	return decimal.Zero, nil
}
func (nopCart) TotalQuantity(ctx context.Context, sessionID string) (int, error) { return 0, nil }

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	svc, err := catalog.NewService(catalog.NewRepository(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return NewRouter(Deps{
		Config: &config.Config{
			App: config.AppConfig{Env: "test", Port: "8080"},
			Cart: config.CartConfig{
				SessionTTL:    time.Hour,
				SessionCookie: "sf_session",
			},
		},
		DB:      nopPinger{},
		Redis:   nopPinger{},
		Cart:    nopCart{},
		Catalog: svc,
	})
}

func TestHealthLiveRoute(t *testing.T) {
	t.Parallel()

	router := testRouter(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("X-Shopfront-Env") != "test" {
		t.Fatalf("missing env header")
	}
}

func TestCartRouteIssuesSessionCookie(t *testing.T) {
	t.Parallel()

	router := testRouter(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "sf_session" {
		t.Fatalf("expected session cookie, got %+v", cookies)
	}
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	t.Parallel()

	router := testRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/v1/orders", nil))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without role, got %d", rec.Code)
	}
}

func TestUserOrdersRequireUser(t *testing.T) {
	t.Parallel()

	router := testRouter(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without user header, got %d", rec.Code)
	}
}
