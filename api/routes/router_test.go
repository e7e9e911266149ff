package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/merlotworks/wineclub-backend/internal/auth"
	"github.com/merlotworks/wineclub-backend/internal/catalog"
	"github.com/merlotworks/wineclub-backend/internal/dashboard"
	"github.com/merlotworks/wineclub-backend/internal/fulfillment"
	"github.com/merlotworks/wineclub-backend/internal/members"
	"github.com/merlotworks/wineclub-backend/internal/plans"
	"github.com/merlotworks/wineclub-backend/internal/preferences"
	pkgAuth "github.com/merlotworks/wineclub-backend/pkg/auth"
	"github.com/merlotworks/wineclub-backend/pkg/config"
	"github.com/merlotworks/wineclub-backend/pkg/enums"
	"github.com/merlotworks/wineclub-backend/pkg/logger"
	"github.com/merlotworks/wineclub-backend/pkg/pagination"
)

var errStub = fmt.Errorf("not implemented")

type stubAuthService struct{}

func (stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	return nil, errStub
}

type stubCatalogService struct{}

func (stubCatalogService) Query(ctx context.Context, input catalog.QueryInput) (*catalog.QueryResult, error) {
	return &catalog.QueryResult{DemoMode: true}, nil
}

type stubDashboardService struct{}

func (stubDashboardService) GetStats(ctx context.Context) (*dashboard.Stats, error) {
	return nil, errStub
}

type stubPlanService struct{}

func (stubPlanService) CreatePlan(ctx context.Context, input plans.CreatePlanInput) (*plans.PlanDTO, error) {
	return nil, errStub
}

func (stubPlanService) UpdatePlan(ctx context.Context, planID uuid.UUID, input plans.UpdatePlanInput) (*plans.PlanDTO, error) {
	return nil, errStub
}

func (stubPlanService) GetPlan(ctx context.Context, planID uuid.UUID) (*plans.PlanDTO, error) {
	return nil, errStub
}

func (stubPlanService) ListPlans(ctx context.Context, activeOnly bool) ([]plans.PlanDTO, error) {
	return []plans.PlanDTO{}, nil
}

type stubMemberService struct{}

func (stubMemberService) CreateMember(ctx context.Context, input members.CreateMemberInput) (*members.MemberDTO, error) {
	return nil, errStub
}

func (stubMemberService) UpdateMember(ctx context.Context, memberID uuid.UUID, input members.UpdateMemberInput) (*members.MemberDTO, error) {
	return nil, errStub
}

func (stubMemberService) GetMember(ctx context.Context, memberID uuid.UUID) (*members.MemberDTO, error) {
	return nil, errStub
}

func (stubMemberService) ListMembers(ctx context.Context, filters members.ListMembersFilters, page pagination.Params) (*members.MemberPage, error) {
	return &members.MemberPage{Members: []members.MemberDTO{}}, nil
}

type stubPreferenceService struct{}

func (stubPreferenceService) SavePreference(ctx context.Context, input preferences.SavePreferenceInput) (*preferences.Preference, error) {
	return nil, errStub
}

func (stubPreferenceService) GetPreference(ctx context.Context, memberID uuid.UUID, window string) (*preferences.Preference, error) {
	return nil, errStub
}

func (stubPreferenceService) ListPreferences(ctx context.Context, memberID uuid.UUID) ([]preferences.Preference, error) {
	return []preferences.Preference{}, nil
}

func (stubPreferenceService) DeletePreference(ctx context.Context, memberID uuid.UUID, window string) error {
	return errStub
}

func (stubPreferenceService) Checkout(ctx context.Context, input preferences.CheckoutInput) (*preferences.CheckoutResult, error) {
	return nil, errStub
}

type stubFulfillmentService struct{}

func (stubFulfillmentService) ImportOrder(ctx context.Context, input fulfillment.ImportOrderInput) (*fulfillment.OrderDTO, error) {
	return nil, errStub
}

func (stubFulfillmentService) GetOrder(ctx context.Context, orderID uuid.UUID) (*fulfillment.OrderDTO, error) {
	return nil, errStub
}

func (stubFulfillmentService) ListOrders(ctx context.Context, stage enums.OrderStage) ([]fulfillment.OrderDTO, error) {
	return []fulfillment.OrderDTO{}, nil
}

func (stubFulfillmentService) SetLineItemStatus(ctx context.Context, orderID, itemID uuid.UUID, status enums.LineItemStatus) (*fulfillment.OrderDTO, error) {
	return nil, errStub
}

func (stubFulfillmentService) MarkReadyToShip(ctx context.Context, input fulfillment.MarkReadyToShipInput) (*fulfillment.OrderDTO, error) {
	return nil, errStub
}

func (stubFulfillmentService) Approve(ctx context.Context, orderIDs []uuid.UUID, actor string) error {
	return errStub
}

func (stubFulfillmentService) Ship(ctx context.Context, orderIDs []uuid.UUID, trackingByID map[uuid.UUID]string, actor string) error {
	return errStub
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "8080", LogLevel: "disabled"},
		JWT: config.JWTConfig{
			Secret:            "router-test-secret",
			Issuer:            "wineclub-test",
			ExpirationMinutes: 15,
		},
	}
}

func newTestRouter(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "router-test", Level: zerolog.Disabled})
	return NewRouter(
		cfg,
		logg,
		nil,
		nil,
		stubAuthService{},
		stubCatalogService{},
		stubDashboardService{},
		stubPlanService{},
		stubMemberService{},
		stubPreferenceService{},
		stubFulfillmentService{},
	)
}

func mintToken(t *testing.T, cfg *config.Config) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		AdminID:     uuid.New(),
		Email:       "ops@example.com",
		DisplayName: "Ops",
	})
	if err != nil {
		t.Fatalf("minting token: %v", err)
	}
	return token
}

func TestHealthLive(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("X-WineClub-Env"); got != "test" {
		t.Fatalf("expected env header test, got %q", got)
	}
}

func TestHealthReadyWithoutBackingStores(t *testing.T) {
	router := newTestRouter(t, testConfig())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestMetricsEndpointExposed(t *testing.T) {
	router := newTestRouter(t, testConfig())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAdminRoutesRequireAuth(t *testing.T) {
	router := newTestRouter(t, testConfig())

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/admin/ping"},
		{http.MethodGet, "/api/admin/catalog"},
		{http.MethodGet, "/api/admin/dashboard"},
		{http.MethodGet, "/api/admin/plans/"},
		{http.MethodPost, "/api/admin/members/"},
		{http.MethodGet, "/api/admin/fulfillment/orders"},
		{http.MethodPost, "/api/admin/fulfillment/approve"},
	}
	for _, tc := range paths {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401, got %d", tc.method, tc.path, rec.Code)
		}
	}
}

func TestAdminPingWithToken(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, cfg))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCatalogRouteReturnsDemoPayload(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/catalog?limit=5", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, cfg))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var envelope struct {
		Data catalog.QueryResult `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if !envelope.Data.DemoMode {
		t.Fatal("expected demo mode flag in catalog payload")
	}
}

func TestLoginRejectsMalformedBody(t *testing.T) {
	router := newTestRouter(t, testConfig())

	body := bytes.NewBufferString(`{"email":"not-an-email"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", body)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestUnknownRouteReturns404(t *testing.T) {
	router := newTestRouter(t, testConfig())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/unknown", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
