package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/haofuwu/service-market/internal/app"
	"github.com/haofuwu/service-market/internal/core/domain"
	"github.com/haofuwu/service-market/internal/core/ports"
	"github.com/haofuwu/service-market/internal/infrastructure/db/memory"
)

func newTestRouter(t *testing.T, debug bool) *echo.Echo {
	t.Helper()
	kv := memory.NewKVStore()
	svc, err := app.NewServices(context.Background(), kv, app.Options{
		JWTSecret:  "test-secret",
		TokenTTL:   time.Hour,
		BcryptCost: bcrypt.MinCost,
		Seed:       true,
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("build services: %v", err)
	}
	return NewRouter(Deps{
		Log:        zerolog.Nop(),
		Auth:       svc.Auth,
		Market:     svc.Market,
		Stats:      svc.Stats,
		Checker:    svc.Checker,
		Guard:      svc.Guard,
		Readiness:  map[string]ports.Pinger{"kv": kv},
		Registerer: prometheus.NewRegistry(),
		Debug:      debug,
	})
}

func do(t *testing.T, e *echo.Echo, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
	return v
}

func login(t *testing.T, e *echo.Echo, username, password string) string {
	t.Helper()
	rec := do(t, e, http.MethodPost, "/api/auth/login", "", map[string]string{"username": username, "password": password})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d %s", username, rec.Code, rec.Body.String())
	}
	resp := decode[struct {
		Token string `json:"token"`
	}](t, rec)
	return resp.Token
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

func TestRouter_PublicReads(t *testing.T) {
	e := newTestRouter(t, false)

	rec := do(t, e, http.MethodGet, "/api/need?size=5", "", nil)
	expectStatus(t, rec, http.StatusOK)
	page := decode[struct {
		Records []domain.Need `json:"records"`
		Total   int           `json:"total"`
	}](t, rec)
	if page.Total != 32 || len(page.Records) != 5 {
		t.Fatalf("expected 32 seeded needs in pages of 5, got %d/%d", page.Total, len(page.Records))
	}

	expectStatus(t, do(t, e, http.MethodGet, "/api/need/detail/need_1", "", nil), http.StatusOK)
	expectStatus(t, do(t, e, http.MethodGet, "/api/need/detail/need_999", "", nil), http.StatusNotFound)
	expectStatus(t, do(t, e, http.MethodGet, "/api/service-self/detail/service_1", "", nil), http.StatusOK)
	expectStatus(t, do(t, e, http.MethodGet, "/api/user/detail/2", "", nil), http.StatusOK)
	expectStatus(t, do(t, e, http.MethodGet, "/health", "", nil), http.StatusOK)
	expectStatus(t, do(t, e, http.MethodGet, "/health/ready", "", nil), http.StatusOK)
}

func TestRouter_AuthRequired(t *testing.T) {
	e := newTestRouter(t, false)

	rec := do(t, e, http.MethodPost, "/api/need", "", map[string]string{"title": "x"})
	expectStatus(t, rec, http.StatusUnauthorized)
	if resp := decode[errorResponse](t, rec); resp.Error == "" {
		t.Fatalf("expected error envelope")
	}

	expectStatus(t, do(t, e, http.MethodGet, "/api/user/me", "garbage", nil), http.StatusUnauthorized)
	expectStatus(t, do(t, e, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "admin", "password": "wrong"}), http.StatusUnauthorized)
}

func TestRouter_RegisterAndCheckUsername(t *testing.T) {
	e := newTestRouter(t, false)

	rec := do(t, e, http.MethodGet, "/api/check-username?username=admin", "", nil)
	expectStatus(t, rec, http.StatusOK)
	if body := rec.Body.String(); !bytes.Contains([]byte(body), []byte(`"isUnique":false`)) {
		t.Fatalf("admin should be taken, got %s", body)
	}

	reg := map[string]string{"username": "carol", "password": "Cc123456", "phone": "13900000000"}
	expectStatus(t, do(t, e, http.MethodPost, "/api/auth/register", "", reg), http.StatusCreated)
	expectStatus(t, do(t, e, http.MethodPost, "/api/auth/register", "", reg), http.StatusConflict)

	weak := map[string]string{"username": "dave", "password": "123456", "phone": "13900000000"}
	expectStatus(t, do(t, e, http.MethodPost, "/api/auth/register", "", weak), http.StatusUnprocessableEntity)

	token := login(t, e, "carol", "Cc123456")
	rec = do(t, e, http.MethodGet, "/api/user/me", token, nil)
	expectStatus(t, rec, http.StatusOK)
	me := decode[domain.User](t, rec)
	if me.UserID != "4" || me.RealName != "carol" || me.PasswordHash != "" {
		t.Fatalf("unexpected profile: %+v", me)
	}

	rec = do(t, e, http.MethodPut, "/api/user/me", token, map[string]string{"intro": "hi"})
	expectStatus(t, rec, http.StatusOK)
	if decode[domain.User](t, rec).Intro != "hi" {
		t.Fatalf("intro not updated")
	}
}

func TestRouter_NeedAndOfferLifecycle(t *testing.T) {
	e := newTestRouter(t, false)
	owner := login(t, e, "putong", "Aa123456")
	provider := login(t, e, "koudaili", "Bb123456")

	rec := do(t, e, http.MethodPost, "/api/need", owner, map[string]any{
		"region": "Riverside", "serviceType": "cleaning", "title": "Window cleaning", "description": "two rooms",
	})
	expectStatus(t, rec, http.StatusCreated)
	need := decode[domain.Need](t, rec)

	expectStatus(t, do(t, e, http.MethodPut, "/api/need/"+need.NeedID, provider, map[string]string{"title": "mine now"}), http.StatusForbidden)
	expectStatus(t, do(t, e, http.MethodPut, "/api/need/"+need.NeedID, owner, map[string]string{"bogus": "x"}), http.StatusBadRequest)
	expectStatus(t, do(t, e, http.MethodPut, "/api/need/"+need.NeedID, owner, map[string]string{"title": "Window and door cleaning"}), http.StatusOK)

	rec = do(t, e, http.MethodPost, "/api/service-self", provider, map[string]any{
		"needId": need.NeedID, "serviceType": "cleaning", "title": "I can do it", "content": "tomorrow morning",
	})
	expectStatus(t, rec, http.StatusCreated)
	offer := decode[domain.ServiceOffer](t, rec)

	// The need now has a response and is frozen.
	expectStatus(t, do(t, e, http.MethodPut, "/api/need/"+need.NeedID, owner, map[string]string{"title": "changed"}), http.StatusConflict)
	expectStatus(t, do(t, e, http.MethodDelete, "/api/need/"+need.NeedID, owner, nil), http.StatusConflict)

	rec = do(t, e, http.MethodGet, "/api/need/"+need.NeedID+"/services", "", nil)
	expectStatus(t, rec, http.StatusOK)
	if offers := decode[[]domain.ServiceOffer](t, rec); len(offers) != 1 {
		t.Fatalf("expected 1 offer, got %d", len(offers))
	}

	expectStatus(t, do(t, e, http.MethodPost, "/api/service-self/"+offer.ServiceID+"/accept", provider, nil), http.StatusForbidden)
	rec = do(t, e, http.MethodPost, "/api/service-self/"+offer.ServiceID+"/accept", owner, nil)
	expectStatus(t, rec, http.StatusOK)
	if decode[domain.ServiceOffer](t, rec).Status != domain.OfferAccepted {
		t.Fatalf("offer not accepted")
	}
	expectStatus(t, do(t, e, http.MethodPost, "/api/service-self/"+offer.ServiceID+"/reject", owner, nil), http.StatusConflict)

	rec = do(t, e, http.MethodGet, "/api/service-self/my-list", provider, nil)
	expectStatus(t, rec, http.StatusOK)
	mine := decode[[]domain.ServiceOffer](t, rec)
	found := false
	for _, o := range mine {
		found = found || o.ServiceID == offer.ServiceID
	}
	if !found {
		t.Fatalf("new offer missing from provider's list")
	}

	expectStatus(t, do(t, e, http.MethodPost, "/api/need/"+need.NeedID+"/cancel", owner, nil), http.StatusOK)
	expectStatus(t, do(t, e, http.MethodPost, "/api/need/"+need.NeedID+"/cancel", owner, nil), http.StatusConflict)
}

func TestRouter_AdminStats(t *testing.T) {
	e := newTestRouter(t, false)

	expectStatus(t, do(t, e, http.MethodGet, "/api/admin/stats", "", nil), http.StatusUnauthorized)
	expectStatus(t, do(t, e, http.MethodGet, "/api/admin/stats", login(t, e, "putong", "Aa123456"), nil), http.StatusForbidden)

	admin := login(t, e, "admin", "Ww123456")
	rec := do(t, e, http.MethodGet, "/api/admin/stats?startMonth=2025-09&endMonth=2025-09", admin, nil)
	expectStatus(t, rec, http.StatusOK)
	res := decode[struct {
		TotalNeed int `json:"totalNeed"`
	}](t, rec)
	if res.TotalNeed != 32 {
		t.Fatalf("expected 32 needs in 2025-09, got %d", res.TotalNeed)
	}

	expectStatus(t, do(t, e, http.MethodGet, "/api/admin/stats?startMonth=2025-13", admin, nil), http.StatusUnprocessableEntity)
}

func TestRouter_RouteGuard(t *testing.T) {
	e := newTestRouter(t, false)

	rec := do(t, e, http.MethodGet, "/api/route-guard?to=/need/list", "", nil)
	expectStatus(t, rec, http.StatusOK)
	d := decode[struct {
		Outcome  string `json:"outcome"`
		Location string `json:"location"`
	}](t, rec)
	if d.Outcome != "redirect" || d.Location != "/login?redirect=%2Fneed%2Flist" {
		t.Fatalf("unexpected anonymous decision: %+v", d)
	}

	// A bad token is evaluated as anonymous rather than rejected.
	expectStatus(t, do(t, e, http.MethodGet, "/api/route-guard?to=/need/list", "garbage", nil), http.StatusOK)

	rec = do(t, e, http.MethodGet, "/api/route-guard?to=/login", login(t, e, "putong", "Aa123456"), nil)
	d = decode[struct {
		Outcome  string `json:"outcome"`
		Location string `json:"location"`
	}](t, rec)
	if d.Outcome != "redirect" || d.Location != "/home" {
		t.Fatalf("logged-in user should be sent home, got %+v", d)
	}

	expectStatus(t, do(t, e, http.MethodGet, "/api/route-guard", "", nil), http.StatusUnprocessableEntity)
}

func TestRouter_DebugRoutes(t *testing.T) {
	expectStatus(t, do(t, newTestRouter(t, false), http.MethodGet, "/debug/routes", "", nil), http.StatusNotFound)
	expectStatus(t, do(t, newTestRouter(t, true), http.MethodGet, "/debug/routes", "", nil), http.StatusOK)
}
