package handler

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/mmeshcher/kitchen-display/internal/backend"
	"github.com/mmeshcher/kitchen-display/internal/model"
	"github.com/mmeshcher/kitchen-display/internal/session"
)

type stubCore struct {
	orders        []model.Order
	notifications []model.Order
	selected      *model.Order

	filterStatus string
	filterType   string
	search       string

	tickCalls   int
	changeErr   error
	markErr     error
	selectedIDs []string
	swipes      []string
}

func (c *stubCore) Tick(ctx context.Context) { c.tickCalls++ }

func (c *stubCore) Orders() []model.Order { return c.orders }

func (c *stubCore) VisibleOrders() []model.Order { return c.orders }

func (c *stubCore) Notifications() []model.Order { return c.notifications }

func (c *stubCore) Selected() (model.Order, bool) {
	if c.selected == nil {
		return model.Order{}, false
	}
	return *c.selected, true
}

func (c *stubCore) SlideIndex() int { return 0 }

func (c *stubCore) SelectOrder(id string) bool {
	c.selectedIDs = append(c.selectedIDs, id)
	for _, o := range c.orders {
		if o.ID == id {
			return true
		}
	}
	return false
}

func (c *stubCore) Swipe(direction string) { c.swipes = append(c.swipes, direction) }

func (c *stubCore) SetFilterStatus(status string) { c.filterStatus = status }

func (c *stubCore) SetFilterType(typ string) { c.filterType = typ }

func (c *stubCore) SetSearch(query string) { c.search = query }

func (c *stubCore) Filters() (string, string, string) {
	return c.filterStatus, c.filterType, c.search
}

func (c *stubCore) ChangeStatus(ctx context.Context, id, newStatus string) error {
	return c.changeErr
}

func (c *stubCore) MarkAsRead(ctx context.Context, id string) error {
	return c.markErr
}

type stubAuth struct {
	loginResp  *backend.LoginResponse
	loginErr   error
	loginCalls int
	logoutErr  error
}

func (a *stubAuth) Login(ctx context.Context, name, password string) (*backend.LoginResponse, error) {
	a.loginCalls++
	return a.loginResp, a.loginErr
}

func (a *stubAuth) Logout(ctx context.Context) error { return a.logoutErr }

type stubSessions struct {
	current *session.Session
	setErr  error
}

func (s *stubSessions) Set(sess session.Session) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.current = &sess
	return nil
}

func (s *stubSessions) Clear() error {
	s.current = nil
	return nil
}

func (s *stubSessions) Current() (session.Session, bool) {
	if s.current == nil {
		return session.Session{}, false
	}
	return *s.current, true
}

func (s *stubSessions) IsAuthenticated() bool { return s.current != nil }

func loginResponse(token, kitchen, branch string) *backend.LoginResponse {
	resp := &backend.LoginResponse{Token: token}
	resp.Kitchen.Name = kitchen
	resp.Kitchen.Branch.Name = branch
	return resp
}

func authedSessions() *stubSessions {
	return &stubSessions{current: &session.Session{Token: "t", Kitchen: "Main", Branch: "Downtown"}}
}

func TestLogin_ValidationBeforeNetwork(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing name", body: `{"password":"secret"}`},
		{name: "missing password", body: `{"name":"chef"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := &stubAuth{}
			h := NewHandler(&stubCore{}, auth, &stubSessions{}, zap.NewNop(), nil)
			router := h.SetupRouter()

			req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
			if auth.loginCalls != 0 {
				t.Fatalf("validation failure must not reach the backend")
			}
		})
	}
}

func TestLogin_SavesSessionAndTicks(t *testing.T) {
	core := &stubCore{}
	auth := &stubAuth{loginResp: loginResponse("token-1", "Main", "Downtown")}
	sessions := &stubSessions{}
	h := NewHandler(core, auth, sessions, zap.NewNop(), nil)
	router := h.SetupRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{"name":"chef","password":"secret"}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %q", w.Code, w.Body.String())
	}

	sess, ok := sessions.Current()
	if !ok || sess.Token != "token-1" || sess.Kitchen != "Main" || sess.Branch != "Downtown" {
		t.Fatalf("session = %+v (ok=%v)", sess, ok)
	}
	if core.tickCalls != 1 {
		t.Fatalf("login must trigger an immediate poll, got %d ticks", core.tickCalls)
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	auth := &stubAuth{loginErr: backend.ErrUnauthenticated}
	h := NewHandler(&stubCore{}, auth, &stubSessions{}, zap.NewNop(), nil)
	router := h.SetupRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{"name":"chef","password":"wrong"}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestLogout_ClearsSessionDespiteBackendError(t *testing.T) {
	sessions := authedSessions()
	auth := &stubAuth{logoutErr: errors.New("backend down")}
	h := NewHandler(&stubCore{}, auth, sessions, zap.NewNop(), nil)
	router := h.SetupRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/logout", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if sessions.IsAuthenticated() {
		t.Fatalf("local session must be cleared even when the backend call fails")
	}
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	h := NewHandler(&stubCore{}, &stubAuth{}, &stubSessions{}, zap.NewNop(), nil)
	router := h.SetupRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/state", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 without session", w.Code)
	}
}

func TestGetOrders_AppliesQueryFilters(t *testing.T) {
	core := &stubCore{filterStatus: "preparing", filterType: "all"}
	h := NewHandler(core, &stubAuth{}, authedSessions(), zap.NewNop(), nil)
	router := h.SetupRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/orders?status=done&type=dine+in&q=pizza", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if core.filterStatus != "done" || core.filterType != "dine in" || core.search != "pizza" {
		t.Fatalf("filters = %q/%q/%q", core.filterStatus, core.filterType, core.search)
	}
}

func TestChangeStatus(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		changeErr  error
		wantStatus int
	}{
		{name: "ok", body: `{"status":"done"}`, wantStatus: http.StatusOK},
		{name: "empty status", body: `{}`, wantStatus: http.StatusBadRequest},
		{name: "mutation failure", body: `{"status":"done"}`, changeErr: errors.New("boom"), wantStatus: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core := &stubCore{changeErr: tt.changeErr}
			h := NewHandler(core, &stubAuth{}, authedSessions(), zap.NewNop(), nil)
			router := h.SetupRouter()

			req := httptest.NewRequest(http.MethodPost, "/api/orders/42/status", bytes.NewReader([]byte(tt.body)))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestSelectOrder_NotFound(t *testing.T) {
	core := &stubCore{orders: []model.Order{{ID: "1"}}}
	h := NewHandler(core, &stubAuth{}, authedSessions(), zap.NewNop(), nil)
	router := h.SetupRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/orders/404/select", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestSwipe_RejectsUnknownDirection(t *testing.T) {
	core := &stubCore{}
	h := NewHandler(core, &stubAuth{}, authedSessions(), zap.NewNop(), nil)
	router := h.SetupRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/swipe", strings.NewReader(`{"direction":"up"}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if len(core.swipes) != 0 {
		t.Fatalf("invalid direction must not reach the core")
	}
}

func TestGetReceipt(t *testing.T) {
	core := &stubCore{orders: []model.Order{{ID: "42", Type: model.OrderTypeTakeAway, Total: 20}}}
	h := NewHandler(core, &stubAuth{}, authedSessions(), zap.NewNop(), nil)
	router := h.SetupRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/orders/42/receipt", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("content-type = %q, want text/plain", ct)
	}
	if !strings.Contains(w.Body.String(), "Order #42") {
		t.Fatalf("receipt body: %q", w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/orders/404/receipt", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 for unknown order", w.Code)
	}
}

func TestGetState(t *testing.T) {
	sel := model.Order{ID: "1", Type: model.OrderTypeDineIn}
	core := &stubCore{
		orders:        []model.Order{sel},
		notifications: []model.Order{sel},
		selected:      &sel,
		filterStatus:  "preparing",
		filterType:    "all",
	}
	h := NewHandler(core, &stubAuth{}, authedSessions(), zap.NewNop(), nil)
	router := h.SetupRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/state", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{`"chef"`, `"Main"`, `"orders"`, `"selected"`, `"notifications":1`, `"status":"preparing"`} {
		if !strings.Contains(body, want) {
			t.Fatalf("state body does not contain %s: %s", want, body)
		}
	}
}
