// Package handler содержит HTTP-обработчики поверхности кухонного дисплея.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mmeshcher/kitchen-display/internal/backend"
	"github.com/mmeshcher/kitchen-display/internal/model"
	"github.com/mmeshcher/kitchen-display/internal/receipt"
	"github.com/mmeshcher/kitchen-display/internal/session"
)

// Core определяет контракт ядра дисплея, используемый HTTP-обработчиками.
type Core interface {
	Tick(ctx context.Context)
	Orders() []model.Order
	VisibleOrders() []model.Order
	Notifications() []model.Order
	Selected() (model.Order, bool)
	SlideIndex() int
	SelectOrder(id string) bool
	Swipe(direction string)
	SetFilterStatus(status string)
	SetFilterType(typ string)
	SetSearch(query string)
	Filters() (status, typ, search string)
	ChangeStatus(ctx context.Context, id, newStatus string) error
	MarkAsRead(ctx context.Context, id string) error
}

// Auth определяет контракт входа и выхода на бэкенде.
type Auth interface {
	Login(ctx context.Context, name, password string) (*backend.LoginResponse, error)
	Logout(ctx context.Context) error
}

// Sessions определяет контракт хранилища сессии.
type Sessions interface {
	Set(sess session.Session) error
	Clear() error
	Current() (session.Session, bool)
	IsAuthenticated() bool
}

// Handler реализует HTTP-обработчики дисплея.
type Handler struct {
	core     Core
	auth     Auth
	sessions Sessions
	logger   *zap.Logger
	metrics  http.Handler
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(core Core, auth Auth, sessions Sessions, logger *zap.Logger, metrics http.Handler) *Handler {
	return &Handler{
		core:     core,
		auth:     auth,
		sessions: sessions,
		logger:   logger,
		metrics:  metrics,
	}
}

type credentialsRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type chefResponse struct {
	Name   string `json:"name"`
	Branch string `json:"branch"`
}

// Login выполняет вход кухни и сохраняет сессию.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	// Проверка полей до любого сетевого вызова.
	if req.Name == "" {
		http.Error(w, "please enter your username", http.StatusBadRequest)
		return
	}
	if req.Password == "" {
		http.Error(w, "please enter your password", http.StatusBadRequest)
		return
	}

	res, err := h.auth.Login(r.Context(), req.Name, req.Password)
	if err != nil {
		if errors.Is(err, backend.ErrUnauthenticated) {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		h.logger.Error("login error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		return
	}

	sess := session.Session{
		Token:   res.Token,
		Kitchen: res.Kitchen.Name,
		Branch:  res.Kitchen.Branch.Name,
	}
	if err := h.sessions.Set(sess); err != nil {
		h.logger.Error("save session error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	// Немедленный опрос, чтобы дисплей заполнился сразу после входа.
	h.core.Tick(r.Context())

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(chefResponse{Name: sess.Kitchen, Branch: sess.Branch}); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
}

// Logout завершает сессию. Локальная сессия сбрасывается даже при сбое бэкенда.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context()); err != nil {
		h.logger.Warn("backend logout error", zap.Error(err))
	}
	if err := h.sessions.Clear(); err != nil {
		h.logger.Error("clear session error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

type stateResponse struct {
	Chef          chefResponse    `json:"chef"`
	Orders        []model.Order   `json:"orders"`
	Selected      *model.Order    `json:"selected"`
	SlideIndex    int             `json:"slideIndex"`
	Notifications int             `json:"notifications"`
	Filters       filtersResponse `json:"filters"`
}

type filtersResponse struct {
	Status string `json:"status"`
	Type   string `json:"type"`
	Search string `json:"search"`
}

// GetState возвращает полное состояние дисплея одним ответом.
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	status, typ, search := h.core.Filters()

	resp := stateResponse{
		Chef:          h.chef(),
		Orders:        h.core.VisibleOrders(),
		SlideIndex:    h.core.SlideIndex(),
		Notifications: len(h.core.Notifications()),
		Filters:       filtersResponse{Status: status, Type: typ, Search: search},
	}
	if sel, ok := h.core.Selected(); ok {
		resp.Selected = &sel
	}

	writeJSON(w, resp)
}

// GetOrders возвращает видимые заказы. Параметры status, type и q, если
// заданы, обновляют фильтры дисплея.
func (h *Handler) GetOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Has("status") {
		h.core.SetFilterStatus(q.Get("status"))
	}
	if q.Has("type") {
		h.core.SetFilterType(q.Get("type"))
	}
	if q.Has("q") {
		h.core.SetSearch(q.Get("q"))
	}

	writeJSON(w, h.core.VisibleOrders())
}

// GetNotifications возвращает список уведомлений.
func (h *Handler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.core.Notifications())
}

// SelectOrder делает заказ выбранным.
func (h *Handler) SelectOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "orderID")
	if !h.core.SelectOrder(id) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusOK)
}

type statusRequest struct {
	Status string `json:"status"`
}

// ChangeStatus меняет статус заказа.
func (h *Handler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "orderID")

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Status == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := h.core.ChangeStatus(r.Context(), id, req.Status); err != nil {
		h.logger.Error("change status error", zap.Error(err), zap.String("order", id))
		http.Error(w, "failed to update order status", http.StatusBadGateway)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// MarkAsRead помечает заказ прочитанным.
func (h *Handler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "orderID")

	if err := h.core.MarkAsRead(r.Context(), id); err != nil {
		h.logger.Error("mark as read error", zap.Error(err), zap.String("order", id))
		http.Error(w, "failed to mark order as read", http.StatusBadGateway)
		return
	}
	w.WriteHeader(http.StatusOK)
}

type swipeRequest struct {
	Direction string `json:"direction"`
}

// Swipe листает заказы влево или вправо.
func (h *Handler) Swipe(w http.ResponseWriter, r *http.Request) {
	var req swipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if req.Direction != "left" && req.Direction != "right" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	h.core.Swipe(req.Direction)
	w.WriteHeader(http.StatusOK)
}

// GetReceipt возвращает текстовый чек заказа.
func (h *Handler) GetReceipt(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "orderID")

	var found *model.Order
	for _, o := range h.core.Orders() {
		if o.ID == id {
			found = &o
			break
		}
	}
	if found == nil {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	}

	chef := h.chef()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(receipt.Render(*found, chef.Name, chef.Branch)))
}

func (h *Handler) chef() chefResponse {
	sess, ok := h.sessions.Current()
	if !ok || sess.Kitchen == "" {
		return chefResponse{Name: "Unknown Chef", Branch: "Main Kitchen"}
	}
	branch := sess.Branch
	if branch == "" {
		branch = "Main Kitchen"
	}
	return chefResponse{Name: sess.Kitchen, Branch: branch}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
