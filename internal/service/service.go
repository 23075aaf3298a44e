// Package service реализует опрос бэкенда и согласование состояния дисплея.
package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/kitchen-display/internal/backend"
	"github.com/mmeshcher/kitchen-display/internal/metrics"
	"github.com/mmeshcher/kitchen-display/internal/model"
	"github.com/mmeshcher/kitchen-display/internal/transform"
)

// PollInterval — период опроса бэкенда.
const PollInterval = 30 * time.Second

// Backend описывает контракт удалённого API, используемый дисплеем.
type Backend interface {
	FetchOrders(ctx context.Context) ([]model.RawOrder, error)
	FetchNotifications(ctx context.Context) ([]model.RawOrder, error)
	ChangeDoneStatus(ctx context.Context, orderID, status string) error
	MarkRead(ctx context.Context, orderID string) error
}

// Notifier показывает пользователю уведомления об исходе его действий.
type Notifier interface {
	Success(text string)
	Error(text string)
}

// Service владеет локальным состоянием дисплея: списками заказов и
// уведомлений, выбранным заказом и фильтрами. Состояние — зеркало бэкенда,
// целиком пересобираемое на каждом опросе; оптимистичные правки живут до
// следующего успешного опроса и могут быть им перекрыты, если бэкенд ещё не
// применил мутацию. Это принятая модель согласованности, а не дефект.
type Service struct {
	backend        Backend
	logger         *zap.Logger
	notifier       Notifier
	reg            *metrics.Registry
	onUnauthorized func()
	now            func() time.Time

	mu            sync.Mutex
	orders        []model.Order
	notifications []model.Order
	selected      *model.Order
	slideIndex    int
	filterStatus  string
	filterType    string
	search        string
}

// NewService создаёт сервис дисплея. Notifier, реестр метрик и обработчик
// потери сессии могут быть nil.
func NewService(b Backend, logger *zap.Logger, notifier Notifier, reg *metrics.Registry, onUnauthorized func()) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		backend:        b,
		logger:         logger,
		notifier:       notifier,
		reg:            reg,
		onUnauthorized: onUnauthorized,
		now:            time.Now,
		filterStatus:   "preparing",
		filterType:     "all",
	}
}

// Run выполняет первый опрос немедленно и далее каждые PollInterval,
// пока контекст не отменён. Таймер освобождается при выходе.
func (s *Service) Run(ctx context.Context) {
	s.Tick(ctx)

	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick выполняет один цикл опроса: забирает обе пачки, прогоняет через
// трансформер и целиком заменяет соответствующие коллекции. Неудавшаяся
// выборка оставляет свою коллекцию нетронутой, частичной перезаписи нет;
// каждая коллекция живёт по принципу "последняя выборка побеждает".
func (s *Service) Tick(ctx context.Context) {
	if s.reg != nil {
		s.reg.PollTicks.Inc()
	}

	rawOrders, ordersErr := s.backend.FetchOrders(ctx)
	if ordersErr != nil {
		s.handlePollError("orders", ordersErr)
	}

	rawNotifications, notificationsErr := s.backend.FetchNotifications(ctx)
	if notificationsErr != nil {
		s.handlePollError("notifications", notificationsErr)
	}

	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if ordersErr == nil {
		s.reconcileOrders(transform.Orders(rawOrders, now))
	}
	if notificationsErr == nil {
		s.notifications = transform.Orders(rawNotifications, now)
	}
}

// reconcileOrders заменяет список заказов и чинит выбор. Пустой выбор при
// непустой пачке получает первый заказ; живой выбор освежается копией из
// новой пачки; выбор, чей id из пачки исчез, откатывается на первый заказ
// (политика принятая взамен висячей ссылки исходника). Вызывается под mu.
func (s *Service) reconcileOrders(orders []model.Order) {
	s.orders = orders

	if len(orders) == 0 {
		s.selected = nil
		s.slideIndex = 0
		return
	}

	if s.selected != nil {
		if idx := indexByID(orders, s.selected.ID); idx >= 0 {
			o := orders[idx]
			s.selected = &o
			s.slideIndex = idx
			return
		}
	}

	o := orders[0]
	s.selected = &o
	s.slideIndex = 0
}

func (s *Service) handlePollError(batch string, err error) {
	// Нет токена — опрашивать нечего, это не сбой.
	if errors.Is(err, backend.ErrNoToken) {
		return
	}
	if s.reg != nil {
		s.reg.PollFailures.Inc()
	}
	if errors.Is(err, backend.ErrUnauthenticated) {
		s.logger.Warn("session expired during poll", zap.String("batch", batch))
		s.unauthorized()
		return
	}
	// Пропущенный цикл не показывается пользователю, следующий опрос повторит.
	s.logger.Warn("poll failed", zap.String("batch", batch), zap.Error(err))
}

func (s *Service) unauthorized() {
	if s.onUnauthorized != nil {
		s.onUnauthorized()
	}
}

// SelectOrder делает заказ с данным id выбранным. Если id в списке нет,
// выбор не меняется и возвращается false.
func (s *Service) SelectOrder(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := indexByID(s.orders, id)
	if idx < 0 {
		return false
	}

	o := s.orders[idx]
	s.selected = &o
	s.slideIndex = idx
	return true
}

// Swipe листает заказы: "left" — вперёд, "right" — назад. Индекс зажат в
// границах списка, выбор следует за индексом.
func (s *Service) Swipe(direction string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch direction {
	case "left":
		if s.slideIndex < len(s.orders)-1 {
			s.slideIndex++
		}
	case "right":
		if s.slideIndex > 0 {
			s.slideIndex--
		}
	}

	if s.slideIndex >= 0 && s.slideIndex < len(s.orders) {
		o := s.orders[s.slideIndex]
		s.selected = &o
	}
}

// ChangeStatus меняет статус заказа на бэкенде. При успехе статус
// оптимистично правится локально и запускается внеочередной опрос для
// сверки с бэкендом. При неудаче локальное состояние не меняется, сбой
// показывается пользователю, повторов нет.
func (s *Service) ChangeStatus(ctx context.Context, id, newStatus string) error {
	if err := s.backend.ChangeDoneStatus(ctx, id, newStatus); err != nil {
		s.mutationFailed("status", err)
		s.notifyError("Failed to update order status")
		return err
	}
	if s.reg != nil {
		s.reg.StatusChanges.WithLabelValues("success").Inc()
	}

	s.mu.Lock()
	for i := range s.orders {
		if s.orders[i].ID == id {
			s.orders[i].Status = newStatus
		}
	}
	if s.selected != nil && s.selected.ID == id {
		s.selected.Status = newStatus
	}
	s.mu.Unlock()

	s.notifySuccess("Order status updated")
	s.Tick(ctx)
	return nil
}

// MarkAsRead помечает заказ прочитанным на бэкенде. При успехе заказ
// оптимистично получает read=true, уходит из списка уведомлений и
// запускается сверяющий опрос. При неудаче состояние не меняется.
func (s *Service) MarkAsRead(ctx context.Context, id string) error {
	if err := s.backend.MarkRead(ctx, id); err != nil {
		s.mutationFailed("read", err)
		s.notifyError("Failed to mark order as read")
		return err
	}
	if s.reg != nil {
		s.reg.MarkAsRead.WithLabelValues("success").Inc()
	}

	s.mu.Lock()
	for i := range s.orders {
		if s.orders[i].ID == id {
			s.orders[i].Read = true
		}
	}
	kept := s.notifications[:0]
	for _, n := range s.notifications {
		if n.ID != id {
			kept = append(kept, n)
		}
	}
	s.notifications = kept
	if s.selected != nil && s.selected.ID == id {
		s.selected.Read = true
	}
	s.mu.Unlock()

	s.notifySuccess("Order marked as read")
	s.Tick(ctx)
	return nil
}

func (s *Service) mutationFailed(kind string, err error) {
	if s.reg != nil {
		switch kind {
		case "status":
			s.reg.StatusChanges.WithLabelValues("failure").Inc()
		case "read":
			s.reg.MarkAsRead.WithLabelValues("failure").Inc()
		}
	}
	if errors.Is(err, backend.ErrUnauthenticated) {
		s.unauthorized()
	}
	s.logger.Error("mutation failed", zap.String("kind", kind), zap.Error(err))
}

// SetFilterStatus задаёт фильтр по статусу ("all" или точное значение).
func (s *Service) SetFilterStatus(status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filterStatus = status
}

// SetFilterType задаёт фильтр по способу выдачи ("all" или точное значение).
func (s *Service) SetFilterType(typ string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filterType = typ
}

// SetSearch задаёт поисковую строку.
func (s *Service) SetSearch(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.search = query
}

// Filters возвращает текущие фильтры: статус, способ выдачи, поиск.
func (s *Service) Filters() (string, string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filterStatus, s.filterType, s.search
}

// VisibleOrders возвращает заказы, проходящие конъюнкцию трёх фильтров.
// Список выводится заново на каждый запрос, состояние не мутируется.
func (s *Service) VisibleOrders() []model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	visible := make([]model.Order, 0, len(s.orders))
	for _, o := range s.orders {
		if matchesFilters(o, s.filterStatus, s.filterType, s.search) {
			visible = append(visible, o)
		}
	}
	return visible
}

func matchesFilters(o model.Order, status, typ, query string) bool {
	if status != "all" && !strings.EqualFold(o.Status, status) {
		return false
	}
	if typ != "all" && !strings.EqualFold(string(o.Type), typ) {
		return false
	}
	if query == "" {
		return true
	}

	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(o.ID), q) {
		return true
	}
	for _, it := range o.Items {
		if strings.Contains(strings.ToLower(it.Name), q) {
			return true
		}
	}
	if o.Type == model.OrderTypeDineIn && o.Table != "" && strings.Contains(strings.ToLower(o.Table), q) {
		return true
	}
	return false
}

// Orders возвращает копию полного списка заказов.
func (s *Service) Orders() []model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Order(nil), s.orders...)
}

// Notifications возвращает копию списка уведомлений.
func (s *Service) Notifications() []model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Order(nil), s.notifications...)
}

// Selected возвращает копию выбранного заказа.
func (s *Service) Selected() (model.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.selected == nil {
		return model.Order{}, false
	}
	return *s.selected, true
}

// SlideIndex возвращает текущий индекс листания.
func (s *Service) SlideIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slideIndex
}

func indexByID(orders []model.Order, id string) int {
	for i := range orders {
		if orders[i].ID == id {
			return i
		}
	}
	return -1
}
