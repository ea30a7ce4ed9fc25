// Package sync owns the push-stream connection and drives the shared cache:
// connect/reconnect lifecycle, event dispatch, echo suppression and
// opportunistic persistence.
package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rsavin/bookdesk/internal/client/cache"
	"github.com/rsavin/bookdesk/internal/client/storage"
	"github.com/rsavin/bookdesk/internal/client/suppress"
	"github.com/rsavin/bookdesk/internal/models"
	"github.com/rsavin/bookdesk/pkg/api"
)

// Defaults for Config zero values.
const (
	DefaultBaseReconnectInterval = time.Second
	DefaultMaxReconnectInterval  = 30 * time.Second
	DefaultCacheTTL              = time.Hour

	reconnectJitterMax = 500 * time.Millisecond
)

// ErrNotConnected is returned by command sends while the stream is down.
var ErrNotConnected = errors.New("push stream is not connected")

// Config настройки push-stream клиента
type Config struct {
	// URL is the websocket endpoint.
	URL string

	// Filters, when non-empty, are registered with a set_filter command
	// right after the stream opens.
	Filters map[string]any

	// BaseReconnectInterval scales linearly with the attempt counter.
	BaseReconnectInterval time.Duration

	// MaxReconnectInterval caps the computed delay (jitter excluded).
	MaxReconnectInterval time.Duration

	// MaxReconnectAttempts bounds reconnection; zero means unbounded.
	MaxReconnectAttempts int

	// CacheTTL bounds the age of a persisted cache copy on hydrate.
	CacheTTL time.Duration
}

// Client владеет соединением и кэшем.
//
// Жизненный цикл: disconnected → connecting → open → (closed|error),
// из error обратно в connecting. Терминальное состояние только closed —
// явное закрытие пользователем.
type Client struct {
	cfg    Config
	cache  *cache.Cache
	supp   *suppress.Suppressor
	store  storage.CacheStorage // nil допустим: работа без персистентности
	logger *slog.Logger
	dialer *websocket.Dialer

	mu       sync.Mutex
	writeMu  sync.Mutex
	conn     *websocket.Conn
	state    State
	attempts int
	closed   bool
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewClient creates a push-stream client over the given cache. store may be
// nil to disable persistence.
func NewClient(cfg Config, c *cache.Cache, supp *suppress.Suppressor, store storage.CacheStorage, logger *slog.Logger) *Client {
	if cfg.BaseReconnectInterval <= 0 {
		cfg.BaseReconnectInterval = DefaultBaseReconnectInterval
	}
	if cfg.MaxReconnectInterval <= 0 {
		cfg.MaxReconnectInterval = DefaultMaxReconnectInterval
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	return &Client{
		cfg:    cfg,
		cache:  c,
		supp:   supp,
		store:  store,
		logger: logger,
		dialer: websocket.DefaultDialer,
		state:  StateDisconnected,
		done:   make(chan struct{}),
	}
}

// Start hydrates the cache from the persisted copy when it is fresh enough
// and launches the connection loop. It does not block.
func (c *Client) Start(ctx context.Context) {
	c.hydrate(ctx)

	runCtx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()

	go c.run(runCtx)
}

// Close performs the user-initiated shutdown: stops any pending reconnect
// timer and closes the stream with a clean code so the server side does not
// treat it as a drop. Terminal.
func (c *Client) Close() error {
	c.mu.Lock()
	c.closed = true
	conn := c.conn
	cancel := c.cancel
	c.mu.Unlock()

	if cancel == nil {
		// Start was never called.
		return nil
	}
	cancel()
	if conn != nil {
		deadline := time.Now().Add(time.Second)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		_ = conn.Close()
	}

	<-c.done
	return nil
}

// State returns the current lifecycle state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// RequestSnapshot asks the server for a full snapshot over the stream.
func (c *Client) RequestSnapshot() error {
	return c.send(api.Command{Type: api.CommandGetSnapshot})
}

// RequestNotifications asks for the latest notifications.
func (c *Client) RequestNotifications(limit int) error {
	return c.send(api.Command{
		Type: api.CommandGetNotifications,
		Data: &api.CommandData{Limit: limit},
	})
}

func (c *Client) send(cmd api.Command) error {
	c.mu.Lock()
	conn := c.conn
	open := c.state == StateOpen
	c.mu.Unlock()

	if conn == nil || !open {
		return ErrNotConnected
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := conn.WriteJSON(cmd); err != nil {
		return fmt.Errorf("failed to send %s: %w", cmd.Type, err)
	}
	return nil
}

// hydrate loads the persisted cache copy if it is younger than CacheTTL.
func (c *Client) hydrate(ctx context.Context) {
	if c.store == nil {
		return
	}

	st, err := c.store.LoadCache(ctx)
	if err != nil {
		if !errors.Is(err, storage.ErrCacheNotFound) {
			c.logger.Warn("failed to load persisted cache, starting empty", "error", err)
		}
		return
	}

	age := time.Since(st.SavedAt)
	if age >= c.cfg.CacheTTL {
		c.logger.Info("persisted cache is stale, starting empty", "age", age)
		return
	}

	c.cache.ReplaceAll(st.Reservations, st.Conversations, st.Vacations)
	c.logger.Info("hydrated cache from persisted copy",
		"age", age,
		"customers", len(st.Reservations))
}

func (c *Client) run(ctx context.Context) {
	defer close(c.done)

	for {
		if ctx.Err() != nil {
			c.setState(StateClosed)
			return
		}

		c.setState(StateConnecting)
		conn, resp, err := c.dialer.DialContext(ctx, c.cfg.URL, nil)
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
		if err != nil {
			c.logger.Warn("dial failed", "url", c.cfg.URL, "error", err)
			c.setState(StateError)
			if !c.waitReconnect(ctx) {
				c.setState(StateClosed)
				return
			}
			continue
		}

		c.onOpen(conn)
		clean := c.readLoop(ctx, conn)
		_ = conn.Close()

		c.mu.Lock()
		c.conn = nil
		c.mu.Unlock()
		c.cache.SetConnected(false)

		if clean || ctx.Err() != nil {
			c.setState(StateClosed)
			return
		}

		c.setState(StateError)
		if !c.waitReconnect(ctx) {
			c.setState(StateClosed)
			return
		}
	}
}

// onOpen registers filters and requests a snapshot, but only when the local
// cache is empty: a freshly hydrated cache does not need the full refresh.
func (c *Client) onOpen(conn *websocket.Conn) {
	c.mu.Lock()
	c.conn = conn
	c.state = StateOpen
	c.attempts = 0
	c.mu.Unlock()

	c.cache.SetConnected(true)
	c.logger.Info("push stream open", "url", c.cfg.URL)

	if len(c.cfg.Filters) > 0 {
		if err := c.send(api.Command{Type: api.CommandSetFilter, Filters: c.cfg.Filters}); err != nil {
			c.logger.Warn("failed to register filters", "error", err)
		}
	}
	if c.cache.Empty() {
		if err := c.send(api.Command{Type: api.CommandGetSnapshot}); err != nil {
			c.logger.Warn("failed to request snapshot", "error", err)
		}
	}
}

// readLoop consumes stream messages until the connection ends. It reports
// whether the termination was a clean, user-initiated close.
func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn) bool {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			userClosed := c.closed
			c.mu.Unlock()
			if userClosed || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return true
			}
			c.logger.Warn("push stream dropped", "error", err)
			return false
		}

		var ev api.PushEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			// Кривое сообщение глотаем, соединение не рвём.
			c.logger.Warn("malformed push event, skipped", "error", err)
			continue
		}

		if c.handleEvent(ev) {
			c.persist(ctx)
		}
	}
}

// handleEvent applies one push event to the cache. Reservation and
// conversation events are first checked against the suppressor: a marked
// key means the event is this client's own echo and is dropped. Reports
// whether the cache was mutated.
func (c *Client) handleEvent(ev api.PushEvent) bool {
	switch ev.Type {
	case api.EventSnapshot:
		var p api.SnapshotPayload
		if !c.decode(ev, &p) {
			return false
		}
		c.cache.ReplaceAll(snapshotReservations(p), snapshotConversations(p), periodsFromPayload(p.Vacations))
		c.logger.Info("applied snapshot", "customers", len(p.Reservations))
		return true

	case api.EventReservationCreated, api.EventReservationUpdated, api.EventReservationReinstated:
		var p api.ReservationPayload
		if !c.decode(ev, &p) {
			return false
		}
		if c.consumeEcho(ev.Type, p) {
			return false
		}
		c.cache.UpsertReservation(reservationFromPayload(p))
		return true

	case api.EventReservationCancelled:
		var p api.ReservationPayload
		if !c.decode(ev, &p) {
			return false
		}
		if c.consumeEcho(ev.Type, p) {
			return false
		}
		merge := reservationFromPayload(p)
		if !c.cache.CancelByID(p.CustomerID, p.ID, &merge) {
			c.logger.Warn("cancelled reservation not found in cache", "reservation_id", p.ID)
			return false
		}
		return true

	case api.EventConversationMessage:
		var p api.MessagePayload
		if !c.decode(ev, &p) {
			return false
		}
		key := suppress.Key(ev.Type, p.CustomerID,
			p.Timestamp.Format("2006-01-02"), p.Timestamp.Format("15:04"))
		if c.supp.ConsumeIfPresent(key) {
			c.logger.Debug("suppressed own conversation echo", "customer_id", p.CustomerID)
			return false
		}
		c.cache.AppendMessage(models.ConversationMessage{
			CustomerID: p.CustomerID,
			Timestamp:  p.Timestamp,
			Role:       p.Role,
			Text:       p.Text,
		})
		return true

	case api.EventVacationUpdated:
		var p api.VacationPayload
		if !c.decode(ev, &p) {
			return false
		}
		c.cache.SetVacations(periodsFromPayload(p.Periods))
		return true

	case api.EventMetricsUpdated:
		var p api.MetricsPayload
		if !c.decode(ev, &p) {
			return false
		}
		c.cache.SetMetrics(models.Metrics(p))
		return false // метрики не персистятся

	case api.EventCustomerUpdated:
		// Смена данных клиента приходит снапшотом, здесь делать нечего.
		return false

	default:
		c.logger.Warn("unknown push event type", "type", ev.Type)
		return false
	}
}

// consumeEcho derives the event's local-operation key and consumes it.
// Created events key on the customer (the id is server-assigned and unknown
// to the writer side); the rest key on the reservation id.
func (c *Client) consumeEcho(eventType string, p api.ReservationPayload) bool {
	entity := p.ID
	if eventType == api.EventReservationCreated {
		entity = p.CustomerID
	}
	if c.supp.ConsumeIfPresent(suppress.Key(eventType, entity, p.Date, p.TimeSlot)) {
		c.logger.Debug("suppressed own echo",
			"event_type", eventType, "reservation_id", p.ID)
		return true
	}
	return false
}

func (c *Client) decode(ev api.PushEvent, v any) bool {
	if err := json.Unmarshal(ev.Data, v); err != nil {
		c.logger.Warn("malformed event payload, skipped",
			"type", ev.Type, "error", err)
		return false
	}
	return true
}

// persist writes the cache opportunistically; failures are logged, never
// surfaced.
func (c *Client) persist(ctx context.Context) {
	if c.store == nil {
		return
	}
	if err := c.store.SaveCache(ctx, c.cache.State()); err != nil {
		c.logger.Warn("failed to persist cache", "error", err)
	}
}

// waitReconnect sleeps min(base×attempts, cap) plus jitter. Reports false
// when the attempt budget is exhausted or the context is gone.
func (c *Client) waitReconnect(ctx context.Context) bool {
	c.mu.Lock()
	c.attempts++
	attempt := c.attempts
	c.mu.Unlock()

	if c.cfg.MaxReconnectAttempts > 0 && attempt > c.cfg.MaxReconnectAttempts {
		c.logger.Error("reconnect attempts exhausted", "attempts", attempt-1)
		return false
	}

	delay := c.cfg.BaseReconnectInterval * time.Duration(attempt)
	if delay > c.cfg.MaxReconnectInterval {
		delay = c.cfg.MaxReconnectInterval
	}
	delay += time.Duration(rand.Int63n(int64(reconnectJitterMax)))

	c.logger.Info("reconnecting", "attempt", attempt, "delay", delay)

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (c *Client) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func reservationFromPayload(p api.ReservationPayload) models.Reservation {
	return models.Reservation{
		ID:           p.ID,
		CustomerID:   p.CustomerID,
		Date:         p.Date,
		TimeSlot:     p.TimeSlot,
		CustomerName: p.CustomerName,
		Type:         models.ReservationType(p.Type),
		Cancelled:    p.Cancelled,
	}
}

func snapshotReservations(p api.SnapshotPayload) map[string][]models.Reservation {
	out := make(map[string][]models.Reservation, len(p.Reservations))
	for key, list := range p.Reservations {
		converted := make([]models.Reservation, 0, len(list))
		for _, r := range list {
			if r.CustomerID == "" {
				r.CustomerID = key
			}
			converted = append(converted, reservationFromPayload(r))
		}
		out[key] = converted
	}
	return out
}

func snapshotConversations(p api.SnapshotPayload) map[string][]models.ConversationMessage {
	out := make(map[string][]models.ConversationMessage, len(p.Conversations))
	for key, list := range p.Conversations {
		converted := make([]models.ConversationMessage, 0, len(list))
		for _, m := range list {
			if m.CustomerID == "" {
				m.CustomerID = key
			}
			converted = append(converted, models.ConversationMessage{
				CustomerID: m.CustomerID,
				Timestamp:  m.Timestamp,
				Role:       m.Role,
				Text:       m.Text,
			})
		}
		out[key] = converted
	}
	return out
}

func periodsFromPayload(periods []api.PeriodPayload) []models.VacationPeriod {
	out := make([]models.VacationPeriod, 0, len(periods))
	for _, p := range periods {
		out = append(out, models.VacationPeriod{Start: p.Start, End: p.End})
	}
	return out
}
