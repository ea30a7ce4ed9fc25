package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsavin/bookdesk/internal/client/cache"
	"github.com/rsavin/bookdesk/internal/client/storage"
	"github.com/rsavin/bookdesk/internal/client/suppress"
	"github.com/rsavin/bookdesk/internal/models"
	"github.com/rsavin/bookdesk/pkg/api"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(cfg Config, store storage.CacheStorage) (*Client, *cache.Cache, *suppress.Suppressor) {
	c := cache.New()
	supp := suppress.New()
	return NewClient(cfg, c, supp, store, testLogger()), c, supp
}

// newWSServer поднимает тестовый websocket сервер и возвращает ws:// URL
func newWSServer(t *testing.T, handler func(conn *websocket.Conn)) string {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer func() { _ = conn.Close() }()
		handler(conn)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func marshalEvent(t *testing.T, typ string, payload any) []byte {
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	msg, err := json.Marshal(api.PushEvent{Type: typ, Timestamp: time.Now(), Data: data})
	require.NoError(t, err)
	return msg
}

func sendClose(conn *websocket.Conn) {
	deadline := time.Now().Add(time.Second)
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
}

func TestHandleEvent_Snapshot_ReplacesCache(t *testing.T) {
	cl, c, _ := newTestClient(Config{}, nil)
	c.UpsertReservation(models.Reservation{ID: "stale", CustomerID: "111100000000"})

	payload := api.SnapshotPayload{
		Reservations: map[string][]api.ReservationPayload{
			"966500000000": {{ID: "res-1", Date: "2026-09-01", TimeSlot: "10:00"}},
		},
		Vacations: []api.PeriodPayload{{Start: "2026-10-01", End: "2026-10-07"}},
	}
	data, err := json.Marshal(payload)
	require.NoError(t, err)

	mutated := cl.handleEvent(api.PushEvent{Type: api.EventSnapshot, Data: data})

	assert.True(t, mutated)
	assert.Empty(t, c.CustomerReservations("111100000000"))
	list := c.CustomerReservations("966500000000")
	require.Len(t, list, 1)
	// Пустой customer_id в payload заполняется ключом карты
	assert.Equal(t, "966500000000", list[0].CustomerID)
	assert.Len(t, c.Vacations(), 1)
}

func TestHandleEvent_CreatedEchoSuppressed(t *testing.T) {
	cl, c, supp := newTestClient(Config{}, nil)

	// Локальная операция пометила ключ — как это делает mutation manager
	supp.Mark(suppress.Key(api.EventReservationCreated, "966500000000", "2026-09-01", "10:00"), time.Minute)

	data, err := json.Marshal(api.ReservationPayload{
		ID: "srv-1", CustomerID: "966500000000", Date: "2026-09-01", TimeSlot: "10:00",
	})
	require.NoError(t, err)
	ev := api.PushEvent{Type: api.EventReservationCreated, Data: data}

	// Эхо собственной операции отбрасывается
	assert.False(t, cl.handleEvent(ev))
	assert.Empty(t, c.CustomerReservations("966500000000"))

	// Ключ одноразовый: то же событие второй раз применяется
	assert.True(t, cl.handleEvent(ev))
	assert.Len(t, c.CustomerReservations("966500000000"), 1)
}

func TestHandleEvent_UpdatedKeysOnReservationID(t *testing.T) {
	cl, c, supp := newTestClient(Config{}, nil)
	c.UpsertReservation(models.Reservation{
		ID: "res-1", CustomerID: "966500000000", Date: "2026-09-01", TimeSlot: "10:00",
	})

	supp.Mark(suppress.Key(api.EventReservationUpdated, "res-1", "2026-09-02", "14:30"), time.Minute)

	data, err := json.Marshal(api.ReservationPayload{
		ID: "res-1", CustomerID: "966500000000", Date: "2026-09-02", TimeSlot: "14:30",
	})
	require.NoError(t, err)

	assert.False(t, cl.handleEvent(api.PushEvent{Type: api.EventReservationUpdated, Data: data}))
	// Оптимистичное состояние кэша не перезаписано эхом
	assert.Equal(t, "2026-09-01", c.CustomerReservations("966500000000")[0].Date)
}

func TestHandleEvent_CancelledFallbackScan(t *testing.T) {
	cl, c, _ := newTestClient(Config{}, nil)
	c.UpsertReservation(models.Reservation{
		ID: "res-1", CustomerID: "966500000000", Date: "2026-09-01", TimeSlot: "10:00",
	})

	// Событие пришло с чужим ключом клиента — запись находится полным проходом
	data, err := json.Marshal(api.ReservationPayload{
		ID: "res-1", CustomerID: "999999999999", Date: "2026-09-01", TimeSlot: "10:00", Cancelled: true,
	})
	require.NoError(t, err)

	assert.True(t, cl.handleEvent(api.PushEvent{Type: api.EventReservationCancelled, Data: data}))
	assert.True(t, c.CustomerReservations("966500000000")[0].Cancelled)
}

func TestHandleEvent_CancelledNotFound(t *testing.T) {
	cl, _, _ := newTestClient(Config{}, nil)

	data, err := json.Marshal(api.ReservationPayload{ID: "missing"})
	require.NoError(t, err)

	assert.False(t, cl.handleEvent(api.PushEvent{Type: api.EventReservationCancelled, Data: data}))
}

func TestHandleEvent_ConversationMessage(t *testing.T) {
	cl, c, supp := newTestClient(Config{}, nil)

	ts := time.Date(2026, 9, 1, 10, 5, 0, 0, time.UTC)
	data, err := json.Marshal(api.MessagePayload{
		CustomerID: "966500000000", Timestamp: ts, Role: "user", Text: "hello",
	})
	require.NoError(t, err)
	ev := api.PushEvent{Type: api.EventConversationMessage, Data: data}

	assert.True(t, cl.handleEvent(ev))
	require.Len(t, c.CustomerConversation("966500000000"), 1)

	// Помеченное эхо собственного сообщения отбрасывается
	supp.Mark(suppress.Key(api.EventConversationMessage, "966500000000", "2026-09-01", "10:05"), time.Minute)
	assert.False(t, cl.handleEvent(ev))
	assert.Len(t, c.CustomerConversation("966500000000"), 1)
}

func TestHandleEvent_MetricsNotPersisted(t *testing.T) {
	cl, c, _ := newTestClient(Config{}, nil)

	data, err := json.Marshal(api.MetricsPayload{"reservations_today": 7})
	require.NoError(t, err)

	mutated := cl.handleEvent(api.PushEvent{Type: api.EventMetricsUpdated, Data: data})

	assert.False(t, mutated, "metrics updates must not trigger persistence")
	assert.Equal(t, 7.0, c.Metrics()["reservations_today"])
}

func TestHandleEvent_UnknownTypeIgnored(t *testing.T) {
	cl, c, _ := newTestClient(Config{}, nil)

	assert.False(t, cl.handleEvent(api.PushEvent{Type: "totally_new", Data: []byte(`{}`)}))
	assert.True(t, c.Empty())
}

func TestHandleEvent_MalformedPayloadSkipped(t *testing.T) {
	cl, c, _ := newTestClient(Config{}, nil)

	assert.False(t, cl.handleEvent(api.PushEvent{Type: api.EventSnapshot, Data: []byte(`"not an object"`)}))
	assert.True(t, c.Empty())
}

func TestHydrate_FreshCopy(t *testing.T) {
	store := &storage.CacheStorageMock{
		LoadCacheFunc: func(ctx context.Context) (*models.CachedState, error) {
			return &models.CachedState{
				Reservations: map[string][]models.Reservation{
					"966500000000": {{ID: "res-1", CustomerID: "966500000000"}},
				},
				SavedAt: time.Now().Add(-time.Minute),
			}, nil
		},
	}
	cl, c, _ := newTestClient(Config{CacheTTL: time.Hour}, store)

	cl.hydrate(context.Background())

	assert.Len(t, c.CustomerReservations("966500000000"), 1)
}

func TestHydrate_StaleCopyIgnored(t *testing.T) {
	store := &storage.CacheStorageMock{
		LoadCacheFunc: func(ctx context.Context) (*models.CachedState, error) {
			return &models.CachedState{
				Reservations: map[string][]models.Reservation{
					"966500000000": {{ID: "res-1", CustomerID: "966500000000"}},
				},
				SavedAt: time.Now().Add(-2 * time.Hour),
			}, nil
		},
	}
	cl, c, _ := newTestClient(Config{CacheTTL: time.Hour}, store)

	cl.hydrate(context.Background())

	assert.True(t, c.Empty(), "a copy older than the TTL starts the client empty")
}

func TestHydrate_NothingPersisted(t *testing.T) {
	store := &storage.CacheStorageMock{
		LoadCacheFunc: func(ctx context.Context) (*models.CachedState, error) {
			return nil, storage.ErrCacheNotFound
		},
	}
	cl, c, _ := newTestClient(Config{}, store)

	cl.hydrate(context.Background())

	assert.True(t, c.Empty())
}

func TestClient_RequestsSnapshotWhenCacheEmpty(t *testing.T) {
	commands := make(chan api.Command, 4)
	url := newWSServer(t, func(conn *websocket.Conn) {
		for {
			var cmd api.Command
			if err := conn.ReadJSON(&cmd); err != nil {
				return
			}
			commands <- cmd
		}
	})

	cl, _, _ := newTestClient(Config{URL: url}, nil)
	cl.Start(context.Background())
	defer func() { require.NoError(t, cl.Close()) }()

	select {
	case cmd := <-commands:
		assert.Equal(t, api.CommandGetSnapshot, cmd.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a get_snapshot command")
	}
}

func TestClient_SkipsSnapshotWhenCacheHydrated(t *testing.T) {
	commands := make(chan api.Command, 4)
	url := newWSServer(t, func(conn *websocket.Conn) {
		for {
			var cmd api.Command
			if err := conn.ReadJSON(&cmd); err != nil {
				return
			}
			commands <- cmd
		}
	})

	cl, c, _ := newTestClient(Config{URL: url}, nil)
	c.UpsertReservation(models.Reservation{ID: "res-1", CustomerID: "966500000000"})

	cl.Start(context.Background())
	defer func() { require.NoError(t, cl.Close()) }()

	require.Eventually(t, func() bool { return cl.State() == StateOpen },
		2*time.Second, 10*time.Millisecond)

	select {
	case cmd := <-commands:
		t.Fatalf("unexpected command %q: hydrated cache needs no snapshot", cmd.Type)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestClient_RegistersFilters(t *testing.T) {
	commands := make(chan api.Command, 4)
	url := newWSServer(t, func(conn *websocket.Conn) {
		for {
			var cmd api.Command
			if err := conn.ReadJSON(&cmd); err != nil {
				return
			}
			commands <- cmd
		}
	})

	cl, _, _ := newTestClient(Config{
		URL:     url,
		Filters: map[string]any{"branch": "main"},
	}, nil)
	cl.Start(context.Background())
	defer func() { require.NoError(t, cl.Close()) }()

	select {
	case cmd := <-commands:
		assert.Equal(t, api.CommandSetFilter, cmd.Type)
		assert.Equal(t, "main", cmd.Filters["branch"])
	case <-time.After(2 * time.Second):
		t.Fatal("expected a set_filter command")
	}
}

func TestClient_AppliesStreamEvents(t *testing.T) {
	url := newWSServer(t, func(conn *websocket.Conn) {
		msg := fmt.Sprintf(`{"type":%q,"data":{"id":"res-1","customer_id":"966500000000","date":"2026-09-01","time_slot":"10:00"}}`,
			api.EventReservationCreated)
		if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
			return
		}
		// Дожидаемся закрытия со стороны клиента
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	cl, c, _ := newTestClient(Config{URL: url}, nil)
	cl.Start(context.Background())
	defer func() { require.NoError(t, cl.Close()) }()

	require.Eventually(t, func() bool {
		return len(c.CustomerReservations("966500000000")) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestClient_MalformedMessageDoesNotDropConnection(t *testing.T) {
	url := newWSServer(t, func(conn *websocket.Conn) {
		_ = conn.WriteMessage(websocket.TextMessage, []byte("not json at all"))
		msg := fmt.Sprintf(`{"type":%q,"data":{"id":"res-1","customer_id":"966500000000","date":"2026-09-01","time_slot":"10:00"}}`,
			api.EventReservationCreated)
		_ = conn.WriteMessage(websocket.TextMessage, []byte(msg))
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	cl, c, _ := newTestClient(Config{URL: url}, nil)
	cl.Start(context.Background())
	defer func() { require.NoError(t, cl.Close()) }()

	// Событие после мусора всё равно доезжает
	require.Eventually(t, func() bool {
		return len(c.CustomerReservations("966500000000")) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, StateOpen, cl.State())
}

func TestClient_ServerCloseIsTerminal(t *testing.T) {
	url := newWSServer(t, func(conn *websocket.Conn) {
		sendClose(conn)
		// Читаем до ответного close
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	cl, _, _ := newTestClient(Config{URL: url}, nil)
	cl.Start(context.Background())

	require.Eventually(t, func() bool { return cl.State() == StateClosed },
		2*time.Second, 10*time.Millisecond)
}

func TestClient_PersistsAfterMutatingEvent(t *testing.T) {
	store := &storage.CacheStorageMock{
		LoadCacheFunc: func(ctx context.Context) (*models.CachedState, error) {
			return nil, storage.ErrCacheNotFound
		},
		SaveCacheFunc: func(ctx context.Context, state *models.CachedState) error {
			return nil
		},
	}

	url := newWSServer(t, func(conn *websocket.Conn) {
		msg := fmt.Sprintf(`{"type":%q,"data":{"id":"res-1","customer_id":"966500000000","date":"2026-09-01","time_slot":"10:00"}}`,
			api.EventReservationCreated)
		_ = conn.WriteMessage(websocket.TextMessage, []byte(msg))
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	cl, _, _ := newTestClient(Config{URL: url}, store)
	cl.Start(context.Background())
	defer func() { require.NoError(t, cl.Close()) }()

	require.Eventually(t, func() bool {
		return len(store.SaveCacheCalls()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	saved := store.SaveCacheCalls()[0].State
	assert.Len(t, saved.Reservations["966500000000"], 1)
}

func TestClient_ReconnectAttemptsExhausted(t *testing.T) {
	// Сервер сразу закрыт — каждый dial падает
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	srv.Close()

	cl, _, _ := newTestClient(Config{
		URL:                   url,
		BaseReconnectInterval: time.Millisecond,
		MaxReconnectInterval:  5 * time.Millisecond,
		MaxReconnectAttempts:  2,
	}, nil)
	cl.Start(context.Background())

	require.Eventually(t, func() bool { return cl.State() == StateClosed },
		5*time.Second, 10*time.Millisecond)
}

func TestClient_SendWhileDisconnected(t *testing.T) {
	cl, _, _ := newTestClient(Config{}, nil)

	assert.ErrorIs(t, cl.RequestSnapshot(), ErrNotConnected)
	assert.ErrorIs(t, cl.RequestNotifications(10), ErrNotConnected)
}

func TestClose_WithoutStart(t *testing.T) {
	cl, _, _ := newTestClient(Config{}, nil)
	assert.NoError(t, cl.Close())
}
