package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsavin/bookdesk/internal/models"
)

func reservation(id, customer string) models.Reservation {
	return models.Reservation{
		ID:         id,
		CustomerID: customer,
		Date:       "2026-09-01",
		TimeSlot:   "10:00",
		Type:       models.TypeCheckup,
	}
}

func TestUpsertReservation_Idempotent(t *testing.T) {
	c := New()
	r := reservation("r1", "966500000000")

	c.UpsertReservation(r)
	c.UpsertReservation(r)

	assert.Len(t, c.CustomerReservations("966500000000"), 1,
		"applying the same event twice must yield one reservation")
}

func TestUpsertReservation_ReplacesById(t *testing.T) {
	c := New()
	r := reservation("r1", "966500000000")
	c.UpsertReservation(r)

	r.TimeSlot = "11:00"
	c.UpsertReservation(r)

	list := c.CustomerReservations("966500000000")
	require.Len(t, list, 1)
	assert.Equal(t, "11:00", list[0].TimeSlot)
}

func TestReplaceAll_NeverMerges(t *testing.T) {
	c := New()
	c.UpsertReservation(reservation("stale", "111100000000"))
	c.AppendMessage(models.ConversationMessage{CustomerID: "111100000000", Text: "old"})

	snapshot := map[string][]models.Reservation{
		"966500000000": {reservation("r1", "966500000000")},
	}
	c.ReplaceAll(snapshot, nil, []models.VacationPeriod{{Start: "2026-10-01", End: "2026-10-07"}})

	assert.Empty(t, c.CustomerReservations("111100000000"),
		"prior incremental state must be discarded")
	assert.Empty(t, c.CustomerConversation("111100000000"))
	assert.Len(t, c.CustomerReservations("966500000000"), 1)
	assert.Len(t, c.Vacations(), 1)
}

func TestCancelByID_DirectLookup(t *testing.T) {
	c := New()
	c.UpsertReservation(reservation("r1", "966500000000"))

	ok := c.CancelByID("966500000000", "r1", nil)

	require.True(t, ok)
	assert.True(t, c.CustomerReservations("966500000000")[0].Cancelled)
}

func TestCancelByID_FallbackScan(t *testing.T) {
	c := New()
	c.UpsertReservation(reservation("r1", "966500000000"))

	// Сервер прислал событие с другим ключом клиента — запись находится
	// полным проходом.
	ok := c.CancelByID("999999999999", "r1", nil)

	require.True(t, ok)
	assert.True(t, c.CustomerReservations("966500000000")[0].Cancelled)
}

func TestCancelByID_MergesExtraFields(t *testing.T) {
	c := New()
	c.UpsertReservation(reservation("r1", "966500000000"))

	merge := models.Reservation{CustomerName: "Ali", Type: models.TypeFollowup}
	require.True(t, c.CancelByID("966500000000", "r1", &merge))

	got := c.CustomerReservations("966500000000")[0]
	assert.True(t, got.Cancelled)
	assert.Equal(t, "Ali", got.CustomerName)
	assert.Equal(t, models.TypeFollowup, got.Type)
	assert.Equal(t, "2026-09-01", got.Date, "empty merge fields leave existing values")
}

func TestCancelByID_NotFound(t *testing.T) {
	c := New()
	assert.False(t, c.CancelByID("966500000000", "missing", nil))
}

func TestReinstateByID(t *testing.T) {
	c := New()
	r := reservation("r1", "966500000000")
	r.Cancelled = true
	c.UpsertReservation(r)

	require.True(t, c.ReinstateByID("966500000000", "r1", nil))
	assert.False(t, c.CustomerReservations("966500000000")[0].Cancelled)
}

func TestSnapshotRestore_Exact(t *testing.T) {
	c := New()
	c.UpsertReservation(reservation("r1", "966500000000"))
	c.UpsertReservation(reservation("r2", "966500000000"))

	before := c.CustomerReservations("966500000000")
	snap := c.SnapshotCustomer("966500000000")

	// Произвольные мутации после снапшота.
	c.CancelByID("966500000000", "r1", nil)
	c.UpsertReservation(reservation("r3", "966500000000"))
	c.RemoveReservation("966500000000", "r2")

	c.RestoreCustomer(snap)

	assert.Equal(t, before, c.CustomerReservations("966500000000"),
		"restore must be deep-equal to the pre-mutation state")
}

func TestSnapshotRestore_AbsentKey(t *testing.T) {
	c := New()
	snap := c.SnapshotCustomer("966500000000")
	require.False(t, snap.Present)

	c.UpsertReservation(reservation("r1", "966500000000"))
	c.RestoreCustomer(snap)

	assert.True(t, c.Empty(), "restoring an absent region removes the key entirely")
}

func TestRekey_MovesEverything(t *testing.T) {
	c := New()
	c.UpsertReservation(reservation("r1", "966511111111"))
	c.AppendMessage(models.ConversationMessage{
		CustomerID: "966511111111",
		Timestamp:  time.Now(),
		Role:       "user",
		Text:       "hi",
	})

	c.Rekey("966511111111", "966500000000")

	assert.Empty(t, c.CustomerReservations("966511111111"),
		"no cache structure may stay indexed under the abandoned key")
	assert.Empty(t, c.CustomerConversation("966511111111"))

	moved := c.CustomerReservations("966500000000")
	require.Len(t, moved, 1)
	assert.Equal(t, "966500000000", moved[0].CustomerID)
	require.Len(t, c.CustomerConversation("966500000000"), 1)
}

func TestFindReservation_AcrossCustomers(t *testing.T) {
	c := New()
	c.UpsertReservation(reservation("r1", "966500000000"))
	c.UpsertReservation(reservation("r2", "966511111111"))

	got, key, ok := c.FindReservation("r2")
	require.True(t, ok)
	assert.Equal(t, "966511111111", key)
	assert.Equal(t, "r2", got.ID)

	_, _, ok = c.FindReservation("missing")
	assert.False(t, ok)
}

func TestState_RoundTrip(t *testing.T) {
	c := New()
	c.UpsertReservation(reservation("r1", "966500000000"))
	c.AppendMessage(models.ConversationMessage{CustomerID: "966500000000", Text: "hello"})
	c.SetVacations([]models.VacationPeriod{{Start: "2026-10-01", End: "2026-10-07"}})

	st := c.State()
	restored := NewFromState(st)

	assert.Equal(t, c.CustomerReservations("966500000000"), restored.CustomerReservations("966500000000"))
	assert.Equal(t, c.CustomerConversation("966500000000"), restored.CustomerConversation("966500000000"))
	assert.Equal(t, c.Vacations(), restored.Vacations())
}

func TestMetrics_SideChannel(t *testing.T) {
	c := New()
	c.SetMetrics(models.Metrics{"reservations_today": 7})

	m := c.Metrics()
	assert.Equal(t, 7.0, m["reservations_today"])

	// Копия, не ссылка на внутреннее состояние.
	m["reservations_today"] = 0
	assert.Equal(t, 7.0, c.Metrics()["reservations_today"])
}
