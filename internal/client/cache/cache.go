// Package cache owns the client's in-memory view of reservations,
// conversations and vacations. It is the single source all other components
// read and patch; there is no replica, so application order decides.
package cache

import (
	"sync"
	"time"

	"github.com/rsavin/bookdesk/internal/models"
)

// Cache is the shared mutable state. All patch functions hold one mutex, so
// a rekey or snapshot replace is atomic for every reader.
type Cache struct {
	mu            sync.Mutex
	reservations  map[string][]models.Reservation
	conversations map[string][]models.ConversationMessage
	vacations     []models.VacationPeriod
	metrics       models.Metrics
	lastUpdate    time.Time
	connected     bool
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{
		reservations:  make(map[string][]models.Reservation),
		conversations: make(map[string][]models.ConversationMessage),
	}
}

// NewFromState hydrates a cache from a persisted snapshot.
func NewFromState(st *models.CachedState) *Cache {
	c := New()
	if st == nil {
		return c
	}
	c.reservations = copyReservationMap(st.Reservations)
	c.conversations = copyConversationMap(st.Conversations)
	c.vacations = append([]models.VacationPeriod(nil), st.Vacations...)
	c.lastUpdate = st.LastUpdate
	return c
}

// Empty reports whether the cache holds no reservations and no
// conversations. Used to decide whether a fresh snapshot is needed on
// connect.
func (c *Cache) Empty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.reservations) == 0 && len(c.conversations) == 0
}

// ReplaceAll replaces the whole cache with a server snapshot. Prior
// incremental state is discarded, never merged.
func (c *Cache) ReplaceAll(
	reservations map[string][]models.Reservation,
	conversations map[string][]models.ConversationMessage,
	vacations []models.VacationPeriod,
) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.reservations = copyReservationMap(reservations)
	c.conversations = copyConversationMap(conversations)
	c.vacations = append([]models.VacationPeriod(nil), vacations...)
	c.lastUpdate = time.Now()
}

// UpsertReservation inserts r into its customer's list, replacing an
// existing entry with the same id. Applying the same event twice yields one
// reservation, not two.
func (c *Cache) UpsertReservation(r models.Reservation) {
	c.mu.Lock()
	defer c.mu.Unlock()

	list := c.reservations[r.CustomerID]
	for i := range list {
		if list[i].ID == r.ID {
			list[i] = r
			c.lastUpdate = time.Now()
			return
		}
	}
	c.reservations[r.CustomerID] = append(list, r)
	c.lastUpdate = time.Now()
}

// RemoveReservation deletes the reservation with the given id from the
// customer's list. Used when an optimistic placeholder is replaced by the
// confirmed entry.
func (c *Cache) RemoveReservation(customerID, id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	list := c.reservations[customerID]
	for i := range list {
		if list[i].ID == id {
			c.reservations[customerID] = append(list[:i], list[i+1:]...)
			if len(c.reservations[customerID]) == 0 {
				delete(c.reservations, customerID)
			}
			c.lastUpdate = time.Now()
			return true
		}
	}
	return false
}

// CancelByID flips cancelled=true on the reservation with the given id,
// merging extra fields from merge when provided. The customer key is tried
// first; if the id is not there the whole cache is scanned.
func (c *Cache) CancelByID(customerID, id string, merge *models.Reservation) bool {
	return c.setCancelled(customerID, id, true, merge)
}

// ReinstateByID flips cancelled=false, merging server-returned fields.
func (c *Cache) ReinstateByID(customerID, id string, merge *models.Reservation) bool {
	return c.setCancelled(customerID, id, false, merge)
}

func (c *Cache) setCancelled(customerID, id string, cancelled bool, merge *models.Reservation) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.flipInList(customerID, id, cancelled, merge) {
		return true
	}
	// Запись могла переехать под другой ключ — полный проход.
	for key := range c.reservations {
		if key == customerID {
			continue
		}
		if c.flipInList(key, id, cancelled, merge) {
			return true
		}
	}
	return false
}

func (c *Cache) flipInList(customerID, id string, cancelled bool, merge *models.Reservation) bool {
	list := c.reservations[customerID]
	for i := range list {
		if list[i].ID != id {
			continue
		}
		list[i].Cancelled = cancelled
		if merge != nil {
			mergeFields(&list[i], merge)
		}
		c.lastUpdate = time.Now()
		return true
	}
	return false
}

// mergeFields overlays the non-empty fields of src. Type is taken as-is:
// the server always sends the full record.
func mergeFields(dst, src *models.Reservation) {
	if src.Date != "" {
		dst.Date = src.Date
	}
	if src.TimeSlot != "" {
		dst.TimeSlot = src.TimeSlot
	}
	if src.CustomerName != "" {
		dst.CustomerName = src.CustomerName
	}
	dst.Type = src.Type
}

// PatchReservation applies patch to the reservation with the given id under
// the customer key. Reports whether the reservation was found.
func (c *Cache) PatchReservation(customerID, id string, patch func(*models.Reservation)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	list := c.reservations[customerID]
	for i := range list {
		if list[i].ID == id {
			patch(&list[i])
			c.lastUpdate = time.Now()
			return true
		}
	}
	return false
}

// FindReservation looks up a reservation by id across all customers.
// Returns a copy and the key it lives under.
func (c *Cache) FindReservation(id string) (models.Reservation, string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, list := range c.reservations {
		for i := range list {
			if list[i].ID == id {
				return list[i], key, true
			}
		}
	}
	return models.Reservation{}, "", false
}

// AppendMessage appends to the customer's conversation. Messages are
// append-only.
func (c *Cache) AppendMessage(msg models.ConversationMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.conversations[msg.CustomerID] = append(c.conversations[msg.CustomerID], msg)
	c.lastUpdate = time.Now()
}

// SetVacations replaces the vacation list wholesale.
func (c *Cache) SetVacations(periods []models.VacationPeriod) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.vacations = append([]models.VacationPeriod(nil), periods...)
	c.lastUpdate = time.Now()
}

// SetMetrics replaces the side-channel metrics store.
func (c *Cache) SetMetrics(m models.Metrics) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.metrics = make(models.Metrics, len(m))
	for k, v := range m {
		c.metrics[k] = v
	}
}

// Metrics returns a copy of the metrics store.
func (c *Cache) Metrics() models.Metrics {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(models.Metrics, len(c.metrics))
	for k, v := range c.metrics {
		out[k] = v
	}
	return out
}

// SetConnected records stream connectivity.
func (c *Cache) SetConnected(connected bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = connected
}

// Connected reports stream connectivity.
func (c *Cache) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Rekey moves every customer-keyed structure from fromKey to toKey and
// deletes fromKey, in one critical section so no reader observes both keys
// populated inconsistently. Existing entries under toKey are kept and the
// moved ones appended.
func (c *Cache) Rekey(fromKey, toKey string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if list, ok := c.reservations[fromKey]; ok {
		for i := range list {
			list[i].CustomerID = toKey
		}
		c.reservations[toKey] = append(c.reservations[toKey], list...)
		delete(c.reservations, fromKey)
	}
	if msgs, ok := c.conversations[fromKey]; ok {
		for i := range msgs {
			msgs[i].CustomerID = toKey
		}
		c.conversations[toKey] = append(c.conversations[toKey], msgs...)
		delete(c.conversations, fromKey)
	}
	c.lastUpdate = time.Now()
}

// CustomerSnapshot captures a deep copy of one customer's reservation list
// for later rollback. Present distinguishes an empty list from a missing
// key so the restore is exact.
type CustomerSnapshot struct {
	CustomerID   string
	Reservations []models.Reservation
	Present      bool
}

// SnapshotCustomer captures the customer's current reservation region.
func (c *Cache) SnapshotCustomer(customerID string) CustomerSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	list, ok := c.reservations[customerID]
	return CustomerSnapshot{
		CustomerID:   customerID,
		Reservations: append([]models.Reservation(nil), list...),
		Present:      ok,
	}
}

// RestoreCustomer puts a previously captured region back exactly.
func (c *Cache) RestoreCustomer(snap CustomerSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !snap.Present {
		delete(c.reservations, snap.CustomerID)
	} else {
		c.reservations[snap.CustomerID] = append([]models.Reservation(nil), snap.Reservations...)
	}
	c.lastUpdate = time.Now()
}

// Reservations returns a flat copy of every reservation, packer input.
func (c *Cache) Reservations() []models.Reservation {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []models.Reservation
	for _, list := range c.reservations {
		out = append(out, list...)
	}
	return out
}

// CustomerReservations returns a copy of one customer's list.
func (c *Cache) CustomerReservations(customerID string) []models.Reservation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Reservation(nil), c.reservations[customerID]...)
}

// CustomerConversation returns a copy of one customer's message list.
func (c *Cache) CustomerConversation(customerID string) []models.ConversationMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.ConversationMessage(nil), c.conversations[customerID]...)
}

// Vacations returns a copy of the vacation periods.
func (c *Cache) Vacations() []models.VacationPeriod {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.VacationPeriod(nil), c.vacations...)
}

// State captures the whole cache as a persistable snapshot. SavedAt is left
// for the storage layer to stamp.
func (c *Cache) State() *models.CachedState {
	c.mu.Lock()
	defer c.mu.Unlock()

	return &models.CachedState{
		Reservations:  copyReservationMap(c.reservations),
		Conversations: copyConversationMap(c.conversations),
		Vacations:     append([]models.VacationPeriod(nil), c.vacations...),
		LastUpdate:    c.lastUpdate,
	}
}

func copyReservationMap(src map[string][]models.Reservation) map[string][]models.Reservation {
	dst := make(map[string][]models.Reservation, len(src))
	for key, list := range src {
		dst[key] = append([]models.Reservation(nil), list...)
	}
	return dst
}

func copyConversationMap(src map[string][]models.ConversationMessage) map[string][]models.ConversationMessage {
	dst := make(map[string][]models.ConversationMessage, len(src))
	for key, list := range src {
		dst[key] = append([]models.ConversationMessage(nil), list...)
	}
	return dst
}
