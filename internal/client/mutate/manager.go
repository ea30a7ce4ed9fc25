// Package mutate issues reservation mutations with optimistic cache patches:
// the cache is patched before the network call and rolled back exactly when
// the call fails.
package mutate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	httpClient "github.com/rsavin/bookdesk/internal/client/api"
	"github.com/rsavin/bookdesk/internal/client/cache"
	"github.com/rsavin/bookdesk/internal/client/suppress"
	"github.com/rsavin/bookdesk/internal/models"
	"github.com/rsavin/bookdesk/internal/validation"
	"github.com/rsavin/bookdesk/pkg/api"
)

// DefaultSuppressTTL covers a mutation round-trip plus stream latency.
const DefaultSuppressTTL = 5 * time.Second

// ErrReservationNotFound is returned when the target of a modify or cancel
// is not in the cache.
var ErrReservationNotFound = fmt.Errorf("reservation not found in cache")

// Manager выполняет мутации записей с optimistic patch дисциплиной
type Manager struct {
	api    httpClient.ClientAPI
	cache  *cache.Cache
	supp   *suppress.Suppressor
	logger *slog.Logger
	ttl    time.Duration
}

// NewManager creates a new mutation manager. ttl bounds the lifetime of
// suppression keys; zero means DefaultSuppressTTL.
func NewManager(apiClient httpClient.ClientAPI, c *cache.Cache, supp *suppress.Suppressor, logger *slog.Logger, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultSuppressTTL
	}
	return &Manager{
		api:    apiClient,
		cache:  c,
		supp:   supp,
		logger: logger,
		ttl:    ttl,
	}
}

// ModifyParams describes a reservation modification.
type ModifyParams struct {
	ReservationID string
	Date          string
	TimeSlot      string
	Name          string
	Type          models.ReservationType
}

// Reserve creates a reservation: the suppression key is marked first, then
// an optimistic entry goes into the cache, then the call is issued. On
// failure the customer's region is restored to the captured snapshot.
func (m *Manager) Reserve(ctx context.Context, r models.Reservation) (*models.Reservation, error) {
	return m.ReserveAs(ctx, r, "")
}

// ReserveAs is Reserve with an explicit _call_source marker.
func (m *Manager) ReserveAs(ctx context.Context, r models.Reservation, source string) (*models.Reservation, error) {
	if err := validation.ValidateCustomerKey(r.CustomerID); err != nil {
		return nil, fmt.Errorf("invalid customer key: %w", err)
	}
	if err := validation.ValidateDate(r.Date); err != nil {
		return nil, fmt.Errorf("invalid date: %w", err)
	}
	if err := validation.ValidateTimeSlot(r.TimeSlot); err != nil {
		return nil, fmt.Errorf("invalid time slot: %w", err)
	}

	// Ключ ставится ДО сетевого вызова: быстрое эхо сервера не должно
	// обогнать отметку.
	m.supp.Mark(suppress.Key(api.EventReservationCreated, r.CustomerID, r.Date, r.TimeSlot), m.ttl)

	snap := m.cache.SnapshotCustomer(r.CustomerID)

	if r.ID == "" {
		r.ID = "local-" + uuid.New().String()
	}
	m.cache.UpsertReservation(r)

	resp, err := m.api.Reserve(ctx, r.CustomerID, api.ReserveRequest{
		Date:       r.Date,
		TimeSlot:   r.TimeSlot,
		Name:       r.CustomerName,
		Type:       int(r.Type),
		CallSource: source,
	})
	if err != nil {
		m.cache.RestoreCustomer(snap)
		m.logger.Warn("reserve failed, cache rolled back",
			"customer_id", r.CustomerID, "error", err)
		return nil, fmt.Errorf("reserve failed: %w", err)
	}

	confirmed := reservationFromPayload(resp.Reservation, r.CustomerID)
	if confirmed.ID == "" {
		// Сервер не вернул запись — оставляем optimistic entry как есть.
		return &r, nil
	}
	if confirmed.ID != r.ID {
		m.cache.RemoveReservation(r.CustomerID, r.ID)
	}
	// Upsert by id: повторный success никогда не создаёт дубликат.
	m.cache.UpsertReservation(confirmed)

	m.logger.Info("reservation created",
		"customer_id", confirmed.CustomerID,
		"reservation_id", confirmed.ID,
		"date", confirmed.Date,
		"time_slot", confirmed.TimeSlot)

	return &confirmed, nil
}

// Cancel flips cancelled=true optimistically and confirms with the server.
func (m *Manager) Cancel(ctx context.Context, reservationID string) error {
	return m.CancelAs(ctx, reservationID, "")
}

// CancelAs is Cancel with an explicit _call_source marker.
func (m *Manager) CancelAs(ctx context.Context, reservationID, source string) error {
	res, ownerKey, ok := m.cache.FindReservation(reservationID)
	if !ok {
		return ErrReservationNotFound
	}

	m.supp.Mark(suppress.Key(api.EventReservationCancelled, reservationID, res.Date, res.TimeSlot), m.ttl)

	snap := m.cache.SnapshotCustomer(ownerKey)
	m.cache.CancelByID(ownerKey, reservationID, nil)

	resp, err := m.api.CancelReservation(ctx, ownerKey, api.CancelRequest{
		ReservationIDToCancel: reservationID,
		CallSource:            source,
	})
	if err != nil {
		m.cache.RestoreCustomer(snap)
		m.logger.Warn("cancel failed, cache rolled back",
			"reservation_id", reservationID, "error", err)
		return fmt.Errorf("cancel failed: %w", err)
	}

	if resp.Reservation.ID != "" {
		merge := reservationFromPayload(resp.Reservation, ownerKey)
		m.cache.CancelByID(ownerKey, reservationID, &merge)
	}

	m.logger.Info("reservation cancelled", "reservation_id", reservationID)
	return nil
}

// Modify patches the reservation's fields in place and confirms with the
// server.
func (m *Manager) Modify(ctx context.Context, p ModifyParams) error {
	return m.ModifyAs(ctx, p, "")
}

// ModifyAs is Modify with an explicit _call_source marker.
func (m *Manager) ModifyAs(ctx context.Context, p ModifyParams, source string) error {
	if err := validation.ValidateDate(p.Date); err != nil {
		return fmt.Errorf("invalid date: %w", err)
	}
	if err := validation.ValidateTimeSlot(p.TimeSlot); err != nil {
		return fmt.Errorf("invalid time slot: %w", err)
	}

	_, ownerKey, ok := m.cache.FindReservation(p.ReservationID)
	if !ok {
		return ErrReservationNotFound
	}

	// Эхо придёт уже с новыми датой и временем.
	m.supp.Mark(suppress.Key(api.EventReservationUpdated, p.ReservationID, p.Date, p.TimeSlot), m.ttl)

	snap := m.cache.SnapshotCustomer(ownerKey)
	m.cache.PatchReservation(ownerKey, p.ReservationID, func(r *models.Reservation) {
		r.Date = p.Date
		r.TimeSlot = p.TimeSlot
		r.CustomerName = p.Name
		r.Type = p.Type
	})

	resp, err := m.api.ModifyReservation(ctx, ownerKey, api.ModifyRequest{
		NewDate:               p.Date,
		NewTimeSlot:           p.TimeSlot,
		NewName:               p.Name,
		NewType:               int(p.Type),
		ReservationIDToModify: p.ReservationID,
		CallSource:            source,
	})
	if err != nil {
		m.cache.RestoreCustomer(snap)
		m.logger.Warn("modify failed, cache rolled back",
			"reservation_id", p.ReservationID, "error", err)
		return fmt.Errorf("modify failed: %w", err)
	}

	if resp.Reservation.ID != "" {
		m.cache.UpsertReservation(reservationFromPayload(resp.Reservation, ownerKey))
	}

	m.logger.Info("reservation modified",
		"reservation_id", p.ReservationID,
		"date", p.Date,
		"time_slot", p.TimeSlot)
	return nil
}

// reservationFromPayload converts a wire reservation, falling back to the
// known customer key when the server omits it.
func reservationFromPayload(p api.ReservationPayload, defaultCustomer string) models.Reservation {
	customer := p.CustomerID
	if customer == "" {
		customer = defaultCustomer
	}
	return models.Reservation{
		ID:           p.ID,
		CustomerID:   customer,
		Date:         p.Date,
		TimeSlot:     p.TimeSlot,
		CustomerName: p.CustomerName,
		Type:         models.ReservationType(p.Type),
		Cancelled:    p.Cancelled,
	}
}
