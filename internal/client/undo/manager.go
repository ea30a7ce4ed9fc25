// Package undo reverses previously confirmed mutations. Every undo goes
// through the same optimistic-patch discipline as a regular mutation, so
// its own server echo is suppressed too.
package undo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	httpClient "github.com/rsavin/bookdesk/internal/client/api"
	"github.com/rsavin/bookdesk/internal/client/cache"
	"github.com/rsavin/bookdesk/internal/client/mutate"
	"github.com/rsavin/bookdesk/internal/client/suppress"
	"github.com/rsavin/bookdesk/internal/models"
	"github.com/rsavin/bookdesk/pkg/api"
)

// Kind identifies the operation being reversed.
type Kind string

const (
	KindCreate Kind = "create" // undo = cancel by id
	KindCancel Kind = "cancel" // undo = reinstate
	KindModify Kind = "modify" // undo = restore pre-modification fields
)

// Record describes a confirmed operation and everything needed to reverse
// it. Previous is the pre-modification state and is only meaningful for
// KindModify; a differing Previous.CustomerID means the modification also
// changed the customer's identifying key.
type Record struct {
	Kind        Kind
	Reservation models.Reservation
	Previous    models.Reservation
}

// Manager откатывает подтверждённые операции через Mutation Manager
type Manager struct {
	mutations *mutate.Manager
	api       httpClient.ClientAPI
	cache     *cache.Cache
	supp      *suppress.Suppressor
	logger    *slog.Logger
	ttl       time.Duration
}

// NewManager creates a new undo manager. ttl bounds suppression keys the
// same way it does for regular mutations.
func NewManager(mutations *mutate.Manager, apiClient httpClient.ClientAPI, c *cache.Cache, supp *suppress.Suppressor, logger *slog.Logger, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = mutate.DefaultSuppressTTL
	}
	return &Manager{
		mutations: mutations,
		api:       apiClient,
		cache:     c,
		supp:      supp,
		logger:    logger,
		ttl:       ttl,
	}
}

// Undo dispatches on the record's kind.
func (m *Manager) Undo(ctx context.Context, rec Record) error {
	switch rec.Kind {
	case KindCreate:
		return m.undoCreate(ctx, rec)
	case KindCancel:
		return m.undoCancel(ctx, rec)
	case KindModify:
		return m.undoModify(ctx, rec)
	default:
		return fmt.Errorf("unknown undo kind %q", rec.Kind)
	}
}

// undoCreate cancels the reservation that was created.
func (m *Manager) undoCreate(ctx context.Context, rec Record) error {
	if err := m.mutations.CancelAs(ctx, rec.Reservation.ID, api.CallSourceUndo); err != nil {
		return fmt.Errorf("undo create: %w", err)
	}
	m.logger.Info("undid create", "reservation_id", rec.Reservation.ID)
	return nil
}

// undoCancel reinstates a cancelled reservation, merging server-returned
// fields into the optimistic flip.
func (m *Manager) undoCancel(ctx context.Context, rec Record) error {
	id := rec.Reservation.ID
	res, ownerKey, ok := m.cache.FindReservation(id)
	if !ok {
		return mutate.ErrReservationNotFound
	}

	m.supp.Mark(suppress.Key(api.EventReservationReinstated, id, res.Date, res.TimeSlot), m.ttl)

	snap := m.cache.SnapshotCustomer(ownerKey)
	m.cache.ReinstateByID(ownerKey, id, nil)

	resp, err := m.api.UndoCancel(ctx, api.UndoCancelRequest{
		ReservationID: id,
		CallSource:    api.CallSourceUndo,
	})
	if err != nil {
		m.cache.RestoreCustomer(snap)
		m.logger.Warn("undo cancel failed, cache rolled back",
			"reservation_id", id, "error", err)
		return fmt.Errorf("undo cancel: %w", err)
	}

	if resp.Reservation.ID != "" {
		merge := models.Reservation{
			Date:         resp.Reservation.Date,
			TimeSlot:     resp.Reservation.TimeSlot,
			CustomerName: resp.Reservation.CustomerName,
			Type:         models.ReservationType(resp.Reservation.Type),
		}
		m.cache.ReinstateByID(ownerKey, id, &merge)
	}

	m.logger.Info("undid cancel", "reservation_id", id)
	return nil
}

// undoModify restores the pre-modification fields. When the modification
// also changed the customer key, the identity is reverted first — and the
// whole undo aborts if that call fails — then every customer-keyed cache
// structure is rekeyed atomically before the reservation fields are
// restored.
func (m *Manager) undoModify(ctx context.Context, rec Record) error {
	prev, cur := rec.Previous, rec.Reservation

	if prev.CustomerID != "" && prev.CustomerID != cur.CustomerID {
		err := m.api.ModifyID(ctx, api.ModifyIDRequest{
			OldID:         cur.CustomerID,
			NewID:         prev.CustomerID,
			ReservationID: cur.ID,
			CustomerName:  prev.CustomerName,
			CallSource:    api.CallSourceUndo,
		})
		if err != nil {
			// Никакого частичного undo: поля записи не трогаем.
			m.logger.Warn("identity revert failed, undo aborted",
				"reservation_id", cur.ID, "error", err)
			return fmt.Errorf("undo modify: identity revert: %w", err)
		}
		m.cache.Rekey(cur.CustomerID, prev.CustomerID)
	}

	err := m.mutations.ModifyAs(ctx, mutate.ModifyParams{
		ReservationID: cur.ID,
		Date:          prev.Date,
		TimeSlot:      prev.TimeSlot,
		Name:          prev.CustomerName,
		Type:          prev.Type,
	}, api.CallSourceUndo)
	if err != nil {
		return fmt.Errorf("undo modify: %w", err)
	}

	m.logger.Info("undid modify",
		"reservation_id", cur.ID,
		"restored_date", prev.Date,
		"restored_time_slot", prev.TimeSlot)
	return nil
}
