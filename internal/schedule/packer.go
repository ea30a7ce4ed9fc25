// Package schedule packs reservations that share a coarse time window into
// non-overlapping, individually timed slots for display.
package schedule

import (
	"sort"
	"time"

	"github.com/rsavin/bookdesk/internal/models"
)

const (
	// DefaultWindowMinutes is the coarse window length used when Options
	// leaves it zero.
	DefaultWindowMinutes = 120

	// MinWindowMinutes is the floor for the configurable window length.
	MinWindowMinutes = 60

	minutesPerDay = 1440

	slotGapMinutes        = 1
	regularSlotMinutes    = 20
	compressedSlotMinutes = 15
	compressedGroupSize   = 6
)

// Options controls packing behavior.
type Options struct {
	// FreeRoam includes cancelled reservations in the output (edit-disabled
	// on past dates) and anchors windows at midnight instead of DayStart.
	FreeRoam bool

	// WindowMinutes is the coarse window length. Zero means
	// DefaultWindowMinutes; values below MinWindowMinutes are raised to it.
	WindowMinutes int

	// DayStartMinutes is the minute-of-day the first window opens at when
	// not in free-roam mode.
	DayStartMinutes int

	// Today is the current date (YYYY-MM-DD) used to decide whether a
	// cancelled reservation is still editable. Empty means time.Now.
	Today string
}

// PositionedEvent is a reservation with a concrete assigned interval,
// expressed in minutes from midnight, both ends clamped to [0, 1439].
type PositionedEvent struct {
	models.Reservation

	Start    int
	End      int
	Editable bool
}

// groupKey identifies a slot group: reservations on the same date whose raw
// time falls into the same coarse window.
type groupKey struct {
	date string
	base int
}

// Pack assigns each reservation a concrete start/end time.
//
// Reservations are grouped by (date, window start). Within a group they are
// ordered by ascending type, ties broken by case-sensitive customer name
// (customer key when the name is empty), so the result is independent of
// input order. Each member gets 20 minutes, or 15 when the group has six or
// more, with a fixed 1-minute gap between consecutive slots; the group is
// laid out sequentially from the window start.
//
// Cancelled reservations are dropped unless opts.FreeRoam is set.
// Reservations with an unparsable date or time are skipped, never fatal.
func Pack(reservations []models.Reservation, opts Options) []PositionedEvent {
	window := opts.WindowMinutes
	if window == 0 {
		window = DefaultWindowMinutes
	}
	if window < MinWindowMinutes {
		window = MinWindowMinutes
	}

	anchor := opts.DayStartMinutes
	if opts.FreeRoam {
		anchor = 0
	}
	if anchor < 0 || anchor >= minutesPerDay {
		anchor = 0
	}

	today := opts.Today
	if today == "" {
		today = time.Now().Format("2006-01-02")
	}

	groups := make(map[groupKey][]models.Reservation)
	for _, r := range reservations {
		if r.Cancelled && !opts.FreeRoam {
			continue
		}
		minute, ok := parseClock(r.TimeSlot)
		if !ok || !validDate(r.Date) {
			continue
		}
		key := groupKey{date: r.Date, base: windowStart(minute, anchor, window)}
		groups[key] = append(groups[key], r)
	}

	keys := make([]groupKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].date != keys[j].date {
			return keys[i].date < keys[j].date
		}
		return keys[i].base < keys[j].base
	})

	var out []PositionedEvent
	for _, k := range keys {
		group := groups[k]
		sortGroup(group)

		duration := regularSlotMinutes
		if len(group) >= compressedGroupSize {
			duration = compressedSlotMinutes
		}

		for i, r := range group {
			start := clampMinute(k.base + i*(duration+slotGapMinutes))
			end := clampMinute(start + duration)
			out = append(out, PositionedEvent{
				Reservation: r,
				Start:       start,
				End:         end,
				Editable:    !(r.Cancelled && r.Date < today),
			})
		}
	}

	// Cross-group ordering is by actual start time; the stable sort keeps
	// group-relative order for equal starts.
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Start < out[j].Start
	})

	return out
}

// sortGroup orders a slot group deterministically: ascending type, then
// case-sensitive lexicographic name, falling back to the customer key for
// unnamed reservations.
func sortGroup(group []models.Reservation) {
	sort.SliceStable(group, func(i, j int) bool {
		if group[i].Type != group[j].Type {
			return group[i].Type < group[j].Type
		}
		return sortName(group[i]) < sortName(group[j])
	})
}

func sortName(r models.Reservation) string {
	if r.CustomerName != "" {
		return r.CustomerName
	}
	return r.CustomerID
}

// windowStart returns the start minute of the coarse window containing t.
// Times before the anchor fall into windows counted backwards from it.
func windowStart(t, anchor, window int) int {
	rel := t - anchor
	if rel < 0 {
		rel -= window - 1
	}
	return clampMinute(anchor + (rel/window)*window)
}

func clampMinute(m int) int {
	if m < 0 {
		return 0
	}
	if m > minutesPerDay-1 {
		return minutesPerDay - 1
	}
	return m
}

// parseClock parses "HH:MM" into minutes from midnight.
func parseClock(s string) (int, bool) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}

func validDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}
