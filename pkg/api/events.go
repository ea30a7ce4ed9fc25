package api

import (
	"encoding/json"
	"time"
)

// Типы push-событий, приходящих от сервера по стриму.
const (
	EventReservationCreated    = "reservation_created"
	EventReservationUpdated    = "reservation_updated"
	EventReservationCancelled  = "reservation_cancelled"
	EventReservationReinstated = "reservation_reinstated"
	EventConversationMessage   = "conversation_new_message"
	EventVacationUpdated       = "vacation_period_updated"
	EventCustomerUpdated       = "customer_updated"
	EventMetricsUpdated        = "metrics_updated"
	EventSnapshot              = "snapshot"
)

// Команды клиент → сервер по тому же соединению.
const (
	CommandGetSnapshot      = "get_snapshot"
	CommandSetFilter        = "set_filter"
	CommandGetNotifications = "get_notifications"
)

// PushEvent представляет конверт входящего сообщения стрима.
// Data декодируется по Type в типизированный payload; событие
// транзитно — применяется к кэшу и отбрасывается.
type PushEvent struct {
	Type             string          `json:"type"`
	Timestamp        time.Time       `json:"timestamp"`
	Data             json.RawMessage `json:"data"`
	AffectedEntities []string        `json:"affected_entities,omitempty"`
}

// Command представляет исходящее сообщение клиента.
type Command struct {
	Type    string         `json:"type"`
	Filters map[string]any `json:"filters,omitempty"`
	Data    *CommandData   `json:"data,omitempty"`
}

// CommandData опциональные аргументы команды.
type CommandData struct {
	Limit int `json:"limit"`
}

// ReservationPayload данные события reservation_*.
type ReservationPayload struct {
	ID           string `json:"id"`
	CustomerID   string `json:"customer_id"`
	Date         string `json:"date"`
	TimeSlot     string `json:"time_slot"`
	CustomerName string `json:"customer_name,omitempty"`
	Type         int    `json:"type"`
	Cancelled    bool   `json:"cancelled"`
}

// MessagePayload данные события conversation_new_message.
type MessagePayload struct {
	CustomerID string    `json:"customer_id"`
	Timestamp  time.Time `json:"timestamp"`
	Role       string    `json:"role"`
	Text       string    `json:"text"`
}

// PeriodPayload один период отпуска.
type PeriodPayload struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// VacationPayload данные события vacation_period_updated:
// полный новый список периодов, не дельта.
type VacationPayload struct {
	Periods []PeriodPayload `json:"periods"`
}

// SnapshotPayload полное состояние от сервера. Применяется
// целиком, замещая кэш, а не сливаясь с ним.
type SnapshotPayload struct {
	Reservations  map[string][]ReservationPayload `json:"reservations"`
	Conversations map[string][]MessagePayload     `json:"conversations"`
	Vacations     []PeriodPayload                 `json:"vacations"`
}

// MetricsPayload данные события metrics_updated.
type MetricsPayload map[string]float64
