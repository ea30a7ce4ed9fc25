package models

import "time"

// ReservationType классифицирует запись в расписании.
type ReservationType int

const (
	TypeCheckup      ReservationType = 0 // Первичный осмотр
	TypeFollowup     ReservationType = 1 // Повторный приём
	TypeConversation ReservationType = 2 // Маркер переписки, не занимает слот
)

// Reservation представляет одну запись на приём.
// Записи живут в кэше клиента и меняются только через
// mutation/undo операции или применение push-событий.
// Отмена — это флаг, не удаление.
type Reservation struct {
	ID           string          `json:"id"`                      // ID уникальный идентификатор записи
	CustomerID   string          `json:"customer_id"`             // CustomerID ключ клиента (номер телефона)
	Date         string          `json:"date"`                    // Date дата приёма в формате YYYY-MM-DD
	TimeSlot     string          `json:"time_slot"`               // TimeSlot время приёма в формате HH:MM (24h)
	CustomerName string          `json:"customer_name,omitempty"` // CustomerName имя клиента (опционально)
	Type         ReservationType `json:"type"`                    // Type тип записи
	Cancelled    bool            `json:"cancelled"`               // Cancelled флаг отмены
}

// ConversationMessage представляет одно сообщение переписки с клиентом.
// Сообщения append-only: никогда не изменяются, только добавляются.
type ConversationMessage struct {
	CustomerID string    `json:"customer_id"` // CustomerID ключ клиента
	Timestamp  time.Time `json:"timestamp"`   // Timestamp время сообщения
	Role       string    `json:"role"`        // Role отправитель ("user", "assistant", "secretary")
	Text       string    `json:"text"`        // Text текст сообщения
}

// VacationPeriod представляет период отпуска (приём не ведётся).
type VacationPeriod struct {
	Start string `json:"start"` // Start первый день периода, YYYY-MM-DD
	End   string `json:"end"`   // End последний день периода, YYYY-MM-DD
}

// Metrics is the side-channel metrics store fed by metrics_updated
// push events. Not part of the reservation cache proper.
type Metrics map[string]float64

// CachedState is the snapshot persisted between client runs.
// SavedAt bounds its lifetime: stale snapshots are discarded on hydrate.
type CachedState struct {
	Reservations  map[string][]Reservation        `json:"reservations"`
	Conversations map[string][]ConversationMessage `json:"conversations"`
	Vacations     []VacationPeriod                `json:"vacations"`
	LastUpdate    time.Time                       `json:"last_update"`
	SavedAt       time.Time                       `json:"saved_at"`
}
