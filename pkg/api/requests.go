package api

// CallSourceUndo marks a mutation issued by the undo path; the server
// uses it only to skip its duplicate notification, never semantically.
const CallSourceUndo = "undo"

// ReserveRequest представляет запрос на создание записи
// POST /reservations/{customerKey}
type ReserveRequest struct {
	Date       string `json:"date"`
	TimeSlot   string `json:"time_slot"`
	Name       string `json:"name,omitempty"`
	Type       int    `json:"type"`
	CallSource string `json:"_call_source,omitempty"`
}

// CancelRequest представляет запрос на отмену записи
// POST /reservations/{customerKey}/cancel
type CancelRequest struct {
	ReservationIDToCancel string `json:"reservation_id_to_cancel"`
	CallSource            string `json:"_call_source,omitempty"`
}

// ModifyRequest представляет запрос на изменение записи
// POST /reservations/{customerKey}/modify
type ModifyRequest struct {
	NewDate               string `json:"new_date"`
	NewTimeSlot           string `json:"new_time_slot"`
	NewName               string `json:"new_name,omitempty"`
	NewType               int    `json:"new_type"`
	ReservationIDToModify string `json:"reservation_id_to_modify"`
	CallSource            string `json:"_call_source,omitempty"`
}

// UndoCancelRequest представляет запрос на восстановление отменённой записи
// POST /undo-cancel
type UndoCancelRequest struct {
	ReservationID string `json:"reservation_id"`
	CallSource    string `json:"_call_source,omitempty"`
}

// ModifyIDRequest представляет запрос на смену идентификатора клиента
// (номера телефона)
// POST /api/modify-id
type ModifyIDRequest struct {
	OldID         string `json:"old_id"`
	NewID         string `json:"new_id"`
	ReservationID string `json:"reservation_id"`
	CustomerName  string `json:"customer_name,omitempty"`
	CallSource    string `json:"_call_source,omitempty"`
}

// ReservationResponse представляет подтверждённое состояние записи
type ReservationResponse struct {
	Reservation ReservationPayload `json:"reservation"`
	Message     string             `json:"message,omitempty"`
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Message string `json:"message"`
}
