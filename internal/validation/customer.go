package validation

import (
	"fmt"
	"regexp"
	"time"
)

// CustomerKeyPattern определяет допустимый формат ключа клиента
// Номер телефона в международном формате без "+": только цифры
// Длина: 8-15 символов (E.164)
var CustomerKeyPattern = regexp.MustCompile(`^[0-9]{8,15}$`)

const (
	// MinCustomerKeyLen минимальная длина ключа клиента
	MinCustomerKeyLen = 8
	// MaxCustomerKeyLen максимальная длина ключа клиента
	MaxCustomerKeyLen = 15
)

// ValidateCustomerKey проверяет, что ключ клиента соответствует требованиям
// Формат: только цифры, 8-15 символов
func ValidateCustomerKey(key string) error {
	if key == "" {
		return fmt.Errorf("customer key cannot be empty")
	}

	if len(key) < MinCustomerKeyLen {
		return fmt.Errorf("customer key must be at least %d digits long", MinCustomerKeyLen)
	}

	if len(key) > MaxCustomerKeyLen {
		return fmt.Errorf("customer key must not exceed %d digits", MaxCustomerKeyLen)
	}

	if !CustomerKeyPattern.MatchString(key) {
		return fmt.Errorf("customer key can only contain digits (0-9)")
	}

	return nil
}

// ValidateDate проверяет формат даты YYYY-MM-DD
func ValidateDate(date string) error {
	if date == "" {
		return fmt.Errorf("date cannot be empty")
	}

	if _, err := time.Parse("2006-01-02", date); err != nil {
		return fmt.Errorf("date must be in YYYY-MM-DD format")
	}

	return nil
}

// ValidateTimeSlot проверяет формат времени HH:MM (24h)
func ValidateTimeSlot(timeSlot string) error {
	if timeSlot == "" {
		return fmt.Errorf("time slot cannot be empty")
	}

	if _, err := time.Parse("15:04", timeSlot); err != nil {
		return fmt.Errorf("time slot must be in HH:MM format")
	}

	return nil
}
