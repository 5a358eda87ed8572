package service

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"ffbot/internal/backend"

	"github.com/shopspring/decimal"
)

// Amounts are entered in thousands and stored in units
var thousand = decimal.NewFromInt(1000)

// Decimal places kept after scaling an entered amount
const amountPlaces = 2

// amountPattern admits plain decimals with bounded digit counts, no exponent
var amountPattern = regexp.MustCompile(`^-?\d{1,15}(\.\d{1,10})?$`)

var (
	// ErrNotOwner is returned when a non-owner tries to manage a space
	ErrNotOwner = errors.New("user is not the owner of the current space")
	// ErrUserNotFound is returned when a target user is not registered
	ErrUserNotFound = errors.New("user not found")
	// ErrGroupNameExists is returned when a line item name is taken
	ErrGroupNameExists = errors.New("group name already exists")
	// ErrSpaceNotAccessible is returned when a space is neither owned nor shared
	ErrSpaceNotAccessible = errors.New("space is not accessible")
)

// ValidationError is a user input problem; Message is shown to the user
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(backend.ErrorTextFormat, fmt.Sprintf(format, args...))}
}

// AsValidation extracts a validation error from err's chain
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// ValidateGroupName trims the name and checks it is non-empty and no
// longer than maxLen characters.
func ValidateGroupName(raw string, maxLen int) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", invalid("Название статьи не может быть пустым")
	}
	if utf8.RuneCountInString(name) > maxLen {
		return "", invalid("Название статьи не может быть длиннее %d символов", maxLen)
	}
	return name, nil
}

// ParseAmount converts an amount typed in thousands ("12.5" or "12,5")
// to units rounded to two decimal places.
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	if !amountPattern.MatchString(s) {
		return decimal.Zero, invalid("Значение должно быть числом. Например 27 или 5.32.")
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, invalid("Значение должно быть числом. Например 27 или 5.32.")
	}
	return v.Mul(thousand).Round(amountPlaces), nil
}

// ParseChatID validates a chat id typed by the user
func ParseChatID(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if _, err := strconv.ParseInt(s, 10, 64); err != nil {
		return "", invalid("ID чата должен быть числом, например -1001234567890")
	}
	return s, nil
}

// ParseTelegramID validates a Telegram user id typed by the user
func ParseTelegramID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, invalid("Telegram ID должен быть положительным числом")
	}
	return id, nil
}
