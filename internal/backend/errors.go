package backend

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a backend failure
type Kind string

const (
	ServiceUnavailable     Kind = "service_unavailable"
	UserCreationFailed     Kind = "user_creation_failed"
	UserDeletionFailed     Kind = "user_deletion_failed"
	LineItemCreationFailed Kind = "line_item_creation_failed"
	LineItemListFailed     Kind = "line_item_list_failed"
	LineItemFetchFailed    Kind = "line_item_fetch_failed"
	LineItemDeletionFailed Kind = "line_item_deletion_failed"
	SummaryFetchFailed     Kind = "summary_fetch_failed"
	TransactionFailed      Kind = "transaction_failed"
	SettingsUpdateFailed   Kind = "settings_update_failed"
	LinkFailed             Kind = "link_failed"
	UnlinkFailed           Kind = "unlink_failed"
	ArchiveFetchFailed     Kind = "archive_fetch_failed"
	ExportFailed           Kind = "export_failed"
)

// ErrorTextFormat wraps every user-facing error text
const ErrorTextFormat = "❗️ %s ❗️"

var kindMessages = map[Kind]string{
	ServiceUnavailable:     "Сервис временно недоступен. Попробуйте позже",
	UserCreationFailed:     "Ошибка создания пользователя",
	UserDeletionFailed:     "Ошибка удаления аккаунта. Попробуйте позже",
	LineItemCreationFailed: "Ошибка при создании статьи. Попробуйте позже",
	LineItemListFailed:     "Ошибка получения списка статей. Попробуйте позже",
	LineItemFetchFailed:    "Ошибка получения статьи. Попробуйте позже",
	LineItemDeletionFailed: "Ошибка при удалении статьи. Попробуйте позже",
	SummaryFetchFailed:     "Ошибка получения отчета. Попробуйте позже",
	TransactionFailed:      "Ошибка добавления транзакции. Попробуйте заново.",
	SettingsUpdateFailed:   "Ошибка изменения настроек. Попробуйте позже",
	LinkFailed:             "Ошибка при предоставлении доступа. Попробуйте позже",
	UnlinkFailed:           "Ошибка при отзыве доступа. Попробуйте позже",
	ArchiveFetchFailed:     "Ошибка получения архива. Попробуйте позже",
	ExportFailed:           "Ошибка выгрузки файла. Попробуйте позже",
}

// Error is the single error type returned by the gateway. Message is ready
// to be shown to the user; Err keeps the underlying cause for logs.
type Error struct {
	Kind    Kind
	Message string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("backend %s: %v", e.Kind, e.Err)
	}
	return "backend " + string(e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds a gateway error of the given kind
func NewError(kind Kind, cause error) *Error {
	return &Error{Kind: kind, Message: KindMessage(kind), Err: cause}
}

// KindMessage returns the user-facing text of a failure kind
func KindMessage(kind Kind) string {
	msg, ok := kindMessages[kind]
	if !ok {
		msg = kindMessages[ServiceUnavailable]
	}
	return fmt.Sprintf(ErrorTextFormat, msg)
}

// AsError extracts a gateway error from err's chain
func AsError(err error) (*Error, bool) {
	var be *Error
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}

// IsKind reports whether err is a gateway error of the given kind
func IsKind(err error, kind Kind) bool {
	be, ok := AsError(err)
	return ok && be.Kind == kind
}

// UserMessage returns the text to show for any failure. Errors that did
// not come from the gateway are reported as an unavailable service.
func UserMessage(err error) string {
	if be, ok := AsError(err); ok && be.Message != "" {
		return be.Message
	}
	return KindMessage(ServiceUnavailable)
}
