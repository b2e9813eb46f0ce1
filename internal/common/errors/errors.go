package errors

import (
	"fmt"
	"time"
)

// ErrorCode классифицирует ошибку приложения
type ErrorCode string

const (
	// Ошибки хранилища
	ErrCodeDatabaseError     ErrorCode = "DATABASE_ERROR"
	ErrCodeLedgerWriteFailed ErrorCode = "LEDGER_WRITE_FAILURE"
	ErrCodeCacheError        ErrorCode = "CACHE_ERROR"

	// Ошибки внешних API
	ErrCodeTelegramAPI ErrorCode = "TELEGRAM_API_ERROR"
)

// AppError представляет типизированную ошибку приложения
type AppError struct {
	Code      ErrorCode         `json:"code"`
	Message   string            `json:"message"`
	Context   map[string]string `json:"context,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Cause     error             `json:"-"`
}

// Error возвращает строковое представление ошибки
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap возвращает причину ошибки
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext добавляет контекст к ошибке
func (e *AppError) WithContext(key, value string) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	e.Context[key] = value
	return e
}

// New создает новую ошибку приложения
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Wrap оборачивает существующую ошибку
func Wrap(err error, code ErrorCode, message string) *AppError {
	appErr := New(code, message)
	appErr.Cause = err
	return appErr
}

// NewDatabaseError создает ошибку базы данных
func NewDatabaseError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeDatabaseError, fmt.Sprintf("Database operation failed: %s", operation)).
		WithContext("operation", operation)
}

// NewLedgerWriteError marks a failed audit append; the order row was not
// committed.
func NewLedgerWriteError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeLedgerWriteFailed, fmt.Sprintf("Ledger write failed: %s", operation)).
		WithContext("operation", operation)
}

// NewTelegramAPIError создает ошибку Telegram API
func NewTelegramAPIError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeTelegramAPI, fmt.Sprintf("Telegram API operation failed: %s", operation)).
		WithContext("operation", operation)
}

// AsAppError приводит ошибку к AppError
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if err != nil {
		appErr, _ = err.(*AppError)
	}
	return appErr, appErr != nil
}
