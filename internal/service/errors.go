package service

import apierrors "github.com/bigkaa/gotransfer/internal/api/errors"

// TransferError — типизированная ошибка сервисного слоя.
// Несёт HTTP-статус и машиночитаемый код, чтобы handlers
// могли формировать ответ без разбора текста ошибки.
type TransferError struct {
	StatusCode int
	Code       string
	Message    string
}

// Error реализует интерфейс error.
func (e *TransferError) Error() string {
	return e.Message
}

// Конструкторы типовых ошибок сервисного слоя.

func errValidation(message string) *TransferError {
	return &TransferError{StatusCode: 400, Code: apierrors.CodeValidationError, Message: message}
}

func errNotFound(message string) *TransferError {
	return &TransferError{StatusCode: 404, Code: apierrors.CodeNotFound, Message: message}
}

func errForbidden(message string) *TransferError {
	return &TransferError{StatusCode: 403, Code: apierrors.CodeForbidden, Message: message}
}

func errGone(message string) *TransferError {
	return &TransferError{StatusCode: 410, Code: apierrors.CodeGone, Message: message}
}

func errConflict(message string) *TransferError {
	return &TransferError{StatusCode: 409, Code: apierrors.CodeConflict, Message: message}
}

func errFileTooLarge(message string) *TransferError {
	return &TransferError{StatusCode: 413, Code: apierrors.CodeFileTooLarge, Message: message}
}

func errBackend(message string) *TransferError {
	return &TransferError{StatusCode: 502, Code: apierrors.CodeBackendError, Message: message}
}

func errInternal(message string) *TransferError {
	return &TransferError{StatusCode: 500, Code: apierrors.CodeInternalError, Message: message}
}
