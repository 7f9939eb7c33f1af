package serverutils

import "fmt"

// AppError carries an HTTP status alongside the underlying failure so the
// error middleware can map pipeline errors to the right response code.
type AppError struct {
	Status  int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(status int, message string, err error) *AppError {
	return &AppError{Status: status, Message: message, Err: err}
}

func BadRequest(message string) *AppError {
	return &AppError{Status: 400, Message: message}
}

func PayloadTooLarge(message string) *AppError {
	return &AppError{Status: 413, Message: message}
}

func UnsupportedMedia(message string) *AppError {
	return &AppError{Status: 415, Message: message}
}
