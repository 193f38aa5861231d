package domain

import "fmt"

// AppError is a business failure carrying the HTTP status it maps to.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Cause   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

func ErrNotFound(entity, id string) *AppError {
	return &AppError{Code: "NOT_FOUND", Message: fmt.Sprintf("%s %s not found", entity, id), Status: 404}
}

func ErrConflict(code, msg string) *AppError {
	return &AppError{Code: code, Message: msg, Status: 409}
}

func ErrValidation(msg string) *AppError {
	return &AppError{Code: "VALIDATION_ERROR", Message: msg, Status: 400}
}

func ErrUnauthorized(msg string) *AppError {
	return &AppError{Code: "UNAUTHORIZED", Message: msg, Status: 401}
}

func ErrForbidden(code, msg string) *AppError {
	return &AppError{Code: code, Message: msg, Status: 403}
}

func ErrInsufficientBalance() *AppError {
	return &AppError{Code: "INSUFFICIENT_BALANCE", Message: "insufficient balance", Status: 400}
}

func ErrDuplicatePrediction() *AppError {
	return ErrConflict("DUPLICATE_PREDICTION", "a prediction for this fixture already exists")
}

func ErrAlreadyOwned(itemID string) *AppError {
	return ErrConflict("ALREADY_OWNED", fmt.Sprintf("item %s already owned", itemID))
}

func ErrNotOwned(itemID string) *AppError {
	return ErrForbidden("NOT_OWNED", fmt.Sprintf("item %s not owned", itemID))
}

func ErrInternal(msg string, cause error) *AppError {
	return &AppError{Code: "INTERNAL_ERROR", Message: msg, Status: 500, Cause: cause}
}
