package domain

import (
	"errors"
	"fmt"
)

// Error types for consistent error handling across the console.

// ErrNotFound indicates a resource was not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrExternalService indicates a failure in a backend call, after the
// client exhausted its own handling (retries, breaker).
type ErrExternalService struct {
	Service string
	Err     error
}

func (e *ErrExternalService) Error() string {
	return fmt.Sprintf("external service error [%s]: %v", e.Service, e.Err)
}

func (e *ErrExternalService) Unwrap() error {
	return e.Err
}

// ErrNetwork indicates no response was received from the backend
// (timeout, DNS, connection refused) after all retry attempts.
type ErrNetwork struct {
	Attempts int
	Err      error
}

func (e *ErrNetwork) Error() string {
	return fmt.Sprintf("network error after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ErrNetwork) Unwrap() error {
	return e.Err
}

// ErrAPI is a response that did arrive with a non-2xx status.
// Detail carries the backend-provided message.
type ErrAPI struct {
	Status int
	Detail string
}

func (e *ErrAPI) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("api error %d", e.Status)
}

// ErrCircuitOpen indicates the circuit breaker is open.
type ErrCircuitOpen struct {
	Service string
}

func (e *ErrCircuitOpen) Error() string {
	return fmt.Sprintf("circuit breaker open for service: %s", e.Service)
}

// ErrValidation indicates a client-side validation error (bad input).
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrUnauthorized indicates invalid credentials or an expired session.
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// ErrConflict indicates the operation clashes with existing state
// (e.g. a ticket already billed for the month).
type ErrConflict struct {
	Message string
}

func (e *ErrConflict) Error() string {
	return e.Message
}

// UserMessage returns the text shown to the operator for err.
// Backend-provided detail takes priority over the generic fallback.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}

	var apiErr *ErrAPI
	var validation *ErrValidation
	var unauthorized *ErrUnauthorized
	var network *ErrNetwork
	var circuitOpen *ErrCircuitOpen
	var notFound *ErrNotFound
	var conflict *ErrConflict

	switch {
	case errors.As(err, &apiErr) && apiErr.Detail != "":
		return apiErr.Detail
	case errors.As(err, &validation):
		return validation.Message
	case errors.As(err, &unauthorized):
		return unauthorized.Error()
	case errors.As(err, &conflict):
		return conflict.Message
	case errors.As(err, &notFound):
		return notFound.Error()
	case errors.As(err, &network):
		return "Falha de conexão com o servidor"
	case errors.As(err, &circuitOpen):
		return "Servidor indisponível no momento"
	}
	if fallback != "" {
		return fallback
	}
	return err.Error()
}
