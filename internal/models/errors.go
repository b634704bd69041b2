package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound                = errors.New("not found")
	ErrInvalidTipo             = errors.New("invalid proponente tipo")
	ErrInvalidID               = errors.New("invalid id")
	ErrUnauthenticated         = errors.New("user not authenticated")
	ErrAccessDenied            = errors.New("access denied")
	ErrSubmissionInProgress    = errors.New("submission already in progress")
	ErrInvalidDocument         = errors.New("invalid CPF or CNPJ")
	ErrImmutableField          = errors.New("field cannot be changed after creation")
	ErrIncompleteRecord        = errors.New("required fields missing")
	ErrInvalidCEP              = errors.New("invalid CEP")
	ErrCEPNotFound             = errors.New("CEP not found")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrInvalidStatus           = errors.New("invalid projeto status")
	ErrInvalidNota             = errors.New("nota must be between 0 and 10")
	ErrInvalidZona             = errors.New("invalid zona")
)

// ValidationError lists the required fields that are not populated.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	if len(e.Missing) == 0 {
		return ErrIncompleteRecord.Error()
	}
	return fmt.Sprintf("%s: %s", ErrIncompleteRecord, strings.Join(e.Missing, ", "))
}

// Unwrap makes a ValidationError match ErrIncompleteRecord.
func (e *ValidationError) Unwrap() error {
	return ErrIncompleteRecord
}
