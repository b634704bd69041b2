package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorUniqueness(t *testing.T) {
	errorVars := []error{
		ErrNotFound,
		ErrInvalidTipo,
		ErrInvalidID,
		ErrUnauthenticated,
		ErrAccessDenied,
		ErrSubmissionInProgress,
		ErrInvalidDocument,
		ErrImmutableField,
		ErrIncompleteRecord,
		ErrInvalidCEP,
		ErrCEPNotFound,
		ErrInvalidStatusTransition,
		ErrInvalidStatus,
		ErrInvalidNota,
		ErrInvalidZona,
	}

	for i, err1 := range errorVars {
		for j, err2 := range errorVars {
			if i != j && errors.Is(err1, err2) {
				t.Errorf("Error at index %d and %d are the same: %v", i, j, err1)
			}
		}
	}
}

func TestValidationError(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", &ValidationError{Missing: []string{"dadosPessoais.cpf", "contato.email"}})

	assert.ErrorIs(t, err, ErrIncompleteRecord)

	var verr *ValidationError
	if assert.ErrorAs(t, err, &verr) {
		assert.Equal(t, []string{"dadosPessoais.cpf", "contato.email"}, verr.Missing)
	}
	assert.Contains(t, err.Error(), "dadosPessoais.cpf, contato.email")
	assert.Equal(t, ErrIncompleteRecord.Error(), (&ValidationError{}).Error())
}
