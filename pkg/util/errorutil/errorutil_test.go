package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/triage-service/internal/repository"
	"github.com/spec-kit/triage-service/internal/triage"
)

func TestToDomainError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"empty input", fmt.Errorf("process: %w", triage.ErrEmptyInput), "VALIDATION_FAILED", http.StatusBadRequest},
		{"no corpus", triage.ErrNoCorpus, "CORPUS_UNAVAILABLE", http.StatusServiceUnavailable},
		{"vectorization", triage.ErrVectorization, "TRIAGE_FAILED", http.StatusUnprocessableEntity},
		{"rule engine", triage.ErrRuleEngine, "TRIAGE_FAILED", http.StatusUnprocessableEntity},
		{"not found", repository.ErrNotFound, "NOT_FOUND", http.StatusNotFound},
		{"pgx no rows", pgx.ErrNoRows, "NOT_FOUND", http.StatusNotFound},
		{"conflict", repository.ErrConflict, "CONFLICT", http.StatusConflict},
		{"unknown", errors.New("boom"), "INTERNAL_ERROR", http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			de := ToDomainError(tc.err)
			require.NotNil(t, de)
			assert.Equal(t, tc.code, de.Code)
			assert.Equal(t, tc.status, de.HTTPStatus)
		})
	}
}

func TestToDomainError_PassesThrough(t *testing.T) {
	original := NewValidationError("bad", map[string]any{"field": "issue"})
	de := ToDomainError(fmt.Errorf("wrapped: %w", original))
	assert.Same(t, original, error(de))
	assert.Nil(t, ToDomainError(nil))
	assert.NoError(t, MapError(nil))
}
