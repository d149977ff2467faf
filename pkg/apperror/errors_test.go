package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormatting(t *testing.T) {
	err := New(CodeUnreachableSink, "no route")
	assert.Equal(t, "[UNREACHABLE_SINK] no route", err.Error())

	withField := NewWithField(CodeInvalidArgument, "bad value", "percentage")
	assert.Equal(t, "[INVALID_ARGUMENT] bad value (field: percentage)", withField.Error())
}

func TestWrapAndUnwrap(t *testing.T) {
	cause := errors.New("io failure")
	err := Wrap(cause, CodeLoadError, "could not read pips")

	assert.ErrorIs(t, err, cause)
	assert.True(t, Is(err, CodeLoadError))
	assert.Equal(t, CodeLoadError, Code(err))

	// Codes survive another layer of fmt wrapping
	outer := fmt.Errorf("run failed: %w", err)
	assert.True(t, Is(outer, CodeLoadError))
}

func TestCode_NonAppError(t *testing.T) {
	assert.Equal(t, CodeInternal, Code(errors.New("plain")))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{CodeInvalidArgument, http.StatusBadRequest},
		{CodeNotFound, http.StatusNotFound},
		{CodeNodeConflict, http.StatusConflict},
		{CodeOverlappingPrePlan, http.StatusConflict},
		{CodeUnresolvedCongestion, http.StatusUnprocessableEntity},
		{CodeMissingPrePlan, http.StatusUnprocessableEntity},
		{CodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, New(tt.code, "x").HTTPStatus(), "code %s", tt.code)
	}

	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("plain")))
}

func TestSeverity(t *testing.T) {
	assert.True(t, IsWarning(NewWarning(CodeInvalidArgument, "w")))
	assert.True(t, IsCritical(NewCritical(CodeOverlappingPrePlan, "c")))
	assert.False(t, IsCritical(New(CodeInternal, "e")))
	assert.Equal(t, "warning", SeverityWarning.String())
	assert.Equal(t, "critical", SeverityCritical.String())
}

func TestWithDetails(t *testing.T) {
	err := New(CodeNodeConflict, "conflict").
		WithDetails("node", 7).
		WithField("nodes")
	assert.Equal(t, 7, err.Details["node"])
	assert.Equal(t, "nodes", err.Field)
}

func TestValidationErrors(t *testing.T) {
	v := NewValidationErrors()
	assert.True(t, v.IsValid())
	assert.Nil(t, v.First())

	v.AddWarning(CodeInvalidArgument, "minor")
	assert.True(t, v.IsValid())
	assert.True(t, v.HasWarnings())

	v.AddError(CodeNodeConflict, "major")
	assert.False(t, v.IsValid())
	assert.Equal(t, CodeNodeConflict, v.First().Code)

	other := NewValidationErrors()
	other.AddError(CodeMissingResult, "also major")
	v.Merge(other)
	assert.Len(t, v.Errors, 2)
	assert.Len(t, v.ErrorMessages(), 2)

	// Severity routes through Add
	v.Add(NewWarning(CodeInvalidArgument, "routed"))
	assert.Len(t, v.Warnings, 2)
}
