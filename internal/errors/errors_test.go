package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"statlab/domain/core"

	"github.com/stretchr/testify/assert"
)

func TestWrapClassifiesDomainValidation(t *testing.T) {
	err := Wrap(core.ErrRaggedMatrix, "parse matrix")
	assert.Equal(t, CodeInvalidInput, GetCode(err))
	assert.True(t, stderrors.Is(err, core.ErrInvalidInput))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))
}

func TestWrapKeepsAppErrorCode(t *testing.T) {
	inner := NotFound("analysis")
	err := Wrapf(inner, "lookup %s", "abc")
	assert.Equal(t, CodeNotFound, GetCode(err))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(err))
	assert.Contains(t, err.Error(), "analysis not found")
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, "nothing"))
	assert.NoError(t, WithCode(CodeInternalError, nil))
}

func TestUnknownErrorsAreInternal(t *testing.T) {
	err := fmt.Errorf("disk on fire")
	assert.Equal(t, "UNKNOWN", GetCode(err))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(err))
	assert.Equal(t, CodeInternalError, GetCode(Wrap(err, "boom")))
	assert.Equal(t, CodeValidationError, GetCode(WithCode(CodeValidationError, err)))
}
