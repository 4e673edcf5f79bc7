package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/linemk/shopping-mall/internal/lib/apperr"
	"github.com/stretchr/testify/assert"
)

func TestError_IsByCode(t *testing.T) {
	wrapped := fmt.Errorf("service.PaymentService.ProcessPayment: %w", apperr.EmptyCart)

	assert.True(t, errors.Is(wrapped, apperr.EmptyCart))
	assert.False(t, errors.Is(wrapped, apperr.OverAmount))
}

func TestError_WrapKeepsCodeAndCause(t *testing.T) {
	cause := errors.New("disk full")
	err := apperr.IOE.Wrap(cause)

	assert.True(t, errors.Is(err, apperr.IOE))
	assert.True(t, errors.Is(err, cause))
	assert.Nil(t, apperr.IOE.Err, "wrapping must not mutate the shared sentinel")
}

func TestFrom(t *testing.T) {
	appErr := apperr.From(fmt.Errorf("op: %w", apperr.InvalidQueryParameter))
	assert.Equal(t, apperr.CodeInvalidQueryParameter, appErr.Code)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)

	internal := apperr.From(errors.New("boom"))
	assert.Equal(t, apperr.CodeInternal, internal.Code)
	assert.Equal(t, http.StatusInternalServerError, internal.Status)
}

func TestResourceLocked_Conflict(t *testing.T) {
	err := fmt.Errorf("op: %w", apperr.ResourceLocked.Wrap(errors.New("55P03")))

	appErr := apperr.From(err)
	assert.Equal(t, apperr.CodeResourceLocked, appErr.Code)
	assert.Equal(t, http.StatusConflict, appErr.Status)
}
