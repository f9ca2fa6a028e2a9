package model

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMapping(t *testing.T) {
	t.Run("malformed request maps to 400", func(t *testing.T) {
		err := BorrowRequest{CopyID: "not-a-uuid"}.Validate()
		require.Error(t, err)

		assert.Equal(t, http.StatusBadRequest, ToHTTPStatus(err))
		assert.Equal(t, "VALIDATION_ERROR", ToErrorCode(err))
	})

	t.Run("settling a zero fee maps to 400", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, ToHTTPStatus(ErrNoFeeToPay))
		assert.Equal(t, "NO_FEE_TO_PAY", ToErrorCode(ErrNoFeeToPay))
	})

	t.Run("lending conflicts keep 409", func(t *testing.T) {
		assert.Equal(t, http.StatusConflict, ToHTTPStatus(ErrCopyNotAvailable))
		assert.Equal(t, http.StatusConflict, ToHTTPStatus(ErrBorrowLimitReached))
		assert.Equal(t, http.StatusConflict, ToHTTPStatus(ErrAlreadyReturned))
		assert.Equal(t, http.StatusConflict, ToHTTPStatus(ErrFeeAlreadyPaid))
	})
}
