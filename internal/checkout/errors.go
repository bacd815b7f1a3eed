package checkout

import (
	"errors"

	"github.com/ha3uno/omiseyasan/internal/domain"
)

var (
	ErrEmptyCart            = domain.NewValidationError("cart", domain.ErrMsgCartEmpty)
	ErrSubmissionInProgress = errors.New("order submission already in progress")
	ErrAlreadyCompleted     = errors.New("checkout already completed")
	ErrIllegalTransition    = errors.New("illegal transition of checkout status")
	errTotalMismatch        = errors.New("cart total does not match sum of subtotals")
)
