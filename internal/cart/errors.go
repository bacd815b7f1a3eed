package cart

import "github.com/ha3uno/omiseyasan/internal/domain"

var (
	ErrInvalidQuantity = domain.NewValidationError("quantity", domain.ErrMsgQuantityPositive)
	ErrInvalidPrice    = domain.NewValidationError("price", domain.ErrMsgPriceNegative)
)
