package cart

import "errors"

var (
	// -- Validation & Input --
	ErrInvalidQuantity = errors.New("invalid cart quantity")

	// -- Resource State --
	ErrProductNotFound = errors.New("product not found")
	ErrLineNotFound    = errors.New("cart item not found")
	ErrCartNotFound    = errors.New("cart not found")
)
