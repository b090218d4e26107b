package registrar

import "errors"

var (
	ErrEmptyCart = errors.New("no pending orders in cart")
)
