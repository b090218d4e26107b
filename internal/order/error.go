package order

import "errors"

var (
	// -- Validation & Input --
	ErrInvalidKind   = errors.New("invalid order kind")
	ErrMissingFlavor = errors.New("custom flavor required when flavor is Otro")
	ErrUnsafeInput   = errors.New("input contains forbidden characters")
)
