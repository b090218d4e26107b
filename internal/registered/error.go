package registered

import "errors"

var (
	// -- Validation & Input --
	ErrInvalidPatch = errors.New("invalid patch")

	// -- Resource State --
	ErrUnknownOrder = errors.New("order not found in current view")
	ErrNotEditable  = errors.New("order is no longer editable")
)
