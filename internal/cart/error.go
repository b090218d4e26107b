package cart

import "errors"

var (
	// -- Validation & Input --
	ErrInvalidDraft    = errors.New("invalid draft")
	ErrIndexOutOfRange = errors.New("cart index out of range")

	// -- Storage Failures --
	ErrFailedSaveCart  = errors.New("failed to save cart snapshot")
	ErrFailedLoadCart  = errors.New("failed to load cart snapshots")
	ErrFailedPurgeCart = errors.New("failed to purge cart snapshots")
)
