package energymodel

import "codeberg.org/mutker/energyctl/internal/errors"

const (
	// Registration Errors
	ErrAlreadyRegistered    = errors.ErrorCode("domain_already_registered")
	ErrInconsistentCapacity = errors.ErrorCode("domain_inconsistent_capacity")
	ErrUnknownUnit          = errors.ErrorCode("domain_unknown_unit")

	// Table Construction Errors
	ErrBuildFailed            = errors.ErrorCode("domain_build_failed")
	ErrInvalidState           = errors.ErrorCode("domain_invalid_state")
	ErrNonIncreasingFrequency = errors.ErrorCode("domain_non_increasing_frequency")
	ErrInvalidPower           = errors.ErrorCode("domain_invalid_power")
)
