package nvml

import (
	"codeberg.org/mutker/energyctl/internal/errors"
	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

const (
	// Initialization and Lifecycle Errors
	ErrInitFailed     = errors.ErrorCode("nvml_init_failed")
	ErrShutdownFailed = errors.ErrorCode("nvml_shutdown_failed")

	// Device Discovery Errors
	ErrDeviceCountFailed = errors.ErrorCode("nvml_device_count_failed")
	ErrDeviceNotFound    = errors.ErrorCode("nvml_device_not_found")
	ErrUnknownUnit       = errors.ErrorCode("nvml_unknown_unit")

	// Capability Errors
	ErrClockInfoFailed   = errors.ErrorCode("nvml_clock_info_failed")
	ErrPowerLimitsFailed = errors.ErrorCode("nvml_power_limits_failed")

	// Sampling Errors
	ErrNoSuchState = errors.ErrorCode("nvml_no_such_state")
)

// nvmlError represents an NVML-specific error
type nvmlError struct {
	ret nvml.Return
}

func (e nvmlError) Error() string {
	return nvml.ErrorString(e.ret)
}

// newNVMLError creates an error from an NVML return code
func newNVMLError(ret nvml.Return) error {
	if ret == nvml.SUCCESS {
		return nil
	}

	return &nvmlError{ret: ret}
}

// isNVMLSuccess checks if a Return value indicates success
func isNVMLSuccess(ret nvml.Return) bool {
	return ret == nvml.SUCCESS
}
