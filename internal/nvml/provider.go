// Package nvml exposes NVIDIA GPUs as processing units for energy model
// registration: one unit per device, with operating points synthesized from
// the device's clock and power-management limits. It implements both the
// sampler and the capacity query consumed by the registry.
package nvml

import (
	"codeberg.org/mutker/energyctl/internal/energymodel"
	"codeberg.org/mutker/energyctl/internal/errors"
	"codeberg.org/mutker/energyctl/internal/logger"
	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

const (
	mhzToHz = 1_000_000

	// clockStepMHz is the grid the sampler quantizes frequency floors to.
	// NVIDIA SM clocks move in finer increments; a coarse grid keeps the
	// state count manageable.
	clockStepMHz = 105
)

type device struct {
	handle      nvml.Device
	name        string
	maxClockMHz uint32
	minPowerMW  uint32
	maxPowerMW  uint32
}

// Provider enumerates the NVIDIA devices of the host and serves operating
// point samples and capacity queries for them. Unit identifiers are NVML
// device indices.
type Provider struct {
	devices []device
}

func NewProvider() (*Provider, error) {
	errFactory := errors.New()

	if ret := nvml.Init(); !isNVMLSuccess(ret) {
		return nil, errFactory.Wrap(ErrInitFailed, newNVMLError(ret))
	}

	count, ret := nvml.DeviceGetCount()
	if !isNVMLSuccess(ret) {
		return nil, errFactory.Wrap(ErrDeviceCountFailed, newNVMLError(ret))
	}

	p := &Provider{devices: make([]device, 0, count)}
	for i := 0; i < count; i++ {
		d, err := describeDevice(i)
		if err != nil {
			return nil, err
		}

		logger.Info().
			Int("unit", i).
			Str("name", d.name).
			Uint32("max_clock_mhz", d.maxClockMHz).
			Uint32("min_power_mw", d.minPowerMW).
			Uint32("max_power_mw", d.maxPowerMW).
			Msg("Detected GPU")

		p.devices = append(p.devices, d)
	}

	return p, nil
}

func describeDevice(index int) (device, error) {
	errFactory := errors.New()

	handle, ret := nvml.DeviceGetHandleByIndex(index)
	if !isNVMLSuccess(ret) {
		return device{}, errFactory.Wrap(ErrDeviceNotFound, newNVMLError(ret))
	}

	name, ret := handle.GetName()
	if !isNVMLSuccess(ret) {
		name = "unknown"
	}

	maxClock, ret := handle.GetMaxClockInfo(nvml.CLOCK_SM)
	if !isNVMLSuccess(ret) {
		return device{}, errFactory.Wrap(ErrClockInfoFailed, newNVMLError(ret))
	}

	minPower, maxPower, ret := handle.GetPowerManagementLimitConstraints()
	if !isNVMLSuccess(ret) {
		return device{}, errFactory.Wrap(ErrPowerLimitsFailed, newNVMLError(ret))
	}

	return device{
		handle:      handle,
		name:        name,
		maxClockMHz: maxClock,
		minPowerMW:  minPower,
		maxPowerMW:  maxPower,
	}, nil
}

func (p *Provider) Shutdown() error {
	errFactory := errors.New()

	if ret := nvml.Shutdown(); !isNVMLSuccess(ret) {
		return errFactory.Wrap(ErrShutdownFailed, newNVMLError(ret))
	}

	return nil
}

// UnitCount returns the number of detected devices.
func (p *Provider) UnitCount() int {
	return len(p.devices)
}

// StateCount returns how many operating points Sample can serve for unit,
// one per grid step up to the device's maximum SM clock.
func (p *Provider) StateCount(unit energymodel.UnitID) int {
	if int(unit) < 0 || int(unit) >= len(p.devices) {
		return 0
	}

	return int(p.devices[unit].maxClockMHz) / clockStepMHz
}

// Sample implements energymodel.Sampler. The floor is ceiled to the next grid
// step; active power is approximated as rising quadratically with frequency
// between the device's power-management limits, since NVML exposes limit
// constraints but no per-clock power curve.
func (p *Provider) Sample(floorHz uint64, unit energymodel.UnitID) (uint32, uint64, error) {
	errFactory := errors.New()

	if int(unit) < 0 || int(unit) >= len(p.devices) {
		return 0, 0, errFactory.WithData(ErrUnknownUnit, struct{ Unit energymodel.UnitID }{unit})
	}
	d := p.devices[unit]

	step := uint64(clockStepMHz) * mhzToHz
	maxHz := uint64(d.maxClockMHz) * mhzToHz

	freq := step
	if floorHz > freq {
		freq = (floorHz + step - 1) / step * step
	}
	if freq > maxHz {
		return 0, 0, errFactory.WithData(ErrNoSuchState, struct {
			Unit    energymodel.UnitID
			FloorHz uint64
			MaxHz   uint64
		}{unit, floorHz, maxHz})
	}

	ratio := float64(freq) / float64(maxHz)
	span := float64(d.maxPowerMW) - float64(d.minPowerMW)
	power := uint32(float64(d.minPowerMW) + span*ratio*ratio)

	return power, freq, nil
}

// CapacityOf implements energymodel.CapacityQuerier. The scaling capacity of
// a device is its maximum SM clock in MHz.
func (p *Provider) CapacityOf(unit energymodel.UnitID) uint64 {
	if int(unit) < 0 || int(unit) >= len(p.devices) {
		return 0
	}

	return uint64(p.devices[unit].maxClockMHz)
}
