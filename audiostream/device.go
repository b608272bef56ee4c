// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package audiostream

import (
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Device is the contract a physical/virtual device backend implements to
// bind streams per §6. This package ships no backend: opening hardware,
// enumerating devices, and mixing a bound playback device's streams are
// explicitly out of scope (§1's Non-goals); only the attach/detach
// contract lives here.
type Device interface {
	// ID uniquely identifies the device for GetBoundDevice/logging.
	ID() string
	// Recording reports whether this is a capture device (pushes via Put)
	// as opposed to a playback device (pulls via Get).
	Recording() bool
	// HardwareSpec is the format/channels/freq the device runs natively;
	// the device layer is responsible for setting a bound stream's
	// matching side (§6) to this before relying on it.
	HardwareSpec() Spec
}

// BoundDevice describes the device a stream is currently attached to.
type BoundDevice struct {
	Device Device
	bindID string
}

// Bind atomically attaches every stream in streams to device: either all
// streams end up bound, or (on any per-stream validation failure) none
// do. Each stream is validated concurrently via errgroup since
// validation only reads state already protected by that stream's own
// lock, then attached sequentially once every validation has succeeded,
// matching §6's "all-or-nothing" contract.
func Bind(device Device, streams []*AudioStream) error {
	if device == nil {
		return fmt.Errorf("%w: nil device", ErrInvalidParameter)
	}
	if len(streams) == 0 {
		return nil
	}

	bindID := uuid.NewString()

	var g errgroup.Group
	for _, s := range streams {
		s := s
		g.Go(func() error {
			return validateBindable(s, device)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, s := range streams {
		s.mu.Lock()
		s.bound = &BoundDevice{Device: device, bindID: bindID}
		s.mu.Unlock()
	}
	return nil
}

func validateBindable(s *AudioStream, device Device) error {
	if s == nil {
		return fmt.Errorf("%w: nil stream", ErrInvalidParameter)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return ErrStreamDestroyed
	}
	if device.Recording() {
		if s.dstSpec.IsZero() {
			return fmt.Errorf("%w: recording device requires output spec set before bind", ErrInvalidParameter)
		}
	} else {
		if s.srcSpec.IsZero() {
			return fmt.Errorf("%w: playback device requires input spec set before bind", ErrInvalidParameter)
		}
	}
	return nil
}

// Unbind detaches every stream in streams from whatever device it is
// currently bound to, if any. Unlike Bind this cannot fail partway: each
// stream either is bound (and becomes unbound) or already wasn't.
func Unbind(streams []*AudioStream) {
	for _, s := range streams {
		if s == nil {
			continue
		}
		s.mu.Lock()
		s.bound = nil
		s.mu.Unlock()
	}
}

// GetBoundDevice returns the device s is currently attached to, or nil if
// unbound.
func (s *AudioStream) GetBoundDevice() Device {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bound == nil {
		return nil
	}
	return s.bound.Device
}
