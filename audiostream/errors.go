// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package audiostream

import "errors"

// Sentinel errors per spec §7. Callers should compare with errors.Is;
// every returned error is one of these, either bare or wrapped with
// fmt.Errorf("...: %w", ...).
var (
	// ErrInvalidParameter covers a null/invalid stream, nil buffer,
	// negative length, a length not a multiple of the frame size, or a
	// spec field out of its valid range.
	ErrInvalidParameter = errors.New("audiostream: invalid parameter")

	// ErrSpecUnset is returned by Put/Get when the relevant side's spec
	// has never been set.
	ErrSpecUnset = errors.New("audiostream: format not set")

	// ErrOutOfMemory signals an allocation failure anywhere in the queue
	// or work buffer.
	ErrOutOfMemory = errors.New("audiostream: out of memory")

	// ErrStreamDestroyed is returned by any error-returning operation on a
	// stream after Destroy — callers must not rely on this being detected reliably in
	// the presence of concurrent use; it exists to surface the easy case.
	ErrStreamDestroyed = errors.New("audiostream: stream destroyed")
)
