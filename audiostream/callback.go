// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package audiostream

// GetCallback is invoked from inside Get, before the pull, when installed,
// so the application can top up the queue with exactly the number of
// source bytes estimated to satisfy the request (§4.5, §4.4 step "Get").
// additionalAmount is the estimated source-side byte shortfall; totalAmount
// is the full byte count requested by the caller of Get.
type GetCallback func(stream *AudioStream, additionalAmount, totalAmount int)

// PutCallback is invoked from inside Put, after data lands in the queue,
// so the application can react to newly available bytes (e.g. kick a
// draining goroutine). Per §9's open question, amount is the increase in
// available output bytes across this Put, and the stream skips the call
// when that increase is not positive.
type PutCallback func(stream *AudioStream, amount int)

// SetGetCallback installs or clears (cb == nil) the get-callback. It takes
// the stream's lock itself.
func (s *AudioStream) SetGetCallback(cb GetCallback) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getCallback = cb
}

// SetPutCallback installs or clears (cb == nil) the put-callback.
func (s *AudioStream) SetPutCallback(cb PutCallback) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putCallback = cb
}
