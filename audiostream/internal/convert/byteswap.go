// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package convert

// ByteSwap swaps every sample's byte order in place. byteSize must be 2
// or 4 (8-bit formats never need this and must not call it, per §4.2
// step 1/5).
func ByteSwap(data []byte, byteSize int) {
	switch byteSize {
	case 2:
		for i := 0; i+1 < len(data); i += 2 {
			data[i], data[i+1] = data[i+1], data[i]
		}
	case 4:
		for i := 0; i+3 < len(data); i += 4 {
			data[i], data[i+3] = data[i+3], data[i]
			data[i+1], data[i+2] = data[i+2], data[i+1]
		}
	}
}

// NeedsByteSwap reports whether a value stored with BigEndian-ness
// srcBigEndian, read on a little-endian host, needs swapping. The engine
// only ever runs the conversion pipeline in host-native (little-endian)
// terms internally, so this is simply "is the tag big-endian and wider
// than one byte".
func NeedsByteSwap(tag Tag) bool {
	return tag.BigEndian && tag.ByteSize > 1
}
