// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package audiostream

import (
	"testing"
)

func TestChannelMatrixMonoToFiveOne(t *testing.T) {
	m := channelMatrix(1, 6)
	// FL, FR, FC all draw the mono source at unit gain; LFE/BL/BR get
	// nothing, per §3's "no sensible substitute" fallback.
	want := [][]float32{
		{1}, // FL
		{1}, // FR
		{1}, // FC
		{0}, // LFE
		{0}, // BL
		{0}, // BR
	}
	for d := range want {
		for s := range want[d] {
			if m[d][s] != want[d][s] {
				t.Fatalf("m[%d][%d] = %v, want %v", d, s, m[d][s], want[d][s])
			}
		}
	}
}

func TestChannelMatrixFiveOneToStereoDropsSurround(t *testing.T) {
	m := channelMatrix(6, 2)
	// layout6 = FL,FR,FC,LFE,BL,BR; layout2 = FL,FR.
	// Both destination positions exist directly in the source layout, so
	// they pass straight through; FC/LFE/BL/BR are simply not summed in.
	if m[0][0] != 1 {
		t.Fatalf("FL weight = %v, want 1", m[0][0])
	}
	if m[1][1] != 1 {
		t.Fatalf("FR weight = %v, want 1", m[1][1])
	}
	for s := 2; s < 6; s++ {
		if m[0][s] != 0 || m[1][s] != 0 {
			t.Fatalf("surround channel %d leaked into stereo downmix", s)
		}
	}
}

func TestChannelMatrixIdentityWhenChannelsMatch(t *testing.T) {
	m := channelMatrix(2, 2)
	if m[0][0] != 1 || m[0][1] != 0 || m[1][0] != 0 || m[1][1] != 1 {
		t.Fatalf("expected 2x2 identity, got %v", m)
	}
}
