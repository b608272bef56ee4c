// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package audiostream

import "github.com/rapidaai/audiostream/internal/convert"

// channelMatrix builds the srcCh -> dstCh mixing matrix described by §3's
// fixed channel layouts: a destination speaker position present in the
// source layout is passed through at unit gain; a destination FL or FR
// missing from the source is fed from the source FC at unit gain; a
// destination FC missing from the source is the average of FL and FR (or
// whichever of the two exists); a missing BL/SL falls back to FL and a
// missing BR/SR to FR, at unit gain; LFE, BC, and any position with no
// such substitute in the source layout is left silent (0 gain).
func channelMatrix(srcCh, dstCh int) convert.Matrix {
	if srcCh == dstCh {
		return convert.IdentityMatrix(srcCh)
	}
	srcLayout := channelLayouts[srcCh]
	dstLayout := channelLayouts[dstCh]

	srcIndex := make(map[channelName]int, len(srcLayout))
	for i, c := range srcLayout {
		srcIndex[c] = i
	}

	m := make(convert.Matrix, dstCh)
	for d := range m {
		m[d] = make([]float32, srcCh)
	}

	fcSrc, hasFC := srcIndex[chFC]
	flSrc, hasFL := srcIndex[chFL]
	frSrc, hasFR := srcIndex[chFR]

	for d, pos := range dstLayout {
		if s, ok := srcIndex[pos]; ok {
			m[d][s] = 1
			continue
		}
		switch pos {
		case chFL:
			if hasFC {
				m[d][fcSrc] = 1
			}
		case chFR:
			if hasFC {
				m[d][fcSrc] = 1
			}
		case chFC:
			if hasFL && hasFR {
				m[d][flSrc] = 0.5
				m[d][frSrc] = 0.5
			} else if hasFL {
				m[d][flSrc] = 1
			} else if hasFR {
				m[d][frSrc] = 1
			}
		case chBL:
			if hasFL {
				m[d][flSrc] = 1
			}
		case chBR:
			if hasFR {
				m[d][frSrc] = 1
			}
		case chSL:
			if hasFL {
				m[d][flSrc] = 1
			}
		case chSR:
			if hasFR {
				m[d][frSrc] = 1
			}
			// LFE, BC, and anything else with no reasonable substitute is
			// left at zero gain (silence) in this destination channel.
		}
	}
	return m
}
