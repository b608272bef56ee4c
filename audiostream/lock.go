// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package audiostream

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
)

// recursiveMutex is the "recursive mutex" §5 requires so a get/put
// callback can reentrantly call Get/Put while the lock is already held
// by the same goroutine. The standard library has no such primitive;
// every library in the corpus wraps sync.Mutex as-is, so this is built
// directly on it plus the goroutine-id trick runtime.Stack exposes.
type recursiveMutex struct {
	mu    sync.Mutex
	owner uint64 // goroutine id holding mu, 0 when unlocked
	depth int
}

func (m *recursiveMutex) Lock() {
	gid := goroutineID()
	if atomic.LoadUint64(&m.owner) == gid {
		m.depth++
		return
	}
	m.mu.Lock()
	atomic.StoreUint64(&m.owner, gid)
	m.depth = 1
}

func (m *recursiveMutex) Unlock() {
	m.depth--
	if m.depth == 0 {
		atomic.StoreUint64(&m.owner, 0)
		m.mu.Unlock()
	}
}

// goroutineID parses the calling goroutine's id out of its own stack
// trace header ("goroutine 123 [running]:"). IDs are assigned
// monotonically and never reused within a process, so equality here
// reliably means "same goroutine", which is all recursiveMutex needs.
func goroutineID() uint64 {
	buf := make([]byte, 64)
	buf = buf[:runtime.Stack(buf, false)]
	fields := bytes.Fields(buf)
	if len(fields) < 2 {
		return 0
	}
	id, _ := strconv.ParseUint(string(fields[1]), 10, 64)
	return id
}
