//go:build cgo

// Command libcountdown builds a C shared library exposing the timer
// formatter:
//
//	go build -buildmode=c-shared -o libcountdown.so ./cmd/libcountdown
//
// cd_update_timers returns a handle to a CBOR-encoded matrix of rendered
// strings. The caller reads it through cd_buffer_ptr and cd_buffer_len and
// must call cd_release exactly once per handle.
package main

/*
#include <stdint.h>
#include <stdlib.h>
*/
import "C"

import (
	"sync"
	"unsafe"

	"github.com/spetersoncode/countdown/internal/bridge"
)

var (
	registry = bridge.New()

	// C copies of live buffers; Go memory cannot be held by C callers.
	mu    sync.Mutex
	cbufs = make(map[bridge.Handle]unsafe.Pointer)
)

//export cd_update_timers
func cd_update_timers(now C.int64_t, origins *C.int64_t, n C.size_t) C.uint64_t {
	var values []int64
	if n > 0 {
		if origins == nil {
			return 0
		}
		src := unsafe.Slice((*int64)(unsafe.Pointer(origins)), int(n))
		values = make([]int64, len(src))
		copy(values, src)
	}

	h, err := registry.UpdateTimers(int64(now), values)
	if err != nil {
		return 0
	}
	buf, err := registry.Bytes(h)
	if err != nil {
		registry.Release(h)
		return 0
	}

	mu.Lock()
	cbufs[h] = C.CBytes(buf)
	mu.Unlock()
	return C.uint64_t(h)
}

//export cd_buffer_ptr
func cd_buffer_ptr(h C.uint64_t) unsafe.Pointer {
	mu.Lock()
	defer mu.Unlock()
	return cbufs[bridge.Handle(h)]
}

//export cd_buffer_len
func cd_buffer_len(h C.uint64_t) C.size_t {
	n, err := registry.Len(bridge.Handle(h))
	if err != nil {
		return 0
	}
	return C.size_t(n)
}

// cd_release returns 0 on success and -1 for an unknown or released handle.
//
//export cd_release
func cd_release(h C.uint64_t) C.int {
	if err := registry.Release(bridge.Handle(h)); err != nil {
		return -1
	}
	mu.Lock()
	p, ok := cbufs[bridge.Handle(h)]
	delete(cbufs, bridge.Handle(h))
	mu.Unlock()
	if ok {
		C.free(p)
	}
	return 0
}

func main() {}
