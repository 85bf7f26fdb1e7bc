// Package bridge hands rendered timer buffers across an ownership boundary.
//
// A caller asks for a rendering with UpdateTimers and receives an opaque
// Handle. The bytes stay owned by the Bridge until the caller releases the
// handle, exactly once.
package bridge

import (
	"sync"

	"github.com/spetersoncode/countdown/internal/countdown"
	cerrors "github.com/spetersoncode/countdown/internal/errors"
)

// Handle identifies a live buffer. The zero Handle never refers to one.
type Handle uint64

// Bridge is a registry of live buffers. It is safe for concurrent use.
type Bridge struct {
	mu      sync.Mutex
	next    Handle
	buffers map[Handle][]byte
}

// New creates an empty Bridge.
func New() *Bridge {
	return &Bridge{buffers: make(map[Handle][]byte)}
}

// UpdateTimers renders origins against now with the default spec and
// registers the encoded matrix.
func (b *Bridge) UpdateTimers(now int64, origins []int64) (Handle, error) {
	matrix, err := countdown.FormatAll(now, origins, nil)
	if err != nil {
		return 0, err
	}
	buf, err := Encode(matrix)
	if err != nil {
		return 0, cerrors.WrapInternal(err, "failed to encode matrix")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.next++
	h := b.next
	b.buffers[h] = buf
	return h, nil
}

// Bytes returns the buffer behind h. The slice must not be modified and is
// invalid after Release.
func (b *Bridge) Bytes(h Handle) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	buf, ok := b.buffers[h]
	if !ok {
		return nil, unknownHandle(h)
	}
	return buf, nil
}

// Len returns the length of the buffer behind h.
func (b *Bridge) Len(h Handle) (int, error) {
	buf, err := b.Bytes(h)
	if err != nil {
		return 0, err
	}
	return len(buf), nil
}

// Release frees the buffer behind h. Releasing the zero Handle is a no-op;
// releasing an unknown or already released handle is an error.
func (b *Bridge) Release(h Handle) error {
	if h == 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.buffers[h]; !ok {
		return unknownHandle(h).WithSuggestion("Each handle must be released exactly once.")
	}
	delete(b.buffers, h)
	return nil
}

// Live returns the number of unreleased buffers.
func (b *Bridge) Live() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.buffers)
}

// Render is UpdateTimers, Bytes, Decode and Release in one call.
func (b *Bridge) Render(now int64, origins []int64) ([][]string, error) {
	h, err := b.UpdateTimers(now, origins)
	if err != nil {
		return nil, err
	}
	defer b.Release(h)

	buf, err := b.Bytes(h)
	if err != nil {
		return nil, err
	}
	return Decode(buf)
}

func unknownHandle(h Handle) *cerrors.Error {
	return cerrors.InvalidInput("unknown or released buffer handle %d", uint64(h)).
		WithDetails("handle", uint64(h))
}
