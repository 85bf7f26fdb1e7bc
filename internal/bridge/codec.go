package bridge

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/spetersoncode/countdown/internal/countdown"
	cerrors "github.com/spetersoncode/countdown/internal/errors"
)

// encMode encodes buffers deterministically so equal matrices produce
// identical bytes.
var encMode cbor.EncMode

var decMode cbor.DecMode

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsEmpty,
	}
	encMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR encoder mode: %v", err))
	}

	decOpts := cbor.DecOptions{
		IndefLength: cbor.IndefLengthAllowed,
	}
	decMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR decoder mode: %v", err))
	}
}

// Encode encodes a rendered matrix.
func Encode(matrix [][]string) ([]byte, error) {
	return encMode.Marshal(matrix)
}

// Decode decodes a buffer produced by UpdateTimers.
func Decode(buf []byte) ([][]string, error) {
	var matrix [][]string
	if err := decMode.Unmarshal(buf, &matrix); err != nil {
		return nil, cerrors.Wrap(err, cerrors.KindInvalidInput, "failed to decode buffer")
	}
	return matrix, nil
}

// EncodeOrigins encodes origins as a CBOR array of integers.
func EncodeOrigins(origins []int64) ([]byte, error) {
	return encMode.Marshal(origins)
}

// DecodeOrigins decodes a CBOR array of numbers into millisecond origins.
// Integers and floats are both accepted; non-finite, fractional and
// out-of-range values are rejected.
func DecodeOrigins(buf []byte) ([]int64, error) {
	var raw []any
	if err := decMode.Unmarshal(buf, &raw); err != nil {
		return nil, cerrors.Wrap(err, cerrors.KindInvalidInput, "failed to decode origins")
	}

	values := make([]float64, len(raw))
	for i, v := range raw {
		switch n := v.(type) {
		case uint64:
			if n > 1<<53-1 {
				return nil, cerrors.InvalidInput("origin %d is outside the exact integer range", i).
					WithDetails("index", i)
			}
			values[i] = float64(n)
		case int64:
			if n < -(1<<53 - 1) {
				return nil, cerrors.InvalidInput("origin %d is outside the exact integer range", i).
					WithDetails("index", i)
			}
			values[i] = float64(n)
		case float64:
			values[i] = n
		case float32:
			values[i] = float64(n)
		default:
			return nil, cerrors.InvalidInput("origin %d is not a number", i).
				WithDetails("index", i)
		}
	}
	return countdown.OriginsFromFloats(values)
}
