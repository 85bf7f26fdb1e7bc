package countdown

import (
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "github.com/spetersoncode/countdown/internal/errors"
)

func TestReduce(t *testing.T) {
	tests := []struct {
		name     string
		interval int64
		units    []TimeUnit
		want     string
	}{
		{"zero", 0, DefaultSpec.TimeUnits(), "0d 0h 0m 0s "},
		{"one second", 1000, DefaultSpec.TimeUnits(), "0d 0h 0m 1s "},
		{"sub-second is dropped", 999, DefaultSpec.TimeUnits(), "0d 0h 0m 0s "},
		{"one day", 86400000, DefaultSpec.TimeUnits(), "1d 0h 0m 0s "},
		{"mixed", 90061000, DefaultSpec.TimeUnits(), "1d 1h 1m 1s "},
		{"weeks", 8 * 86400000, NewSpec(Week, Day).TimeUnits(), "1w 1d "},
		{"days without weeks", 8 * 86400000, DefaultSpec.TimeUnits(), "8d 0h 0m 0s "},
		{"milliseconds", 1234, NewSpec(Second, Millisecond).TimeUnits(), "1s 234ms "},
		{"negative uses magnitude", -100000, DefaultSpec.TimeUnits(), "0d 0h 1m 40s "},
		{"no units", 5000, nil, ""},
		{"zero divisor", 5000, []TimeUnit{{Suffix: "x", Divisor: 0}, {Suffix: "s", Divisor: 1000}}, "0x 5s "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Reduce(tt.interval, tt.units))
		})
	}
}

func TestFormatSignConvention(t *testing.T) {
	t.Run("zero has no sign", func(t *testing.T) {
		got := Format(0, DefaultSpec)
		assert.Equal(t, "0d 0h 0m 0s ", got)
		assert.False(t, strings.HasPrefix(got, "-"))
	})

	t.Run("negative is positive with a minus", func(t *testing.T) {
		for _, x := range []int64{1, 999, 1000, 59999, 86400000, 604800000 * 3, 1696174196000} {
			for _, spec := range []FormatSpec{DefaultSpec, NewSpec(Week, Millisecond), NewSpec(AllUnits()...)} {
				assert.Equal(t, "-"+Format(x, spec), Format(-x, spec), "x=%d spec=%s", x, spec)
			}
		}
	})

	t.Run("extreme values do not overflow", func(t *testing.T) {
		got := Format(math.MinInt64, NewSpec(Millisecond))
		assert.Equal(t, "-9223372036854775808ms ", got)

		got = FormatOrigin(math.MaxInt64, math.MinInt64, NewSpec(Millisecond))
		assert.Equal(t, "18446744073709551615ms ", got)
	})
}

func TestFormatOrigin(t *testing.T) {
	t.Run("origin equals now", func(t *testing.T) {
		assert.Equal(t, "0d 0h 0m 0s ", FormatOrigin(1000, 1000, DefaultSpec))
	})

	t.Run("90000 seconds in the past", func(t *testing.T) {
		got := FormatOrigin(-90000000, 0, DefaultSpec)
		assert.Equal(t, "-1d 1h 0m 0s ", got)

		fields := strings.Fields(strings.TrimPrefix(got, "-"))
		require.Len(t, fields, 4)
		divisors := []int64{86400000, 3600000, 60000, 1000}
		var sum int64
		for i, f := range fields {
			n, err := strconv.ParseInt(strings.TrimRight(f, "dhms"), 10, 64)
			require.NoError(t, err)
			sum += n * divisors[i]
		}
		assert.LessOrEqual(t, sum, int64(90000000))
		assert.Less(t, int64(90000000), sum+1000)
	})

	t.Run("seed timer against fixed now", func(t *testing.T) {
		assert.Equal(t, "-0d 0h 1m 40s ", FormatOrigin(0, 100000, DefaultSpec))
	})
}

func TestDaySegmentMatchesDivision(t *testing.T) {
	for _, i := range []int64{0, 1, 86399999, 86400000, 172800001, 604800000, 1696174196000} {
		got := Format(i, DefaultSpec)
		day := strings.SplitN(got, "d", 2)[0]
		n, err := strconv.ParseInt(day, 10, 64)
		require.NoError(t, err)
		assert.Equal(t, i/86400000, n, "interval %d", i)
	}
}

func TestFormatAll(t *testing.T) {
	t.Run("default spec gives one column", func(t *testing.T) {
		got, err := FormatAll(100000, []int64{0, 100000, 90161000}, nil)
		require.NoError(t, err)

		want := [][]string{
			{"-0d 0h 1m 40s "},
			{"0d 0h 0m 0s "},
			{"1d 1h 1m 1s "},
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("FormatAll() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("rectangular with several specs", func(t *testing.T) {
		specs := []FormatSpec{DefaultSpec, NewSpec(Week, Day), NewSpec(Millisecond)}
		origins := []int64{0, 5, -5, 1607025600000}
		got, err := FormatAll(0, origins, specs)
		require.NoError(t, err)

		require.Len(t, got, len(origins))
		for _, row := range got {
			assert.Len(t, row, len(specs))
		}
		assert.Equal(t, []string{"0d 0h 0m 0s ", "0w 0d ", "5ms "}, got[1])
		assert.Equal(t, "-5ms ", got[2][2])
	})

	t.Run("spec order is preserved", func(t *testing.T) {
		got, err := FormatAll(0, []int64{1000}, []FormatSpec{NewSpec(Millisecond), NewSpec(Second)})
		require.NoError(t, err)
		assert.Equal(t, []string{"1000ms ", "1s "}, got[0])
	})

	t.Run("no origins", func(t *testing.T) {
		got, err := FormatAll(0, nil, nil)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("empty spec is rejected", func(t *testing.T) {
		_, err := FormatAll(0, []int64{1}, []FormatSpec{DefaultSpec, {}})
		require.Error(t, err)
		assert.True(t, cerrors.Is(err, cerrors.KindInvalidInput))
	})
}

func TestOriginsFromFloats(t *testing.T) {
	t.Run("accepts whole numbers", func(t *testing.T) {
		got, err := OriginsFromFloats([]float64{0, 1696174196000, -1607025600000, maxSafeMillis})
		require.NoError(t, err)
		assert.Equal(t, []int64{0, 1696174196000, -1607025600000, maxSafeMillis}, got)
	})

	tests := []struct {
		name  string
		value float64
	}{
		{"NaN", math.NaN()},
		{"positive infinity", math.Inf(1)},
		{"negative infinity", math.Inf(-1)},
		{"fraction", 1.5},
		{"beyond exact range", 1 << 60},
	}
	for _, tt := range tests {
		t.Run("rejects "+tt.name, func(t *testing.T) {
			_, err := OriginsFromFloats([]float64{0, tt.value})
			require.Error(t, err)
			assert.True(t, cerrors.Is(err, cerrors.KindInvalidInput))

			e, ok := cerrors.As(err)
			require.True(t, ok)
			assert.Equal(t, 1, e.Details["index"])
		})
	}
}

func TestClock(t *testing.T) {
	var c Clock = FixedClock(1234)
	assert.Equal(t, int64(1234), c.NowMillis())

	assert.Equal(t, int64(1607025600000), FromTime(ToTime(1607025600000)))
	assert.Positive(t, SystemClock{}.NowMillis())
}
