package countdown

import (
	"strings"
	"unicode"

	cerrors "github.com/spetersoncode/countdown/internal/errors"
)

// FormatSpec selects which units appear in a rendered countdown. Units are
// always rendered in canonical table order regardless of how the spec was
// built, so a spec is a set rather than a sequence.
type FormatSpec struct {
	mask uint8
}

// DefaultSpec renders days, hours, minutes and seconds.
var DefaultSpec = NewSpec(Day, Hour, Minute, Second)

// NewSpec builds a spec from the given units. Invalid units and duplicates
// are ignored.
func NewSpec(units ...Unit) FormatSpec {
	var s FormatSpec
	for _, u := range units {
		if u.Valid() {
			s.mask |= 1 << u
		}
	}
	return s
}

// IsEmpty reports whether the spec selects no units.
func (s FormatSpec) IsEmpty() bool {
	return s.mask == 0
}

// Has reports whether u is part of the spec.
func (s FormatSpec) Has(u Unit) bool {
	return u.Valid() && s.mask&(1<<u) != 0
}

// Units returns the selected units in canonical order.
func (s FormatSpec) Units() []Unit {
	var units []Unit
	for u := Week; u < numUnits; u++ {
		if s.Has(u) {
			units = append(units, u)
		}
	}
	return units
}

// TimeUnits returns the selected table entries in canonical order.
func (s FormatSpec) TimeUnits() []TimeUnit {
	var units []TimeUnit
	for u := Week; u < numUnits; u++ {
		if s.Has(u) {
			units = append(units, timeUnits[u])
		}
	}
	return units
}

// String renders the compact form, e.g. "dhms" or "wdhmsms".
func (s FormatSpec) String() string {
	var b strings.Builder
	for _, tu := range s.TimeUnits() {
		b.WriteString(tu.Suffix)
	}
	return b.String()
}

// MarshalText implements encoding.TextMarshaler.
func (s FormatSpec) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *FormatSpec) UnmarshalText(text []byte) error {
	parsed, err := ParseSpec(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSpec parses a format spec. Separated lists ("d,h,m,s", "day hour")
// and the compact form ("dhms", "wdhmsms") are both accepted. The compact
// form is written coarsest first, so "m" followed by "s" reads as minutes
// then seconds and only a later "ms" selects milliseconds.
func ParseSpec(text string) (FormatSpec, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return FormatSpec{}, cerrors.InvalidInput("format spec cannot be empty")
	}

	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == '+' || unicode.IsSpace(r)
	})

	var s FormatSpec
	for _, field := range fields {
		if u, err := ParseUnit(field); err == nil {
			s.mask |= 1 << u
			continue
		}
		compact, err := parseCompact(field)
		if err != nil {
			return FormatSpec{}, err
		}
		s.mask |= compact.mask
	}

	if s.IsEmpty() {
		return FormatSpec{}, cerrors.InvalidInput("format spec %q selects no units", text)
	}
	return s, nil
}

func parseCompact(field string) (FormatSpec, error) {
	lower := strings.ToLower(field)
	var s FormatSpec
	next := Week
	for i := 0; i < len(lower); {
		matched := false
		for u := next; u < numUnits; u++ {
			suffix := timeUnits[u].Suffix
			if strings.HasPrefix(lower[i:], suffix) {
				s.mask |= 1 << u
				i += len(suffix)
				next = u + 1
				matched = true
				break
			}
		}
		if !matched {
			return FormatSpec{}, cerrors.InvalidInput("cannot parse %q in format spec %q", lower[i:], field).
				WithSuggestion("Use unit suffixes coarsest first like \"dhms\", or a list like \"d,h,m,s\".")
		}
	}
	return s, nil
}

// ParseSpecs parses each entry with ParseSpec, preserving order.
func ParseSpecs(texts []string) ([]FormatSpec, error) {
	specs := make([]FormatSpec, 0, len(texts))
	for _, text := range texts {
		s, err := ParseSpec(text)
		if err != nil {
			return nil, err
		}
		specs = append(specs, s)
	}
	return specs, nil
}
