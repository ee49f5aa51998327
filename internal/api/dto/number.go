package dto

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidNumber is returned when a numeric field holds something else.
var ErrInvalidNumber = errors.New("invalid number")

// LooseInt accepts a JSON number or a numeric string, as the web client sends
// form values as strings. null and "" leave it unset.
type LooseInt struct {
	value *int
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *LooseInt) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		l.value = nil
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidNumber, err)
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			l.value = nil
			return nil
		}
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		f, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
			return fmt.Errorf("%w: %q", ErrInvalidNumber, raw)
		}
		n = int(f)
	}
	l.value = &n
	return nil
}

// Ptr returns the parsed value, or nil when unset.
func (l LooseInt) Ptr() *int {
	if l.value == nil {
		return nil
	}
	v := *l.value
	return &v
}
