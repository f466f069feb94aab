package domain

import "strconv"

// ParseID reads an integer identifier from a path or query value. Only plain
// decimal digits are accepted: no sign, no spaces, no base prefix.
func ParseID(field, raw string) (int64, error) {
	v, err := strconv.ParseUint(raw, 10, 63)
	if err != nil {
		return 0, NewValidationError(field, "must be an integer, got %q", raw)
	}
	return int64(v), nil
}
