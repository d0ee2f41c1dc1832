package timerange

import (
	"errors"
)

// Range is the dashboard time-range selector.
type Range string

const (
	Range7d  Range = "7d"
	Range30d Range = "30d"
	Range90d Range = "90d"
	RangeAll Range = "all"
)

var ErrInvalidRange = errors.New("invalid range")

func (r Range) String() string {
	return string(r)
}

// Days returns the number of calendar days the range covers, 0 for RangeAll.
func (r Range) Days() int {
	switch r {
	case Range7d:
		return 7
	case Range30d:
		return 30
	case Range90d:
		return 90
	default:
		return 0
	}
}

func ParseRange(s string) (Range, error) {
	switch s {
	case Range7d.String():
		return Range7d, nil
	case Range30d.String():
		return Range30d, nil
	case Range90d.String():
		return Range90d, nil
	case RangeAll.String():
		return RangeAll, nil
	default:
		return "", ErrInvalidRange
	}
}
