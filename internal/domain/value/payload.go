package value

import (
	"fmt"
	"time"
)

// DateLayout is the ISO-8601 calendar date format used on the wire.
const DateLayout = "2006-01-02"

// TimeOfDay is a wall-clock time with second precision.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

var timeLayouts = []string{"15:04:05", "15:04", "15:04:05.999999"}

// ParseTimeOfDay accepts ISO-8601 "hh:mm" and "hh:mm:ss" forms.
// Fractional seconds are accepted and dropped.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return TimeOfDay{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}, nil
		}
	}
	return TimeOfDay{}, fmt.Errorf("invalid time %q", s)
}

// TimeOfDayFromMicroseconds converts microseconds since midnight, the
// PostgreSQL TIME representation.
func TimeOfDayFromMicroseconds(us int64) TimeOfDay {
	sec := us / 1_000_000
	return TimeOfDay{Hour: int(sec / 3600), Minute: int(sec % 3600 / 60), Second: int(sec % 60)}
}

// Microseconds returns microseconds since midnight.
func (t TimeOfDay) Microseconds() int64 {
	return int64(t.Hour*3600+t.Minute*60+t.Second) * 1_000_000
}

// String renders hh:mm:ss.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// FileRef points at a stored upload. The core never reads file bytes; it
// only validates the metadata and reports refs that became unreferenced.
type FileRef struct {
	Ref  string `json:"ref"`
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// Location is a geographic point with an optional address line.
type Location struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address,omitempty"`
}
