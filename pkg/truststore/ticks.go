package truststore

import "time"

// Timestamps are persisted as integral ticks (UTC Unix nanoseconds in an
// INTEGER column) instead of the driver's text encoding. The two SQLite
// bindings disagree on their default time format, and text encodings lose
// sub-second precision and timezone identity; an integer round-trips
// exactly on either backend.

// timeToTicks converts a time to its canonical stored form. The zero time
// maps to tick 0.
func timeToTicks(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UTC().UnixNano()
}

// ticksToTime converts a stored tick value back to a UTC time. Tick 0 maps
// to the zero time.
func ticksToTime(ticks int64) time.Time {
	if ticks == 0 {
		return time.Time{}
	}
	return time.Unix(0, ticks).UTC()
}
