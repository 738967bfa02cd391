package arrow

import "time"

// Date is a calendar day counted from 1970-01-01.
type Date int32

// Time is a time of day counted in the column's unit since midnight.
type Time int64

// Datetime is an instant counted in the column's unit since the Unix epoch.
type Datetime int64

// Duration is a signed span counted in the column's unit.
type Duration int64

const secondsPerDay = 24 * 60 * 60

// DateFromTime returns the day containing t, evaluated in t's location.
func DateFromTime(t time.Time) Date {
	y, m, d := t.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return Date(floorDiv(midnight.Unix(), secondsPerDay))
}

// Time returns midnight UTC of the day.
func (d Date) Time() time.Time {
	return time.Unix(int64(d)*secondsPerDay, 0).UTC()
}

func (d Date) String() string {
	return d.Time().Format("2006-01-02")
}

// DatetimeFromTime converts t to a count of unit since the epoch.
// Sub-unit precision is truncated toward negative infinity.
func DatetimeFromTime(t time.Time, unit TimeUnit) Datetime {
	nanosPer := int64(time.Second) / unit.PerSecond()
	sec, nsec := t.Unix(), int64(t.Nanosecond())
	return Datetime(sec*unit.PerSecond() + floorDiv(nsec, nanosPer))
}

// Time converts the count back to an instant in UTC.
func (d Datetime) Time(unit TimeUnit) time.Time {
	per := unit.PerSecond()
	sec := floorDiv(int64(d), per)
	rem := int64(d) - sec*per
	return time.Unix(sec, rem*(int64(time.Second)/per)).UTC()
}

// DurationFromStd converts a Go duration to a count of unit.
func DurationFromStd(d time.Duration, unit TimeUnit) Duration {
	return Duration(int64(d) / (int64(time.Second) / unit.PerSecond()))
}

// Std converts the count to a Go duration. Values beyond its range wrap.
func (d Duration) Std(unit TimeUnit) time.Duration {
	return time.Duration(int64(d) * (int64(time.Second) / unit.PerSecond()))
}

// TimeOfDay builds a Time from clock fields.
func TimeOfDay(hour, min, sec, nsec int, unit TimeUnit) Time {
	total := (int64(hour)*3600+int64(min)*60+int64(sec))*int64(time.Second) + int64(nsec)
	return Time(total / (int64(time.Second) / unit.PerSecond()))
}

// Clock splits the time of day into its fields.
func (t Time) Clock(unit TimeUnit) (hour, min, sec, nsec int) {
	total := int64(t) * (int64(time.Second) / unit.PerSecond())
	nsec = int(total % int64(time.Second))
	s := total / int64(time.Second)
	return int(s / 3600), int(s / 60 % 60), int(s % 60), nsec
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
