package chrono

import "time"

// TimeAPI is what anything that depends on the wall clock should use so
// tests can pin the current time.
type TimeAPI interface {
	Now() time.Time
	Location() *time.Location
}

// StandardImpl reports the current time in the timezone the stock market
// trades in.
type StandardImpl struct {
	location *time.Location
}

func NewStandardImpl() (StandardImpl, error) {
	location, err := time.LoadLocation("America/New_York")
	if err != nil {
		return StandardImpl{}, err
	}
	return StandardImpl{location: location}, nil
}

func (s StandardImpl) Now() time.Time {
	return time.Now().In(s.location)
}

func (s StandardImpl) Location() *time.Location {
	return s.location
}

// FixedImpl always returns the same time.
type FixedImpl struct {
	Time time.Time
}

func (f FixedImpl) Now() time.Time {
	return f.Time
}

func (f FixedImpl) Location() *time.Location {
	return f.Time.Location()
}

// DayBounds returns the unix times of the start of the day containing t and
// the start of the next day, in loc.
func DayBounds(t time.Time, loc *time.Location) (start, end int64) {
	t = t.In(loc)
	start = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc).Unix()
	end = time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, loc).Unix()
	return start, end
}
