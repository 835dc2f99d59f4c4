package chrono

import (
	"time"
	_ "time/tzdata"
)

const DateLayout = "2006-01-02"

var la *time.Location

func init() {
	var err error
	la, err = time.LoadLocation("America/Los_Angeles")
	if err != nil {
		panic(err)
	}
}

// Clock is the interface that anything depending on the system clock should use.
type Clock interface {
	Now() time.Time
}

// System is the wall clock.
type System struct{}

func (System) Now() time.Time {
	return time.Now()
}

// Fixed always returns the same instant.
type Fixed time.Time

func (f Fixed) Now() time.Time {
	return time.Time(f)
}

// Today returns the current calendar date in America/Los_Angeles as YYYY-MM-DD,
// independent of the machine's local zone.
func Today(clock Clock) string {
	return clock.Now().In(la).Format(DateLayout)
}
