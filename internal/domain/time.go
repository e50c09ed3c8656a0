package domain

import (
	"errors"
	"strings"
	"time"
)

// Layouts used when rendering a ResolvedMoment.
const (
	// ISOLayout always carries microseconds, including ".000000" on a whole
	// second, so clients can parse iso and utc_iso with one fixed format.
	ISOLayout    = "2006-01-02T15:04:05.000000-07:00"
	DateLayout   = time.DateOnly
	ClockLayout  = time.TimeOnly
	OffsetLayout = "-0700"
)

// DefaultTimezone is used when no default timezone is configured.
const DefaultTimezone = "UTC"

// CurrentTimeProvider provides the current time.
type CurrentTimeProvider interface {
	Now() time.Time
}

// InvalidTimezoneError is returned when a timezone identifier cannot be
// resolved against the IANA database. The message is the same for every cause.
type InvalidTimezoneError struct {
	Name string
}

func (e InvalidTimezoneError) Error() string {
	return "invalid timezone: use IANA format (e.g. America/Argentina/Buenos_Aires, Europe/Madrid, UTC)"
}

// IsInvalidTimezone reports whether err is, or wraps, an InvalidTimezoneError.
func IsInvalidTimezone(err error) bool {
	var tzErr InvalidTimezoneError
	return errors.As(err, &tzErr)
}

// ResolvedMoment is an instant converted into a timezone.
type ResolvedMoment struct {
	Timezone string
	Location *time.Location
	Local    time.Time
}

// ResolveMoment loads name from the host timezone database and converts now into it.
// "Local" is rejected since it names the host setting rather than a database entry.
func ResolveMoment(name string, now time.Time) (ResolvedMoment, error) {
	if name == "" || name == "Local" {
		return ResolvedMoment{}, InvalidTimezoneError{Name: name}
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return ResolvedMoment{}, InvalidTimezoneError{Name: name}
	}
	return ResolvedMoment{
		Timezone: name,
		Location: loc,
		Local:    now.In(loc),
	}, nil
}

// PlaceName derives a display name from a timezone identifier:
// "America/Argentina/Buenos_Aires" becomes "Buenos Aires".
func PlaceName(timezone string) string {
	if idx := strings.LastIndex(timezone, "/"); idx != -1 {
		timezone = timezone[idx+1:]
	}
	return strings.ReplaceAll(timezone, "_", " ")
}

// Text renders the moment as "<Place>: HH:MM:SS".
func (m ResolvedMoment) Text() string {
	return PlaceName(m.Timezone) + ": " + m.Local.Format(ClockLayout)
}

// View renders the moment as its JSON representation.
func (m ResolvedMoment) View() CurrentTimeView {
	return CurrentTimeView{
		Timezone: m.Timezone,
		Place:    PlaceName(m.Timezone),
		ISO:      m.Local.Format(ISOLayout),
		Date:     m.Local.Format(DateLayout),
		Time:     m.Local.Format(ClockLayout),
		Offset:   m.Local.Format(OffsetLayout),
		EpochMs:  m.Local.UnixMilli(),
		UTCISO:   m.Local.UTC().Format(ISOLayout),
	}
}

// CurrentTimeView is the detailed representation of the current time in a timezone.
type CurrentTimeView struct {
	Timezone string `json:"timezone"`
	Place    string `json:"place"`
	ISO      string `json:"iso"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Offset   string `json:"offset"`
	EpochMs  int64  `json:"epoch_ms"`
	UTCISO   string `json:"utc_iso"`
}
