package timeutil

import (
	"errors"
	"fmt"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DisplayLayout renders reminder times for chat confirmations, e.g. "3:43 PM".
const DisplayLayout = "3:04 PM"

// ErrUnparsable is returned when a datetime string matches none of the accepted layouts.
var ErrUnparsable = errors.New("unable to parse datetime")

var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

var absoluteLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04:05Z07:00",
}

// Zone lookups hit the tz database on disk; keep the recently used ones around.
var locations = mustLocationCache(128)

func mustLocationCache(size int) *lru.Cache[string, *time.Location] {
	cache, err := lru.New[string, *time.Location](size)
	if err != nil {
		panic(fmt.Sprintf("timeutil: location cache: %v", err))
	}
	return cache
}

// LoadLocation resolves an IANA zone name through the cache.
func LoadLocation(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("timezone is required")
	}
	if loc, ok := locations.Get(name); ok {
		return loc, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, err
	}
	locations.Add(name, loc)
	return loc, nil
}

// ValidZone reports whether name is a loadable IANA zone.
func ValidZone(name string) bool {
	_, err := LoadLocation(name)
	return err == nil
}

// ToAbsoluteInstant interprets value as wall-clock time in timezone and returns it in UTC.
// A value carrying its own offset is taken as-is and timezone is ignored.
// An unknown timezone is treated as UTC.
//
// The offset is taken at the instant obtained by reading the wall clock as UTC,
// not at the wall-clock moment itself, so results within a few hours of a DST
// transition may be off by the DST delta.
func ToAbsoluteInstant(value, timezone string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, ok := parseAbsolute(value); ok {
		return t.UTC(), nil
	}

	naive, ok := parseNaive(value)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnparsable, value)
	}

	loc, err := LoadLocation(timezone)
	if err != nil {
		return naive, nil
	}

	// Render the instant in both zones and difference the wall clocks.
	local := naive.In(loc)
	localWall := time.Date(local.Year(), local.Month(), local.Day(),
		local.Hour(), local.Minute(), local.Second(), local.Nanosecond(), time.UTC)
	offset := localWall.Sub(naive)

	return naive.Add(-offset), nil
}

// ToLocalDisplay renders t as a 12-hour clock time in timezone.
// An unknown timezone falls back to the server's local zone.
func ToLocalDisplay(t time.Time, timezone string) string {
	loc, err := LoadLocation(timezone)
	if err != nil {
		loc = time.Local
	}
	return t.In(loc).Format(DisplayLayout)
}

// IsParsable reports whether value parses as either an absolute or a naive datetime.
func IsParsable(value string) bool {
	value = strings.TrimSpace(value)
	if _, ok := parseAbsolute(value); ok {
		return true
	}
	_, ok := parseNaive(value)
	return ok
}

// IsFuture reports whether t is strictly after the current time.
func IsFuture(t time.Time) bool {
	return IsFutureAt(t, time.Now())
}

// IsFutureAt reports whether t is strictly after now.
func IsFutureAt(t, now time.Time) bool {
	return t.After(now)
}

func parseAbsolute(value string) (time.Time, bool) {
	for _, layout := range absoluteLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseNaive reads value as a UTC wall clock; fractional seconds are accepted by time.Parse.
func parseNaive(value string) (time.Time, bool) {
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
