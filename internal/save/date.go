package save

import (
	"fmt"
	"strings"
)

// Season of the in-game calendar.
type Season int

const (
	Spring Season = iota
	Summer
	Fall
	Winter
)

const (
	DaysPerSeason = 28
	DaysPerYear   = DaysPerSeason * 4
)

var seasonNames = [...]string{"spring", "summer", "fall", "winter"}

func (s Season) String() string {
	if s < Spring || s > Winter {
		return fmt.Sprintf("season(%d)", int(s))
	}
	return seasonNames[s]
}

// ParseSeason accepts the lower-case names used by game data.
func ParseSeason(name string) (Season, error) {
	for i, n := range seasonNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return Season(i), nil
		}
	}
	return 0, fmt.Errorf("unknown season %q", name)
}

func (s Season) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Season) UnmarshalText(b []byte) error {
	v, err := ParseSeason(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Date is a calendar day. Day is 1..28, Year starts at 1.
type Date struct {
	Year   int    `json:"year"`
	Season Season `json:"season"`
	Day    int    `json:"day"`
}

// DateFromDaysPlayed maps the host's day counter (1 = spring 1, year 1)
// onto the calendar.
func DateFromDaysPlayed(days uint32) Date {
	if days == 0 {
		days = 1
	}
	total := int(days - 1)
	return Date{
		Year:   total/DaysPerYear + 1,
		Season: Season(total / DaysPerSeason % 4),
		Day:    total%DaysPerSeason + 1,
	}
}

// DaysPlayed is the inverse of DateFromDaysPlayed.
func (d Date) DaysPlayed() uint32 {
	return uint32((d.Year-1)*DaysPerYear + int(d.Season)*DaysPerSeason + d.Day)
}

func (d Date) Next() Date {
	return DateFromDaysPlayed(d.DaysPlayed() + 1)
}

func (d Date) String() string {
	return fmt.Sprintf("%s %d, year %d", d.Season, d.Day, d.Year)
}
