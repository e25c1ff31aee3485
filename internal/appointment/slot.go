package appointment

import (
	"fmt"
	"strings"
	"time"
)

const (
	DateLayout = "02/01/2006"
	timeLayout = "15:04"
	isoDate    = "2006-01-02"
)

// Slots are the bookable half-hour starts of a clinic day.
var Slots = []string{
	"08:00", "08:30", "09:00", "09:30", "10:00", "10:30", "11:00", "11:30",
	"13:30", "14:00", "14:30", "15:00", "15:30", "16:00", "16:30", "17:00",
}

var slotSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(Slots))
	for _, s := range Slots {
		m[s] = struct{}{}
	}
	return m
}()

func ValidSlot(slot string) bool {
	_, ok := slotSet[slot]
	return ok
}

// ParseDate parses DD/MM/YYYY into midnight UTC.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return d, nil
}

func FormatDate(d time.Time) string {
	return d.Format(DateLayout)
}

// Scheduled is the wall-clock instant of date+slot in loc.
func Scheduled(date time.Time, slot string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse(timeLayout, slot)
	if err != nil {
		return time.Time{}, ErrInvalidSlot
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil
}

func SlotKey(doctorID int64, date time.Time, slot string) string {
	return fmt.Sprintf("slot:%d:%s:%s", doctorID, date.Format(isoDate), slot)
}
