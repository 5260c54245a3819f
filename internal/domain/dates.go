package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// buddhistEraOffset is the difference between Buddhist-era and Gregorian years.
const buddhistEraOffset = 543

// Bangkok is the fixed UTC+7 zone cards are issued in.
var Bangkok = time.FixedZone("ICT", 7*60*60)

// FormatBuddhistDate renders t as DD/MM/YY with a two-digit Buddhist-era year.
func FormatBuddhistDate(t time.Time) string {
	t = t.In(Bangkok)
	return fmt.Sprintf("%02d/%02d/%02d", t.Day(), int(t.Month()), (t.Year()+buddhistEraOffset)%100)
}

// ParseBuddhistDate parses DD/MM/YY (Buddhist era) into midnight Bangkok time.
func ParseBuddhistDate(raw string) (time.Time, error) {
	parts := strings.Split(strings.TrimSpace(raw), "/")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
		}
		nums[i] = n
	}
	day, month, year := nums[0], nums[1], nums[2]
	if year < 100 {
		year += 2500
	}
	year -= buddhistEraOffset

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, Bangkok)
	// time.Date normalizes out-of-range values; reject instead of rolling over.
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
	}
	return t, nil
}

// BuddhistDateISO converts DD/MM/YY into YYYY-MM-DD, or "" when raw is malformed.
func BuddhistDateISO(raw string) string {
	t, err := ParseBuddhistDate(raw)
	if err != nil {
		return ""
	}
	return t.Format("2006-01-02")
}

// IssueWindow returns the issued and expired dates for a card issued at now.
func IssueWindow(now time.Time) (issued, expired string) {
	now = now.In(Bangkok)
	return FormatBuddhistDate(now), FormatBuddhistDate(now.AddDate(1, 0, 0))
}

// DaysUntil returns the whole days left until the expiry date, rounded up.
// Negative values mean the card has expired.
func DaysUntil(expired string, now time.Time) (int, error) {
	t, err := ParseBuddhistDate(expired)
	if err != nil {
		return 0, err
	}
	return int(math.Ceil(t.Sub(now).Hours() / 24)), nil
}
