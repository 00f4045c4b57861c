package booking

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

const DateLayout = "2006-01-02"

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}

// NormalizePhoneNumber brings Indian mobile numbers to +91XXXXXXXXXX.
// Anything it can't recognise is returned as bare digits.
func NormalizePhoneNumber(phone string) string {
	cleaned := digitsOnly(phone)

	switch {
	case len(cleaned) == 10:
		return "+91" + cleaned
	case len(cleaned) == 11 && strings.HasPrefix(cleaned, "0"):
		return "+91" + cleaned[1:]
	case len(cleaned) == 12 && strings.HasPrefix(cleaned, "91"):
		return "+" + cleaned
	}
	return cleaned
}

func IsValidPhoneNumber(phone string) bool {
	phone = NormalizePhoneNumber(phone)
	if !strings.HasPrefix(phone, "+91") || len(phone) != 13 {
		return false
	}

	local := phone[3:]
	if local[0] < '6' {
		return false
	}

	badNumbers := map[string]bool{
		"9999999999": true,
		"9876543210": true,
		"8888888888": true,
		"7777777777": true,
		"6666666666": true,
	}
	return !badNumbers[local]
}

// FormatPhoneNumber renders +91XXXXXXXXXX as "+91 XXXXX XXXXX".
func FormatPhoneNumber(phone string) string {
	if strings.HasPrefix(phone, "+91") && len(phone) == 13 {
		return fmt.Sprintf("%s %s %s", phone[:3], phone[3:8], phone[8:])
	}
	return phone
}

func IsValidPincode(pin string) bool {
	if len(pin) != 6 || pin[0] == '0' {
		return false
	}
	return digitsOnly(pin) == pin
}

// ValidatePreferredDate accepts an empty date or a YYYY-MM-DD date that is
// not before today.
func ValidatePreferredDate(date string, now time.Time) error {
	if date == "" {
		return nil
	}
	d, err := time.ParseInLocation(DateLayout, date, now.Location())
	if err != nil {
		return fmt.Errorf("use YYYY-MM-DD")
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if d.Before(today) {
		return fmt.Errorf("date is in the past")
	}
	return nil
}
