// Package players validates player profiles before they are stored.
package players

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/nyaruka/phonenumbers"
)

const maxNameLength = 60

var ErrLocaleUnsupported = errors.New("locale is not supported")

// FieldError names the profile field that failed validation.
type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// LocaleChecker reports whether a locale tag can be served.
type LocaleChecker interface {
	Supports(raw string) bool
}

type ProfileInput struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Locale   string `json:"locale"`
	Timezone string `json:"timezone"`
}

type Profile struct {
	Name     string
	Phone    string
	Locale   string
	Timezone string
}

// ValidateProfile trims and checks the input. Phone numbers are normalized to
// E.164, parsed with defaultRegion when they carry no country code.
func ValidateProfile(input ProfileInput, locales LocaleChecker, defaultRegion string) (Profile, error) {
	var profile Profile

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return profile, FieldError{Field: "name", Reason: "is required"}
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return profile, FieldError{Field: "name", Reason: fmt.Sprintf("must be %d characters or fewer", maxNameLength)}
	}
	profile.Name = name

	phone, err := NormalizePhone(input.Phone, defaultRegion)
	if err != nil {
		return profile, FieldError{Field: "phone", Reason: "must be a valid phone number"}
	}
	profile.Phone = phone

	if raw := strings.TrimSpace(input.Locale); raw != "" {
		if locales == nil || !locales.Supports(raw) {
			return profile, fmt.Errorf("%w: %s", ErrLocaleUnsupported, raw)
		}
		profile.Locale = raw
	}

	if raw := strings.TrimSpace(input.Timezone); raw != "" {
		if _, err := time.LoadLocation(raw); err != nil {
			return profile, FieldError{Field: "timezone", Reason: "must be an IANA timezone"}
		}
		profile.Timezone = raw
	}

	return profile, nil
}

// NormalizePhone returns raw in E.164 form, or "" for empty input.
func NormalizePhone(raw, defaultRegion string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	num, err := phonenumbers.Parse(raw, defaultRegion)
	if err != nil {
		return "", err
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", fmt.Errorf("invalid phone number")
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}
