// Package locale picks the display locale and timezone for a request.
package locale

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
)

const (
	SourceCookie         = "cookie"
	SourceStored         = "stored"
	SourceAcceptLanguage = "accept-language"
	SourceTimezone       = "timezone"
	SourceDefault        = "default"

	australiaPrefix = "Australia/"
)

// Candidates are the raw preference signals available for a request, highest precedence first.
type Candidates struct {
	CookieLocale   string
	CookieTimezone string
	StoredLocale   string
	StoredTimezone string
	AcceptLanguage string
}

// Preference is a resolved locale and timezone.
type Preference struct {
	Locale         language.Tag
	Timezone       *time.Location
	LocaleSource   string
	TimezoneSource string
}

type Resolver struct {
	supported []language.Tag
	matcher   language.Matcher
	fallback  language.Tag
	defaultTZ *time.Location
	australia language.Tag
	hasAU     bool
}

// NewResolver builds a resolver over the supported locale tags. fallback must be
// one of them or match one of them.
func NewResolver(supported []string, fallback, defaultTimezone string) (*Resolver, error) {
	if len(supported) == 0 {
		return nil, fmt.Errorf("at least one supported locale is required")
	}
	tags := make([]language.Tag, 0, len(supported))
	for _, raw := range supported {
		tag, err := language.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parse supported locale %q: %w", raw, err)
		}
		tags = append(tags, tag)
	}

	r := &Resolver{
		supported: tags,
		matcher:   language.NewMatcher(tags),
	}

	fallbackTag, err := language.Parse(fallback)
	if err != nil {
		return nil, fmt.Errorf("parse default locale %q: %w", fallback, err)
	}
	matched, ok := r.match(fallbackTag)
	if !ok {
		matched = tags[0]
	}
	r.fallback = matched

	loc, err := time.LoadLocation(defaultTimezone)
	if err != nil {
		return nil, fmt.Errorf("load default timezone %q: %w", defaultTimezone, err)
	}
	r.defaultTZ = loc

	for _, tag := range tags {
		if tag == language.MustParse("en-AU") {
			r.australia = tag
			r.hasAU = true
		}
	}
	return r, nil
}

// Resolve applies the precedence rules. Locale: cookie, stored setting,
// Accept-Language, Australian timezone, default. Timezone: cookie, stored
// setting, default. Unknown or unsupported values are skipped.
func (r *Resolver) Resolve(c Candidates) Preference {
	pref := Preference{
		Locale:         r.fallback,
		Timezone:       r.defaultTZ,
		LocaleSource:   SourceDefault,
		TimezoneSource: SourceDefault,
	}

	tzName := ""
	if loc, name, ok := loadTimezone(c.CookieTimezone); ok {
		pref.Timezone, pref.TimezoneSource, tzName = loc, SourceCookie, name
	} else if loc, name, ok := loadTimezone(c.StoredTimezone); ok {
		pref.Timezone, pref.TimezoneSource, tzName = loc, SourceStored, name
	}

	if tag, ok := r.parseAndMatch(c.CookieLocale); ok {
		pref.Locale, pref.LocaleSource = tag, SourceCookie
		return pref
	}
	if tag, ok := r.parseAndMatch(c.StoredLocale); ok {
		pref.Locale, pref.LocaleSource = tag, SourceStored
		return pref
	}
	if tag, ok := r.matchAcceptLanguage(c.AcceptLanguage); ok {
		pref.Locale, pref.LocaleSource = tag, SourceAcceptLanguage
		return pref
	}
	if r.hasAU && strings.HasPrefix(tzName, australiaPrefix) {
		pref.Locale, pref.LocaleSource = r.australia, SourceTimezone
	}
	return pref
}

// Default returns the preference used when no signal is available.
func (r *Resolver) Default() Preference {
	return r.Resolve(Candidates{})
}

// Supports reports whether raw parses and matches a supported locale.
func (r *Resolver) Supports(raw string) bool {
	_, ok := r.parseAndMatch(raw)
	return ok
}

func (r *Resolver) parseAndMatch(raw string) (language.Tag, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return language.Und, false
	}
	tag, err := language.Parse(raw)
	if err != nil {
		return language.Und, false
	}
	return r.match(tag)
}

func (r *Resolver) matchAcceptLanguage(header string) (language.Tag, bool) {
	if strings.TrimSpace(header) == "" {
		return language.Und, false
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return language.Und, false
	}
	return r.match(tags...)
}

func (r *Resolver) match(tags ...language.Tag) (language.Tag, bool) {
	_, index, confidence := r.matcher.Match(tags...)
	if confidence == language.No {
		return language.Und, false
	}
	return r.supported[index], true
}

func loadTimezone(name string) (*time.Location, string, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, "", false
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, "", false
	}
	return loc, name, true
}

type contextKey struct{}

// WithPreference stores a resolved preference on ctx.
func WithPreference(ctx context.Context, pref Preference) context.Context {
	return context.WithValue(ctx, contextKey{}, pref)
}

// FromContext returns the preference stored on ctx, or English in UTC.
func FromContext(ctx context.Context) Preference {
	if pref, ok := ctx.Value(contextKey{}).(Preference); ok {
		return pref
	}
	return Preference{
		Locale:         language.English,
		Timezone:       time.UTC,
		LocaleSource:   SourceDefault,
		TimezoneSource: SourceDefault,
	}
}

// LocalTime renders t in the preference's timezone as RFC 3339.
func (p Preference) LocalTime(t time.Time) string {
	loc := p.Timezone
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(time.RFC3339)
}
