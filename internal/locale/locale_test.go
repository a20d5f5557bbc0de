package locale

import (
	"context"
	"testing"
	"time"
)

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()
	r, err := NewResolver([]string{"en-GB", "en-AU", "en-US", "es-ES", "sv-SE"}, "en-GB", "UTC")
	if err != nil {
		t.Fatalf("NewResolver() error = %v", err)
	}
	return r
}

func TestResolve(t *testing.T) {
	r := newTestResolver(t)

	tests := []struct {
		name       string
		candidates Candidates
		wantLocale string
		wantSource string
		wantTZ     string
		wantTZFrom string
	}{
		{
			name:       "nothing known",
			wantLocale: "en-GB", wantSource: SourceDefault,
			wantTZ: "UTC", wantTZFrom: SourceDefault,
		},
		{
			name: "cookie beats everything",
			candidates: Candidates{
				CookieLocale:   "en-US",
				StoredLocale:   "es-ES",
				AcceptLanguage: "sv-SE",
			},
			wantLocale: "en-US", wantSource: SourceCookie,
			wantTZ: "UTC", wantTZFrom: SourceDefault,
		},
		{
			name: "stored when cookie is garbage",
			candidates: Candidates{
				CookieLocale: "!!",
				StoredLocale: "es-ES",
			},
			wantLocale: "es-ES", wantSource: SourceStored,
			wantTZ: "UTC", wantTZFrom: SourceDefault,
		},
		{
			name:       "accept language",
			candidates: Candidates{AcceptLanguage: "sv-SE,sv;q=0.9,en;q=0.5"},
			wantLocale: "sv-SE", wantSource: SourceAcceptLanguage,
			wantTZ: "UTC", wantTZFrom: SourceDefault,
		},
		{
			name:       "australian timezone",
			candidates: Candidates{StoredTimezone: "Australia/Sydney"},
			wantLocale: "en-AU", wantSource: SourceTimezone,
			wantTZ: "Australia/Sydney", wantTZFrom: SourceStored,
		},
		{
			name: "accept language beats timezone heuristic",
			candidates: Candidates{
				CookieTimezone: "Australia/Perth",
				AcceptLanguage: "es-ES",
			},
			wantLocale: "es-ES", wantSource: SourceAcceptLanguage,
			wantTZ: "Australia/Perth", wantTZFrom: SourceCookie,
		},
		{
			name: "bad cookie timezone falls back to stored",
			candidates: Candidates{
				CookieTimezone: "Nowhere/Town",
				StoredTimezone: "Europe/Stockholm",
			},
			wantLocale: "en-GB", wantSource: SourceDefault,
			wantTZ: "Europe/Stockholm", wantTZFrom: SourceStored,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pref := r.Resolve(tt.candidates)
			if pref.Locale.String() != tt.wantLocale || pref.LocaleSource != tt.wantSource {
				t.Fatalf("locale = %s (%s), want %s (%s)", pref.Locale, pref.LocaleSource, tt.wantLocale, tt.wantSource)
			}
			if pref.Timezone.String() != tt.wantTZ || pref.TimezoneSource != tt.wantTZFrom {
				t.Fatalf("timezone = %s (%s), want %s (%s)", pref.Timezone, pref.TimezoneSource, tt.wantTZ, tt.wantTZFrom)
			}
		})
	}
}

func TestNewResolverRejectsBadInput(t *testing.T) {
	if _, err := NewResolver(nil, "en-GB", "UTC"); err == nil {
		t.Fatal("expected error for empty supported list")
	}
	if _, err := NewResolver([]string{"en-GB"}, "en-GB", "Mars/Base"); err == nil {
		t.Fatal("expected error for unknown timezone")
	}
}

func TestSupports(t *testing.T) {
	r := newTestResolver(t)
	if !r.Supports("en-AU") {
		t.Fatal("expected en-AU to be supported")
	}
	if r.Supports("") || r.Supports("!!") {
		t.Fatal("expected empty and invalid tags to be unsupported")
	}
}

func TestPreferenceContext(t *testing.T) {
	r := newTestResolver(t)
	ctx := WithPreference(context.Background(), r.Resolve(Candidates{StoredTimezone: "Australia/Sydney"}))

	pref := FromContext(ctx)
	if pref.Locale.String() != "en-AU" {
		t.Fatalf("locale from context = %s, want en-AU", pref.Locale)
	}

	played := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	if got := pref.LocalTime(played); got != "2024-03-01T20:00:00+11:00" {
		t.Fatalf("LocalTime() = %q", got)
	}

	if got := FromContext(context.Background()).LocalTime(played); got != "2024-03-01T09:00:00Z" {
		t.Fatalf("default LocalTime() = %q", got)
	}
}
