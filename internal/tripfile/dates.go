package tripfile

import (
	"strings"
	"time"

	"golang.org/x/text/language"
)

// DateLayout is the ISO calendar date layout used for date-only fields.
const DateLayout = "2006-01-02"

// parseLayouts are tried in order by ParseDate.
var parseLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	DateLayout,
}

// ParseDate parses the date representations found in trip files: ISO dates
// and RFC 3339 timestamps, with or without zone. It reports false for
// anything else, including locale-formatted dates.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseCalendarDate parses s like ParseDate and reduces it to its calendar
// date in UTC, the value a DATE column holds.
func ParseCalendarDate(s string) (time.Time, bool) {
	t, ok := ParseDate(s)
	if !ok {
		return time.Time{}, false
	}
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
}

// FormatDate renders a calendar date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// FormatTimestamp renders an instant as RFC 3339 in UTC.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// Locale is a matched language tag with the date layout used for it.
type Locale struct {
	Tag    language.Tag
	Layout string
}

var (
	supportedLocales = []Locale{
		{Tag: language.BrazilianPortuguese, Layout: "02/01/2006"},
		{Tag: language.LatinAmericanSpanish, Layout: "02/01/2006"},
		{Tag: language.Spanish, Layout: "02/01/2006"},
		{Tag: language.AmericanEnglish, Layout: "01/02/2006"},
		{Tag: language.BritishEnglish, Layout: "02/01/2006"},
		{Tag: language.German, Layout: "02.01.2006"},
		{Tag: language.French, Layout: "02/01/2006"},
	}
	localeMatcher = language.NewMatcher(localeTags())
)

func localeTags() []language.Tag {
	tags := make([]language.Tag, len(supportedLocales))
	for i, l := range supportedLocales {
		tags[i] = l.Tag
	}
	return tags
}

// LookupLocale returns the supported locale closest to tag (a BCP 47 string
// such as "pt-BR" or "es-CL"). Unknown or malformed tags fall back to the
// first supported locale, Brazilian Portuguese.
func LookupLocale(tag string) Locale {
	t, err := language.Parse(tag)
	if err != nil {
		return supportedLocales[0]
	}
	_, idx, conf := localeMatcher.Match(t)
	if conf == language.No {
		return supportedLocales[0]
	}
	return supportedLocales[idx]
}

// FormatLocalDate rewrites s in the locale's layout. Strings that do not
// parse are returned unchanged.
func FormatLocalDate(s string, loc Locale) string {
	t, ok := ParseDate(s)
	if !ok {
		return s
	}
	return t.Format(loc.Layout)
}
