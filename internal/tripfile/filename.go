package tripfile

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var unsafeFileChars = regexp.MustCompile(`[^a-z0-9]+`)

// SanitizeName folds accents ("Patagônia" -> "patagonia"), lowercases, and
// collapses every run of characters other than ASCII letters and digits into
// one underscore.
func SanitizeName(name string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), name)
	if err != nil {
		folded = name
	}
	s := unsafeFileChars.ReplaceAllString(strings.ToLower(folded), "_")
	s = strings.Trim(s, "_")
	if s == "" {
		return "trip"
	}
	return s
}

// FileName is the download name of a single-trip export:
// trip_<sanitized-name>_<YYYY-MM-DD>.json.
func FileName(tripName string, now time.Time) string {
	return "trip_" + SanitizeName(tripName) + "_" + now.UTC().Format(DateLayout) + ".json"
}

// MultiFileName is the download name of a multi-trip export.
func MultiFileName(now time.Time) string {
	return "trips_export_" + now.UTC().Format(DateLayout) + ".json"
}

// BackupFileName names a pre-import backup; id keeps names unique when two
// backups are taken in the same second.
func BackupFileName(now time.Time, id string) string {
	return "backup_" + now.UTC().Format("20060102T150405Z") + "_" + id + ".json"
}
