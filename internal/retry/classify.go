package retry

import (
	"context"
	"errors"
	"io/fs"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/andes-trip-manager/backend/internal/domain"
)

// Kind is the category an error is classified into.
type Kind string

const (
	KindNetwork    Kind = "network"
	KindAuth       Kind = "auth"
	KindPermission Kind = "permission"
	KindValidation Kind = "validation"
	KindServer     Kind = "server"
	KindTimeout    Kind = "timeout"
	KindFile       Kind = "file"
	KindUnknown    Kind = "unknown"
)

// Retryable reports whether failures of this kind are worth another attempt.
func (k Kind) Retryable() bool {
	switch k {
	case KindAuth, KindPermission, KindValidation, KindFile:
		return false
	default:
		return true
	}
}

// Failure is the structured view of an error that rules match against.
// Code is a backend code when one is known: a Postgres SQLSTATE, a
// document-store style code such as "permission-denied", or one of the codes
// FailureOf derives from Go errors.
type Failure struct {
	Code    string
	Message string
}

// Classification is what callers show and log for a failed operation.
type Classification struct {
	Kind             Kind     `json:"kind"`
	UserMessage      string   `json:"userMessage"`
	TechnicalMessage string   `json:"technicalMessage"`
	Code             string   `json:"code,omitempty"`
	CanRetry         bool     `json:"canRetry"`
	Suggestions      []string `json:"suggestions"`
}

// Rule maps failures matching Match to Kind. Rules are evaluated in order and
// the first match wins.
type Rule struct {
	Kind  Kind
	Match func(Failure) bool
}

// DefaultRules is the evaluation order used by NewClassifier when no rules are
// given. File and auth come before permission so "file/permission-denied"
// and "auth/..." codes are not taken for plain permission errors; timeout
// comes before network so a timed-out dial is a timeout.
var DefaultRules = []Rule{
	{KindFile, func(f Failure) bool {
		return hasPrefix(f.Code, "file/", "storage/") || containsAny(f.Message, "file too large", "unsupported file", "no such file")
	}},
	{KindAuth, func(f Failure) bool {
		return f.Code == "unauthenticated" || hasPrefix(f.Code, "auth/", "28") ||
			containsAny(f.Message, "unauthenticated", "not authenticated", "token expired", "invalid token")
	}},
	{KindPermission, func(f Failure) bool {
		return f.Code == "permission-denied" || f.Code == "42501" || containsAny(f.Message, "permission", "forbidden")
	}},
	{KindValidation, func(f Failure) bool {
		switch f.Code {
		case "invalid-argument", "failed-precondition", "out-of-range", "already-exists", "not-found":
			return true
		}
		return hasPrefix(f.Code, "22", "23") || containsAny(f.Message, "invalid", "validation")
	}},
	{KindTimeout, func(f Failure) bool {
		return f.Code == "deadline-exceeded" || f.Code == "57014" || containsAny(f.Message, "timeout", "timed out", "deadline")
	}},
	{KindNetwork, func(f Failure) bool {
		return f.Code == "unavailable" || f.Code == "network-error" || hasPrefix(f.Code, "08") ||
			containsAny(f.Message, "network", "connection refused", "connection reset", "offline", "fetch", "no such host")
	}},
	{KindServer, func(f Failure) bool {
		switch f.Code {
		case "internal", "resource-exhausted", "aborted", "data-loss":
			return true
		}
		return hasPrefix(f.Code, "40", "53", "57", "58", "XX") || containsAny(f.Message, "server", "internal")
	}},
}

// Classifier turns errors into Classifications.
type Classifier struct {
	rules []Rule
}

// NewClassifier returns a classifier over rules, or over DefaultRules when
// none are given.
func NewClassifier(rules ...Rule) *Classifier {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	return &Classifier{rules: rules}
}

// Classify matches err against the rules; an unmatched error is KindUnknown.
func (c *Classifier) Classify(err error) Classification {
	f := FailureOf(err)
	kind := KindUnknown
	for _, r := range c.rules {
		if r.Match(f) {
			kind = r.Kind
			break
		}
	}
	p := presentations[kind]
	return Classification{
		Kind:             kind,
		UserMessage:      p.message,
		TechnicalMessage: f.Message,
		Code:             f.Code,
		CanRetry:         kind.Retryable(),
		Suggestions:      append([]string(nil), p.suggestions...),
	}
}

// FailureOf extracts a code and message from err. Known Go error types take
// precedence over any Code() method further down the chain.
func FailureOf(err error) Failure {
	if err == nil {
		return Failure{}
	}
	f := Failure{Message: err.Error()}

	var pgErr *pgconn.PgError
	var coder interface{ Code() string }
	var netErr net.Error
	switch {
	case errors.As(err, &pgErr):
		f.Code = pgErr.Code
	case errors.Is(err, context.DeadlineExceeded):
		f.Code = "deadline-exceeded"
	case errors.Is(err, domain.ErrUnauthenticated):
		f.Code = "unauthenticated"
	case errors.Is(err, domain.ErrForbidden):
		f.Code = "permission-denied"
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidData):
		f.Code = "invalid-argument"
	case errors.Is(err, domain.ErrNotFound):
		f.Code = "not-found"
	case errors.Is(err, fs.ErrNotExist):
		f.Code = "file/not-found"
	case errors.Is(err, fs.ErrPermission):
		f.Code = "file/permission-denied"
	case errors.As(err, &netErr):
		if netErr.Timeout() {
			f.Code = "deadline-exceeded"
		} else {
			f.Code = "network-error"
		}
	case errors.As(err, &coder):
		f.Code = coder.Code()
	}
	return f
}

type presentation struct {
	message     string
	suggestions []string
}

var presentations = map[Kind]presentation{
	KindNetwork: {"Could not reach the server. Check your connection.",
		[]string{"Check your internet connection", "Try again in a few moments"}},
	KindAuth: {"Your session has expired. Please sign in again.",
		[]string{"Sign in again"}},
	KindPermission: {"You do not have permission to perform this action.",
		[]string{"Check that the trip belongs to your account"}},
	KindValidation: {"Some of the data is invalid.",
		[]string{"Review the highlighted fields", "Check the file format"}},
	KindServer: {"The server had a problem processing the request.",
		[]string{"Try again later"}},
	KindTimeout: {"The operation took too long.",
		[]string{"Try again", "Export fewer items at once"}},
	KindFile: {"The file could not be processed.",
		[]string{"Check that the file is a JSON export of this app", "Files must be smaller than 50 MB"}},
	KindUnknown: {"An unexpected error occurred.",
		[]string{"Try again", "Contact support if the problem persists"}},
}

func hasPrefix(code string, prefixes ...string) bool {
	if code == "" {
		return false
	}
	for _, p := range prefixes {
		if strings.HasPrefix(code, p) {
			return true
		}
	}
	return false
}

func containsAny(msg string, needles ...string) bool {
	lower := strings.ToLower(msg)
	for _, n := range needles {
		if strings.Contains(lower, n) {
			return true
		}
	}
	return false
}
