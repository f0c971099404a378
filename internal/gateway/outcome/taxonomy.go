// Package outcome maps tool failures and results onto a small, stable set of
// codes that clients and dashboards can rely on.
package outcome

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

type Code string

const (
	OK                   Code = "OK"
	WarnQuotaZero        Code = "WARN_QUOTA_ZERO"
	AuthRequired         Code = "AUTH_REQUIRED"
	CredentialsMissing   Code = "CREDENTIALS_MISSING"
	UnsupportedAlias     Code = "UNSUPPORTED_ALIAS"
	DimensionUnavailable Code = "DIMENSION_UNAVAILABLE"
	MetricUnavailable    Code = "METRIC_UNAVAILABLE"
	UpstreamAuth         Code = "UPSTREAM_AUTH"
	UpstreamAPI          Code = "UPSTREAM_API"
	Internal             Code = "INTERNAL"
)

// MaxLogMessage bounds messages written to outcome logs.
const MaxLogMessage = 240

// MsgInternal is shown to clients for failures nothing else recognises.
const MsgInternal = "Internal error"

// Coded is implemented by errors that already know their outcome code.
type Coded interface {
	OutcomeCode() Code
}

// Public is implemented by errors whose text carries upstream response
// bodies. PublicMessage is the part clients may see.
type Public interface {
	PublicMessage() string
}

// Mapped is a classified failure. Message is what clients see; Detail is the
// full error text for logs.
type Mapped struct {
	Code    Code
	Message string
	Detail  string
}

// Error is a classified failure as surfaced to clients: "[CODE] message".
// Err, when set, is the cause and only ever reaches the logs.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string { return fmt.Sprintf("[%s] %s", e.Code, e.Message) }

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) OutcomeCode() Code { return e.Code }

// Errorf builds a classified error.
func Errorf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

var (
	prefixRe      = regexp.MustCompile(`(?s)^\[([A-Z0-9_]+)\]\s*(.*)$`)
	upstreamAPIRe = regexp.MustCompile(`^(GET|POST|DELETE)\s+.+\s+failed\s+\(\d+\):`)
)

// Classify maps err to a code. It is pure: the same error always yields the
// same result. Message is never empty.
func Classify(err error) Mapped {
	if err == nil {
		return Mapped{Code: OK}
	}

	m := classify(err)
	if m.Message == "" {
		m.Message = string(m.Code)
	}
	if m.Detail == "" {
		m.Detail = m.Message
	}
	return m
}

func classify(err error) Mapped {
	var classified *Error
	if errors.As(err, &classified) {
		m := Mapped{Code: classified.Code, Message: classified.Message, Detail: classified.Message}
		if classified.Err != nil {
			if d := classify(classified.Err).Detail; d != "" {
				m.Detail = d
			}
		}
		return m
	}

	msg := err.Error()
	if m := prefixRe.FindStringSubmatch(msg); m != nil {
		return Mapped{Code: Code(m[1]), Message: m[2], Detail: m[2]}
	}

	var coded Coded
	if errors.As(err, &coded) {
		m := Mapped{Code: coded.OutcomeCode(), Message: msg, Detail: msg}
		var pub Public
		if errors.As(err, &pub) {
			m.Message = pub.PublicMessage()
		}
		return m
	}

	return ClassifyMessage(msg)
}

// ClassifyMessage maps a bare message by the phrases upstream and internal
// failures are known to use. Upstream response bodies and unrecognised
// error text are kept out of Message.
func ClassifyMessage(msg string) Mapped {
	if m := prefixRe.FindStringSubmatch(msg); m != nil {
		return Mapped{Code: Code(m[1]), Message: m[2], Detail: m[2]}
	}

	code, public := Internal, msg
	switch {
	case strings.Contains(msg, "Authentication required"):
		code = AuthRequired
	case strings.Contains(msg, "credentials are missing"), strings.Contains(msg, "credentials not configured"):
		code = CredentialsMissing
	case strings.Contains(msg, "Unsupported metric alias"), strings.Contains(msg, "Unsupported dimension alias"):
		code = UnsupportedAlias
	case strings.Contains(msg, "Dimension '") && strings.Contains(msg, "does not expose"):
		code = DimensionUnavailable
	case strings.Contains(msg, "Metric '") && strings.Contains(msg, "does not expose"):
		code = MetricUnavailable
	case strings.Contains(msg, "authentication failed"):
		code, public = UpstreamAuth, throughStatus(msg)
	case upstreamAPIRe.MatchString(msg):
		code, public = UpstreamAPI, throughStatus(msg)
	default:
		public = MsgInternal
	}
	return Mapped{Code: code, Message: public, Detail: msg}
}

// throughStatus cuts "... failed (404): body" down to "... failed (404)".
func throughStatus(msg string) string {
	if i := strings.Index(msg, "): "); i >= 0 {
		return msg[:i+1]
	}
	return msg
}

// DeriveSuccess picks the outcome code for a successful tool result. An
// analysis usage report with a zero maximum means the account cannot run
// calculations, which callers should see as a warning.
func DeriveSuccess(tool string, result any) Code {
	if tool != "get_analysis_usage" {
		return OK
	}
	if QuotaIsZero(result) {
		return WarnQuotaZero
	}
	return OK
}

// QuotaIsZero reports whether result carries a finite "maximum" equal to zero.
func QuotaIsZero(result any) bool {
	obj, ok := result.(map[string]any)
	if !ok {
		return false
	}

	var f float64
	switch v := obj["maximum"].(type) {
	case float64:
		f = v
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case json.Number:
		n, err := v.Float64()
		if err != nil {
			return false
		}
		f = n
	default:
		return false
	}
	return !math.IsInf(f, 0) && !math.IsNaN(f) && f == 0
}

// Truncate shortens s for logging without splitting a UTF-8 sequence.
func Truncate(s string) string {
	if len(s) <= MaxLogMessage {
		return s
	}
	cut := MaxLogMessage
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
