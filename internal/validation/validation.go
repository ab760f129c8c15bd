// Package validation implements the content validator for anonymous message
// submissions: sanitization of raw text and syntactic checks on message
// content and recipient identifiers.
//
// The package is pure (no I/O, no ambient state) so the same rules can be
// exercised identically by the public intake path and by any pre-flight
// check. Failures are reported as tagged sentinel errors, produced here at
// the source and mapped to presentation text at the HTTP boundary; callers
// must never re-derive the failure kind by inspecting message text.
//
// Validation is deliberately split from sanitization: the escape heuristic in
// ValidateMessageContent inspects the raw input, catching signals that
// Sanitize would otherwise silently strip.
package validation

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxContentRunes is the maximum accepted message length, measured in runes
// of the sanitized text.
const MaxContentRunes = 1000

// Validation errors. Each value tags exactly one failure kind; handlers map
// them to user-facing phrases and HTTP statuses.
var (
	// ErrEmptyContent is returned when the sanitized message text is empty.
	ErrEmptyContent = errors.New("message cannot be empty")

	// ErrTooLong is returned when the sanitized message text exceeds
	// MaxContentRunes.
	ErrTooLong = errors.New("message is too long")

	// ErrSuspiciousEscapes is returned when the raw (pre-sanitize) text
	// contains literal backslash-escape sequences that usually indicate a
	// double-encoded or malformed JSON payload.
	ErrSuspiciousEscapes = errors.New("message contains invalid characters")

	// ErrMissingRecipient is returned when no recipient id was supplied.
	ErrMissingRecipient = errors.New("recipient id is required")

	// ErrMalformedRecipient is returned when the recipient id is not a
	// well-formed UUID.
	ErrMalformedRecipient = errors.New("invalid recipient id format")
)

// uuidRE matches the canonical 8-4-4-4-12 textual UUID form with the version
// nibble restricted to 1–5 and the variant nibble to {8,9,a,b}.
var uuidRE = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[1-5][0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

// Sanitize removes null bytes and Unicode replacement characters from s, then
// trims leading and trailing whitespace. It is deterministic and idempotent:
// Sanitize(Sanitize(s)) == Sanitize(s) for every s.
func Sanitize(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	s = strings.ReplaceAll(s, "�", "")
	return strings.TrimSpace(s)
}

// ValidateMessageContent checks raw message text against the content rules.
// Checks run in a fixed order (emptiness, then length, then the escape
// heuristic) and the first failure wins. A nil return means the sanitized
// form of raw is acceptable for persistence.
//
// The escape heuristic rejects raw input containing the literal substrings
// `\x`, `\u` or `\"`. It can falsely reject legitimate text that happens to
// contain those sequences; it is kept as a guard against re-serialized JSON
// leaking into the field.
func ValidateMessageContent(raw string) error {
	sanitized := Sanitize(raw)

	if sanitized == "" {
		return ErrEmptyContent
	}
	if utf8.RuneCountInString(sanitized) > MaxContentRunes {
		return ErrTooLong
	}
	if strings.Contains(raw, `\x`) || strings.Contains(raw, `\u`) || strings.Contains(raw, `\"`) {
		return ErrSuspiciousEscapes
	}
	return nil
}

// ValidateRecipientID checks that id is present and shaped like a canonical
// UUID (case-insensitive). It says nothing about whether the referenced
// profile exists; that is enforced by the store at insert time.
func ValidateRecipientID(id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrMissingRecipient
	}
	if !uuidRE.MatchString(strings.ToLower(id)) {
		return ErrMalformedRecipient
	}
	return nil
}
