// Package identity normalizes and hashes member identifiers before they
// leave the process. Raw PII never reaches the partner wire: every value
// is canonicalized per its type and reduced to a SHA-256 hex digest.
//
// Pipeline per value
// 1 UTF-8 repair drop invalid bytes
// 2 Unicode NFKC normalization and case folding (emails only)
// 3 Strip format chars and fold fullwidth to ASCII
// 4 Type-specific canonical form (gmail-style rules for emails)
// 5 SHA-256 lowercase hex, unless the input is already a digest
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"

	perr "adrelay/internal/platform/errors"
)

// Type enumerates the identifier kinds a membership row can carry.
// Declaration order is the schema order used on mutation payloads.
type Type uint8

const (
	// TypeEmail is a hashed, canonicalized email address.
	TypeEmail Type = iota + 1
	// TypeMobileAdID is a hashed device advertising identifier.
	TypeMobileAdID
	// TypePhone is a hashed phone number.
	TypePhone
)

// AllTypes lists every identifier type in schema order.
var AllTypes = [...]Type{TypeEmail, TypeMobileAdID, TypePhone}

var wireNames = map[Type]string{
	TypeEmail:      "EMAIL",
	TypeMobileAdID: "MOBILE_AD_ID",
	TypePhone:      "PHONE",
}

// String returns the wire name for t, or "UNKNOWN" for unmapped values.
func (t Type) String() string {
	if s, ok := wireNames[t]; ok {
		return s
	}
	return "UNKNOWN"
}

// ParseType maps a wire name to its Type, case-insensitively.
func ParseType(s string) (Type, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "EMAIL":
		return TypeEmail, true
	case "MOBILE_AD_ID":
		return TypeMobileAdID, true
	case "PHONE":
		return TypePhone, true
	}
	return 0, false
}

// MarshalJSON emits the wire name.
func (t Type) MarshalJSON() ([]byte, error) {
	s, ok := wireNames[t]
	if !ok {
		return nil, perr.Newf(perr.ErrorCodeInvalidArgument, "unknown identifier type %d", uint8(t))
	}
	return json.Marshal(s)
}

// UnmarshalJSON accepts a wire name.
func (t *Type) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return perr.Wrap(err, perr.ErrorCodeJSON, "identifier type")
	}
	parsed, ok := ParseType(s)
	if !ok {
		return perr.Newf(perr.ErrorCodeInvalidArgument, "unknown identifier type %q", s)
	}
	*t = parsed
	return nil
}

// Envelope is one raw identifier as submitted by a caller, before any
// normalization. Disabled envelopes are carried but never hashed.
type Envelope struct {
	Raw     string
	Type    Type
	Enabled bool
}

// pool of fresh transformer chains for email canonicalization
var chainPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFKC,
			cases.Fold(),                       // unicode case folding
			runes.Remove(runes.In(unicode.Cf)), // strip format chars ZWJ ZWNJ FEFF etc
			width.Fold,                         // map fullwidth forms to ASCII
		)
	},
}

func fold(s string) string {
	tr := chainPool.Get().(transform.Transformer)
	ns, _, _ := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)
	return ns
}

// Normalize returns the canonical form of raw for the given type.
// ok is false when the value is empty after trimming.
func Normalize(t Type, raw string) (string, bool) {
	s := strings.TrimSpace(strings.ToValidUTF8(raw, ""))
	if s == "" {
		return "", false
	}
	switch t {
	case TypeEmail:
		s = normalizeEmail(s)
	default:
		// device and phone identifiers keep their case
	}
	if s == "" {
		return "", false
	}
	return s, true
}

// normalizeEmail lowercases via unicode folding, strips a +suffix from
// the local part, and removes dots before the @.
func normalizeEmail(s string) string {
	s = strings.TrimSpace(fold(s))
	at := strings.LastIndexByte(s, '@')
	if at < 0 {
		return s
	}
	local, domain := s[:at], s[at+1:]
	if plus := strings.IndexByte(local, '+'); plus >= 0 {
		local = local[:plus]
	}
	local = strings.ReplaceAll(local, ".", "")
	return local + "@" + domain
}

// hexDigestLen is the length of a lowercase hex SHA-256 digest.
const hexDigestLen = 64

// IsDigest reports whether s already looks like a lowercase hex SHA-256
// digest. Such values pass through Digest unchanged.
func IsDigest(s string) bool {
	if len(s) != hexDigestLen {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// Digest returns the SHA-256 lowercase hex digest of the canonical value.
// Pre-hashed input is returned as-is, so callers can mix raw and hashed
// identifiers in one batch without double-hashing.
func Digest(canonical string) string {
	if IsDigest(canonical) {
		return canonical
	}
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

// Process normalizes and hashes one envelope. ok is false when the
// envelope is disabled or empty after normalization.
func Process(env Envelope) (string, bool) {
	if !env.Enabled {
		return "", false
	}
	canonical, ok := Normalize(env.Type, env.Raw)
	if !ok {
		return "", false
	}
	return Digest(canonical), true
}
