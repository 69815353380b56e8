package bip353

import "strings"

// currencyGlyph is the optional Bitcoin prefix on human-readable addresses.
const currencyGlyph = "₿"

// ParseAddress splits a human-readable Bitcoin address into its user and
// domain parts. Leading and trailing whitespace is trimmed and at most one
// leading ₿ glyph is stripped; any further glyphs stay part of the user
// segment. The input must contain exactly one @ with non-empty segments on
// both sides.
//
// No domain-label validation happens here. A syntactically odd domain fails
// later at DNS resolution, not at parse time.
func ParseAddress(raw string) (user, domain string, err error) {
	addr := strings.TrimSpace(raw)
	addr = strings.TrimPrefix(addr, currencyGlyph)

	parts := strings.Split(addr, "@")
	if len(parts) != 2 {
		return "", "", newError(KindInvalidAddress, "address must be in user@domain form")
	}

	user = strings.TrimSpace(parts[0])
	domain = strings.TrimSpace(parts[1])
	if user == "" || domain == "" {
		return "", "", newError(KindInvalidAddress, "user and domain must be non-empty")
	}

	return user, domain, nil
}
