// lookup.go -- Credential location across request carriers.
//
// Pure functions with explicit parameters; none of this depends on strategy
// state. Header lookup is case-insensitive per RFC 7230; the bearer fallback
// parses an RFC 6750 Authorization header value.
package strategy

import "strings"

// bearerScheme is the RFC 6750 scheme prefix. Matching is case-sensitive and
// requires exactly one space; the token is the literal remainder, untrimmed.
const bearerScheme = "Bearer "

// HeaderValue returns the first header value whose key matches field
// case-insensitively. The boolean distinguishes "not found" from an empty
// header value, which is valid. A nil or empty header map yields ("", false).
// When multiple stored keys collide case-insensitively the winner is
// unspecified -- the collection is not de-duplicated.
func HeaderValue(headers map[string]string, field string) (string, bool) {
	if len(headers) == 0 {
		return "", false
	}
	if v, ok := headers[field]; ok {
		return v, true
	}
	for k, v := range headers {
		if strings.EqualFold(k, field) {
			return v, true
		}
	}
	return "", false
}

// ParseBearer extracts the token from an RFC 6750 "Bearer <token>" header
// value. Returns false when the value does not start with the scheme keyword
// or the remainder is empty. The token is the exact trailing substring --
// surrounding whitespace is preserved, not trimmed.
func ParseBearer(value string) (string, bool) {
	if !strings.HasPrefix(value, bearerScheme) {
		return "", false
	}
	token := value[len(bearerScheme):]
	if token == "" {
		return "", false
	}
	return token, true
}

// Locate searches the carriers of req in the given order for field.
// The first carrier holding the field wins; later carriers are never
// consulted, even when the found value is empty. Absent carriers are
// skipped without error. Header carriers match case-insensitively.
func Locate(req *Request, field string, order []Carrier) (string, bool) {
	for _, c := range order {
		m := req.carrier(c)
		if m == nil {
			continue
		}
		if c == CarrierHeader {
			if v, ok := HeaderValue(m, field); ok {
				return v, true
			}
			continue
		}
		if v, ok := m[field]; ok {
			return v, true
		}
	}
	return "", false
}
