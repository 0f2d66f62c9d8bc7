// request.go -- Framework-agnostic request shape searched for credentials.
// Built from whatever transport hosts the strategy (see internal/auth for the
// HTTP adapter); the strategy itself never touches net/http.
package strategy

// Request is the minimal view of an inbound request the strategy needs.
// Each carrier is an optional string-keyed mapping: a nil map means the
// carrier is absent, which is distinct from a present-but-empty map.
// Header keys are matched case-insensitively (RFC 7230).
type Request struct {
	Body   map[string]string
	Query  map[string]string
	Header map[string]string
}

// Carrier names a section of a Request searched for a credential field.
type Carrier string

// The three carriers a Request exposes.
const (
	CarrierBody   Carrier = "body"
	CarrierQuery  Carrier = "query"
	CarrierHeader Carrier = "header"
)

// DefaultLookups is the carrier search order used when Config.Lookups is empty.
var DefaultLookups = []Carrier{CarrierBody, CarrierQuery, CarrierHeader}

// ParseCarrier converts a configuration string into a Carrier.
// Returns false for anything other than "body", "query", or "header".
func ParseCarrier(s string) (Carrier, bool) {
	switch Carrier(s) {
	case CarrierBody, CarrierQuery, CarrierHeader:
		return Carrier(s), true
	}
	return "", false
}

// carrier returns the named carrier's mapping. A nil Request, an absent
// carrier, and an unknown carrier name all yield nil -- never an error.
func (r *Request) carrier(c Carrier) map[string]string {
	if r == nil {
		return nil
	}
	switch c {
	case CarrierBody:
		return r.Body
	case CarrierQuery:
		return r.Query
	case CarrierHeader:
		return r.Header
	}
	return nil
}
