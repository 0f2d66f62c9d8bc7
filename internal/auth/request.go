// request.go -- Adapts an inbound HTTP request into the strategy's carriers.
package auth

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/MGallo-Code/janus/internal/strategy"
)

// maxLoginBodyBytes caps how much of a login request body is read (64 KB).
const maxLoginBodyBytes = 64 << 10

// StrategyRequest builds the carrier view of r for credential resolution.
//
// Body: a flat JSON object; only string-valued fields participate. The body
// is consumed here -- callers must not read r.Body afterwards. A missing or
// malformed body yields an absent carrier (nil), never an error: requests
// may legitimately carry credentials in the query or headers only.
// Query and headers: first value per key.
func StrategyRequest(r *http.Request) *strategy.Request {
	req := &strategy.Request{}

	if r.Body != nil {
		var body map[string]any
		if err := json.NewDecoder(io.LimitReader(r.Body, maxLoginBodyBytes)).Decode(&body); err == nil && body != nil {
			m := make(map[string]string, len(body))
			for k, v := range body {
				if s, ok := v.(string); ok {
					m[k] = s
				}
			}
			req.Body = m
		}
	}

	if q := r.URL.Query(); len(q) > 0 {
		m := make(map[string]string, len(q))
		for k, vs := range q {
			if len(vs) > 0 {
				m[k] = vs[0]
			}
		}
		req.Query = m
	}

	if len(r.Header) > 0 {
		m := make(map[string]string, len(r.Header))
		for k, vs := range r.Header {
			if len(vs) > 0 {
				m[k] = vs[0]
			}
		}
		req.Header = m
	}

	return req
}
