// disposition.go -- Terminal outcome of one authentication attempt.
package strategy

// DispositionKind discriminates the three terminal outcomes of Authenticate.
type DispositionKind int

// The terminal outcomes, in the order the orchestrator can reach them.
const (
	KindSuccess DispositionKind = iota
	KindFail
	KindError
)

// Disposition is the single terminal outcome of one Authenticate call:
// exactly one of success (with the verified user), failure (with a
// caller-visible reason), or error. Modeling the outcome as one value rather
// than three separate callback slots makes it impossible to signal more than
// one result per attempt.
type Disposition struct {
	Kind DispositionKind
	User any    // set on success
	Info string // detail message on success or failure
	Err  error  // set on error
}

// Success builds a success disposition carrying the verified user.
func Success(user any, info string) Disposition {
	return Disposition{Kind: KindSuccess, User: user, Info: info}
}

// Fail builds a non-error authentication failure with a caller-visible reason.
// Used when credentials are missing or the verify callback rejects the user.
func Fail(info string) Disposition {
	return Disposition{Kind: KindFail, Info: info}
}

// Error builds an error disposition for transport, parse, or verification
// errors -- conditions that are not a clean "credentials rejected".
func Error(err error) Disposition {
	return Disposition{Kind: KindError, Err: err}
}
