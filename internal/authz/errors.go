package authz

import "errors"

// ErrDenied is returned by data-access methods when the policy rejects the
// operation. Handlers surface it as a generic denial without naming the
// failed predicate.
var ErrDenied = errors.New("operation not permitted")
