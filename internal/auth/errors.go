// Package auth implements the session core: password hashing, access and
// refresh token issuance, and the session manager orchestrating registration,
// login, rotation and revocation against the credential store.
//
// Every failure crossing the package boundary is one of the typed errors
// below; raw token-library and database errors never escape, except for
// unclassified store faults which handlers map to HTTP 500.
package auth

// ValidationError signals malformed or missing input. The message enumerates
// every violated rule, joined into one string.
type ValidationError struct{ Message string }

func (e *ValidationError) Error() string { return e.Message }

// ConflictError signals a duplicate unique key (an already registered email).
type ConflictError struct{ Message string }

func (e *ConflictError) Error() string { return e.Message }

// UnauthorizedError signals a bad credential or a bad, expired or missing
// token. Login failures deliberately carry the same message regardless of
// cause, to resist account enumeration.
type UnauthorizedError struct{ Message string }

func (e *UnauthorizedError) Error() string { return e.Message }

// ForbiddenError signals an authenticated caller with an insufficient role.
type ForbiddenError struct{ Message string }

func (e *ForbiddenError) Error() string { return e.Message }

func validationErr(msg string) error   { return &ValidationError{Message: msg} }
func conflictErr(msg string) error     { return &ConflictError{Message: msg} }
func unauthorizedErr(msg string) error { return &UnauthorizedError{Message: msg} }
