package tokens

import "errors"

var (
	ErrMalformed         = errors.New("malformed token")
	ErrSignatureMismatch = errors.New("token signature mismatch")
	ErrExpired           = errors.New("token expired")
	ErrRevoked           = errors.New("token revoked")
	ErrWrongKind         = errors.New("wrong token kind")
)

// IsTokenError reports whether err is a verdict about the token itself, as
// opposed to a failure of the revocation store.
func IsTokenError(err error) bool {
	return errors.Is(err, ErrMalformed) ||
		errors.Is(err, ErrSignatureMismatch) ||
		errors.Is(err, ErrExpired) ||
		errors.Is(err, ErrRevoked) ||
		errors.Is(err, ErrWrongKind)
}
