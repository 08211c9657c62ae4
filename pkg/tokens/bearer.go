package tokens

import "strings"

const bearerPrefix = "bearer "

// FromAuthorization extracts the credential from an Authorization header
// value. The scheme is matched case-insensitively.
func FromAuthorization(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	v := strings.TrimSpace(header[len(bearerPrefix):])
	return v, v != ""
}
