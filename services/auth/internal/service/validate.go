package service

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/planbookai/platform/pkg/hash"
	"github.com/planbookai/platform/pkg/tokens"
	"github.com/planbookai/platform/services/auth/internal/models"
	"github.com/planbookai/platform/services/auth/internal/transport"
)

const (
	MinPasswordLen = 6
	maxDisplayName = 128
	maxUsername    = 64
)

var usernameRe = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

type candidate struct {
	Username    string
	Email       string
	Password    string
	DisplayName string
	Role        models.Role
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func normalizeRegistration(req transport.RegisterRequest) (candidate, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email, "@") {
		return candidate{}, invalid("email is not a valid address")
	}

	username := strings.TrimSpace(req.Username)
	if username == "" {
		username = usernameFromEmail(email)
	} else if !usernameRe.MatchString(username) {
		return candidate{}, invalid("username may contain letters, digits, '.', '_' and '-' only")
	}

	n := len(req.Password)
	if n < MinPasswordLen || n > hash.MaxPasswordLen {
		return candidate{}, invalid("password must be %d to %d characters", MinPasswordLen, hash.MaxPasswordLen)
	}

	role, ok := models.ParseRole(req.Role)
	if !ok {
		return candidate{}, invalid("unknown role %q", req.Role)
	}

	display := strings.TrimSpace(req.DisplayName)
	if display == "" {
		display = strings.TrimSpace(req.FullName)
	}
	if display == "" {
		display = username
	}
	if utf8.RuneCountInString(display) > maxDisplayName {
		return candidate{}, invalid("display name is too long")
	}

	return candidate{
		Username:    username,
		Email:       email,
		Password:    req.Password,
		DisplayName: display,
		Role:        role,
	}, nil
}

// usernameFromEmail maps the local part onto the username alphabet. Any other
// rune becomes '_'.
func usernameFromEmail(email string) string {
	local := email[:strings.LastIndex(email, "@")]
	var b strings.Builder
	for _, r := range local {
		if b.Len() == maxUsername {
			break
		}
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// stripBearer accepts either a raw token or a full Authorization value.
func stripBearer(v string) string {
	if tok, ok := tokens.FromAuthorization(v); ok {
		return tok
	}
	return strings.TrimSpace(v)
}
