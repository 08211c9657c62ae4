package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/planbookai/platform/pkg/hash"
	"github.com/planbookai/platform/pkg/logging"
	"github.com/planbookai/platform/services/auth/internal/models"
	"github.com/planbookai/platform/services/auth/internal/repo"
)

const emailDomain = "planbook.ai"

type Account struct {
	Username string
	Role     models.Role
}

var DefaultAccounts = []Account{
	{Username: "admin", Role: models.RoleAdmin},
	{Username: "manager", Role: models.RoleManager},
	{Username: "staff", Role: models.RoleStaff},
	{Username: "giaovien", Role: models.RoleTeacher},
}

type Users interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	Save(ctx context.Context, u *models.User) error
}

// DefaultUsers creates any missing default account. Existing accounts are
// never modified. It returns how many accounts were created.
func DefaultUsers(ctx context.Context, users Users, h *hash.Hasher, password string) (int, error) {
	l := logging.FromContext(ctx).With("job", "seed_default_users")

	created := 0
	for _, a := range DefaultAccounts {
		_, err := users.FindByUsername(ctx, a.Username)
		if err == nil {
			continue
		}
		if !errors.Is(err, repo.ErrUserNotFound) {
			return created, fmt.Errorf("seed %s: %w", a.Username, err)
		}

		pwHash, err := h.HashPassword(password)
		if err != nil {
			return created, fmt.Errorf("seed %s: %w", a.Username, err)
		}
		u := &models.User{
			Username:     a.Username,
			Email:        a.Username + "@" + emailDomain,
			PasswordHash: pwHash,
			Role:         a.Role,
			DisplayName:  strings.ToUpper(a.Username[:1]) + a.Username[1:],
		}
		if err := users.Save(ctx, u); err != nil {
			if errors.Is(err, repo.ErrDuplicateIdentity) {
				l.Warn("seed_skipped", "username", a.Username, "reason", "identity taken")
				continue
			}
			return created, fmt.Errorf("seed %s: %w", a.Username, err)
		}
		created++
		l.Info("seeded_user", "username", a.Username, "role", string(a.Role))
	}
	return created, nil
}
