// Package revocation keeps the list of tokens that were explicitly logged
// out before their natural expiry. Entries are keyed by the SHA-256 of the
// token's jti claim, taken after signature verification, so two encodings of
// the same token share one entry and raw bearer values never reach storage.
package revocation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

type Store interface {
	// Revoke is idempotent: revoking an already revoked token is not an error.
	// It reports true only for the call that created the entry.
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) (bool, error)
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
	// PurgeExpired drops entries whose expiresAt <= now and reports how many
	// were removed. It only reclaims space; expired tokens fail validation
	// regardless of the list.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

func Fingerprint(tokenID string) string {
	sum := sha256.Sum256([]byte(tokenID))
	return hex.EncodeToString(sum[:])
}
