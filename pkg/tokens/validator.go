package tokens

import (
	"context"
	"fmt"
)

// RevocationChecker is the read side of the revocation list. Entries are
// keyed by the verified jti, never by the presented string.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Validator turns a presented token into trusted claims. It holds no mutable
// state and is safe for concurrent use.
type Validator struct {
	Codec   *Codec
	Revoked RevocationChecker
}

func NewValidator(codec *Codec, revoked RevocationChecker) *Validator {
	return &Validator{Codec: codec, Revoked: revoked}
}

// Validate decodes the token and then consults the revocation list. Token
// verdicts are returned as the package sentinels; a revocation store failure
// is returned wrapped and must be treated as an internal error.
func (v *Validator) Validate(ctx context.Context, value string) (*Claims, error) {
	claims, err := v.Codec.Decode(value)
	if err != nil {
		return nil, err
	}
	if v.Revoked != nil {
		revoked, err := v.Revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("check revocation: %w", err)
		}
		if revoked {
			return nil, ErrRevoked
		}
	}
	return claims, nil
}

func (v *Validator) ValidateKind(ctx context.Context, value string, kind Kind) (*Claims, error) {
	claims, err := v.Validate(ctx, value)
	if err != nil {
		return nil, err
	}
	if claims.Kind != kind {
		return nil, ErrWrongKind
	}
	return claims, nil
}
