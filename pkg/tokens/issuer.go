package tokens

import "time"

type Token struct {
	Value     string
	ExpiresAt time.Time
	Claims    *Claims
}

type Pair struct {
	Access  Token
	Refresh Token
}

type Issuer struct {
	Codec *Codec
}

func NewIssuer(codec *Codec) *Issuer {
	return &Issuer{Codec: codec}
}

func (i *Issuer) issue(id Identity, kind Kind) (Token, error) {
	value, claims, err := i.Codec.Encode(id, kind)
	if err != nil {
		return Token{}, err
	}
	return Token{Value: value, ExpiresAt: claims.ExpiresAtTime(), Claims: claims}, nil
}

func (i *Issuer) IssueAccessToken(id Identity) (Token, error) {
	return i.issue(id, KindAccess)
}

func (i *Issuer) IssueRefreshToken(id Identity) (Token, error) {
	return i.issue(id, KindRefresh)
}

func (i *Issuer) IssuePair(id Identity) (Pair, error) {
	access, err := i.IssueAccessToken(id)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := i.IssueRefreshToken(id)
	if err != nil {
		return Pair{}, err
	}
	return Pair{Access: access, Refresh: refresh}, nil
}
