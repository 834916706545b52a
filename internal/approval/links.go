package approval

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	id "ipguard/pkg/domain"
	dErrors "ipguard/pkg/domain-errors"
)

const linkIssuer = "ipguard"

// LinkPath is the route prefix signed approval links point at.
const LinkPath = "/approvals/link/"

type linkClaims struct {
	Address string `json:"addr"`
	jwt.RegisteredClaims
}

// LinkSigner renders approval tokens as HS256-signed URLs so an operator
// can approve from a chat button without other credentials.
type LinkSigner struct {
	key     []byte
	baseURL string
	now     func() time.Time
}

type LinkOption func(*LinkSigner)

func WithLinkClock(now func() time.Time) LinkOption {
	return func(s *LinkSigner) {
		if now != nil {
			s.now = now
		}
	}
}

func NewLinkSigner(key, baseURL string, opts ...LinkOption) (*LinkSigner, error) {
	if key == "" {
		return nil, errors.New("signing key is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, errors.New("public url must be absolute")
	}
	s := &LinkSigner{
		key:     []byte(key),
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Sign returns the compact JWT for p. The link expires with the token.
func (s *LinkSigner) Sign(p PendingApproval) (string, error) {
	claims := linkClaims{
		Address: p.Address,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       p.Token.String(),
			Subject:  p.Principal.String(),
			Issuer:   linkIssuer,
			IssuedAt: jwt.NewNumericDate(s.now()),
		},
	}
	if !p.ExpiresAt.IsZero() {
		claims.ExpiresAt = jwt.NewNumericDate(p.ExpiresAt)
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
}

// URL returns the absolute approval link for p.
func (s *LinkSigner) URL(p PendingApproval) (string, error) {
	signed, err := s.Sign(p)
	if err != nil {
		return "", err
	}
	return s.baseURL + LinkPath + signed, nil
}

// Verify checks the signature and expiry of a link and returns its token.
func (s *LinkSigner) Verify(signed string) (id.ApprovalToken, error) {
	if signed == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "empty approval link")
	}
	claims := new(linkClaims)
	_, err := jwt.ParseWithClaims(signed, claims,
		func(*jwt.Token) (any, error) { return s.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(linkIssuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", dErrors.New(dErrors.CodeInvalidInput, "approval link expired")
		}
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid approval link")
	}
	return id.ParseApprovalToken(claims.ID)
}
