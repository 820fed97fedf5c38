package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// HMAC signs and verifies tokens with a shared secret (HS256/384/512).
type HMAC struct {
	method *jwt.SigningMethodHMAC
	secret []byte
	now    func() time.Time
}

var _ Signer = (*HMAC)(nil)
var _ Verifier = (*HMAC)(nil)

// NewHMAC returns a signer/verifier for alg, which must be one of
// HS256, HS384 or HS512.
func NewHMAC(alg string, secret []byte) (*HMAC, error) {
	if len(secret) == 0 {
		return nil, ErrWeakSecret
	}

	var method *jwt.SigningMethodHMAC
	switch alg {
	case jwt.SigningMethodHS256.Alg():
		method = jwt.SigningMethodHS256
	case jwt.SigningMethodHS384.Alg():
		method = jwt.SigningMethodHS384
	case jwt.SigningMethodHS512.Alg():
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlg, alg)
	}

	return &HMAC{method: method, secret: secret, now: time.Now}, nil
}

// WithClock overrides the time source used for exp checks.
func (h *HMAC) WithClock(now func() time.Time) *HMAC {
	h.now = now
	return h
}

func (h *HMAC) Alg() string { return h.method.Alg() }

// Sign takes your claims and turns them into a signed JWT string.
func (h *HMAC) Sign(claims Claims) (string, error) {
	return jwt.NewWithClaims(h.method, claims).SignedString(h.secret)
}

// Verify checks the signature and the exp claim and returns the claims.
func (h *HMAC) Verify(raw string) (Claims, error) {
	// Time-based claims are checked below against h.now.
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{h.method.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	var claims Claims
	token, err := parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return h.secret, nil
	})
	if err != nil {
		return Claims{}, mapParseError(err)
	}
	if !token.Valid || claims.UserID == "" || claims.ExpiresAt == nil {
		return Claims{}, ErrInvalidClaim
	}
	if err := claims.ValidateExpiry(h.now()); err != nil {
		return Claims{}, err
	}

	return claims, nil
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrNotYetValid
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrInvalidSig
	default:
		return fmt.Errorf("%w: %v", ErrInvalidClaim, err)
	}
}
