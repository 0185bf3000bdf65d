package auth

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token purposes, carried in the audience claim so a token minted for one
// flow is rejected by the others.
const (
	purposeSession  = "session"
	PurposeActivate = "activate"
	PurposeReset    = "reset"
)

type actionClaims struct {
	// Fingerprint binds a reset token to the password hash it was issued
	// against; changing the password invalidates it.
	Fingerprint string `json:"fp,omitempty"`
	jwt.RegisteredClaims
}

// ActionTokens mints the links sent by email for account activation and
// password reset.
type ActionTokens struct {
	secretKey []byte
	ttl       time.Duration
	now       func() time.Time
}

func NewActionTokens(secretKey string, ttl time.Duration) *ActionTokens {
	return &ActionTokens{
		secretKey: []byte(secretKey),
		ttl:       ttl,
		now:       time.Now,
	}
}

// Issue signs a token for userID. binding is empty for activation and the
// current password hash for reset.
func (a *ActionTokens) Issue(purpose string, userID int64, binding string) (string, error) {
	now := a.now()
	claims := &actionClaims{
		Fingerprint: fingerprint(binding),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			Audience:  jwt.ClaimStrings{purpose},
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secretKey)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", purpose, err)
	}
	return signed, nil
}

// Verify checks signature, expiry, purpose, subject and binding.
func (a *ActionTokens) Verify(purpose string, userID int64, binding, token string) error {
	parsed, err := jwt.ParseWithClaims(token, &actionClaims{},
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return a.secretKey, nil
		},
		jwt.WithAudience(purpose),
		jwt.WithSubject(strconv.FormatInt(userID, 10)),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*actionClaims)
	if !ok || !parsed.Valid || claims.Fingerprint != fingerprint(binding) {
		return ErrInvalidToken
	}
	return nil
}

func fingerprint(binding string) string {
	if binding == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(binding))
	return hex.EncodeToString(sum[:8])
}

// EncodeUID renders a user id for use in an emailed link.
func EncodeUID(userID int64) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.FormatInt(userID, 10)))
}

// DecodeUID reverses EncodeUID.
func DecodeUID(uid string) (int64, error) {
	raw, err := base64.RawURLEncoding.DecodeString(uid)
	if err != nil {
		return 0, fmt.Errorf("%w: bad uid", ErrInvalidToken)
	}
	id, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: bad uid", ErrInvalidToken)
	}
	return id, nil
}
