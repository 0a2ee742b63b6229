package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrTokenExpired is returned when a token verified fine but its exp
	// claim has passed. Callers use it to decide whether a refresh is
	// worth attempting, so it must stay distinct from ErrTokenInvalid.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid covers malformed tokens and bad signatures alike;
	// the two are deliberately indistinguishable to callers.
	ErrTokenInvalid = errors.New("invalid token")
)

// Principal is the identity carried by a verified bearer token.
type Principal struct {
	UserID string
	Email  string
}

// Issuer signs and verifies bearer and refresh JWTs. Bearer and refresh
// tokens use separate signing secrets so one can never stand in for the
// other.
type Issuer struct {
	bearerSecret  []byte
	refreshSecret []byte
}

// NewIssuer builds an Issuer. Both secrets must be set.
func NewIssuer(bearerSecret, refreshSecret string) (*Issuer, error) {
	if bearerSecret == "" || refreshSecret == "" {
		return nil, fmt.Errorf("token signing secrets are not configured")
	}
	return &Issuer{
		bearerSecret:  []byte(bearerSecret),
		refreshSecret: []byte(refreshSecret),
	}, nil
}

// IssueBearer creates a signed bearer JWT for the user
func (i *Issuer) IssueBearer(userID, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}
	jt := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return jt.SignedString(i.bearerSecret)
}

// IssueRefresh creates a signed refresh JWT. The jti claim makes every
// token unique even when two are minted for the same user in the same
// second; rotation in the store depends on old and new values differing.
// The caller must persist the token in the refresh store; the signature
// alone does not make it usable.
func (i *Issuer) IssueRefresh(userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": userID,
		"jti": uuid.NewString(),
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	jt := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return jt.SignedString(i.refreshSecret)
}

// VerifyBearer validates a bearer token and returns its principal.
// Returns ErrTokenExpired for expired-but-otherwise-valid tokens and
// ErrTokenInvalid for everything else.
func (i *Issuer) VerifyBearer(token string) (*Principal, error) {
	claims, err := verify(token, i.bearerSecret)
	if err != nil {
		return nil, err
	}
	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	if sub == "" {
		return nil, ErrTokenInvalid
	}
	return &Principal{UserID: sub, Email: email}, nil
}

// VerifyRefresh validates a refresh token's signature and expiry and
// returns the subject. Store lookup still decides whether the token is
// currently usable.
func (i *Issuer) VerifyRefresh(token string) (string, error) {
	claims, err := verify(token, i.refreshSecret)
	if err != nil {
		return "", err
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", ErrTokenInvalid
	}
	return sub, nil
}

func verify(token string, secret []byte) (jwt.MapClaims, error) {
	parsed, err := jwt.Parse(token,
		func(t *jwt.Token) (interface{}, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
