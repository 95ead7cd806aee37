package wizard

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidState = errors.New("wizard: invalid state token")

const defaultStateTTL = time.Hour

type stateClaims struct {
	State State `json:"state"`
	jwt.RegisteredClaims
}

// Codec signs wizard states so clients can hold them without being able to
// forge criteria or results.
type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewCodec(secret []byte, ttl time.Duration) *Codec {
	if ttl <= 0 {
		ttl = defaultStateTTL
	}
	return &Codec{secret: secret, ttl: ttl, now: time.Now}
}

func (c *Codec) WithClock(now func() time.Time) *Codec {
	c.now = now
	return c
}

func (c *Codec) Encode(st State) (string, error) {
	issued := c.now()
	claims := stateClaims{
		State: st,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "smart-match-wizard",
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(c.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("wizard: sign state: %w", err)
	}
	return signed, nil
}

func (c *Codec) Decode(token string) (State, error) {
	claims := &stateClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return State{}, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	return claims.State, nil
}
