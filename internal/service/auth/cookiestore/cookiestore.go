// Package cookiestore implements auth.Storage over HTTP cookies.
// Every key is kept in its own cookie; the value is wrapped in a signed JWT, so clients can read it but can't alter it.
package cookiestore

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	defaultTTL           = 30 * 24 * time.Hour
	defaultSigningMethod = "HS256"
	defaultPath          = "/"
)

type ValueClaims struct {
	jwt.RegisteredClaims
	Key   string `json:"k"`
	Value string `json:"v"`
}

// Codec with sensible defaults
type Config struct {
	// Secret key to sign values
	// Required to be set
	SecretKey string

	// JWT MAC (Message Authentication Code) algorithm
	// If not set than default is used
	Alg string

	// Cookie lifetime
	// If not set than default is used
	TTL time.Duration

	// Send cookies over https only
	Secure bool
}

// Codec signs values and builds request bound storages
type Codec struct {
	key    string
	alg    jwt.SigningMethod
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

func New(cfg Config) (*Codec, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("secret key must not be empty")
	}

	if cfg.Alg == "" {
		cfg.Alg = defaultSigningMethod
	}
	alg := jwt.GetSigningMethod(cfg.Alg)
	if alg == nil {
		return nil, fmt.Errorf("unknown signing method '%s'", cfg.Alg)
	}

	if cfg.TTL == 0 {
		cfg.TTL = defaultTTL
	}

	return &Codec{
		key:    cfg.SecretKey,
		alg:    alg,
		ttl:    cfg.TTL,
		secure: cfg.Secure,
		now:    time.Now,
	}, nil
}

// Encode signs value stored under the key
func (c *Codec) Encode(key string, value string) (string, time.Time, error) {
	now := c.now().Truncate(time.Second)
	expiresAt := now.Add(c.ttl)

	token := jwt.NewWithClaims(
		c.alg,
		ValueClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        uuid.NewString(),
				Subject:   key,
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(expiresAt),
			},
			Key:   key,
			Value: value,
		},
	)

	signed, err := token.SignedString([]byte(c.key))
	if err != nil {
		return "", expiresAt, fmt.Errorf("error while signing value. Err: %w", err)
	}

	return signed, expiresAt, nil
}

// Decode verifies signed value and checks it was stored under the key
func (c *Codec) Decode(key string, signed string) (string, error) {
	claims := &ValueClaims{}

	_, err := jwt.ParseWithClaims(
		signed,
		claims,
		func(t *jwt.Token) (any, error) {
			return []byte(c.key), nil
		},
		jwt.WithValidMethods([]string{c.alg.Alg()}),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return "", fmt.Errorf("error while parsing or validating value. Err: %w", err)
	}

	if claims.Key != key {
		return "", fmt.Errorf("value issued for key '%s', not '%s'", claims.Key, key)
	}

	return claims.Value, nil
}

// Storage bound to one request/response pair
func (c *Codec) Storage(w http.ResponseWriter, r *http.Request) *Storage {
	return &Storage{
		codec:   c,
		w:       w,
		r:       r,
		pending: make(map[string]*string),
	}
}

// Storage implements auth.Storage
// Values set during the request are visible to later Get calls of the same request
type Storage struct {
	codec *Codec
	w     http.ResponseWriter
	r     *http.Request

	// nil value means the key was removed
	pending map[string]*string
}

func (s *Storage) Get(key string) (string, bool) {
	if v, ok := s.pending[key]; ok {
		if v == nil {
			return "", false
		}
		return *v, true
	}

	cookie, err := s.r.Cookie(key)
	if err != nil {
		return "", false
	}

	// Forged or expired value is dropped so the client stops sending it
	value, err := s.codec.Decode(key, cookie.Value)
	if err != nil {
		s.Remove(key)
		return "", false
	}

	return value, true
}

func (s *Storage) Set(key string, value string) error {
	signed, expiresAt, err := s.codec.Encode(key, value)
	if err != nil {
		return err
	}

	http.SetCookie(s.w, &http.Cookie{
		Name:     key,
		Value:    signed,
		Path:     defaultPath,
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   s.codec.secure,
		SameSite: http.SameSiteLaxMode,
	})
	s.pending[key] = &value

	return nil
}

func (s *Storage) Remove(key string) {
	http.SetCookie(s.w, &http.Cookie{
		Name:     key,
		Value:    "",
		Path:     defaultPath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.codec.secure,
		SameSite: http.SameSiteLaxMode,
	})
	s.pending[key] = nil
}
