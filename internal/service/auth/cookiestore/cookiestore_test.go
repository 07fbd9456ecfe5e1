package cookiestore

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/qrgen/internal/service/auth"
)

// Compile time check the storage fits auth session
var _ auth.Storage = (*Storage)(nil)

func mustNew(t *testing.T, cfg Config) *Codec {
	t.Helper()
	c, err := New(cfg)
	require.NoError(t, err, "codec should be created without errors")
	return c
}

func TestNew(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		c := mustNew(t, Config{SecretKey: "secret"})

		require.Equal(t, "secret", c.key)
		require.Equal(t, "HS256", c.alg.Alg())
		require.Equal(t, 30*24*time.Hour, c.ttl)
		require.False(t, c.secure)
	})

	t.Run("secret required", func(t *testing.T) {
		_, err := New(Config{})
		require.Error(t, err)
	})

	t.Run("unknown alg", func(t *testing.T) {
		_, err := New(Config{SecretKey: "secret", Alg: "ROT13"})
		require.Error(t, err)
	})
}

func TestCodec(t *testing.T) {
	c := mustNew(t, Config{SecretKey: "test-secret-key"})

	t.Run("roundtrip", func(t *testing.T) {
		signed, expiresAt, err := c.Encode("user", `{"username":"alice"}`)
		require.NoError(t, err)
		require.WithinDuration(t, time.Now().Add(30*24*time.Hour), expiresAt, 2*time.Second)

		value, err := c.Decode("user", signed)

		require.NoError(t, err)
		require.Equal(t, `{"username":"alice"}`, value)
	})

	t.Run("other key", func(t *testing.T) {
		signed, _, err := c.Encode("theme", "dark")
		require.NoError(t, err)

		_, err = c.Decode("user", signed)
		require.Error(t, err, "value of one key must not be accepted for another")
	})

	t.Run("other secret", func(t *testing.T) {
		other := mustNew(t, Config{SecretKey: "another-secret"})
		signed, _, err := other.Encode("user", `{"username":"mallory"}`)
		require.NoError(t, err)

		_, err = c.Decode("user", signed)
		require.Error(t, err, "forged value must be rejected")
	})

	t.Run("expired", func(t *testing.T) {
		expiring := mustNew(t, Config{SecretKey: "test-secret-key", TTL: time.Hour})
		signed, _, err := expiring.Encode("user", "v")
		require.NoError(t, err)

		expiring.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err = expiring.Decode("user", signed)
		require.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := c.Decode("user", "not-a-token")
		require.Error(t, err)
	})
}

func TestStorage(t *testing.T) {
	c := mustNew(t, Config{SecretKey: "test-secret-key", Secure: true})

	t.Run("set writes cookie", func(t *testing.T) {
		rec := httptest.NewRecorder()
		s := c.Storage(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		err := s.Set("user", `{"username":"alice"}`)
		require.NoError(t, err)

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "user", cookies[0].Name)
		assert.Equal(t, "/", cookies[0].Path)
		assert.True(t, cookies[0].HttpOnly)
		assert.True(t, cookies[0].Secure)
		assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)

		value, ok := s.Get("user")
		require.True(t, ok, "value set in the request should be visible")
		require.Equal(t, `{"username":"alice"}`, value)
	})

	t.Run("get from request cookie", func(t *testing.T) {
		signed, _, err := c.Encode("user", `{"username":"alice"}`)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "user", Value: signed})

		s := c.Storage(httptest.NewRecorder(), req)

		value, ok := s.Get("user")
		require.True(t, ok)
		require.Equal(t, `{"username":"alice"}`, value)
	})

	t.Run("tampered cookie ignored", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "user", Value: `{"username":"mallory"}`})
		rec := httptest.NewRecorder()

		s := c.Storage(rec, req)

		_, ok := s.Get("user")
		require.False(t, ok)

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1, "unreadable cookie should be cleared")
		require.Equal(t, "user", cookies[0].Name)
		require.Equal(t, -1, cookies[0].MaxAge)

		_, ok = s.Get("user")
		require.False(t, ok)
		require.Len(t, rec.Result().Cookies(), 1, "cookie is cleared once per request")
	})

	t.Run("expired cookie cleared", func(t *testing.T) {
		expiring := mustNew(t, Config{SecretKey: "test-secret-key", TTL: time.Hour})
		expiring.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		signed, _, err := expiring.Encode("user", `{"username":"alice"}`)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "user", Value: signed})
		rec := httptest.NewRecorder()

		_, ok := c.Storage(rec, req).Get("user")

		require.False(t, ok)
		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		require.Equal(t, -1, cookies[0].MaxAge)
	})

	t.Run("remove expires cookie", func(t *testing.T) {
		signed, _, err := c.Encode("user", `{"username":"alice"}`)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "user", Value: signed})
		rec := httptest.NewRecorder()

		s := c.Storage(rec, req)
		s.Remove("user")

		_, ok := s.Get("user")
		require.False(t, ok, "removed value must not be visible even if request carries it")
		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		require.Equal(t, -1, cookies[0].MaxAge)
	})

	t.Run("session over cookies", func(t *testing.T) {
		rec := httptest.NewRecorder()
		session := auth.NewSession(c.Storage(rec, httptest.NewRequest(http.MethodGet, "/", nil)))
		require.NoError(t, session.Init())
		require.NoError(t, session.SignIn(t.Context(), "alice", "password1"))

		// Next request carries cookies from the previous response
		next := httptest.NewRequest(http.MethodGet, "/", nil)
		for _, cookie := range rec.Result().Cookies() {
			next.AddCookie(cookie)
		}
		restored := auth.NewSession(c.Storage(httptest.NewRecorder(), next))
		require.NoError(t, restored.Init())

		u, ok := restored.User()
		require.True(t, ok)
		require.Equal(t, "alice", u.Username)
	})
}
