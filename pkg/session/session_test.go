package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursehub/config"
)

func newTestStore() *Store {
	return NewStore(&config.AuthConfig{
		SessionSecret: "0123456789abcdef0123456789abcdef",
		SessionName:   "coursehub_session",
		SessionTTL:    time.Hour,
		Cookie:        config.CookieConfig{SameSite: "Strict"},
	})
}

func TestStore_SaveAndReadToken(t *testing.T) {
	s := newTestStore()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/login/", nil)
	require.NoError(t, s.SaveToken(w, r, "token-abc"))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "coursehub_session", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, cookies[0].SameSite)

	next := httptest.NewRequest(http.MethodGet, "/profile/", nil)
	next.AddCookie(cookies[0])
	assert.Equal(t, "token-abc", s.Token(next))
}

func TestStore_TokenWithoutCookie(t *testing.T) {
	s := newTestStore()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, s.Token(r))
}

func TestStore_TokenWithForeignCookie(t *testing.T) {
	s := newTestStore()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "coursehub_session", Value: "tampered"})
	assert.Empty(t, s.Token(r))
}

func TestStore_Clear(t *testing.T) {
	s := newTestStore()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/logout/", nil)
	require.NoError(t, s.Clear(w, r))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].MaxAge < 0)
}
