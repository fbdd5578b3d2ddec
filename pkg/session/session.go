// Package session 基于 gorilla/sessions 的 Cookie 会话，承载浏览器登录态的 Token
package session

import (
	"net/http"
	"strings"

	"github.com/gorilla/sessions"

	"coursehub/config"
)

const tokenKey = "token"

// Store 会话存储
type Store struct {
	name  string
	store *sessions.CookieStore
}

// NewStore 创建 Cookie 会话存储，Cookie 有效期与 Token 一致
func NewStore(cfg *config.AuthConfig) *Store {
	cs := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	cs.Options = &sessions.Options{
		Path:     "/",
		Domain:   cfg.Cookie.Domain,
		MaxAge:   int(cfg.SessionTTL.Seconds()),
		Secure:   cfg.Cookie.Secure,
		HttpOnly: true,
		SameSite: sameSite(cfg.Cookie.SameSite),
	}
	return &Store{name: cfg.SessionName, store: cs}
}

// Name 会话 Cookie 名称
func (s *Store) Name() string { return s.name }

// SaveToken 将 Token 写入会话 Cookie
func (s *Store) SaveToken(w http.ResponseWriter, r *http.Request, token string) error {
	sess, _ := s.store.Get(r, s.name) // 旧 Cookie 无法解码时返回新会话
	sess.Values[tokenKey] = token
	return sess.Save(r, w)
}

// Token 读取会话中的 Token，不存在返回空串
func (s *Store) Token(r *http.Request) string {
	sess, err := s.store.Get(r, s.name)
	if err != nil {
		return ""
	}
	token, _ := sess.Values[tokenKey].(string)
	return token
}

// Clear 使会话 Cookie 立即失效
func (s *Store) Clear(w http.ResponseWriter, r *http.Request) error {
	sess, _ := s.store.Get(r, s.name)
	sess.Values = map[interface{}]interface{}{}
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

func sameSite(v string) http.SameSite {
	switch strings.ToLower(v) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
