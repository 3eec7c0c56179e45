package http

import (
	"net/http"
	"sync"
	"time"
)

// SessionCookieName is the cookie holding the signed session token.
const SessionCookieName = "session"

// cookieCarrier implements ports.SessionCarrier over one request/response pair.
type cookieCarrier struct {
	mu     sync.Mutex
	w      http.ResponseWriter
	token  string
	secure bool
}

func newCookieCarrier(w http.ResponseWriter, r *http.Request, secure bool) *cookieCarrier {
	c := &cookieCarrier{w: w, secure: secure}
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		c.token = cookie.Value
	}
	return c
}

func (c *cookieCarrier) SessionToken() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token, c.token != ""
}

func (c *cookieCarrier) SetSessionToken(token string, expires time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
	http.SetCookie(c.w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		Secure:   c.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c *cookieCarrier) ClearSessionToken() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
	http.SetCookie(c.w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		Secure:   c.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
