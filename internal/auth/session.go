package auth

import (
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

const (
	// UserCookie and AdminCookie are kept apart so an admin console and a
	// user app in the same browser do not overwrite each other's login.
	UserCookie  = "connect.sid"
	AdminCookie = "admin.sid"

	sessionUser = "user"
)

// NewStore builds the signed cookie store backing both session cookies.
func NewStore(secret string, ttl time.Duration, production bool) sessions.Store {
	store := cookie.NewStore([]byte(secret))
	opts := sessions.Options{
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if production {
		opts.Secure = true
		opts.SameSite = http.SameSiteNoneMode
	}
	store.Options(opts)
	return store
}

// Sessions mounts the named session cookie.
func Sessions(name string, store sessions.Store) gin.HandlerFunc {
	return sessions.Sessions(name, store)
}

// SetLoginUser stores id in the current session.
func SetLoginUser(c *gin.Context, id Identity) error {
	s := sessions.Default(c)
	s.Set(sessionUser, id)
	return s.Save()
}

// GetLoginUser returns the identity held by the current session, if any.
func GetLoginUser(c *gin.Context) *Identity {
	if _, ok := c.Get(sessions.DefaultKey); !ok {
		return nil
	}
	s := sessions.Default(c)
	if obj := s.Get(sessionUser); obj != nil {
		if id, ok := obj.(Identity); ok {
			return &id
		}
	}
	return nil
}

// ClearSession drops the login and expires the cookie.
func ClearSession(c *gin.Context) error {
	if _, ok := c.Get(sessions.DefaultKey); !ok {
		return nil
	}
	s := sessions.Default(c)
	s.Clear()
	s.Options(sessions.Options{Path: "/", MaxAge: -1})
	return s.Save()
}
