// Package session binds the authenticated principal to the visitor's
// signed session cookie.
package session

import (
	"crypto/subtle"
	"encoding/gob"
	"net/http"

	"github.com/dboika/folio/database/model"
	"github.com/dboika/folio/util/random"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	loginUser = "LOGIN_USER"
	csrfToken = "CSRF_TOKEN"

	csrfTokenLength = 32
)

func init() {
	gob.Register(model.User{})
}

// SetLoginUser makes user the principal of the current session. Any state
// belonging to a different principal is dropped first. The password hash
// never leaves the database.
func SetLoginUser(c *gin.Context, user *model.User) error {
	s := sessions.Default(c)
	if current := GetLoginUser(c); current != nil && current.Id != user.Id {
		s.Clear()
	}
	s.Set(loginUser, model.User{
		Id:    user.Id,
		Email: user.Email,
		Name:  user.Name,
	})
	// A new login never inherits a form token issued before it.
	s.Set(csrfToken, random.Seq(csrfTokenLength))
	return s.Save()
}

// CSRFToken returns the form token of the current session, issuing one on
// first use.
func CSRFToken(c *gin.Context) (string, error) {
	s := sessions.Default(c)
	if token, ok := s.Get(csrfToken).(string); ok && token != "" {
		return token, nil
	}
	token := random.Seq(csrfTokenLength)
	s.Set(csrfToken, token)
	return token, s.Save()
}

// ValidCSRFToken reports whether token matches the one issued to this
// session. A session without a token accepts nothing.
func ValidCSRFToken(c *gin.Context, token string) bool {
	want, _ := sessions.Default(c).Get(csrfToken).(string)
	if want == "" || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(want), []byte(token)) == 1
}

// SetMaxAge makes the session cookie persistent for maxAge seconds. Zero
// keeps it a browser-session cookie.
func SetMaxAge(c *gin.Context, maxAge int) error {
	s := sessions.Default(c)
	s.Options(sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return s.Save()
}

func GetLoginUser(c *gin.Context) *model.User {
	s := sessions.Default(c)
	if obj := s.Get(loginUser); obj != nil {
		if user, ok := obj.(model.User); ok {
			return &user
		}
	}
	return nil
}

func IsLogin(c *gin.Context) bool {
	return GetLoginUser(c) != nil
}

// ClearSession unbinds the principal and expires the cookie. Calling it on
// an anonymous session is harmless.
func ClearSession(c *gin.Context) error {
	s := sessions.Default(c)
	s.Clear()
	s.Options(sessions.Options{
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return s.Save()
}
