// Package controller holds the HTTP handlers of the portfolio site: public
// pages, authentication, the admin-only project editor and a read-only API.
package controller

import (
	"net/http"

	"github.com/dboika/folio/logger"
	"github.com/dboika/folio/util/metrics"
	"github.com/dboika/folio/web/locale"
	"github.com/dboika/folio/web/service"
	"github.com/dboika/folio/web/session"

	"github.com/gin-gonic/gin"
)

const (
	ctxLoggedIn = "logged_in"
	ctxIsAdmin  = "is_admin"

	csrfField  = "csrf_token"
	csrfHeader = "X-CSRF-Token"
)

// BaseController provides common functionality for all controllers, including authentication checks.
type BaseController struct{}

// checkLogin sends anonymous visitors to the login page.
func (a *BaseController) checkLogin(c *gin.Context) {
	if !session.IsLogin(c) {
		if isAjax(c) {
			pureJsonMsg(c, http.StatusUnauthorized, false, I18nWeb(c, "pages.login.loginAgain"))
		} else {
			c.Redirect(http.StatusTemporaryRedirect, "/login")
		}
		c.Abort()
	} else {
		c.Next()
	}
}

// checkCSRF rejects the request unless it echoes the session's form token
// in the form body, the X-CSRF-Token header or, for links, the query.
func (a *BaseController) checkCSRF(c *gin.Context) {
	token := c.PostForm(csrfField)
	if token == "" {
		token = c.GetHeader(csrfHeader)
	}
	if token == "" {
		token = c.Query(csrfField)
	}
	if !session.ValidCSRFToken(c, token) {
		metrics.CSRFRejections.Inc()
		logger.Warningf("missing or stale form token on %s %s, IP: %s", c.Request.Method, c.Request.URL.Path, getRemoteIp(c))
		errorPage(c, http.StatusForbidden)
		c.Abort()
		return
	}
	c.Next()
}

// requireAdmin lets only the administrator through and answers everyone
// else, anonymous visitors included, with the 403 page.
func (a *BaseController) requireAdmin(guard *service.AdminGuard) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := session.GetLoginUser(c)
		if err := guard.RequireAdmin(user); err != nil {
			metrics.ForbiddenRequests.Inc()
			if user != nil {
				logger.Warningf("user %d denied %s %s, IP: %s", user.Id, c.Request.Method, c.Request.URL.Path, getRemoteIp(c))
			}
			errorPage(c, http.StatusForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// PrincipalMiddleware exposes the session state to every template.
func PrincipalMiddleware(guard *service.AdminGuard) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := session.GetLoginUser(c)
		c.Set(ctxLoggedIn, user != nil)
		c.Set(ctxIsAdmin, guard.IsAdmin(user))
		c.Next()
	}
}

// I18nWeb retrieves an internationalized message for the web interface.
func I18nWeb(c *gin.Context, name string, params ...string) string {
	return locale.I18n(name, params...)
}
