package controller

import (
	"errors"
	"net/http"

	"github.com/dboika/folio/database/model"
	"github.com/dboika/folio/logger"
	"github.com/dboika/folio/util/metrics"
	"github.com/dboika/folio/web/entity"
	"github.com/dboika/folio/web/service"
	"github.com/dboika/folio/web/session"

	"github.com/gin-gonic/gin"
)

// rememberMeMaxAge keeps a "remember me" session for 30 days.
const rememberMeMaxAge = 30 * 24 * 60 * 60

// AuthController handles sign-up, sign-in and sign-out.
type AuthController struct {
	BaseController

	userService  *service.UserService
	registration bool
	// throttle runs before every credential check; empty when no limiter
	// is configured.
	throttle []gin.HandlerFunc
	// sessionMaxAge is the default cookie lifetime in minutes; 0 ends the
	// session with the browser.
	sessionMaxAge int
}

func NewAuthController(g *gin.RouterGroup, userService *service.UserService, registration bool, sessionMaxAge int, throttle ...gin.HandlerFunc) *AuthController {
	a := &AuthController{
		userService:   userService,
		registration:  registration,
		throttle:      throttle,
		sessionMaxAge: sessionMaxAge,
	}
	a.initRouter(g)
	return a
}

func (a *AuthController) initRouter(g *gin.RouterGroup) {
	g.GET("/login", a.redirectIfLoggedIn, a.loginPage)
	g.POST("/login", a.submit(a.login)...)

	if a.registration {
		g.GET("/register", a.redirectIfLoggedIn, a.registerPage)
		g.POST("/register", a.submit(a.register)...)
	}

	g.GET("/logout", a.checkLogin, a.logout)
}

// submit chains the handlers shared by the credential forms in front of h.
func (a *AuthController) submit(h gin.HandlerFunc) []gin.HandlerFunc {
	chain := []gin.HandlerFunc{a.redirectIfLoggedIn}
	chain = append(chain, a.throttle...)
	return append(chain, a.checkCSRF, h)
}

func (a *AuthController) redirectIfLoggedIn(c *gin.Context) {
	if session.IsLogin(c) {
		c.Redirect(http.StatusFound, "/")
		c.Abort()
		return
	}
	c.Next()
}

func (a *AuthController) loginPage(c *gin.Context) {
	a.renderLogin(c, http.StatusOK, &entity.LoginForm{}, nil, "")
}

func (a *AuthController) renderLogin(c *gin.Context, status int, form *entity.LoginForm, errs map[string]string, msg string) {
	form.Password = ""
	htmlStatus(c, status, "login.html", "pages.login.title", gin.H{
		"form":         form,
		"errors":       errs,
		"message":      msg,
		"registration": a.registration,
	})
}

func (a *AuthController) login(c *gin.Context) {
	form := &entity.LoginForm{}
	if err := c.ShouldBind(form); err != nil {
		a.renderLogin(c, http.StatusBadRequest, form, nil, I18nWeb(c, "validation.invalid", "Field==form"))
		return
	}
	form.Normalize()
	if errs := entity.Validate(form); len(errs) > 0 {
		a.renderLogin(c, http.StatusBadRequest, form, fieldMessages(c, errs), "")
		return
	}

	user, err := a.userService.Verify(form.Email, form.Password)
	switch {
	case errors.Is(err, service.ErrNoSuchEmail):
		metrics.FailedLoginAttempts.WithLabelValues("no_such_email").Inc()
		logger.Warningf("login failed, unknown email: %q, IP: %q", form.Email, getRemoteIp(c))
		a.renderLogin(c, http.StatusUnauthorized, form, nil, I18nWeb(c, "pages.login.noSuchEmail"))
		return
	case errors.Is(err, service.ErrWrongPassword):
		metrics.FailedLoginAttempts.WithLabelValues("wrong_password").Inc()
		logger.Warningf("login failed, wrong password for: %q, IP: %q", form.Email, getRemoteIp(c))
		a.renderLogin(c, http.StatusUnauthorized, form, nil, I18nWeb(c, "pages.login.wrongPassword"))
		return
	case err != nil:
		internalError(c, "verify credentials", err)
		return
	}

	maxAge := a.sessionMaxAge * 60
	if form.RememberMe {
		maxAge = rememberMeMaxAge
	}
	if err := a.establish(c, user, maxAge); err != nil {
		internalError(c, "save session", err)
		return
	}
	logger.Infof("%s logged in successfully, IP: %s", user.Email, getRemoteIp(c))
	c.Redirect(http.StatusFound, "/")
}

func (a *AuthController) registerPage(c *gin.Context) {
	a.renderRegister(c, http.StatusOK, &entity.RegisterForm{}, nil, "")
}

func (a *AuthController) renderRegister(c *gin.Context, status int, form *entity.RegisterForm, errs map[string]string, msg string) {
	form.Password, form.Password2 = "", ""
	htmlStatus(c, status, "register.html", "pages.register.title", gin.H{
		"form":    form,
		"errors":  errs,
		"message": msg,
	})
}

func (a *AuthController) register(c *gin.Context) {
	form := &entity.RegisterForm{}
	if err := c.ShouldBind(form); err != nil {
		a.renderRegister(c, http.StatusBadRequest, form, nil, I18nWeb(c, "validation.invalid", "Field==form"))
		return
	}
	form.Normalize()
	if errs := entity.Validate(form); len(errs) > 0 {
		a.renderRegister(c, http.StatusBadRequest, form, fieldMessages(c, errs), "")
		return
	}

	user, err := a.userService.Register(form.Email, form.Name, form.Password)
	var verr *service.ValidationError
	if errors.Is(err, service.ErrEmailAlreadyRegistered) {
		a.renderRegister(c, http.StatusOK, form, nil, I18nWeb(c, "pages.register.emailTaken"))
		return
	} else if errors.As(err, &verr) {
		a.renderRegister(c, http.StatusBadRequest, form, fieldMessages(c, verr.Fields), "")
		return
	} else if err != nil {
		internalError(c, "register user", err)
		return
	}

	if err := a.establish(c, user, a.sessionMaxAge*60); err != nil {
		internalError(c, "save session", err)
		return
	}
	c.Redirect(http.StatusFound, "/")
}

// establish binds user to the session with the given cookie lifetime.
func (a *AuthController) establish(c *gin.Context, user *model.User, maxAge int) error {
	if err := session.SetMaxAge(c, maxAge); err != nil {
		return err
	}
	return session.SetLoginUser(c, user)
}

func (a *AuthController) logout(c *gin.Context) {
	if user := session.GetLoginUser(c); user != nil {
		logger.Infof("%s logged out successfully", user.Email)
	}
	if err := session.ClearSession(c); err != nil {
		logger.Warning("Unable to save session after clearing:", err)
	}
	c.Redirect(http.StatusFound, "/")
}
