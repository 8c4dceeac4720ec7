package controller

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/dboika/folio/config"
	"github.com/dboika/folio/logger"
	"github.com/dboika/folio/web/entity"
	"github.com/dboika/folio/web/session"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
)

// getRemoteIp extracts the real IP address from the request headers or remote address.
func getRemoteIp(c *gin.Context) string {
	value := c.GetHeader("X-Real-IP")
	if value != "" {
		return value
	}
	value = c.GetHeader("X-Forwarded-For")
	if value != "" {
		ips := strings.Split(value, ",")
		return strings.TrimSpace(ips[0])
	}
	addr := c.Request.RemoteAddr
	ip, _, _ := net.SplitHostPort(addr)
	return ip
}

func jsonObj(c *gin.Context, obj any, err error) {
	jsonMsgObj(c, "", obj, err)
}

// jsonMsgObj sends the {success,msg,obj} envelope.
func jsonMsgObj(c *gin.Context, msg string, obj any, err error) {
	m := entity.Msg{
		Obj: obj,
	}
	if err == nil {
		m.Success = true
		m.Msg = msg
	} else {
		m.Success = false
		m.Msg = msg + " (" + err.Error() + ")"
		logger.Warning(msg+" "+I18nWeb(c, "fail")+": ", err)
	}
	writeJSON(c, http.StatusOK, m)
}

// pureJsonMsg sends a message-only envelope with a custom status code.
func pureJsonMsg(c *gin.Context, statusCode int, success bool, msg string) {
	writeJSON(c, statusCode, entity.Msg{
		Success: success,
		Msg:     msg,
	})
}

func writeJSON(c *gin.Context, statusCode int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		logger.Error("encode json response:", err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.Data(statusCode, "application/json; charset=utf-8", body)
}

// html renders an HTML template with the provided data and title.
func html(c *gin.Context, name string, title string, data gin.H) {
	htmlStatus(c, http.StatusOK, name, title, data)
}

func htmlStatus(c *gin.Context, status int, name string, title string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["title"] = I18nWeb(c, title)
	data["request_uri"] = c.Request.RequestURI
	data[ctxLoggedIn] = c.GetBool(ctxLoggedIn)
	data[ctxIsAdmin] = c.GetBool(ctxIsAdmin)
	token, err := session.CSRFToken(c)
	if err != nil {
		logger.Warning("unable to issue form token:", err)
	}
	data[csrfField] = token
	c.HTML(status, name, getContext(data))
}

// getContext adds version and other context data to the provided gin.H.
func getContext(h gin.H) gin.H {
	a := gin.H{
		"cur_ver": config.GetVersion(),
		"year":    time.Now().Year(),
	}
	for key, value := range h {
		a[key] = value
	}
	return a
}

var errorPages = map[int]struct{ name, title string }{
	http.StatusForbidden:           {"403.html", "pages.forbidden.title"},
	http.StatusNotFound:            {"404.html", "pages.notFound.title"},
	http.StatusInternalServerError: {"500.html", "pages.error.title"},
}

// errorPage renders the page for status. Unknown codes fall back to 500.
func errorPage(c *gin.Context, status int) {
	page, ok := errorPages[status]
	if !ok {
		status = http.StatusInternalServerError
		page = errorPages[status]
	}
	if isAjax(c) {
		pureJsonMsg(c, status, false, I18nWeb(c, page.title))
		return
	}
	htmlStatus(c, status, page.name, page.title, nil)
}

// NotFound answers unknown routes.
func NotFound(c *gin.Context) {
	errorPage(c, http.StatusNotFound)
}

// Recovered turns a handler panic into the generic error page. Details
// only reach the log.
func Recovered(c *gin.Context, recovered any) {
	logger.Errorf("panic serving %s %s: %v", c.Request.Method, c.Request.URL.Path, recovered)
	errorPage(c, http.StatusInternalServerError)
	c.Abort()
}

// internalError logs err and renders the generic error page.
func internalError(c *gin.Context, msg string, err error) {
	logger.Errorf("%s: %v", msg, err)
	errorPage(c, http.StatusInternalServerError)
}

func isAjax(c *gin.Context) bool {
	return c.GetHeader("X-Requested-With") == "XMLHttpRequest"
}

// fieldMessages renders one message per failing form field, keyed by the
// field's form name.
func fieldMessages(c *gin.Context, errs []entity.FieldError) map[string]string {
	out := make(map[string]string, len(errs))
	for _, fe := range errs {
		if _, seen := out[fe.Field]; seen {
			continue
		}
		label := I18nWeb(c, "fields."+fe.Field)
		out[fe.Field] = I18nWeb(c, "validation."+fe.Tag, "Field=="+label, "Param=="+fe.Param)
	}
	return out
}
