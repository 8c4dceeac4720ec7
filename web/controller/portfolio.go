package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dboika/folio/database/model"
	"github.com/dboika/folio/web/entity"
	"github.com/dboika/folio/web/middleware"
	"github.com/dboika/folio/web/service"
	"github.com/dboika/folio/web/session"

	"github.com/gin-gonic/gin"
)

// PortfolioController lists projects publicly and lets the administrator
// create, edit and delete them.
type PortfolioController struct {
	BaseController

	projectService *service.ProjectService
}

func NewPortfolioController(g *gin.RouterGroup, projectService *service.ProjectService, guard *service.AdminGuard) *PortfolioController {
	a := &PortfolioController{projectService: projectService}
	a.initRouter(g, guard)
	return a
}

func (a *PortfolioController) initRouter(g *gin.RouterGroup, guard *service.AdminGuard) {
	g.GET("/portfolio", a.list)
	g.GET("/portfolio-details/:id", a.details)

	admin := g.Group("")
	admin.Use(a.requireAdmin(guard), middleware.AuditMiddleware())
	{
		admin.GET("/new-project", a.newPage)
		admin.POST("/new-project", a.checkCSRF, a.create)
		admin.GET("/edit-post/:id", a.editPage)
		admin.POST("/edit-post/:id", a.checkCSRF, a.update)
		admin.GET("/delete/:id", a.checkCSRF, a.delete)
	}
}

func (a *PortfolioController) list(c *gin.Context) {
	projects, err := a.projectService.GetProjects()
	if err != nil {
		internalError(c, "list projects", err)
		return
	}
	html(c, "portfolio.html", "pages.portfolio.title", gin.H{
		"projects":   projects,
		"categories": model.Categories,
	})
}

func (a *PortfolioController) details(c *gin.Context) {
	project, ok := a.lookup(c)
	if !ok {
		return
	}
	html(c, "portfolio-details.html", "pages.details.title", gin.H{"project": project})
}

func (a *PortfolioController) newPage(c *gin.Context) {
	a.renderForm(c, http.StatusOK, &entity.ProjectForm{}, 0, nil, "")
}

func (a *PortfolioController) create(c *gin.Context) {
	form := &entity.ProjectForm{}
	if err := c.ShouldBind(form); err != nil {
		a.renderForm(c, http.StatusBadRequest, form, 0, nil, I18nWeb(c, "validation.invalid", "Field==form"))
		return
	}
	_, err := a.projectService.AddProject(session.GetLoginUser(c), form)
	if err != nil {
		a.formError(c, form, 0, err)
		return
	}
	c.Redirect(http.StatusFound, "/portfolio")
}

func (a *PortfolioController) editPage(c *gin.Context) {
	project, ok := a.lookup(c)
	if !ok {
		return
	}
	form := entity.ProjectFormFrom(project)
	a.renderForm(c, http.StatusOK, &form, project.Id, nil, "")
}

func (a *PortfolioController) update(c *gin.Context) {
	id, ok := a.parseID(c)
	if !ok {
		return
	}
	form := &entity.ProjectForm{}
	if err := c.ShouldBind(form); err != nil {
		a.renderForm(c, http.StatusBadRequest, form, id, nil, I18nWeb(c, "validation.invalid", "Field==form"))
		return
	}
	project, err := a.projectService.UpdateProject(session.GetLoginUser(c), id, form)
	if err != nil {
		a.formError(c, form, id, err)
		return
	}
	c.Redirect(http.StatusFound, "/portfolio-details/"+strconv.Itoa(project.Id))
}

func (a *PortfolioController) delete(c *gin.Context) {
	id, ok := a.parseID(c)
	if !ok {
		return
	}
	err := a.projectService.DelProject(session.GetLoginUser(c), id)
	switch {
	case errors.Is(err, service.ErrNotFound):
		errorPage(c, http.StatusNotFound)
	case errors.Is(err, service.ErrForbidden):
		errorPage(c, http.StatusForbidden)
	case err != nil:
		internalError(c, "delete project", err)
	default:
		c.Redirect(http.StatusFound, "/portfolio")
	}
}

// formError maps a failed create or update back onto the form page.
func (a *PortfolioController) formError(c *gin.Context, form *entity.ProjectForm, id int, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		a.renderForm(c, http.StatusBadRequest, form, id, fieldMessages(c, verr.Fields), "")
	case errors.Is(err, service.ErrDuplicateName):
		a.renderForm(c, http.StatusConflict, form, id,
			map[string]string{"name": I18nWeb(c, "pages.project.duplicateName")}, "")
	case errors.Is(err, service.ErrNotFound):
		errorPage(c, http.StatusNotFound)
	case errors.Is(err, service.ErrForbidden):
		errorPage(c, http.StatusForbidden)
	default:
		internalError(c, "save project", err)
	}
}

// renderForm shows the project editor. id is zero when creating.
func (a *PortfolioController) renderForm(c *gin.Context, status int, form *entity.ProjectForm, id int, errs map[string]string, msg string) {
	title := "pages.project.newTitle"
	action := "/new-project"
	if id != 0 {
		title = "pages.project.editTitle"
		action = "/edit-post/" + strconv.Itoa(id)
	}
	htmlStatus(c, status, "project-form.html", title, gin.H{
		"form":       form,
		"errors":     errs,
		"message":    msg,
		"is_edit":    id != 0,
		"action":     action,
		"categories": model.Categories,
	})
}

func (a *PortfolioController) parseID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		errorPage(c, http.StatusNotFound)
		return 0, false
	}
	return id, true
}

// lookup loads the project named by the :id parameter or renders 404.
func (a *PortfolioController) lookup(c *gin.Context) (*model.Project, bool) {
	id, ok := a.parseID(c)
	if !ok {
		return nil, false
	}
	project, err := a.projectService.GetProject(id)
	if errors.Is(err, service.ErrNotFound) {
		errorPage(c, http.StatusNotFound)
		return nil, false
	} else if err != nil {
		internalError(c, "get project", err)
		return nil, false
	}
	return project, true
}
