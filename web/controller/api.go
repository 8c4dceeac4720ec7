package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dboika/folio/web/service"

	"github.com/gin-gonic/gin"
)

// APIController exposes a read-only JSON view of the project catalog.
type APIController struct {
	BaseController

	projectService *service.ProjectService
}

func NewAPIController(g *gin.RouterGroup, projectService *service.ProjectService) *APIController {
	a := &APIController{projectService: projectService}
	a.initRouter(g)
	return a
}

func (a *APIController) initRouter(g *gin.RouterGroup) {
	api := g.Group("/api")
	api.GET("/projects", a.getProjects)
	api.GET("/projects/:id", a.getProject)
}

func (a *APIController) getProjects(c *gin.Context) {
	projects, err := a.projectService.GetProjects()
	jsonObj(c, projects, err)
}

func (a *APIController) getProject(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		pureJsonMsg(c, http.StatusBadRequest, false, I18nWeb(c, "validation.invalid", "Field==id"))
		return
	}
	project, err := a.projectService.GetProject(id)
	if errors.Is(err, service.ErrNotFound) {
		pureJsonMsg(c, http.StatusNotFound, false, I18nWeb(c, "pages.notFound.message"))
		return
	}
	jsonObj(c, project, err)
}
