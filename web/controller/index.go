package controller

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/dboika/folio/logger"
	"github.com/dboika/folio/web/service"

	"github.com/gin-gonic/gin"
)

const homeProjects = 3

// IndexController serves the static pages of the site and the resume file.
type IndexController struct {
	BaseController

	projectService *service.ProjectService
	resumePath     string
}

func NewIndexController(g *gin.RouterGroup, projectService *service.ProjectService, resumePath string) *IndexController {
	a := &IndexController{
		projectService: projectService,
		resumePath:     resumePath,
	}
	a.initRouter(g)
	return a
}

func (a *IndexController) initRouter(g *gin.RouterGroup) {
	g.GET("/", a.index)
	g.GET("/index", a.index)
	g.GET("/about", a.page("about.html", "pages.about.title"))
	g.GET("/contact", a.page("contact.html", "pages.contact.title"))
	g.GET("/services", a.page("services.html", "pages.services.title"))
	g.GET("/resume", a.resume)
	g.GET("/download", a.download)
}

// index shows the landing page with the most recent projects.
func (a *IndexController) index(c *gin.Context) {
	projects, err := a.projectService.GetProjects()
	if err != nil {
		internalError(c, "list projects", err)
		return
	}
	if len(projects) > homeProjects {
		projects = projects[len(projects)-homeProjects:]
	}
	html(c, "index.html", "pages.home.title", gin.H{"projects": projects})
}

func (a *IndexController) page(name, title string) gin.HandlerFunc {
	return func(c *gin.Context) {
		html(c, name, title, nil)
	}
}

func (a *IndexController) resume(c *gin.Context) {
	html(c, "resume.html", "pages.resume.title", gin.H{"has_resume": a.hasResume()})
}

// download sends the resume as an attachment.
func (a *IndexController) download(c *gin.Context) {
	if !a.hasResume() {
		logger.Warning("resume file is missing:", a.resumePath)
		errorPage(c, http.StatusNotFound)
		return
	}
	c.FileAttachment(a.resumePath, filepath.Base(a.resumePath))
}

func (a *IndexController) hasResume() bool {
	info, err := os.Stat(a.resumePath)
	return err == nil && !info.IsDir()
}
