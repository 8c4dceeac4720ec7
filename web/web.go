// Package web provides the portfolio web server: HTTP/HTTPS serving,
// routing, templates, sessions and background maintenance jobs.
package web

import (
	"context"
	"crypto/tls"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/dboika/folio/config"
	"github.com/dboika/folio/logger"
	"github.com/dboika/folio/util/common"
	"github.com/dboika/folio/util/markdown"
	"github.com/dboika/folio/util/metrics"
	"github.com/dboika/folio/web/cache"
	"github.com/dboika/folio/web/controller"
	"github.com/dboika/folio/web/job"
	"github.com/dboika/folio/web/locale"
	"github.com/dboika/folio/web/middleware"
	"github.com/dboika/folio/web/service"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

//go:embed assets
var assetsFS embed.FS

//go:embed html/*
var htmlFS embed.FS

var startTime = time.Now()

const sessionName = "folio"

// ErrNoSecretKey is returned when SECRET_KEY is unset; sessions cannot be
// signed without it.
var ErrNoSecretKey = errors.New("SECRET_KEY is not set")

type wrapAssetsFS struct {
	embed.FS
}

func (f *wrapAssetsFS) Open(name string) (fs.File, error) {
	file, err := f.FS.Open("assets/" + name)
	if err != nil {
		return nil, err
	}
	return &wrapAssetsFile{File: file}, nil
}

type wrapAssetsFile struct {
	fs.File
}

func (f *wrapAssetsFile) Stat() (fs.FileInfo, error) {
	info, err := f.File.Stat()
	if err != nil {
		return nil, err
	}
	return &wrapAssetsFileInfo{FileInfo: info}, nil
}

type wrapAssetsFileInfo struct {
	fs.FileInfo
}

func (f *wrapAssetsFileInfo) ModTime() time.Time {
	return startTime
}

// Server is the portfolio web server with its services and scheduled jobs.
type Server struct {
	httpServer *http.Server
	listener   net.Listener

	db          *gorm.DB
	secret      []byte
	guard       *service.AdminGuard
	userService *service.UserService
	projects    *service.ProjectService

	redis *redis.Client
	cron  *cron.Cron

	ctx    context.Context
	cancel context.CancelFunc
}

// NewServer wires the services around db. The caller keeps ownership of db.
func NewServer(db *gorm.DB) (*Server, error) {
	secret := config.GetSecretKey()
	if secret == "" {
		return nil, ErrNoSecretKey
	}
	if err := locale.InitLocalizer(); err != nil {
		return nil, err
	}

	guard := service.NewAdminGuard(config.GetAdminID())
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		db:          db,
		secret:      []byte(secret),
		guard:       guard,
		userService: service.NewUserService(db),
		projects:    service.NewProjectService(db, guard),
		ctx:         ctx,
		cancel:      cancel,
	}, nil
}

// getHtmlFiles lists the templates under web/html for debug mode, where
// they are read from disk on every start.
func (s *Server) getHtmlFiles() ([]string, error) {
	files := make([]string, 0)
	dir, _ := os.Getwd()
	err := fs.WalkDir(os.DirFS(dir), "web/html", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// getHtmlTemplate parses the embedded templates, one directory at a time.
func (s *Server) getHtmlTemplate(funcMap template.FuncMap) (*template.Template, error) {
	t := template.New("").Funcs(funcMap)
	err := fs.WalkDir(htmlFS, "html", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			newT, err := t.ParseFS(htmlFS, path+"/*.html")
			if err != nil {
				// ignore folders without matches
				return nil
			}
			t = newT
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"i18n":       locale.I18n,
		"markdown":   markdown.Render,
		"formatDate": common.FormatDate,
	}
}

// newSessionStore keeps sessions in Redis when FOLIO_REDIS_ADDR is set and
// in an encrypted cookie otherwise.
func (s *Server) newSessionStore() (sessions.Store, error) {
	// The first key signs, the second encrypts.
	hashKey, blockKey := deriveKeys(s.secret)

	var store sessions.Store
	if addr := config.GetRedisAddr(); addr != "" {
		client, err := cache.Dial(s.ctx, addr, config.GetRedisPassword())
		if err != nil {
			return nil, err
		}
		s.redis = client
		store = cache.NewRedisStore(client, hashKey, blockKey)
	} else {
		store = cookie.NewStore(hashKey, blockKey)
	}
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   config.GetSessionMaxAge() * 60,
		HttpOnly: true,
		Secure:   config.GetCertFile() != "" || config.GetKeyFile() != "",
		SameSite: http.SameSiteLaxMode,
	})
	return store, nil
}

// initRouter registers middleware, templates, static assets and
// controllers and returns the configured engine.
func (s *Server) initRouter() (*gin.Engine, error) {
	if config.IsDebug() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.DefaultWriter = io.Discard
		gin.DefaultErrorWriter = io.Discard
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(middleware.RequestLogMiddleware())
	engine.Use(gin.CustomRecovery(controller.Recovered))

	if webDomain := config.GetWebDomain(); webDomain != "" {
		engine.Use(middleware.DomainValidatorMiddleware(webDomain))
	}

	metricsEnabled := config.IsMetricsEnabled()
	if metricsEnabled {
		engine.Use(middleware.MetricsMiddleware())
	}

	engine.Use(gzip.Gzip(
		gzip.DefaultCompression,
		gzip.WithExcludedPaths([]string{"/metrics", "/download"}),
	))

	store, err := s.newSessionStore()
	if err != nil {
		return nil, err
	}
	engine.Use(sessions.Sessions(sessionName, store))

	funcMap := templateFuncs()
	engine.SetFuncMap(funcMap)

	if config.IsDebug() {
		files, err := s.getHtmlFiles()
		if err != nil {
			return nil, err
		}
		engine.LoadHTMLFiles(files...)
		engine.StaticFS("/assets", http.FS(os.DirFS("web/assets")))
	} else {
		tpl, err := s.getHtmlTemplate(funcMap)
		if err != nil {
			return nil, err
		}
		engine.SetHTMLTemplate(tpl)
		engine.StaticFS("/assets", http.FS(&wrapAssetsFS{FS: assetsFS}))
	}

	if metricsEnabled {
		engine.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	engine.Use(middleware.RedirectMiddleware(middleware.LegacyRedirects))
	engine.Use(controller.PrincipalMiddleware(s.guard))

	g := engine.Group("/")
	controller.NewIndexController(g, s.projects, config.GetResumePath())
	controller.NewAuthController(g, s.userService, config.IsRegistrationEnabled(), config.GetSessionMaxAge(), s.loginThrottle()...)
	controller.NewPortfolioController(g, s.projects, s.guard)
	controller.NewAPIController(g, s.projects)

	engine.NoRoute(controller.NotFound)

	return engine, nil
}

// loginThrottle limits credential submissions per client when sessions live
// in Redis; the cookie store has nowhere shared to count.
func (s *Server) loginThrottle() []gin.HandlerFunc {
	limit := config.GetLoginRateLimit()
	if s.redis == nil || limit <= 0 {
		return nil
	}
	return []gin.HandlerFunc{
		middleware.RateLimitMiddleware(s.redis, middleware.DefaultRateLimitConfig(limit)),
	}
}

// loadTLSConfig returns nil when no certificate is configured. A configured
// certificate that cannot be loaded is an error: session cookies are marked
// Secure and would never come back over plain HTTP.
func loadTLSConfig() (*tls.Config, error) {
	certFile, keyFile := config.GetCertFile(), config.GetKeyFile()
	if certFile == "" && keyFile == "" {
		return nil, nil
	}
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("load certificate: %w", err)
	}
	return &tls.Config{Certificates: []tls.Certificate{cert}}, nil
}

// startTask schedules the maintenance jobs.
func (s *Server) startTask() {
	if _, err := s.cron.AddJob("@hourly", job.NewCheckpointJob(s.db)); err != nil {
		logger.Warning("add checkpoint job failed:", err)
	}
	if _, err := s.cron.AddJob("@daily", job.NewClearLogsJob(logger.GetLogPath())); err != nil {
		logger.Warning("add clear logs job failed:", err)
	}
}

// Start initializes and starts the web server.
func (s *Server) Start() (err error) {
	defer func() {
		if err != nil {
			_ = s.Stop()
		}
	}()

	s.cron = cron.New(cron.WithLocation(time.Local))
	s.cron.Start()

	tlsConfig, err := loadTLSConfig()
	if err != nil {
		return err
	}

	engine, err := s.initRouter()
	if err != nil {
		return err
	}

	listenAddr := net.JoinHostPort(config.GetListen(), strconv.Itoa(config.GetPort()))
	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return err
	}

	if tlsConfig != nil {
		listener = tls.NewListener(listener, tlsConfig)
		logger.Info("Web server running HTTPS on", listener.Addr())
	} else {
		logger.Info("Web server running HTTP on", listener.Addr())
	}

	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("web server stopped:", err)
		}
	}()

	s.startTask()
	return nil
}

// Stop gracefully shuts down the web server and the cron scheduler. The
// database stays open; its owner closes it.
func (s *Server) Stop() error {
	s.cancel()
	if s.cron != nil {
		s.cron.Stop()
	}
	var err1, err2, err3 error
	if s.httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err1 = s.httpServer.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		if err := s.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			err2 = err
		}
	}
	if s.redis != nil {
		err3 = s.redis.Close()
	}
	return common.Combine(err1, err2, err3)
}

// GetCtx returns the server's context.
func (s *Server) GetCtx() context.Context { return s.ctx }

// GetCron returns the server's cron scheduler instance.
func (s *Server) GetCron() *cron.Cron { return s.cron }
