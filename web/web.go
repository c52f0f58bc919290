// Package web provides the HTTP server of the user API, including routing,
// middleware composition and background job scheduling.
package web

import (
	"context"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/mhsanaei/userhub/config"
	"github.com/mhsanaei/userhub/logger"
	"github.com/mhsanaei/userhub/util/common"
	"github.com/mhsanaei/userhub/util/metrics"
	"github.com/mhsanaei/userhub/web/cache"
	"github.com/mhsanaei/userhub/web/controller"
	"github.com/mhsanaei/userhub/web/job"
	"github.com/mhsanaei/userhub/web/middleware"
	"github.com/mhsanaei/userhub/web/service"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
)

const (
	readHeaderTimeout = 10 * time.Second
	readTimeout       = 30 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 2 * time.Minute
	shutdownTimeout   = 10 * time.Second

	rateLimitExpireEvery = 10 * time.Second
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	Development    bool
	CORSOrigins    []string
	// TrustedProxies may set the client address through X-Forwarded-For.
	// Empty means the socket peer is the client.
	TrustedProxies []string
}

// NewRouter builds the gin engine serving the API under /api/v1 plus
// /healthz and /metrics.
func NewRouter(users *service.UserService, opts RouterOptions) *gin.Engine {
	engine := gin.New()
	if err := engine.SetTrustedProxies(opts.TrustedProxies); err != nil {
		logger.Warning("invalid trusted proxies, using socket peer addresses:", err)
		_ = engine.SetTrustedProxies(nil)
	}
	engine.Use(
		middleware.SecurityHeaders(),
		middleware.Metrics(),
		middleware.ErrorHandler(opts.Development),
		middleware.Recovery(),
		middleware.CORS(opts.CORSOrigins, opts.Development),
		gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})),
	)

	controller.NewHealthController(&engine.RouterGroup)
	engine.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := engine.Group("/api/v1")
	controller.NewAuthController(api, users)
	controller.NewUserController(api, users)

	engine.NoRoute(func(c *gin.Context) {
		_ = c.Error(common.NewHTTPError(common.ErrNotFound, "Not Found"))
	})
	return engine
}

// Server is the API server with its scheduled jobs.
type Server struct {
	httpServer *http.Server
	listener   net.Listener

	users *service.UserService

	cron *cron.Cron

	ctx    context.Context
	cancel context.CancelFunc
}

// NewServer creates a new web server instance with a cancellable context.
func NewServer(users *service.UserService) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{users: users, ctx: ctx, cancel: cancel}
}

func (s *Server) initRouter() *gin.Engine {
	if config.IsDebug() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.DefaultWriter = io.Discard
		gin.DefaultErrorWriter = io.Discard
		gin.SetMode(gin.ReleaseMode)
	}
	return NewRouter(s.users, RouterOptions{
		Development:    config.IsDevelopment(),
		CORSOrigins:    config.GetCORSOrigins(),
		TrustedProxies: config.GetTrustedProxies(),
	})
}

func (s *Server) startTask() {
	if _, err := s.cron.AddJob("@every 10m", job.NewCheckpointJob()); err != nil {
		logger.Warning("add checkpoint job err:", err)
	}
	if _, err := s.cron.AddJob("@every 1m", job.NewUserCountJob(s.users)); err != nil {
		logger.Warning("add user count job err:", err)
	}
	if cache.IsEmbedded() {
		spec := "@every " + rateLimitExpireEvery.String()
		if _, err := s.cron.AddJob(spec, job.NewRateLimitExpireJob(rateLimitExpireEvery)); err != nil {
			logger.Warning("add rate limit expire job err:", err)
		}
	}
	go job.NewUserCountJob(s.users).Run()
}

// Start initializes and starts the web server.
func (s *Server) Start() (err error) {
	defer func() {
		if err != nil {
			_ = s.Stop()
		}
	}()

	if err = cache.InitRedis(s.ctx, config.GetRedisAddr()); err != nil {
		return err
	}

	s.cron = cron.New()
	s.cron.Start()

	engine := s.initRouter()

	listenAddr := net.JoinHostPort(config.GetListen(), strconv.Itoa(config.GetPort()))
	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return err
	}
	logger.Info("web server running HTTP on", listener.Addr())

	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           engine,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Error("web server stopped:", err)
		}
	}()

	s.startTask()
	return nil
}

// Stop gracefully shuts down the web server, cron jobs and the redis client.
func (s *Server) Stop() error {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
	var err1, err2 error
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err1 = s.httpServer.Shutdown(ctx)
	} else if s.listener != nil {
		err1 = s.listener.Close()
	}
	err2 = cache.Close()
	s.cancel()
	return common.Combine(err1, err2)
}

// Addr returns the bound listen address, or nil before Start.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}
