package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	calldetaildomain "github.com/railzwaylabs/mediation/internal/calldetail/domain"
	"github.com/railzwaylabs/mediation/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Server struct {
	engine   *gin.Engine
	log      *zap.Logger
	creator  calldetaildomain.Creator
	store    calldetaildomain.Repository
	registry *prometheus.Registry
}

type ServerParam struct {
	fx.In

	Log      *zap.Logger
	Config   config.Config
	Creator  calldetaildomain.Creator
	Store    calldetaildomain.Repository
	Registry *prometheus.Registry
}

func NewServer(p ServerParam) *Server {
	if p.Config.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	s := &Server{
		engine:   engine,
		log:      p.Log.Named("http"),
		creator:  p.Creator,
		store:    p.Store,
		registry: p.Registry,
	}
	engine.Use(gin.Recovery(), s.requestLogger())
	s.RegisterRoutes()
	return s
}

// Handler exposes the engine, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) RegisterRoutes() {
	s.engine.GET("/healthz", s.Health)
	s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	v1 := s.engine.Group("/v1")
	v1.POST("/call-details", s.CreateCallDetail)
	v1.POST("/call-details/batch", s.CreateCallDetails)
	v1.GET("/call-details/:call_id", s.GetCallDetail)
	v1.GET("/accounts/:ban/call-details/count", s.CountAccountCallDetails)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// RunHTTP serves the engine for the lifetime of the application.
func RunHTTP(lc fx.Lifecycle, s *Server, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			log.Info("http server listening", zap.String("addr", ln.Addr().String()))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

var Module = fx.Module("http.server",
	fx.Provide(NewServer),
	fx.Invoke(RunHTTP),
)
