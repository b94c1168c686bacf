package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"wifilayer/internal/config"
	"wifilayer/internal/firewall"
	"wifilayer/internal/metrics"
	"wifilayer/internal/model"
	"wifilayer/internal/session"
	"wifilayer/internal/wireguard"
)

// Server exposes a session over HTTP.
type Server struct {
	cfg      config.APIConfig
	sess     *session.Session
	metrics  *metrics.Metrics
	defaults model.TunnelRequest
	logger   logrus.FieldLogger
	router   *gin.Engine
}

// NewServer builds the router. defaults seeds every tunnel request before the
// JSON body is applied.
func NewServer(cfg config.APIConfig, sess *session.Session, m *metrics.Metrics, defaults model.TunnelRequest, logger logrus.FieldLogger) *Server {
	if logger == nil {
		logger = logrus.New()
	}
	s := &Server{
		cfg:      cfg,
		sess:     sess,
		metrics:  m,
		defaults: defaults,
		logger:   logger,
	}

	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())
	s.router = router
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if s.metrics != nil {
		s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{})))
	}

	api := s.router.Group("/api")
	api.GET("/status", s.handleStatus)
	api.GET("/logs", s.handleLogs)

	limited := api.Group("", rateLimit(s.cfg.RateLimitRPS, s.cfg.RateLimitBurst))
	limited.POST("/refresh", s.handleRefresh)
	limited.POST("/wireguard", s.handleWireGuard)
	limited.POST("/secure", s.handleSecure)
	limited.POST("/firewall", s.handleFirewall)
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe runs the HTTP server until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Infof("api listening on %s", s.cfg.Listen)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.sess.Status())
}

func (s *Server) handleRefresh(c *gin.Context) {
	c.JSON(http.StatusOK, s.sess.Refresh(c.Request.Context()))
}

func (s *Server) handleWireGuard(c *gin.Context) {
	req := s.defaults
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	doc, err := s.sess.GenerateTunnel(req)
	if err != nil {
		if errors.Is(err, wireguard.ErrMissingField) {
			writeError(c, http.StatusBadRequest, err.Error())
			return
		}
		writeError(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, TunnelResponse{
		Content:        doc.Content,
		FileName:       wireguard.FileName(doc.Request.ClientName),
		PlaceholderKey: wireguard.UsesPlaceholderKey(doc),
		Request:        doc.Request,
	})
}

func (s *Server) handleSecure(c *gin.Context) {
	notices := s.sess.SecureNetwork()
	resp := LogsResponse{Notices: notices}
	if len(notices) > 0 {
		resp.LastID = notices[len(notices)-1].ID
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleFirewall(c *gin.Context) {
	var req FirewallRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
	}
	platform := firewall.Current()
	if req.Platform != "" {
		platform = firewall.ParsePlatform(req.Platform)
	}

	strategy := s.sess.ApplyFirewall(platform)
	resp := FirewallResponse{Platform: strategy.Platform().String(), Automatic: strategy.Automatic()}
	for _, step := range strategy.Plan() {
		resp.Steps = append(resp.Steps, FirewallStep{Severity: step.Severity, Message: step.Message, Command: step.Command})
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleLogs(c *gin.Context) {
	var since uint64
	if v := c.Query("since"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			writeError(c, http.StatusBadRequest, "since must be a non-negative integer")
			return
		}
		since = n
	}
	c.JSON(http.StatusOK, s.logsSince(since))
}

func (s *Server) logsSince(id uint64) LogsResponse {
	notices := s.sess.Log().Since(id)
	if notices == nil {
		notices = []model.LogNotice{}
	}
	last := id
	if len(notices) > 0 {
		last = notices[len(notices)-1].ID
	}
	return LogsResponse{Notices: notices, LastID: last}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		}).Debug("api request")
	}
}

func rateLimit(rps float64, burst int) gin.HandlerFunc {
	if rps <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if burst <= 0 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(rps), burst)
	return func(c *gin.Context) {
		if !limiter.Allow() {
			writeError(c, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		c.Next()
	}
}

func writeError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: msg})
}
