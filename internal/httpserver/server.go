package httpserver

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/heyojules/invite/internal/fragment"
	"github.com/heyojules/invite/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Store is the record contract required by the HTTP API.
type Store interface {
	model.RSVPWriter
	model.RSVPReader
	model.GuestbookStore
	model.PhotoStore
}

// Authorizer checks the admin password sent in AdminHeader.
type Authorizer interface {
	Check(password string) error
}

// AdminHeader carries the dashboard password on admin routes.
const AdminHeader = "X-Admin-Password"

// Options tune optional server behavior.
type Options struct {
	// WebDir, when set, is served for any path no API route claims.
	WebDir string
	// MaxUploadBytes bounds a photo upload request body.
	MaxUploadBytes int64
	Logger         *zap.Logger
}

// Server serves page fragments and the guest-facing APIs.
type Server struct {
	addr      string
	store     Store
	catalog   *fragment.Catalog
	auth      Authorizer
	opts      Options
	logger    *zap.Logger
	server    *http.Server
	ctx       context.Context
	cancel    context.CancelFunc
	startTime time.Time
}

// NewServer creates a new HTTP API server.
func NewServer(addr string, store Store, catalog *fragment.Catalog, auth Authorizer, opts Options) *Server {
	if addr == "" {
		addr = "0.0.0.0:3000"
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = model.MaxPhotoUploadBytes
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		addr:      addr,
		store:     store,
		catalog:   catalog,
		auth:      auth,
		opts:      opts,
		logger:    logger.Named("http"),
		ctx:       ctx,
		cancel:    cancel,
		startTime: time.Now(),
	}
}

// Handler builds the router. Start serves it; tests drive it directly.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), s.accessLog())

	r.GET("/api/health", s.handleHealth)
	r.GET("/api/manifest", s.handleManifest)
	r.GET("/pages/:file", s.handlePage)

	r.POST("/api/rsvps", s.handleCreateRSVP)
	r.GET("/api/rsvps", s.requireAdmin, s.handleListRSVPs)

	r.GET("/api/guestbook", s.handleListGuestbook)
	r.POST("/api/guestbook", s.handleCreateGuestbookEntry)
	r.DELETE("/api/guestbook/:id", s.requireAdmin, s.handleDeleteGuestbookEntry)

	r.GET("/api/photos", s.handleListPhotos)
	r.POST("/api/photos", s.handleUploadPhoto)
	r.GET("/api/photos/:id/image", s.handlePhotoImage)
	r.DELETE("/api/photos/:id", s.requireAdmin, s.handleDeletePhoto)

	if s.opts.WebDir != "" {
		files := http.FileServer(http.Dir(s.opts.WebDir))
		r.NoRoute(func(c *gin.Context) {
			if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
				c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
				return
			}
			files.ServeHTTP(c.Writer, c.Request)
		})
	}
	return r
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	gin.SetMode(gin.ReleaseMode)

	s.server = &http.Server{
		Handler:           s.Handler(),
		BaseContext:       func(_ net.Listener) context.Context { return s.ctx },
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}

	s.startTime = time.Now()
	s.logger.Info("listening", zap.String("addr", listener.Addr().String()))

	go s.server.Serve(listener)
	return nil
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop() error {
	s.cancel()
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

func (s *Server) requireAdmin(c *gin.Context) {
	if s.auth == nil || s.auth.Check(c.GetHeader(AdminHeader)) != nil {
		s.logger.Warn("admin password rejected", zap.String("path", c.Request.URL.Path))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.Next()
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": time.Since(s.startTime).String(),
	})
}
