package server

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"modul_ajar_generator/app"
	"modul_ajar_generator/logger"
)

//go:embed web/templates/*.html
var templateFS embed.FS

const (
	DefaultSessionTTL  = 2 * time.Hour
	DefaultMaxSessions = 1000
)

// Options wires the server to the rest of the application.
type Options struct {
	Generator       app.Generator
	Exporter        app.Exporter
	Recorder        app.Recorder
	Gatherer        prometheus.Gatherer
	Logger          *logger.Logger
	GenerateTimeout time.Duration
	ExportTimeout   time.Duration

	// SessionTTL drops sessions idle for longer; MaxSessions caps how many
	// are held in memory.
	SessionTTL  time.Duration
	MaxSessions int
}

type Server struct {
	opts  Options
	log   *logger.Logger
	store *sessionStore
	tmpl  *template.Template
}

// sessionStore maps a browser session to its controller. Sessions idle for
// longer than ttl are dropped, and at most limit are kept; when full the least
// recently used one is evicted.
type sessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	limit    int
	now      func() time.Time
	sessions map[string]*session
}

type session struct {
	ctrl     *app.Controller
	lastSeen time.Time
}

func newStore(ttl time.Duration, limit int) *sessionStore {
	return &sessionStore{ttl: ttl, limit: limit, now: time.Now, sessions: make(map[string]*session)}
}

func (s *sessionStore) set(id string, c *app.Controller) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.pruneLocked(now)
	for len(s.sessions) >= s.limit {
		s.evictOldestLocked()
	}
	s.sessions[id] = &session{ctrl: c, lastSeen: now}
}

func (s *sessionStore) get(id string) (*app.Controller, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	if now.Sub(sess.lastSeen) > s.ttl {
		delete(s.sessions, id)
		return nil, false
	}
	sess.lastSeen = now
	return sess.ctrl, true
}

func (s *sessionStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *sessionStore) pruneLocked(now time.Time) {
	for id, sess := range s.sessions {
		if now.Sub(sess.lastSeen) > s.ttl {
			delete(s.sessions, id)
		}
	}
}

func (s *sessionStore) evictOldestLocked() {
	var oldest string
	var at time.Time
	for id, sess := range s.sessions {
		if oldest == "" || sess.lastSeen.Before(at) {
			oldest, at = id, sess.lastSeen
		}
	}
	delete(s.sessions, oldest)
}

func New(opts Options) (*Server, error) {
	if opts.Generator == nil {
		return nil, errors.New("generator required")
	}
	if opts.Exporter == nil {
		return nil, errors.New("exporter required")
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.GenerateTimeout <= 0 {
		opts.GenerateTimeout = 60 * time.Second
	}
	if opts.ExportTimeout <= 0 {
		opts.ExportTimeout = 60 * time.Second
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = DefaultSessionTTL
	}
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = DefaultMaxSessions
	}
	tmpl, err := template.ParseFS(templateFS, "web/templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Server{
		opts:  opts,
		log:   opts.Logger,
		store: newStore(opts.SessionTTL, opts.MaxSessions),
		tmpl:  tmpl,
	}, nil
}

func (s *Server) Routes() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), s.logMiddleware())
	r.SetHTMLTemplate(s.tmpl)

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	if s.opts.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{})))
	}

	// Browser pages
	r.GET("/", s.handleIndex)
	r.POST("/plans", s.handlePageSubmit)
	r.GET("/plans/:id", s.handlePage)
	r.GET("/plans/:id/pdf", s.handlePageExport("pdf"))
	r.GET("/plans/:id/txt", s.handlePageExport("txt"))
	r.GET("/plans/:id/print", s.handlePrint)

	// JSON API
	api := r.Group("/api")
	{
		api.POST("/plans", s.handleAPISubmit)
		api.GET("/plans/:id", s.handleAPIGet)
		api.GET("/plans/:id/export/:format", s.handleAPIExport)
	}
	return r
}

// controllerFor returns the controller for id, creating a fresh session when
// id is empty or unknown.
func (s *Server) controllerFor(id string) (string, *app.Controller, error) {
	if id != "" {
		if c, ok := s.store.get(id); ok {
			return id, c, nil
		}
	}
	id = uuid.NewString()
	opts := []app.Option{app.WithLogger(s.log.With("session", id))}
	if s.opts.Recorder != nil {
		opts = append(opts, app.WithRecorder(s.opts.Recorder))
	}
	c, err := app.NewController(s.opts.Generator, s.opts.Exporter, opts...)
	if err != nil {
		return "", nil, err
	}
	s.store.set(id, c)
	return id, c, nil
}

func (s *Server) lookup(c *gin.Context) (string, *app.Controller, bool) {
	id := c.Param("id")
	ctrl, ok := s.store.get(id)
	return id, ctrl, ok
}

func (s *Server) generateContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, s.opts.GenerateTimeout)
}

func (s *Server) exportContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, s.opts.ExportTimeout)
}

func (s *Server) logMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.Request.URL.Path
		if path == "" {
			path = "/"
		}
		s.log.Debug("http request",
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"elapsed", time.Since(start),
		)
	}
}
