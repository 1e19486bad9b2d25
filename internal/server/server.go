// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes document sessions over a JSON HTTP API. Sessions
// live in memory until deleted or the server stops.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/pdiddy/docforge/internal/orchestrator"
	"github.com/pdiddy/docforge/internal/session"
	"github.com/pdiddy/docforge/pkg/types"
)

var errSessionNotFound = errors.New("session not found")

// statusClientClosedRequest is the non-standard status for a request whose
// client went away.
const statusClientClosedRequest = 499

// Server routes API requests to sessions.
type Server struct {
	orch     *orchestrator.Orchestrator
	gatherer prometheus.Gatherer
	logger   *zap.Logger

	mu       sync.RWMutex
	sessions map[string]*orchestrator.Session
}

// New returns a server over orch. Metrics are served from gatherer when it
// is non-nil.
func New(orch *orchestrator.Orchestrator, gatherer prometheus.Gatherer, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		orch:     orch,
		gatherer: gatherer,
		logger:   logger,
		sessions: make(map[string]*orchestrator.Session),
	}
}

// Handler builds the gin router.
func (s *Server) Handler() http.Handler {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(s.logger))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if s.gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	}

	api := router.Group("/api/sessions")
	{
		api.POST("", s.createSession)
		api.GET("/:id", s.getSession)
		api.DELETE("/:id", s.deleteSession)
		api.POST("/:id/run", s.runSession)
		api.POST("/:id/navigate", s.navigate)
		api.GET("/:id/export", s.export)

		section := api.Group("/:id/sections/:index")
		{
			section.POST("/generate", s.generateSection)
			section.PUT("/winner", s.selectWinner)
			section.PATCH("/winner", s.editWinner)
		}
	}
	return router
}

// Run serves on addr until ctx is done, then shuts down within
// shutdownTimeout and closes every session.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("serving %s: %w", addr, err)
		}
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := srv.Shutdown(sctx)
	s.Close()
	return err
}

// Close drops every session.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		sess.Close()
		delete(s.sessions, id)
	}
}

func (s *Server) lookup(c *gin.Context) (*orchestrator.Session, bool) {
	s.mu.RLock()
	sess, ok := s.sessions[c.Param("id")]
	s.mu.RUnlock()
	if !ok {
		s.fail(c, fmt.Errorf("%w: %s", errSessionNotFound, c.Param("id")))
	}
	return sess, ok
}

func sectionIndex(c *gin.Context) (int, error) {
	i, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return 0, fmt.Errorf("section index %q is not a number", c.Param("index"))
	}
	return i, nil
}

type createRequest struct {
	Title        string `json:"title"`
	DatabaseText string `json:"database_text"`
	Style        string `json:"style"`
	Length       string `json:"length"`
}

func (s *Server) createSession(c *gin.Context) {
	var body createRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sess, err := s.orch.Start(types.DocumentRequest{
		Title:        body.Title,
		DatabaseText: body.DatabaseText,
		Style:        types.Style(body.Style),
		Length:       types.Length(body.Length),
	})
	if err != nil {
		s.fail(c, err)
		return
	}

	id := uuid.NewString()
	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	s.logger.Info("session created", zap.String("session", id), zap.String("title", body.Title))
	c.JSON(http.StatusCreated, gin.H{"id": id, "sections": s.orch.Sections(), "state": sess.Snapshot()})
}

func (s *Server) getSession(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sess.Snapshot())
}

func (s *Server) deleteSession(c *gin.Context) {
	id := c.Param("id")
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		s.fail(c, fmt.Errorf("%w: %s", errSessionNotFound, id))
		return
	}
	sess.Close()
	c.Status(http.StatusNoContent)
}

func (s *Server) runSession(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}
	if err := sess.Run(c.Request.Context()); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sess.Snapshot())
}

func (s *Server) generateSection(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}
	i, err := sectionIndex(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	results, err := sess.GenerateSection(c.Request.Context(), i)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"index": i, "variants": session.Views(results)})
}

type selectRequest struct {
	VariantIndex *int `json:"variant_index"`
}

func (s *Server) selectWinner(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}
	i, err := sectionIndex(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var body selectRequest
	if err := c.ShouldBindJSON(&body); err != nil || body.VariantIndex == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "variant_index is required"})
		return
	}
	w, err := sess.Select(i, *body.VariantIndex)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

type editRequest struct {
	Content *string `json:"content"`
}

func (s *Server) editWinner(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}
	i, err := sectionIndex(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var body editRequest
	if err := c.ShouldBindJSON(&body); err != nil || body.Content == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content is required"})
		return
	}
	w, err := sess.Edit(i, *body.Content)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

type navigateRequest struct {
	Index     *int   `json:"index"`
	Direction string `json:"direction"`
}

func (s *Server) navigate(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}
	var body navigateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	switch {
	case body.Index != nil:
		if err := sess.GoTo(*body.Index); err != nil {
			s.fail(c, err)
			return
		}
	case body.Direction == "next":
		sess.Next()
	case body.Direction == "prev":
		sess.Prev()
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "index or direction (next|prev) is required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"current": sess.Current()})
}

func (s *Server) export(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}
	name := session.ExportFilename(sess.Request().Title)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(sess.Export()))
}

// fail writes err with the status that matches its kind.
func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	_ = c.Error(err)

	body := gin.H{"error": err.Error()}
	var failed *orchestrator.SectionFailedError
	if errors.As(err, &failed) {
		body["section"] = failed.Section
		body["variants"] = session.Views(failed.Results)
	}
	c.JSON(status, body)
}

func statusFor(err error) int {
	var failed *orchestrator.SectionFailedError
	switch {
	case errors.Is(err, types.ErrMissingInput):
		return http.StatusBadRequest
	case errors.Is(err, errSessionNotFound), errors.Is(err, types.ErrOutOfRange), errors.Is(err, session.ErrUnknownSection):
		return http.StatusNotFound
	case errors.Is(err, types.ErrUpstreamUnresolved),
		errors.Is(err, orchestrator.ErrSectionBusy),
		errors.Is(err, session.ErrNoWinner),
		errors.Is(err, session.ErrVariantFailed):
		return http.StatusConflict
	case errors.As(err, &failed):
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled):
		return statusClientClosedRequest
	default:
		return http.StatusInternalServerError
	}
}
