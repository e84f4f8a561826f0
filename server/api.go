package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"modul_ajar_generator/generator"
)

type apiSubmitReq struct {
	SessionID string `json:"session_id"`
	generator.LessonPlanInput
}

func (s *Server) handleAPISubmit(c *gin.Context) {
	var req apiSubmitReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "bad_request", err, nil)
		return
	}
	id, ctrl, err := s.controllerFor(req.SessionID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal", err, nil)
		return
	}
	ctx, cancel := s.generateContext(c.Request.Context())
	defer cancel()
	if err := ctrl.Submit(ctx, req.LessonPlanInput); err != nil {
		status, code := statusFor(err)
		view := newPlanView(id, ctrl.Snapshot())
		respondError(c, status, code, errors.New(messageOr(view.Error, err)), &view)
		return
	}
	c.JSON(http.StatusOK, newPlanView(id, ctrl.Snapshot()))
}

func (s *Server) handleAPIGet(c *gin.Context) {
	id, ctrl, ok := s.lookup(c)
	if !ok {
		respondError(c, http.StatusNotFound, "not_found", errors.New("session not found"), nil)
		return
	}
	c.JSON(http.StatusOK, newPlanView(id, ctrl.Snapshot()))
}

func (s *Server) handleAPIExport(c *gin.Context) {
	id, ctrl, ok := s.lookup(c)
	if !ok {
		respondError(c, http.StatusNotFound, "not_found", errors.New("session not found"), nil)
		return
	}
	format := c.Param("format")
	if format != "pdf" && format != "txt" {
		respondError(c, http.StatusBadRequest, "bad_format", errUnknownFormat, nil)
		return
	}
	file, err := s.export(c, ctrl, format)
	if err != nil {
		status, code := statusFor(err)
		view := newPlanView(id, ctrl.Snapshot())
		respondError(c, status, code, errors.New(messageOr(view.Error, err)), &view)
		return
	}
	writeFile(c, file)
}

// messageOr prefers the controller's user-facing message over the raw error.
func messageOr(msg string, err error) string {
	if msg != "" {
		return msg
	}
	return err.Error()
}

func respondError(c *gin.Context, status int, code string, err error, view *planView) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, errorEnvelope{
		Error: apiError{Message: msg, Code: code},
		State: view,
	})
}
