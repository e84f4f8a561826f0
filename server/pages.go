package server

import (
	"errors"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"

	"modul_ajar_generator/app"
	"modul_ajar_generator/exporter"
	"modul_ajar_generator/generator"
)

type pageSubmitReq struct {
	SessionID string `form:"session_id"`
	generator.LessonPlanInput
}

func (s *Server) handleIndex(c *gin.Context) {
	c.HTML(http.StatusOK, "page.html", pageData{})
}

// handlePageSubmit runs the generation synchronously and then redirects to
// the plan page, which shows either the plan or the error.
func (s *Server) handlePageSubmit(c *gin.Context) {
	var req pageSubmitReq
	if err := c.ShouldBind(&req); err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}
	id, ctrl, err := s.controllerFor(req.SessionID)
	if err != nil {
		c.String(http.StatusInternalServerError, err.Error())
		return
	}
	ctx, cancel := s.generateContext(c.Request.Context())
	defer cancel()
	if err := ctrl.Submit(ctx, req.LessonPlanInput); err != nil && !errors.Is(err, app.ErrBusy) {
		s.log.Debug("submit finished with error", "session", id, "error", err)
	}
	c.Redirect(http.StatusSeeOther, "/plans/"+id)
}

func (s *Server) handlePage(c *gin.Context) {
	id, ctrl, ok := s.lookup(c)
	if !ok {
		c.String(http.StatusNotFound, "session not found")
		return
	}
	c.HTML(http.StatusOK, "page.html", newPageData(newPlanView(id, ctrl.Snapshot())))
}

// handlePageExport streams the file as a download. Failures are recorded in
// the controller state and shown after redirecting back to the plan page.
func (s *Server) handlePageExport(format string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ctrl, ok := s.lookup(c)
		if !ok {
			c.String(http.StatusNotFound, "session not found")
			return
		}
		file, err := s.export(c, ctrl, format)
		if err != nil {
			c.Redirect(http.StatusSeeOther, "/plans/"+id)
			return
		}
		writeFile(c, file)
	}
}

func (s *Server) handlePrint(c *gin.Context) {
	id, ctrl, ok := s.lookup(c)
	if !ok {
		c.String(http.StatusNotFound, "session not found")
		return
	}
	page, err := ctrl.PrintView()
	if err != nil {
		c.Redirect(http.StatusSeeOther, "/plans/"+id)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}

func (s *Server) export(c *gin.Context, ctrl *app.Controller, format string) (exporter.File, error) {
	switch format {
	case "pdf":
		ctx, cancel := s.exportContext(c.Request.Context())
		defer cancel()
		return ctrl.ExportPDF(ctx)
	case "txt":
		return ctrl.ExportText(c.Request.Context())
	default:
		return exporter.File{}, errUnknownFormat
	}
}

var errUnknownFormat = errors.New("unknown export format; use pdf or txt")

func writeFile(c *gin.Context, f exporter.File) {
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": f.Name})
	if disposition == "" {
		disposition = "attachment"
	}
	c.Header("Content-Disposition", disposition)
	c.Data(http.StatusOK, f.ContentType, f.Body)
}
