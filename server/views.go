package server

import (
	"errors"
	"html/template"
	"net/http"

	"modul_ajar_generator/app"
	"modul_ajar_generator/exporter"
	"modul_ajar_generator/generator"
	"modul_ajar_generator/markdown"
)

// planView is what both the HTML page and the JSON API show for a session.
type planView struct {
	SessionID string                    `json:"session_id"`
	State     string                    `json:"state"`
	Operation app.Operation             `json:"operation,omitempty"`
	Input     generator.LessonPlanInput `json:"input"`
	Error     string                    `json:"error,omitempty"`
	Plan      *planBody                 `json:"plan,omitempty"`
}

type planBody struct {
	Title   string                    `json:"title"`
	Summary string                    `json:"summary"`
	Text    string                    `json:"text"`
	HTML    string                    `json:"html"`
	Outline []markdown.SectionContent `json:"outline"`
}

func newPlanView(id string, snap app.Snapshot) planView {
	v := planView{SessionID: id, State: snap.State.Name()}
	if snap.Input != nil {
		v.Input = *snap.Input
	}
	switch st := snap.State.(type) {
	case app.Loading:
		v.Operation = st.Op
		return v
	case app.Failed:
		v.Error = st.Message
	}
	if plan, ok := app.PlanOf(snap.State); ok {
		v.Plan = &planBody{
			Title:   plan.Title,
			Summary: plan.Summary,
			Text:    plan.Text,
			HTML:    markdown.ToHTML(plan.Text),
			Outline: markdown.BuildOutline(plan.Text),
		}
	}
	return v
}

// pageData feeds web/templates/page.html.
type pageData struct {
	SessionID string
	Input     generator.LessonPlanInput
	Loading   bool
	Error     string
	HasPlan   bool
	PlanHTML  template.HTML
}

func newPageData(v planView) pageData {
	d := pageData{
		SessionID: v.SessionID,
		Input:     v.Input,
		Loading:   v.State == app.Loading{}.Name(),
		Error:     v.Error,
	}
	if v.Plan != nil {
		d.HasPlan = true
		// goldmark escapes raw HTML in model output, so the fragment is safe to embed.
		d.PlanHTML = template.HTML(v.Plan.HTML)
	}
	return d
}

type apiError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type errorEnvelope struct {
	Error apiError  `json:"error"`
	State *planView `json:"state,omitempty"`
}

// statusFor maps operation errors onto HTTP status codes and stable codes.
func statusFor(err error) (int, string) {
	var oerr *generator.OracleError
	var rerr *exporter.RenderError
	switch {
	case errors.Is(err, app.ErrBusy):
		return http.StatusConflict, "busy"
	case errors.Is(err, app.ErrNoPlan):
		return http.StatusUnprocessableEntity, "no_plan"
	case errors.Is(err, exporter.ErrEmptyContent):
		return http.StatusUnprocessableEntity, "empty_content"
	case errors.Is(err, generator.ErrMissingCredential):
		return http.StatusServiceUnavailable, "missing_credential"
	case errors.Is(err, generator.ErrEmptyResponse):
		return http.StatusBadGateway, "empty_response"
	case errors.As(err, &oerr):
		return http.StatusBadGateway, "oracle_error"
	case errors.As(err, &rerr):
		return http.StatusInternalServerError, "render_error"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
