// Package exporter turns a generated plan into downloadable files (PDF,
// plain text) and into a printable HTML view.
package exporter

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"regexp"
	"strings"

	"modul_ajar_generator/logger"
	"modul_ajar_generator/markdown"
)

const (
	filePrefix      = "RPP_Modul_Ajar_"
	defaultBaseName = "Generated"

	ContentTypePDF  = "application/pdf"
	ContentTypeText = "text/plain; charset=utf-8"
)

//go:embed templates/document.html
var templateFS embed.FS

var documentTmpl = template.Must(template.ParseFS(templateFS, "templates/document.html"))

// ErrEmptyContent means the plan converted to the "no content" sentinel.
var ErrEmptyContent = errors.New("plan content is empty or invalid after cleaning")

// RenderError wraps a failure of the PDF renderer.
type RenderError struct {
	Detail string
	Err    error
}

func (e *RenderError) Error() string { return "pdf rendering failed: " + e.Detail }

func (e *RenderError) Unwrap() error { return e.Err }

// Renderer prints a complete HTML document to PDF bytes.
type Renderer interface {
	RenderPDF(ctx context.Context, html string, layout PageLayout) ([]byte, error)
}

// File is one export ready to be written or served.
type File struct {
	Name        string
	ContentType string
	Body        []byte
}

// Pipeline converts plan text into export files.
type Pipeline struct {
	renderer Renderer
	layout   PageLayout
	log      *logger.Logger
}

func NewPipeline(renderer Renderer, layout PageLayout, log *logger.Logger) (*Pipeline, error) {
	if renderer == nil {
		return nil, errors.New("pdf renderer is required")
	}
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Pipeline{renderer: renderer, layout: layout, log: log}, nil
}

func (p *Pipeline) Layout() PageLayout { return p.layout }

var whitespaceRe = regexp.MustCompile(`[\s\v\p{Zs}\p{Zl}\p{Zp}\x{FEFF}]+`)

// FileBaseName derives the download name (without extension) from the subject.
func FileBaseName(subject string) string {
	name := whitespaceRe.ReplaceAllString(subject, "_")
	if name == "" {
		name = defaultBaseName
	}
	return filePrefix + name
}

// PDF renders text to a PDF file. Sentinel content is rejected before the
// renderer is touched.
func (p *Pipeline) PDF(ctx context.Context, text, subject string) (File, error) {
	fragment := markdown.ToHTML(text)
	if strings.HasPrefix(fragment, markdown.NoContentHTMLPrefix) {
		return File{}, ErrEmptyContent
	}
	doc, err := renderDocument(documentData{
		Title:       FileBaseName(subject),
		Body:        template.HTML(fragment),
		RenderWidth: p.layout.RenderWidthPx,
	})
	if err != nil {
		return File{}, &RenderError{Detail: err.Error(), Err: err}
	}

	body, err := p.renderer.RenderPDF(ctx, doc, p.layout)
	if err != nil {
		return File{}, &RenderError{Detail: err.Error(), Err: err}
	}
	if len(body) == 0 {
		err := errors.New("renderer produced no output")
		return File{}, &RenderError{Detail: err.Error(), Err: err}
	}
	name := FileBaseName(subject) + ".pdf"
	p.log.Debug("pdf rendered", "file", name, "bytes", len(body), "scale", p.layout.Scale())
	return File{Name: name, ContentType: ContentTypePDF, Body: body}, nil
}

// Text converts text to a UTF-8 plain-text file.
func (p *Pipeline) Text(text, subject string) (File, error) {
	plain := markdown.ToPlainText(text)
	if strings.Contains(plain, markdown.NoContentMarker) {
		return File{}, ErrEmptyContent
	}
	return File{
		Name:        FileBaseName(subject) + ".txt",
		ContentType: ContentTypeText,
		Body:        []byte(plain),
	}, nil
}

// PrintView returns a standalone HTML page that opens the browser's print
// dialog once loaded. Pagination is left to the stylesheet.
func (p *Pipeline) PrintView(text, title string) (string, error) {
	fragment := markdown.ToHTML(text)
	if strings.HasPrefix(fragment, markdown.NoContentHTMLPrefix) {
		return "", ErrEmptyContent
	}
	if title == "" {
		title = "RPP / Modul Ajar"
	}
	return renderDocument(documentData{
		Title:     title,
		Body:      template.HTML(fragment),
		AutoPrint: true,
	})
}

type documentData struct {
	Title       string
	Body        template.HTML
	RenderWidth int
	AutoPrint   bool
}

func renderDocument(d documentData) (string, error) {
	var buf bytes.Buffer
	if err := documentTmpl.Execute(&buf, d); err != nil {
		return "", fmt.Errorf("render document template: %w", err)
	}
	return buf.String(), nil
}
