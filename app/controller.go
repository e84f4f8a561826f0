// Package app holds the controller that drives one user's flow:
// form submission, generation, display and export.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"modul_ajar_generator/exporter"
	"modul_ajar_generator/generator"
	"modul_ajar_generator/logger"
)

var (
	// ErrBusy is returned while another operation is in flight.
	ErrBusy = errors.New("another operation is in progress")
	// ErrNoPlan is returned when exporting or printing before a plan exists.
	ErrNoPlan = errors.New("no generated plan available")
	// ErrPanicked wraps a panic raised by a generator or exporter.
	ErrPanicked = errors.New("operation panicked")
)

// Generator produces a plan from a lesson input.
type Generator interface {
	Ready() bool
	Generate(ctx context.Context, in generator.LessonPlanInput) (generator.Plan, error)
}

// Exporter renders plan text into files and print views.
type Exporter interface {
	PDF(ctx context.Context, text, subject string) (exporter.File, error)
	Text(text, subject string) (exporter.File, error)
	PrintView(text, title string) (string, error)
}

// Recorder receives operation outcomes; metrics.Recorder implements it.
type Recorder interface {
	ObserveGeneration(result string, d time.Duration)
	ObserveExport(format, result string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveGeneration(string, time.Duration) {}
func (nopRecorder) ObserveExport(string, string) {}

// Snapshot is a consistent copy of the controller's state.
type Snapshot struct {
	State State
	Input *generator.LessonPlanInput
}

// Controller serialises operations through its Loading state: at most one
// generation or export runs at a time, and every operation leaves the
// controller in Ready or Failed.
type Controller struct {
	gen Generator
	exp Exporter
	rec Recorder
	log *logger.Logger

	mu    sync.Mutex
	state State
	input *generator.LessonPlanInput
}

type Option func(*Controller)

func WithRecorder(r Recorder) Option {
	return func(c *Controller) {
		if r != nil {
			c.rec = r
		}
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

func NewController(gen Generator, exp Exporter, opts ...Option) (*Controller, error) {
	if gen == nil {
		return nil, errors.New("generator is required")
	}
	if exp == nil {
		return nil, errors.New("exporter is required")
	}
	c := &Controller{
		gen:   gen,
		exp:   exp,
		rec:   nopRecorder{},
		log:   logger.Nop(),
		state: Idle{},
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Snapshot{State: c.state}
	if c.input != nil {
		in := *c.input
		s.Input = &in
	}
	return s
}

// Submit stores in, clears any previous plan or error and generates a new plan.
func (c *Controller) Submit(ctx context.Context, in generator.LessonPlanInput) (err error) {
	c.mu.Lock()
	if _, busy := c.state.(Loading); busy {
		c.mu.Unlock()
		return ErrBusy
	}
	if !c.gen.Ready() {
		err = generator.ErrMissingCredential
		msg, result := generationMessage(err)
		c.state = Failed{Err: err, Message: msg}
		c.mu.Unlock()
		c.rec.ObserveGeneration(result, 0)
		c.log.Error("generation refused", "error", err)
		return err
	}
	c.input = &in
	c.state = Loading{Op: OpGenerate}
	c.mu.Unlock()

	var plan generator.Plan
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPanicked, r)
		}
		c.finishGenerate(in, plan, err, time.Since(start))
	}()
	plan, err = c.gen.Generate(ctx, in)
	return err
}

func (c *Controller) finishGenerate(in generator.LessonPlanInput, plan generator.Plan, err error, elapsed time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		msg, result := generationMessage(err)
		c.state = Failed{Err: err, Message: msg}
		c.rec.ObserveGeneration(result, elapsed)
		c.log.Error("generation failed", "subject", in.Subject, "result", result, "error", err, "elapsed", elapsed)
		return
	}
	c.state = Ready{Plan: plan}
	c.rec.ObserveGeneration("ok", elapsed)
	c.log.Info("plan generated", "subject", in.Subject, "title", plan.Title, "chars", len(plan.Text), "elapsed", elapsed)
}

// ExportPDF renders the current plan to PDF.
func (c *Controller) ExportPDF(ctx context.Context) (exporter.File, error) {
	return c.export(OpExportPDF, func(plan generator.Plan, subject string) (exporter.File, error) {
		return c.exp.PDF(ctx, plan.Text, subject)
	})
}

// ExportText converts the current plan to a .txt file.
func (c *Controller) ExportText(ctx context.Context) (exporter.File, error) {
	return c.export(OpExportText, func(plan generator.Plan, subject string) (exporter.File, error) {
		return c.exp.Text(plan.Text, subject)
	})
}

// export runs fn while Loading. A failure moves to Failed but keeps the plan.
func (c *Controller) export(op Operation, fn func(generator.Plan, string) (exporter.File, error)) (file exporter.File, err error) {
	c.mu.Lock()
	if _, busy := c.state.(Loading); busy {
		c.mu.Unlock()
		return exporter.File{}, ErrBusy
	}
	plan, ok := PlanOf(c.state)
	if !ok {
		c.mu.Unlock()
		return exporter.File{}, ErrNoPlan
	}
	var subject string
	if c.input != nil {
		subject = c.input.Subject
	}
	c.state = Loading{Op: op}
	c.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			file, err = exporter.File{}, fmt.Errorf("%w: %v", ErrPanicked, r)
		}
		c.finishExport(op, plan, file, err)
	}()
	return fn(plan, subject)
}

func (c *Controller) finishExport(op Operation, plan generator.Plan, file exporter.File, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	format := formatOf(op)
	if err != nil {
		msg, result := exportMessage(op, err)
		c.state = Failed{Err: err, Message: msg, Plan: &plan}
		c.rec.ObserveExport(format, result)
		c.log.Warn("export failed", "format", format, "result", result, "error", err)
		return
	}
	c.state = Ready{Plan: plan}
	c.rec.ObserveExport(format, "ok")
	c.log.Info("export done", "format", format, "file", file.Name, "bytes", len(file.Body))
}

// PrintView returns the printable page for the current plan. It does not
// change state.
func (c *Controller) PrintView() (string, error) {
	c.mu.Lock()
	plan, ok := PlanOf(c.state)
	c.mu.Unlock()
	if !ok {
		return "", ErrNoPlan
	}
	return c.exp.PrintView(plan.Text, plan.Title)
}

func formatOf(op Operation) string {
	if op == OpExportPDF {
		return "pdf"
	}
	return "txt"
}
