package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"modul_ajar_generator/exporter"
	"modul_ajar_generator/generator"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

type fakeGen struct {
	ready bool
	text  string
	err   error
	block chan struct{}
	calls int
	boom  any
}

func (f *fakeGen) Ready() bool { return f.ready }

func (f *fakeGen) Generate(ctx context.Context, in generator.LessonPlanInput) (generator.Plan, error) {
	f.calls++
	if f.boom != nil {
		panic(f.boom)
	}
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return generator.Plan{}, f.err
	}
	return generator.PostProcess(f.text), nil
}

type fakeRenderer struct {
	err  error
	boom any
}

func (r fakeRenderer) RenderPDF(context.Context, string, exporter.PageLayout) ([]byte, error) {
	if r.boom != nil {
		panic(r.boom)
	}
	if r.err != nil {
		return nil, r.err
	}
	return []byte("%PDF"), nil
}

type countingRecorder struct {
	mu          sync.Mutex
	generations map[string]int
	exports     map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{generations: map[string]int{}, exports: map[string]int{}}
}

func (r *countingRecorder) ObserveGeneration(result string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generations[result]++
}

func (r *countingRecorder) ObserveExport(format, result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exports[format+"/"+result]++
}

var sampleInput = generator.LessonPlanInput{
	Subject:            "Bahasa Indonesia",
	Phase:              "C",
	Grade:              "5",
	Semester:           "1",
	Topic:              "Teks narasi",
	TimeAllocation:     "2 x 35 menit",
	LearningObjectives: "Menulis cerita pendek",
}

func newTestController(t *testing.T, gen Generator, renderErr error, opts ...Option) *Controller {
	t.Helper()
	pipe, err := exporter.NewPipeline(fakeRenderer{err: renderErr}, exporter.DefaultLayout(), nil)
	require.NoError(t, err)
	c, err := NewController(gen, pipe, opts...)
	require.NoError(t, err)
	return c
}

func TestStartsIdle(t *testing.T) {
	c := newTestController(t, &fakeGen{ready: true}, nil)
	snap := c.Snapshot()
	assert.IsType(t, Idle{}, snap.State)
	assert.Nil(t, snap.Input)
}

func TestSubmitSuccess(t *testing.T) {
	rec := newCountingRecorder()
	c := newTestController(t, &fakeGen{ready: true, text: "# Modul IPA\n- a"}, nil, WithRecorder(rec))

	require.NoError(t, c.Submit(context.Background(), sampleInput))

	snap := c.Snapshot()
	ready, ok := snap.State.(Ready)
	require.True(t, ok, "state %T", snap.State)
	assert.Equal(t, "# Modul IPA\n- a", ready.Plan.Text)
	assert.Equal(t, "Modul IPA", ready.Plan.Title)
	require.NotNil(t, snap.Input)
	assert.Equal(t, sampleInput, *snap.Input)
	assert.Equal(t, 1, rec.generations["ok"])
}

func TestSubmitEmptyResponse(t *testing.T) {
	c := newTestController(t, &fakeGen{ready: true, err: generator.ErrEmptyResponse}, nil)

	err := c.Submit(context.Background(), sampleInput)
	assert.ErrorIs(t, err, generator.ErrEmptyResponse)

	failed, ok := c.Snapshot().State.(Failed)
	require.True(t, ok)
	assert.ErrorIs(t, failed.Err, generator.ErrEmptyResponse)
	assert.Contains(t, failed.Message, "respons kosong")
	assert.Nil(t, failed.Plan)
	_, hasPlan := PlanOf(failed)
	assert.False(t, hasPlan)
}

func TestSubmitEmptyTextThroughClient(t *testing.T) {
	client := generator.NewClientWithBackend(
		generator.LLMSettings{Provider: generator.ProviderGemini, APIKey: "k"},
		backendFunc(func(context.Context, string, string) (string, error) { return "  \n", nil }),
	)
	agent, err := generator.NewAgent(client)
	require.NoError(t, err)
	c := newTestController(t, agent, nil)

	err = c.Submit(context.Background(), sampleInput)
	assert.ErrorIs(t, err, generator.ErrEmptyResponse)
	failed, ok := c.Snapshot().State.(Failed)
	require.True(t, ok)
	assert.Nil(t, failed.Plan)
}

type backendFunc func(ctx context.Context, model, prompt string) (string, error)

func (f backendFunc) Complete(ctx context.Context, model, prompt string) (string, error) {
	return f(ctx, model, prompt)
}

func TestSubmitOracleError(t *testing.T) {
	rec := newCountingRecorder()
	oerr := &generator.OracleError{Detail: "quota exceeded", Err: errors.New("429")}
	c := newTestController(t, &fakeGen{ready: true, err: oerr}, nil, WithRecorder(rec))

	require.Error(t, c.Submit(context.Background(), sampleInput))
	failed := c.Snapshot().State.(Failed)
	assert.Equal(t, "Terjadi kesalahan: quota exceeded. Pastikan API Key valid dan model tersedia.", failed.Message)
	assert.Equal(t, 1, rec.generations["oracle_error"])
}

func TestSubmitMissingCredential(t *testing.T) {
	gen := &fakeGen{ready: false}
	c := newTestController(t, gen, nil)

	err := c.Submit(context.Background(), sampleInput)
	assert.ErrorIs(t, err, generator.ErrMissingCredential)
	assert.Zero(t, gen.calls, "no generation call without a credential")

	failed := c.Snapshot().State.(Failed)
	assert.Contains(t, failed.Message, "Kunci API tidak tersedia")
}

func TestSubmitClearsPreviousPlan(t *testing.T) {
	gen := &fakeGen{ready: true, text: "# Satu"}
	c := newTestController(t, gen, nil)
	require.NoError(t, c.Submit(context.Background(), sampleInput))

	gen.text = ""
	gen.err = generator.ErrEmptyResponse
	require.Error(t, c.Submit(context.Background(), sampleInput))
	_, hasPlan := PlanOf(c.Snapshot().State)
	assert.False(t, hasPlan)
}

func TestBusyWhileLoading(t *testing.T) {
	gen := &fakeGen{ready: true, text: "# A", block: make(chan struct{})}
	c := newTestController(t, gen, nil)

	done := make(chan error, 1)
	go func() { done <- c.Submit(context.Background(), sampleInput) }()

	require.Eventually(t, func() bool {
		l, ok := c.Snapshot().State.(Loading)
		return ok && l.Op == OpGenerate
	}, time.Second, time.Millisecond)

	assert.ErrorIs(t, c.Submit(context.Background(), sampleInput), ErrBusy)
	_, err := c.ExportText(context.Background())
	assert.ErrorIs(t, err, ErrBusy)

	close(gen.block)
	require.NoError(t, <-done)
	assert.IsType(t, Ready{}, c.Snapshot().State)
}

func TestExportWithoutPlan(t *testing.T) {
	c := newTestController(t, &fakeGen{ready: true}, nil)

	_, err := c.ExportPDF(context.Background())
	assert.ErrorIs(t, err, ErrNoPlan)
	_, err = c.ExportText(context.Background())
	assert.ErrorIs(t, err, ErrNoPlan)
	_, err = c.PrintView()
	assert.ErrorIs(t, err, ErrNoPlan)
	assert.IsType(t, Idle{}, c.Snapshot().State)
}

func TestExportPDFFailureKeepsPlan(t *testing.T) {
	rec := newCountingRecorder()
	c := newTestController(t, &fakeGen{ready: true, text: "# Modul\n\nIsi"}, errors.New("renderer crashed"), WithRecorder(rec))
	require.NoError(t, c.Submit(context.Background(), sampleInput))

	_, err := c.ExportPDF(context.Background())
	var rerr *exporter.RenderError
	require.ErrorAs(t, err, &rerr)

	failed, ok := c.Snapshot().State.(Failed)
	require.True(t, ok)
	assert.Equal(t, "Kesalahan PDF: renderer crashed", failed.Message)
	require.NotNil(t, failed.Plan)
	assert.Equal(t, "# Modul\n\nIsi", failed.Plan.Text)
	assert.Equal(t, 1, rec.exports["pdf/render_error"])

	// the retained plan can still be exported another way
	f, err := c.ExportText(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "RPP_Modul_Ajar_Bahasa_Indonesia.txt", f.Name)
	assert.IsType(t, Ready{}, c.Snapshot().State)
}

func TestExportEmptyContentKeepsPlan(t *testing.T) {
	// a fenced but empty document passes the client check yet cleans to nothing
	c := newTestController(t, &fakeGen{ready: true, text: "```markdown\n\n```"}, nil)
	require.NoError(t, c.Submit(context.Background(), sampleInput))

	_, err := c.ExportPDF(context.Background())
	assert.ErrorIs(t, err, exporter.ErrEmptyContent)
	failed := c.Snapshot().State.(Failed)
	assert.Equal(t, msgPDFEmpty, failed.Message)
	assert.NotNil(t, failed.Plan)

	_, err = c.ExportText(context.Background())
	assert.ErrorIs(t, err, exporter.ErrEmptyContent)
	assert.Equal(t, msgTextEmpty, c.Snapshot().State.(Failed).Message)
}

func TestExportSuccess(t *testing.T) {
	c := newTestController(t, &fakeGen{ready: true, text: "# Modul\n- a"}, nil)
	require.NoError(t, c.Submit(context.Background(), sampleInput))

	f, err := c.ExportPDF(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "RPP_Modul_Ajar_Bahasa_Indonesia.pdf", f.Name)
	assert.Equal(t, []byte("%PDF"), f.Body)
	assert.IsType(t, Ready{}, c.Snapshot().State)

	page, err := c.PrintView()
	require.NoError(t, err)
	assert.Contains(t, page, "<title>Modul</title>")
}

func TestNewControllerRequiresCollaborators(t *testing.T) {
	_, err := NewController(nil, nil)
	assert.Error(t, err)
	_, err = NewController(&fakeGen{}, nil)
	assert.Error(t, err)
}

func TestGeneratorPanicReleasesLoading(t *testing.T) {
	rec := newCountingRecorder()
	gen := &fakeGen{ready: true, text: "# Pulih", boom: "backend exploded"}
	c := newTestController(t, gen, nil, WithRecorder(rec))

	err := c.Submit(context.Background(), sampleInput)
	require.ErrorIs(t, err, ErrPanicked)
	assert.Contains(t, err.Error(), "backend exploded")

	failed, ok := c.Snapshot().State.(Failed)
	require.True(t, ok, "state %T", c.Snapshot().State)
	assert.Equal(t, msgGenerateFailed, failed.Message)
	assert.Nil(t, failed.Plan)
	assert.Equal(t, 1, rec.generations["error"])

	gen.boom = nil
	require.NoError(t, c.Submit(context.Background(), sampleInput))
	assert.IsType(t, Ready{}, c.Snapshot().State)
}

func TestRendererPanicKeepsPlan(t *testing.T) {
	pipe, err := exporter.NewPipeline(fakeRenderer{boom: "chrome gone"}, exporter.DefaultLayout(), nil)
	require.NoError(t, err)
	c, err := NewController(&fakeGen{ready: true, text: "# Modul"}, pipe)
	require.NoError(t, err)
	require.NoError(t, c.Submit(context.Background(), sampleInput))

	_, err = c.ExportPDF(context.Background())
	require.ErrorIs(t, err, ErrPanicked)

	failed, ok := c.Snapshot().State.(Failed)
	require.True(t, ok, "state %T", c.Snapshot().State)
	assert.Equal(t, msgPDFFailed, failed.Message)
	require.NotNil(t, failed.Plan)
	assert.Equal(t, "# Modul", failed.Plan.Text)

	_, err = c.ExportText(context.Background())
	require.NoError(t, err)
	assert.IsType(t, Ready{}, c.Snapshot().State)
}
