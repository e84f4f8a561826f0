package exporter

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"modul_ajar_generator/logger"
)

// ChromeConfig controls the headless browser used for PDF rendering.
type ChromeConfig struct {
	// Bin is an optional Chrome/Chromium binary; empty lets go-rod find or download one.
	Bin string
	// DebuggerURL connects to an already running browser instead of launching one.
	DebuggerURL string
	Timeout     time.Duration
}

// ChromeRenderer prints HTML to PDF with headless Chrome via go-rod.
// The browser is started on first use and reused until Close.
type ChromeRenderer struct {
	cfg ChromeConfig
	log *logger.Logger

	mu      sync.Mutex
	browser *rod.Browser
	launch  *launcher.Launcher
}

func NewChromeRenderer(cfg ChromeConfig, log *logger.Logger) *ChromeRenderer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &ChromeRenderer{cfg: cfg, log: log}
}

func (r *ChromeRenderer) ensureStarted() (*rod.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.browser != nil {
		return r.browser, nil
	}

	controlURL := r.cfg.DebuggerURL
	if controlURL == "" {
		l := launcher.New().Headless(true)
		if r.cfg.Bin != "" {
			l = l.Bin(r.cfg.Bin)
		}
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("launch chrome: %w", err)
		}
		controlURL = u
		r.launch = l
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		if r.launch != nil {
			r.launch.Kill()
			r.launch = nil
		}
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}
	r.browser = browser
	if r.log != nil {
		r.log.Info("pdf renderer started", "control_url", controlURL)
	}
	return browser, nil
}

// RenderPDF loads html into a fresh tab sized to the layout's render width
// and prints it with the layout's paper size, margins and scale.
func (r *ChromeRenderer) RenderPDF(ctx context.Context, html string, layout PageLayout) ([]byte, error) {
	browser, err := r.ensureStarted()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	page, err := browser.Context(ctx).Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	defer func() { _ = page.Close() }()

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             layout.RenderWidthPx,
		Height:            800,
		DeviceScaleFactor: 1,
	}); err != nil {
		return nil, fmt.Errorf("set viewport: %w", err)
	}
	if err := page.SetDocumentContent(html); err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait for document: %w", err)
	}

	w, h := layout.PageSize()
	margin := layout.MarginPt / pointsPerInch
	stream, err := page.PDF(&proto.PagePrintToPDF{
		PrintBackground: true,
		Scale:           ptr(layout.printScale()),
		PaperWidth:      ptr(w / pointsPerInch),
		PaperHeight:     ptr(h / pointsPerInch),
		MarginTop:       ptr(margin),
		MarginBottom:    ptr(margin),
		MarginLeft:      ptr(margin),
		MarginRight:     ptr(margin),
	})
	if err != nil {
		return nil, fmt.Errorf("print to pdf: %w", err)
	}
	out, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("read pdf stream: %w", err)
	}
	return out, nil
}

// Close shuts the browser down; safe to call when it never started.
func (r *ChromeRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var err error
	if r.browser != nil {
		err = r.browser.Close()
		r.browser = nil
	}
	if r.launch != nil {
		r.launch.Kill()
		r.launch = nil
	}
	return err
}

func ptr[T any](v T) *T { return &v }
