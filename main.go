package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"modul_ajar_generator/app"
	"modul_ajar_generator/config"
	"modul_ajar_generator/exporter"
	"modul_ajar_generator/generator"
	"modul_ajar_generator/logger"
	"modul_ajar_generator/markdown"
	"modul_ajar_generator/metrics"
	"modul_ajar_generator/server"
)

var (
	configPath string
	verbose    bool
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "modulajar",
		Short:         "Generate RPP / Modul Ajar documents with an LLM",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config/config.yaml", "path to config file (YAML or JSON); missing file means defaults")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logs")
	root.AddCommand(serveCmd(), generateCmd())
	return root
}

// deps is everything both commands build from the config.
type deps struct {
	cfg      config.Config
	log      *logger.Logger
	agent    *generator.Agent
	renderer *exporter.ChromeRenderer
	pipeline *exporter.Pipeline
}

func buildDeps(cmd *cobra.Command) (*deps, error) {
	load := config.LoadOptional
	if cmd.Root().PersistentFlags().Changed("config") {
		load = config.Load
	}
	cfg, err := load(configPath)
	if err != nil {
		return nil, err
	}
	mode := cfg.LogMode
	if verbose {
		mode = "dev"
	}
	log, err := logger.New(mode)
	if err != nil {
		return nil, err
	}

	client := generator.NewClient(cfg.LLMSettings())
	if !client.HasCredential() {
		log.Warn("no API key configured; generation requests will fail",
			"provider", cfg.LLM.Provider, "env", cfg.LLM.APIKeyEnv)
	}
	agent, err := generator.NewAgent(client)
	if err != nil {
		return nil, err
	}

	renderer := exporter.NewChromeRenderer(cfg.ChromeConfig(), log)
	pipeline, err := exporter.NewPipeline(renderer, cfg.PageLayout(), log)
	if err != nil {
		return nil, err
	}
	return &deps{cfg: cfg, log: log, agent: agent, renderer: renderer, pipeline: pipeline}, nil
}

func (d *deps) close() {
	if err := d.renderer.Close(); err != nil {
		d.log.Warn("close pdf renderer", "error", err)
	}
	d.log.Sync()
}

func serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web application",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := buildDeps(cmd)
			if err != nil {
				return err
			}
			defer d.close()

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			rec, err := metrics.NewRecorder(reg)
			if err != nil {
				return err
			}

			if d.cfg.LogMode == "prod" || d.cfg.LogMode == "production" {
				gin.SetMode(gin.ReleaseMode)
			}
			srv, err := server.New(server.Options{
				Generator:       d.agent,
				Exporter:        d.pipeline,
				Recorder:        rec,
				Gatherer:        reg,
				Logger:          d.log,
				GenerateTimeout: d.cfg.LLM.Timeout,
				ExportTimeout:   d.cfg.PDF.Timeout,
				SessionTTL:      d.cfg.SessionTTL,
				MaxSessions:     d.cfg.MaxSessions,
			})
			if err != nil {
				return err
			}

			listen := d.cfg.ServerAddr
			if addr != "" {
				listen = addr
			}
			if listen == "" {
				listen = ":8080"
			}
			httpSrv := &http.Server{
				Addr:              listen,
				Handler:           srv.Routes(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				d.log.Info("starting web server", "addr", listen)
				if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				d.log.Info("shutting down web server")
				return httpSrv.Shutdown(shutdownCtx)
			})
			return g.Wait()
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "http listen address (overrides config server_addr)")
	return cmd
}

func generateCmd() *cobra.Command {
	var (
		in      generator.LessonPlanInput
		format  string
		outDir  string
		preview bool
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate one lesson plan and export it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validFormat(format); err != nil {
				return err
			}
			d, err := buildDeps(cmd)
			if err != nil {
				return err
			}
			defer d.close()

			ctrl, err := app.NewController(d.agent, d.pipeline, app.WithLogger(d.log))
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if err := ctrl.Submit(ctx, in); err != nil {
				return failure(ctrl, err)
			}
			plan, _ := app.PlanOf(ctrl.Snapshot().State)

			if preview {
				out, err := markdown.Preview(plan.Text, 100)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), out)
			}

			var files []exporter.File
			if format == "txt" || format == "all" {
				f, err := ctrl.ExportText(ctx)
				if err != nil {
					return failure(ctrl, err)
				}
				files = append(files, f)
			}
			if format == "pdf" || format == "all" {
				f, err := ctrl.ExportPDF(ctx)
				if err != nil {
					return failure(ctrl, err)
				}
				files = append(files, f)
			}
			paths, err := writeFiles(outDir, files)
			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return err
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.Subject, "subject", "", "mata pelajaran")
	f.StringVar(&in.Phase, "phase", "", "fase")
	f.StringVar(&in.Grade, "grade", "", "kelas")
	f.StringVar(&in.Semester, "semester", "", "semester")
	f.StringVar(&in.Topic, "topic", "", "materi")
	f.StringVar(&in.TimeAllocation, "time", "", "alokasi waktu")
	f.StringVar(&in.LearningObjectives, "objectives", "", "tujuan pembelajaran")
	f.StringVar(&format, "format", "all", "export format: pdf, txt, all or none")
	f.StringVarP(&outDir, "out", "o", ".", "output directory")
	f.BoolVar(&preview, "preview", false, "render the plan in the terminal")
	return cmd
}

func validFormat(format string) error {
	switch format {
	case "pdf", "txt", "all", "none":
		return nil
	}
	return fmt.Errorf("--format must be pdf, txt, all or none, got %q", format)
}

// writeFiles stores exported files under dir and returns their paths.
func writeFiles(dir string, files []exporter.File) ([]string, error) {
	if len(files) == 0 {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(files))
	for _, f := range files {
		path := filepath.Join(dir, f.Name)
		if err := os.WriteFile(path, f.Body, 0o644); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// failure prefers the controller's user-facing message.
func failure(ctrl *app.Controller, err error) error {
	if f, ok := ctrl.Snapshot().State.(app.Failed); ok && f.Message != "" {
		return fmt.Errorf("%s (%w)", f.Message, err)
	}
	return err
}
