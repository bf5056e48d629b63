// Command strokelab analyzes pose dumps and prints graded stroke
// reports.
//
// Usage:
//
//	strokelab <pose-dump.json> [more dumps...]
//
// Each argument is analyzed independently; the report for every video
// is printed to stdout as JSON. Configuration follows the usual chain:
// defaults, then the YAML file named by STROKELAB_CONFIG, then
// STROKELAB_-prefixed environment variables.
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/courtside/strokelab/internal/adapters/clipexport"
	"github.com/courtside/strokelab/internal/adapters/posesource"
	"github.com/courtside/strokelab/internal/adapters/repository"
	app "github.com/courtside/strokelab/internal/app"
	"github.com/courtside/strokelab/internal/config"
	"github.com/courtside/strokelab/internal/domain/model"
	"github.com/courtside/strokelab/pkg/logger"
	"github.com/courtside/strokelab/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	readHeaderTimeout = 5 * time.Second
)

// strokeReport is the per-stroke slice of the printed report.
type strokeReport struct {
	ID         string             `json:"id"`
	Type       string             `json:"type"`
	Start      float64            `json:"start"`
	End        float64            `json:"end"`
	Confidence float64            `json:"confidence"`
	TotalScore float64            `json:"total_score"`
	SubMetrics map[string]float64 `json:"sub_metrics"`
}

// report is the printed JSON summary for one analyzed video.
type report struct {
	VideoID      string                   `json:"video_id"`
	Frames       int                      `json:"frames"`
	MotionPoints int                      `json:"motion_points"`
	Strokes      []strokeReport           `json:"strokes"`
	ForehandAvg  *float64                 `json:"forehand_avg,omitempty"`
	BackhandAvg  *float64                 `json:"backhand_avg,omitempty"`
	Overall      float64                  `json:"overall"`
	BestClips    map[string]model.ClipRef `json:"best_clips"`
}

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	dumps := os.Args[1:]
	if len(dumps) == 0 {
		os.Stderr.WriteString("usage: strokelab <pose-dump.json> [more dumps...]\n")
		os.Exit(2)
	}

	if cfg.MetricsAddr != "" {
		go serveMetrics(ctx, log, cfg.MetricsAddr)
	}

	var exporter clipexport.Exporter = clipexport.NewManifestExporter(
		clipexport.WithOutputDir(cfg.ExportDir),
	)
	svc := app.New(
		app.WithLogger(log),
		app.WithSource(posesource.NewFileSource()),
		app.WithExporter(exporter),
		app.WithStore(repository.NewMemoryStore(repository.WithCapacityHint(len(dumps)))),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithPhaseWeights(cfg.PhaseWeights),
	)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	exitCode := 0
	for _, dump := range dumps {
		result, err := svc.Analyze(ctx, dump, func(fraction float64) {
			log.Debug(ctx, "analysis progress",
				logger.String("video_id", dump),
				logger.Float64("fraction", fraction),
			)
		})
		if err != nil {
			log.Error(ctx, "analysis failed", logger.String("video_id", dump), logger.Error(err))
			exitCode = 1
			continue
		}
		if err := enc.Encode(buildReport(result)); err != nil {
			log.Error(ctx, "failed to print report", logger.String("video_id", dump), logger.Error(err))
			exitCode = 1
		}
	}
	os.Exit(exitCode)
}

func buildReport(result model.SessionResult) report {
	r := report{
		VideoID:      result.VideoID,
		Frames:       len(result.Frames),
		MotionPoints: len(result.MotionPoints),
		Strokes:      make([]strokeReport, 0, len(result.Strokes)),
		ForehandAvg:  result.Score.ForehandAvg,
		BackhandAvg:  result.Score.BackhandAvg,
		Overall:      result.Score.Overall,
		BestClips:    make(map[string]model.ClipRef, len(result.BestClips)),
	}

	totals := make(map[string]model.StrokeScore, len(result.Score.Strokes))
	for _, s := range result.Score.Strokes {
		totals[s.StrokeID] = s
	}
	for _, s := range result.Strokes {
		score := totals[s.ID]
		r.Strokes = append(r.Strokes, strokeReport{
			ID:         s.ID,
			Type:       string(s.Type),
			Start:      s.StartTime,
			End:        s.EndTime,
			Confidence: s.Confidence,
			TotalScore: score.TotalScore,
			SubMetrics: score.SubMetrics,
		})
	}
	for strokeType, clip := range result.BestClips {
		r.BestClips[string(strokeType)] = clip
	}
	return r
}

func serveMetrics(ctx context.Context, log logger.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	log.Info(ctx, "serving metrics", logger.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Warn(ctx, "metrics server stopped", logger.Error(err))
	}
}
