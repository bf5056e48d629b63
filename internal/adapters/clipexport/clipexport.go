// Package clipexport requests best-stroke clip exports from the video
// layer.
//
// The core never touches encoded media. The manifest implementation
// records the winning time range as a JSON manifest beside the source
// file; an actual trimming backend can consume those manifests out of
// band.
package clipexport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/courtside/strokelab/internal/domain/model"
)

// ErrWriteManifest wraps manifest write failures.
var ErrWriteManifest = errors.New("write clip manifest")

// Exporter extracts a sub-range of a source video. On success it
// returns a reference to the new artifact; on failure callers fall
// back to the original video identifier.
type Exporter interface {
	Export(ctx context.Context, videoID string, r model.ClipRange) (string, error)
}

// Manifest is the on-disk record of one requested clip.
type Manifest struct {
	Source    string    `json:"source"`
	Start     float64   `json:"start"`
	End       float64   `json:"end"`
	CreatedAt time.Time `json:"created_at"`
}

// Option applies a configuration option to the ManifestExporter.
type Option func(*ManifestExporter)

// WithOutputDir writes manifests into dir instead of beside the source.
func WithOutputDir(dir string) Option {
	return func(e *ManifestExporter) {
		if dir != "" {
			e.outputDir = dir
		}
	}
}

// ManifestExporter implements Exporter by writing clip manifests.
type ManifestExporter struct {
	outputDir string
	now       func() time.Time
}

// NewManifestExporter creates a manifest-writing exporter with
// configuration options.
func NewManifestExporter(opts ...Option) *ManifestExporter {
	e := &ManifestExporter{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export writes a manifest for the requested range and returns its
// path.
func (e *ManifestExporter) Export(ctx context.Context, videoID string, r model.ClipRange) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dir := e.outputDir
	if dir == "" {
		dir = filepath.Dir(videoID)
	}
	name := fmt.Sprintf("%s.clip_%.3f_%.3f.json", filepath.Base(videoID), r.Start, r.End)
	path := filepath.Join(dir, name)

	raw, err := json.MarshalIndent(Manifest{
		Source:    videoID,
		Start:     r.Start,
		End:       r.End,
		CreatedAt: e.now().UTC(),
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrWriteManifest, err)
	}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return "", fmt.Errorf("%w: %w", ErrWriteManifest, err)
	}
	return path, nil
}

// Noop is an Exporter that skips exporting and hands back the source
// video identifier, the whole-video fallback.
type Noop struct{}

// Export returns the original video identifier unchanged.
func (Noop) Export(_ context.Context, videoID string, _ model.ClipRange) (string, error) {
	return videoID, nil
}
