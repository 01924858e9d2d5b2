package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/2beens/fittrack/internal/stats"

	"gopkg.in/yaml.v3"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

type Report struct {
	Username    string                `json:"username" yaml:"username"`
	Today       string                `json:"today" yaml:"today"`
	Summary     stats.Summary         `json:"summary" yaml:"summary"`
	Monthly     []stats.MonthRecord   `json:"monthly" yaml:"monthly"`
	Exercises   []stats.ExerciseCount `json:"exercises" yaml:"exercises"`
	GeneratedAt time.Time             `json:"generated_at" yaml:"generated_at"`
}

type Builder struct {
	loader *Loader
	engine *stats.Engine
	now    func() time.Time
}

func NewBuilder(loader *Loader) *Builder {
	return &Builder{
		loader: loader,
		engine: stats.NewEngine(),
		now:    time.Now,
	}
}

// Build computes all three views as of today (a UTC calendar date).
func (b *Builder) Build(ctx context.Context, username string, today time.Time) (*Report, error) {
	userID, err := b.loader.UserID(ctx, username)
	if err != nil {
		return nil, err
	}

	snap, err := b.loader.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &Report{
		Username:    username,
		Today:       today.UTC().Format(stats.DateLayout),
		Summary:     b.engine.Summary(*snap, today),
		Monthly:     b.engine.MonthlyTrend(*snap, today),
		Exercises:   b.engine.ExerciseFrequency(*snap),
		GeneratedAt: b.now().UTC(),
	}, nil
}

func Write(w io.Writer, report *Report, format string) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}
