package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/yourusername/sharpeye/internal/models"
)

// GameLogFile is the on-disk export of the feature store
type GameLogFile struct {
	Players []models.PlayerGameLog `json:"players"`
	Teams   []models.TeamGameLog   `json:"teams"`
}

// FileGameLogRepository serves game logs from a JSON export. It re-reads the
// file on every call so a refresh picks up a new export.
type FileGameLogRepository struct {
	path string
}

// NewFileGameLogRepository creates a file backed game log repository
func NewFileGameLogRepository(path string) GameLogRepository {
	return &FileGameLogRepository{path: path}
}

func (r *FileGameLogRepository) read(ctx context.Context) (*GameLogFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read game log file: %w", err)
	}
	var f GameLogFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse game log file %s: %w", r.path, err)
	}
	return &f, nil
}

// PlayerGameLogs returns player logs on or after since
func (r *FileGameLogRepository) PlayerGameLogs(ctx context.Context, since time.Time) ([]models.PlayerGameLog, error) {
	f, err := r.read(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.PlayerGameLog, 0, len(f.Players))
	for _, g := range f.Players {
		if !g.GameDate.Before(since) {
			out = append(out, g)
		}
	}
	return out, nil
}

// TeamGameLogs returns team logs on or after since
func (r *FileGameLogRepository) TeamGameLogs(ctx context.Context, since time.Time) ([]models.TeamGameLog, error) {
	f, err := r.read(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.TeamGameLog, 0, len(f.Teams))
	for _, g := range f.Teams {
		if !g.GameDate.Before(since) {
			out = append(out, g)
		}
	}
	return out, nil
}
