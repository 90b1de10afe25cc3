package spotify

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/desertthunder/spotimine/internal/shared"
)

// SaveSnapshot writes p as indented JSON to path.
func SaveSnapshot(path string, p *Playlist) error {
	data, err := shared.MarshalJSON(p, true)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return shared.WriteFileAtomic(path, data, 0o644)
}

// LoadSnapshot reads a playlist written by [SaveSnapshot].
func LoadSnapshot(path string) (*Playlist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read snapshot: %v", shared.ErrConfigIO, err)
	}

	var p Playlist
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: snapshot %s: %v", shared.ErrParse, path, err)
	}
	if p.Name == "" {
		return nil, fmt.Errorf("%w: snapshot %s has no playlist name", shared.ErrParse, path)
	}
	return &p, nil
}
