package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/NikkyAI/pentagame-server/game/board"
)

// LoadLayout reads a board layout from a JSON file, or returns the
// compiled-in standard Pentagame board when path is empty. The returned
// layout is already validated.
func LoadLayout(path string) (*board.Layout, error) {
	if path == "" {
		return board.DefaultLayout(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout file: %w", err)
	}

	var layout board.Layout
	if err := json.Unmarshal(data, &layout); err != nil {
		return nil, fmt.Errorf("failed to parse layout file %s: %w", path, err)
	}

	if err := layout.Validate(); err != nil {
		return nil, fmt.Errorf("layout file %s: %w", path, err)
	}

	return &layout, nil
}
