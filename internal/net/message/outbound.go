package message

import (
	"encoding/json"
	"fmt"

	"github.com/fullweasel/server/internal/world"
)

// Hello is sent once when a client connects.
type Hello struct {
	Type        string            `json:"type"`
	Session     uint64            `json:"session"`
	Name        string            `json:"name"`
	Banner      string            `json:"banner"`
	Mode        string            `json:"mode"`
	Controls    []string          `json:"controls"`
	Catalog     map[string]string `json:"catalog"`
	DanceFrames []string          `json:"danceFrames"`
	HitFrames   []string          `json:"hitFrames"`
	Background  string            `json:"background"`
	Video       string            `json:"video,omitempty"`
	Slides      []string          `json:"slides"`
	SlideMs     int64             `json:"slideMs"`
	Track       string            `json:"track,omitempty"`
	Degraded    bool              `json:"degraded"`
}

// State wraps a snapshot for broadcast.
type State struct {
	Type  string         `json:"type"`
	Tick  uint64         `json:"tick"`
	State world.Snapshot `json:"state"`
}

// Track answers next_track.
type Track struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// Encode marshals an outbound message.
func Encode(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %T: %w", v, err)
	}
	return data, nil
}
