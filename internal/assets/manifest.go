package assets

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"go.uber.org/zap"
)

// Manifest is the role→URL mapping produced by the asset preparation step.
type Manifest struct {
	Sprites     []Sprite    `json:"sprites" jsonschema:"description=sprite URLs keyed by role"`
	Backgrounds Backgrounds `json:"backgrounds"`
	Music       []Media     `json:"music"`
}

type Sprite struct {
	Role string `json:"role" jsonschema:"required"`
	URL  string `json:"url" jsonschema:"required"`
}

type Backgrounds struct {
	MP4         []Media `json:"mp4"`
	PNGFallback []Media `json:"pngFallback"`
}

type Media struct {
	URL string `json:"url" jsonschema:"required"`
}

// FallbackManifest is the minimal built-in manifest used when the real one
// cannot be loaded.
func FallbackManifest() *Manifest {
	return &Manifest{
		Sprites: []Sprite{
			{Role: "dance_clean_01", URL: "/assets/sprites/dance/dexter_dance_01.png"},
			{Role: "dance_clean_02", URL: "/assets/sprites/dance/dexter_dance_02.png"},
			{Role: "dance_clean_03", URL: "/assets/sprites/dance/dexter_dance_03.png"},
			{Role: "title_screen", URL: "/assets/sprites/ui/Title_Screen.png"},
			{Role: "pwa_guide", URL: "/assets/sprites/ui/PWA_guide.png"},
		},
		Backgrounds: Backgrounds{MP4: []Media{}, PNGFallback: []Media{}},
		Music:       []Media{},
	}
}

// Load reads a manifest from a file path or an http(s) URL.
func Load(ctx context.Context, src string, client *http.Client) (*Manifest, error) {
	var raw []byte
	if isRemote(src) {
		if client == nil {
			client = http.DefaultClient
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
		if err != nil {
			return nil, fmt.Errorf("manifest request %s: %w", src, err)
		}
		req.Header.Set("Cache-Control", "no-store")
		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch manifest %s: %w", src, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("fetch manifest %s: status %d", src, resp.StatusCode)
		}
		raw, err = io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read manifest %s: %w", src, err)
		}
	} else {
		var err error
		raw, err = os.ReadFile(src)
		if err != nil {
			return nil, fmt.Errorf("read manifest %s: %w", src, err)
		}
	}
	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", src, err)
	}
	return &m, nil
}

// LoadOrFallback never fails: any load error yields the built-in manifest
// and degraded=true.
func LoadOrFallback(ctx context.Context, src string, client *http.Client, log *zap.Logger) (m *Manifest, degraded bool) {
	m, err := Load(ctx, src, client)
	if err != nil {
		log.Warn("manifest unavailable, using built-in fallback", zap.String("src", src), zap.Error(err))
		return FallbackManifest(), true
	}
	return m, false
}

// VideoURLs returns the background video candidates.
func (m *Manifest) VideoURLs() []string {
	return urls(m.Backgrounds.MP4)
}

// SlideURLs returns the PNG slideshow frames.
func (m *Manifest) SlideURLs() []string {
	return urls(m.Backgrounds.PNGFallback)
}

// TrackURLs returns the music tracks.
func (m *Manifest) TrackURLs() []string {
	return urls(m.Music)
}

func urls(media []Media) []string {
	out := make([]string, 0, len(media))
	for _, v := range media {
		if v.URL != "" {
			out = append(out, v.URL)
		}
	}
	return out
}

func isRemote(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}
