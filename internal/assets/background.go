package assets

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrNoVideos means no background video could be played; callers show
	// the PNG slideshow instead.
	ErrNoVideos = errors.New("no playable background video")
	// ErrProbeTimeout is recorded when a probe gives no signal in time.
	ErrProbeTimeout = errors.New("video probe timed out")
)

const (
	BackgroundVideo = "video"
	BackgroundPNG   = "png"
)

// Prober checks whether a background video can be played.
type Prober interface {
	Probe(ctx context.Context, url string) error
}

// SourceProber probes site-relative URLs against the public directory and
// absolute URLs with an HTTP HEAD request.
type SourceProber struct {
	Root   string
	Client *http.Client
}

func (p *SourceProber) Probe(ctx context.Context, url string) error {
	if isRemote(url) {
		client := p.Client
		if client == nil {
			client = http.DefaultClient
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		resp.Body.Close()
		if resp.StatusCode/100 != 2 {
			return fmt.Errorf("status %d", resp.StatusCode)
		}
		if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "video/") {
			return fmt.Errorf("content type %q", ct)
		}
		return nil
	}
	path := filepath.Join(p.Root, filepath.FromSlash(strings.TrimPrefix(url, "/")))
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() || info.Size() == 0 {
		return fmt.Errorf("%s is not a playable file", path)
	}
	return ctx.Err()
}

// Background is the chosen backdrop for the session.
type Background struct {
	Mode  string `json:"mode"`
	Video string `json:"video,omitempty"`
}

// ChooseBackground tries candidate videos in random order and returns the
// first that probes successfully. Each probe is abandoned after timeout and
// counted as a failure. With no playable video the PNG mode is returned
// together with ErrNoVideos.
func ChooseBackground(ctx context.Context, videos []string, p Prober, timeout time.Duration, rng *rand.Rand, log *zap.Logger) (Background, error) {
	order := append([]string(nil), videos...)
	rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	for _, url := range order {
		err := probeWithTimeout(ctx, p, url, timeout)
		if err == nil {
			return Background{Mode: BackgroundVideo, Video: url}, nil
		}
		log.Debug("background video rejected", zap.String("url", url), zap.Error(err))
		if ctx.Err() != nil {
			break
		}
	}
	return Background{Mode: BackgroundPNG}, ErrNoVideos
}

func probeWithTimeout(ctx context.Context, p Prober, url string, timeout time.Duration) error {
	pctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- p.Probe(pctx, url) }()

	select {
	case err := <-done:
		return err
	case <-pctx.Done():
		if errors.Is(pctx.Err(), context.DeadlineExceeded) {
			return ErrProbeTimeout
		}
		return pctx.Err()
	}
}

// Slideshow cycles the PNG fallback frames at a fixed interval.
type Slideshow struct {
	Frames   []string      `json:"frames"`
	Interval time.Duration `json:"-"`
}

// FrameAt returns the current and previous frame indices after elapsed
// time. Both are 0 before the first switch or when there are no frames.
func (s Slideshow) FrameAt(elapsed time.Duration) (cur, prev int) {
	n := len(s.Frames)
	if n == 0 || s.Interval <= 0 || elapsed < s.Interval {
		return 0, 0
	}
	steps := int(elapsed / s.Interval)
	cur = steps % n
	prev = (steps - 1) % n
	return cur, prev
}
