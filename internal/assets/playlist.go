package assets

import "math/rand"

// Playlist picks music tracks at random, never repeating the current one
// back to back.
type Playlist struct {
	tracks  []string
	current int
}

func NewPlaylist(tracks []string) *Playlist {
	return &Playlist{tracks: append([]string(nil), tracks...), current: -1}
}

// Next advances to a random track other than the current one. It returns ""
// when there is no music.
func (p *Playlist) Next(rng *rand.Rand) string {
	switch len(p.tracks) {
	case 0:
		return ""
	case 1:
		p.current = 0
		return p.tracks[0]
	}
	idx := rng.Intn(len(p.tracks))
	for idx == p.current {
		idx = rng.Intn(len(p.tracks))
	}
	p.current = idx
	return p.tracks[idx]
}

// Current returns the track last returned by Next.
func (p *Playlist) Current() string {
	if p.current < 0 {
		return ""
	}
	return p.tracks[p.current]
}

func (p *Playlist) Len() int {
	return len(p.tracks)
}
