package disease

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"sync/atomic"
)

// StillCamera is a Camera whose stream always shows one image file. It
// stands in for a webcam on machines without one.
type StillCamera struct {
	Path string
}

func (s StillCamera) Open(ctx context.Context) (Stream, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", s.Path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", s.Path, err)
	}
	tr := &stillTrack{}
	tr.live.Store(true)
	return &stillStream{img: img, track: tr}, nil
}

type stillStream struct {
	img   image.Image
	track *stillTrack
}

func (s *stillStream) Frame() (image.Image, error) {
	if !s.track.Live() {
		return nil, fmt.Errorf("track stopped")
	}
	return s.img, nil
}

func (s *stillStream) Tracks() []Track { return []Track{s.track} }

type stillTrack struct {
	live atomic.Bool
}

func (t *stillTrack) Stop()      { t.live.Store(false) }
func (t *stillTrack) Live() bool { return t.live.Load() }
