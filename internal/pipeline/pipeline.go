// Package pipeline runs the per-frame hair compositing flow: resolve and
// load the requested asset, detect face landmarks, estimate head pose, infer
// the hair placement region, then transform and blend the asset onto the
// frame.
package pipeline

import (
	"context"
	"errors"
	"image"

	"github.com/sirupsen/logrus"

	"github.com/Martin-Chauke/Legend-Cut/internal/haircuts"
	"github.com/Martin-Chauke/Legend-Cut/internal/landmarks"
	"github.com/Martin-Chauke/Legend-Cut/internal/overlay"
	"github.com/Martin-Chauke/Legend-Cut/internal/pose"
	"github.com/Martin-Chauke/Legend-Cut/internal/region"
	"github.com/Martin-Chauke/Legend-Cut/internal/session"
)

// ErrAssetNotFound reports a frame request naming a haircut that does not
// exist in any category. Raised before detection runs, so clients learn about
// bad asset names even when no face is in frame.
var ErrAssetNotFound = errors.New("haircut asset not found")

// Request is one frame to composite.
type Request struct {
	Frame     *image.NRGBA
	Gender    string
	Haircut   string
	SessionID string
}

// Result is the composited frame plus whether a face drove the placement.
type Result struct {
	Frame        *image.NRGBA
	FaceDetected bool
}

// Processor composites haircuts onto camera frames.
type Processor struct {
	store    *haircuts.Store
	cache    *haircuts.Cache
	detector landmarks.Detector
	sessions *session.Store
	log      *logrus.Logger
}

func New(store *haircuts.Store, cache *haircuts.Cache, detector landmarks.Detector, sessions *session.Store, log *logrus.Logger) *Processor {
	return &Processor{
		store:    store,
		cache:    cache,
		detector: detector,
		sessions: sessions,
		log:      log,
	}
}

// Process composites the requested haircut onto the frame. The input frame
// passes through unchanged when no face is found or when the detector is
// unreachable; only a missing asset is a hard error.
func (p *Processor) Process(ctx context.Context, req Request) (Result, error) {
	path, category, err := p.store.Resolve(req.Gender, req.Haircut)
	if err != nil {
		if errors.Is(err, haircuts.ErrNotFound) {
			return Result{}, ErrAssetNotFound
		}
		return Result{}, err
	}
	asset, err := p.cache.Load(category, path)
	if err != nil {
		if errors.Is(err, haircuts.ErrNotFound) {
			return Result{}, ErrAssetNotFound
		}
		return Result{}, err
	}

	set, err := p.detector.Detect(ctx, req.Frame)
	if err != nil {
		p.log.WithError(err).Warn("Landmark detection failed, passing frame through")
		return Result{Frame: req.Frame, FaceDetected: false}, nil
	}
	if set == nil {
		return Result{Frame: req.Frame, FaceDetected: false}, nil
	}

	bounds := req.Frame.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	headPose := pose.Estimate(set, width, height)

	hair, err := region.HairRegion(set, width, height)
	if err != nil {
		p.log.WithError(err).Warn("Hair region inference failed")
		return Result{Frame: req.Frame, FaceDetected: true}, nil
	}

	adj, ok := p.sessions.Get(req.SessionID)
	if ok {
		p.sessions.Touch(req.SessionID)
	}

	bitmap, err := overlay.Transform(asset.Image, headPose, hair, adj)
	if err != nil {
		p.log.WithError(err).WithFields(logrus.Fields{
			"haircut": req.Haircut,
			"region":  hair,
		}).Warn("Overlay transform failed, compositing untransformed asset")
		bitmap = asset.Image
	}

	out := overlay.Composite(req.Frame, bitmap, hair, adj, true)
	return Result{Frame: out, FaceDetected: true}, nil
}
