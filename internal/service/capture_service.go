package service

import (
	"context"
	"sync"

	"github.com/jcthewizard/Goalshare-sub000/internal/util"

	"go.uber.org/zap"
)

// CaptureState is the camera screen lifecycle. Published is terminal for one
// capture; Reset returns the machine to Live.
type CaptureState string

const (
	StateLive      CaptureState = "live"      // preview running, controls visible
	StateCapturing CaptureState = "capturing" // shutter or picker in flight
	StateFrozen    CaptureState = "frozen"    // an image is held, editing controls visible
	StatePublished CaptureState = "published" // image handed to the publish path
)

// Camera is the device capture surface. The shutter call is not cancelable:
// once TakePicture is in flight it will resolve or fail on its own schedule.
type Camera interface {
	TakePicture(ctx context.Context) (string, error)
	PausePreview()
	ResumePreview()
}

// PickResult mirrors the library picker outcome.
type PickResult struct {
	Canceled bool
	URI      string
}

type Picker interface {
	PickImage(ctx context.Context) (PickResult, error)
}

// Permissions is checked synchronously before any capture attempt; a denial
// mutates no state.
type Permissions interface {
	CameraAccess() error
	LibraryAccess() error
}

// CancelToken makes the dismiss-during-shutter race auditable. The shutter
// call cannot be aborted, so dismissal sets the token and every capture
// continuation re-checks it the instant the async call resolves, before
// committing any result.
type CancelToken struct {
	mu       sync.Mutex
	canceled bool
}

func (t *CancelToken) Cancel() {
	t.mu.Lock()
	t.canceled = true
	t.mu.Unlock()
}

func (t *CancelToken) Canceled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.canceled
}

func (t *CancelToken) Reset() {
	t.mu.Lock()
	t.canceled = false
	t.mu.Unlock()
}

// CaptureResult is what Confirm hands to the publish path.
type CaptureResult struct {
	URI           string
	Caption       string
	GoalID        string
	IsSignificant bool
}

// CaptureService drives the Live -> Capturing -> Frozen -> Published machine.
// Independent of persistence: it only ever produces a confirmed local URI.
type CaptureService struct {
	camera Camera
	picker Picker
	perms  Permissions
	log    *zap.Logger

	mu      sync.Mutex
	state   CaptureState
	heldURI string
	cancel  CancelToken
}

func NewCaptureService(camera Camera, picker Picker, perms Permissions, log *zap.Logger) *CaptureService {
	return &CaptureService{
		camera: camera,
		picker: picker,
		perms:  perms,
		log:    log,
		state:  StateLive,
	}
}

func (s *CaptureService) State() CaptureState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// HeldURI returns the frozen image, if any.
func (s *CaptureService) HeldURI() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.heldURI
}

// Capture triggers the shutter. On success the machine freezes on the
// captured image; if the user dismissed while the shutter was in flight, the
// resolved image is discarded and the live preview resumes instead.
func (s *CaptureService) Capture(ctx context.Context) error {
	if err := s.perms.CameraAccess(); err != nil {
		return util.ErrPermissionDenied
	}

	s.mu.Lock()
	if s.state != StateLive {
		s.mu.Unlock()
		return util.ErrCaptureBusy
	}
	s.state = StateCapturing
	s.cancel.Reset()
	s.mu.Unlock()

	s.camera.PausePreview()

	uri, err := s.camera.TakePicture(ctx)

	// The shutter has resolved; decide its fate before touching any state
	// the user can see.
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel.Canceled() {
		s.state = StateLive
		s.heldURI = ""
		s.camera.ResumePreview()
		return util.ErrCaptureCanceled
	}
	if err != nil {
		s.state = StateLive
		s.heldURI = ""
		s.camera.ResumePreview()
		s.log.Warn("shutter failed", zap.Error(err))
		return err
	}

	s.state = StateFrozen
	s.heldURI = uri
	return nil
}

// PickFromLibrary follows the same freeze-before-await, resume-on-cancel
// discipline as the shutter path.
func (s *CaptureService) PickFromLibrary(ctx context.Context) error {
	if err := s.perms.LibraryAccess(); err != nil {
		return util.ErrPermissionDenied
	}

	s.mu.Lock()
	if s.state != StateLive {
		s.mu.Unlock()
		return util.ErrCaptureBusy
	}
	s.state = StateCapturing
	s.cancel.Reset()
	s.mu.Unlock()

	s.camera.PausePreview()

	res, err := s.picker.PickImage(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel.Canceled() || (err == nil && res.Canceled) {
		s.state = StateLive
		s.heldURI = ""
		s.camera.ResumePreview()
		return util.ErrCaptureCanceled
	}
	if err != nil {
		s.state = StateLive
		s.heldURI = ""
		s.camera.ResumePreview()
		s.log.Warn("library pick failed", zap.Error(err))
		return err
	}

	s.state = StateFrozen
	s.heldURI = res.URI
	return nil
}

// Dismiss handles the "X": sets the cancellation token for any in-flight
// capture and, if an image is held, discards it and resumes the preview.
func (s *CaptureService) Dismiss() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancel.Cancel()
	if s.state == StateFrozen {
		s.state = StateLive
		s.heldURI = ""
		s.camera.ResumePreview()
	}
}

// Confirm hands the frozen image plus its metadata to the publish path.
func (s *CaptureService) Confirm(caption, goalID string, isSignificant bool) (CaptureResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateFrozen || s.heldURI == "" {
		return CaptureResult{}, util.ErrNothingHeld
	}

	result := CaptureResult{
		URI:           s.heldURI,
		Caption:       caption,
		GoalID:        goalID,
		IsSignificant: isSignificant,
	}
	s.state = StatePublished
	return result, nil
}

// Reset returns a published machine to the live preview.
func (s *CaptureService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = StateLive
	s.heldURI = ""
	s.cancel.Reset()
	s.camera.ResumePreview()
}
