package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/jcthewizard/Goalshare-sub000/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeCamera resolves the shutter when released, mimicking the non-cancelable
// device call.
type fakeCamera struct {
	mu       sync.Mutex
	shutter  chan struct{}
	uri      string
	err      error
	paused   int
	resumed  int
	snapping chan struct{}
}

func newFakeCamera(uri string) *fakeCamera {
	return &fakeCamera{uri: uri}
}

func (c *fakeCamera) TakePicture(ctx context.Context) (string, error) {
	if c.snapping != nil {
		close(c.snapping)
	}
	if c.shutter != nil {
		<-c.shutter
	}
	return c.uri, c.err
}

func (c *fakeCamera) PausePreview() {
	c.mu.Lock()
	c.paused++
	c.mu.Unlock()
}

func (c *fakeCamera) ResumePreview() {
	c.mu.Lock()
	c.resumed++
	c.mu.Unlock()
}

func (c *fakeCamera) resumeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resumed
}

type fakePicker struct {
	res PickResult
	err error
}

func (p *fakePicker) PickImage(ctx context.Context) (PickResult, error) {
	return p.res, p.err
}

type fakePerms struct {
	cameraErr  error
	libraryErr error
}

func (p *fakePerms) CameraAccess() error  { return p.cameraErr }
func (p *fakePerms) LibraryAccess() error { return p.libraryErr }

func newTestCaptureService(camera *fakeCamera, picker *fakePicker, perms *fakePerms) *CaptureService {
	if picker == nil {
		picker = &fakePicker{}
	}
	if perms == nil {
		perms = &fakePerms{}
	}
	return NewCaptureService(camera, picker, perms, zap.NewNop())
}

func TestCaptureFreezesOnShutterSuccess(t *testing.T) {
	camera := newFakeCamera("file:///tmp/shot.jpg")
	svc := newTestCaptureService(camera, nil, nil)

	require.NoError(t, svc.Capture(context.Background()))
	assert.Equal(t, StateFrozen, svc.State())
	assert.Equal(t, "file:///tmp/shot.jpg", svc.HeldURI())
}

func TestCaptureDeniedPermissionMutatesNothing(t *testing.T) {
	camera := newFakeCamera("file:///tmp/shot.jpg")
	svc := newTestCaptureService(camera, nil, &fakePerms{cameraErr: errors.New("denied")})

	err := svc.Capture(context.Background())
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
	assert.Equal(t, StateLive, svc.State())
	assert.Zero(t, camera.paused)
}

func TestCaptureShutterFailureReturnsToLive(t *testing.T) {
	camera := newFakeCamera("")
	camera.err = errors.New("sensor fault")
	svc := newTestCaptureService(camera, nil, nil)

	err := svc.Capture(context.Background())
	assert.Error(t, err)
	assert.Equal(t, StateLive, svc.State())
	assert.Empty(t, svc.HeldURI())
	assert.Equal(t, 1, camera.resumeCount())
}

func TestDismissDuringShutterDiscardsResolvedImage(t *testing.T) {
	camera := newFakeCamera("file:///tmp/late.jpg")
	camera.shutter = make(chan struct{})
	camera.snapping = make(chan struct{})
	svc := newTestCaptureService(camera, nil, nil)

	done := make(chan error, 1)
	go func() { done <- svc.Capture(context.Background()) }()

	// Wait until the shutter call is in flight, then dismiss.
	<-camera.snapping
	svc.Dismiss()
	close(camera.shutter)

	err := <-done
	assert.ErrorIs(t, err, util.ErrCaptureCanceled)
	assert.Equal(t, StateLive, svc.State())
	assert.Empty(t, svc.HeldURI(), "the late image must be discarded, not frozen")
	assert.Equal(t, 1, camera.resumeCount())
}

func TestCaptureWhileBusyRejected(t *testing.T) {
	camera := newFakeCamera("file:///tmp/shot.jpg")
	camera.shutter = make(chan struct{})
	camera.snapping = make(chan struct{})
	svc := newTestCaptureService(camera, nil, nil)

	done := make(chan error, 1)
	go func() { done <- svc.Capture(context.Background()) }()
	<-camera.snapping

	assert.ErrorIs(t, svc.Capture(context.Background()), util.ErrCaptureBusy)

	close(camera.shutter)
	require.NoError(t, <-done)
}

func TestPickFromLibraryCanceledByUser(t *testing.T) {
	camera := newFakeCamera("")
	picker := &fakePicker{res: PickResult{Canceled: true}}
	svc := newTestCaptureService(camera, picker, nil)

	err := svc.PickFromLibrary(context.Background())
	assert.ErrorIs(t, err, util.ErrCaptureCanceled)
	assert.Equal(t, StateLive, svc.State())
}

func TestConfirmPublishesHeldImage(t *testing.T) {
	camera := newFakeCamera("file:///tmp/shot.jpg")
	svc := newTestCaptureService(camera, nil, nil)
	require.NoError(t, svc.Capture(context.Background()))

	result, err := svc.Confirm("did the thing", "g1", true)
	require.NoError(t, err)
	assert.Equal(t, "file:///tmp/shot.jpg", result.URI)
	assert.Equal(t, "g1", result.GoalID)
	assert.True(t, result.IsSignificant)
	assert.Equal(t, StatePublished, svc.State())

	svc.Reset()
	assert.Equal(t, StateLive, svc.State())
	assert.Empty(t, svc.HeldURI())
}

func TestConfirmWithNothingHeld(t *testing.T) {
	svc := newTestCaptureService(newFakeCamera(""), nil, nil)

	_, err := svc.Confirm("", "g1", false)
	assert.ErrorIs(t, err, util.ErrNothingHeld)
}

func TestDismissWhileFrozenResumesPreview(t *testing.T) {
	camera := newFakeCamera("file:///tmp/shot.jpg")
	svc := newTestCaptureService(camera, nil, nil)
	require.NoError(t, svc.Capture(context.Background()))

	svc.Dismiss()
	assert.Equal(t, StateLive, svc.State())
	assert.Empty(t, svc.HeldURI())
	assert.Equal(t, 1, camera.resumeCount())
}
