package disease

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"sync"

	"cropwise/models"
)

type State string

const (
	StateIdle      State = "idle"
	StateStreaming State = "streaming"
	StateCaptured  State = "captured"
	StateAnalyzing State = "analyzing"
	StateResult    State = "result"
	StateError     State = "error"
)

// CaptureFilename and CaptureQuality describe the still produced by Capture.
const (
	CaptureFilename = "captured-image.jpg"
	CaptureQuality  = 80
)

var (
	ErrNoStream = errors.New("no camera stream")
	ErrNoImage  = errors.New("no image selected")
)

// Track is one media track of a camera stream.
type Track interface {
	Stop()
	Live() bool
}

type Stream interface {
	Frame() (image.Image, error)
	Tracks() []Track
}

type Camera interface {
	Open(ctx context.Context) (Stream, error)
}

type Analyzer interface {
	Analyze(ctx context.Context, filename string, image io.Reader) (*models.DiseaseDetection, error)
}

// Capture walks a photo through idle → streaming → captured → analyzing →
// result or error. Every path out of streaming stops the camera tracks.
type Capture struct {
	camera   Camera
	analyzer Analyzer

	mu       sync.Mutex
	state    State
	stream   Stream
	image    []byte
	filename string
	result   *models.DiseaseDetection
	apiErr   *models.APIError
}

func NewCapture(camera Camera, analyzer Analyzer) *Capture {
	return &Capture{camera: camera, analyzer: analyzer, state: StateIdle}
}

func (c *Capture) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Capture) Result() *models.DiseaseDetection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}

func (c *Capture) Err() *models.APIError {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.apiErr
}

// Image returns the captured or selected image bytes.
func (c *Capture) Image() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.image
}

// ActiveTracks counts the live tracks of the current stream.
func (c *Capture) ActiveTracks() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stream == nil {
		return 0
	}
	n := 0
	for _, t := range c.stream.Tracks() {
		if t.Live() {
			n++
		}
	}
	return n
}

// Start opens the camera. A refused camera puts the flow in the error state.
func (c *Capture) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()
	c.apiErr = nil
	c.result = nil

	stream, err := c.camera.Open(ctx)
	if err != nil {
		c.state = StateError
		c.apiErr = &models.APIError{
			Message: "Unable to access camera. Please check permissions.",
			Code:    CodeCameraAccess,
		}
		return &Error{Code: CodeCameraAccess, Message: c.apiErr.Message, Err: err}
	}
	c.stream = stream
	c.state = StateStreaming
	return nil
}

// Capture grabs one frame as a JPEG and releases the camera. Without a
// stream it does nothing and returns ErrNoStream.
func (c *Capture) Capture() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stream == nil {
		return ErrNoStream
	}
	frame, err := c.stream.Frame()
	if err != nil {
		c.stopLocked()
		c.fail(CodeCameraAccess, fmt.Sprintf("Failed to capture frame: %v", err))
		return err
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, frame, &jpeg.Options{Quality: CaptureQuality}); err != nil {
		c.stopLocked()
		c.fail(CodeUnknown, fmt.Sprintf("Failed to encode frame: %v", err))
		return err
	}

	c.stopLocked()
	c.image = buf.Bytes()
	c.filename = CaptureFilename
	c.state = StateCaptured
	return nil
}

// Select uses an image picked from disk instead of the camera.
func (c *Capture) Select(filename string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()
	c.image = data
	c.filename = filename
	c.result = nil
	c.apiErr = nil
	c.state = StateCaptured
}

// Analyze sends the captured image off. The previous result and error are
// cleared first; a failure never leaves a result behind.
func (c *Capture) Analyze(ctx context.Context) (*models.DiseaseDetection, error) {
	c.mu.Lock()
	if c.image == nil {
		c.mu.Unlock()
		return nil, ErrNoImage
	}
	data, name := c.image, c.filename
	c.state = StateAnalyzing
	c.result = nil
	c.apiErr = nil
	c.mu.Unlock()

	res, err := c.analyzer.Analyze(ctx, name, bytes.NewReader(data))

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		var derr *Error
		if errors.As(err, &derr) {
			c.fail(derr.Code, derr.Message)
		} else {
			c.fail(CodeUnknown, err.Error())
		}
		return nil, err
	}
	c.result = res
	c.state = StateResult
	return res, nil
}

// Stop releases the camera, keeping any captured image.
func (c *Capture) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
	if c.state == StateStreaming {
		c.state = StateIdle
	}
}

// Reset releases the camera and forgets everything.
func (c *Capture) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
	c.image = nil
	c.filename = ""
	c.result = nil
	c.apiErr = nil
	c.state = StateIdle
}

func (c *Capture) stopLocked() {
	if c.stream == nil {
		return
	}
	for _, t := range c.stream.Tracks() {
		t.Stop()
	}
	c.stream = nil
}

func (c *Capture) fail(code, msg string) {
	c.state = StateError
	c.apiErr = &models.APIError{Message: msg, Code: code}
}
