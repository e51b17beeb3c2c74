// Package capture reads video frames from a camera device through GoCV and
// gates the detection pipeline behind a cheap motion check.
package capture

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"gocv.io/x/gocv"
)

// Capture defaults. Resolution is kept low on purpose: landmark tracking does
// not benefit from more pixels and the blur/diff motion gate gets slower.
const (
	DefaultWidth  = 640
	DefaultHeight = 480
)

// ErrCameraClosed is returned when reading from a camera that is not open.
var ErrCameraClosed = errors.New("camera is not open")

// Camera abstracts a frame source so tests and headless environments can
// substitute a synthetic one.
type Camera interface {
	Open() error
	Close() error
	ReadFrame() (*gocv.Mat, error)
	SetFPS(fps int)
	FPS() int
	IsOpen() bool
}

type device struct {
	mu       sync.Mutex
	deviceID int
	width    int
	height   int
	fps      int
	cap      *gocv.VideoCapture
	log      zerolog.Logger
}

// NewCamera creates a Camera for the given device ID at the default
// resolution. The camera starts closed; Open acquires the device.
func NewCamera(deviceID, fps int, log zerolog.Logger) Camera {
	return &device{
		deviceID: deviceID,
		width:    DefaultWidth,
		height:   DefaultHeight,
		fps:      fps,
		log:      log.With().Str("component", "camera").Int("device", deviceID).Logger(),
	}
}

func (d *device) Open() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cap != nil {
		return nil
	}
	cap, err := gocv.OpenVideoCapture(d.deviceID)
	if err != nil {
		return fmt.Errorf("opening camera %d: %w", d.deviceID, err)
	}
	cap.Set(gocv.VideoCaptureFrameWidth, float64(d.width))
	cap.Set(gocv.VideoCaptureFrameHeight, float64(d.height))
	cap.Set(gocv.VideoCaptureFPS, float64(d.fps))
	d.cap = cap
	d.log.Info().Int("width", d.width).Int("height", d.height).Int("fps", d.fps).Msg("camera opened")
	return nil
}

func (d *device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cap == nil {
		return nil
	}
	err := d.cap.Close()
	d.cap = nil
	if err != nil {
		return fmt.Errorf("closing camera %d: %w", d.deviceID, err)
	}
	return nil
}

// ReadFrame grabs one frame. The caller owns the returned Mat and must Close
// it.
func (d *device) ReadFrame() (*gocv.Mat, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cap == nil {
		return nil, ErrCameraClosed
	}
	mat := gocv.NewMat()
	if ok := d.cap.Read(&mat); !ok {
		mat.Close()
		return nil, fmt.Errorf("camera %d: read failed", d.deviceID)
	}
	if mat.Empty() {
		mat.Close()
		return nil, fmt.Errorf("camera %d: empty frame", d.deviceID)
	}
	return &mat, nil
}

// SetFPS adjusts the capture rate, used when the pipeline flips between idle
// and active mode. Non-positive values are ignored.
func (d *device) SetFPS(fps int) {
	if fps <= 0 {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fps = fps
	if d.cap != nil {
		d.cap.Set(gocv.VideoCaptureFPS, float64(fps))
	}
}

func (d *device) FPS() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fps
}

func (d *device) IsOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cap != nil
}
