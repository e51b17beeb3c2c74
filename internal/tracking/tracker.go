package tracking

import "gocv.io/x/gocv"

// Tracker defines the interface for hand tracking implementations.
type Tracker interface {
	// Track analyzes a video frame and returns one landmark Frame per
	// detected hand. Returns an empty slice if no hands are detected.
	Track(frame *gocv.Mat) ([]Frame, error)

	// Close releases any resources held by the tracker.
	Close() error
}

// Config holds configuration options forwarded to the tracking backend.
type Config struct {
	// MaxHands is the maximum number of hands to track (default: 2).
	MaxHands int

	// MinDetectionConfidence is the minimum detection confidence (0.0-1.0).
	MinDetectionConfidence float64

	// MinTrackingConfidence is the minimum tracking confidence (0.0-1.0).
	MinTrackingConfidence float64
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MaxHands:               2,
		MinDetectionConfidence: 0.5,
		MinTrackingConfidence:  0.5,
	}
}
