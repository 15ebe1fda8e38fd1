package domain

import (
	"context"
)

// SensorProvider supplies one fresh sensor reading per call.
// A failed read returns a *HardwareUnavailableError; no partial or
// simulated reading is silently substituted.
type SensorProvider interface {
	Read(ctx context.Context) (*SensorReading, error)
}

// Detector maps an image to labeled bounding-box detections. The result is
// tagged with the detector variant so label semantics stay unambiguous.
// Failures return a *DetectorError and are absorbed by the vision layer.
type Detector interface {
	Detect(ctx context.Context, image []byte) (*DetectionResult, error)
}
