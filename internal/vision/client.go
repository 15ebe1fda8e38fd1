// Package vision implements the visual-analysis boundary: a client for the
// local YOLO inference sidecar, resilience and caching wrappers around any
// Detector, and the analyzer that turns raw detections into a vision
// verdict. Detector failures never escape this package as request failures;
// they degrade the evaluation to sensor-only.
package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/Rhyred/smart-triage-system/internal/domain"
)

// ClientConfig represents configuration for the inference sidecar client.
type ClientConfig struct {
	BaseURL             string        `json:"base_url"`
	Timeout             time.Duration `json:"timeout"`
	RateLimit           int           `json:"rate_limit"` // requests per second
	ConfidenceThreshold float64       `json:"confidence_threshold"`
	IoUThreshold        float64       `json:"iou_threshold"`
}

// YOLOClient talks to the local YOLO inference sidecar. The sidecar owns the
// model runtime; this client only ships image bytes and interprets the
// response, including which model variant produced it.
type YOLOClient struct {
	baseURL             string
	httpClient          *http.Client
	rateLimit           *rate.Limiter
	confidenceThreshold float64
	iouThreshold        float64
}

// NewYOLOClient creates a new inference sidecar client.
func NewYOLOClient(config ClientConfig) *YOLOClient {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	rps := config.RateLimit
	if rps <= 0 {
		rps = 5
	}
	conf := config.ConfidenceThreshold
	if conf == 0 {
		conf = 0.3
	}
	iou := config.IoUThreshold
	if iou == 0 {
		iou = 0.5
	}

	return &YOLOClient{
		baseURL:             config.BaseURL,
		httpClient:          &http.Client{Timeout: timeout},
		rateLimit:           rate.NewLimiter(rate.Limit(rps), rps),
		confidenceThreshold: conf,
		iouThreshold:        iou,
	}
}

type detectRequest struct {
	ImageData  string  `json:"imageData"` // base64-encoded image bytes
	Confidence float64 `json:"confidence"`
	IoU        float64 `json:"iou"`
}

type detectResponse struct {
	Detections []domain.Detection `json:"detections"`
	ModelType  string             `json:"modelType"`
	Error      string             `json:"error,omitempty"`
}

// Detect runs one inference round trip. Detections below the confidence
// threshold are dropped here so every downstream consumer sees the same
// filtered view.
func (c *YOLOClient) Detect(ctx context.Context, image []byte) (*domain.DetectionResult, error) {
	if len(image) == 0 {
		return nil, domain.NewDetectorError("detect", fmt.Errorf("empty image"))
	}
	if err := c.rateLimit.Wait(ctx); err != nil {
		return nil, domain.NewDetectorError("rate limit", err)
	}

	payload, err := json.Marshal(detectRequest{
		ImageData:  base64.StdEncoding.EncodeToString(image),
		Confidence: c.confidenceThreshold,
		IoU:        c.iouThreshold,
	})
	if err != nil {
		return nil, domain.NewDetectorError("encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/detect", bytes.NewReader(payload))
	if err != nil {
		return nil, domain.NewDetectorError("build request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.NewDetectorError("detect", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, domain.NewDetectorError("read response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, domain.NewDetectorError("detect",
			fmt.Errorf("sidecar returned status %d", resp.StatusCode))
	}

	var decoded detectResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, domain.NewDetectorError("decode response", err)
	}
	if decoded.Error != "" {
		return nil, domain.NewDetectorError("detect", fmt.Errorf("%s", decoded.Error))
	}

	modelType := domain.ModelType(decoded.ModelType)
	if !modelType.IsValid() {
		return nil, domain.NewDetectorError("detect",
			fmt.Errorf("sidecar reported unknown model type %q", decoded.ModelType))
	}

	filtered := make([]domain.Detection, 0, len(decoded.Detections))
	for _, d := range decoded.Detections {
		if d.Confidence >= c.confidenceThreshold {
			filtered = append(filtered, d)
		}
	}

	return &domain.DetectionResult{
		Detections: filtered,
		ModelType:  modelType,
	}, nil
}
