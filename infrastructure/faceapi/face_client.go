package faceapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"face-attendance/domain/services"
)

// FaceClient communicates with the face detection service
type FaceClient struct {
	baseURL    string
	detectURI  string
	healthURI  string
	httpClient *http.Client
}

type Config struct {
	BaseURL   string
	DetectURI string
	HealthURI string
	Timeout   time.Duration
}

// DetectRequest is the body of a detect call
type DetectRequest struct {
	Base64Image string `json:"base64_image"`
}

// DetectResponse is the detector's envelope. Data is nil when no face was found.
type DetectResponse struct {
	StatusCode int                       `json:"status_code"`
	Message    string                    `json:"message"`
	Data       *services.DetectionResult `json:"data"`
}

// HealthResponse is the response from health check
type HealthResponse struct {
	Status string `json:"status"`
}

// NewFaceClient creates a new face API client
func NewFaceClient(cfg Config) *FaceClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &FaceClient{
		baseURL:   cfg.BaseURL,
		detectURI: cfg.DetectURI,
		healthURI: cfg.HealthURI,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

var _ services.FaceDetector = (*FaceClient)(nil)

// Detect extracts the face embedding and quality metadata from a base64 image.
func (c *FaceClient) Detect(ctx context.Context, base64Image string) (*services.DetectionResult, error) {
	jsonBody, err := json.Marshal(DetectRequest{Base64Image: base64Image})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.detectURI, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to call face API: %w", services.ErrDetectionUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", services.ErrDetectionUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: face API error (status %d): %s", services.ErrDetectionUnavailable, resp.StatusCode, truncate(body, 200))
	}

	var result DetectResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: failed to parse response: %w", services.ErrDetectionUnavailable, err)
	}

	if result.Data == nil || !hasSignal(result.Data.Feature) {
		return nil, services.ErrNoFaceDetected
	}

	return result.Data, nil
}

// Health checks if the face API is healthy
func (c *FaceClient) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+c.healthURI, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call health API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed with status %d", resp.StatusCode)
	}

	var result HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err == nil && result.Status != "" && result.Status != "ok" {
		return fmt.Errorf("face API reports status %q", result.Status)
	}
	return nil
}

// hasSignal reports whether the feature has at least one non-zero component.
func hasSignal(feature []float64) bool {
	for _, v := range feature {
		if v != 0 {
			return true
		}
	}
	return false
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
