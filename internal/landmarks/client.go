package landmarks

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Martin-Chauke/Legend-Cut/pkg/imgutil"
)

// ============================================================================
// Landmark Detector Client - Face Mesh Sidecar Integration
// ============================================================================
//
// This client communicates with the standalone face-mesh sidecar service
// (MediaPipe FaceMesh behind a small HTTP wrapper) for per-frame facial
// landmark detection.
//
// API Flow:
// 1. POST /detect with a base64-encoded frame
// 2. Receive at most one face's normalized landmark array, or an empty list
//
// ============================================================================

// Client handles communication with the landmark detector service.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	log        *logrus.Logger
}

// NewClient creates a new detector client.
func NewClient(baseURL string, timeout time.Duration, log *logrus.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// detectRequest represents the detect endpoint request.
type detectRequest struct {
	Image string `json:"image"` // Base64 encoded frame
}

// detectResponse represents the detect endpoint response.
type detectResponse struct {
	Faces []detectedFace `json:"faces"`
}

type detectedFace struct {
	Landmarks []Point `json:"landmarks"`
}

// Health checks if the detector service is available.
func (c *Client) Health() error {
	url := fmt.Sprintf("%s/health", c.BaseURL)

	resp, err := c.HTTPClient.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// Detect submits a frame and returns the landmark mesh of the most-confident
// face, or (nil, nil) when the frame contains no detectable face.
func (c *Client) Detect(ctx context.Context, frame image.Image) (*Set, error) {
	url := fmt.Sprintf("%s/detect", c.BaseURL)

	encoded, err := imgutil.EncodeJPEG(frame, 90)
	if err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}

	reqBody := detectRequest{
		Image: base64.StdEncoding.EncodeToString(encoded),
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var result detectResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(result.Faces) == 0 {
		return nil, nil
	}

	set, err := NewSet(result.Faces[0].Landmarks)
	if err != nil {
		c.log.WithField("points", len(result.Faces[0].Landmarks)).Warn("Detector returned malformed mesh")
		return nil, fmt.Errorf("malformed detector response: %w", err)
	}

	return set, nil
}
