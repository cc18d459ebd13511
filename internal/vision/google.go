package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/time/rate"
)

// GoogleClient labels images with the Cloud Vision REST API.
type GoogleClient struct {
	apiKey     string
	maxLabels  int
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
}

// NewGoogleClient creates a new Cloud Vision client
func NewGoogleClient(apiKey string, maxLabels int) *GoogleClient {
	return &GoogleClient{
		apiKey:     apiKey,
		maxLabels:  maxLabels,
		httpClient: &http.Client{},
		baseURL:    "https://vision.googleapis.com/v1",
	}
}

// Cloud Vision request/response types
type annotateRequest struct {
	Requests []annotateImageRequest `json:"requests"`
}

type annotateImageRequest struct {
	Image    annotateImage     `json:"image"`
	Features []annotateFeature `json:"features"`
}

type annotateImage struct {
	Content string `json:"content"`
}

type annotateFeature struct {
	Type       string `json:"type"`
	MaxResults int    `json:"maxResults,omitempty"`
}

type annotateResponse struct {
	Responses []annotateImageResponse `json:"responses"`
}

type annotateImageResponse struct {
	LabelAnnotations []labelAnnotation `json:"labelAnnotations"`
	Error            *annotateStatus   `json:"error,omitempty"`
}

type labelAnnotation struct {
	Description string  `json:"description"`
	Score       float64 `json:"score"`
}

type annotateStatus struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// DetectLabels runs LABEL_DETECTION on the image.
func (c *GoogleClient) DetectLabels(ctx context.Context, img Image) ([]string, error) {
	if len(img.Data) == 0 {
		return nil, errEmptyImage
	}
	if err := wait(ctx, c.limiter); err != nil {
		return nil, err
	}

	reqBody := annotateRequest{
		Requests: []annotateImageRequest{{
			Image:    annotateImage{Content: base64.StdEncoding.EncodeToString(img.Data)},
			Features: []annotateFeature{{Type: "LABEL_DETECTION", MaxResults: c.maxLabels}},
		}},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/images:annotate", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", stripURL(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	// The body carries the error reason (BILLING_DISABLED, API_KEY_INVALID, ...)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, string(body))
	}

	var annotateResp annotateResponse
	if err := json.Unmarshal(body, &annotateResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(annotateResp.Responses) == 0 {
		return nil, fmt.Errorf("no annotation responses")
	}

	first := annotateResp.Responses[0]
	if first.Error != nil {
		return nil, fmt.Errorf("API error (%d): %s: %s", first.Error.Code, first.Error.Status, first.Error.Message)
	}

	labels := make([]string, 0, len(first.LabelAnnotations))
	for _, a := range first.LabelAnnotations {
		labels = append(labels, a.Description)
	}
	return labels, nil
}

// Source returns the provider name
func (c *GoogleClient) Source() Source {
	return SourceGoogle
}
