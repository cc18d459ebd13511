package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/time/rate"
)

const defaultOpenAIModel = "gpt-4o"

const labelPrompt = `List the objects, car parts, materials, and visible conditions or damage in this photo.
Respond with ONLY a JSON array of short lowercase labels, most prominent first, for example:
["car", "bumper", "scratch", "metal"]`

// OpenAIClient labels images with an OpenAI vision-capable chat model.
type OpenAIClient struct {
	apiKey     string
	model      string
	maxLabels  int
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
}

// NewOpenAIClient creates a new OpenAI client. An empty model selects gpt-4o.
func NewOpenAIClient(apiKey, model string, maxLabels int) *OpenAIClient {
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAIClient{
		apiKey:     apiKey,
		model:      model,
		maxLabels:  maxLabels,
		httpClient: &http.Client{},
		baseURL:    "https://api.openai.com/v1",
	}
}

// OpenAI API request/response types
type openAIRequest struct {
	Model     string          `json:"model"`
	Messages  []openAIMessage `json:"messages"`
	MaxTokens int             `json:"max_tokens,omitempty"`
}

type openAIMessage struct {
	Role    string          `json:"role"`
	Content []openAIContent `json:"content"`
}

type openAIContent struct {
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
	ImageURL *openAIImageURL `json:"image_url,omitempty"`
}

type openAIImageURL struct {
	URL string `json:"url"`
}

type openAIResponse struct {
	Choices []openAIChoice `json:"choices"`
	Model   string         `json:"model"`
}

type openAIChoice struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
}

// DetectLabels asks the model for a JSON label list describing the image.
func (c *OpenAIClient) DetectLabels(ctx context.Context, img Image) ([]string, error) {
	if len(img.Data) == 0 {
		return nil, errEmptyImage
	}
	if err := wait(ctx, c.limiter); err != nil {
		return nil, err
	}

	dataURL := fmt.Sprintf("data:%s;base64,%s", img.mimeType(), base64.StdEncoding.EncodeToString(img.Data))
	reqBody := openAIRequest{
		Model: c.model,
		Messages: []openAIMessage{{
			Role: "user",
			Content: []openAIContent{
				{Type: "image_url", ImageURL: &openAIImageURL{URL: dataURL}},
				{Type: "text", Text: labelPrompt},
			},
		}},
		MaxTokens: 500,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/chat/completions", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", stripURL(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, string(body))
	}

	var openAIResp openAIResponse
	if err := json.Unmarshal(body, &openAIResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(openAIResp.Choices) == 0 {
		return nil, fmt.Errorf("no response choices")
	}

	labels := parseLabelList(openAIResp.Choices[0].Message.Content)
	if c.maxLabels > 0 && len(labels) > c.maxLabels {
		labels = labels[:c.maxLabels]
	}
	return labels, nil
}

// Source returns the provider name
func (c *OpenAIClient) Source() Source {
	return SourceOpenAI
}

// Model returns the model name
func (c *OpenAIClient) Model() string {
	return c.model
}

// parseLabelList accepts a JSON string array, optionally inside a markdown
// fence, and falls back to comma or line separated text.
func parseLabelList(content string) []string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
		content = strings.TrimSpace(content)
	}

	var labels []string
	if err := json.Unmarshal([]byte(content), &labels); err == nil {
		return compact(labels)
	}

	content = strings.Trim(content, "[]")
	fields := strings.FieldsFunc(content, func(r rune) bool {
		return r == ',' || r == '\n'
	})
	for i, f := range fields {
		fields[i] = strings.Trim(strings.TrimSpace(f), `"'-*• `)
	}
	return compact(fields)
}

func compact(labels []string) []string {
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
