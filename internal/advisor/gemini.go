package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiClient implements RemoteAdvisor against the Gemini REST API.
type GeminiClient struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewGeminiClient creates a Gemini-backed advisor for the given model.
func NewGeminiClient(apiKey, model string) *GeminiClient {
	return &GeminiClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultGeminiBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent   `json:"systemInstruction,omitempty"`
	Contents          []geminiContent  `json:"contents"`
	GenerationConfig  map[string]any   `json:"generationConfig,omitempty"`
}

// Generate performs a single generateContent call. Errors are classified
// into *Error at this boundary so callers and the retry loop never have to
// inspect provider messages themselves.
func (c *GeminiClient) Generate(ctx context.Context, systemInstruction, userContent string, opts *GenerateOptions) (string, error) {
	if c.apiKey == "" {
		return "", &Error{
			Code:    ErrInvalidRequest,
			Message: "Gemini API key not configured",
		}
	}

	genConfig := map[string]any{
		"temperature": 0.4,
	}
	if opts != nil {
		if opts.ResponseSchema != nil {
			genConfig["responseMimeType"] = "application/json"
			genConfig["responseSchema"] = opts.ResponseSchema
		}
		if opts.ThinkingLevel != "" {
			genConfig["thinkingConfig"] = map[string]any{"thinkingLevel": string(opts.ThinkingLevel)}
		}
	}

	reqBody := geminiRequest{
		Contents:         []geminiContent{{Parts: []geminiPart{{Text: userContent}}}},
		GenerationConfig: genConfig,
	}
	if systemInstruction != "" {
		reqBody.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: systemInstruction}}}
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", classifyHTTPError(resp.StatusCode, string(body))
	}

	var geminiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&geminiResp); err != nil {
		return "", &Error{
			Code:    ErrMalformedResponse,
			Message: "decode Gemini response",
			Cause:   err,
		}
	}

	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		return "", &Error{
			Code:    ErrMalformedResponse,
			Message: "no candidates in Gemini response",
		}
	}

	return geminiResp.Candidates[0].Content.Parts[0].Text, nil
}

// classifyTransportError converts network-level failures. The "429" message
// check covers proxies that surface rate limiting as a transport error.
func classifyTransportError(err error) *Error {
	if strings.Contains(err.Error(), "429") {
		return &Error{
			Code:      ErrRateLimited,
			Message:   "Gemini API rate limited",
			Retryable: true,
			Cause:     err,
		}
	}
	return &Error{
		Code:    ErrUnavailable,
		Message: "Gemini API request failed",
		Cause:   err,
	}
}

// classifyHTTPError converts non-200 responses. Only 429 is retryable.
func classifyHTTPError(statusCode int, body string) *Error {
	if statusCode == http.StatusTooManyRequests {
		return &Error{
			Code:      ErrRateLimited,
			Message:   "Gemini API rate limited (HTTP 429)",
			Retryable: true,
		}
	}
	if statusCode >= 500 {
		return &Error{
			Code:    ErrUnavailable,
			Message: fmt.Sprintf("Gemini API error (HTTP %d): %s", statusCode, body),
		}
	}
	return &Error{
		Code:    ErrInvalidRequest,
		Message: fmt.Sprintf("Gemini API rejected request (HTTP %d): %s", statusCode, body),
	}
}

// ExtractJSON unmarshals the first JSON object embedded in text into v.
// Models sometimes wrap JSON in prose or markdown fences even when asked
// not to.
func ExtractJSON(text string, v any) error {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end <= start {
		return fmt.Errorf("no JSON object found in response")
	}
	return json.Unmarshal([]byte(text[start:end+1]), v)
}
