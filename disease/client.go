// Package disease sends plant photos to the image-analysis service and
// drives the camera capture flow that produces them.
package disease

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"cropwise/models"
)

// FormField is the multipart field the analysis service reads the image from.
const FormField = "plantImage"

// Error codes reported to the client.
const (
	CodeBackend         = "BACKEND_ERROR"
	CodeNetwork         = "NETWORK_ERROR"
	CodeInvalidResponse = "INVALID_RESPONSE"
	CodeCameraAccess    = "CAMERA_ACCESS_ERROR"
	CodeUnknown         = "UNKNOWN_ERROR"
)

// Error is a failure the client can show with a retry button.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// APIError converts e into the shape the client renders.
func (e *Error) APIError() models.APIError {
	return models.APIError{Message: e.Message, Code: e.Code}
}

type Client struct {
	URL    string
	Client *http.Client
}

func NewClient(url string, timeout time.Duration) *Client {
	return &Client{URL: url, Client: &http.Client{Timeout: timeout}}
}

// Analyze uploads the image and maps the answer into a DiseaseDetection.
func (c *Client) Analyze(ctx context.Context, filename string, image io.Reader) (*models.DiseaseDetection, error) {
	var requestBody bytes.Buffer
	writer := multipart.NewWriter(&requestBody)

	part, err := writer.CreateFormFile(FormField, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return nil, fmt.Errorf("failed to copy image data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, &requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, &Error{Code: CodeNetwork, Message: fmt.Sprintf("Failed to reach analysis server: %v", err), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Code: CodeNetwork, Message: "Failed to read analysis response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := strings.TrimSpace(string(body))
		if detail == "" {
			detail = http.StatusText(resp.StatusCode)
		}
		return nil, &Error{
			Code:    CodeBackend,
			Message: fmt.Sprintf("Backend Server Error %d: %s", resp.StatusCode, detail),
		}
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &Error{Code: CodeInvalidResponse, Message: "Invalid response from backend server", Err: err}
	}
	return MapResult(raw)
}
