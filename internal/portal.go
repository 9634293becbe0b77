package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	authoring "github.com/arabhyaWorks/arunachal-authoring"
)

// apiEnvelope is the portal API's response wrapper.
type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	FileURL string          `json:"fileUrl,omitempty"`
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// PortalClient talks to the portal API: category configuration, entity
// lists, uploads, and content-item creation. It implements the engine's
// collaborator contracts.
type PortalClient struct {
	baseURL string
	client  *http.Client
	logger  *zap.SugaredLogger
}

// NewPortalClient creates a client for the given base URL. A zero timeout
// falls back to 30 seconds.
func NewPortalClient(cfg authoring.PortalConfig, logger *zap.SugaredLogger) *PortalClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.S()
	}
	return &PortalClient{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// ListCategories fetches all categories.
func (c *PortalClient) ListCategories(ctx context.Context) ([]authoring.Category, error) {
	var out []authoring.Category
	if err := c.getJSON(ctx, "/api/category", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CategoryAttributes fetches the ordered attribute definitions for one
// category.
func (c *PortalClient) CategoryAttributes(ctx context.Context, categoryID int64) ([]authoring.AttributeDefinition, error) {
	query := url.Values{"category_id": []string{strconv.FormatInt(categoryID, 10)}}
	var out []authoring.AttributeDefinition
	if err := c.getJSON(ctx, "/api/category/attributes", query, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AttributeTypes fetches the registered attribute types.
func (c *PortalClient) AttributeTypes(ctx context.Context) ([]authoring.AttributeTypeInfo, error) {
	var out []authoring.AttributeTypeInfo
	if err := c.getJSON(ctx, "/api/attributeTypes", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListEntities fetches selectable `{id, name}` pairs for an entity table.
// Only the tribes list exists today.
func (c *PortalClient) ListEntities(ctx context.Context, table string) ([]authoring.EntityOption, error) {
	if table != "tribes" {
		return nil, fmt.Errorf("unknown entity table %q", table)
	}
	var out []authoring.EntityOption
	if err := c.getJSON(ctx, "/api/tribe/get-tribes", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Upload sends one file as multipart form data and returns the durable URI.
// A failed upload returns an error with no partial state.
func (c *PortalClient) Upload(ctx context.Context, filename string, body io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("build multipart form: %w", err)
	}
	if _, err := io.Copy(part, body); err != nil {
		return "", fmt.Errorf("read upload body: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("finish multipart form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/upload", &buf)
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	var env apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if !env.Success || env.FileURL == "" {
		msg := env.Error
		if msg == "" {
			msg = env.Message
		}
		return "", fmt.Errorf("upload rejected: %s", msg)
	}
	c.logger.Infow("file uploaded", "filename", filename, "uri", env.FileURL)
	return env.FileURL, nil
}

// CreateItem posts an assembled submission payload to the content-item
// creation endpoint.
func (c *PortalClient) CreateItem(ctx context.Context, payload authoring.SubmissionPayload) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/category/items", bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("build create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("create request failed: %w", err)
	}
	defer resp.Body.Close()

	var env apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode create response: %w", err)
	}
	if !env.Success {
		msg := env.Error
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return fmt.Errorf("item creation rejected: %s", msg)
	}
	c.logger.Infow("content item created", "category_id", payload.CategoryID, "name", payload.Name, "attributes", len(payload.Attributes))
	return nil
}

func (c *PortalClient) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request for %s: %w", path, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("request %s returned status %d", path, resp.StatusCode)
	}

	var env apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response for %s: %w", path, err)
	}
	if !env.Success {
		return fmt.Errorf("request %s rejected: %s", path, env.Error)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode data for %s: %w", path, err)
	}
	return nil
}
