package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/SamuelLeutner/notion-acads/config"
	"github.com/SamuelLeutner/notion-acads/logger"
	"github.com/SamuelLeutner/notion-acads/models"
)

// APIError is a non-2xx answer from Notion.
type APIError struct {
	Status    int
	Code      string
	Message   string
	Operation string
	Target    string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("notion %s: HTTP %d", e.Operation, e.Status)
	if e.Target != "" {
		msg += " for " + e.Target
	}
	if e.Code != "" {
		msg += ": " + e.Code
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

func (e *APIError) NotFound() bool {
	return e.Status == http.StatusNotFound || e.Code == "object_not_found"
}

func (e *APIError) retryable() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= 500
}

func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}
	var resp models.ErrorResponse
	if err := json.Unmarshal(body, &resp); err == nil && resp.Object == "error" {
		apiErr.Code = resp.Code
		apiErr.Message = resp.Message
	} else {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	return apiErr
}

// NotionClient implements acads.Store against the Notion REST API.
type NotionClient struct {
	Config *config.Config
	Client *http.Client

	user   *models.User
	muUser sync.Mutex
}

func NewNotionClient(cfg *config.Config) *NotionClient {
	return &NotionClient{
		Config: cfg,
		Client: &http.Client{Timeout: cfg.RequestTimeout},
	}
}

// MakeRequest sends one request, retrying rate limits and server errors up to
// Config.MaxRetries times with exponential backoff.
func (c *NotionClient) MakeRequest(ctx context.Context, method, url string, headers map[string]string, body []byte) ([]byte, error) {
	var lastErr error
	path := strings.Split(url, "?")[0]

	for attempt := 0; attempt <= c.Config.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return nil, errors.Wrapf(ctx.Err(), "request %s %s cancelled", method, path)
		default:
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return nil, errors.Wrapf(err, "creating request on attempt %d", attempt+1)
		}
		for key, value := range headers {
			req.Header.Set(key, value)
		}

		logger.Debug().
			Str("method", method).
			Str("url", path).
			Int("attempt", attempt+1).
			Int("maxAttempts", c.Config.MaxRetries+1).
			Msg("Sending request")

		resp, err := c.Client.Do(req)
		if err != nil {
			lastErr = errors.Wrapf(err, "http client error on attempt %d", attempt+1)
		} else {
			respBody, readErr := io.ReadAll(resp.Body)
			resp.Body.Close()
			if readErr != nil {
				return nil, errors.Wrapf(readErr, "reading response body (HTTP %d)", resp.StatusCode)
			}
			if resp.StatusCode < 400 {
				return respBody, nil
			}

			apiErr := parseAPIError(resp.StatusCode, respBody)
			if !apiErr.retryable() {
				return nil, apiErr
			}
			lastErr = apiErr
		}

		if attempt < c.Config.MaxRetries {
			delay := c.Config.RetryDelay * time.Duration(1<<attempt)
			logger.Warn().
				Err(lastErr).
				Str("url", path).
				Int("attempt", attempt+1).
				Dur("delay", delay).
				Msg("Request failed, retrying")
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, errors.Wrapf(ctx.Err(), "request %s cancelled during retry wait", path)
			}
		}
	}
	return nil, lastErr
}

func (c *NotionClient) headers() map[string]string {
	return map[string]string{
		"Authorization":  "Bearer " + c.Config.NotionToken,
		"Notion-Version": c.Config.NotionVersion,
		"Content-Type":   "application/json",
	}
}

// call sends payload as JSON to path and decodes the answer into out. API
// errors are tagged with op and target.
func (c *NotionClient) call(ctx context.Context, op, target, method, path string, payload, out interface{}) error {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return errors.Wrapf(err, "encoding %s request", op)
		}
	}

	respBody, err := c.MakeRequest(ctx, method, c.Config.NotionAPIBase+path, c.headers(), body)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			apiErr.Operation = op
			apiErr.Target = target
			l := logger.Op(op, target)
			l.Error().Int("status", apiErr.Status).Str("code", apiErr.Code).Msg(apiErr.Message)
			return apiErr
		}
		return errors.Wrapf(err, "notion %s", op)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return errors.Wrapf(err, "decoding %s response", op)
	}
	return nil
}

type createPageBody struct {
	Parent     models.Parent         `json:"parent"`
	Properties models.Properties     `json:"properties"`
	Children   []models.BlockContent `json:"children,omitempty"`
	Cover      *models.ExternalFile  `json:"cover,omitempty"`
	Icon       *models.Emoji         `json:"icon,omitempty"`
}

func (c *NotionClient) CreateRecord(ctx context.Context, req models.CreateRecordRequest) (*models.Record, error) {
	body := createPageBody{
		Properties: req.Properties,
		Children:   req.Children,
	}
	if req.ParentIsCollection {
		body.Parent = models.Parent{Type: "database_id", DatabaseID: req.ParentID}
	} else {
		body.Parent = models.Parent{Type: "page_id", PageID: req.ParentID}
	}
	if req.CoverURL != "" {
		body.Cover = models.ExternalCover(req.CoverURL)
	}
	if req.IconEmoji != "" {
		body.Icon = &models.Emoji{Type: "emoji", Emoji: req.IconEmoji}
	}

	var rec models.Record
	if err := c.call(ctx, "create_page", req.ParentID, http.MethodPost, "/pages", body, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

type queryBody struct {
	Filter      *models.Filter `json:"filter,omitempty"`
	PageSize    int            `json:"page_size,omitempty"`
	StartCursor string         `json:"start_cursor,omitempty"`
}

func (c *NotionClient) QueryCollection(ctx context.Context, collectionID string, q models.Query) (*models.RecordList, error) {
	body := queryBody{Filter: q.Filter, PageSize: q.PageSize, StartCursor: q.Cursor}
	var list models.RecordList
	if err := c.call(ctx, "query_database", collectionID, http.MethodPost, "/databases/"+collectionID+"/query", body, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (c *NotionClient) UpdateRecordFields(ctx context.Context, recordID string, fields models.Properties) (*models.Record, error) {
	body := map[string]interface{}{"properties": fields}
	var rec models.Record
	if err := c.call(ctx, "update_page", recordID, http.MethodPatch, "/pages/"+recordID, body, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// UpdateCollectionSchema adds or replaces columns. An empty defs map leaves
// the database unchanged and returns its current schema.
func (c *NotionClient) UpdateCollectionSchema(ctx context.Context, collectionID string, defs models.PropertySchema) (*models.Collection, error) {
	if defs == nil {
		defs = models.PropertySchema{}
	}
	body := map[string]interface{}{"properties": defs}
	var coll models.Collection
	if err := c.call(ctx, "update_database", collectionID, http.MethodPatch, "/databases/"+collectionID, body, &coll); err != nil {
		return nil, err
	}
	return &coll, nil
}

type createDatabaseBody struct {
	Parent     models.Parent         `json:"parent"`
	Title      []models.RichText     `json:"title"`
	IsInline   bool                  `json:"is_inline"`
	Properties models.PropertySchema `json:"properties"`
}

// CreateCollection creates an inline database on a page.
func (c *NotionClient) CreateCollection(ctx context.Context, parentPageID, title string, defs models.PropertySchema) (*models.Collection, error) {
	body := createDatabaseBody{
		Parent:     models.Parent{Type: "page_id", PageID: parentPageID},
		Title:      models.Text(title),
		IsInline:   true,
		Properties: defs,
	}
	var coll models.Collection
	if err := c.call(ctx, "create_database", parentPageID, http.MethodPost, "/databases", body, &coll); err != nil {
		return nil, err
	}
	return &coll, nil
}

// ListChildRecords returns every direct child block of parentID, following
// pagination.
func (c *NotionClient) ListChildRecords(ctx context.Context, parentID string) ([]models.Block, error) {
	var blocks []models.Block
	cursor := ""
	for {
		q := url.Values{}
		q.Set("page_size", "100")
		if cursor != "" {
			q.Set("start_cursor", cursor)
		}

		var list models.BlockList
		path := "/blocks/" + parentID + "/children?" + q.Encode()
		if err := c.call(ctx, "list_children", parentID, http.MethodGet, path, nil, &list); err != nil {
			return nil, err
		}
		blocks = append(blocks, list.Results...)

		cursor = list.Cursor()
		if cursor == "" {
			return blocks, nil
		}
	}
}

func (c *NotionClient) UpdateBlockContent(ctx context.Context, blockID string, content models.BlockContent) (*models.Block, error) {
	var b models.Block
	if err := c.call(ctx, "update_block", blockID, http.MethodPatch, "/blocks/"+blockID, content.Update(), &b); err != nil {
		return nil, err
	}
	return &b, nil
}
