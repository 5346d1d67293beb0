// Package graph talks to a Microsoft Graph compatible drive API. Cases
// store the returned item IDs and URLs verbatim; nothing here is
// interpreted beyond folder nesting.
package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aureonlegal/caseflow/internal/domain"
)

// Compile-time check: Client implements domain.Drive.
var _ domain.Drive = (*Client)(nil)

// Config holds the connection parameters for the drive API.
type Config struct {
	BaseURL string
	DriveID string
	Token   string
}

// Client implements domain.Drive over HTTP.
type Client struct {
	cfg  Config
	http *http.Client
}

// New creates a drive client with the given configuration.
func New(cfg Config) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

type driveItem struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	WebURL string `json:"webUrl"`
	Folder *struct {
		ChildCount int `json:"childCount"`
	} `json:"folder,omitempty"`
}

func (i driveItem) toDomain() domain.DriveItem {
	return domain.DriveItem{
		ID:       i.ID,
		Name:     i.Name,
		IsFolder: i.Folder != nil,
		WebURL:   i.WebURL,
	}
}

// CreateFolder creates a folder at the drive root.
func (c *Client) CreateFolder(ctx context.Context, name string) (domain.DriveItem, error) {
	return c.createFolder(ctx, fmt.Sprintf("%s/drives/%s/root/children", c.cfg.BaseURL, c.cfg.DriveID), name)
}

// CreateChildFolder creates a folder under an existing item.
func (c *Client) CreateChildFolder(ctx context.Context, parentID, name string) (domain.DriveItem, error) {
	return c.createFolder(ctx, fmt.Sprintf("%s/drives/%s/items/%s/children", c.cfg.BaseURL, c.cfg.DriveID, parentID), name)
}

func (c *Client) createFolder(ctx context.Context, url, name string) (domain.DriveItem, error) {
	body := map[string]any{
		"name":                              name,
		"folder":                            map[string]any{},
		"@microsoft.graph.conflictBehavior": "rename",
	}

	var item driveItem
	if err := c.do(ctx, http.MethodPost, url, body, &item); err != nil {
		return domain.DriveItem{}, fmt.Errorf("creating folder %q: %w", name, err)
	}
	return item.toDomain(), nil
}

// ListChildren lists the items directly under a folder.
func (c *Client) ListChildren(ctx context.Context, folderID string) ([]domain.DriveItem, error) {
	url := fmt.Sprintf("%s/drives/%s/items/%s/children", c.cfg.BaseURL, c.cfg.DriveID, folderID)

	var out struct {
		Value []driveItem `json:"value"`
	}
	if err := c.do(ctx, http.MethodGet, url, nil, &out); err != nil {
		return nil, fmt.Errorf("listing folder children: %w", err)
	}

	items := make([]domain.DriveItem, 0, len(out.Value))
	for _, v := range out.Value {
		items = append(items, v.toDomain())
	}
	return items, nil
}

// Delete removes an item and everything under it.
func (c *Client) Delete(ctx context.Context, itemID string) error {
	url := fmt.Sprintf("%s/drives/%s/items/%s", c.cfg.BaseURL, c.cfg.DriveID, itemID)
	if err := c.do(ctx, http.MethodDelete, url, nil, nil); err != nil {
		return fmt.Errorf("deleting drive item: %w", err)
	}
	return nil
}

// PreviewLink creates a read-only web link for an item.
func (c *Client) PreviewLink(ctx context.Context, itemID string) (string, error) {
	url := fmt.Sprintf("%s/drives/%s/items/%s/createLink", c.cfg.BaseURL, c.cfg.DriveID, itemID)
	body := map[string]any{"type": "view", "scope": "organization"}

	var out struct {
		Link struct {
			WebURL string `json:"webUrl"`
		} `json:"link"`
	}
	if err := c.do(ctx, http.MethodPost, url, body, &out); err != nil {
		return "", fmt.Errorf("creating preview link: %w", err)
	}
	return out.Link.WebURL, nil
}

func (c *Client) do(ctx context.Context, method, url string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("drive API returned %d: %s", resp.StatusCode, payload)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
