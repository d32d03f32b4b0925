package drive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the Google APIs host.
const DefaultBaseURL = "https://www.googleapis.com"

// Owner is a Drive file owner.
type Owner struct {
	EmailAddress string `json:"emailAddress"`
	DisplayName  string `json:"displayName"`
}

// File is the subset of Drive file metadata used here.
type File struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	MimeType     string  `json:"mimeType,omitempty"`
	ModifiedTime string  `json:"modifiedTime,omitempty"`
	Owners       []Owner `json:"owners,omitempty"`
}

// FileMetadata is the metadata part of an upload.
type FileMetadata struct {
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
}

// Client is a minimal Drive v3 REST client. Every call takes the access token
// to use.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client against baseURL (DefaultBaseURL when empty).
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// FindByName returns the most recently modified non-trashed file named
// exactly name, or nil when there is none.
func (c *Client) FindByName(ctx context.Context, token, name string) (*File, error) {
	q := url.Values{}
	q.Set("q", fmt.Sprintf("name='%s' and trashed=false", escapeQuery(name)))
	q.Set("fields", "files(id,name,modifiedTime)")
	q.Set("orderBy", "modifiedTime desc")
	q.Set("pageSize", "1")

	var out struct {
		Files []File `json:"files"`
	}
	if err := c.doJSON(ctx, token, http.MethodGet, "/drive/v3/files?"+q.Encode(), nil, "", &out); err != nil {
		return nil, err
	}
	if len(out.Files) == 0 {
		return nil, nil
	}
	return &out.Files[0], nil
}

// Metadata returns the file's id, name and owners.
func (c *Client) Metadata(ctx context.Context, token, fileID string) (*File, error) {
	q := url.Values{}
	q.Set("fields", "id,name,owners(emailAddress,displayName)")

	var f File
	if err := c.doJSON(ctx, token, http.MethodGet, "/drive/v3/files/"+url.PathEscape(fileID)+"?"+q.Encode(), nil, "", &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// Download returns the file's content.
func (c *Client) Download(ctx context.Context, token, fileID string) ([]byte, error) {
	resp, err := c.do(ctx, token, http.MethodGet, "/drive/v3/files/"+url.PathEscape(fileID)+"?alt=media", nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading drive file %s: %w", fileID, err)
	}
	return data, nil
}

// Upload writes payload as a multipart upload. A known fileID is updated in
// place; an empty one creates a new file.
func (c *Client) Upload(ctx context.Context, token, fileID string, meta FileMetadata, mediaType string, payload []byte) (*File, error) {
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("encoding file metadata: %w", err)
	}

	body, contentType, err := new(Multipart).
		Add("application/json; charset=UTF-8", metaJSON).
		Add(mediaType, payload).
		Build()
	if err != nil {
		return nil, err
	}

	method, path := http.MethodPost, "/upload/drive/v3/files?uploadType=multipart"
	if fileID != "" {
		method, path = http.MethodPatch, "/upload/drive/v3/files/"+url.PathEscape(fileID)+"?uploadType=multipart"
	}

	var f File
	if err := c.doJSON(ctx, token, method, path, body, contentType, &f); err != nil {
		return nil, err
	}
	if f.ID == "" {
		f.ID = fileID
	}
	return &f, nil
}

// GrantPublicRead lets anyone with the link read the file.
func (c *Client) GrantPublicRead(ctx context.Context, token, fileID string) error {
	body := []byte(`{"role":"reader","type":"anyone"}`)
	return c.doJSON(ctx, token, http.MethodPost, "/drive/v3/files/"+url.PathEscape(fileID)+"/permissions", body, "application/json", nil)
}

func (c *Client) doJSON(ctx context.Context, token, method, path string, body []byte, contentType string, out any) error {
	resp, err := c.do(ctx, token, method, path, body, contentType)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding drive response for %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, token, method, path string, body []byte, contentType string) (*http.Response, error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return nil, fmt.Errorf("building drive request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("drive request %s %s: %w", method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &APIError{Method: method, Path: path, Status: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}
	return resp, nil
}

func escapeQuery(s string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s)
}
