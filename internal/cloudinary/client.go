// Package cloudinary archives check-in photos through Cloudinary's signed
// upload API.
package cloudinary

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// DefaultBaseURL is the Cloudinary upload API root.
const DefaultBaseURL = "https://api.cloudinary.com/v1_1"

// unsigned lists the params Cloudinary leaves out of the signature.
var unsigned = map[string]bool{"api_key": true, "file": true, "resource_type": true}

// Client talks to one Cloudinary cloud.
type Client struct {
	cloud  string
	key    string
	secret string

	BaseURL string
	HTTP    *http.Client

	now func() time.Time
}

// New creates a client for cloudName authenticated with apiKey/apiSecret.
func New(cloudName, apiKey, apiSecret string) *Client {
	return &Client{
		cloud:   cloudName,
		key:     apiKey,
		secret:  apiSecret,
		BaseURL: DefaultBaseURL,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
		now:     time.Now,
	}
}

// Asset is the part of an upload response the service keeps.
type Asset struct {
	PublicID  string `json:"public_id"`
	Version   int64  `json:"version"`
	SecureURL string `json:"secure_url"`
	URL       string `json:"url"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

// UploadError is a non-2xx answer from the upload endpoint.
type UploadError struct {
	Status  int
	Message string
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("cloudinary: upload failed (%d): %s", e.Status, e.Message)
}

// Store uploads a photo as folder/key and returns its URL, preferring https.
func (c *Client) Store(ctx context.Context, payload, folder, key string) (string, error) {
	a, err := c.Upload(ctx, payload, folder, key)
	if err != nil {
		return "", err
	}
	if a.SecureURL == "" {
		return a.URL, nil
	}
	return a.SecureURL, nil
}

// Upload sends an image given as a data URL, raw base64 or remote URL.
// folder and publicID may be empty.
func (c *Client) Upload(ctx context.Context, data, folder, publicID string) (*Asset, error) {
	params := map[string]string{
		"api_key":   c.key,
		"timestamp": strconv.FormatInt(c.now().Unix(), 10),
		"folder":    folder,
		"public_id": publicID,
	}
	params["signature"] = c.sign(params)
	params["file"] = normalize(data)

	body, contentType, err := form(params)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: build form: %w", err)
	}
	endpoint := strings.TrimSuffix(c.BaseURL, "/") + "/" + c.cloud + "/image/upload"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: new request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: read response: %w", err)
	}
	if resp.StatusCode/100 != 2 {
		return nil, &UploadError{Status: resp.StatusCode, Message: errorMessage(raw)}
	}

	var a Asset
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("cloudinary: decode response: %w", err)
	}
	return &a, nil
}

// form encodes the non-empty params as multipart/form-data.
func form(params map[string]string) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for k, v := range params {
		if v == "" {
			continue
		}
		if err := w.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

// errorMessage extracts error.message from a Cloudinary error body, falling
// back to the raw body.
func errorMessage(raw []byte) string {
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Error.Message != "" {
		return body.Error.Message
	}
	return strings.TrimSpace(string(raw))
}

func normalize(data string) string {
	data = strings.TrimSpace(data)
	for _, prefix := range []string{"data:", "http://", "https://"} {
		if strings.HasPrefix(data, prefix) {
			return data
		}
	}
	return "data:image/jpeg;base64," + data
}

// sign is sha1 over the sorted k=v pairs joined by '&', followed by the secret.
func (c *Client) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if v != "" && !unsigned[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(k + "=" + params[k])
	}
	sb.WriteString(c.secret)
	sum := sha1.Sum([]byte(sb.String()))
	return hex.EncodeToString(sum[:])
}
