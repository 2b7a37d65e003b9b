package clients

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

	"nft-backend/internal/config"
	"nft-backend/internal/interfaces"

	"github.com/sirupsen/logrus"
)

// PinataClient IPFS pinning service client; reads go through a public gateway
type PinataClient struct {
	APIURL     string
	GatewayURL string
	JWT        string
	Client     *http.Client
}

// pinResponse Pinata pin response
type pinResponse struct {
	IpfsHash  string `json:"IpfsHash"`
	PinSize   int64  `json:"PinSize"`
	Timestamp string `json:"Timestamp"`
}

type pinataMetadata struct {
	Name string `json:"name"`
}

type pinJSONRequest struct {
	PinataContent  interface{}    `json:"pinataContent"`
	PinataMetadata pinataMetadata `json:"pinataMetadata"`
}

// NewPinataClient Create a new Pinata client
func NewPinataClient(cfg config.PinataConfig) *PinataClient {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	logrus.Infof("🔧 [Pinata] Create client: API=%s, Gateway=%s, Timeout=%v", cfg.APIURL, cfg.GatewayURL, timeout)
	return &PinataClient{
		APIURL:     strings.TrimRight(cfg.APIURL, "/"),
		GatewayURL: strings.TrimRight(cfg.GatewayURL, "/"),
		JWT:        cfg.JWT,
		Client:     &http.Client{Timeout: timeout},
	}
}

var _ interfaces.ContentStore = (*PinataClient)(nil)

// Publish pins raw bytes with pinFileToIPFS
func (c *PinataClient) Publish(ctx context.Context, name string, data []byte) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("failed to write form file: %w", err)
	}
	meta, _ := json.Marshal(pinataMetadata{Name: name})
	if err := writer.WriteField("pinataMetadata", string(meta)); err != nil {
		return "", fmt.Errorf("failed to write metadata field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to close multipart body: %w", err)
	}

	return c.pin(ctx, "/pinning/pinFileToIPFS", writer.FormDataContentType(), &body)
}

// PublishJSON pins a JSON document with pinJSONToIPFS
func (c *PinataClient) PublishJSON(ctx context.Context, name string, doc interface{}) (string, error) {
	payload, err := json.Marshal(pinJSONRequest{
		PinataContent:  doc,
		PinataMetadata: pinataMetadata{Name: name},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON document: %w", err)
	}
	return c.pin(ctx, "/pinning/pinJSONToIPFS", "application/json", bytes.NewReader(payload))
}

func (c *PinataClient) pin(ctx context.Context, path, contentType string, body io.Reader) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIURL+path, body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	if c.JWT != "" {
		req.Header.Set("Authorization", "Bearer "+c.JWT)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("pinata request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read pinata response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("pinata returned status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var pinned pinResponse
	if err := json.Unmarshal(respBody, &pinned); err != nil {
		return "", fmt.Errorf("failed to parse pinata response: %w", err)
	}
	if pinned.IpfsHash == "" {
		return "", fmt.Errorf("pinata response has no IpfsHash")
	}
	return pinned.IpfsHash, nil
}

// Resolve fetches the content through the gateway
func (c *PinataClient) Resolve(ctx context.Context, contentID string) ([]byte, error) {
	return FetchURL(ctx, c.Client, c.GatewayURL+"/ipfs/"+contentID)
}

// FetchURL GET url, mapping 404 to ErrContentNotFound
func FetchURL(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s failed: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, interfaces.ErrContentNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s returned status %d", url, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", url, err)
	}
	return data, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
