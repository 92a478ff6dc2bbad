// Package lta implements the Fetcher port against the LTA DataMall
// Traffic Images v2 API. One authenticated call retrieves the camera
// directory (every camera's current image link); a second plain call
// downloads the image bytes.
package lta

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/roadwatch/camsnap/internal/poller"
	"github.com/roadwatch/camsnap/internal/telemetry"
)

// DefaultDirectoryURL is the production Traffic Images v2 endpoint.
const DefaultDirectoryURL = "https://datamall2.mytransport.sg/ltaodataservice/Traffic-Imagesv2"

// Config parameterizes the client.
type Config struct {
	DirectoryURL string
	APIKey       string
	// Timeout bounds each individual HTTP attempt.
	Timeout time.Duration
	// DownloadRPS paces image downloads across the worker pool;
	// zero means unlimited.
	DownloadRPS float64
	// DirectoryTTL is how long one directory snapshot is reused. Sized to
	// a fraction of the poll interval so each cycle sees fresh links but
	// N cameras cost one directory call.
	DirectoryTTL time.Duration
}

// directoryEntry is one camera's record in the API response.
type directoryEntry struct {
	CameraID  string  `json:"CameraID"`
	Latitude  float64 `json:"Latitude"`
	Longitude float64 `json:"Longitude"`
	ImageLink string  `json:"ImageLink"`
}

type directoryResponse struct {
	Value []directoryEntry `json:"value"`
}

// Client fetches camera images. Safe for concurrent use; the directory
// snapshot is shared behind a mutex.
type Client struct {
	cfg     Config
	http    *resty.Client
	clock   poller.Clock
	logger  *zap.Logger
	limiter *rate.Limiter

	mu         sync.Mutex
	directory  map[string]string
	refreshed  time.Time
	refreshErr error
}

// NewClient builds a client from config.
func NewClient(cfg Config, clock poller.Clock, logger *zap.Logger) *Client {
	if cfg.DirectoryURL == "" {
		cfg.DirectoryURL = DefaultDirectoryURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	limit := rate.Limit(cfg.DownloadRPS)
	if cfg.DownloadRPS <= 0 {
		limit = rate.Inf
	}
	return &Client{
		cfg:     cfg,
		http:    resty.New().SetTimeout(cfg.Timeout),
		clock:   clock,
		logger:  logger,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Fetch performs one image retrieval attempt for one camera. Every failure
// mode is classified into the returned attempt; Fetch never panics and
// never returns an error to the scheduler.
func (c *Client) Fetch(ctx context.Context, camera poller.Camera) poller.FetchAttempt {
	attemptedAt := c.clock.Now()
	start := time.Now()
	defer func() { telemetry.ObserveFetchDuration(time.Since(start)) }()

	endpoint := camera.ImageEndpoint
	if endpoint == "" {
		link, err := c.imageLink(ctx, camera.ID)
		if err != nil {
			return poller.NewFailedAttempt(camera.ID, attemptedAt, err.Error())
		}
		endpoint = link
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return poller.NewFailedAttempt(camera.ID, attemptedAt, fmt.Sprintf("download canceled: %v", err))
	}

	body, contentType, err := c.download(ctx, endpoint)
	if err != nil {
		return poller.NewFailedAttempt(camera.ID, attemptedAt, err.Error())
	}
	return poller.NewSuccessAttempt(camera.ID, attemptedAt, body, contentType, endpoint)
}

// imageLink resolves a camera id to its current image URL via the cached
// directory snapshot, refreshing it when stale.
func (c *Client) imageLink(ctx context.Context, cameraID string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.refreshed.IsZero() || c.clock.Now().Sub(c.refreshed) >= c.cfg.DirectoryTTL {
		c.refreshDirectoryLocked(ctx)
	}
	if c.refreshErr != nil {
		return "", fmt.Errorf("camera directory: %w", c.refreshErr)
	}
	link, ok := c.directory[cameraID]
	if !ok {
		return "", fmt.Errorf("camera %s not in camera directory", cameraID)
	}
	if link == "" {
		return "", fmt.Errorf("camera %s has no image link", cameraID)
	}
	return link, nil
}

// refreshDirectoryLocked fetches the directory and replaces the snapshot.
// On failure the stale snapshot is dropped so every waiting camera fails
// this cycle rather than working from outdated links.
func (c *Client) refreshDirectoryLocked(ctx context.Context) {
	c.refreshed = c.clock.Now()
	c.directory = nil
	c.refreshErr = nil

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("AccountKey", c.cfg.APIKey).
		SetHeader("accept", "application/json").
		Get(c.cfg.DirectoryURL)
	if err != nil {
		c.refreshErr = fmt.Errorf("request failed: %w", err)
		return
	}
	if resp.IsError() {
		c.refreshErr = fmt.Errorf("unexpected status %s", resp.Status())
		return
	}

	var payload directoryResponse
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		c.refreshErr = fmt.Errorf("decode response: %w", err)
		return
	}
	if payload.Value == nil {
		c.refreshErr = fmt.Errorf("response missing 'value' field")
		return
	}

	directory := make(map[string]string, len(payload.Value))
	for _, entry := range payload.Value {
		directory[entry.CameraID] = entry.ImageLink
	}
	c.directory = directory
	c.logger.Debug("camera directory refreshed", zap.Int("entries", len(directory)))
}

// download retrieves the raw image bytes.
func (c *Client) download(ctx context.Context, imageURL string) ([]byte, string, error) {
	resp, err := c.http.R().SetContext(ctx).Get(imageURL)
	if err != nil {
		return nil, "", fmt.Errorf("download %s: %w", imageURL, err)
	}
	if resp.IsError() {
		return nil, "", fmt.Errorf("download %s: unexpected status %s", imageURL, resp.Status())
	}
	body := resp.Body()
	if len(body) == 0 {
		return nil, "", fmt.Errorf("download %s: empty image payload", imageURL)
	}
	contentType := resp.Header().Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}
	return body, contentType, nil
}
