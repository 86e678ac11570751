// Package geo looks up the public IP geolocation of the box through the
// ip-api.com JSON endpoint. Results are cached in memory and, when a
// cache path is configured, in a CBOR file that survives restarts.
package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
)

const (
	defaultBaseURL  = "http://ip-api.com"
	defaultTimeout  = 5 * time.Second
	defaultCacheTTL = time.Hour
	maxBodyBytes    = 64 << 10

	fields = "status,message,continent,country,regionName,city,timezone,currency,lat,lon,isp,org,mobile,proxy,query"
)

// ErrLookupFailed is returned when the service answers but reports failure.
var ErrLookupFailed = errors.New("geo: lookup failed")

// Data is the geolocation record of the box's public address.
type Data struct {
	Status     string  `json:"status"`
	Message    string  `json:"message,omitempty"`
	Continent  string  `json:"continent"`
	Country    string  `json:"country"`
	RegionName string  `json:"regionName"`
	City       string  `json:"city"`
	Timezone   string  `json:"timezone"`
	Currency   string  `json:"currency"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	ISP        string  `json:"isp"`
	Org        string  `json:"org"`
	Mobile     bool    `json:"mobile"`
	Proxy      bool    `json:"proxy"`
	Query      string  `json:"query"`
}

// Config configures a Client.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	// CachePath is the CBOR cache file. Empty disables the disk cache.
	CachePath string
	CacheTTL  time.Duration
	Now       func() time.Time
}

type cacheEntry struct {
	FetchedAt time.Time `cbor:"1,keyasint"`
	Data      Data      `cbor:"2,keyasint"`
}

var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("geo: CBOR encoder initialization failed: " + err.Error())
	}
}

// Client performs cached geolocation lookups. It is safe for concurrent use.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	cachePath  string
	ttl        time.Duration
	now        func() time.Time

	mu     sync.Mutex
	cached *cacheEntry
}

// New returns a client with defaults applied.
func New(cfg Config) *Client {
	c := &Client{
		baseURL:    cfg.BaseURL,
		timeout:    cfg.Timeout,
		httpClient: cfg.HTTPClient,
		cachePath:  cfg.CachePath,
		ttl:        cfg.CacheTTL,
		now:        cfg.Now,
	}
	if c.baseURL == "" {
		c.baseURL = defaultBaseURL
	}
	if c.timeout <= 0 {
		c.timeout = defaultTimeout
	}
	if c.httpClient == nil {
		c.httpClient = http.DefaultClient
	}
	if c.ttl <= 0 {
		c.ttl = defaultCacheTTL
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// Lookup returns the geolocation of the public address. With useCache a
// fresh memory or disk entry is returned without a request.
func (c *Client) Lookup(ctx context.Context, useCache bool) (Data, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if useCache {
		if c.cached == nil {
			c.cached = c.loadDisk()
		}
		if c.cached != nil && c.now().Sub(c.cached.FetchedAt) < c.ttl {
			return c.cached.Data, nil
		}
	}

	data, err := c.fetch(ctx)
	if err != nil {
		return Data{}, err
	}
	c.cached = &cacheEntry{FetchedAt: c.now(), Data: data}
	if err := c.saveDisk(c.cached); err != nil {
		log.Printf("geo: writing cache: %v", err)
	}
	return data, nil
}

func (c *Client) fetch(ctx context.Context) (Data, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/json/?fields="+fields, nil)
	if err != nil {
		return Data{}, fmt.Errorf("geo: building request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Data{}, fmt.Errorf("geo: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Data{}, fmt.Errorf("%w: HTTP %d", ErrLookupFailed, resp.StatusCode)
	}
	var data Data
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&data); err != nil {
		return Data{}, fmt.Errorf("geo: decoding response: %w", err)
	}
	if data.Status != "success" {
		return Data{}, fmt.Errorf("%w: %s", ErrLookupFailed, data.Message)
	}
	return data, nil
}

func (c *Client) loadDisk() *cacheEntry {
	if c.cachePath == "" {
		return nil
	}
	raw, err := os.ReadFile(c.cachePath)
	if err != nil {
		return nil
	}
	var entry cacheEntry
	if err := cbor.Unmarshal(raw, &entry); err != nil {
		log.Printf("geo: ignoring corrupt cache %s: %v", c.cachePath, err)
		return nil
	}
	return &entry
}

func (c *Client) saveDisk(entry *cacheEntry) error {
	if c.cachePath == "" {
		return nil
	}
	raw, err := encMode.Marshal(entry)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(c.cachePath), 0755); err != nil {
		return err
	}
	tmp := c.cachePath + ".tmp"
	if err := os.WriteFile(tmp, raw, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, c.cachePath)
}
