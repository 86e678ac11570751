package socketrpc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/tinytelemetry/boxinfo/internal/model"
)

// Client implements model.SnapshotQuerier over a Unix domain socket using JSON-RPC 2.0.
type Client struct {
	conn    net.Conn
	mu      sync.Mutex
	nextID  int
	scanner *bufio.Scanner
	encoder *json.Encoder
}

// Dial connects to the socket RPC server at the given path.
func Dial(socketPath string) (*Client, error) {
	return DialTimeout(socketPath, 5*time.Second)
}

// DialTimeout is Dial with a connect timeout.
func DialTimeout(socketPath string, timeout time.Duration) (*Client, error) {
	conn, err := net.DialTimeout("unix", socketPath, timeout)
	if err != nil {
		return nil, fmt.Errorf("socketrpc: dial: %w", err)
	}
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 1024*1024), 10*1024*1024)
	return &Client{
		conn:    conn,
		scanner: scanner,
		encoder: json.NewEncoder(conn),
	}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// call performs a JSON-RPC call and unmarshals the result into dest.
func (c *Client) call(method string, params any, dest any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	id := c.nextID

	paramsData, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("socketrpc: marshal params: %w", err)
	}

	req := Request{
		JSONRPC: "2.0",
		ID:      id,
		Method:  method,
		Params:  paramsData,
	}

	c.conn.SetDeadline(time.Now().Add(30 * time.Second))
	defer c.conn.SetDeadline(time.Time{})

	if err := c.encoder.Encode(req); err != nil {
		return fmt.Errorf("socketrpc: send: %w", err)
	}

	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			return fmt.Errorf("socketrpc: read: %w", err)
		}
		return fmt.Errorf("socketrpc: connection closed")
	}

	var resp Response
	if err := json.Unmarshal(c.scanner.Bytes(), &resp); err != nil {
		return fmt.Errorf("socketrpc: unmarshal response: %w", err)
	}

	if resp.Error != nil {
		if resp.Error.Code == codeNotFound {
			return fmt.Errorf("socketrpc: %s: %w", method, model.ErrNotFound)
		}
		return resp.Error
	}

	if dest != nil {
		if err := json.Unmarshal(resp.Result, dest); err != nil {
			return fmt.Errorf("socketrpc: unmarshal result: %w", err)
		}
	}
	return nil
}

// ListPanels returns the stored panels.
func (c *Client) ListPanels() ([]model.PanelSummary, error) {
	var result []model.PanelSummary
	err := c.call("ListPanels", nil, &result)
	return result, err
}

// LatestSnapshot returns the newest snapshot of a panel. A panel without
// snapshots gives an error matching model.ErrNotFound.
func (c *Client) LatestSnapshot(panelID string) (model.Snapshot, error) {
	var result model.Snapshot
	err := c.call("LatestSnapshot", map[string]any{"PanelID": panelID}, &result)
	return result, err
}

// MemoryHistory returns up to limit of the newest memory samples, oldest first.
func (c *Client) MemoryHistory(limit int) ([]model.MemorySample, error) {
	var result []model.MemorySample
	err := c.call("MemoryHistory", map[string]any{"Limit": limit}, &result)
	return result, err
}
