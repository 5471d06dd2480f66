package socketrpc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/heyojules/invite/internal/admin"
	"github.com/heyojules/invite/internal/model"
)

// Client calls the admin channel over a Unix domain socket using JSON-RPC 2.0.
type Client struct {
	conn    net.Conn
	mu      sync.Mutex
	nextID  int
	scanner *bufio.Scanner
	encoder *json.Encoder
}

// Dial connects to the socket RPC server at the given path.
func Dial(socketPath string) (*Client, error) {
	conn, err := net.DialTimeout("unix", socketPath, 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("socketrpc: dial: %w", err)
	}
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, scannerInitBufSize), scannerMaxTokenSize)
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
func (c *Client) call(method string, params interface{}, dest interface{}) error {
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
		switch resp.Error.Code {
		case CodeUnauthorized:
			return fmt.Errorf("%w: %s", admin.ErrUnauthorized, resp.Error.Message)
		case CodeNotFound:
			return fmt.Errorf("%w: %s", model.ErrNotFound, resp.Error.Message)
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

func (c *Client) AdminSummary(password string) (admin.Summary, error) {
	var result admin.Summary
	err := c.call("AdminSummary", map[string]interface{}{"Password": password}, &result)
	return result, err
}

func (c *Client) ListRSVPs(password string) ([]model.RSVP, error) {
	var result []model.RSVP
	err := c.call("ListRSVPs", map[string]interface{}{"Password": password}, &result)
	return result, err
}

func (c *Client) ListGuestbook(limit int) ([]model.GuestbookEntry, error) {
	var result []model.GuestbookEntry
	err := c.call("ListGuestbook", map[string]interface{}{"Limit": limit}, &result)
	return result, err
}

func (c *Client) ListPhotos(limit int) ([]model.Photo, error) {
	var result []model.Photo
	err := c.call("ListPhotos", map[string]interface{}{"Limit": limit}, &result)
	return result, err
}

func (c *Client) DeleteGuestbookEntry(password, id string) error {
	return c.call("DeleteGuestbookEntry", map[string]interface{}{"Password": password, "ID": id}, nil)
}

func (c *Client) DeletePhoto(password, id string) error {
	return c.call("DeletePhoto", map[string]interface{}{"Password": password, "ID": id}, nil)
}
