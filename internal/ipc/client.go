package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/tabdock/tabdock/internal/runtimepath"
)

// Client handles IPC communication with the running host
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}

	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to host: %w (is 'tabdock run' running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("host error: %s", resp.Error)
	}

	return &resp, nil
}

// GetStatus retrieves host status
func (c *Client) GetStatus() (*StatusData, error) {
	resp, err := c.sendRequest(&Request{Command: CommandGetStatus})
	if err != nil {
		return nil, err
	}

	var status StatusData
	if err := json.Unmarshal(resp.Data, &status); err != nil {
		return nil, fmt.Errorf("failed to parse status data: %w", err)
	}

	return &status, nil
}

// ListWindows retrieves the capturable window list
func (c *Client) ListWindows() (*WindowsData, error) {
	resp, err := c.sendRequest(&Request{Command: CommandListWindows})
	if err != nil {
		return nil, err
	}

	var data WindowsData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse windows data: %w", err)
	}

	return &data, nil
}

// ListTabs retrieves the captured tab list
func (c *Client) ListTabs() (*TabsData, error) {
	resp, err := c.sendRequest(&Request{Command: CommandListTabs})
	if err != nil {
		return nil, err
	}

	var data TabsData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse tabs data: %w", err)
	}

	return &data, nil
}

// Capture asks the host to capture a window by ID.
func (c *Client) Capture(windowID uint32) error {
	return c.capture(CapturePayload{WindowID: windowID})
}

// CaptureByTitle asks the host to capture the unique window whose title
// contains the given substring.
func (c *Client) CaptureByTitle(title string) error {
	return c.capture(CapturePayload{Title: title})
}

func (c *Client) capture(payload CapturePayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal capture payload: %w", err)
	}

	_, err = c.sendRequest(&Request{Command: CommandCapture, Payload: data})
	return err
}

// Release asks the host to release a tab; windowID 0 means the selected tab.
func (c *Client) Release(windowID uint32) error {
	data, err := json.Marshal(ReleasePayload{WindowID: windowID})
	if err != nil {
		return fmt.Errorf("failed to marshal release payload: %w", err)
	}

	_, err = c.sendRequest(&Request{Command: CommandRelease, Payload: data})
	return err
}

// Focus asks the host to select the tab holding the given window.
func (c *Client) Focus(windowID uint32) error {
	data, err := json.Marshal(FocusPayload{WindowID: windowID})
	if err != nil {
		return fmt.Errorf("failed to marshal focus payload: %w", err)
	}

	_, err = c.sendRequest(&Request{Command: CommandFocus, Payload: data})
	return err
}

// Close asks the host to request a graceful close of a window by ID.
func (c *Client) Close(windowID uint32) error {
	return c.close(ClosePayload{WindowID: windowID})
}

// CloseByTitle asks the host to close the unique window whose title contains
// the given substring.
func (c *Client) CloseByTitle(title string) error {
	return c.close(ClosePayload{Title: title})
}

func (c *Client) close(payload ClosePayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal close payload: %w", err)
	}

	_, err = c.sendRequest(&Request{Command: CommandClose, Payload: data})
	return err
}

// Ping checks if the host is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
