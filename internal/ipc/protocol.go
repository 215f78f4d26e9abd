package ipc

import (
	"encoding/json"
	"fmt"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandGetStatus   CommandType = "GET_STATUS"
	CommandListWindows CommandType = "LIST_WINDOWS"
	CommandListTabs    CommandType = "LIST_TABS"
	CommandCapture     CommandType = "CAPTURE"
	CommandRelease     CommandType = "RELEASE"
	CommandFocus       CommandType = "FOCUS"
	CommandClose       CommandType = "CLOSE"
)

// Request represents an IPC request from client to host
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from host to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	HostRunning      bool   `json:"host_running"`
	TabCount         int    `json:"tab_count"`
	CapturableCount  int    `json:"capturable_count"`
	SelectedTitle    string `json:"selected_title,omitempty"`
	UptimeSeconds    int64  `json:"uptime_seconds"`
}

// WindowInfo describes one capturable window.
type WindowInfo struct {
	ID    uint32 `json:"id"`
	PID   int    `json:"pid,omitempty"`
	AppID string `json:"app_id,omitempty"`
	Title string `json:"title"`
}

// WindowsData represents the data returned by LIST_WINDOWS
type WindowsData struct {
	Windows []WindowInfo `json:"windows"`
}

// TabInfo describes one captured tab.
type TabInfo struct {
	WindowID uint32 `json:"window_id"`
	Title    string `json:"title"`
	Selected bool   `json:"selected"`
}

// TabsData represents the data returned by LIST_TABS
type TabsData struct {
	Tabs []TabInfo `json:"tabs"`
}

// CapturePayload selects a window by ID, or by title substring when ID is 0.
type CapturePayload struct {
	WindowID uint32 `json:"window_id,omitempty"`
	Title    string `json:"title,omitempty"`
}

// ReleasePayload selects a tab by window ID; 0 means the selected tab.
type ReleasePayload struct {
	WindowID uint32 `json:"window_id,omitempty"`
}

// FocusPayload selects a tab by window ID.
type FocusPayload struct {
	WindowID uint32 `json:"window_id"`
}

// ClosePayload selects the window to close, by ID or by title substring
// when ID is 0.
type ClosePayload struct {
	WindowID uint32 `json:"window_id,omitempty"`
	Title    string `json:"title,omitempty"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
