package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/tabdock/tabdock/internal/platform"
	"github.com/tabdock/tabdock/internal/runtimepath"
)

// Host is the tab-host surface the IPC server drives. Implemented by
// tabhost; methods are called from IPC goroutines and must be safe against
// the host's own event loop.
type Host interface {
	CapturableWindows() []platform.Window
	Tabs() []TabInfo
	CaptureWindow(id platform.WindowID) error
	ReleaseTab(id platform.WindowID) error
	FocusTab(id platform.WindowID) error
	CloseWindow(id platform.WindowID) error
}

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	host         Host
	startTime    time.Time
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server for a running host.
func NewServer(host Host) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}

	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		host:       host,
		startTime:  time.Now(),
	}, nil
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	log.Printf("IPC server listening on %s", s.socketPath)

	// Accept connections
	go s.acceptLoop()

	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			log.Printf("IPC accept error: %v", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		log.Printf("IPC read error: %v", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	resp := s.handleCommand(req)

	respData, err := resp.Marshal()
	if err != nil {
		log.Printf("Failed to marshal response: %v", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		log.Printf("Failed to send response: %v", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandListWindows:
		return s.handleListWindows()
	case CommandListTabs:
		return s.handleListTabs()
	case CommandCapture:
		return s.handleCapture(req.Payload)
	case CommandRelease:
		return s.handleRelease(req.Payload)
	case CommandFocus:
		return s.handleFocus(req.Payload)
	case CommandClose:
		return s.handleClose(req.Payload)
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func (s *Server) handleGetStatus() *Response {
	tabs := s.host.Tabs()
	selected := ""
	for _, tab := range tabs {
		if tab.Selected {
			selected = tab.Title
			break
		}
	}

	status := StatusData{
		HostRunning:     true,
		TabCount:        len(tabs),
		CapturableCount: len(s.host.CapturableWindows()),
		SelectedTitle:   selected,
		UptimeSeconds:   int64(time.Since(s.startTime).Seconds()),
	}

	resp, _ := NewOKResponse(status)
	return resp
}

func (s *Server) handleListWindows() *Response {
	windows := s.host.CapturableWindows()

	infos := make([]WindowInfo, len(windows))
	for i, w := range windows {
		infos[i] = WindowInfo{
			ID:    uint32(w.ID),
			PID:   w.PID,
			AppID: w.AppID,
			Title: w.Title,
		}
	}

	resp, _ := NewOKResponse(WindowsData{Windows: infos})
	return resp
}

func (s *Server) handleListTabs() *Response {
	resp, _ := NewOKResponse(TabsData{Tabs: s.host.Tabs()})
	return resp
}

func (s *Server) handleCapture(payload json.RawMessage) *Response {
	var req CapturePayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &req); err != nil {
			return NewErrorResponse(fmt.Sprintf("Invalid capture payload: %v", err))
		}
	}

	id := platform.WindowID(req.WindowID)
	if id == 0 {
		if req.Title == "" {
			return NewErrorResponse("capture requires window_id or title")
		}
		match, err := s.resolveTitle(req.Title)
		if err != nil {
			return NewErrorResponse(err.Error())
		}
		id = match
	}

	if err := s.host.CaptureWindow(id); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to capture window: %v", err))
	}

	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleRelease(payload json.RawMessage) *Response {
	var req ReleasePayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &req); err != nil {
			return NewErrorResponse(fmt.Sprintf("Invalid release payload: %v", err))
		}
	}

	if err := s.host.ReleaseTab(platform.WindowID(req.WindowID)); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to release tab: %v", err))
	}

	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleFocus(payload json.RawMessage) *Response {
	var req FocusPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid focus payload: %v", err))
	}
	if req.WindowID == 0 {
		return NewErrorResponse("focus requires window_id")
	}

	if err := s.host.FocusTab(platform.WindowID(req.WindowID)); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to focus tab: %v", err))
	}

	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleClose(payload json.RawMessage) *Response {
	var req ClosePayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &req); err != nil {
			return NewErrorResponse(fmt.Sprintf("Invalid close payload: %v", err))
		}
	}

	id := platform.WindowID(req.WindowID)
	if id == 0 {
		if req.Title == "" {
			return NewErrorResponse("close requires window_id or title")
		}
		match, err := s.resolveTitle(req.Title)
		if err != nil {
			return NewErrorResponse(err.Error())
		}
		id = match
	}

	if err := s.host.CloseWindow(id); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to close window: %v", err))
	}

	resp, _ := NewOKResponse(nil)
	return resp
}

// resolveTitle finds the unique capturable window whose title contains the
// given substring (case-insensitive).
func (s *Server) resolveTitle(substr string) (platform.WindowID, error) {
	lower := strings.ToLower(substr)

	var matches []platform.Window
	for _, w := range s.host.CapturableWindows() {
		if strings.Contains(strings.ToLower(w.Title), lower) {
			matches = append(matches, w)
		}
	}

	switch len(matches) {
	case 0:
		return 0, fmt.Errorf("no capturable window matches title %q", substr)
	case 1:
		return matches[0].ID, nil
	default:
		return 0, fmt.Errorf("title %q matches %d windows, use window_id", substr, len(matches))
	}
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}
