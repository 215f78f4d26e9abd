// Package mcp exposes the running tab host to MCP clients over stdio. Every
// tool is a thin bridge to the host's unix-socket IPC.
package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/tabdock/tabdock/internal/ipc"
)

const (
	ServerName    = "tabdock"
	ServerVersion = "0.1.0"
)

// hostClient is the IPC surface the tools need. Satisfied by *ipc.Client.
type hostClient interface {
	GetStatus() (*ipc.StatusData, error)
	ListWindows() (*ipc.WindowsData, error)
	ListTabs() (*ipc.TabsData, error)
	Capture(windowID uint32) error
	CaptureByTitle(title string) error
	Release(windowID uint32) error
	Focus(windowID uint32) error
	Close(windowID uint32) error
	CloseByTitle(title string) error
}

// Server is the MCP server bridging to a running tabdock host.
type Server struct {
	mcpServer *mcpsdk.Server
	client    hostClient
}

// NewServer creates an MCP server talking to the host over IPC.
func NewServer() *Server {
	s := &Server{client: ipc.NewClient()}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_windows",
		Description: "List desktop windows that can be captured as tabs in the tabdock host.",
	}, s.handleListWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_tabs",
		Description: "List the tabs currently held by the tabdock host, including which is selected.",
	}, s.handleListTabs)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "capture_window",
		Description: "Capture a desktop window as a new tab in the tabdock host. Identify the window by window_id or by a unique title substring. Capturing a window that is already a tab focuses its tab.",
	}, s.handleCaptureWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "release_window",
		Description: "Release a captured tab back to the desktop. Omit window_id to release the selected tab.",
	}, s.handleReleaseWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "focus_tab",
		Description: "Select the tab holding the given window.",
	}, s.handleFocusTab)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "close_window",
		Description: "Ask a window to close itself gracefully. Works on capturable desktop windows and on captured tabs; a closing tab disappears from the host.",
	}, s.handleCloseWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_status",
		Description: "Get tabdock host status: tab count, capturable window count, selected tab and uptime.",
	}, s.handleGetStatus)
}
