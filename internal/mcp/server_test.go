package mcp

import (
	"context"
	"fmt"
	"testing"

	"github.com/tabdock/tabdock/internal/ipc"
)

type fakeClient struct {
	windows  []ipc.WindowInfo
	tabs     []ipc.TabInfo
	captured []uint32
	byTitle  []string
	released []uint32
	focused  []uint32
	closed   []uint32
	closedBy []string
	failWith error
}

func (c *fakeClient) GetStatus() (*ipc.StatusData, error) {
	if c.failWith != nil {
		return nil, c.failWith
	}
	selected := ""
	for _, t := range c.tabs {
		if t.Selected {
			selected = t.Title
		}
	}
	return &ipc.StatusData{
		HostRunning:     true,
		TabCount:        len(c.tabs),
		CapturableCount: len(c.windows),
		SelectedTitle:   selected,
	}, nil
}

func (c *fakeClient) ListWindows() (*ipc.WindowsData, error) {
	if c.failWith != nil {
		return nil, c.failWith
	}
	return &ipc.WindowsData{Windows: c.windows}, nil
}

func (c *fakeClient) ListTabs() (*ipc.TabsData, error) {
	if c.failWith != nil {
		return nil, c.failWith
	}
	return &ipc.TabsData{Tabs: c.tabs}, nil
}

func (c *fakeClient) Capture(windowID uint32) error {
	if c.failWith != nil {
		return c.failWith
	}
	c.captured = append(c.captured, windowID)
	return nil
}

func (c *fakeClient) CaptureByTitle(title string) error {
	if c.failWith != nil {
		return c.failWith
	}
	c.byTitle = append(c.byTitle, title)
	return nil
}

func (c *fakeClient) Release(windowID uint32) error {
	c.released = append(c.released, windowID)
	return nil
}

func (c *fakeClient) Focus(windowID uint32) error {
	c.focused = append(c.focused, windowID)
	return nil
}

func (c *fakeClient) Close(windowID uint32) error {
	if c.failWith != nil {
		return c.failWith
	}
	c.closed = append(c.closed, windowID)
	return nil
}

func (c *fakeClient) CloseByTitle(title string) error {
	if c.failWith != nil {
		return c.failWith
	}
	c.closedBy = append(c.closedBy, title)
	return nil
}

func newTestServer(client hostClient) *Server {
	return &Server{client: client}
}

func TestListWindowsTool(t *testing.T) {
	client := &fakeClient{windows: []ipc.WindowInfo{
		{ID: 7, PID: 100, AppID: "editor", Title: "Editor"},
	}}
	s := newTestServer(client)

	_, out, err := s.handleListWindows(context.Background(), nil, ListWindowsInput{})
	if err != nil {
		t.Fatalf("list_windows failed: %v", err)
	}
	if len(out.Windows) != 1 || out.Windows[0].WindowID != 7 || out.Windows[0].Title != "Editor" {
		t.Fatalf("unexpected output: %+v", out)
	}
}

func TestListTabsTool(t *testing.T) {
	client := &fakeClient{tabs: []ipc.TabInfo{
		{WindowID: 1, Title: "first"},
		{WindowID: 2, Title: "second", Selected: true},
	}}
	s := newTestServer(client)

	_, out, err := s.handleListTabs(context.Background(), nil, ListTabsInput{})
	if err != nil {
		t.Fatalf("list_tabs failed: %v", err)
	}
	if len(out.Tabs) != 2 || !out.Tabs[1].Selected {
		t.Fatalf("unexpected output: %+v", out)
	}
}

func TestCaptureWindowByID(t *testing.T) {
	client := &fakeClient{}
	s := newTestServer(client)

	_, out, err := s.handleCaptureWindow(context.Background(), nil, CaptureWindowInput{WindowID: 42})
	if err != nil || !out.Captured {
		t.Fatalf("expected capture to succeed, got %v", err)
	}
	if len(client.captured) != 1 || client.captured[0] != 42 {
		t.Fatalf("expected capture of 42, got %v", client.captured)
	}
}

func TestCaptureWindowByTitle(t *testing.T) {
	client := &fakeClient{}
	s := newTestServer(client)

	_, _, err := s.handleCaptureWindow(context.Background(), nil, CaptureWindowInput{Title: "mail"})
	if err != nil {
		t.Fatalf("capture by title failed: %v", err)
	}
	if len(client.byTitle) != 1 || client.byTitle[0] != "mail" {
		t.Fatalf("expected title capture, got %v", client.byTitle)
	}
}

func TestCaptureWindowRequiresSelector(t *testing.T) {
	s := newTestServer(&fakeClient{})

	if _, _, err := s.handleCaptureWindow(context.Background(), nil, CaptureWindowInput{}); err == nil {
		t.Fatalf("expected error without window_id or title")
	}
}

func TestCaptureWindowSurfacesHostError(t *testing.T) {
	client := &fakeClient{failWith: fmt.Errorf("host not running")}
	s := newTestServer(client)

	if _, _, err := s.handleCaptureWindow(context.Background(), nil, CaptureWindowInput{WindowID: 3}); err == nil {
		t.Fatalf("expected host error to propagate")
	}
}

func TestReleaseWindowDefaultsToSelected(t *testing.T) {
	client := &fakeClient{}
	s := newTestServer(client)

	_, out, err := s.handleReleaseWindow(context.Background(), nil, ReleaseWindowInput{})
	if err != nil || !out.Released {
		t.Fatalf("expected release to succeed, got %v", err)
	}
	if len(client.released) != 1 || client.released[0] != 0 {
		t.Fatalf("expected release of selected tab (0), got %v", client.released)
	}
}

func TestFocusTabRequiresID(t *testing.T) {
	s := newTestServer(&fakeClient{})

	if _, _, err := s.handleFocusTab(context.Background(), nil, FocusTabInput{}); err == nil {
		t.Fatalf("expected error for focus without window_id")
	}
}

func TestCloseWindowByID(t *testing.T) {
	client := &fakeClient{}
	s := newTestServer(client)

	_, out, err := s.handleCloseWindow(context.Background(), nil, CloseWindowInput{WindowID: 9})
	if err != nil || !out.Closed {
		t.Fatalf("expected close to succeed, got %v", err)
	}
	if len(client.closed) != 1 || client.closed[0] != 9 {
		t.Fatalf("expected close of 9, got %v", client.closed)
	}
}

func TestCloseWindowByTitle(t *testing.T) {
	client := &fakeClient{}
	s := newTestServer(client)

	_, _, err := s.handleCloseWindow(context.Background(), nil, CloseWindowInput{Title: "mail"})
	if err != nil {
		t.Fatalf("close by title failed: %v", err)
	}
	if len(client.closedBy) != 1 || client.closedBy[0] != "mail" {
		t.Fatalf("expected title close, got %v", client.closedBy)
	}
}

func TestCloseWindowRequiresSelector(t *testing.T) {
	s := newTestServer(&fakeClient{})

	if _, _, err := s.handleCloseWindow(context.Background(), nil, CloseWindowInput{}); err == nil {
		t.Fatalf("expected error without window_id or title")
	}
}

func TestGetStatusTool(t *testing.T) {
	client := &fakeClient{
		windows: []ipc.WindowInfo{{ID: 1, Title: "a"}},
		tabs:    []ipc.TabInfo{{WindowID: 2, Title: "b", Selected: true}},
	}
	s := newTestServer(client)

	_, out, err := s.handleGetStatus(context.Background(), nil, GetStatusInput{})
	if err != nil {
		t.Fatalf("get_status failed: %v", err)
	}
	if out.TabCount != 1 || out.CapturableCount != 1 || out.SelectedTitle != "b" {
		t.Fatalf("unexpected status: %+v", out)
	}
}
