package ipc

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/tabdock/tabdock/internal/platform"
)

type fakeHost struct {
	windows  []platform.Window
	tabs     []TabInfo
	captured []platform.WindowID
	released []platform.WindowID
	focused  []platform.WindowID
	closed   []platform.WindowID
	failWith error
}

func (h *fakeHost) CapturableWindows() []platform.Window { return h.windows }
func (h *fakeHost) Tabs() []TabInfo                      { return h.tabs }

func (h *fakeHost) CaptureWindow(id platform.WindowID) error {
	if h.failWith != nil {
		return h.failWith
	}
	h.captured = append(h.captured, id)
	return nil
}

func (h *fakeHost) ReleaseTab(id platform.WindowID) error {
	h.released = append(h.released, id)
	return nil
}

func (h *fakeHost) FocusTab(id platform.WindowID) error {
	h.focused = append(h.focused, id)
	return nil
}

func (h *fakeHost) CloseWindow(id platform.WindowID) error {
	if h.failWith != nil {
		return h.failWith
	}
	h.closed = append(h.closed, id)
	return nil
}

func newTestServer(host Host) *Server {
	return &Server{host: host, startTime: time.Now()}
}

func TestHandleGetStatus(t *testing.T) {
	host := &fakeHost{
		windows: []platform.Window{{ID: 1, Title: "a"}},
		tabs: []TabInfo{
			{WindowID: 5, Title: "first"},
			{WindowID: 6, Title: "second", Selected: true},
		},
	}
	s := newTestServer(host)

	resp := s.handleCommand(&Request{Command: CommandGetStatus})
	if resp.Status != "OK" {
		t.Fatalf("expected OK, got %s: %s", resp.Status, resp.Error)
	}

	var status StatusData
	if err := json.Unmarshal(resp.Data, &status); err != nil {
		t.Fatalf("failed to parse status: %v", err)
	}
	if status.TabCount != 2 || status.CapturableCount != 1 {
		t.Fatalf("unexpected counts: %+v", status)
	}
	if status.SelectedTitle != "second" {
		t.Fatalf("expected selected title 'second', got %q", status.SelectedTitle)
	}
}

func TestHandleCaptureByID(t *testing.T) {
	host := &fakeHost{}
	s := newTestServer(host)

	payload, _ := json.Marshal(CapturePayload{WindowID: 42})
	resp := s.handleCommand(&Request{Command: CommandCapture, Payload: payload})
	if resp.Status != "OK" {
		t.Fatalf("expected OK, got %s: %s", resp.Status, resp.Error)
	}
	if len(host.captured) != 1 || host.captured[0] != 42 {
		t.Fatalf("expected capture of window 42, got %v", host.captured)
	}
}

func TestHandleCaptureByTitle(t *testing.T) {
	host := &fakeHost{windows: []platform.Window{
		{ID: 7, Title: "Mail Client"},
		{ID: 8, Title: "Editor"},
	}}
	s := newTestServer(host)

	payload, _ := json.Marshal(CapturePayload{Title: "mail"})
	resp := s.handleCommand(&Request{Command: CommandCapture, Payload: payload})
	if resp.Status != "OK" {
		t.Fatalf("expected OK, got %s: %s", resp.Status, resp.Error)
	}
	if len(host.captured) != 1 || host.captured[0] != 7 {
		t.Fatalf("expected capture of window 7, got %v", host.captured)
	}
}

func TestHandleCaptureAmbiguousTitle(t *testing.T) {
	host := &fakeHost{windows: []platform.Window{
		{ID: 7, Title: "Terminal 1"},
		{ID: 8, Title: "Terminal 2"},
	}}
	s := newTestServer(host)

	payload, _ := json.Marshal(CapturePayload{Title: "terminal"})
	resp := s.handleCommand(&Request{Command: CommandCapture, Payload: payload})
	if resp.Status != "ERROR" {
		t.Fatalf("expected error for ambiguous title, got %s", resp.Status)
	}
	if len(host.captured) != 0 {
		t.Fatalf("expected no capture, got %v", host.captured)
	}
}

func TestHandleCaptureRequiresSelector(t *testing.T) {
	s := newTestServer(&fakeHost{})

	resp := s.handleCommand(&Request{Command: CommandCapture})
	if resp.Status != "ERROR" {
		t.Fatalf("expected error without window_id or title")
	}
}

func TestHandleCaptureSurfacesHostError(t *testing.T) {
	host := &fakeHost{failWith: fmt.Errorf("window vanished")}
	s := newTestServer(host)

	payload, _ := json.Marshal(CapturePayload{WindowID: 3})
	resp := s.handleCommand(&Request{Command: CommandCapture, Payload: payload})
	if resp.Status != "ERROR" {
		t.Fatalf("expected host error to propagate")
	}
}

func TestHandleReleaseDefaultsToSelected(t *testing.T) {
	host := &fakeHost{}
	s := newTestServer(host)

	resp := s.handleCommand(&Request{Command: CommandRelease})
	if resp.Status != "OK" {
		t.Fatalf("expected OK, got %s: %s", resp.Status, resp.Error)
	}
	if len(host.released) != 1 || host.released[0] != 0 {
		t.Fatalf("expected release of selected tab (0), got %v", host.released)
	}
}

func TestHandleFocusRequiresID(t *testing.T) {
	s := newTestServer(&fakeHost{})

	payload, _ := json.Marshal(FocusPayload{WindowID: 0})
	resp := s.handleCommand(&Request{Command: CommandFocus, Payload: payload})
	if resp.Status != "ERROR" {
		t.Fatalf("expected error for focus without window_id")
	}
}

func TestHandleCloseByID(t *testing.T) {
	host := &fakeHost{}
	s := newTestServer(host)

	payload, _ := json.Marshal(ClosePayload{WindowID: 11})
	resp := s.handleCommand(&Request{Command: CommandClose, Payload: payload})
	if resp.Status != "OK" {
		t.Fatalf("expected OK, got %s: %s", resp.Status, resp.Error)
	}
	if len(host.closed) != 1 || host.closed[0] != 11 {
		t.Fatalf("expected close of window 11, got %v", host.closed)
	}
}

func TestHandleCloseByTitle(t *testing.T) {
	host := &fakeHost{windows: []platform.Window{
		{ID: 7, Title: "Mail Client"},
		{ID: 8, Title: "Editor"},
	}}
	s := newTestServer(host)

	payload, _ := json.Marshal(ClosePayload{Title: "editor"})
	resp := s.handleCommand(&Request{Command: CommandClose, Payload: payload})
	if resp.Status != "OK" {
		t.Fatalf("expected OK, got %s: %s", resp.Status, resp.Error)
	}
	if len(host.closed) != 1 || host.closed[0] != 8 {
		t.Fatalf("expected close of window 8, got %v", host.closed)
	}
}

func TestHandleCloseRequiresSelector(t *testing.T) {
	host := &fakeHost{}
	s := newTestServer(host)

	resp := s.handleCommand(&Request{Command: CommandClose})
	if resp.Status != "ERROR" {
		t.Fatalf("expected error without window_id or title")
	}
	if len(host.closed) != 0 {
		t.Fatalf("expected no close, got %v", host.closed)
	}
}

func TestHandleUnknownCommand(t *testing.T) {
	s := newTestServer(&fakeHost{})

	resp := s.handleCommand(&Request{Command: "NOPE"})
	if resp.Status != "ERROR" {
		t.Fatalf("expected error for unknown command")
	}
}

func TestParseRequestRoundTrip(t *testing.T) {
	payload, _ := json.Marshal(CapturePayload{WindowID: 9})
	req := &Request{Command: CommandCapture, Payload: payload}

	data, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	parsed, err := ParseRequest(data)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if parsed.Command != CommandCapture {
		t.Fatalf("expected CAPTURE, got %s", parsed.Command)
	}

	var got CapturePayload
	if err := json.Unmarshal(parsed.Payload, &got); err != nil {
		t.Fatalf("payload unmarshal failed: %v", err)
	}
	if got.WindowID != 9 {
		t.Fatalf("expected window 9, got %d", got.WindowID)
	}
}

func TestParseRequestRejectsGarbage(t *testing.T) {
	if _, err := ParseRequest([]byte("not json\n")); err == nil {
		t.Fatalf("expected parse error")
	}
}
