package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) handleListWindows(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListWindowsInput) (*mcpsdk.CallToolResult, ListWindowsOutput, error) {
	data, err := s.client.ListWindows()
	if err != nil {
		return nil, ListWindowsOutput{}, err
	}

	out := ListWindowsOutput{Windows: make([]WindowEntry, len(data.Windows))}
	for i, w := range data.Windows {
		out.Windows[i] = WindowEntry{
			WindowID: w.ID,
			PID:      w.PID,
			AppID:    w.AppID,
			Title:    w.Title,
		}
	}
	return nil, out, nil
}

func (s *Server) handleListTabs(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListTabsInput) (*mcpsdk.CallToolResult, ListTabsOutput, error) {
	data, err := s.client.ListTabs()
	if err != nil {
		return nil, ListTabsOutput{}, err
	}

	out := ListTabsOutput{Tabs: make([]TabEntry, len(data.Tabs))}
	for i, t := range data.Tabs {
		out.Tabs[i] = TabEntry{
			WindowID: t.WindowID,
			Title:    t.Title,
			Selected: t.Selected,
		}
	}
	return nil, out, nil
}

func (s *Server) handleCaptureWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args CaptureWindowInput) (*mcpsdk.CallToolResult, CaptureWindowOutput, error) {
	switch {
	case args.WindowID != 0:
		if err := s.client.Capture(args.WindowID); err != nil {
			return nil, CaptureWindowOutput{}, err
		}
	case args.Title != "":
		if err := s.client.CaptureByTitle(args.Title); err != nil {
			return nil, CaptureWindowOutput{}, err
		}
	default:
		return nil, CaptureWindowOutput{}, fmt.Errorf("capture_window requires window_id or title")
	}

	return nil, CaptureWindowOutput{Captured: true}, nil
}

func (s *Server) handleReleaseWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args ReleaseWindowInput) (*mcpsdk.CallToolResult, ReleaseWindowOutput, error) {
	if err := s.client.Release(args.WindowID); err != nil {
		return nil, ReleaseWindowOutput{}, err
	}
	return nil, ReleaseWindowOutput{Released: true}, nil
}

func (s *Server) handleFocusTab(_ context.Context, _ *mcpsdk.CallToolRequest, args FocusTabInput) (*mcpsdk.CallToolResult, FocusTabOutput, error) {
	if args.WindowID == 0 {
		return nil, FocusTabOutput{}, fmt.Errorf("focus_tab requires window_id")
	}
	if err := s.client.Focus(args.WindowID); err != nil {
		return nil, FocusTabOutput{}, err
	}
	return nil, FocusTabOutput{Focused: true}, nil
}

func (s *Server) handleCloseWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args CloseWindowInput) (*mcpsdk.CallToolResult, CloseWindowOutput, error) {
	switch {
	case args.WindowID != 0:
		if err := s.client.Close(args.WindowID); err != nil {
			return nil, CloseWindowOutput{}, err
		}
	case args.Title != "":
		if err := s.client.CloseByTitle(args.Title); err != nil {
			return nil, CloseWindowOutput{}, err
		}
	default:
		return nil, CloseWindowOutput{}, fmt.Errorf("close_window requires window_id or title")
	}

	return nil, CloseWindowOutput{Closed: true}, nil
}

func (s *Server) handleGetStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ GetStatusInput) (*mcpsdk.CallToolResult, GetStatusOutput, error) {
	status, err := s.client.GetStatus()
	if err != nil {
		return nil, GetStatusOutput{}, err
	}

	return nil, GetStatusOutput{
		HostRunning:     status.HostRunning,
		TabCount:        status.TabCount,
		CapturableCount: status.CapturableCount,
		SelectedTitle:   status.SelectedTitle,
		UptimeSeconds:   status.UptimeSeconds,
	}, nil
}
