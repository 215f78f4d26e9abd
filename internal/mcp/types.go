package mcp

// ListWindowsInput is the input for the list_windows tool.
type ListWindowsInput struct{}

// WindowEntry describes one capturable desktop window.
type WindowEntry struct {
	WindowID uint32 `json:"window_id"`
	PID      int    `json:"pid,omitempty"`
	AppID    string `json:"app_id,omitempty"`
	Title    string `json:"title"`
}

// ListWindowsOutput is the output for the list_windows tool.
type ListWindowsOutput struct {
	Windows []WindowEntry `json:"windows"`
}

// ListTabsInput is the input for the list_tabs tool.
type ListTabsInput struct{}

// TabEntry describes one captured tab.
type TabEntry struct {
	WindowID uint32 `json:"window_id"`
	Title    string `json:"title"`
	Selected bool   `json:"selected"`
}

// ListTabsOutput is the output for the list_tabs tool.
type ListTabsOutput struct {
	Tabs []TabEntry `json:"tabs"`
}

// CaptureWindowInput is the input for the capture_window tool.
type CaptureWindowInput struct {
	WindowID uint32 `json:"window_id,omitempty" jsonschema:"Window ID to capture. One of window_id or title is required."`
	Title    string `json:"title,omitempty" jsonschema:"Case-insensitive title substring; must match exactly one capturable window."`
}

// CaptureWindowOutput is the output for the capture_window tool.
type CaptureWindowOutput struct {
	Captured bool `json:"captured"`
}

// ReleaseWindowInput is the input for the release_window tool.
type ReleaseWindowInput struct {
	WindowID uint32 `json:"window_id,omitempty" jsonschema:"Window ID of the tab to release. Omit to release the selected tab."`
}

// ReleaseWindowOutput is the output for the release_window tool.
type ReleaseWindowOutput struct {
	Released bool `json:"released"`
}

// FocusTabInput is the input for the focus_tab tool.
type FocusTabInput struct {
	WindowID uint32 `json:"window_id" jsonschema:"required,Window ID of the tab to select"`
}

// FocusTabOutput is the output for the focus_tab tool.
type FocusTabOutput struct {
	Focused bool `json:"focused"`
}

// CloseWindowInput is the input for the close_window tool.
type CloseWindowInput struct {
	WindowID uint32 `json:"window_id,omitempty" jsonschema:"Window ID to close. One of window_id or title is required."`
	Title    string `json:"title,omitempty" jsonschema:"Case-insensitive title substring; must match exactly one capturable window."`
}

// CloseWindowOutput is the output for the close_window tool.
type CloseWindowOutput struct {
	Closed bool `json:"closed"`
}

// GetStatusInput is the input for the get_status tool.
type GetStatusInput struct{}

// GetStatusOutput is the output for the get_status tool.
type GetStatusOutput struct {
	HostRunning     bool   `json:"host_running"`
	TabCount        int    `json:"tab_count"`
	CapturableCount int    `json:"capturable_count"`
	SelectedTitle   string `json:"selected_title,omitempty"`
	UptimeSeconds   int64  `json:"uptime_seconds"`
}
