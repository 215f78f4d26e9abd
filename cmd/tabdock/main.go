package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/tabdock/tabdock/internal/config"
	"github.com/tabdock/tabdock/internal/ipc"
	"github.com/tabdock/tabdock/internal/picker"
	"github.com/tabdock/tabdock/internal/tabhost"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "run":
		if len(os.Args) > 2 && (os.Args[2] == "help" || os.Args[2] == "-h" || os.Args[2] == "--help") {
			fmt.Fprintln(os.Stdout, "Usage: tabdock run")
			os.Exit(0)
		}
		if len(os.Args) > 2 {
			fmt.Fprintln(os.Stderr, "run takes no arguments")
			fmt.Fprintln(os.Stderr, "")
			fmt.Fprintln(os.Stderr, "Usage: tabdock run")
			os.Exit(2)
		}
		runHost()
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "list":
		os.Exit(runList(os.Args[2:]))
	case "tabs":
		os.Exit(runTabs(os.Args[2:]))
	case "capture":
		os.Exit(runCapture(os.Args[2:]))
	case "release":
		os.Exit(runRelease(os.Args[2:]))
	case "focus":
		os.Exit(runFocus(os.Args[2:]))
	case "close":
		os.Exit(runClose(os.Args[2:]))
	case "pick":
		os.Exit(runPick(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: tabdock <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  run                 Start the tab host (foreground)")
	fmt.Fprintln(w, "  status              Show host status")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  list                List capturable desktop windows")
	fmt.Fprintln(w, "  tabs                List captured tabs")
	fmt.Fprintln(w, "  capture             Capture a window as a tab")
	fmt.Fprintln(w, "  release             Release a tab back to the desktop")
	fmt.Fprintln(w, "  focus               Select a tab")
	fmt.Fprintln(w, "  close               Ask a window to close itself")
	fmt.Fprintln(w, "  pick                Pick a window to capture interactively")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'tabdock <command> --help' for command-specific options.")
}

func runHost() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.Printf("Configuration loaded (poll: %dms, host title: %q)", cfg.PollIntervalMS, cfg.HostTitle)

	host, err := tabhost.Start(cfg)
	if err != nil {
		log.Fatalf("Failed to start tab host: %v", err)
	}

	server, err := ipc.NewServer(host)
	if err != nil {
		log.Fatalf("Failed to create IPC server: %v", err)
	}
	if err := server.Start(); err != nil {
		log.Fatalf("Failed to start IPC server: %v", err)
	}
	defer server.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		sig := <-sigCh
		log.Printf("Received %v, releasing captured windows", sig)
		host.Shutdown()
	}()

	log.Println("tabdock host started")
	host.Run()
	log.Println("tabdock host stopped")
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: tabdock status")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show host status via IPC.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	status, err := client.GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("host_running:     %v\n", status.HostRunning)
	fmt.Printf("tab_count:        %d\n", status.TabCount)
	fmt.Printf("capturable_count: %d\n", status.CapturableCount)
	if status.SelectedTitle != "" {
		fmt.Printf("selected_tab:     %s\n", status.SelectedTitle)
	}
	fmt.Printf("uptime_seconds:   %d\n", status.UptimeSeconds)
	return 0
}

func runList(args []string) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	asJSON := fs.Bool("json", false, "Output as JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: tabdock list [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "List desktop windows the host can capture.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	client := ipc.NewClient()
	data, err := client.ListWindows()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if *asJSON {
		out, err := json.MarshalIndent(data.Windows, "", "  ")
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println(string(out))
		return 0
	}

	if len(data.Windows) == 0 {
		fmt.Println("no capturable windows")
		return 0
	}
	fmt.Printf("%-12s %-8s %-20s %s\n", "WINDOW", "PID", "APP", "TITLE")
	for _, w := range data.Windows {
		fmt.Printf("%-12s %-8d %-20s %s\n", fmt.Sprintf("0x%x", w.ID), w.PID, w.AppID, w.Title)
	}
	return 0
}

func runTabs(args []string) int {
	fs := flag.NewFlagSet("tabs", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	asJSON := fs.Bool("json", false, "Output as JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: tabdock tabs [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "List the tabs currently held by the host.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	client := ipc.NewClient()
	data, err := client.ListTabs()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if *asJSON {
		out, err := json.MarshalIndent(data.Tabs, "", "  ")
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println(string(out))
		return 0
	}

	if len(data.Tabs) == 0 {
		fmt.Println("no tabs")
		return 0
	}
	for _, tab := range data.Tabs {
		marker := " "
		if tab.Selected {
			marker = "*"
		}
		fmt.Printf("%s 0x%-10x %s\n", marker, tab.WindowID, tab.Title)
	}
	return 0
}

func runCapture(args []string) int {
	fs := flag.NewFlagSet("capture", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	id := fs.Uint("id", 0, "Window ID to capture")
	title := fs.String("title", "", "Unique title substring of the window to capture")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: tabdock capture [--id N | --title S] [TITLE]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Capture a desktop window as a tab in the running host. The window")
		fmt.Fprintln(os.Stderr, "is identified by ID or by a title substring that matches exactly one")
		fmt.Fprintln(os.Stderr, "capturable window.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	selector := *title
	if selector == "" && fs.NArg() > 0 {
		selector = fs.Arg(0)
	}

	client := ipc.NewClient()
	var err error
	switch {
	case *id != 0:
		err = client.Capture(uint32(*id))
	case selector != "":
		err = client.CaptureByTitle(selector)
	default:
		fmt.Fprintln(os.Stderr, "capture requires --id or a title")
		fs.Usage()
		return 2
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runRelease(args []string) int {
	fs := flag.NewFlagSet("release", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	id := fs.Uint("id", 0, "Window ID of the tab to release (default: selected tab)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: tabdock release [--id N]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Release a captured tab back to the desktop. Without --id the")
		fmt.Fprintln(os.Stderr, "selected tab is released.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	client := ipc.NewClient()
	if err := client.Release(uint32(*id)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runFocus(args []string) int {
	fs := flag.NewFlagSet("focus", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	id := fs.Uint("id", 0, "Window ID of the tab to select")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: tabdock focus --id N")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Select the tab holding the given window.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if *id == 0 {
		fmt.Fprintln(os.Stderr, "focus requires --id")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	if err := client.Focus(uint32(*id)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runClose(args []string) int {
	fs := flag.NewFlagSet("close", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	id := fs.Uint("id", 0, "Window ID to close")
	title := fs.String("title", "", "Unique title substring of the window to close")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: tabdock close [--id N | --title S]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Ask a window to close itself gracefully. Works on capturable desktop")
		fmt.Fprintln(os.Stderr, "windows and on captured tabs; a closing tab disappears from the host.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	client := ipc.NewClient()
	var err error
	switch {
	case *id != 0:
		err = client.Close(uint32(*id))
	case *title != "":
		err = client.CloseByTitle(*title)
	default:
		fmt.Fprintln(os.Stderr, "close requires --id or --title")
		fs.Usage()
		return 2
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runPick(args []string) int {
	fs := flag.NewFlagSet("pick", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: tabdock pick")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Pick a window to capture from an interactive terminal list.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "pick takes no arguments")
		fs.Usage()
		return 2
	}

	if err := picker.New(ipc.NewClient()).Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  tabdock config validate [--path PATH]")
		fmt.Fprintln(os.Stderr, "  tabdock config print [--path PATH]")
		return 2
	}

	switch args[0] {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/tabdock/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		var err error
		if *path == "" {
			_, err = config.Load()
		} else {
			_, err = config.LoadFromFile(*path)
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println("config: ok")
		return 0

	case "print":
		fs := flag.NewFlagSet("print", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/tabdock/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		var cfg *config.Config
		var err error
		if *path == "" {
			cfg, err = config.Load()
		} else {
			cfg, err = config.LoadFromFile(*path)
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if err := cfg.Print(os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config command: %s\n", args[0])
		return 2
	}
}
