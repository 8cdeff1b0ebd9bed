package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"hotfolder/internal/config"
	"hotfolder/internal/testsupport"
)

func writeTestConfig(t *testing.T, cfg *config.Config) string {
	t.Helper()

	var sb strings.Builder
	sb.WriteString("[workflow]\n")
	fmt.Fprintf(&sb, "poll_interval = %d\n", cfg.Workflow.PollInterval)
	fmt.Fprintf(&sb, "dispatch_timeout = %d\n", cfg.Workflow.DispatchTimeout)
	sb.WriteString("\n[logging]\n")
	fmt.Fprintf(&sb, "level = %q\n", cfg.Logging.Level)
	fmt.Fprintf(&sb, "format = %q\n", cfg.Logging.Format)
	fmt.Fprintf(&sb, "dir = %q\n", cfg.Logging.Dir)
	if cfg.History.Enabled {
		sb.WriteString("\n[history]\n")
		sb.WriteString("enabled = true\n")
		fmt.Fprintf(&sb, "path = %q\n", cfg.History.Path)
	}
	for _, folder := range cfg.Folders {
		sb.WriteString("\n[[folders]]\n")
		fmt.Fprintf(&sb, "name = %q\n", folder.Name)
		fmt.Fprintf(&sb, "watch_path = %q\n", folder.WatchPath)
		fmt.Fprintf(&sb, "printer = %q\n", folder.Printer)
		fmt.Fprintf(&sb, "success_folder = %q\n", folder.SuccessFolder)
		fmt.Fprintf(&sb, "error_folder = %q\n", folder.ErrorFolder)
	}

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func setupCLIConfig(t *testing.T, opts ...testsupport.ConfigOption) string {
	t.Helper()
	return writeTestConfig(t, testsupport.NewConfig(t, opts...))
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if configPath != "" {
		args = append([]string{"--config", configPath}, args...)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
