package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/agiangrant/gifrefresh/internal/testutil"
)

func writeGIF(t *testing.T, dir string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, "spinner.gif")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := Run(args, &stdout, &stderr, "1.2.3")
	return stdout.String(), err
}

func TestRunVersion(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out != "gifrefresh version 1.2.3\n" {
		t.Errorf("output = %q", out)
	}
}

func TestRunInit(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "project")

	out, err := run(t, "init", dir)
	if err != nil {
		t.Fatalf("init error = %v", err)
	}
	if !strings.Contains(out, "Created") {
		t.Errorf("output = %q, want a created message", out)
	}
	config, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if diff := cmp.Diff(DefaultConfig(), config); diff != "" {
		t.Errorf("written config mismatch (-want +got):\n%s", diff)
	}

	if _, err := run(t, "init", dir); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("second init error = %v, want already exists", err)
	}
	if _, err := run(t, "init", "--force", dir); err != nil {
		t.Errorf("init --force error = %v", err)
	}
}

func TestRunInspect(t *testing.T) {
	dir := t.TempDir()
	path := writeGIF(t, dir, testutil.GIF(t, 40, 80, 10, 20, 10, 10))

	out, err := run(t, "-C", dir, "inspect", path)
	if err != nil {
		t.Fatalf("inspect error = %v", err)
	}
	for _, want := range []string{
		"spinner.gif  40x80  4 frames  500ms",
		"expanded height: 80",
		"    1  200ms",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRunInspectJSON(t *testing.T) {
	dir := t.TempDir()
	path := writeGIF(t, dir, testutil.GIF(t, 40, 300, 10, 10))

	out, err := run(t, "-C", dir, "inspect", "--json", path)
	if err != nil {
		t.Fatalf("inspect error = %v", err)
	}
	var got inspectReport
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	want := inspectReport{
		Path:           path,
		Width:          40,
		Height:         300,
		Frames:         2,
		TotalMS:        200,
		DurationsMS:    []int64{100, 100},
		ExpandedHeight: 120, // a fifth of the 600pt display
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}
}

func TestRunInspectUsesProjectConfig(t *testing.T) {
	dir := t.TempDir()
	config := DefaultConfig()
	config.Refresh.DisplayHeight = 200
	if err := SaveConfig(dir, config); err != nil {
		t.Fatal(err)
	}
	path := writeGIF(t, dir, testutil.GIF(t, 40, 80, 10))

	out, err := run(t, "-C", dir, "inspect", "--json", path)
	if err != nil {
		t.Fatalf("inspect error = %v", err)
	}
	var got inspectReport
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatal(err)
	}
	if got.ExpandedHeight != 40 {
		t.Errorf("ExpandedHeight = %v, want 40", got.ExpandedHeight)
	}
}

func TestRunInspectErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.gif")
	if err := os.WriteFile(bad, []byte("GIF89a"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, "-C", dir, "inspect", bad); err == nil {
		t.Error("inspect of a truncated GIF succeeded")
	}
	if _, err := run(t, "-C", dir, "inspect", filepath.Join(dir, "missing.gif")); err == nil {
		t.Error("inspect of a missing file succeeded")
	}
}
