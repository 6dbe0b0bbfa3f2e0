package commands

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/agiangrant/gifrefresh/animated"
	"github.com/agiangrant/gifrefresh/internal/testutil"
	"github.com/agiangrant/gifrefresh/retained"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func spinner(t *testing.T) *animated.Frames {
	t.Helper()
	frames, err := animated.Decode(testutil.GIF(t, 40, 80, 10, 10, 10, 10))
	if err != nil {
		t.Fatal(err)
	}
	return frames
}

func states(events []simEvent) []retained.RefreshState {
	out := make([]retained.RefreshState, len(events))
	for i, ev := range events {
		out[i] = ev.State
	}
	return out
}

func TestSimulateFullCycle(t *testing.T) {
	res, err := simulate(spinner(t), DefaultConfig(), simulation{Work: 500 * time.Millisecond}, quietLogger())
	if err != nil {
		t.Fatalf("simulate() error = %v", err)
	}

	want := []retained.RefreshState{
		retained.RefreshIdle,
		retained.RefreshPulling,
		retained.RefreshRefreshing,
		retained.RefreshRestoring,
		retained.RefreshIdle,
	}
	if diff := cmp.Diff(want, states(res.Events)); diff != "" {
		t.Errorf("state sequence mismatch (-want +got):\n%s", diff)
	}
	if res.Commits != 1 {
		t.Errorf("Commits = %d, want 1", res.Commits)
	}
	if res.Expanded != 80 || res.Pull != 120 {
		t.Errorf("Expanded, Pull = %v, %v, want 80, 120", res.Expanded, res.Pull)
	}

	refreshing := res.Events[2]
	if refreshing.InsetTop != 80 {
		t.Errorf("inset while refreshing = %v, want 80", refreshing.InsetTop)
	}
	idle := res.Events[4]
	if idle.InsetTop != 0 || idle.Index != 0 {
		t.Errorf("final inset, index = %v, %d, want 0, 0", idle.InsetTop, idle.Index)
	}
	if restoring := res.Events[3]; restoring.At-refreshing.At < 500*time.Millisecond {
		t.Errorf("restore began %v after the commit, want at least the 500ms of work", restoring.At-refreshing.At)
	}
}

func TestSimulateShortPull(t *testing.T) {
	res, err := simulate(spinner(t), DefaultConfig(), simulation{Pull: 40}, quietLogger())
	if err != nil {
		t.Fatalf("simulate() error = %v", err)
	}
	want := []retained.RefreshState{retained.RefreshIdle, retained.RefreshPulling, retained.RefreshIdle}
	if diff := cmp.Diff(want, states(res.Events)); diff != "" {
		t.Errorf("state sequence mismatch (-want +got):\n%s", diff)
	}
	if res.Commits != 0 {
		t.Errorf("Commits = %d, want 0", res.Commits)
	}
}

func TestSimulateKeepsHostInset(t *testing.T) {
	config := DefaultConfig()
	config.Scroll.InsetTop = 64

	res, err := simulate(spinner(t), config, simulation{}, quietLogger())
	if err != nil {
		t.Fatalf("simulate() error = %v", err)
	}
	last := res.Events[len(res.Events)-1]
	if last.State != retained.RefreshIdle || last.InsetTop != 64 {
		t.Errorf("final event = %+v, want idle with inset 64", last)
	}
	if res.Events[2].InsetTop != 144 {
		t.Errorf("inset while refreshing = %v, want 144", res.Events[2].InsetTop)
	}
}

func TestRunSimulateRender(t *testing.T) {
	dir := t.TempDir()
	path := writeGIF(t, dir, testutil.GIF(t, 40, 80, 10, 10, 10, 10))
	out := filepath.Join(dir, "frames")

	stdout, err := run(t, "-C", dir, "simulate", "--work", "200ms", "--render", out, path)
	if err != nil {
		t.Fatalf("simulate error = %v", err)
	}
	if !strings.Contains(stdout, "commits: 1") {
		t.Errorf("output missing commit count:\n%s", stdout)
	}
	for _, state := range []string{"refreshing", "restoring"} {
		if !strings.Contains(stdout, state) {
			t.Errorf("output missing %q:\n%s", state, stdout)
		}
	}

	entries, err := os.ReadDir(out)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	want := []string{"00-idle.png", "01-pulling.png", "02-refreshing.png", "03-restoring.png", "04-idle.png"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("rendered files mismatch (-want +got):\n%s", diff)
	}
}
