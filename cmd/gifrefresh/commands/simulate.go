package commands

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"

	"github.com/agiangrant/gifrefresh/animated"
	"github.com/agiangrant/gifrefresh/retained"
)

// SimulateCmd implements 'gifrefresh simulate'.
type SimulateCmd struct {
	GIF    string        `arg:"" name:"gif" help:"GIF path." type:"existingfile"`
	Pull   float32       `help:"Pull distance in points (default: simulate.pull, else 1.5x the expanded height)."`
	Work   time.Duration `help:"Time between the commit and EndRefreshing (default: simulate.work)."`
	Render string        `help:"Write a PNG of the control at every state change into this directory." type:"path"`
}

func (c *SimulateCmd) Run(ctx *kong.Context, cli *CLI) error {
	config, err := cli.Globals.loadProject(cli.logger)
	if err != nil {
		return err
	}
	frames, err := animated.DecodeFile(c.GIF)
	if err != nil {
		return err
	}

	sim := simulation{
		Pull: config.Simulate.Pull,
		Work: seconds(config.Simulate.Work),
		Tail: seconds(config.Simulate.Tail),
	}
	if c.Pull > 0 {
		sim.Pull = c.Pull
	}
	if c.Work > 0 {
		sim.Work = c.Work
	}
	if c.Render != "" {
		if err := os.MkdirAll(c.Render, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", c.Render, err)
		}
		sim.Observe = func(i int, ev simEvent, ctl *retained.RefreshControl, width float32) error {
			return renderPNG(filepath.Join(c.Render, fmt.Sprintf("%02d-%s.png", i, ev.State)), ctl, width)
		}
	}

	res, err := simulate(frames, config, sim, cli.logger)
	if err != nil {
		return err
	}
	color := cli.Globals.useColor(ctx.Stdout)
	header := fmt.Sprintf("%s  expanded %g  pull %g  work %v",
		filepath.Base(c.GIF), res.Expanded, res.Pull, sim.Work)
	if _, err := fmt.Fprintln(ctx.Stdout, bold(header, color)); err != nil {
		return err
	}
	return writeEvents(ctx.Stdout, res)
}

// simulation parameters for one headless refresh cycle.
type simulation struct {
	Pull float32       // 0 pulls one and a half expanded heights
	Work time.Duration // commit to EndRefreshing
	Tail time.Duration // stepped after the control settles

	// Observe is called for every recorded state change, if set.
	Observe func(i int, ev simEvent, ctl *retained.RefreshControl, width float32) error
}

// simEvent is a state change seen after a frame.
type simEvent struct {
	At       time.Duration
	State    retained.RefreshState
	Offset   float32
	InsetTop float32
	Index    int
}

type simResult struct {
	Events   []simEvent
	Commits  int
	Expanded float32
	Pull     float32
	Elapsed  time.Duration
}

// simEpoch anchors simulated frame timestamps.
var simEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// simulate drives a scroll view and refresh control through a drag past
// the full reveal, the release, the simulated work and the spring-back,
// stepping the loop on a synthetic clock.
func simulate(img animated.AnimatedImage, config ProjectConfig, sim simulation, logger *slog.Logger) (simResult, error) {
	loop := retained.NewLoop(config.LoopOptions(logger))
	scroll := retained.NewScrollView(loop.Animations(), config.ScrollOptions())
	ctl := retained.NewRefreshControl(loop, config.RefreshOptions(logger))
	defer ctl.Close()
	ctl.SetAnimatedImage(img)
	ctl.SetContentMode(config.ContentMode())
	ctl.Attach(scroll)

	res := simResult{Expanded: ctl.ExpandedHeight(), Pull: sim.Pull}
	if res.Pull <= 0 {
		res.Pull = 1.5 * res.Expanded
	}
	ctl.AddTarget(retained.ControlEventValueChanged, func(retained.ControlEvent) {
		res.Commits++
		logger.Info("refresh committed", "work", sim.Work)
		loop.After(sim.Work, ctl.EndRefreshing)
	})

	fps := config.Loop.TargetFPS
	if fps < 1 {
		fps = retained.DefaultLoopConfig().TargetFPS
	}
	frameTime := time.Second / time.Duration(fps)
	now := simEpoch

	record := func() error {
		state := ctl.State()
		if n := len(res.Events); n > 0 && res.Events[n-1].State == state {
			return nil
		}
		ev := simEvent{
			At:       now.Sub(simEpoch),
			State:    state,
			Offset:   scroll.ContentOffset().Y,
			InsetTop: scroll.ContentInset().Top,
			Index:    ctl.ImageView().Index(),
		}
		res.Events = append(res.Events, ev)
		logger.Debug("state changed", "at", ev.At, "state", ev.State, "offset", ev.Offset, "inset", ev.InsetTop, "index", ev.Index)
		if sim.Observe != nil {
			return sim.Observe(len(res.Events)-1, ev, ctl, scroll.Bounds().Width)
		}
		return nil
	}
	step := func() error {
		now = now.Add(frameTime)
		loop.Step(now)
		return record()
	}

	if err := step(); err != nil {
		return res, err
	}

	const dragSteps = 10
	scroll.BeginDragging()
	for i := 0; i < dragSteps; i++ {
		scroll.DragBy(res.Pull / dragSteps)
		if err := step(); err != nil {
			return res, err
		}
	}
	scroll.EndDragging(0)

	deadline := now.Add(sim.Work + 10*time.Second)
	for {
		if err := step(); err != nil {
			return res, err
		}
		if ctl.State() == retained.RefreshIdle && !loop.Animations().HasActive() && loop.Pending() == 0 {
			break
		}
		if !now.Before(deadline) {
			return res, fmt.Errorf("refresh did not settle after %v", now.Sub(simEpoch))
		}
	}

	for end := now.Add(sim.Tail); now.Before(end); {
		if err := step(); err != nil {
			return res, err
		}
	}
	res.Elapsed = now.Sub(simEpoch)
	return res, nil
}

func writeEvents(w io.Writer, res simResult) error {
	for _, ev := range res.Events {
		_, err := fmt.Fprintf(w, "%8.3fs  %-10s  offset=%-8g inset=%-8g frame=%d\n",
			ev.At.Seconds(), ev.State, ev.Offset, ev.InsetTop, ev.Index)
		if err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "commits: %d  elapsed: %v\n", res.Commits, res.Elapsed)
	return err
}

// renderPNG writes the control's current frame, laid out in a strip as
// wide as the host and as tall as the expanded control.
func renderPNG(path string, ctl *retained.RefreshControl, width float32) error {
	bounds := retained.Rect{Width: width, Height: ctl.ExpandedHeight()}
	dst := image.NewRGBA(image.Rect(0, 0, int(math.Ceil(float64(bounds.Width))), int(math.Ceil(float64(bounds.Height)))))
	ctl.ImageView().Render(dst, bounds)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, dst); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return f.Close()
}
