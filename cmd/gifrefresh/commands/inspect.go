package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"

	"github.com/agiangrant/gifrefresh/animated"
	"github.com/agiangrant/gifrefresh/retained"
)

// InspectCmd implements 'gifrefresh inspect'.
type InspectCmd struct {
	GIF       string `arg:"" name:"gif" help:"GIF path." type:"existingfile"`
	JSON      bool   `help:"Emit JSON."`
	MaxFrames int    `help:"Decode at most this many frames (0 = all)." default:"0"`
	MaxBytes  int64  `help:"Refuse files larger than this many bytes (0 = no limit)." default:"0"`
}

// inspectReport describes a decoded GIF as the refresh control sees it.
type inspectReport struct {
	Path           string  `json:"path"`
	Width          float32 `json:"width"`
	Height         float32 `json:"height"`
	Frames         int     `json:"frames"`
	TotalMS        int64   `json:"total_ms"`
	DurationsMS    []int64 `json:"durations_ms"`
	ExpandedHeight float32 `json:"expanded_height"`
}

func (c *InspectCmd) Run(ctx *kong.Context, cli *CLI) error {
	config, err := cli.Globals.loadProject(cli.logger)
	if err != nil {
		return err
	}
	frames, err := animated.DecodeFile(c.GIF, animated.Options{
		MaxFrames: c.MaxFrames,
		MaxBytes:  c.MaxBytes,
	})
	if err != nil {
		return err
	}
	report, err := buildReport(c.GIF, frames, config, cli.logger)
	if err != nil {
		return err
	}

	if c.JSON {
		enc := json.NewEncoder(ctx.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	return writeReport(ctx.Stdout, report, cli.Globals.useColor(ctx.Stdout))
}

func buildReport(path string, frames *animated.Frames, config ProjectConfig, logger *slog.Logger) (inspectReport, error) {
	size := frames.Size()
	report := inspectReport{
		Path:        path,
		Width:       size.Width,
		Height:      size.Height,
		Frames:      frames.FrameCount(),
		TotalMS:     frames.TotalDuration().Milliseconds(),
		DurationsMS: make([]int64, 0, frames.FrameCount()),
	}
	for i := 0; i < frames.FrameCount(); i++ {
		d, err := frames.FrameDuration(i)
		if err != nil {
			return report, err
		}
		report.DurationsMS = append(report.DurationsMS, d.Milliseconds())
	}

	loop := retained.NewLoop(config.LoopOptions(logger))
	ctl := retained.NewRefreshControl(loop, config.RefreshOptions(logger))
	defer ctl.Close()
	ctl.SetAnimatedImage(frames)
	report.ExpandedHeight = ctl.ExpandedHeight()
	return report, nil
}

func writeReport(w io.Writer, r inspectReport, color bool) error {
	header := fmt.Sprintf("%s  %gx%g  %d frames  %v",
		filepath.Base(r.Path), r.Width, r.Height, r.Frames, time.Duration(r.TotalMS)*time.Millisecond)
	if _, err := fmt.Fprintln(w, bold(header, color)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "expanded height: %g\n", r.ExpandedHeight); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%5s  %s\n", "frame", "duration"); err != nil {
		return err
	}
	for i, ms := range r.DurationsMS {
		if _, err := fmt.Fprintf(w, "%5d  %v\n", i, time.Duration(ms)*time.Millisecond); err != nil {
			return err
		}
	}
	return nil
}
