// animtool is a CLI utility for inspecting, converting and previewing
// skeletal animation clips.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	gomath "math"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-anim/internal/animator"
	"github.com/Faultbox/midgard-anim/internal/cliplib"
	"github.com/Faultbox/midgard-anim/internal/config"
	"github.com/Faultbox/midgard-anim/internal/logger"
	"github.com/Faultbox/midgard-anim/pkg/anim"
	"github.com/Faultbox/midgard-anim/pkg/formats"
)

// errUsage marks a bad invocation; the message is the usage line.
var errUsage = errors.New("usage")

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, config.Args(), os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, err)
			if err == errUsage {
				printUsage(os.Stderr)
			}
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, args []string, out io.Writer) error {
	if len(args) < 1 {
		return errUsage
	}

	command, rest := args[0], args[1:]
	switch command {
	case "info":
		return cmdInfo(cfg, rest, out)
	case "validate", "check":
		return cmdValidate(rest, out)
	case "convert":
		return cmdConvert(rest, out)
	case "sample":
		return cmdSample(cfg, rest, out)
	case "skin":
		return cmdSkin(cfg, rest, out)
	case "library", "ls":
		return cmdLibrary(cfg, rest, out, cfg.Library.Watch)
	case "watch":
		return cmdLibrary(cfg, rest, out, true)
	case "init-config":
		return cmdInitConfig(cfg, rest, out)
	case "help", "-h", "--help":
		printUsage(out)
		return nil
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `animtool - skeletal animation clip utility

Usage:
  animtool [global flags] <command> [options]

Commands:
  info <clip>                  Show clip name, duration and tracks
  validate <clip>...           Check clips for authoring problems
  convert [-compact] <in> <out> Convert between .json and .yaml clips
  sample [-joint name] <clip> <time>
                               Print the sampled pose at a time (seconds)
  skin [-frames n] [-fps f]    Run the bent-chain demo rig and print vertices
  library [dir]                List the clips in a directory (-watch keeps
                               reloading on change)
  watch [dir]                  Same as library -watch
  init-config <path>           Write the active config (.yaml or .toml)

Global flags:
  -config <path>   Config file (default: ./animtool.yaml or user config dir)
  -debug           Debug logging
  -loop wrap|clamp Playback loop mode
  -speed <x>       Playback speed multiplier
  -clips <dir>     Clip library directory
  -watch           Reload library clips when files change

A <clip> argument is a file path, or a clip name looked up in the library
directory when no such file exists.

Examples:
  animtool info walk.json
  animtool convert walk.json walk.yaml
  animtool -loop clamp sample walk.yaml 1.25
  animtool -clips ./clips sample walk 0.5
  animtool -debug watch ./clips`)
}

func usagef(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{errUsage}, args...)...)
}

// loadClip reads arg as a clip file, or looks it up by clip name in the
// configured library when no such file exists.
func loadClip(cfg *config.Config, arg string) (*anim.Clip, error) {
	if _, err := os.Stat(arg); err == nil || formats.DetectClipFormat(arg) != formats.FormatUnknown {
		return formats.LoadClip(arg)
	}

	lib, err := cliplib.Open(cfg.Library.ClipDir, logger.Named("cliplib"))
	if err != nil {
		return nil, err
	}
	clip, ok := lib.Get(arg)
	if !ok {
		return nil, fmt.Errorf("clip %q not found in %s", arg, lib.Dir())
	}
	return clip, nil
}

func cmdInfo(cfg *config.Config, args []string, out io.Writer) error {
	if len(args) < 1 {
		return usagef("animtool info <clip>")
	}

	clip, err := loadClip(cfg, args[0])
	if err != nil {
		return err
	}

	keys := 0
	for _, tr := range clip.Tracks {
		keys += len(tr.Keyframes)
	}

	fmt.Fprintf(out, "Clip:      %s\n", clip.Name)
	fmt.Fprintf(out, "Source:    %s\n", args[0])
	fmt.Fprintf(out, "Duration:  %.3fs\n", clip.Duration)
	fmt.Fprintf(out, "Tracks:    %d\n", len(clip.Tracks))
	fmt.Fprintf(out, "Keyframes: %d\n", keys)
	fmt.Fprintln(out)
	for _, tr := range clip.Tracks {
		first, last := tr.Keyframes[0].Time, tr.Keyframes[len(tr.Keyframes)-1].Time
		fmt.Fprintf(out, "  %-20s %3d keys  %.3f..%.3fs\n", tr.JointName, len(tr.Keyframes), first, last)
	}
	return nil
}

func cmdValidate(args []string, out io.Writer) error {
	if len(args) < 1 {
		return usagef("animtool validate <clip>...")
	}

	failed := 0
	for _, path := range args {
		if _, err := formats.LoadClip(path); err != nil {
			fmt.Fprintf(out, "FAIL %s: %v\n", path, err)
			failed++
			continue
		}
		fmt.Fprintf(out, "ok   %s\n", path)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d clips failed validation", failed, len(args))
	}
	return nil
}

func cmdConvert(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	compact := fs.Bool("compact", false, "Write JSON without indentation")
	if err := fs.Parse(args); err != nil {
		return usagef("%v", err)
	}
	if fs.NArg() < 2 {
		return usagef("animtool convert [-compact] <in> <out>")
	}

	clip, err := formats.LoadClip(fs.Arg(0))
	if err != nil {
		return err
	}
	if err := formats.SaveClip(clip, fs.Arg(1), !*compact); err != nil {
		return err
	}
	fmt.Fprintf(out, "Converted: %s -> %s (%s)\n", fs.Arg(0), fs.Arg(1), formats.DetectClipFormat(fs.Arg(1)))
	return nil
}

func cmdSample(cfg *config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("sample", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	joint := fs.String("joint", "", "Only print this joint")
	if err := fs.Parse(args); err != nil {
		return usagef("%v", err)
	}
	if fs.NArg() < 2 {
		return usagef("animtool sample [-joint name] <clip> <time>")
	}

	t, err := strconv.ParseFloat(fs.Arg(1), 64)
	if err != nil {
		return usagef("time must be a number: %v", err)
	}
	if gomath.IsNaN(t) || gomath.IsInf(t, 0) {
		return usagef("time must be finite, got %s", fs.Arg(1))
	}

	clip, err := loadClip(cfg, fs.Arg(0))
	if err != nil {
		return err
	}

	c, err := animator.ControllerFromConfig(clip, cfg)
	if err != nil {
		return err
	}
	// A zero step applies the loop mode to t.
	c.Time = t
	c.Advance(0)
	pose := c.Evaluate()

	fmt.Fprintf(out, "%s @ %.3fs (%s)\n", clip.Name, c.Time, c.Mode)
	printed := 0
	for _, e := range pose.Joints {
		if *joint != "" && e.Name != *joint {
			continue
		}
		printPose(out, e.Name, e.Pose)
		printed++
	}
	if *joint != "" && printed == 0 {
		return fmt.Errorf("clip %q has no track for joint %q", clip.Name, *joint)
	}
	return nil
}

func printPose(w io.Writer, name string, p anim.JointPose) {
	r := p.Rotation.WXYZ()
	fmt.Fprintf(w, "  %-20s t=(%.4f, %.4f, %.4f) r=(%.4f, %.4f, %.4f, %.4f) s=(%.4f, %.4f, %.4f)\n",
		name,
		p.Translation.X, p.Translation.Y, p.Translation.Z,
		r[0], r[1], r[2], r[3],
		p.Scale.X, p.Scale.Y, p.Scale.Z)
}

func cmdSkin(cfg *config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("skin", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	frames := fs.Int("frames", 5, "Number of frames to run")
	fps := fs.Float64("fps", 4, "Frames per second")
	if err := fs.Parse(args); err != nil {
		return usagef("%v", err)
	}
	if *frames < 1 || !(*fps > 0) {
		return usagef("animtool skin [-frames n>0] [-fps f>0]")
	}

	binding, mesh, clip := animator.BentChain()
	c, err := animator.ControllerFromConfig(clip, cfg)
	if err != nil {
		return err
	}
	a, err := animator.New(binding, c, mesh, animator.OptionsFromConfig(cfg))
	if err != nil {
		return err
	}

	dt := 1 / *fps
	for f := 0; f < *frames; f++ {
		step := dt
		if f == 0 {
			step = 0
		}
		if err := a.Tick(step); err != nil {
			return err
		}
		fmt.Fprintf(out, "frame %d t=%.3fs\n", f, c.Time)
		for i, p := range mesh.Positions {
			fmt.Fprintf(out, "  v%d (%.4f, %.4f, %.4f)\n", i, p.X, p.Y, p.Z)
		}
		b := mesh.Bounds
		fmt.Fprintf(out, "  bounds (%.4f, %.4f, %.4f)..(%.4f, %.4f, %.4f)\n",
			b.Min.X, b.Min.Y, b.Min.Z, b.Max.X, b.Max.Y, b.Max.Z)
	}
	return nil
}

func cmdLibrary(cfg *config.Config, args []string, out io.Writer, watch bool) error {
	dir := cfg.Library.ClipDir
	if len(args) > 0 {
		dir = args[0]
	}

	lib, err := cliplib.Open(dir, logger.Named("cliplib"))
	if err != nil {
		return err
	}
	for _, name := range lib.Names() {
		clip, _ := lib.Get(name)
		fmt.Fprintf(out, "loaded  %-24s %.3fs %d tracks\n", name, clip.Duration, len(clip.Tracks))
	}
	if !watch {
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("watching for clip changes, press Ctrl+C to stop", zap.String("dir", dir))
	return lib.Watch(ctx, func(ev cliplib.Event) {
		switch {
		case ev.Err != nil:
			fmt.Fprintf(out, "error   %s: %v\n", ev.Path, ev.Err)
		case ev.Removed:
			fmt.Fprintf(out, "removed %s\n", ev.Clip)
		default:
			fmt.Fprintf(out, "loaded  %s\n", ev.Clip)
		}
	})
}

func cmdInitConfig(cfg *config.Config, args []string, out io.Writer) error {
	if len(args) < 1 {
		return usagef("animtool init-config <path.yaml|path.toml>")
	}
	if err := cfg.SaveTo(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(out, "Wrote %s\n", args[0])
	return nil
}
