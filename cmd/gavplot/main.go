// Command gavplot renders a preview chart of a GAV tensor: the root
// translation and the rotation of one joint, plotted per frame.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"bvhgav/internal/config"
	"bvhgav/internal/gav"
	"bvhgav/internal/preview"
)

var errUsage = errors.New("usage")

type options struct {
	in         string
	out        string
	configPath string
	mode       string
	preview    preview.Options
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(args []string, out, errOut io.Writer) error {
	opts, err := parseOptions(args, errOut)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}

	cfg := config.Config{}
	if opts.configPath != "" {
		if cfg, err = config.Load(opts.configPath); err != nil {
			return err
		}
	}
	if err := cfg.Resolve(config.Flags{DecodeMode: opts.mode}); err != nil {
		return err
	}

	startTime := time.Now()
	tensor, err := gav.Load(opts.in)
	if err != nil {
		return err
	}
	anim, err := gav.Decode(tensor, cfg.Mode())
	if err != nil {
		return fmt.Errorf("%s: %w", opts.in, err)
	}
	fmt.Fprintf(out, "decoded %s %s (%s): %s\n", filepath.Base(opts.in), tensor.Shape(), cfg.DecodeMode, time.Since(startTime))

	if opts.preview.Title == "" {
		opts.preview.Title = filepath.Base(opts.in)
	}
	img, err := preview.Render(anim, opts.preview)
	if err != nil {
		return err
	}
	if err := preview.Save(opts.out, img); err != nil {
		return err
	}
	fmt.Fprintf(out, "preview written to %s\n", opts.out)
	return nil
}

func parseOptions(args []string, errOut io.Writer) (options, error) {
	opts := options{preview: preview.DefaultOptions()}

	fs := flag.NewFlagSet("gavplot", flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.Usage = func() {
		fmt.Fprintln(errOut, "Usage: gavplot -in <file.npy> [flags]")
		fs.PrintDefaults()
	}
	fs.StringVar(&opts.in, "in", "", "input GAV tensor (.npy)")
	fs.StringVar(&opts.out, "out", "", "output image, .webp or .png (default: input with .webp extension)")
	fs.StringVar(&opts.configPath, "config", "", "JSON config file")
	fs.StringVar(&opts.mode, "mode", "", "rotation decode mode: compat or reconstruct")
	fs.IntVar(&opts.preview.Joint, "joint", 0, "index of the joint whose rotation is plotted")
	fs.Float64Var(&opts.preview.FrameTime, "frametime", opts.preview.FrameTime, "seconds per frame on the time axis")
	fs.StringVar(&opts.preview.Title, "title", "", "chart title (default: input file name)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return opts, flag.ErrHelp
		}
		return opts, errUsage
	}
	if opts.in == "" || fs.NArg() != 0 {
		fs.Usage()
		return opts, errUsage
	}
	if opts.preview.FrameTime <= 0 {
		return opts, fmt.Errorf("frametime must be positive: %g", opts.preview.FrameTime)
	}
	if opts.out == "" {
		opts.out = gav.OutputPath(opts.in, ".webp")
	}
	return opts, nil
}
