// Command bvh2csv exports the rotations, world positions and rest hierarchy of
// a BVH file as CSV tables.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"bvhgav/internal/export"
)

var errUsage = errors.New("usage")

type options struct {
	in     string
	outDir string
	export export.Options
	skip   struct{ rotation, position, hierarchy bool }
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
	if err := export.Bvh2Csv(opts.in, opts.outDir, opts.export, out); err != nil {
		return err
	}
	fmt.Fprintf(out, "exported %s to %s\n", filepath.Base(opts.in), opts.outDir)
	return nil
}

func parseOptions(args []string, errOut io.Writer) (options, error) {
	var opts options

	fs := flag.NewFlagSet("bvh2csv", flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.Usage = func() {
		fmt.Fprintln(errOut, "Usage: bvh2csv -in <file.bvh> [flags]")
		fs.PrintDefaults()
	}
	fs.StringVar(&opts.in, "in", "", "input BVH file")
	fs.StringVar(&opts.outDir, "out", "", "output directory (default: next to the input)")
	fs.Float64Var(&opts.export.Scale, "scale", 1, "scale applied to offsets and positions")
	fs.BoolVar(&opts.export.EndSites, "endsites", false, "include end sites as <joint>_end")
	fs.Float64Var(&opts.export.Rate, "rate", 0, "resample rotations at this many samples per second (0 = per frame)")
	fs.IntVar(&opts.export.Workers, "workers", 1, "joints sampled in parallel")
	fs.BoolVar(&opts.skip.rotation, "norot", false, "skip <name>_rot.csv")
	fs.BoolVar(&opts.skip.position, "nopos", false, "skip <name>_pos.csv")
	fs.BoolVar(&opts.skip.hierarchy, "nohierarchy", false, "skip <name>_hierarchy.csv")

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
	if opts.outDir == "" {
		opts.outDir = filepath.Dir(opts.in)
	}
	if opts.export.Rate < 0 {
		return opts, fmt.Errorf("rate must not be negative: %g", opts.export.Rate)
	}
	opts.export.Rotation = !opts.skip.rotation
	opts.export.Position = !opts.skip.position
	opts.export.Hierarchy = !opts.skip.hierarchy
	return opts, nil
}
