package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"bvhgav/internal/batch"
	"bvhgav/internal/config"
	"bvhgav/internal/gav"
)

var errUsage = errors.New("usage")

type options struct {
	configPath string
	flags      config.Flags
	sourceDir  string
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
	if err := cfg.Resolve(opts.flags); err != nil {
		return err
	}

	sources, err := batch.Scan(opts.sourceDir, cfg.SourceExt)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		fmt.Fprintln(out, "No BVH files found to convert")
		return nil
	}

	fmt.Fprintf(out, "Converting %d BVH files with %d workers...\n", len(sources), cfg.Workers)
	startTime := time.Now()

	results := batch.Run(batch.Config{
		OutputExt:    cfg.OutputExt,
		Workers:      cfg.Workers,
		JointWorkers: cfg.JointWorkers,
		Encode:       gav.EncodeOptions{Canonical: cfg.Canonical},
		Progress:     out,
	}, sources)

	for _, r := range results {
		if !r.Success {
			fmt.Fprintf(errOut, "Failed to convert %s: %s\n", r.Source, r.Error)
		}
	}
	converted, failed := batch.Summary(results)

	if cfg.WriteManifest {
		manifestPath := filepath.Join(opts.sourceDir, cfg.ManifestName)
		if err := batch.WriteManifest(manifestPath, results); err != nil {
			fmt.Fprintf(errOut, "Failed to write manifest %s: %v\n", manifestPath, err)
		} else {
			fmt.Fprintf(out, "Manifest written to %s\n", manifestPath)
		}
	}

	fmt.Fprintf(out, "conversion: %s\n", time.Since(startTime))
	if failed > 0 {
		fmt.Fprintf(out, "%d files failed\n", failed)
	}
	if converted > 0 {
		fmt.Fprintf(out, "Successfully converted %d BVH files to GAV\n", converted)
	}
	return nil
}

func parseOptions(args []string, errOut io.Writer) (options, error) {
	var opts options

	fs := flag.NewFlagSet("bvh2gav", flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.Usage = func() {
		fmt.Fprintln(errOut, "Usage: bvh2gav [flags] <source_dir>")
		fs.PrintDefaults()
	}
	fs.StringVar(&opts.configPath, "config", "", "JSON config file")
	fs.IntVar(&opts.flags.Workers, "workers", 0, "files converted in parallel (0 = number of CPUs)")
	fs.BoolVar(&opts.flags.Canonical, "canonical", false, "store rotations with a non-negative scalar part")
	fs.BoolVar(&opts.flags.Manifest, "manifest", false, "write a manifest of converted files")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return opts, flag.ErrHelp
		}
		return opts, errUsage
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return opts, errUsage
	}
	opts.sourceDir = fs.Arg(0)
	return opts, nil
}
