package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bvhgav/internal/bvh"
	"bvhgav/internal/keyframe"
	"bvhgav/internal/skeleton"
)

// Options selects which CSV files Bvh2Csv writes.
type Options struct {
	Scale     float64
	Rotation  bool
	Position  bool
	Hierarchy bool
	EndSites  bool
	Workers   int

	// Rate resamples the rotation curves at this many samples per second
	// instead of writing one row per source frame.
	Rate float64
}

// Bvh2Csv converts a BVH file to <name>_rot.csv, <name>_pos.csv and
// <name>_hierarchy.csv in dstDir, printing timings to log.
func Bvh2Csv(bvhPath, dstDir string, opts Options, log io.Writer) error {
	startTime := time.Now()

	doc, err := bvh.Load(bvhPath)
	if err != nil {
		return err
	}
	h, err := skeleton.Build(doc.Joints)
	if err != nil {
		return fmt.Errorf("export: %s: %w", bvhPath, err)
	}
	kf, err := keyframe.Build(doc, h, keyframe.Options{Workers: opts.Workers})
	if err != nil {
		return fmt.Errorf("export: %s: %w", bvhPath, err)
	}
	fmt.Fprintf(log, "file read: %s\n", time.Since(startTime))

	if err := os.MkdirAll(dstDir, 0755); err != nil {
		return fmt.Errorf("export: create %s: %w", dstDir, err)
	}
	base := strings.TrimSuffix(filepath.Base(bvhPath), filepath.Ext(bvhPath))

	if opts.Position {
		err := writeFile(filepath.Join(dstDir, base+"_pos.csv"), "positions", log, func(w io.Writer) error {
			return WriteJointPositions(w, h, kf, opts.Scale, opts.EndSites)
		})
		if err != nil {
			return err
		}
	}
	if opts.Rotation {
		err := writeFile(filepath.Join(dstDir, base+"_rot.csv"), "rotations", log, func(w io.Writer) error {
			if opts.Rate > 0 {
				tracks, err := keyframe.Tracks(h, kf)
				if err != nil {
					return err
				}
				return WriteResampledRotations(w, tracks, opts.Rate)
			}
			return WriteJointRotations(w, kf)
		})
		if err != nil {
			return err
		}
	}
	if opts.Hierarchy {
		err := writeFile(filepath.Join(dstDir, base+"_hierarchy.csv"), "hierarchy", log, func(w io.Writer) error {
			return WriteJointHierarchy(w, h, opts.Scale, opts.EndSites)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path, label string, log io.Writer, write func(io.Writer) error) error {
	startTime := time.Now()

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: could not write to file %s: %w", path, err)
	}
	if err := write(file); err != nil {
		file.Close()
		return fmt.Errorf("export: write %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("export: close %s: %w", path, err)
	}

	fmt.Fprintf(log, "%s: %s\n", label, time.Since(startTime))
	return nil
}
