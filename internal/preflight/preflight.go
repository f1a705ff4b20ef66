package preflight

import (
	"context"

	"downconv/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Func runs the output checks for a run's primary directory.
type Func func(dir string) Result

// Output returns the combined writable + free-space check used by the job
// runners. The writable check runs first; the first failure wins.
func Output(minFree uint64) Func {
	return func(dir string) Result {
		if res := CheckOutputWritable(dir); !res.Passed {
			return res
		}
		return CheckDiskSpace(dir, minFree)
	}
}

// RunAll executes the directory checks for the configured output locations.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	minFree := cfg.MinFreeBytes()
	var results []Result
	for _, target := range []struct {
		name string
		path string
	}{
		{"Conversion output", cfg.Paths.OutputDir},
		{"Download output", cfg.Paths.DownloadDir},
	} {
		if target.path == "" {
			continue
		}
		res := CheckDirectoryAccess(target.name, target.path)
		if res.Passed {
			space := CheckDiskSpace(target.path, minFree)
			if !space.Passed {
				res = Result{Name: target.name, Detail: space.Detail}
			}
		}
		results = append(results, res)
	}
	return results
}
