// Package preflight runs the startup checks that must pass before any file
// is processed: required binaries on PATH and directory permissions.
package preflight

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"submerge/internal/config"
	"submerge/internal/deps"
)

// Result captures one preflight check outcome.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// CheckDirectoryAccess verifies that the directory exists and is readable
// and writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckReadAccess verifies read permission only; used for the scan root when
// output goes to a separate directory.
func CheckReadAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read ok)", path)}
}

// CheckAll evaluates every check relevant to the configuration. The run
// command refuses to start when a non-optional check fails.
func CheckAll(cfg *config.Config) []Result {
	results := make([]Result, 0, 4)

	for _, status := range deps.CheckBinaries(deps.Requirements(cfg)) {
		result := Result{Name: status.Name, Passed: status.Available}
		if status.Available {
			result.Detail = "found on PATH"
		} else {
			result.Detail = status.Detail
			if status.Optional {
				result.Detail += " (optional)"
				result.Passed = true
			}
		}
		results = append(results, result)
	}

	if cfg.Paths.Root != "" {
		if cfg.Paths.OutputDir != "" {
			results = append(results, CheckReadAccess("Root directory", cfg.Paths.Root))
		} else {
			// In-place merging rewrites files under the root.
			results = append(results, CheckDirectoryAccess("Root directory", cfg.Paths.Root))
		}
	}
	if cfg.Paths.OutputDir != "" {
		results = append(results, CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir))
	}

	return results
}

// FirstFailure returns the first failed result, if any.
func FirstFailure(results []Result) (Result, bool) {
	for _, result := range results {
		if !result.Passed {
			return result, true
		}
	}
	return Result{}, false
}
