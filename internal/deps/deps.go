// Package deps reports availability of the external binaries submerge
// shells out to.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"submerge/internal/config"
)

// Requirement defines an external dependency submerge relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements lists the external binaries for the given configuration.
// mkvmerge is mandatory for probing and merging; mkvextract is only needed
// by the export command.
func Requirements(cfg *config.Config) []Requirement {
	return []Requirement{
		{
			Name:        "mkvmerge",
			Command:     cfg.MkvmergeBinary(),
			Description: "Required for subtitle probing and muxing",
		},
		{
			Name:        "mkvextract",
			Command:     cfg.MkvextractBinary(),
			Description: "Required for subtitle track export",
			Optional:    true,
		},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}
