package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement names an external tool and the command used to run it.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status is a Requirement after lookup. Path holds the resolved executable
// when Available; Detail explains a miss.
type Status struct {
	Requirement
	Path      string
	Available bool
	Detail    string
}

// CheckBinaries looks up each requirement on PATH, or as given when the
// command is a path, preserving order.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, len(requirements))
	for i, req := range requirements {
		req.Command = strings.TrimSpace(req.Command)
		req.Description = strings.TrimSpace(req.Description)
		results[i] = lookup(req)
	}
	return results
}

func lookup(req Requirement) Status {
	st := Status{Requirement: req}
	if req.Command == "" {
		st.Detail = "command not configured"
		return st
	}
	path, err := exec.LookPath(req.Command)
	if err != nil {
		st.Detail = fmt.Sprintf("binary %q not found", req.Command)
		return st
	}
	st.Path = path
	st.Available = true
	return st
}
