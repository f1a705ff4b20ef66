package jobs

// ItemResult is the outcome of one submitted item.
type ItemResult struct {
	Item    string
	Success bool
	Detail  string
}

// Outcome is the terminal result of one run. It is produced exactly once.
type Outcome struct {
	Success   bool
	Message   string
	Cancelled bool
	// Results lists every item that was submitted, in completion order.
	Results []ItemResult
	// Failed lists the identifiers that can be resubmitted as a new run.
	// It is always empty for cancelled runs and preflight failures.
	Failed []string
}

// CancelledMessage is reported when a run stops because of a cancellation
// request.
const CancelledMessage = "Annullato."

// Failures returns the failed subset of results, preserving order.
func Failures(results []ItemResult) []ItemResult {
	var out []ItemResult
	for _, r := range results {
		if !r.Success {
			out = append(out, r)
		}
	}
	return out
}

// Succeeded counts successful results.
func Succeeded(results []ItemResult) int {
	n := 0
	for _, r := range results {
		if r.Success {
			n++
		}
	}
	return n
}
