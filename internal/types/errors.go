package types

import (
	"fmt"
	"strings"
)

// ResolutionError is returned when every (endpoint, radius) attempt of a
// place resolution has failed. Attempts holds one diagnostic per attempt,
// in the order they were tried.
type ResolutionError struct {
	Query    string
	Attempts []string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("place resolution failed for %q after %d attempts: %s",
		e.Query, len(e.Attempts), strings.Join(e.Attempts, "; "))
}
