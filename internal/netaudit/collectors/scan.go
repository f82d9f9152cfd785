package collectors

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ehsaniara/netaudit/internal/netaudit/domain"
)

// Text scanning helpers shared by the layer fact scanners. Everything here
// operates on output already sitting in the LayerResult.

var ipLineRe = regexp.MustCompile(`^\s*(\d{1,3}\.){3}\d{1,3}(\s|$)`)

// successfulOutput returns the raw output of command when it succeeded
func successfulOutput(r *domain.LayerResult, command string) (string, bool) {
	res, ok := r.Data[command]
	if !ok || !res.Success {
		return "", false
	}
	return res.Output, true
}

// outputsMatching concatenates the outputs of all successful commands whose
// name contains the marker
func outputsMatching(r *domain.LayerResult, marker string) []string {
	var out []string
	for _, command := range r.CommandsExecuted {
		if strings.Contains(command, marker) {
			out = append(out, r.Data[command].Output)
		}
	}
	return out
}

// countLines counts lines for which match returns true
func countLines(text string, match func(line string) bool) int {
	n := 0
	for _, line := range strings.Split(text, "\n") {
		if match(line) {
			n++
		}
	}
	return n
}

// firstLineContaining returns the trimmed first line containing the marker
func firstLineContaining(text, marker string) (string, bool) {
	for _, line := range strings.Split(text, "\n") {
		if strings.Contains(line, marker) {
			return strings.TrimSpace(line), true
		}
	}
	return "", false
}

// startsWithIP reports whether the line begins with an IPv4 address, the
// shape of a neighbor row in summary tables
func startsWithIP(line string) bool {
	return ipLineRe.MatchString(line)
}

// lastFieldIsNumber reports whether the line's last whitespace-separated
// field is an integer. In BGP summary tables an established neighbor shows
// its prefix count there; a down one shows a state word instead.
func lastFieldIsNumber(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	_, err := strconv.Atoi(fields[len(fields)-1])
	return err == nil
}
