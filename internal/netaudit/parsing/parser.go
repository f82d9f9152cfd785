// Package parsing defines the contract for vendor-specific text parsers.
// Parsers never fail collection: a parser that cannot make sense of the
// text returns whatever partial structure it managed, or an empty one.
package parsing

import "strings"

// Parser turns raw show-command output into structured data. Implementations
// must not return errors or panic; collection never blocks on parsing.
type Parser interface {
	Parse(command, raw, platform string) map[string]interface{}
}

// LineParser is the built-in fallback parser: it records line counts and a
// bounded preview so downstream reporting always has something structured,
// even for commands no vendor template covers.
type LineParser struct {
	PreviewLines int
}

// NewLineParser creates the fallback parser
func NewLineParser() *LineParser {
	return &LineParser{PreviewLines: 5}
}

func (p *LineParser) Parse(command, raw, platform string) map[string]interface{} {
	lines := strings.Split(strings.TrimRight(raw, "\n"), "\n")
	if raw == "" {
		lines = nil
	}

	preview := lines
	if len(preview) > p.PreviewLines {
		preview = preview[:p.PreviewLines]
	}

	return map[string]interface{}{
		"command":    command,
		"platform":   platform,
		"line_count": len(lines),
		"preview":    strings.Join(preview, "\n"),
	}
}
