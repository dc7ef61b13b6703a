// Package export writes chat sessions to portable formats for archival and
// sharing.
package export

import (
	"fmt"
	"io"

	"github.com/guthubrx/ai-developer-analytics-sub001/pkg/chat"
)

// Exporter writes one session to w in a concrete format
type Exporter interface {
	Export(session *chat.Session, w io.Writer) error
	Extension() string
}

// NewExporter creates an exporter for the named format
func NewExporter(format string) (Exporter, error) {
	switch format {
	case "json":
		return &JSONExporter{}, nil
	case "jsonl":
		return &JSONLExporter{}, nil
	case "yaml":
		return &YAMLExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: json, jsonl, yaml, md)", format)
	}
}
