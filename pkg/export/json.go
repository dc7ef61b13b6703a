package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/guthubrx/ai-developer-analytics-sub001/pkg/chat"
)

// JSONExporter writes the whole session as pretty-printed JSON
type JSONExporter struct{}

func (e *JSONExporter) Export(session *chat.Session, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(session)
}

func (e *JSONExporter) Extension() string {
	return "json"
}

// JSONLExporter writes one message per line, suitable for log pipelines
type JSONLExporter struct{}

func (e *JSONLExporter) Export(session *chat.Session, w io.Writer) error {
	enc := json.NewEncoder(w)

	for _, msg := range session.Messages {
		if err := enc.Encode(msg); err != nil {
			return fmt.Errorf("failed to encode message %s: %w", msg.ID, err)
		}
	}

	return nil
}

func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
