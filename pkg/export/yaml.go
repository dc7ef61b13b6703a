package export

import (
	"io"

	"github.com/guthubrx/ai-developer-analytics-sub001/pkg/chat"
	"gopkg.in/yaml.v3"
)

// YAMLExporter writes the whole session as YAML
type YAMLExporter struct{}

func (e *YAMLExporter) Export(session *chat.Session, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer func() { _ = enc.Close() }()

	return enc.Encode(session)
}

func (e *YAMLExporter) Extension() string {
	return "yaml"
}
