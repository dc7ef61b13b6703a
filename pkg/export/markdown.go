package export

import (
	"fmt"
	"io"

	"github.com/guthubrx/ai-developer-analytics-sub001/pkg/chat"
)

// MarkdownExporter writes a human-readable transcript
type MarkdownExporter struct{}

func (e *MarkdownExporter) Export(session *chat.Session, w io.Writer) error {
	_, _ = fmt.Fprintf(w, "# %s\n\n", session.Name)
	_, _ = fmt.Fprintf(w, "**Session:** %s  \n", session.ID)
	_, _ = fmt.Fprintf(w, "**Created:** %s  \n", session.CreatedAt.Format("2006-01-02 15:04:05"))
	_, _ = fmt.Fprintf(w, "**Messages:** %d\n\n", len(session.Messages))

	if session.Metrics.TotalRequests > 0 {
		_, _ = fmt.Fprintf(w, "**Requests:** %d | **Tokens:** %d | **Cost:** $%.4f\n\n",
			session.Metrics.TotalRequests, session.Metrics.TotalTokens, session.Metrics.TotalCostUSD)
	}

	_, _ = fmt.Fprintf(w, "---\n\n")

	for i, msg := range session.Messages {
		label := msg.Role
		if msg.Provider != "" {
			label = fmt.Sprintf("%s / %s", msg.Role, msg.Provider)
		}

		_, _ = fmt.Fprintf(w, "**%s** (%s)\n\n%s\n\n", label, msg.Timestamp.Format("15:04:05"), msg.Content)

		if i < len(session.Messages)-1 {
			_, _ = fmt.Fprintf(w, "---\n\n")
		}
	}

	return nil
}

func (e *MarkdownExporter) Extension() string {
	return "md"
}
