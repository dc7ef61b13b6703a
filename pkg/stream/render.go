package stream

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// Formatter turns markdown text into an HTML string. It has two projections:
// Format renders the complete text, FormatPartial renders a prefix of a
// still-streaming text without ever emitting a syntactically incomplete
// construct (an open code fence, an unpaired emphasis marker, a half-typed
// link). Both share the same rules, so the final Format of the concatenated
// text is independent of how the stream was chunked.
type Formatter struct {
	style string
}

// NewFormatter creates a Formatter with the default highlight style
func NewFormatter() *Formatter {
	return &Formatter{style: "monokai"}
}

var (
	reHeader = regexp.MustCompile(`(?m)^(#{1,3}) (.+)$`)
	reBold   = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	reItalic = regexp.MustCompile(`\*([^*\n]+)\*`)
	reCode   = regexp.MustCompile("`([^`\n]+)`")
	reLink   = regexp.MustCompile(`\[([^\]]*)\]\(([^)\s]+)\)`)
)

// Format renders the full text. An unterminated code fence at end of input
// is finalized as a best-effort closed block so truncated output is kept.
func (f *Formatter) Format(text string) string {
	return f.render(text, false)
}

// FormatPartial renders a render-safe projection of a partial text: any
// construct opened but not yet closed is left as literal pending text.
func (f *Formatter) FormatPartial(text string) string {
	return f.render(text, true)
}

func (f *Formatter) render(text string, partial bool) string {
	if text == "" {
		return ""
	}

	var out strings.Builder
	for _, seg := range splitFences(text) {
		if seg.code {
			if seg.closed || !partial {
				out.WriteString(f.renderCodeBlock(seg.lang, seg.body))
			} else {
				// Open fence: keep the raw text literal until it closes
				out.WriteString(renderPlain(seg.raw))
			}
			continue
		}
		out.WriteString(renderInline(seg.raw, partial))
	}
	return out.String()
}

// fenceSegment is a run of text that is either inside a ``` fence or outside
// of all fences
type fenceSegment struct {
	code   bool
	closed bool
	lang   string
	body   string
	raw    string
}

func splitFences(text string) []fenceSegment {
	var segs []fenceSegment
	lines := strings.SplitAfter(text, "\n")

	var plain strings.Builder
	var code strings.Builder
	var raw strings.Builder
	var lang string
	inFence := false

	flushPlain := func() {
		if plain.Len() > 0 {
			segs = append(segs, fenceSegment{raw: plain.String()})
			plain.Reset()
		}
	}

	for _, line := range lines {
		trimmed := strings.TrimRight(line, "\n")
		if !inFence && strings.HasPrefix(trimmed, "```") {
			flushPlain()
			inFence = true
			lang = strings.TrimSpace(strings.TrimPrefix(trimmed, "```"))
			raw.Reset()
			raw.WriteString(line)
			code.Reset()
			continue
		}
		if inFence {
			raw.WriteString(line)
			if strings.TrimSpace(trimmed) == "```" {
				segs = append(segs, fenceSegment{
					code:   true,
					closed: true,
					lang:   lang,
					body:   code.String(),
					raw:    raw.String(),
				})
				inFence = false
				continue
			}
			code.WriteString(line)
			continue
		}
		plain.WriteString(line)
	}

	if inFence {
		segs = append(segs, fenceSegment{
			code: true,
			lang: lang,
			body: code.String(),
			raw:  raw.String(),
		})
	} else {
		flushPlain()
	}
	return segs
}

// renderCodeBlock highlights a fenced block with chroma. Highlighting
// failures degrade to an escaped plain block.
func (f *Formatter) renderCodeBlock(lang, body string) string {
	body = strings.TrimRight(body, "\n")
	class := lang
	if class == "" {
		class = "text"
	}

	highlighted, err := f.highlight(lang, body)
	if err != nil {
		highlighted = html.EscapeString(body)
	}
	return fmt.Sprintf(`<pre><code class="language-%s">%s</code></pre>`, class, highlighted)
}

func (f *Formatter) highlight(lang, body string) (string, error) {
	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Fallback
	}

	iterator, err := lexer.Tokenise(nil, body)
	if err != nil {
		return "", err
	}

	style := styles.Get(f.style)
	if style == nil {
		style = styles.Fallback
	}

	var buf strings.Builder
	formatter := chromahtml.New(chromahtml.WithClasses(true), chromahtml.PreventSurroundingPre(true))
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// renderPlain escapes text and converts newlines, applying no markdown
func renderPlain(text string) string {
	return strings.ReplaceAll(html.EscapeString(text), "\n", "<br>")
}

// renderInline applies headers, emphasis, inline code and links. In partial
// mode a header on the final, unterminated line stays literal until its line
// completes; the paired-only patterns keep unclosed emphasis literal for free.
func renderInline(text string, partial bool) string {
	s := html.EscapeString(text)

	s = replaceHeaders(s, partial)
	s = reBold.ReplaceAllString(s, "<strong>$1</strong>")
	s = reItalic.ReplaceAllString(s, "<em>$1</em>")
	s = reCode.ReplaceAllString(s, "<code>$1</code>")
	s = reLink.ReplaceAllString(s, `<a href="$2">$1</a>`)
	s = strings.ReplaceAll(s, "\n", "<br>")
	return s
}

func replaceHeaders(s string, partial bool) string {
	matches := reHeader.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return s
	}

	var out strings.Builder
	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		// An unterminated final line is still streaming in partial mode
		if partial && end == len(s) && !strings.HasSuffix(s, "\n") {
			continue
		}
		marks := s[m[2]:m[3]]
		content := s[m[4]:m[5]]
		out.WriteString(s[last:start])
		fmt.Fprintf(&out, "<h%d>%s</h%d>", len(marks), content, len(marks))
		last = end
	}
	out.WriteString(s[last:])
	return out.String()
}
