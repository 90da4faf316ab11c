package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/domain"
)

// snippetLength caps citation excerpts.
const snippetLength = 120

// refresh re-renders the transcript into the viewport and scrolls to the end.
func (v *View) refresh() {
	v.viewport.SetContent(v.render())
	v.viewport.GotoBottom()
}

func (v *View) render() string {
	wrap := lipgloss.NewStyle().Width(v.wrapWidth()).PaddingLeft(2)
	var blocks []string

	if len(v.turns) == 0 && v.pending == "" && !v.busy {
		blocks = append(blocks, wrap.Render(v.styles.Muted.Render(
			"No messages yet. Ask a question, or /upload files to chat with your documents. /help lists commands.")))
	}

	for i := range v.turns {
		blocks = append(blocks, v.renderTurn(&v.turns[i], wrap))
	}

	if v.pending != "" {
		blocks = append(blocks, v.styles.User.Render("You")+"\n"+wrap.Render(v.pending))
	}
	if v.busy {
		blocks = append(blocks, v.styles.Assistant.Render("Assistant")+"\n"+wrap.Render(v.styles.Muted.Render("Thinking...")))
	}

	if len(v.notices) > 0 {
		lines := make([]string, 0, len(v.notices))
		for _, n := range v.notices {
			lines = append(lines, v.renderNotice(n))
		}
		blocks = append(blocks, strings.Join(lines, "\n"))
	}

	return strings.Join(blocks, "\n\n")
}

func (v *View) renderTurn(t *domain.Turn, wrap lipgloss.Style) string {
	number := v.styles.Muted.Render(fmt.Sprintf(" [%d]", t.Seq+1))

	if t.Role == domain.RoleUser {
		return v.styles.User.Render("You") + number + "\n" + wrap.Render(t.Content)
	}

	if t.Failed {
		header := v.styles.Assistant.Render("Assistant") + number + v.styles.Error.Render(" failed")
		body := v.styles.Error.Render(t.Error) + "\n" + v.styles.Muted.Render("Press ctrl+r to retry.")
		return header + "\n" + wrap.Render(body)
	}

	header := v.styles.Assistant.Render("Assistant") + number
	if t.Model != "" {
		header += v.styles.Muted.Render(" " + t.Model)
	}

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")
	b.WriteString(wrap.Render(t.Content))

	if t.LowRelevance {
		b.WriteString("\n")
		b.WriteString(wrap.Render(v.styles.Warning.Render(
			"No passage in your documents matched closely; the answer may rely on general knowledge.")))
	}

	if len(t.Citations) > 0 {
		b.WriteString("\n")
		b.WriteString(v.styles.Citation.Render("Sources:"))
		for i, c := range t.Citations {
			b.WriteString("\n")
			b.WriteString(v.styles.Citation.Render(fmt.Sprintf("[%d] %s (%.2f)", i+1, c.Locator.String(), c.Similarity)))
			b.WriteString("\n")
			b.WriteString(v.styles.Citation.Render("    " + snippet(c.Content)))
		}
	}

	return b.String()
}

func (v *View) renderNotice(n notice) string {
	style := v.styles.Muted
	switch n.level {
	case levelError:
		style = v.styles.Error
	case levelWarning:
		style = v.styles.Warning
	}
	return style.Width(v.wrapWidth()).Render(n.text)
}

func (v *View) wrapWidth() int {
	w := v.width - 4
	if w < 20 {
		w = 20
	}
	return w
}

func snippet(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= snippetLength {
		return s
	}
	return string(runes[:snippetLength-3]) + "..."
}
