// Package documents provides the session documents view for the TUI.
package documents

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/adapters/driving/tui/components/list"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/adapters/driving/tui/messages"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/adapters/driving/tui/styles"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/domain"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/ports/driving"
)

var errNoSessionService = errors.New("session service not available")

// View lists the documents uploaded to the session.
type View struct {
	styles         *styles.Styles
	sessionService driving.SessionService
	ctx            context.Context
	sessionID      string

	list       *list.List
	documents  []domain.Document
	width      int
	height     int
	loading    bool
	confirming bool
	err        error
}

// NewView creates a new documents view.
func NewView(s *styles.Styles, sessionService driving.SessionService, sessionID string) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:         s,
		sessionService: sessionService,
		ctx:            context.Background(),
		sessionID:      sessionID,
		list:           list.New(s, "Documents", "No documents uploaded. Use /upload in the chat."),
	}
}

// WithContext sets the context used for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Load returns a command that fetches the session's documents.
func (v *View) Load() tea.Cmd {
	v.loading = true
	v.confirming = false
	return func() tea.Msg {
		if v.sessionService == nil {
			return messages.DocumentsLoaded{Err: errNoSessionService}
		}
		docs, err := v.sessionService.Documents(v.ctx, v.sessionID)
		return messages.DocumentsLoaded{Documents: docs, Err: err}
	}
}

// clear returns a command that removes every document from the session.
func (v *View) clear() tea.Cmd {
	return func() tea.Msg {
		if v.sessionService == nil {
			return messages.SessionReset{DocumentsOnly: true, Err: errNoSessionService}
		}
		err := v.sessionService.ClearDocuments(v.ctx, v.sessionID)
		return messages.SessionReset{DocumentsOnly: true, Err: err}
	}
}

// Update handles messages for the documents view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		if v.confirming {
			return v.handleConfirmKeyMsg(msg)
		}
		return v.handleKeyMsg(msg)

	case messages.DocumentsLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.SetDocuments(msg.Documents)
		}
		return v, nil

	case messages.SessionReset:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		return v, v.Load()
	}

	return v, nil
}

// handleKeyMsg handles key presses in list mode.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewChat}
		}
	case "r":
		return v, v.Load()
	case "c":
		if len(v.documents) > 0 {
			v.confirming = true
		}
		return v, nil
	}

	v.list.Update(msg)
	return v, nil
}

// handleConfirmKeyMsg handles the clear-all confirmation prompt.
func (v *View) handleConfirmKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	v.confirming = false
	switch msg.String() {
	case "y", "Y":
		return v, v.clear()
	}
	return v, nil
}

// SetDocuments replaces the listed documents.
func (v *View) SetDocuments(docs []domain.Document) {
	v.documents = docs
	items := make([]list.Item, 0, len(docs))
	for i := range docs {
		items = append(items, documentItem(&docs[i]))
	}
	v.list.SetItems(items)
}

func documentItem(doc *domain.Document) list.Item {
	detail := fmt.Sprintf("%s, %d chunk(s), uploaded %s",
		formatSize(doc.ByteLength), doc.ChunkCount, doc.CreatedAt.Format("15:04:05"))
	if doc.Title != "" && doc.Title != doc.Filename {
		detail = doc.Title + " | " + detail
	}
	return list.Item{
		Key:    doc.ID,
		Title:  doc.Filename,
		Meta:   strings.ToUpper(string(doc.Format)),
		Detail: detail,
	}
}

// formatSize renders a byte count for display.
func formatSize(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// View renders the documents view.
func (v *View) View() string {
	var b strings.Builder

	switch {
	case v.loading:
		b.WriteString(v.styles.Title.Render("Documents"))
		b.WriteString("\n\n")
		b.WriteString(v.styles.Muted.Render("Loading documents..."))
	case v.err != nil:
		b.WriteString(v.styles.Title.Render("Documents"))
		b.WriteString("\n\n")
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
	default:
		b.WriteString(v.list.View())
	}

	b.WriteString("\n\n")
	if v.confirming {
		b.WriteString(v.styles.Warning.Render(
			fmt.Sprintf("Remove all %d document(s) from this session? [y/N]", len(v.documents))))
		return b.String()
	}
	b.WriteString(v.styles.Help.Render("[↑/↓] navigate  [r] reload  [c] clear all  [esc] back"))

	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	// Reserve lines for the footer
	v.list.SetDimensions(width, height-3)
}

// Documents returns the current list of documents.
func (v *View) Documents() []domain.Document {
	return v.documents
}

// SelectedDocument returns the highlighted document, or nil.
func (v *View) SelectedDocument() *domain.Document {
	i := v.list.Selected()
	if i < 0 || i >= len(v.documents) {
		return nil
	}
	return &v.documents[i]
}

// IsConfirming reports whether the clear-all prompt is showing.
func (v *View) IsConfirming() bool {
	return v.confirming
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
