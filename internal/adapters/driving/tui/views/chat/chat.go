// Package chat provides the conversation view for the TUI: a scrolling
// transcript above a single-line input that accepts questions and slash commands.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/adapters/driven/filesystem"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/adapters/driving/chatcmd"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/adapters/driving/tui/components/input"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/adapters/driving/tui/keymap"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/adapters/driving/tui/messages"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/adapters/driving/tui/styles"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/domain"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/ports/driving"
)

// inputHeight is the rendered height of the bordered input.
const inputHeight = 3

var readFiles = filesystem.ReadFiles

// Services are the driving ports the chat view calls.
type Services struct {
	Conversation driving.ConversationService
	Ingest       driving.IngestService
	Session      driving.SessionService
}

type noticeLevel int

const (
	levelInfo noticeLevel = iota
	levelWarning
	levelError
)

// notice is a line shown under the transcript until the next question.
type notice struct {
	text  string
	level noticeLevel
}

// View is the conversation view.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	services  Services
	ctx       context.Context
	sessionID string

	input    *input.ChatInput
	viewport viewport.Model
	turns    []domain.Turn
	notices  []notice

	// pending is the question shown while its answer is generated.
	pending   string
	busy      bool
	ingesting bool
	// editing is the transcript position being edited, or -1.
	editing   int
	showStats bool
	width     int
	height    int
}

// NewView creates a new chat view for one session.
func NewView(s *styles.Styles, km *keymap.KeyMap, services Services, sessionID string) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	v := &View{
		styles:    s,
		keymap:    km,
		services:  services,
		ctx:       context.Background(),
		sessionID: sessionID,
		input:     input.NewChatInput(s),
		viewport:  viewport.New(80, 20),
		editing:   -1,
		width:     80,
		height:    24,
	}
	v.refresh()
	return v
}

// WithContext sets the context used for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init focuses the input and loads the transcript.
func (v *View) Init() tea.Cmd {
	return tea.Batch(v.input.Init(), v.loadTranscript())
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		v.viewport, cmd = v.viewport.Update(msg)
		return v, cmd

	case messages.TranscriptLoaded:
		v.pending = ""
		if msg.Err != nil {
			v.addNotice(levelError, "Could not load the conversation: %v", msg.Err)
		} else {
			v.turns = msg.Turns
		}
		v.refresh()
		return v, nil

	case messages.AnswerReceived:
		v.busy = false
		switch {
		case errors.Is(msg.Err, domain.ErrStaleResponse):
			v.addNotice(levelWarning, "Answer discarded: the conversation changed while it was generating.")
		case msg.Err != nil:
			v.addNotice(levelError, "Error: %v", msg.Err)
		}
		v.refresh()
		return v, v.loadTranscript()

	case messages.FilesIngested:
		v.ingesting = false
		v.noticeIngest(msg.Report, msg.Err)
		v.refresh()
		return v, nil

	case messages.ModelSwitched:
		if msg.Err != nil {
			v.addNotice(levelError, "Error: %v", msg.Err)
		} else {
			v.addNotice(levelInfo, "Model switched to %s.", msg.Model)
		}
		v.refresh()
		return v, nil

	case messages.SessionReset:
		return v, v.handleReset(msg)

	case messages.StatsLoaded:
		if !v.showStats {
			return v, nil
		}
		v.showStats = false
		if msg.Err != nil {
			v.addNotice(levelError, "Error: %v", msg.Err)
		} else {
			v.noticeStats(msg.Stats)
		}
		v.refresh()
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// handleKeyMsg handles key presses. Printable keys go to the input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	k := msg.String()
	switch {
	case keymap.Matches(k, v.keymap.Send):
		return v, v.submit()
	case keymap.Matches(k, v.keymap.Retry):
		return v, v.generate(chatcmd.Command{Kind: chatcmd.KindRetry})
	case keymap.Matches(k, v.keymap.Edit):
		v.startEdit()
		return v, nil
	case keymap.Matches(k, v.keymap.Back):
		if v.editing >= 0 {
			v.cancelEdit()
		}
		return v, nil
	case keymap.Matches(k, v.keymap.ScrollUp):
		v.viewport.PageUp()
		return v, nil
	case keymap.Matches(k, v.keymap.ScrollDown):
		v.viewport.PageDown()
		return v, nil
	case keymap.Matches(k, v.keymap.Models):
		return v, changeView(messages.ViewModels)
	case keymap.Matches(k, v.keymap.Documents):
		return v, changeView(messages.ViewDocuments)
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// submit parses the input line and dispatches it.
func (v *View) submit() tea.Cmd {
	line := strings.TrimSpace(v.input.Value())
	if line == "" {
		return nil
	}

	command, err := chatcmd.Parse(line)
	if err != nil {
		v.addNotice(levelError, "%v", err)
		v.refresh()
		return nil
	}

	editing := v.editing
	v.cancelEdit()
	if command.Kind == chatcmd.KindMessage && editing >= 0 {
		command = chatcmd.Command{Kind: chatcmd.KindEdit, Index: editing, Text: command.Text}
	}

	return v.dispatch(command)
}

// dispatch runs one parsed command.
func (v *View) dispatch(command chatcmd.Command) tea.Cmd {
	switch command.Kind {
	case chatcmd.KindMessage, chatcmd.KindEdit, chatcmd.KindRetry:
		return v.generate(command)

	case chatcmd.KindModel:
		return v.switchModel(command.Model)

	case chatcmd.KindUpload:
		if v.ingesting {
			v.addNotice(levelWarning, "Still indexing the previous upload.")
			v.refresh()
			return nil
		}
		v.ingesting = true
		v.addNotice(levelInfo, "Indexing %s...", strings.Join(command.Paths, ", "))
		v.refresh()
		return v.upload(command.Paths)

	case chatcmd.KindReset:
		return v.reset(false)

	case chatcmd.KindClear:
		return v.reset(true)

	case chatcmd.KindStats:
		v.showStats = true
		return v.loadStats()

	case chatcmd.KindDocuments:
		return changeView(messages.ViewDocuments)

	case chatcmd.KindModels:
		return changeView(messages.ViewModels)

	case chatcmd.KindHistory:
		v.viewport.GotoTop()
		return nil

	case chatcmd.KindHelp:
		return changeView(messages.ViewHelp)

	case chatcmd.KindQuit:
		return tea.Quit
	}
	return nil
}

// generate starts an ask, edit or retry unless one is already running.
func (v *View) generate(command chatcmd.Command) tea.Cmd {
	if v.busy {
		v.addNotice(levelWarning, "Still waiting for the previous answer.")
		v.refresh()
		return nil
	}

	v.busy = true
	v.notices = nil
	if command.Kind == chatcmd.KindRetry {
		v.pending = ""
	} else {
		v.pending = command.Text
	}
	if command.Kind == chatcmd.KindEdit {
		v.truncateAt(command.Index)
	}
	v.refresh()

	return v.answer(command)
}

// truncateAt hides turns from position seq on while an edit regenerates them.
func (v *View) truncateAt(seq int) {
	for i, t := range v.turns {
		if t.Seq >= seq {
			v.turns = v.turns[:i]
			return
		}
	}
}

// startEdit loads the previous user message into the input.
// Repeated presses walk further back through the transcript.
func (v *View) startEdit() {
	from := len(v.turns)
	if v.editing >= 0 {
		from = v.editing
	}

	for i := len(v.turns) - 1; i >= 0; i-- {
		t := v.turns[i]
		if t.Role != domain.RoleUser || t.Seq >= from {
			continue
		}
		v.editing = t.Seq
		v.input.SetValue(t.Content)
		v.input.SetLabel(fmt.Sprintf("Edit #%d", t.Seq+1))
		v.input.SetWidth(v.width)
		return
	}
}

func (v *View) cancelEdit() {
	v.editing = -1
	v.input.Reset()
	v.input.SetWidth(v.width)
}

func (v *View) handleReset(msg messages.SessionReset) tea.Cmd {
	switch {
	case msg.Err != nil:
		v.addNotice(levelError, "Error: %v", msg.Err)
	case msg.DocumentsOnly:
		v.addNotice(levelInfo, "Documents cleared; back to chat mode.")
	default:
		v.notices = nil
		v.turns = nil
		v.cancelEdit()
		v.addNotice(levelInfo, "Session reset.")
	}
	v.refresh()
	return nil
}

func (v *View) noticeIngest(report *domain.IngestReport, err error) {
	if err != nil {
		v.addNotice(levelError, "Error: %v", err)
		return
	}
	if report == nil {
		return
	}
	for _, d := range report.Documents {
		v.addNotice(levelInfo, "Indexed %s (%d chunks)", d.Filename, d.ChunkCount)
	}
	for _, f := range report.Warnings {
		v.addNotice(levelWarning, "Warning: %s: %v", f.Filename, f.Err)
	}
	for _, f := range report.Failures {
		v.addNotice(levelError, "Failed: %s: %v", f.Filename, f.Err)
	}
	if len(report.Documents) > 0 {
		v.addNotice(levelInfo, "%d document(s), %d chunk(s) added.", len(report.Documents), report.ChunksIndexed)
	}
}

func (v *View) noticeStats(stats domain.SessionStats) {
	mode := "document"
	if stats.ChatMode() {
		mode = "chat"
	}
	v.addNotice(levelInfo, "Session %s: model %s, %s mode, %d document(s), %d chunk(s), %d message(s).",
		stats.SessionID, stats.Model, mode, stats.DocumentsProcessed, stats.VectorStoreSize, stats.TranscriptLength)
}

func (v *View) addNotice(level noticeLevel, format string, args ...any) {
	v.notices = append(v.notices, notice{text: fmt.Sprintf(format, args...), level: level})
}

func changeView(view messages.ViewType) tea.Cmd {
	return func() tea.Msg {
		return messages.ViewChanged{View: view}
	}
}

// SetDimensions sets the view dimensions, leaving room for the input.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height

	vpHeight := height - inputHeight - 1
	if vpHeight < 1 {
		vpHeight = 1
	}
	v.viewport.Width = width
	v.viewport.Height = vpHeight
	v.input.SetWidth(width)
	v.refresh()
}

// View renders the chat view.
func (v *View) View() string {
	return v.viewport.View() + "\n" + v.input.View()
}

// Busy reports whether an answer is being generated.
func (v *View) Busy() bool {
	return v.busy
}

// Ingesting reports whether an upload is being indexed.
func (v *View) Ingesting() bool {
	return v.ingesting
}

// Editing returns the transcript position being edited, or -1.
func (v *View) Editing() int {
	return v.editing
}

// Turns returns the transcript as last loaded.
func (v *View) Turns() []domain.Turn {
	return v.turns
}

// Input returns the current input text.
func (v *View) Input() string {
	return v.input.Value()
}

// SetInput replaces the input text.
func (v *View) SetInput(text string) {
	v.input.SetValue(text)
}
