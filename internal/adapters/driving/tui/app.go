package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/adapters/driving/chatcmd"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/adapters/driving/tui/components/status"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/adapters/driving/tui/keymap"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/adapters/driving/tui/messages"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/adapters/driving/tui/styles"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/adapters/driving/tui/views/chat"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/adapters/driving/tui/views/documents"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/adapters/driving/tui/views/models"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/domain"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// sessionID is the session this TUI is attached to.
	sessionID string

	// styles holds the TUI styles.
	styles *styles.Styles

	// keymap holds the keybindings.
	keymap *keymap.KeyMap

	// chatView is the conversation view.
	chatView *chat.View

	// documentsView lists the session's documents.
	documentsView *documents.View

	// modelsView is the model picker.
	modelsView *models.View

	// statusBar shows activity and the session summary.
	statusBar *status.Bar

	// currentView tracks which view is active.
	currentView messages.ViewType

	// stats is the last session snapshot.
	stats domain.SessionStats

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has received its first window size.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application attached to one session.
func NewApp(ports *Ports, sessionID string) (*App, error) {
	if ports == nil {
		return nil, fmt.Errorf("creating app: %w", ErrInvalidPorts)
	}
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}
	if sessionID == "" {
		return nil, fmt.Errorf("creating app: %w", ErrMissingSessionID)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:     ports,
		ctx:       context.Background(),
		sessionID: sessionID,
		styles:    s,
		keymap:    km,
		chatView: chat.NewView(s, km, chat.Services{
			Conversation: ports.Conversation,
			Ingest:       ports.Ingest,
			Session:      ports.Session,
		}, sessionID),
		documentsView: documents.NewView(s, ports.Session, sessionID),
		modelsView:    models.NewView(s, ports.Conversation, sessionID),
		statusBar:     status.NewBar(s, km),
		currentView:   messages.ViewChat,
	}, nil
}

// WithContext sets the context for the app and its views.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.chatView.WithContext(ctx)
	a.documentsView.WithContext(ctx)
	a.modelsView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
// It runs initial commands when the program starts.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("docsassistant - "+a.sessionID),
		a.chatView.Init(),
		a.loadStats(),
	)
}

// loadStats returns a command that refreshes the session summary.
func (a *App) loadStats() tea.Cmd {
	svc, ctx, id := a.ports.Session, a.ctx, a.sessionID
	return func() tea.Msg {
		stats, err := svc.Stats(ctx, id)
		return messages.StatsLoaded{Stats: stats, Err: err}
	}
}

// Update implements tea.Model.
// It handles messages and updates the model state.
//
//nolint:gocyclo // central message handler requires complexity
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case messages.ViewChanged:
		return a, a.switchTo(msg.View)

	case messages.AnswerReceived:
		a.chatView, cmd = a.chatView.Update(msg)
		if msg.Err != nil && !errors.Is(msg.Err, domain.ErrStaleResponse) {
			a.setError(msg.Err)
		}
		a.syncStatus()
		return a, tea.Batch(cmd, a.loadStats())

	case messages.TranscriptLoaded:
		a.chatView, cmd = a.chatView.Update(msg)
		return a, cmd

	case messages.FilesIngested:
		a.chatView, cmd = a.chatView.Update(msg)
		if msg.Err != nil {
			a.setError(msg.Err)
		}
		a.syncStatus()
		cmds := []tea.Cmd{cmd, a.loadStats()}
		if a.currentView == messages.ViewDocuments {
			cmds = append(cmds, a.documentsView.Load())
		}
		return a, tea.Batch(cmds...)

	case messages.StatsLoaded:
		if msg.Err == nil {
			a.stats = msg.Stats
			a.statusBar.SetStats(msg.Stats)
		}
		a.chatView, cmd = a.chatView.Update(msg)
		return a, cmd

	case messages.DocumentsLoaded:
		a.documentsView, cmd = a.documentsView.Update(msg)
		return a, cmd

	case messages.ModelSwitched:
		a.chatView, _ = a.chatView.Update(msg)
		a.modelsView, _ = a.modelsView.Update(msg)
		if msg.Err != nil {
			a.setError(msg.Err)
			return a, nil
		}
		if a.currentView == messages.ViewModels {
			a.switchTo(messages.ViewChat)
		}
		return a, a.loadStats()

	case messages.SessionReset:
		var docCmd tea.Cmd
		a.chatView, cmd = a.chatView.Update(msg)
		a.documentsView, docCmd = a.documentsView.Update(msg)
		if msg.Err != nil {
			a.setError(msg.Err)
		}
		return a, tea.Batch(cmd, docCmd, a.loadStats())

	case messages.ErrorOccurred:
		a.setError(msg.Err)
		return a, nil

	case messages.Quit:
		return a, tea.Quit
	}

	// Cursor blink and other component messages
	a.chatView, cmd = a.chatView.Update(msg)
	return a, cmd
}

// handleKeyMsg routes key presses to the active view.
func (a *App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	k := msg.String()

	switch {
	case keymap.Matches(k, a.keymap.Quit):
		return a, tea.Quit
	case keymap.Matches(k, a.keymap.Help):
		if a.currentView == messages.ViewHelp {
			return a, a.switchTo(messages.ViewChat)
		}
		return a, a.switchTo(messages.ViewHelp)
	}

	switch a.currentView {
	case messages.ViewChat:
		if a.statusBar.State() == status.StateError {
			a.statusBar.Clear()
		}
		a.chatView, cmd = a.chatView.Update(msg)
		a.syncStatus()
		return a, cmd

	case messages.ViewDocuments:
		a.documentsView, cmd = a.documentsView.Update(msg)
		return a, cmd

	case messages.ViewModels:
		a.modelsView, cmd = a.modelsView.Update(msg)
		return a, cmd

	case messages.ViewHelp:
		if keymap.Matches(k, a.keymap.Back) {
			return a, a.switchTo(messages.ViewChat)
		}
	}

	return a, nil
}

// switchTo activates a view and returns any command needed to populate it.
func (a *App) switchTo(view messages.ViewType) tea.Cmd {
	a.currentView = view
	a.statusBar.SetListHints(view == messages.ViewDocuments || view == messages.ViewModels)

	switch view {
	case messages.ViewDocuments:
		return a.documentsView.Load()
	case messages.ViewModels:
		a.modelsView.Refresh(a.stats.Model)
	case messages.ViewChat, messages.ViewHelp:
	}
	return nil
}

// syncStatus mirrors chat activity into the status bar.
func (a *App) syncStatus() {
	switch {
	case a.chatView.Busy():
		a.statusBar.SetState(status.StateThinking)
	case a.chatView.Ingesting():
		a.statusBar.SetState(status.StateIngesting)
	case a.statusBar.State() != status.StateError:
		a.statusBar.Clear()
	}
}

func (a *App) setError(err error) {
	a.err = err
	a.statusBar.SetState(status.StateError)
	a.statusBar.SetMessage(err.Error())
}

// View implements tea.Model.
// It renders the current view as a string.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	var body string
	switch a.currentView {
	case messages.ViewDocuments:
		body = a.documentsView.View()
	case messages.ViewModels:
		body = a.modelsView.View()
	case messages.ViewHelp:
		body = a.viewHelp()
	default:
		body = a.chatView.View()
	}

	return body + "\n" + a.statusBar.View()
}

// viewHelp renders the help view.
func (a *App) viewHelp() string {
	var b strings.Builder

	b.WriteString(a.styles.Title.Render("docsassistant"))
	b.WriteString("\n\n")
	b.WriteString(a.styles.Subtitle.Render("Keys"))
	b.WriteString("\n")
	for _, group := range a.keymap.FullHelp() {
		for _, binding := range group {
			h := binding.Help()
			b.WriteString(fmt.Sprintf("  %-10s %s\n", h.Key, h.Desc))
		}
	}
	b.WriteString("\n")
	b.WriteString(a.styles.Subtitle.Render("Chat"))
	b.WriteString("\n")
	b.WriteString(chatcmd.Help())
	b.WriteString("\n\n")
	b.WriteString(a.styles.Help.Render("[esc] back to chat"))

	return b.String()
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// SessionID returns the session the app is attached to.
func (a *App) SessionID() string {
	return a.sessionID
}

// Stats returns the last session snapshot.
func (a *App) Stats() domain.SessionStats {
	return a.stats
}

// StatusState returns the status bar state.
func (a *App) StatusState() status.State {
	return a.statusBar.State()
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions.
// The status bar takes the bottom line.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true

	content := height - 1
	a.chatView.SetDimensions(width, content)
	a.documentsView.SetDimensions(width, content)
	a.modelsView.SetDimensions(width, content)
	a.statusBar.SetWidth(width)
}
