// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/adapters/driving/tui/styles"
)

// Item is one row in a List.
type Item struct {
	// Key identifies the item to the owning view.
	Key string

	// Title is the main text.
	Title string

	// Meta is right-aligned next to the title.
	Meta string

	// Detail is shown muted under the title.
	Detail string

	// Marked items get a marker, e.g. the active model.
	Marked bool
}

// List displays items in a navigable list.
type List struct {
	title    string
	empty    string
	items    []Item
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// New creates a new list component. Empty is shown when there are no items.
func New(s *styles.Styles, title, empty string) *List {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &List{
		title:  title,
		empty:  empty,
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the list.
func (l *List) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (l *List) Update(msg tea.Msg) (*List, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			l.MoveUp()
		case "down", "j":
			l.MoveDown()
		case "home", "g":
			l.selected = 0
		case "end", "G":
			if len(l.items) > 0 {
				l.selected = len(l.items) - 1
			}
		}
	}
	return l, nil
}

// View renders the list.
func (l *List) View() string {
	lines := make([]string, 0, len(l.items)*2+2)
	lines = append(lines, l.styles.Title.Render(fmt.Sprintf("%s (%d)", l.title, len(l.items))), "")

	if len(l.items) == 0 {
		lines = append(lines, l.styles.Muted.Render(l.empty))
		return strings.Join(lines, "\n")
	}

	// Each item takes up to two lines
	visibleCount := (l.height - 2) / 2
	if visibleCount < 1 {
		visibleCount = 1
	}

	start := 0
	if l.selected >= visibleCount {
		start = l.selected - visibleCount + 1
	}
	end := start + visibleCount
	if end > len(l.items) {
		end = len(l.items)
	}

	for i := start; i < end; i++ {
		lines = append(lines, l.renderItem(i, &l.items[i]))
	}

	return strings.Join(lines, "\n")
}

func (l *List) renderItem(index int, item *Item) string {
	indicator := "  "
	if index == l.selected {
		indicator = "> "
	}
	marker := "  "
	if item.Marked {
		marker = "* "
	}

	maxTitleLen := l.width - len(item.Meta) - 10
	if maxTitleLen < 10 {
		maxTitleLen = 10
	}
	title := truncate(item.Title, maxTitleLen)

	var line string
	if index == l.selected {
		line = l.styles.Selected.Render(fmt.Sprintf("%s%s%-*s  %s", indicator, marker, maxTitleLen, title, item.Meta))
	} else {
		line = l.styles.Normal.Render(fmt.Sprintf("%s%s%-*s  ", indicator, marker, maxTitleLen, title)) +
			l.styles.Muted.Render(item.Meta)
	}

	if item.Detail == "" {
		return line
	}
	return line + "\n" + l.styles.Muted.Render("      "+truncate(item.Detail, l.width-8))
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	if n < 4 {
		n = 4
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

// SetItems replaces the items and resets the selection.
func (l *List) SetItems(items []Item) {
	l.items = items
	l.selected = 0
}

// Items returns the current items.
func (l *List) Items() []Item {
	return l.items
}

// Selected returns the index of the selected item.
func (l *List) Selected() int {
	return l.selected
}

// SetSelected sets the selected index.
func (l *List) SetSelected(index int) {
	if index >= 0 && index < len(l.items) {
		l.selected = index
	}
}

// SelectedItem returns the currently selected item, or nil if none.
func (l *List) SelectedItem() *Item {
	if len(l.items) == 0 || l.selected < 0 || l.selected >= len(l.items) {
		return nil
	}
	return &l.items[l.selected]
}

// MoveUp moves selection up.
func (l *List) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves selection down.
func (l *List) MoveDown() {
	if l.selected < len(l.items)-1 {
		l.selected++
	}
}

// SetDimensions sets the component dimensions.
func (l *List) SetDimensions(width, height int) {
	l.width = width
	l.height = height
}

// Count returns the number of items.
func (l *List) Count() int {
	return len(l.items)
}

// IsEmpty returns whether the list is empty.
func (l *List) IsEmpty() bool {
	return len(l.items) == 0
}
