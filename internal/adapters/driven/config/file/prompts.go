package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/ports/driven"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/logger"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads LLM prompts from user-editable files on disk.
// Prompts are loaded from a configurable directory with fallback to embedded defaults.
//
// The store uses lazy initialisation - files are only created when first accessed,
// not in the constructor. This makes testing easier and avoids unexpected I/O.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// defaultPrompts contains embedded default prompts.
// These are used when user files don't exist and as the initial content for new files.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptChatSystem: `You are a helpful assistant. No documents are loaded, so answer from your own knowledge and the conversation so far.
If a question seems to be about a document, tell the user they can upload one.`,

	driven.PromptDocumentSystem: `You are a helpful assistant answering questions about the user's uploaded documents.
Use the numbered excerpts below as your primary source. Cite excerpts by their number, for example [2].
If the excerpts do not contain the answer, say so and answer from general knowledge only when that is clearly useful.

Excerpts:
%s`,

	driven.PromptLowRelevance: `None of the uploaded documents appear relevant to this question. Say so briefly, then answer from general knowledge if you can.`,

	driven.PromptImageDescription: `Analyze this image in detail and provide:

1. **Main Content**: What is the primary subject or purpose of this image?
2. **Text Content**: Any text, labels, captions, or written information visible
3. **Key Details**: Important visual elements, data, diagrams, or information
4. **Context**: What type of document/image is this (chart, diagram, photo, screenshot, etc.)

Be thorough and specific so this description can be used to answer questions about the image.`,
}

// placeholders is the number of %s verbs each template must carry.
var placeholders = map[string]int{
	driven.PromptDocumentSystem: 1,
}

// checkPlaceholders rejects an edited template whose %s count would break formatting.
func checkPlaceholders(name, prompt string) error {
	want := placeholders[name]
	if got := strings.Count(prompt, "%s"); got != want {
		return fmt.Errorf("expected %d %%s placeholder(s), found %d", want, got)
	}
	return nil
}

// DefaultPrompt returns the built-in template for name.
func DefaultPrompt(name string) (string, bool) {
	prompt, ok := defaultPrompts[name]
	return prompt, ok
}

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to ~/.docsassistant/prompts/.
//
// The constructor does not perform any I/O - directory creation and
// file writes happen lazily on first Load() call.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(dir, "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the prompt template for the given name.
// On first call, initialises the prompt directory and creates default files.
// Returns cached value if available, otherwise loads from file.
// Falls back to embedded default if file doesn't exist.
func (s *PromptStore) Load(name string) (string, error) {
	// Ensure directory and defaults exist (lazy init)
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		// Fall back to embedded defaults if init failed
		if prompt, ok := defaultPrompts[name]; ok {
			return prompt, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	// Check cache first (read lock)
	s.mu.RLock()
	if prompt, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return prompt, nil
	}
	s.mu.RUnlock()

	// Load from file (no lock held during I/O)
	prompt, err := s.loadFromFile(name)
	if err == nil {
		err = checkPlaceholders(name, prompt)
		if err != nil {
			logger.Warn("Ignoring prompt file %s: %v", name, err)
		}
	}
	if err != nil {
		// Fall back to embedded default
		if defaultPrompt, ok := defaultPrompts[name]; ok {
			return defaultPrompt, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	// Cache the result (write lock)
	// Use double-check pattern to avoid overwriting concurrent loads
	s.mu.Lock()
	if _, ok := s.cache[name]; !ok {
		s.cache[name] = prompt
	} else {
		// Another goroutine loaded it first, use their value
		prompt = s.cache[name]
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// initialise creates the prompt directory and default files.
// Called once via sync.Once on first Load().
func (s *PromptStore) initialise() {
	// Create directory
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	// Create default prompt files (only if they don't exist)
	for name, content := range defaultPrompts {
		path := filepath.Join(s.promptDir, name+".txt")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				return
			}
		}
	}

	// Create README
	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

// loadFromFile reads a prompt from disk.
func (s *PromptStore) loadFromFile(name string) (string, error) {
	path := filepath.Join(s.promptDir, name+".txt")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// createReadme writes a README file explaining the prompts directory.
func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil // Already exists or stat error (ignore)
	}

	content := `# Prompts

This directory contains the prompts the assistant sends to the generation model.

## Files

- ` + "`chat_system.txt`" + ` - System prompt when no documents are loaded
- ` + "`document_system.txt`" + ` - System prompt for questions about uploaded documents
- ` + "`low_relevance.txt`" + ` - Added when no document excerpt matched the question
- ` + "`image_description.txt`" + ` - Sent with images when image mode is "vision"

## Customisation

Edit any file to customise the assistant. Changes take effect the next time
the assistant starts.

## Format Placeholders

` + "`document_system.txt`" + ` must keep exactly one ` + "`%s`" + `, where the numbered
excerpts are inserted. The other prompts take no placeholders.
`
	return os.WriteFile(path, []byte(content), 0600)
}
