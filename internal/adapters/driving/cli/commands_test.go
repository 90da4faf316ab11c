package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/domain"
)

func resetAskFlags() {
	askFiles = nil
	askSession = ""
	askModel = ""
	askTemperature = -1
	askJSON = false
	askCmd.Flags().Lookup("temperature").Changed = false
}

func TestAskCmd_RequiresQuestion(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	defer resetAskFlags()

	_, err := execute(t, "", "ask")
	assert.Error(t, err)
}

func TestAskCmd_ChatAnswer(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	defer resetAskFlags()

	out, err := execute(t, "", "ask", "What", "is", "Go?")
	require.NoError(t, err)

	assert.Equal(t, []string{"What is Go?"}, ts.conversation.asked)
	assert.Nil(t, ts.conversation.lastOpts.Temperature)
	assert.Contains(t, out, "mock answer")
}

func TestAskCmd_WithFilesAndOverrides(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	defer resetAskFlags()

	path := filepath.Join(t.TempDir(), "guide.md")
	require.NoError(t, os.WriteFile(path, []byte("# Guide\nInstall with make."), 0o644))

	out, err := execute(t, "", "ask", "--file", path, "--model", "gpt-4o", "--temperature", "0.1", "How do I install?")
	require.NoError(t, err)

	require.Len(t, ts.ingest.ingested(), 1)
	assert.Equal(t, "gpt-4o", ts.conversation.lastOpts.Model)
	require.NotNil(t, ts.conversation.lastOpts.Temperature)
	assert.InDelta(t, 0.1, *ts.conversation.lastOpts.Temperature, 1e-9)
	assert.Contains(t, out, "Indexed guide.md")
}

func TestAskCmd_NoReadableFiles(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	defer resetAskFlags()

	_, err := execute(t, "", "ask", "--file", filepath.Join(t.TempDir(), "gone.pdf"), "question")
	assert.ErrorContains(t, err, "no documents could be indexed")
	assert.Empty(t, ts.conversation.asked)
}

func TestAskCmd_JSONOutput(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	defer resetAskFlags()

	out, err := execute(t, "", "ask", "--json", "hello")
	require.NoError(t, err)
	assert.Contains(t, out, `"content": "mock answer"`)
	assert.Contains(t, out, `"role": "assistant"`)
}

func TestAskCmd_FailedAnswer(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	defer resetAskFlags()
	ts.conversation.turn = &domain.Turn{Role: domain.RoleAssistant, Failed: true, Error: "timeout"}

	out, err := execute(t, "", "ask", "hello")
	assert.Error(t, err)
	assert.Contains(t, out, "Error: timeout")
}

func TestAskCmd_ServiceNotConfigured(t *testing.T) {
	old := conversationService
	conversationService = nil
	defer func() { conversationService = old }()
	defer resetAskFlags()

	_, err := execute(t, "", "ask", "hello")
	assert.ErrorContains(t, err, "conversation service not configured")
}

func TestFormatsCmd(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "", "formats")
	require.NoError(t, err)
	assert.Contains(t, out, "documents:")
	assert.Contains(t, out, ".pdf")
	assert.Contains(t, out, "spreadsheets:")
	assert.Contains(t, out, ".xlsx")
}

func TestModelsCmd(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "", "models")
	require.NoError(t, err)
	assert.Contains(t, out, "* gpt-4o-mini")
	assert.Contains(t, out, "gpt-5")
}

func TestModelsCmd_Empty(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.conversation.models = nil

	out, err := execute(t, "", "models")
	require.NoError(t, err)
	assert.Contains(t, out, "No models available")
}

func TestChatCmd_PlainMode(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	oldTerminal := isTerminal
	isTerminal = func() bool { return false }
	defer func() {
		isTerminal = oldTerminal
		chatSession, chatFiles, chatWatch, chatModel, chatPlain = "", nil, "", "", false
	}()

	path := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("alpha"), 0o644))

	out, err := execute(t, "hello\n/quit\n", "chat", "--session", "mine", "--model", "gpt-4o", "--file", path)
	require.NoError(t, err)

	assert.Equal(t, []string{"mine"}, ts.session.opened)
	assert.Equal(t, []string{"gpt-4o"}, ts.conversation.switched)
	assert.Len(t, ts.ingest.ingested(), 1)
	assert.Equal(t, []string{"hello"}, ts.conversation.asked)
	assert.Contains(t, out, "Session test-session")
	assert.Contains(t, out, "mock answer")
}

func TestChatCmd_WatchMissingDirectory(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	oldTerminal := isTerminal
	isTerminal = func() bool { return false }
	defer func() {
		isTerminal = oldTerminal
		chatWatch = ""
	}()

	_, err := execute(t, "", "chat", "--watch", filepath.Join(t.TempDir(), "nope"))
	assert.ErrorContains(t, err, "failed to watch")
}

func TestChatCmd_Flags(t *testing.T) {
	for _, name := range []string{"session", "file", "watch", "model", "plain"} {
		assert.NotNil(t, chatCmd.Flags().Lookup(name), "missing flag %q", name)
	}
}

func TestServeCmd_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("addr")
	require.NotNil(t, flag)
	assert.Equal(t, ":8080", flag.DefValue)
}

func TestMCPServeCmd_Flags(t *testing.T) {
	flag := mcpServeCmd.Flags().Lookup("port")
	require.NotNil(t, flag)
	assert.Equal(t, "0", flag.DefValue)
	assert.Equal(t, "localhost", mcpServeCmd.Flags().Lookup("host").DefValue)
}

func TestMCPServeCmd_RejectsBadPort(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	t.Cleanup(func() {
		mcpPort = 0
		mcpServeCmd.Flags().Lookup("port").Changed = false
	})

	_, err := execute(t, "", "mcp", "serve", "--port", "70000")
	assert.ErrorContains(t, err, "out of range")
}
