package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/domain"
)

var errNoSettingsService = errors.New("settings service not configured")

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure AI providers, chunking, retrieval and other options.

Use subcommands to configure specific settings or run the interactive wizard.
API keys can also come from OPENAI_API_KEY and ANTHROPIC_API_KEY.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Choose the LLM and embedding providers step by step",
	RunE:  runSettingsWizard,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Choose the embedding provider used to index uploads",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if settingsService == nil {
			return errNoSettingsService
		}
		return configureProvider(cmd, bufio.NewReader(cmd.InOrStdin()), embeddingStep())
	},
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Choose the LLM provider that writes answers",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if settingsService == nil {
			return errNoSettingsService
		}
		return configureProvider(cmd, bufio.NewReader(cmd.InOrStdin()), llmStep())
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Change one engine setting",
	Long: `Change one engine setting and save it to config.toml.

Keys:
` + settingKeysHelp(),
	// Flags are not parsed so that values such as -1 reach validation.
	DisableFlagParsing: true,
	Args:               settingsSetArgs,
	RunE:               runSettingsSet,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNoSettingsService
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	out := cmd.OutOrStdout()
	printSection(out, "LLM", providerRows(settings.LLM.Provider, settings.LLM.Model,
		settings.LLM.BaseURL, settings.LLM.APIKey, settings.LLM.IsConfigured(),
		[2]string{"Temperature", fmt.Sprintf("%.2f", settings.LLM.Temperature)}))
	printSection(out, "Embedding", providerRows(settings.Embedding.Provider, settings.Embedding.Model,
		settings.Embedding.BaseURL, settings.Embedding.APIKey, settings.Embedding.IsConfigured()))

	documents := [][2]string{
		{"Chunk size", strconv.Itoa(settings.Chunking.Size)},
		{"Chunk overlap", strconv.Itoa(settings.Chunking.Overlap)},
		{"Passages per answer", strconv.Itoa(settings.Retrieval.K)},
		{"Minimum similarity", fmt.Sprintf("%.2f", settings.Retrieval.MinSimilarity)},
		{"Image mode", string(settings.Ingest.ImageMode)},
	}
	if settings.Ingest.ImageMode == domain.ImageModeVision {
		documents = append(documents, [2]string{"Vision model", settings.Ingest.VisionModel})
	}
	printSection(out, "Documents", documents)

	session := [][2]string{{"Idle timeout", settings.Session.IdleTimeout.String()}}
	if settings.Log.File != "" {
		session = append(session, [2]string{"Log file", settings.Log.File})
	}
	printSection(out, "Session", session)

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'docsassistant settings wizard' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}
	return nil
}

func providerRows(provider domain.AIProvider, model, baseURL, apiKey string, configured bool, extra ...[2]string) [][2]string {
	rows := [][2]string{
		{"Provider", provider.Description()},
		{"Model", model},
	}
	rows = append(rows, extra...)
	if provider.IsLocal() {
		rows = append(rows, [2]string{"Base URL", baseURL})
	}
	if provider.RequiresAPIKey() {
		key := "(not set)"
		if apiKey != "" {
			key = maskAPIKey(apiKey)
		}
		rows = append(rows, [2]string{"API key", key})
	}
	status := "configured"
	if !configured {
		status = "not configured"
	}
	return append(rows, [2]string{"Status", status})
}

func printSection(w io.Writer, title string, rows [][2]string) {
	fmt.Fprintf(w, "[%s]\n", title)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, r := range rows {
		fmt.Fprintf(tw, "  %s:\t%s\n", r[0], r[1])
	}
	_ = tw.Flush()
	fmt.Fprintln(w)
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNoSettingsService
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	cmd.Println("docsassistant setup")
	cmd.Println()

	cmd.Println("Step 1 of 2: the LLM writes every answer.")
	if err := configureProvider(cmd, reader, llmStep()); err != nil {
		return err
	}

	cmd.Println("Step 2 of 2: embeddings let answers cite your documents.")
	cmd.Println("Without them the assistant still chats, but uploads are refused.")
	if err := configureProvider(cmd, reader, embeddingStep()); err != nil {
		return err
	}

	cmd.Println("Configuration Complete!")
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	}
	return nil
}

// providerStep describes one provider prompt.
type providerStep struct {
	name      string
	providers []domain.AIProvider
	defaults  map[domain.AIProvider]string
	set       func(provider domain.AIProvider, model, apiKey string) error
	validate  func() error
}

func embeddingStep() providerStep {
	return providerStep{
		name:      "embedding",
		providers: domain.AllEmbeddingProviders(),
		defaults:  domain.DefaultEmbeddingModels(),
		set:       settingsService.SetEmbeddingProvider,
		validate:  settingsService.ValidateEmbeddingConfig,
	}
}

func llmStep() providerStep {
	return providerStep{
		name:      "LLM",
		providers: domain.AllLLMProviders(),
		defaults:  domain.DefaultLLMModels(),
		set:       settingsService.SetLLMProvider,
		validate:  settingsService.ValidateLLMConfig,
	}
}

func configureProvider(cmd *cobra.Command, reader *bufio.Reader, step providerStep) error {
	cmd.Printf("Select %s provider\n", step.name)
	for i, p := range step.providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	provider := step.providers[parseChoice(readLine(reader), len(step.providers), 1)-1]

	model := step.defaults[provider]
	cmd.Printf("Enter model name [%s]: ", model)
	if typed := readLine(reader); typed != "" {
		model = typed
	}

	var apiKey string
	if provider.RequiresAPIKey() {
		cmd.Print("Enter API key (blank to use the environment): ")
		apiKey = readPassword(reader)
		cmd.Println()
	}

	if err := step.set(provider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure %s provider: %w", step.name, err)
	}

	cmd.Print("Validating configuration... ")
	if err := step.validate(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("%s configuration validation failed: %w", step.name, err)
	}
	cmd.Println("OK")

	cmd.Printf("%s provider configured: %s (%s)\n\n", step.name, provider.Description(), model)
	return nil
}

// settingKey is one value `settings set` can change.
type settingKey struct {
	help  string
	apply func(s *domain.AppSettings, value string) error
}

var settingKeys = map[string]settingKey{
	"llm.temperature": {"default sampling temperature (0-2)", func(s *domain.AppSettings, v string) error {
		f, err := parseFloatIn(v, 0, 2)
		s.LLM.Temperature = f
		return err
	}},
	"chunking.size": {"maximum chunk length in characters", func(s *domain.AppSettings, v string) error {
		n, err := parsePositive(v)
		s.Chunking.Size = n
		return err
	}},
	"chunking.overlap": {"characters shared by neighbouring chunks", func(s *domain.AppSettings, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return fmt.Errorf("%q is not a non-negative integer", v)
		}
		s.Chunking.Overlap = n
		return nil
	}},
	"retrieval.k": {"passages cited per answer", func(s *domain.AppSettings, v string) error {
		n, err := parsePositive(v)
		s.Retrieval.K = n
		return err
	}},
	"retrieval.min_similarity": {"similarity a passage needs to be cited (0-1)", func(s *domain.AppSettings, v string) error {
		f, err := parseFloatIn(v, 0, 1)
		s.Retrieval.MinSimilarity = f
		return err
	}},
	"ingest.concurrency": {"documents prepared at once", func(s *domain.AppSettings, v string) error {
		n, err := parsePositive(v)
		s.Ingest.Concurrency = n
		return err
	}},
	"ingest.image_mode": {"ocr or vision", func(s *domain.AppSettings, v string) error {
		mode := domain.ImageMode(strings.ToLower(v))
		if !mode.IsValid() {
			return fmt.Errorf("image mode must be %s or %s", domain.ImageModeOCR, domain.ImageModeVision)
		}
		s.Ingest.ImageMode = mode
		return nil
	}},
	"ingest.vision_model": {"model that describes images in vision mode", func(s *domain.AppSettings, v string) error {
		s.Ingest.VisionModel = v
		return nil
	}},
	"session.idle_timeout": {"evict idle sessions after this long, e.g. 90m (0 disables)", func(s *domain.AppSettings, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return fmt.Errorf("%q is not a duration", v)
		}
		s.Session.IdleTimeout = d
		return nil
	}},
	"log.file": {"path for rotated JSON logs (empty disables)", func(s *domain.AppSettings, v string) error {
		s.Log.File = v
		return nil
	}},
}

func settingKeysHelp() string {
	names := make([]string, 0, len(settingKeys))
	for name := range settingKeys {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	for _, name := range names {
		fmt.Fprintf(tw, "  %s\t%s\n", name, settingKeys[name].help)
	}
	_ = tw.Flush()
	return b.String()
}

func settingsSetArgs(cmd *cobra.Command, args []string) error {
	if isHelpArg(args) {
		return nil
	}
	return cobra.ExactArgs(2)(cmd, args)
}

func isHelpArg(args []string) bool {
	return len(args) == 1 && (args[0] == "-h" || args[0] == "--help")
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if isHelpArg(args) {
		return cmd.Help()
	}
	if settingsService == nil {
		return errNoSettingsService
	}

	name, value := strings.ToLower(args[0]), strings.TrimSpace(args[1])
	key, ok := settingKeys[name]
	if !ok {
		return fmt.Errorf("unknown setting %q, see 'docsassistant settings set --help'", args[0])
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if err := key.apply(settings, value); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if err := settingsService.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	cmd.Printf("%s = %s\n", name, value)
	cmd.Println("New sessions pick this up; restart running servers.")
	return nil
}

func parsePositive(v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%q is not a positive integer", v)
	}
	return n, nil
}

func parseFloatIn(v string, lo, hi float64) (float64, error) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < lo || f > hi {
		return 0, fmt.Errorf("%q is not a number between %g and %g", v, lo, hi)
	}
	return f, nil
}

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

func readPassword(reader *bufio.Reader) string {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		if password, err := term.ReadPassword(int(os.Stdin.Fd())); err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

// maskAPIKey keeps the first and last four characters of long keys.
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
