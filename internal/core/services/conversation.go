package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/domain"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/ports/driven"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/ports/driving"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/logger"
)

// Ensure ConversationService implements the interface.
var _ driving.ConversationService = (*ConversationService)(nil)

// DefaultGenerationRetryDelay is the pause before the single retry of a
// transient generation failure.
const DefaultGenerationRetryDelay = time.Second

// fallbackPrompts are used when no prompt store is configured or a load fails.
var fallbackPrompts = map[string]string{
	driven.PromptChatSystem:     "You are a helpful assistant.",
	driven.PromptDocumentSystem: "Answer using the numbered excerpts below and cite them by number.\n\nExcerpts:\n%s",
	driven.PromptLowRelevance:   "None of the uploaded documents appear relevant to this question. Say so briefly.",
}

// ConversationService records turns, retrieves evidence and asks the
// generation model for answers.
//
// The session lock is held only while the transcript is mutated or
// snapshotted. Retrieval and generation run unlocked; each reply carries
// a generation ticket and is rejected at commit if the transcript moved on.
type ConversationService struct {
	registry   *SessionRegistry
	planner    *RetrievalPlanner
	llm        driven.LLMService
	prompts    driven.PromptStore
	config     domain.LLMSettings
	retryDelay time.Duration
}

// ConversationOption configures a ConversationService.
type ConversationOption func(*ConversationService)

// WithGenerationRetryDelay sets the pause before retrying a transient failure.
func WithGenerationRetryDelay(d time.Duration) ConversationOption {
	return func(s *ConversationService) {
		if d > 0 {
			s.retryDelay = d
		}
	}
}

// NewConversationService creates a conversation service.
// llm and prompts may be nil: without llm every answer is a failed turn,
// without prompts built-in prompts are used.
func NewConversationService(
	registry *SessionRegistry,
	planner *RetrievalPlanner,
	llm driven.LLMService,
	prompts driven.PromptStore,
	config domain.LLMSettings,
	opts ...ConversationOption,
) *ConversationService {
	s := &ConversationService{
		registry:   registry,
		planner:    planner,
		llm:        llm,
		prompts:    prompts,
		config:     config,
		retryDelay: DefaultGenerationRetryDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// request is everything a generation needs, captured under the session lock.
type request struct {
	ticket   domain.GenerationTicket
	user     domain.Turn
	history  []domain.Turn
	model    string
	scope    RetrievalScope
	evidence *domain.EvidenceSet
}

// Ask records a user turn and answers it.
func (s *ConversationService) Ask(
	ctx context.Context, sessionID, content string, opts driving.GenerateOptions,
) (*domain.Turn, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("empty message: %w", domain.ErrInvalidInput)
	}
	if err := s.checkModel(opts.Model); err != nil {
		return nil, err
	}

	session, err := s.registry.GetOrCreate(sessionID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	user, ticket := session.transcript.AppendUser(content)
	req := s.snapshot(session, user, ticket, opts.Model)
	session.mu.Unlock()

	return s.answer(ctx, session, req, opts)
}

// Edit replaces the user turn at index, drops everything after it and
// answers the edited turn.
func (s *ConversationService) Edit(
	ctx context.Context, sessionID string, index int, content string, opts driving.GenerateOptions,
) (*domain.Turn, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("empty message: %w", domain.ErrInvalidInput)
	}
	if err := s.checkModel(opts.Model); err != nil {
		return nil, err
	}

	session, err := s.registry.Get(sessionID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	user, ticket, err := session.transcript.Edit(index, content)
	if err != nil {
		session.mu.Unlock()
		return nil, err
	}
	req := s.snapshot(session, user, ticket, opts.Model)
	session.mu.Unlock()

	logger.Debug("Session %s: edited turn %d", sessionID, index)
	return s.answer(ctx, session, req, opts)
}

// Retry discards the last assistant turn and regenerates it from the
// evidence the original answer used.
func (s *ConversationService) Retry(
	ctx context.Context, sessionID string, opts driving.GenerateOptions,
) (*domain.Turn, error) {
	if err := s.checkModel(opts.Model); err != nil {
		return nil, err
	}

	session, err := s.registry.Get(sessionID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	user, ticket, err := session.transcript.Retry()
	if err != nil {
		session.mu.Unlock()
		return nil, err
	}
	req := s.snapshot(session, user, ticket, opts.Model)
	req.evidence = session.evidence[user.ID]
	session.mu.Unlock()

	logger.Debug("Session %s: retrying turn %d (cached evidence: %t)", sessionID, ticket.Seq, req.evidence != nil)
	return s.answer(ctx, session, req, opts)
}

// SwitchModel changes the session's active model.
func (s *ConversationService) SwitchModel(_ context.Context, sessionID, model string) error {
	model = strings.TrimSpace(model)
	if model == "" {
		return fmt.Errorf("empty model: %w", domain.ErrUnknownModel)
	}
	if err := s.checkModel(model); err != nil {
		return err
	}

	session, err := s.registry.GetOrCreate(sessionID)
	if err != nil {
		return err
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	session.model = model
	logger.Info("Session %s switched to %s", sessionID, model)
	return nil
}

// Transcript returns the session's live turns.
func (s *ConversationService) Transcript(_ context.Context, sessionID string) ([]domain.Turn, error) {
	session, err := s.registry.Get(sessionID)
	if err != nil {
		return nil, err
	}

	session.mu.RLock()
	defer session.mu.RUnlock()
	return session.transcript.Turns(), nil
}

// Models returns the catalogue models served by the configured provider,
// plus the configured default model when the catalogue lacks it.
func (s *ConversationService) Models() []domain.ModelInfo {
	var models []domain.ModelInfo
	hasDefault := false
	for _, m := range domain.ModelCatalogue() {
		if s.config.Provider != "" && m.Provider != s.config.Provider {
			continue
		}
		if m.ID == s.config.Model {
			hasDefault = true
		}
		models = append(models, m)
	}

	if s.config.Model != "" && !hasDefault {
		models = append(models, domain.ModelInfo{
			ID:          s.config.Model,
			Provider:    s.config.Provider,
			Family:      "Configured",
			Description: "Configured default model",
		})
	}
	return models
}

// checkModel accepts an empty id or one listed by Models.
func (s *ConversationService) checkModel(model string) error {
	if model == "" {
		return nil
	}
	for _, m := range s.Models() {
		if m.ID == model {
			return nil
		}
	}
	return fmt.Errorf("%q: %w", model, domain.ErrUnknownModel)
}

// snapshot captures a generation request. The caller holds the session lock.
func (s *ConversationService) snapshot(
	session *Session, user domain.Turn, ticket domain.GenerationTicket, model string,
) request {
	if model != "" && model != session.model {
		logger.Info("Session %s switched to %s", session.id, model)
		session.model = model
	}

	turns := session.transcript.Turns()
	return request{
		ticket:  ticket,
		user:    user,
		history: turns[:user.Seq],
		model:   session.model,
		scope:   RetrievalScope{Index: session.index, Documents: session.documents},
	}
}

// answer plans, generates and commits the reply for req.
func (s *ConversationService) answer(
	ctx context.Context, session *Session, req request, opts driving.GenerateOptions,
) (*domain.Turn, error) {
	reply := domain.AssistantReply{Model: req.model, Evidence: req.evidence}

	if reply.Evidence == nil {
		evidence, err := s.planner.Plan(ctx, req.user.Content, req.scope)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Warn("Retrieval failed: %v", err)
			reply.Err = err
		} else {
			session.storeEvidence(req.user.ID, evidence)
			reply.Evidence = evidence
		}
	}

	if reply.Err == nil {
		temperature := s.config.Temperature
		if opts.Temperature != nil {
			temperature = *opts.Temperature
		}
		messages := s.buildMessages(req.history, req.user.Content, reply.Evidence)
		reply.Content, reply.Err = s.generate(ctx, messages, req.model, temperature)
		if reply.Err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Warn("Generation with %s failed: %v", req.model, reply.Err)
		}
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	turn, err := session.transcript.Commit(req.ticket, reply)
	if err != nil {
		logger.Debug("Session %s: discarding reply: %v", session.id, err)
		return nil, err
	}
	return &turn, nil
}

// generate calls the model, retrying once on a transient provider error.
func (s *ConversationService) generate(
	ctx context.Context, messages []driven.ChatMessage, model string, temperature float64,
) (string, error) {
	if s.llm == nil {
		return "", domain.ErrLLMUnavailable
	}

	opts := driven.ChatOptions{
		Model:       model,
		MaxTokens:   s.config.MaxTokens,
		Temperature: domain.EffectiveTemperature(model, temperature),
	}

	operation := func() (string, error) {
		content, err := s.llm.Chat(ctx, messages, opts)
		if err == nil {
			return content, nil
		}
		if ctx.Err() != nil || !domain.IsRetryable(err) {
			return "", backoff.Permanent(err)
		}
		return "", err
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewConstantBackOff(s.retryDelay)),
		backoff.WithMaxTries(2),
		backoff.WithNotify(func(err error, next time.Duration) {
			logger.Warn("Generation failed, retrying in %s: %v", next, err)
		}),
	)
}

// buildMessages assembles the system prompt, prior turns and the question.
// Failed assistant turns are left out of the history.
func (s *ConversationService) buildMessages(
	history []domain.Turn, question string, evidence *domain.EvidenceSet,
) []driven.ChatMessage {
	messages := make([]driven.ChatMessage, 0, len(history)+2)
	messages = append(messages, driven.ChatMessage{Role: driven.ChatRoleSystem, Content: s.systemPrompt(evidence)})

	for _, turn := range history {
		switch {
		case turn.Role == domain.RoleUser:
			messages = append(messages, driven.ChatMessage{Role: driven.ChatRoleUser, Content: turn.Content})
		case turn.IsAnswered():
			messages = append(messages, driven.ChatMessage{Role: driven.ChatRoleAssistant, Content: turn.Content})
		}
	}

	return append(messages, driven.ChatMessage{Role: driven.ChatRoleUser, Content: question})
}

// systemPrompt picks the prompt for the retrieval outcome.
func (s *ConversationService) systemPrompt(evidence *domain.EvidenceSet) string {
	switch {
	case evidence == nil || evidence.Mode == domain.ModeChat:
		return s.prompt(driven.PromptChatSystem)
	case evidence.LowRelevance:
		return s.prompt(driven.PromptChatSystem) + "\n\n" + s.prompt(driven.PromptLowRelevance)
	default:
		return fmt.Sprintf(s.prompt(driven.PromptDocumentSystem), FormatEvidence(evidence.Citations))
	}
}

func (s *ConversationService) prompt(name string) string {
	if s.prompts != nil {
		p, err := s.prompts.Load(name)
		if err == nil {
			return p
		}
		logger.Warn("Load prompt %s: %v", name, err)
	}
	return fallbackPrompts[name]
}
