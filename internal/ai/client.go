package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"
	"gorm.io/gorm"

	"github.com/taskhive-dev/taskhive/internal/apperrors"
	"github.com/taskhive-dev/taskhive/internal/config"
	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/types"
)

// chatModel is the slice of the eino model interface this service uses.
// Tests substitute a stub; production wires the Gemini chat model.
type chatModel interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// Service wraps the generative model behind prompt builders, response
// parsing, retries and a concurrency cap. The model itself is dialed lazily
// on first use so the server starts fine without provider connectivity.
type Service struct {
	cfg *config.Config

	initOnce sync.Once
	initErr  error
	model    chatModel

	sem chan struct{}
}

func NewService(cfg *config.Config) *Service {
	maxConcurrent := cfg.AIMaxConcurrent

	if maxConcurrent < 1 {
		maxConcurrent = 1
	}

	return &Service{
		cfg: cfg,
		sem: make(chan struct{}, maxConcurrent),
	}
}

func (s *Service) Enabled() bool {
	return s.cfg.AIEnabled()
}

func (s *Service) ensureModel(ctx context.Context) error {
	s.initOnce.Do(func() {
		if s.model != nil {
			return
		}

		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  s.cfg.AIAPIKey,
			Backend: genai.BackendGeminiAPI,
		})

		if err != nil {
			s.initErr = err
			return
		}

		chat, err := gemini.NewChatModel(ctx, &gemini.Config{
			Client: client,
			Model:  s.cfg.AIModel,
		})

		if err != nil {
			s.initErr = err
			return
		}

		s.model = chat
	})

	return s.initErr
}

// generate runs one model call end to end: semaphore, timeout, retries and
// the interaction audit row. Every call is recorded, failures included.
func (s *Service) generate(ctx context.Context, database *gorm.DB, userID uint, todoID *uint, kind string, messages []*schema.Message) (string, error) {
	if !s.Enabled() {
		return "", apperrors.AIUnconfigured()
	}

	if err := s.ensureModel(ctx); err != nil {
		return "", apperrors.AIUnavailable(err)
	}

	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return "", ClassifyError(ctx.Err())
	}
	defer func() { <-s.sem }()

	start := time.Now()
	content, err := s.generateWithRetry(ctx, messages)

	record := models.AIInteraction{
		UserID:     userID,
		TodoID:     todoID,
		Kind:       kind,
		Prompt:     lastUserContent(messages),
		Response:   content,
		ModelName:  s.cfg.AIModel,
		DurationMs: time.Since(start).Milliseconds(),
	}

	if err != nil {
		record.Response = err.Error()
	}

	if dbErr := database.Create(&record).Error; dbErr != nil {
		log.Printf("Failed to record AI interaction for user %d: %v", userID, dbErr)
	}

	return content, err
}

func (s *Service) generateWithRetry(ctx context.Context, messages []*schema.Message) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(s.cfg.AITimeoutSecs)*time.Second)
	defer cancel()

	attempts := s.cfg.AIMaxRetries

	if attempts < 1 {
		attempts = 1
	}

	baseDelay := time.Duration(s.cfg.AIRetryBaseMS) * time.Millisecond

	var lastErr *apperrors.AppError

	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			delay := time.Duration(math.Pow(2, float64(attempt))) * baseDelay

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", ClassifyError(ctx.Err())
			}
		}

		resp, err := s.model.Generate(ctx, messages)

		if err == nil {
			return resp.Content, nil
		}

		lastErr = ClassifyError(err)

		// Only quota and rate-limit failures are worth another attempt.
		if !apperrors.Retryable(lastErr) {
			return "", lastErr
		}
	}

	return "", lastErr
}

func lastUserContent(messages []*schema.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == schema.User {
			return messages[i].Content
		}
	}

	return ""
}

type SubtaskSuggestion struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    int    `json:"priority"`
}

type subtasksResponse struct {
	Subtasks []SubtaskSuggestion `json:"subtasks"`
}

// GenerateSubtasks asks the model to break a todo into at most count
// subtasks. Suggestions are sanitized but not persisted here.
func (s *Service) GenerateSubtasks(ctx context.Context, database *gorm.DB, todo *models.Todo, count int) ([]SubtaskSuggestion, error) {
	todoID := todo.ID

	messages := []*schema.Message{
		schema.SystemMessage(subtaskSystemPrompt),
		schema.UserMessage(subtaskPrompt(todo, count)),
	}

	raw, err := s.generate(ctx, database, todo.UserID, &todoID, types.AIKindSubtasks, messages)

	if err != nil {
		return nil, err
	}

	obj, err := ExtractJSONObject(raw)

	if err != nil {
		return nil, apperrors.AIResponseParse(err)
	}

	var parsed subtasksResponse

	if err := json.Unmarshal([]byte(obj), &parsed); err != nil {
		return nil, apperrors.AIResponseParse(err)
	}

	suggestions := sanitizeSuggestions(parsed.Subtasks)

	if len(suggestions) == 0 {
		return nil, apperrors.AIResponseParse(fmt.Errorf("no usable subtasks in response"))
	}

	if len(suggestions) > count {
		suggestions = suggestions[:count]
	}

	return suggestions, nil
}

type Analysis struct {
	Summary        string              `json:"summary"`
	SuggestedTasks []SubtaskSuggestion `json:"suggested_tasks"`
}

// Analyze extracts suggested tasks from freeform document content. Nothing
// is persisted; the caller decides what to do with the suggestions.
func (s *Service) Analyze(ctx context.Context, database *gorm.DB, userID uint, filename, content string) (*Analysis, error) {
	messages := []*schema.Message{
		schema.SystemMessage(analyzeSystemPrompt),
		schema.UserMessage(analyzePrompt(filename, content)),
	}

	raw, err := s.generate(ctx, database, userID, nil, types.AIKindAnalysis, messages)

	if err != nil {
		return nil, err
	}

	obj, err := ExtractJSONObject(raw)

	if err != nil {
		return nil, apperrors.AIResponseParse(err)
	}

	var parsed Analysis

	if err := json.Unmarshal([]byte(obj), &parsed); err != nil {
		return nil, apperrors.AIResponseParse(err)
	}

	parsed.SuggestedTasks = sanitizeSuggestions(parsed.SuggestedTasks)

	return &parsed, nil
}

type ChatAction struct {
	Type                 string              `json:"type"`
	Name                 string              `json:"name,omitempty"`
	Title                string              `json:"title,omitempty"`
	Description          string              `json:"description,omitempty"`
	Color                string              `json:"color,omitempty"`
	Priority             int                 `json:"priority,omitempty"`
	DueDate              string              `json:"due_date,omitempty"`
	ProjectID            uint                `json:"project_id,omitempty"`
	TodoID               uint                `json:"todo_id,omitempty"`
	Subtasks             []SubtaskSuggestion `json:"subtasks,omitempty"`
	ConfirmationRequired bool                `json:"confirmation_required,omitempty"`

	// Execution outcome, filled in after the action runs.
	Status    string `json:"status,omitempty"`
	Error     string `json:"error,omitempty"`
	CreatedID uint   `json:"created_id,omitempty"`
}

type ChatReply struct {
	Reply   string       `json:"reply"`
	Actions []ChatAction `json:"actions"`
}

// Chat runs one assistant turn over the conversation history. A reply that
// is not valid JSON is kept verbatim as plain text with no actions; only
// structured replies can carry actions.
func (s *Service) Chat(ctx context.Context, database *gorm.DB, userID uint, projects []models.Project, todos []models.Todo, history []*schema.Message) (*ChatReply, error) {
	messages := make([]*schema.Message, 0, len(history)+2)
	messages = append(messages, schema.SystemMessage(chatSystemPrompt))
	messages = append(messages, schema.SystemMessage(chatContextPrompt(projects, todos)))
	messages = append(messages, history...)

	raw, err := s.generate(ctx, database, userID, nil, types.AIKindChat, messages)

	if err != nil {
		return nil, err
	}

	obj, err := ExtractJSONObject(raw)

	if err != nil {
		return &ChatReply{Reply: strings.TrimSpace(raw)}, nil
	}

	var parsed ChatReply

	if err := json.Unmarshal([]byte(obj), &parsed); err != nil {
		return &ChatReply{Reply: strings.TrimSpace(raw)}, nil
	}

	if parsed.Reply == "" {
		parsed.Reply = "Done."
	}

	return &parsed, nil
}

func sanitizeSuggestions(in []SubtaskSuggestion) []SubtaskSuggestion {
	out := make([]SubtaskSuggestion, 0, len(in))

	for _, suggestion := range in {
		suggestion.Title = strings.TrimSpace(suggestion.Title)

		if suggestion.Title == "" {
			continue
		}

		if suggestion.Priority < types.PriorityMin || suggestion.Priority > types.PriorityMax {
			suggestion.Priority = types.PriorityDefault
		}

		out = append(out, suggestion)
	}

	return out
}
