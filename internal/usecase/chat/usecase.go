package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/futig/crm-assistant/internal/entity"
	"github.com/futig/crm-assistant/internal/pkg/logger"
	"github.com/futig/crm-assistant/internal/repository"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const errorReply = "I apologize, but I encountered an error while processing your request. Please try again in a moment."

var tracer = otel.Tracer("github.com/futig/crm-assistant/internal/usecase/chat")

var errIncompleteUserInfo = errors.New("message does not contain both a name and a valid email")

type Config struct {
	HistoryLimit  int
	TopK          int
	ChunksPerFile int
	Temperature   float32
}

// ChatUsecase runs chat turns and manages conversation sessions
type ChatUsecase struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	messageRepo repository.MessageRepository
	fileRepo    repository.FileRepository
	llm         LLMConnector
	index       VectorSearcher
	emails      EmailValidator
	cfg         Config
	now         func() time.Time
}

func NewUsecase(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	messageRepo repository.MessageRepository,
	fileRepo repository.FileRepository,
	llm LLMConnector,
	index VectorSearcher,
	emails EmailValidator,
	cfg Config,
) *ChatUsecase {
	return &ChatUsecase{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		messageRepo: messageRepo,
		fileRepo:    fileRepo,
		llm:         llm,
		index:       index,
		emails:      emails,
		cfg:         cfg,
		now:         time.Now,
	}
}

// Chat runs one conversational turn. Profile, session category, history and retrieval
// are best effort; an LLM failure becomes an error-flagged reply that is still stored.
// Errors are returned only for an unusable supplied session or failed persistence.
func (uc *ChatUsecase) Chat(ctx context.Context, req *entity.ChatRequest) (*entity.ChatResponse, error) {
	ctx, span := tracer.Start(ctx, "chat.turn", trace.WithAttributes(
		attribute.String("user.id", req.UserID),
		attribute.Bool("chat.use_rag", req.RAGEnabled()),
	))
	defer span.End()

	ctx = logger.WithAction(logger.AddFields(ctx, zap.String("user_id", req.UserID)), "chat_turn")
	started := uc.now()

	user := uc.resolveUser(ctx, req)
	logDegraded(ctx, "user context", user)

	sessionID, history, err := uc.resolveSession(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "session resolution failed")
		return nil, err
	}

	var documents *DocumentContext
	if req.RAGEnabled() {
		retrieved := uc.retrieve(ctx, req)
		logDegraded(ctx, "retrieval", retrieved)
		documents = retrieved.Value
	}

	prompt := BuildPrompt(PromptInput{
		User:      user.Value,
		Documents: documents,
		History:   history,
		Message:   req.Message,
	})

	completion, failed := uc.complete(ctx, prompt)
	processingTime := uc.now().Sub(started).Seconds()

	if sessionID != "" {
		if err := uc.persistExchange(ctx, sessionID, req, started, completion, processingTime, failed); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "persist exchange failed")
			return nil, err
		}
	}

	resp := &entity.ChatResponse{
		Response:                completion.Content,
		ModelUsed:               completion.Model,
		ProcessingTime:          processingTime,
		RAGUsed:                 documents != nil && documents.Found,
		UserContextUsed:         user.Value != nil,
		ConversationHistoryUsed: len(history) > 0,
		TokensUsed:              completion.TokensUsed,
		Error:                   failed,
	}
	if sessionID != "" {
		resp.SessionID = &sessionID
	}

	span.SetAttributes(
		attribute.Bool("chat.rag_used", resp.RAGUsed),
		attribute.Bool("chat.user_context_used", resp.UserContextUsed),
		attribute.Int("chat.history_messages", len(history)),
		attribute.Bool("chat.error", failed),
	)

	ctxzap.Info(ctx, "chat turn completed",
		zap.String("session_id", sessionID),
		zap.Bool("rag_used", resp.RAGUsed),
		zap.Bool("user_context_used", resp.UserContextUsed),
		zap.Bool("history_used", resp.ConversationHistoryUsed),
		zap.Bool("error", failed),
		zap.Float64("processing_time", processingTime),
	)

	return resp, nil
}

// resolveUser finds the user or, on first contact, tries to register them from the message
func (uc *ChatUsecase) resolveUser(ctx context.Context, req *entity.ChatRequest) Outcome[*entity.User] {
	user, err := uc.userRepo.GetUserByID(ctx, req.UserID)
	if err == nil {
		return Succeeded(user)
	}
	if !errors.Is(err, entity.ErrUserNotFound) {
		return Degraded[*entity.User](nil, fmt.Errorf("get user: %w", err))
	}

	info, err := uc.llm.ExtractUserInfo(ctx, req.Message)
	if err != nil {
		return Degraded[*entity.User](nil, err)
	}
	if !info.Complete() || !uc.emails.ValidEmail(info.Email) {
		return Degraded[*entity.User](nil, errIncompleteUserInfo)
	}

	newUser := &entity.User{
		ID:          req.UserID,
		Name:        info.Name,
		Email:       info.Email,
		Company:     optional(info.Company),
		Phone:       optional(info.Phone),
		Preferences: map[string]any{},
	}

	created, err := uc.userRepo.CreateUser(ctx, newUser)
	if err != nil {
		return Degraded[*entity.User](nil, fmt.Errorf("create user from message: %w", err))
	}

	ctxzap.Info(ctx, "user registered from chat message", zap.String("email", created.Email))
	return Succeeded(created)
}

// resolveSession returns the session id the exchange is stored under and the kept history.
// A supplied session must exist and belong to the user. A new session that cannot be
// created leaves the turn without a session.
func (uc *ChatUsecase) resolveSession(ctx context.Context, req *entity.ChatRequest) (string, []*entity.Message, error) {
	if req.SessionID == nil {
		created := uc.startSession(ctx, req)
		logDegraded(ctx, "session", created)
		if created.Value == nil {
			return "", nil, nil
		}
		return created.Value.ID, nil, nil
	}

	session, err := uc.sessionRepo.GetSessionByID(ctx, *req.SessionID)
	if err != nil {
		return "", nil, fmt.Errorf("get session: %w", err)
	}
	if session.UserID != req.UserID {
		return "", nil, fmt.Errorf("%w: session %s", entity.ErrForbidden, session.ID)
	}

	history := uc.loadHistory(ctx, session.ID)
	logDegraded(ctx, "history", history)

	return session.ID, history.Value, nil
}

func (uc *ChatUsecase) startSession(ctx context.Context, req *entity.ChatRequest) Outcome[*entity.Session] {
	category, err := uc.llm.Categorize(ctx, req.Message)
	categorized := err == nil
	if !categorized {
		category = entity.CategoryGeneral
	}

	session, createErr := uc.sessionRepo.CreateSession(ctx, &entity.Session{
		ID:       uuid.New().String(),
		UserID:   req.UserID,
		Category: category,
		Title:    sessionTitle(req.Message),
	})
	if createErr != nil {
		return Degraded[*entity.Session](nil, fmt.Errorf("create session: %w", createErr))
	}

	ctx = logger.AddFields(ctx, zap.String("session_id", session.ID))
	ctxzap.Info(ctx, "session started", zap.String("category", string(category)))

	if !categorized {
		return Degraded(session, fmt.Errorf("categorize: %w", err))
	}
	return Succeeded(session)
}

// loadHistory keeps the most recent HistoryLimit messages, oldest first
func (uc *ChatUsecase) loadHistory(ctx context.Context, sessionID string) Outcome[[]*entity.Message] {
	messages, err := uc.messageRepo.ListMessagesBySession(ctx, sessionID)
	if err != nil {
		return Degraded[[]*entity.Message](nil, fmt.Errorf("list messages: %w", err))
	}

	if len(messages) > uc.cfg.HistoryLimit {
		messages = messages[len(messages)-uc.cfg.HistoryLimit:]
	}
	return Succeeded(messages)
}

func (uc *ChatUsecase) complete(ctx context.Context, prompt []entity.LLMMessage) (*entity.LLMCompletion, bool) {
	ctx, span := tracer.Start(ctx, "chat.completion", trace.WithAttributes(
		attribute.Int("llm.prompt_messages", len(prompt)),
	))
	defer span.End()

	completion, err := uc.llm.Complete(ctx, &entity.LLMCompletionRequest{
		Messages:    prompt,
		Temperature: uc.cfg.Temperature,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "completion failed")
		ctxzap.Error(ctx, "LLM completion failed", zap.Error(err))
		return &entity.LLMCompletion{Content: errorReply, Model: uc.llm.ModelName()}, true
	}

	if completion.Model == "" {
		completion.Model = uc.llm.ModelName()
	}
	if completion.TokensUsed != nil {
		span.SetAttributes(attribute.Int("llm.tokens_used", *completion.TokensUsed))
	}
	return completion, false
}

func (uc *ChatUsecase) persistExchange(
	ctx context.Context,
	sessionID string,
	req *entity.ChatRequest,
	started time.Time,
	completion *entity.LLMCompletion,
	processingTime float64,
	failed bool,
) error {
	repliedAt := uc.now()
	if !repliedAt.After(started) {
		repliedAt = started.Add(time.Microsecond)
	}

	userMsg := &entity.Message{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		UserID:    req.UserID,
		Role:      entity.RoleUser,
		Content:   req.Message,
		Timestamp: started,
	}
	assistantMsg := &entity.Message{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		UserID:    req.UserID,
		Role:      entity.RoleAssistant,
		Content:   completion.Content,
		Timestamp: repliedAt,
		Metadata: entity.MessageMetadata{
			ProcessingTime: &processingTime,
			TokensUsed:     completion.TokensUsed,
			Model:          completion.Model,
			Error:          failed,
		},
	}

	if err := uc.messageRepo.AppendMessages(ctx, sessionID, userMsg, assistantMsg); err != nil {
		return fmt.Errorf("save messages: %w", err)
	}
	return nil
}

func logDegraded[T any](ctx context.Context, step string, o Outcome[T]) {
	if o.Degraded {
		ctxzap.Warn(ctx, "chat step degraded", zap.String("step", step), zap.Error(o.Reason))
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// sessionTitle uses the opening message, cut to a readable length
func sessionTitle(message string) *string {
	title := strings.Join(strings.Fields(message), " ")
	if title == "" {
		return nil
	}
	if runes := []rune(title); len(runes) > 60 {
		title = strings.TrimSpace(string(runes[:60])) + "..."
	}
	return &title
}
