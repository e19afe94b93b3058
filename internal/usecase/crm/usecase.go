package crm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/futig/crm-assistant/internal/entity"
	"github.com/futig/crm-assistant/internal/repository"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

var categoryDescriptions = map[entity.ConversationCategory]string{
	entity.CategoryGeneral:    "General conversation",
	entity.CategorySupport:    "Technical support or troubleshooting",
	entity.CategorySales:      "Sales, pricing or purchase related",
	entity.CategoryInquiring:  "Questions about products or services",
	entity.CategoryResolved:   "Issue has been resolved",
	entity.CategoryUnresolved: "Issue is still open",
}

// CRMUsecase manages customer profiles and gives read and admin access to their conversations
type CRMUsecase struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	messageRepo repository.MessageRepository
	fileRepo    repository.FileRepository
	formatters  FormatterFactory
}

func NewUsecase(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	messageRepo repository.MessageRepository,
	fileRepo repository.FileRepository,
	formatters FormatterFactory,
) *CRMUsecase {
	return &CRMUsecase{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		messageRepo: messageRepo,
		fileRepo:    fileRepo,
		formatters:  formatters,
	}
}

func (uc *CRMUsecase) CreateUser(ctx context.Context, req *entity.UserCreateRequest) (*entity.User, error) {
	preferences := req.Preferences
	if preferences == nil {
		preferences = map[string]any{}
	}

	user, err := uc.userRepo.CreateUser(ctx, &entity.User{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Email:       req.Email,
		Company:     req.Company,
		Phone:       req.Phone,
		Preferences: preferences,
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	ctxzap.Info(ctx, "user created", zap.String("user_id", user.ID))
	return user, nil
}

// UpdateUser applies a partial update; repeating the same update only moves updated_at
func (uc *CRMUsecase) UpdateUser(ctx context.Context, id string, req *entity.UserUpdateRequest) (*entity.User, error) {
	if req.IsEmpty() {
		return nil, fmt.Errorf("%w: at least one field must be provided", entity.ErrMissingField)
	}

	user, err := uc.userRepo.UpdateUser(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	ctxzap.Info(ctx, "user updated", zap.String("user_id", id))
	return user, nil
}

func (uc *CRMUsecase) GetUser(ctx context.Context, id string) (*entity.User, error) {
	return uc.userRepo.GetUserByID(ctx, id)
}

func (uc *CRMUsecase) ListConversations(ctx context.Context, req *entity.ListConversationsRequest) (
	[]*entity.SessionWithCount, error,
) {
	req.Normalize()

	sessions, err := uc.sessionRepo.ListSessionsByUser(ctx, req.UserID, req.Limit)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	return sessions, nil
}

func (uc *CRMUsecase) GetSessionMessages(ctx context.Context, sessionID string) ([]*entity.Message, error) {
	if _, err := uc.sessionRepo.GetSessionByID(ctx, sessionID); err != nil {
		return nil, err
	}

	messages, err := uc.messageRepo.ListMessagesBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return messages, nil
}

func (uc *CRMUsecase) UpdateCategory(ctx context.Context, sessionID, rawCategory string) (*entity.Session, error) {
	category, err := entity.ParseCategory(strings.ToLower(strings.TrimSpace(rawCategory)))
	if err != nil {
		return nil, err
	}

	session, err := uc.sessionRepo.UpdateSessionCategory(ctx, sessionID, category)
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}

	ctxzap.Info(ctx, "conversation category updated",
		zap.String("session_id", sessionID),
		zap.String("category", string(category)),
	)
	return session, nil
}

// CloseSession deactivates a session; its messages stay readable
func (uc *CRMUsecase) CloseSession(ctx context.Context, sessionID string) error {
	if err := uc.sessionRepo.DeactivateSession(ctx, sessionID); err != nil {
		return fmt.Errorf("close session: %w", err)
	}

	ctxzap.Info(ctx, "conversation closed", zap.String("session_id", sessionID))
	return nil
}

func (uc *CRMUsecase) Categories() []entity.CategoryInfo {
	infos := make([]entity.CategoryInfo, 0, len(entity.Categories))
	for _, c := range entity.Categories {
		infos = append(infos, entity.CategoryInfo{Value: c, Description: categoryDescriptions[c]})
	}
	return infos
}

func (uc *CRMUsecase) DocumentSummary(ctx context.Context, userID string) (*entity.DocumentSummary, error) {
	files, err := uc.fileRepo.ListActiveFilesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}

	summary := &entity.DocumentSummary{
		TotalFiles: len(files),
		FileTypes:  make(map[entity.FileType]int),
		Files:      make([]*entity.FileDetail, 0, len(files)),
	}
	for _, f := range files {
		summary.TotalSize += f.Size
		summary.FileTypes[f.FileType]++
		summary.Files = append(summary.Files, toFileDetail(f))
	}

	return summary, nil
}

// ExportConversation renders a session transcript in the requested format
func (uc *CRMUsecase) ExportConversation(ctx context.Context, sessionID string, format entity.ExportFormat) (
	*entity.ExportedFile, error,
) {
	f, err := uc.formatters.Create(format)
	if err != nil {
		return nil, err
	}

	session, err := uc.sessionRepo.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	messages, err := uc.messageRepo.ListMessagesBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	transcript := &entity.Transcript{
		SessionID: session.ID,
		Category:  session.Category,
		CreatedAt: session.CreatedAt,
		Messages:  messages,
	}
	if session.Title != nil {
		transcript.Title = *session.Title
	}

	user, err := uc.userRepo.GetUserByID(ctx, session.UserID)
	switch {
	case err == nil:
		transcript.UserName = user.Name
		transcript.UserEmail = user.Email
	case errors.Is(err, entity.ErrUserNotFound):
		// anonymous conversations are exported without customer details
	default:
		return nil, fmt.Errorf("get user: %w", err)
	}

	content, err := f.Format(transcript)
	if err != nil {
		return nil, fmt.Errorf("format transcript: %w", err)
	}

	ctxzap.Info(ctx, "conversation exported",
		zap.String("session_id", sessionID),
		zap.String("format", string(format)),
		zap.Int("size", len(content)),
	)

	return &entity.ExportedFile{
		Filename:    "conversation_" + session.ID + f.FileExtension(),
		ContentType: f.ContentType(),
		Content:     content,
	}, nil
}

func toFileDetail(f *entity.FileRecord) *entity.FileDetail {
	return &entity.FileDetail{
		ID:         f.ID,
		Filename:   f.Filename,
		FileType:   f.FileType,
		Size:       f.Size,
		UploadedAt: f.UploadedAt,
	}
}
