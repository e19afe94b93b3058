package llm

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/futig/crm-assistant/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const mockModelName = "mock-llm"

var (
	mockEmailPattern   = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	mockNamePattern    = regexp.MustCompile(`\b(?i:my name is|i am|i'm)\s+([A-Z][a-zA-Z'\-]*(?:\s+[A-Z][a-zA-Z'\-]*)?)`)
	mockCompanyPattern = regexp.MustCompile(`\b(?i:from|at|work for)\s+([A-Z][A-Za-z0-9&\-]*(?:\s+[A-Z][A-Za-z0-9&\-]*)*)`)
	mockPhonePattern   = regexp.MustCompile(`\+?\d[\d\s\-()]{6,}\d`)
)

var mockCategoryKeywords = []struct {
	category entity.ConversationCategory
	keywords []string
}{
	{entity.CategoryResolved, []string{"resolved", "fixed", "works now", "thank you"}},
	{entity.CategoryUnresolved, []string{"still broken", "still not", "unresolved", "doesn't work"}},
	{entity.CategorySupport, []string{"problem", "issue", "error", "broken", "help", "bug"}},
	{entity.CategorySales, []string{"buy", "price", "pricing", "cost", "purchase", "discount", "quote"}},
	{entity.CategoryInquiring, []string{"?", "what", "how", "when", "where", "info"}},
}

// MockConnector is a deterministic stand-in for the LLM used with ENABLE_MOCKS and in tests
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

func (m *MockConnector) ModelName() string {
	return mockModelName
}

// Complete echoes the last user message together with any document block found in the system prompt
func (m *MockConnector) Complete(ctx context.Context, req *entity.LLMCompletionRequest) (*entity.LLMCompletion, error) {
	ctxzap.Info(ctx, "[MOCK] generating completion", zap.Int("messages", len(req.Messages)))

	var question string
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == entity.LLMRoleUser {
			question = req.Messages[i].Content
			break
		}
	}

	reply := fmt.Sprintf("You said: %q.", question)
	if len(req.Messages) > 0 && req.Messages[0].Role == entity.LLMRoleSystem {
		if docs := documentsSection(req.Messages[0].Content); docs != "" {
			reply += " From your documents: " + docs
		}
	}

	tokens := 0
	for _, msg := range req.Messages {
		tokens += len(strings.Fields(msg.Content))
	}
	tokens += len(strings.Fields(reply))

	return &entity.LLMCompletion{
		Content:    reply,
		Model:      mockModelName,
		TokensUsed: &tokens,
	}, nil
}

func (m *MockConnector) ExtractUserInfo(ctx context.Context, text string) (*entity.ExtractedUserInfo, error) {
	ctxzap.Info(ctx, "[MOCK] extracting user info")

	info := &entity.ExtractedUserInfo{
		Email: mockEmailPattern.FindString(text),
		Phone: strings.TrimSpace(mockPhonePattern.FindString(text)),
	}
	if match := mockNamePattern.FindStringSubmatch(text); match != nil {
		info.Name = match[1]
	}
	if match := mockCompanyPattern.FindStringSubmatch(text); match != nil {
		info.Company = match[1]
	}

	return info, nil
}

func (m *MockConnector) Categorize(ctx context.Context, text string) (entity.ConversationCategory, error) {
	ctxzap.Info(ctx, "[MOCK] categorizing conversation")

	lower := strings.ToLower(text)
	for _, rule := range mockCategoryKeywords {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.category, nil
			}
		}
	}

	return entity.CategoryGeneral, nil
}

// documentsSection returns the text between the documents header and the next blank-line section
func documentsSection(system string) string {
	_, after, found := strings.Cut(system, entity.PromptDocumentsHeader)
	if !found {
		return ""
	}
	section, _, _ := strings.Cut(after, "\n\n")
	return strings.TrimSpace(section)
}
