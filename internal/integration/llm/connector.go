package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openaimodel "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/futig/crm-assistant/internal/config"
	"github.com/futig/crm-assistant/internal/entity"
	"github.com/futig/crm-assistant/internal/integration/common"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Connector talks to an OpenAI-compatible chat completion API through eino
type Connector struct {
	chat      model.BaseChatModel
	modelName string
}

func NewConnector(ctx context.Context, cfg config.LLMConfig) (*Connector, error) {
	chat, err := openaimodel.NewChatModel(ctx, &openaimodel.ChatModelConfig{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Model:      cfg.Model,
		HTTPClient: common.NewAPIClient("llm", cfg.HTTPClientConfig),
	})
	if err != nil {
		return nil, fmt.Errorf("create chat model: %w", err)
	}

	return newConnector(chat, cfg.Model), nil
}

func newConnector(chat model.BaseChatModel, modelName string) *Connector {
	return &Connector{chat: chat, modelName: modelName}
}

func (c *Connector) ModelName() string {
	return c.modelName
}

// Complete sends the message list as is and returns the reply with token usage when reported
func (c *Connector) Complete(ctx context.Context, req *entity.LLMCompletionRequest) (*entity.LLMCompletion, error) {
	messages := make([]*schema.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, &schema.Message{Role: toSchemaRole(m.Role), Content: m.Content})
	}

	resp, err := c.chat.Generate(ctx, messages, model.WithTemperature(req.Temperature))
	if err != nil {
		return nil, fmt.Errorf("generate completion: %w", err)
	}

	completion := &entity.LLMCompletion{
		Content: strings.TrimSpace(resp.Content),
		Model:   c.modelName,
	}
	if resp.ResponseMeta != nil && resp.ResponseMeta.Usage != nil {
		tokens := resp.ResponseMeta.Usage.TotalTokens
		completion.TokensUsed = &tokens
	}

	ctxzap.Debug(ctx, "completion received",
		zap.Int("messages", len(messages)),
		zap.Int("reply_length", len(completion.Content)),
	)

	return completion, nil
}

// ExtractUserInfo asks the model for contact details found in text
func (c *Connector) ExtractUserInfo(ctx context.Context, text string) (*entity.ExtractedUserInfo, error) {
	resp, err := c.chat.Generate(ctx, []*schema.Message{
		schema.SystemMessage(extractUserInfoPrompt),
		schema.UserMessage(text),
	}, model.WithTemperature(0))
	if err != nil {
		return nil, fmt.Errorf("extract user info: %w", err)
	}

	var info entity.ExtractedUserInfo
	if err := json.Unmarshal([]byte(cleanJSONReply(resp.Content)), &info); err != nil {
		return nil, fmt.Errorf("%w: extraction reply is not JSON: %v", entity.ErrInvalidFormat, err)
	}

	info.Name = strings.TrimSpace(info.Name)
	info.Email = strings.TrimSpace(info.Email)
	info.Company = strings.TrimSpace(info.Company)
	info.Phone = strings.TrimSpace(info.Phone)

	return &info, nil
}

// Categorize classifies the conversation; an unknown label is an ErrInvalidCategory error
func (c *Connector) Categorize(ctx context.Context, text string) (entity.ConversationCategory, error) {
	resp, err := c.chat.Generate(ctx, []*schema.Message{
		schema.SystemMessage(categorizePrompt()),
		schema.UserMessage(text),
	}, model.WithTemperature(0))
	if err != nil {
		return "", fmt.Errorf("categorize conversation: %w", err)
	}

	return parseCategory(resp.Content)
}

func toSchemaRole(role string) schema.RoleType {
	switch role {
	case entity.LLMRoleSystem:
		return schema.System
	case entity.LLMRoleAssistant:
		return schema.Assistant
	default:
		return schema.User
	}
}
