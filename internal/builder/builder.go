package builder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/futig/crm-assistant/internal/api"
	chatapi "github.com/futig/crm-assistant/internal/api/chat"
	crmapi "github.com/futig/crm-assistant/internal/api/crm"
	documentapi "github.com/futig/crm-assistant/internal/api/document"
	"github.com/futig/crm-assistant/internal/config"
	"github.com/futig/crm-assistant/internal/integration/common"
	"github.com/futig/crm-assistant/internal/integration/llm"
	"github.com/futig/crm-assistant/internal/integration/vectorindex"
	"github.com/futig/crm-assistant/internal/pkg/chunker"
	"github.com/futig/crm-assistant/internal/pkg/formatter"
	"github.com/futig/crm-assistant/internal/pkg/validator"
	"github.com/futig/crm-assistant/internal/usecase/chat"
	"github.com/futig/crm-assistant/internal/usecase/crm"
	"github.com/futig/crm-assistant/internal/usecase/document"
	"github.com/philippgille/chromem-go"
	"go.uber.org/zap"
)

func Build() (*App, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
		zap.String("storage_driver", cfg.StorageDriver),
	)

	shutdownTracer, err := setupTracer(ctx, cfg.OTelCfg, cfg.Environment, logger)
	if err != nil {
		return nil, fmt.Errorf("setup tracer: %w", err)
	}

	store, err := setupStorage(ctx, cfg, logger)
	if err != nil {
		_ = shutdownTracer(ctx)
		return nil, err
	}
	logger.Info("Repositories initialized")

	// Initialize external service connectors (with mock support)
	var llmConnector chat.LLMConnector
	var embed chromem.EmbeddingFunc

	if cfg.EnableMocks {
		logger.Info("Using mock connectors for external services")
		llmConnector = llm.NewMockConnector(logger)
		embed = vectorindex.NewHashingEmbeddingFunc(vectorindex.DefaultHashDimensions)
	} else {
		logger.Info("Using real connectors for external services", zap.String("model", cfg.LLMCfg.Model))
		conn, err := llm.NewConnector(ctx, cfg.LLMCfg)
		if err != nil {
			store.close()
			_ = shutdownTracer(ctx)
			return nil, fmt.Errorf("create LLM connector: %w", err)
		}
		llmConnector = conn

		embedCfg := cfg.EmbeddingCfg
		if embedCfg.APIKey == "" {
			embedCfg.APIKey = cfg.LLMCfg.APIKey
		}
		embed, err = vectorindex.NewOpenAIEmbeddingFunc(ctx, embedCfg, common.NewAPIClient("embedding", embedCfg.HTTPClientConfig))
		if err != nil {
			store.close()
			_ = shutdownTracer(ctx)
			return nil, fmt.Errorf("create embedder: %w", err)
		}
	}

	index := vectorindex.New(vectorindex.Config{
		StoreDir:      cfg.VectorCfg.StoreDir,
		MinSimilarity: cfg.VectorCfg.MinSimilarity,
		Compress:      cfg.VectorCfg.Compress,
		CacheTTL:      cfg.VectorCfg.IndexCacheTTL,
	}, embed)

	requestValidator := validator.New(cfg.FileUploadCfg)
	logger.Info("Validators initialized")

	// Initialize use cases
	chatUC := chat.NewUsecase(
		store.users,
		store.sessions,
		store.messages,
		store.files,
		llmConnector,
		index,
		requestValidator,
		chat.Config{
			HistoryLimit:  cfg.ChatCfg.HistoryLimit,
			TopK:          cfg.ChatCfg.TopK,
			ChunksPerFile: cfg.ChatCfg.ChunksPerFile,
			Temperature:   cfg.LLMCfg.Temperature,
		},
	)

	crmUC := crm.NewUsecase(
		store.users,
		store.sessions,
		store.messages,
		store.files,
		formatter.NewFactory(),
	)

	documentUC := document.NewUsecase(
		store.users,
		store.files,
		index,
		chunker.New(cfg.VectorCfg.ChunkSize, cfg.VectorCfg.ChunkOverlap),
	)
	logger.Info("Use cases initialized")

	// Setup API handlers
	handlers := api.Handlers{
		Chat:     chatapi.NewHandler(chatUC, requestValidator),
		CRM:      crmapi.NewHandler(crmUC, requestValidator),
		Document: documentapi.NewHandler(documentUC, cfg.FileUploadCfg, requestValidator),
	}
	logger.Info("API handlers initialized")

	router := api.SetupRouter(handlers, logger, cfg.RequestTimeout)
	logger.Info("HTTP router configured")

	// Write timeout leaves room for the router timeout to answer first
	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &App{
		server:         server,
		db:             store.db,
		logger:         logger,
		shutdownTracer: shutdownTracer,
	}, nil
}
