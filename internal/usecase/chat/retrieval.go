package chat

import (
	"context"
	"fmt"

	"github.com/futig/crm-assistant/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var noDocuments = &DocumentContext{Text: entity.NoDocumentsMarker}

// retrieve builds the document block for the prompt. A caller-supplied context wins;
// otherwise only the requesting user's active files are searched. The fallback is
// always the explicit no-documents marker.
func (uc *ChatUsecase) retrieve(ctx context.Context, req *entity.ChatRequest) Outcome[*DocumentContext] {
	if req.RAGContext != nil && *req.RAGContext != "" {
		return Succeeded(&DocumentContext{Text: *req.RAGContext, Found: true})
	}

	ctx, span := tracer.Start(ctx, "chat.retrieval")
	defer span.End()

	files, err := uc.fileRepo.ListActiveFilesByUser(ctx, req.UserID)
	if err != nil {
		span.RecordError(err)
		return Degraded(noDocuments, fmt.Errorf("list files: %w", err))
	}

	limit := uc.cfg.TopK * 2
	var chunks []entity.RetrievedChunk

	for _, file := range files {
		if len(chunks) >= limit {
			break
		}

		found, err := uc.index.Search(ctx, file.VectorStorePath, req.Message, uc.cfg.ChunksPerFile)
		if err != nil {
			ctxzap.Warn(ctx, "vector search failed, skipping file",
				zap.String("file_id", file.ID),
				zap.String("path", file.VectorStorePath),
				zap.Error(err),
			)
			continue
		}

		for _, chunk := range found {
			chunk.Source = file.Filename
			chunks = append(chunks, chunk)
		}
	}

	if len(chunks) > limit {
		chunks = chunks[:limit]
	}

	span.SetAttributes(
		attribute.Int("retrieval.files", len(files)),
		attribute.Int("retrieval.chunks", len(chunks)),
	)

	if len(chunks) == 0 {
		return Succeeded(noDocuments)
	}

	ctxzap.Debug(ctx, "documents retrieved", zap.Int("files", len(files)), zap.Int("chunks", len(chunks)))
	return Succeeded(&DocumentContext{Text: formatChunks(chunks), Found: true})
}
