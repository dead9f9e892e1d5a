package routes

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"rag-compliance-assistant/internal/config"
	"rag-compliance-assistant/internal/logger"
	"rag-compliance-assistant/middleware"
	"rag-compliance-assistant/models"
	"rag-compliance-assistant/services"
	"rag-compliance-assistant/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DocumentIndexer indexes document chunks and retrieves question context.
type DocumentIndexer interface {
	IndexDocument(ctx context.Context, chunks []string, metadatas []map[string]any, namespace string) error
	RetrieveContext(ctx context.Context, query, namespace string) (string, error)
}

// Translator handles question language detection and answer translation.
type Translator interface {
	DetectLanguage(ctx context.Context, text string) (string, error)
	TranslateToEnglish(ctx context.Context, text string) (string, error)
	TranslateAnswer(ctx context.Context, english, targetLanguage string) (string, error)
}

// Answerer produces an English answer from a question and retrieved context.
type Answerer interface {
	Answer(ctx context.Context, question, contextText string) (string, error)
}

// UploadDeps carries the upload pipeline's collaborators, constructed once in
// the composition root.
type UploadDeps struct {
	Config     *config.Config
	Chunker    *services.Chunker
	Indexer    DocumentIndexer
	Translator Translator
	Answerer   Answerer
}

func SetupUploadRoutes(router *gin.Engine, deps UploadDeps, authMiddleware *middleware.AuthMiddleware) {
	api := router.Group("/api/v1/hackrx")
	api.Use(authMiddleware.RequireAuth())
	api.POST("/upload", uploadHandler(deps))
}

// uploadHandler runs the full pipeline: extract, chunk, index under a fresh
// namespace, then answer each question sequentially. Any upstream failure
// fails the whole request.
func uploadHandler(deps UploadDeps) gin.HandlerFunc {
	return func(c *gin.Context) {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			utils.RespondWithBadRequest(c, "file is required", nil)
			return
		}
		questions := c.PostForm("questions")
		if questions == "" {
			utils.RespondWithBadRequest(c, "questions is required", nil)
			return
		}
		if deps.Config.MaxFileSize > 0 && fileHeader.Size > deps.Config.MaxFileSize {
			utils.RespondWithBadRequest(c, "file too large", gin.H{"max_bytes": deps.Config.MaxFileSize})
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to read upload", nil)
			return
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to read upload", nil)
			return
		}

		ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
		text, err := services.ExtractText(data, ext)
		if errors.Is(err, services.ErrUnsupportedFormat) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported format"})
			return
		}
		if err != nil {
			logger.Error("document extraction failed", "ext", ext, "error", err)
			utils.RespondWithInternalError(c, "Failed to process document", nil)
			return
		}

		ctx := c.Request.Context()
		requestID := middleware.GetRequestID(c)

		// Fresh namespace per upload keeps documents isolated in the index
		namespace := "upload_" + uuid.NewString()
		chunks := deps.Chunker.Split(services.CleanText(text))
		metadatas := make([]map[string]any, len(chunks))
		for i, chunk := range chunks {
			metadatas[i] = map[string]any{"text": chunk}
		}

		if err := deps.Indexer.IndexDocument(ctx, chunks, metadatas, namespace); err != nil {
			logger.Error("indexing failed", "request_id", requestID, "namespace", namespace, "error", err)
			utils.RespondWithInternalError(c, "Failed to index document", nil)
			return
		}
		logger.Info("document indexed", "request_id", requestID, "namespace", namespace, "chunks", len(chunks))

		questionList := strings.Split(questions, "\n")
		answers := make([]models.QuestionAnswer, 0, len(questionList))

		for _, question := range questionList {
			answer, err := answerQuestion(ctx, deps, question, namespace)
			if err != nil {
				logger.Error("question failed", "request_id", requestID, "error", err)
				utils.RespondWithInternalError(c, "Failed to answer questions", nil)
				return
			}
			answers = append(answers, models.QuestionAnswer{Question: question, Answer: answer})
		}

		c.JSON(http.StatusOK, models.UploadResponse{Answers: answers})
	}
}

// answerQuestion runs one question through detect -> translate -> retrieve ->
// answer -> translate back.
func answerQuestion(ctx context.Context, deps UploadDeps, question, namespace string) (string, error) {
	lang, err := deps.Translator.DetectLanguage(ctx, question)
	if err != nil {
		return "", err
	}

	englishQuestion := question
	if lang != services.LangEnglish {
		englishQuestion, err = deps.Translator.TranslateToEnglish(ctx, question)
		if err != nil {
			return "", err
		}
	}

	contextText, err := deps.Indexer.RetrieveContext(ctx, englishQuestion, namespace)
	if err != nil {
		return "", err
	}

	answer, err := deps.Answerer.Answer(ctx, englishQuestion, contextText)
	if err != nil {
		return "", err
	}

	return deps.Translator.TranslateAnswer(ctx, answer, lang)
}
