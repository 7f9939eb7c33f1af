package bootstrap

import (
	"log"
	"time"

	"docqa-be/internal/config"
	"docqa-be/internal/controller"
	"docqa-be/internal/pkg/logger"
	"docqa-be/internal/repository/unitofwork"
	"docqa-be/internal/service"
	"docqa-be/pkg/chunker"
	"docqa-be/pkg/embedding"
	"docqa-be/pkg/ingest"
	llmopenai "docqa-be/pkg/llm/openai"
	"docqa-be/pkg/parser"
	"docqa-be/pkg/rag"
	"docqa-be/pkg/rag/intent"
	"docqa-be/pkg/vectorstore"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	DocumentController controller.IDocumentController
	QueryController    controller.IQueryController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Backends
	embedder := embedding.NewOpenAIProvider(
		cfg.Embedding.BaseURL,
		cfg.Embedding.Model,
		cfg.Embedding.Dim,
		cfg.Embedding.QueryPrefix,
		cfg.Embedding.PassagePrefix,
		time.Duration(cfg.Embedding.TimeoutSec)*time.Second,
	)
	llmProvider := llmopenai.NewProvider(
		cfg.LLM.BaseURL,
		cfg.LLM.Model,
		time.Duration(cfg.LLM.TimeoutSec)*time.Second,
	)
	log.Printf("[INFO] Embedding backend: %s (%s, dim %d)", cfg.Embedding.BaseURL, cfg.Embedding.Model, cfg.Embedding.Dim)
	log.Printf("[INFO] LLM backend: %s (%s)", cfg.LLM.BaseURL, cfg.LLM.Model)

	// 4. Vector Store
	store := vectorstore.New(uowFactory, cfg.Embedding.Dim, sysLogger)

	// 5. Ingestion Pipeline
	chunks, err := chunker.New(cfg.Ingest.ChunkSizeTokens, cfg.Ingest.ChunkOverlapTok)
	if err != nil {
		log.Fatalf("[FATAL] Invalid chunker configuration: %v", err)
	}
	bridge := parser.NewBridge(
		cfg.Ingest.ParserPython,
		cfg.Ingest.ParserScript,
		time.Duration(cfg.Ingest.ParserTimeoutSec)*time.Second,
	)
	pipeline := ingest.NewPipeline(
		ingest.Options{
			MaxChunksEmb:      cfg.Ingest.MaxChunksEmb,
			FastMode:          cfg.Ingest.FastMode,
			RenderPages:       cfg.Ingest.RenderPages,
			RenderDPI:         cfg.Ingest.RenderDPI,
			EnableTableIndex:  cfg.Ingest.EnableTableIndex,
			MaxTableRowsEmb:   cfg.Ingest.MaxTableRowsEmb,
			MaxCaptionPages:   cfg.Ingest.MaxCaptionPages,
			Hwp2TxtExe:        cfg.Ingest.Hwp2TxtExe,
			PdfToPpmExe:       cfg.Ingest.PdfToPpmExe,
			InsertConcurrency: cfg.Ingest.InsertConcurrency,
		},
		ingest.NewStorage(cfg.App.UploadDir),
		bridge,
		chunks,
		embedder,
		store,
		pubSub,
		sysLogger,
	)

	// 6. Retrieval & Routing
	classifier := intent.NewClassifier(
		llmProvider,
		time.Duration(cfg.LLM.ClassifyTimeoutMs)*time.Millisecond,
		sysLogger,
	)
	answerer := rag.NewAnswerer(
		rag.Config{
			RetrieveMin: cfg.Retrieval.RetrieveMin,
			UseAsCtxMin: cfg.Retrieval.UseAsCtxMin,
			MinTop3Avg:  cfg.Retrieval.MinTop3Avg,
			TextK:       cfg.Retrieval.TextK,
			TableK:      cfg.Retrieval.TableK,
			ImageK:      cfg.Retrieval.ImageK,
		},
		embedder,
		store,
		llmProvider,
		classifier,
		sysLogger,
	)

	// 7. Services
	ingestService := service.NewIngestService(pipeline, sysLogger)
	queryService := service.NewQueryService(answerer, cfg, sysLogger)
	consumerService := service.NewConsumerService(pubSub, store, sysLogger)

	return &Container{
		DocumentController: controller.NewDocumentController(ingestService),
		QueryController:    controller.NewQueryController(queryService),
		ConsumerService:    consumerService,
		Logger:             sysLogger,
	}
}
