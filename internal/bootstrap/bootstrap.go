package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/legalease/legalease/internal/config"
	"github.com/legalease/legalease/internal/core/ports"
	"github.com/legalease/legalease/internal/core/usecase"
	"github.com/legalease/legalease/internal/infrastructure/extractor"
	"github.com/legalease/legalease/internal/infrastructure/index/memory"
	"github.com/legalease/legalease/internal/infrastructure/llm/gemini"
	"github.com/legalease/legalease/internal/infrastructure/ocr/documentai"
	"github.com/legalease/legalease/internal/infrastructure/queue/nats"
	"github.com/legalease/legalease/internal/infrastructure/repository/postgres"
	"github.com/legalease/legalease/internal/infrastructure/resilience"
	"github.com/legalease/legalease/internal/infrastructure/simplifier"
	"github.com/legalease/legalease/internal/infrastructure/storage/localfs"
	"github.com/legalease/legalease/internal/infrastructure/storage/miniostore"
	"github.com/legalease/legalease/internal/infrastructure/tts/googletts"
)

type App struct {
	Config config.Config

	Queue ports.MessageQueue
	Repo  ports.DocumentRepository

	UploadUC    ports.DocumentIngestor
	ProcessUC   *usecase.ProcessDocumentUseCase
	QAUC        ports.QuestionAnswerer
	TranslateUC ports.Translator
	TTSUC       ports.SpeechSynthesizer
	ResumeUC    *usecase.ResumeStuckDocumentsUseCase

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewDocumentRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	conversations := postgres.NewConversationRepository(db)

	storage, err := newObjectStorage(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	geminiClient := gemini.New(cfg.GeminiURL, cfg.GeminiAPIKey, cfg.GeminiProModel, cfg.GeminiFlashModel).
		WithExecutor(executor)

	textExtractor := extractor.New(storage)
	if cfg.DocumentAIEndpoint != "" {
		ocr := documentai.New(documentai.Options{
			Endpoint:    cfg.DocumentAIEndpoint,
			AccessToken: cfg.DocumentAIAccessToken,
		}).WithExecutor(executor)
		textExtractor = textExtractor.WithOCR(ocr)
	}

	clauseIndex := memory.NewIndex()
	ruleFallback := simplifier.NewRuleBased()

	uploadUC := usecase.NewUploadDocumentUseCase(repo, storage, queue, clauseIndex)
	processUC := usecase.NewProcessDocumentUseCase(
		repo,
		textExtractor,
		gemini.NewSimplifier(geminiClient),
		ruleFallback,
		gemini.NewSummarizer(geminiClient),
		gemini.NewTermExtractor(geminiClient),
		clauseIndex,
	).WithStageTimeout(time.Duration(cfg.StageTimeoutSeconds) * time.Second)

	qaUC := usecase.NewAnswerQuestionUseCase(repo, clauseIndex, gemini.NewAnswerer(geminiClient), conversations)
	translateUC := usecase.NewTranslateUseCase(gemini.NewTranslator(geminiClient))
	ttsUC := usecase.NewSynthesizeUseCase(googletts.New(cfg.TTSURL, cfg.TTSAPIKey).WithExecutor(executor))
	resumeUC := usecase.NewResumeStuckDocumentsUseCase(repo, queue,
		time.Duration(cfg.ResumeStuckAfterMinutes)*time.Minute)

	return &App{
		Config: cfg,
		Queue:  queue,
		Repo:   repo,

		UploadUC:    uploadUC,
		ProcessUC:   processUC,
		QAUC:        qaUC,
		TranslateUC: translateUC,
		TTSUC:       ttsUC,
		ResumeUC:    resumeUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func newObjectStorage(ctx context.Context, cfg config.Config) (ports.ObjectStorage, error) {
	switch cfg.StorageBackend {
	case "minio":
		store, err := miniostore.New(miniostore.Options{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			Region:    cfg.MinioRegion,
			UseSSL:    cfg.MinioUseSSL,
		})
		if err != nil {
			return nil, err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return store, nil
	case "", "localfs":
		return localfs.New(cfg.StoragePath)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
