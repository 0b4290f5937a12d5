package cmd

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"time"

	"support-chat/internal/chat"
	"support-chat/internal/config"
	"support-chat/internal/corpus"
	"support-chat/internal/database"
	"support-chat/internal/llm"
	"support-chat/internal/messaging"

	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func LoadEnvFile() {
	var configPath string

	flag.StringVar(&configPath, "env", "", "path to load env from")
	flag.Parse()

	if configPath == "" {
		log.Printf("no env file specified, using os.Environ only")
		return
	}

	log.Printf("loading env from file %s", configPath)
	err := godotenv.Load(configPath)
	if err != nil {
		log.Fatalf("error loading .env file '%s': %v", configPath, err)
	}
}

// CreateDatabase connects to postgres when DATABASE_URL is set and to a sqlite
// file under ROOT otherwise.
func CreateDatabase(cfg *config.Config) *gorm.DB {
	if cfg.DatabaseURL != "" {
		db, err := database.NewDatabase(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		return db
	}

	db, err := database.NewSQLiteDatabase(cfg.SQLitePath())
	if err != nil {
		log.Fatalf("Failed to open sqlite database: %v", err)
	}
	return db
}

// CreateQueue returns the publisher the service writes turn events to and
// the receiver the usage tracker reads them from.
func CreateQueue(cfg *config.Config) (messaging.Publisher, messaging.Receiver) {
	if cfg.RabbitMQURL == "" {
		slog.Info("RABBITMQ_URL not set, using in-memory turn queue")
		queue := messaging.NewInMemoryQueue()
		return queue, queue
	}

	publisher, err := messaging.NewRabbitMQPublisher(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}

	receiver, err := messaging.NewRabbitMQReceiver(cfg.RabbitMQURL)
	if err != nil {
		publisher.Close()
		log.Fatalf("Failed to start RabbitMQ consumer: %v", err)
	}

	return publisher, receiver
}

func CreateGateway(cfg *config.Config) *llm.Gateway {
	if cfg.APIKey() == "" {
		slog.Warn("no LLM api key configured, completion calls will fail and return the fallback reply")
	}

	completer, err := llm.NewCompleter(cfg.ProviderConfig())
	if err != nil {
		log.Fatalf("Failed to create completion client: %v", err)
	}

	return llm.NewGateway(completer, cfg.LLMTimeout, chat.FallbackReply)
}

func LoadCorpus(cfg *config.Config) []corpus.DocChunk {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	docs, err := corpus.Load(ctx, cfg.CorpusSource, cfg.S3Config())
	if err != nil {
		log.Fatalf("Failed to load documentation corpus from %s: %v", cfg.CorpusSource, err)
	}

	return docs
}
