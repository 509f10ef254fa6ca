package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/example/vocabtrainer/internal/api"
	"github.com/example/vocabtrainer/internal/bot"
	"github.com/example/vocabtrainer/internal/excel"
	"github.com/example/vocabtrainer/internal/scheduler"
	"github.com/example/vocabtrainer/internal/storage"
	syncer "github.com/example/vocabtrainer/internal/sync"
	"github.com/example/vocabtrainer/internal/trainer"
)

func main() {
	importFile := flag.String("import", "", "import a word list (xlsx or csv) into the local corpus and exit")
	flag.Parse()

	// Load .env if present; environment variables win either way
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	db, err := storage.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if *importFile != "" {
		config := excel.DefaultImportConfig()
		config.FilePath = *importFile
		result, err := excel.ImportWords(storage.NewWordRepository(db), config)
		if err != nil {
			log.Fatalf("Import failed: %v", err)
		}
		log.Printf("Import finished: %d processed, %d created, %d skipped, %d errors",
			result.TotalProcessed, result.Created, result.Skipped, len(result.Errors))
		for _, importErr := range result.Errors {
			log.Printf("  %s", importErr)
		}
		return
	}

	session := trainer.NewSession(storage.NewSessionRepository(db))

	// With BACKEND_URL set the backend is the source of truth and finished
	// sessions sync to it; otherwise everything runs against the local store.
	var provider bot.TrainingProvider
	var pinger scheduler.Pinger
	var replayer scheduler.Replayer

	backendURL := os.Getenv("BACKEND_URL")
	if backendURL != "" {
		client := api.New(backendURL)
		uploader := syncer.NewUploader(client, storage.NewOutboxRepository(db))
		provider = syncer.NewRemoteProvider(client, uploader)
		pinger = client
		replayer = uploader

		// Push anything a previous run failed to deliver
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		if err := uploader.ReplayOutbox(ctx); err != nil {
			log.Printf("Startup outbox replay failed: %v", err)
		}
		cancel()
	} else {
		if err := storage.EnsureSeeded(db); err != nil {
			log.Fatalf("Failed to seed local store: %v", err)
		}
		provider = storage.NewLocalProvider(db)
		log.Println("BACKEND_URL not set, running against the local store")
	}

	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN environment variable is not set")
	}

	b, err := bot.New(token, provider, session)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if os.Getenv("ENABLE_SCHEDULER") != "false" {
		s := scheduler.New(pinger, replayer)
		s.Start()
		defer s.Stop()
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		sig := <-sigChan
		log.Printf("Received signal: %v", sig)
		cancel()
	}()

	log.Println("Bot started. Press Ctrl+C to stop.")
	if err := b.Start(ctx); err != nil && err != context.Canceled {
		log.Printf("Bot error: %v", err)
	}
	log.Println("Bot stopped successfully")
}
