package main // Entry point package

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/restaurant-assistant/internal/assistant"
	"github.com/iliyamo/restaurant-assistant/internal/config"
	"github.com/iliyamo/restaurant-assistant/internal/database"
	"github.com/iliyamo/restaurant-assistant/internal/handler"
	"github.com/iliyamo/restaurant-assistant/internal/knowledge"
	"github.com/iliyamo/restaurant-assistant/internal/middleware"
	"github.com/iliyamo/restaurant-assistant/internal/notify"
	"github.com/iliyamo/restaurant-assistant/internal/queue"
	"github.com/iliyamo/restaurant-assistant/internal/repository"
	"github.com/iliyamo/restaurant-assistant/internal/router"
	"github.com/iliyamo/restaurant-assistant/internal/scheduler"
	"github.com/iliyamo/restaurant-assistant/internal/service"
	"github.com/iliyamo/restaurant-assistant/internal/voice"
)

func main() {
	config.LoadDotEnv()
	cfg := config.Load()
	ledgerCfg := config.LoadLedgerConfig()
	assistantCfg := config.LoadAssistantConfig()
	voiceCfg := config.LoadVoiceConfig()
	mailCfg := config.LoadMailConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- Storage ----
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		log.Fatalf("db: migrate: %v", err)
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis: unavailable; rate limiting, response cache and transcripts disabled")
	} else {
		defer rdb.Close()
	}

	staff := repository.NewStaffRepo(db)
	tokens := repository.NewTokenRepo(db)
	if created, err := staff.EnsureManager(ctx, cfg.ManagerEmail, cfg.ManagerPass, cfg.BcryptCost); err != nil {
		log.Fatalf("staff: bootstrap manager: %v", err)
	} else if created {
		log.Printf("staff: created bootstrap manager %s", cfg.ManagerEmail)
	}

	// ---- Knowledge ----
	kb, err := knowledge.Load(assistantCfg.DataFile)
	if err != nil {
		log.Fatalf("knowledge: %v", err)
	}
	kb.Restaurant.Capacity = ledgerCfg.Capacity

	// ---- Ledger and events ----
	amqpURL := config.LoadAMQPURL()
	ledger, err := service.NewLedger(repository.NewBookingRepo(db), service.NewAMQPPublisher(amqpURL), ledgerCfg)
	if err != nil {
		log.Fatalf("ledger: %v", err)
	}

	var notifier queue.Notifier
	if mailCfg.Enabled() {
		notifier = notify.NewMailer(mailCfg, kb.Restaurant.Name)
	}
	go func() { _ = queue.NewConsumer(amqpURL, cfg.LogDir, notifier).Run(ctx) }()

	// ---- Assistant ----
	gen, err := assistant.NewGenerator(ctx, assistantCfg)
	if err != nil {
		log.Fatalf("assistant: %v", err)
	}
	var transcripts assistant.TranscriptStore
	if tr := repository.NewTranscriptRepo(rdb, assistantCfg.SessionTTL, assistantCfg.HistoryLimit); tr != nil {
		transcripts = tr
	}
	chat := assistant.NewManager(gen, kb.Preamble(), assistantCfg.SessionTTL, transcripts)

	// ---- Voice ----
	var stt voice.Transcriber
	var tts voice.Synthesizer
	if voiceCfg.ListenEnabled {
		t, err := voice.NewGoogleTranscriber(ctx, voiceCfg)
		if err != nil {
			log.Printf("voice: listen disabled: %v", err)
		} else {
			defer t.Close()
			stt = t
		}
	}
	if voiceCfg.SpeakEnabled {
		s, err := voice.NewGoogleSynthesizer(ctx, voiceCfg.AudioDir, voiceCfg.DefaultLang)
		if err != nil {
			log.Printf("voice: speak disabled: %v", err)
		} else {
			defer s.Close()
			tts = s
		}
	}

	// ---- Housekeeping ----
	jobs := []scheduler.Job{
		{Name: "evict-chat-sessions", Every: time.Minute, Run: func(context.Context) error {
			if n := chat.Evict(); n > 0 {
				log.Printf("assistant: evicted %d idle sessions", n)
			}
			return nil
		}},
		{Name: "purge-refresh-tokens", Every: time.Hour, Run: func(ctx context.Context) error {
			n, err := tokens.PurgeExpired(ctx, time.Now().UTC().Add(-24*time.Hour))
			if n > 0 {
				log.Printf("tokens: purged %d expired refresh tokens", n)
			}
			return err
		}},
	}
	if tts != nil {
		jobs = append(jobs, scheduler.Job{Name: "purge-audio", Every: time.Hour, Run: func(context.Context) error {
			n, err := voice.PurgeAudio(voiceCfg.AudioDir, time.Now().Add(-voiceCfg.AudioRetention))
			if n > 0 {
				log.Printf("voice: removed %d old audio files", n)
			}
			return err
		}})
	}
	sched, err := scheduler.Start(ctx, jobs...)
	if err != nil {
		log.Fatalf("scheduler: %v", err)
	}
	defer func() { _ = sched.Shutdown() }()

	// ---- HTTP ----
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.Use(echomw.Logger(), echomw.Recover())

	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewResponseCache(config.LoadCacheConfig(), rdb, knowledgeVersion(kb))
	auth := handler.NewAuthHandler(cfg, staff, tokens)

	router.RegisterRoutes(e, &handler.ReadyHandler{DB: db, Redis: rdb})
	router.RegisterAuth(e, auth, cfg.JWTSecret, limiter)
	router.RegisterBookings(e, handler.NewBookingHandler(ledger), limiter)
	router.RegisterMenu(e, handler.NewMenuHandler(kb), cache)
	router.RegisterAssistant(e, handler.NewChatHandler(chat), handler.NewVoiceHandler(stt, tts, chat, voiceCfg), limiter)
	router.RegisterAdmin(e, handler.NewAdminBookingHandler(ledger), auth, cfg.JWTSecret)

	addr := ":" + cfg.Port
	go func() {
		log.Printf("listening on %s (env=%s)", addr, cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

// knowledgeVersion fingerprints the loaded restaurant data so cached menu
// responses from different data files never mix.
func knowledgeVersion(kb *knowledge.Base) string {
	raw, err := json.Marshal(kb)
	if err != nil {
		return "v0"
	}
	sum := sha1.Sum(raw)
	return hex.EncodeToString(sum[:4])
}
