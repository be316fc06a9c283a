package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

var (
	logg      zerolog.Logger = newLogger()
	cfg       Config
	jwtSecret []byte // loaded from env JWT_SECRET (fallback to dev default)
	store     DonationStore
	ingestor  *Ingestor
)

func main() {
	cfg = LoadConfig()
	jwtSecret = []byte(cfg.JWTSecret)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.DatabaseDSN != "" {
		if err := initDB(cfg.DatabaseDSN); err != nil {
			logg.Fatal().Err(err).Msg("database init failed")
		}
		store = NewDBStore(db)
		logg.Info().Msg("ledger backend: postgres")
	} else {
		fs, err := NewFileStore(cfg.DataFile)
		if err != nil {
			logg.Fatal().Err(err).Str("file", cfg.DataFile).Msg("ledger file unreadable")
		}
		store = fs
		logg.Info().Str("file", cfg.DataFile).Msg("ledger backend: json file")
	}
	ingestor = NewIngestor(store, logg)

	var pollers []*Poller
	if cfg.GmailCredentials != "" && cfg.GmailSender != "" {
		src, err := NewGmailSource(ctx, cfg.GmailCredentials, cfg.GmailToken, cfg.GmailSender)
		if err != nil {
			logg.Fatal().Err(err).Msg("gmail source init failed")
		}
		pollers = append(pollers, NewPoller(src, ingestor, cfg.PollInterval, logg))
	}
	if cfg.IMAPAddr != "" {
		src := NewIMAPSource(cfg.IMAPAddr, cfg.IMAPUsername, cfg.IMAPPassword, cfg.IMAPSender)
		pollers = append(pollers, NewPoller(src, ingestor, cfg.PollInterval, logg))
	}
	for _, p := range pollers {
		p.Start(ctx)
	}

	var spool *SpoolWatcher
	if cfg.SpoolDir != "" {
		spool = NewSpoolWatcher(cfg.SpoolDir, ingestor, logg)
		if err := spool.Start(ctx); err != nil {
			logg.Fatal().Err(err).Str("dir", cfg.SpoolDir).Msg("spool watcher init failed")
		}
	}

	r := gin.Default()
	setupRoutes(r)

	srv := &http.Server{Addr: cfg.Addr, Handler: r}
	go func() {
		logg.Info().Str("addr", cfg.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logg.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	logg.Info().Msg("shutting down")
	for _, p := range pollers {
		p.Stop()
	}
	if spool != nil {
		spool.Stop()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
