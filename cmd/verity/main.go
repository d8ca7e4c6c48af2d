package main

import (
	"os"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/verity-id/verity/adapters/events"
	"github.com/verity-id/verity/adapters/store"
	"github.com/verity-id/verity/adapters/verifier"
	"github.com/verity-id/verity/config"
	"github.com/verity-id/verity/ports"
	"github.com/verity-id/verity/service"
	"github.com/verity-id/verity/transport/http"
)

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg := config.Load()

	// Session store and event publisher: Redis-backed when configured,
	// in-memory otherwise.
	var (
		sessionStore ports.SessionStore
		eventPub     ports.EventPublisher
	)
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to parse Redis URL")
		}
		redisClient := redis.NewClient(opts)

		publisher, err := redisstream.NewPublisher(
			redisstream.PublisherConfig{Client: redisClient},
			watermill.NewStdLogger(false, false),
		)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create Redis publisher")
		}

		sessionStore = store.NewRedisStore(redisClient, cfg.SessionTTL)
		eventPub = events.NewWatermillPublisher(publisher)
	} else {
		sessionStore = store.NewMemoryStore(cfg.SessionTTL)
	}

	// The proof verifier is long-lived: built once here, reused by every
	// callback.
	proofVerifier, err := verifier.NewIden3Verifier(verifier.Config{
		KeyDir:        cfg.KeyDir,
		EthRPCURL:     cfg.EthRPCURL,
		StateContract: cfg.StateContract,
		ChainID:       cfg.ChainID,
		IPFSGateway:   cfg.IPFSGateway,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create proof verifier")
	}

	authService := service.NewAuthService(sessionStore, proofVerifier, eventPub, log, service.Config{
		Audience:             cfg.AudienceDID,
		CallbackPath:         cfg.CallbackPath,
		Query:                cfg.QueryTemplate(),
		VerifyTimeout:        cfg.VerifyTimeout,
		StateTransitionDelay: cfg.StateTransitionDelay,
	})

	router := http.SetupRouter(authService, log, cfg.ExternalURL)

	log.Info().Str("addr", cfg.ListenAddr).Msg("starting verifier server")
	if err := router.Run(cfg.ListenAddr); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}
