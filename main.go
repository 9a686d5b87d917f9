package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/newsroom-backend/api"
	"github.com/rpupo63/newsroom-backend/auth"
	"github.com/rpupo63/newsroom-backend/cache"
	"github.com/rpupo63/newsroom-backend/config"
	"github.com/rpupo63/newsroom-backend/content"
	"github.com/rpupo63/newsroom-backend/database"
	"github.com/rpupo63/newsroom-backend/models"
	"github.com/rpupo63/newsroom-backend/ratelimit"
	"github.com/rpupo63/newsroom-backend/storage"
	"github.com/rpupo63/newsroom-backend/web"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	log.Info().Msg("Initializing app...")

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("Error loading .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading configuration")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	ctx := context.Background()
	if err := resolveSecrets(ctx, &cfg); err != nil {
		log.Fatal().Err(err).Msg("Error resolving secrets")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().Str("type", cfg.DB.Type).Msg("Connecting to database...")
	db, err := database.Open(cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("Error connecting to database")
	}

	// If generating models, run generation and exit
	if cfg.GenerateModels {
		log.Info().Str("path", cfg.GeneratedPath).Msg("Generating models and query helpers...")
		if err := models.GenerateModels(db, cfg.GeneratedPath); err != nil {
			log.Fatal().Err(err).Msg("Error generating models")
		}
		return
	}

	// If generating column mismatch report, run report and exit
	if cfg.GenerateColumnReport {
		reports, err := models.ColumnReport(db)
		if err != nil {
			log.Fatal().Err(err).Msg("Error generating column report")
		}
		models.PrintColumnReport(reports)
		return
	}

	currentDB := database.New(db)
	defer currentDB.Close()
	if err := currentDB.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Error migrating database")
	}

	if err := auth.EnsureAdmin(ctx, currentDB.UserRepo(), cfg.AdminUsername, cfg.AdminPassword, cfg.AdminEmail); err != nil {
		log.Fatal().Err(err).Msg("Error creating admin user")
	}

	feedCache := cache.New(ctx, cfg.RedisURL, cfg.CachePrefix, cfg.CacheTTL())
	defer feedCache.Close()

	media, mediaDir, err := newMediaStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing media store")
	}

	posts := content.NewService(currentDB.PostRepo(), feedCache, cfg.CacheTTL(), cfg.PageSize)
	comments := content.NewCommentService(currentDB.CommentRepo(), posts)
	submissions := content.NewSubmissionService(currentDB.ContactRepo(), currentDB.NewsletterRepo())
	limiter := ratelimit.New(cfg.RateLimitRPS, cfg.RateLimitBurst)

	site, err := web.NewHandler(web.Dependencies{
		Sessions:    web.NewSessionManager(time.Duration(cfg.SessionLifetimeHrs)*time.Hour, !cfg.IsDevelopment()),
		Posts:       posts,
		Comments:    comments,
		Submissions: submissions,
		Markdown:    content.NewRenderer(),
		Media:       media,
		MediaDir:    mediaDir,
		Limiter:     limiter,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing web pages")
	}

	server, err := api.NewServer(cfg, api.Dependencies{
		Database:      currentDB,
		Posts:         posts,
		Comments:      comments,
		Submissions:   submissions,
		Authenticator: auth.NewAuthenticator(currentDB.UserRepo(), auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL())),
		Media:         media,
		Limiter:       limiter,
		Web:           site,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing server")
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	if err := serveUntilStopped(server, signals, 30*time.Second); err != nil {
		log.Error().Err(err).Msg("Server stopped")
	}
}

// serveUntilStopped runs the server until it fails or a signal arrives, then
// shuts it down and waits for it to return. A signal is a clean stop.
func serveUntilStopped(server api.Server, signals <-chan os.Signal, timeout time.Duration) error {
	// one slot per sender: the server and the signal listener
	errChannel := make(chan error, 2)
	serverDone := make(chan struct{})

	go func() {
		defer close(serverDone)
		server.Start(errChannel)
	}()

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel, signals)

	fatalErr := <-errChannel
	log.Info().Msgf("Closing server: %v", fatalErr)

	server.ShutdownGracefully(timeout)
	<-serverDone

	if errors.Is(fatalErr, errInterrupted) {
		return nil
	}
	return fatalErr
}

// resolveSecrets reads the JWT secret from SSM when configured. Development runs
// without a secret get a random one, so tokens do not survive a restart.
func resolveSecrets(ctx context.Context, cfg *config.Config) error {
	if cfg.JWTSecret == "" && cfg.JWTSecretParam != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return fmt.Errorf("loading AWS config: %w", err)
		}
		if err := config.ResolveSecrets(ctx, cfg, ssm.NewFromConfig(awsCfg)); err != nil {
			return err
		}
	}

	if cfg.JWTSecret == "" && cfg.IsDevelopment() {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return err
		}
		cfg.JWTSecret = hex.EncodeToString(buf)
		log.Warn().Msg("JWT_SECRET not set, using a random development secret")
	}
	return nil
}

// newMediaStore returns the featured-image store and, for the disk backend,
// the directory the web pages serve under /media/.
func newMediaStore(ctx context.Context, cfg config.Config) (storage.Store, string, error) {
	if cfg.MediaBackend == "s3" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, "", fmt.Errorf("loading AWS config: %w", err)
		}
		log.Info().Str("bucket", cfg.S3Bucket).Msg("Using S3 media store")
		return storage.NewS3Store(s3.NewFromConfig(awsCfg), cfg.S3Bucket, cfg.S3PublicURL), "", nil
	}

	disk, err := storage.NewDiskStore(cfg.MediaDir, cfg.MediaBaseURL)
	if err != nil {
		return nil, "", err
	}
	return disk, disk.Dir(), nil
}

var errInterrupted = errors.New("interrupted")

// listenToInterrupt waits for a signal and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error, signals <-chan os.Signal) {
	sig := <-signals
	errChannel <- fmt.Errorf("%w by %s", errInterrupted, sig)
}
