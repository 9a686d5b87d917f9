package database

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"

	"github.com/rpupo63/newsroom-backend/config"
	"github.com/rpupo63/newsroom-backend/errs"
	"github.com/rpupo63/newsroom-backend/models"
)

type Database struct {
	db             *gorm.DB
	postRepo       *PostRepo
	categoryRepo   *Repo[models.Category]
	tagRepo        *Repo[models.Tag]
	commentRepo    *CommentRepo
	contactRepo    *Repo[models.Contact]
	newsletterRepo *Repo[models.Newsletter]
	userRepo       *UserRepo
	groupRepo      *Repo[models.Group]
}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) Database {
	return Database{
		db:             db,
		postRepo:       NewPostRepo(db),
		categoryRepo:   NewRepo[models.Category](db, "name ASC"),
		tagRepo:        NewRepo[models.Tag](db, "name ASC"),
		commentRepo:    NewCommentRepo(db),
		contactRepo:    NewRepo[models.Contact](db, "created_at DESC, id DESC"),
		newsletterRepo: NewRepo[models.Newsletter](db, "created_at DESC, id DESC"),
		userRepo:       NewUserRepo(db),
		groupRepo:      NewRepo[models.Group](db, "name ASC"),
	}
}

// Open connects to the configured database. Postgres read replicas, when configured,
// serve all reads through dbresolver.
func Open(cfg config.Database) (*gorm.DB, error) {
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Duration(cfg.SlowThresholdSeconds) * time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)
	gormConfig := &gorm.Config{
		PrepareStmt:    false,
		Logger:         gormLogger,
		TranslateError: true,
	}

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Type {
	case "postgres", "supa":
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  cfg.PostgresDSN(),
			PreferSimpleProtocol: true,
		}), gormConfig)
		if err != nil {
			return nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		if len(cfg.ReplicaDSNs) > 0 {
			replicas := make([]gorm.Dialector, 0, len(cfg.ReplicaDSNs))
			for _, dsn := range cfg.ReplicaDSNs {
				replicas = append(replicas, postgres.Open(strings.TrimSpace(dsn)))
			}
			if err := db.Use(dbresolver.Register(dbresolver.Config{
				Replicas: replicas,
				Policy:   dbresolver.RandomPolicy{},
			})); err != nil {
				return nil, fmt.Errorf("registering read replicas: %w", err)
			}
		}
	case "sqlite":
		registerSQLiteDriver()
		db, err = gorm.Open(sqlite.New(sqlite.Config{
			DriverName: sqliteDriverName,
			DSN:        sqliteDSN(cfg.Path),
		}), gormConfig)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite database: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported database type %q", cfg.Type)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.Type == "sqlite" && isMemory(cfg.Path) {
		// Every connection to :memory: is a separate database
		sqlDB.SetMaxOpenConns(1)
	} else if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	// Test database connection
	var result int
	if err := db.Raw("SELECT 1").Scan(&result).Error; err != nil {
		return nil, fmt.Errorf("testing database connection: %w", err)
	}

	return db, nil
}

func isMemory(path string) bool {
	return path == ":memory:" || strings.Contains(path, "mode=memory")
}

func sqliteDSN(path string) string {
	if isMemory(path) {
		return path
	}
	if dir := filepath.Dir(path); dir != "." {
		_ = os.MkdirAll(dir, 0o755)
	}
	if strings.Contains(path, "?") {
		return path
	}
	return path + "?_busy_timeout=5000&_foreign_keys=on"
}

// Migrate creates or updates the schema for every model
func (d Database) Migrate() error {
	if err := d.db.AutoMigrate(models.AllModels()...); err != nil {
		return errs.NewMigrationError(err)
	}
	return nil
}

// Ping checks the connection, for health checks
func (d Database) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the connection pool
func (d Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Accessor methods for each repository

func (d Database) DB() *gorm.DB {
	return d.db
}

func (d Database) PostRepo() *PostRepo {
	return d.postRepo
}

func (d Database) CategoryRepo() *Repo[models.Category] {
	return d.categoryRepo
}

func (d Database) TagRepo() *Repo[models.Tag] {
	return d.tagRepo
}

func (d Database) CommentRepo() *CommentRepo {
	return d.commentRepo
}

func (d Database) ContactRepo() *Repo[models.Contact] {
	return d.contactRepo
}

func (d Database) NewsletterRepo() *Repo[models.Newsletter] {
	return d.newsletterRepo
}

func (d Database) UserRepo() *UserRepo {
	return d.userRepo
}

func (d Database) GroupRepo() *Repo[models.Group] {
	return d.groupRepo
}
