package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"

	"github.com/rpupo63/blogpress/api"
	"github.com/rpupo63/blogpress/config"
	"github.com/rpupo63/blogpress/database"
	"github.com/rpupo63/blogpress/models"
)

func main() {
	fmt.Println("Initializing app...")

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: Error loading .env file: %v\n", err)
	}

	c := config.New()
	searchPolicy := config.LoadSearchPolicy(c)

	dbType := config.GetString(c, "DB_TYPE", "memory")
	fmt.Printf("DB_TYPE: %s\n", dbType)

	var repo database.Repository
	switch dbType {
	case "memory":
		fmt.Println("Using in-memory store; content is lost on restart")
		repo = database.NewMemoryRepository(searchPolicy)
	case "supa", "postgres", "sqlite":
		db, err := openDatabase(c, dbType)
		if err != nil {
			fmt.Printf("Error connecting to database: %v\n", err)
			os.Exit(1)
		}

		// If generating models, run generation and exit
		if strings.ToLower(config.GetString(c, "GENERATE_MODELS", "")) == "true" {
			fmt.Println("Generating models and query helpers...")
			models.GenerateModels(db)
			return
		}

		// If generating column mismatch report, run report and exit
		if strings.ToLower(config.GetString(c, "GENERATE_COLUMN_REPORT", "")) == "true" {
			models.GenerateColumnMismatchReport(db)
			return
		}

		currentDB := database.New(db, searchPolicy)
		if err := currentDB.Migrate(); err != nil {
			fmt.Printf("Error during models migration: %v\n", err)
			os.Exit(1)
		}
		repo = currentDB
	default:
		fmt.Println("Unsupported DB_TYPE. Exiting...")
		os.Exit(1)
	}

	bootstrapAuthor(c, repo)

	// Print an admin token for the given username and exit
	if username := config.GetString(c, "ISSUE_ADMIN_TOKEN", ""); username != "" {
		issueAdminToken(c, repo, username)
		return
	}

	errChannel := make(chan error)
	defer close(errChannel)

	server, err := api.NewServer(repo)
	if err != nil {
		fmt.Printf("Error initializing server: %v\n", err)
		os.Exit(1)
	}

	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	fmt.Printf("Closing server: %v\n", fatalErr)

	server.ShutdownGracefully(30 * time.Second)
}

// openDatabase connects gorm to the configured backend and checks the connection
func openDatabase(c map[string]string, dbType string) (*gorm.DB, error) {
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             10 * time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)
	gormConfig := &gorm.Config{
		PrepareStmt:    false,
		TranslateError: true,
		Logger:         newLogger,
	}

	var dialector gorm.Dialector
	switch dbType {
	case "supa":
		connStr := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=require",
			config.GetString(c, "SUPABASE_DB_HOST", ""),
			config.GetString(c, "SUPABASE_DB_USER", ""),
			config.GetString(c, "SUPABASE_DB_PASSWORD", ""),
			config.GetString(c, "SUPABASE_DB_NAME", ""),
			config.GetString(c, "SUPABASE_DB_PORT", "5432"),
		)
		fmt.Println("Connecting to Supabase database...")
		dialector = postgres.New(postgres.Config{
			DSN:                  connStr,
			PreferSimpleProtocol: true,
		})
	case "postgres":
		fmt.Println("Connecting to PostgreSQL database...")
		dialector = postgres.New(postgres.Config{
			DSN:                  config.GetString(c, "DATABASE_URL", ""),
			PreferSimpleProtocol: true,
		})
	case "sqlite":
		path := config.GetString(c, "SQLITE_PATH", "blogpress.db")
		fmt.Printf("Opening SQLite database at %s...\n", path)
		dialector = sqlite.Open(path)
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, err
	}

	// Feed and page reads go to the replicas; writes and transactions stay on the primary
	if replicas := config.GetString(c, "DATABASE_REPLICA_URLS", ""); replicas != "" && dbType != "sqlite" {
		var replicaDialectors []gorm.Dialector
		for _, dsn := range strings.Split(replicas, ",") {
			if dsn = strings.TrimSpace(dsn); dsn != "" {
				replicaDialectors = append(replicaDialectors, postgres.New(postgres.Config{
					DSN:                  dsn,
					PreferSimpleProtocol: true,
				}))
			}
		}
		fmt.Printf("Registering %d read replica(s)...\n", len(replicaDialectors))
		if err := db.Use(dbresolver.Register(dbresolver.Config{
			Replicas: replicaDialectors,
			Policy:   dbresolver.RandomPolicy{},
		})); err != nil {
			return nil, fmt.Errorf("registering read replicas: %w", err)
		}
	}

	// Test database connection
	var result int
	if err := db.Raw("SELECT 1").Scan(&result).Error; err != nil {
		return nil, fmt.Errorf("testing database connection: %w", err)
	}
	return db, nil
}

// bootstrapAuthor creates the initial author on an empty store and logs its
// one-time password, plus an admin token when JWT_SECRET is set.
func bootstrapAuthor(c map[string]string, repo database.Repository) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	author, password, err := api.BootstrapAuthor(ctx, repo,
		config.GetString(c, "ADMIN_USERNAME", "admin"),
		config.GetString(c, "ADMIN_NAME", "Admin"),
	)
	if err != nil {
		zlog.Error().Err(err).Msg("Cannot create the initial author")
		os.Exit(1)
	}
	if author == nil {
		return
	}

	zlog.Warn().
		Str("username", author.Username).
		Str("password", password).
		Msg("Created initial author; the password must be reset")

	secret := config.GetString(c, "JWT_SECRET", "")
	if secret == "" {
		return
	}
	ttl := time.Duration(config.GetInt(c, "ADMIN_TOKEN_TTL_HOURS", 24)) * time.Hour
	token, err := api.IssueToken(secret, author.ID, ttl)
	if err != nil {
		zlog.Error().Err(err).Msg("Cannot issue token for the initial author")
		return
	}
	zlog.Info().Str("token", token).Msg("Admin token for the initial author")
}

func issueAdminToken(c map[string]string, repo database.Repository, username string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	author, err := repo.GetAuthorByUsername(ctx, username)
	if err != nil || author == nil {
		zlog.Error().Err(err).Str("username", username).Msg("Cannot issue token: author not found")
		os.Exit(1)
	}

	ttl := time.Duration(config.GetInt(c, "ADMIN_TOKEN_TTL_HOURS", 24)) * time.Hour
	token, err := api.IssueToken(config.GetString(c, "JWT_SECRET", ""), author.ID, ttl)
	if err != nil {
		zlog.Error().Err(err).Msg("Cannot issue token")
		os.Exit(1)
	}
	fmt.Println(token)
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-c)
}
