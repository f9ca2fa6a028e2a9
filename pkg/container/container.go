// Package container builds the application dependency graph in order:
// config, infrastructure, repositories, services, handlers.
package container

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"library-backend/internal/config"
	infraCache "library-backend/internal/infrastructure/cache"
	"library-backend/internal/infrastructure/database"
	"library-backend/internal/infrastructure/email"
	"library-backend/pkg/cache"
	"library-backend/pkg/jwt"
	"library-backend/pkg/logger"

	authorHandler "library-backend/internal/domains/author/handler"
	authorRepo "library-backend/internal/domains/author/repository"
	authorService "library-backend/internal/domains/author/service"
	bookHandler "library-backend/internal/domains/book/handler"
	bookRepo "library-backend/internal/domains/book/repository"
	bookService "library-backend/internal/domains/book/service"
	borrowHandler "library-backend/internal/domains/borrow/handler"
	borrowRepo "library-backend/internal/domains/borrow/repository"
	borrowService "library-backend/internal/domains/borrow/service"
	userHandler "library-backend/internal/domains/user/handler"
	userRepo "library-backend/internal/domains/user/repository"
	userService "library-backend/internal/domains/user/service"
)

type Container struct {
	Config       *config.Config
	DB           *database.PostgresDB
	Cache        cache.Cache
	JWTManager   *jwt.Manager
	EmailService email.EmailService

	AuthorRepo authorRepo.RepositoryInterface
	BookRepo   bookRepo.RepositoryInterface
	CopyRepo   bookRepo.CopyRepositoryInterface
	BorrowRepo borrowRepo.RepositoryInterface
	UserRepo   userRepo.RepositoryInterface
	OTPRepo    userRepo.OTPRepositoryInterface

	AuthorService authorService.ServiceInterface
	BookService   bookService.ServiceInterface
	BorrowService borrowService.ServiceInterface
	UserService   userService.ServiceInterface

	AuthorHandler *authorHandler.AuthorHandler
	BookHandler   *bookHandler.BookHandler
	CopyHandler   *bookHandler.CopyHandler
	BorrowHandler *borrowHandler.BorrowHandler
	UserHandler   *userHandler.UserHandler
}

func NewContainer() (*Container, error) {
	c := &Container{}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	logger.Init(cfg.App.Environment)

	dailyFee, err := decimal.NewFromString(cfg.Lending.DailyLateFee)
	if err != nil {
		return nil, fmt.Errorf("invalid daily late fee %q: %w", cfg.Lending.DailyLateFee, err)
	}

	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}
	c.DB = database.NewPostgresDB(dbConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := c.DB.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	c.Cache = infraCache.NewRedisCache(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := c.Cache.Ping(ctx); err != nil {
		logger.Warn("redis unreachable at startup", map[string]interface{}{"error": err.Error()})
	}

	c.JWTManager = jwt.NewManager(
		cfg.JWT.Secret,
		time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute,
		time.Duration(cfg.JWT.RefreshTokenExpiry)*time.Hour,
	)
	c.EmailService = email.NewSMTPEmailService(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.From)

	pool := c.DB.Pool
	c.AuthorRepo = authorRepo.NewPostgresRepository(pool)
	c.BookRepo = bookRepo.NewPostgresRepository(pool)
	c.CopyRepo = bookRepo.NewCopyPostgresRepository(pool)
	c.BorrowRepo = borrowRepo.NewPostgresRepository(pool)
	c.UserRepo = userRepo.NewPostgresRepository(pool)
	c.OTPRepo = userRepo.NewOTPPostgresRepository(pool)

	c.AuthorService = authorService.NewAuthorService(c.AuthorRepo)
	c.BookService = bookService.NewBookService(c.BookRepo, c.CopyRepo)
	c.BorrowService = borrowService.NewBorrowService(
		c.BorrowRepo,
		borrowService.NewLogEvents(),
		cfg.Lending.LoanPeriodDays,
		dailyFee,
	)
	c.UserService = userService.NewUserService(
		c.UserRepo,
		c.OTPRepo,
		c.Cache,
		c.JWTManager,
		c.EmailService,
		cfg.Lending.DefaultBorrowLimit,
		cfg.Lending.OTPExpiryMinutes,
	)

	c.AuthorHandler = authorHandler.NewAuthorHandler(c.AuthorService)
	c.BookHandler = bookHandler.NewBookHandler(c.BookService)
	c.CopyHandler = bookHandler.NewCopyHandler(c.BookService)
	c.BorrowHandler = borrowHandler.NewBorrowHandler(c.BorrowService)
	c.UserHandler = userHandler.NewUserHandler(c.UserService)

	logger.Info("container initialized", map[string]interface{}{
		"environment": cfg.App.Environment,
	})
	return c, nil
}

// Cleanup releases infrastructure resources. Call on shutdown.
func (c *Container) Cleanup() {
	if c.DB != nil {
		c.DB.Close()
	}
}
