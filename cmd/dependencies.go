package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/inventory-management/internal"
	"github.com/frahmantamala/inventory-management/internal/admin"
	adminPostgres "github.com/frahmantamala/inventory-management/internal/admin/postgres"
	"github.com/frahmantamala/inventory-management/internal/audit"
	auditPostgres "github.com/frahmantamala/inventory-management/internal/audit/postgres"
	"github.com/frahmantamala/inventory-management/internal/auth"
	authPostgres "github.com/frahmantamala/inventory-management/internal/auth/postgres"
	"github.com/frahmantamala/inventory-management/internal/borrow"
	borrowPostgres "github.com/frahmantamala/inventory-management/internal/borrow/postgres"
	"github.com/frahmantamala/inventory-management/internal/core/events"
	"github.com/frahmantamala/inventory-management/internal/dashboard"
	dashboardPostgres "github.com/frahmantamala/inventory-management/internal/dashboard/postgres"
	"github.com/frahmantamala/inventory-management/internal/notification"
	"github.com/frahmantamala/inventory-management/internal/product"
	productPostgres "github.com/frahmantamala/inventory-management/internal/product/postgres"
	"github.com/frahmantamala/inventory-management/internal/session"
	"github.com/frahmantamala/inventory-management/internal/user"
	userPostgres "github.com/frahmantamala/inventory-management/internal/user/postgres"
	"github.com/frahmantamala/inventory-management/pkg/logger"
	"github.com/frahmantamala/inventory-management/pkg/mailer"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

const sqlDriver = "pgx"

type Services struct {
	Auth      *auth.Service
	User      *user.Service
	Admin     *admin.Service
	Product   *product.Service
	Borrow    *borrow.Service
	Audit     *audit.Service
	Dashboard *dashboard.Service
}

// Dependencies is everything a command needs, built once from config. The
// gorm, sqlx and goose layers share one *sql.DB.
type Dependencies struct {
	Config   *internal.Config
	SQL      *sql.DB
	DB       *gorm.DB
	SQLX     *sqlx.DB
	Redis    *redis.Client
	EventBus *events.EventBus
	Mailer   mailer.Mailer
	Sessions *session.Manager
	Services Services
	Repos    Repositories
	Logger   *slog.Logger
}

type Repositories struct {
	User   *userPostgres.UserRepository
	Borrow borrow.RepositoryAPI
}

func initializeDependencies(ctx context.Context) (*Dependencies, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	lg := logger.Init(logger.Options{
		Level:  cfg.Observability.Logging.Level,
		Format: cfg.Observability.Logging.Format,
	})

	sqlDB, err := initDB(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		TranslateError: true,
		Logger:         gormLogger.Default.LogMode(gormLogger.Warn),
	})
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to open gorm: %w", err)
	}

	deps := &Dependencies{
		Config:   cfg,
		SQL:      sqlDB,
		DB:       gormDB,
		SQLX:     sqlx.NewDb(sqlDB, sqlDriver),
		EventBus: events.NewEventBus(lg),
		Logger:   lg,
	}

	var store session.Store = session.NewMemoryStore()
	if cfg.Session.Store == internal.SessionStoreRedis {
		client, err := session.ConnectRedis(ctx, session.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Timeout:  cfg.Redis.Timeout,
		})
		if err != nil {
			deps.Close()
			return nil, fmt.Errorf("failed to connect redis: %w", err)
		}
		deps.Redis = client
		store = session.NewRedisStore(client)
	}

	deps.Sessions = session.NewManager(store, session.Config{
		CookieName:  cfg.Session.CookieName,
		Secret:      cfg.Session.Secret,
		IdleTimeout: cfg.Session.IdleTimeout,
		Secure:      cfg.Session.SecureCookie,
	}, lg)

	deps.Mailer = mailer.New(mailer.Config{
		Host:        cfg.Mail.Host,
		Port:        cfg.Mail.Port,
		Username:    cfg.Mail.Username,
		Password:    cfg.Mail.Password,
		FromAddress: cfg.Mail.FromAddress,
		FromName:    cfg.Mail.FromName,
		TLSPolicy:   cfg.Mail.TLSPolicy,
		Timeout:     cfg.Mail.Timeout,
	}, lg)

	deps.wireServices()
	return deps, nil
}

func (d *Dependencies) wireServices() {
	cfg := d.Config
	lg := d.Logger

	d.Repos = Repositories{
		User:   userPostgres.NewUserRepository(d.DB),
		Borrow: borrowPostgres.NewBorrowRepository(d.DB),
	}

	d.Services.Auth = auth.NewService(authPostgres.NewRepository(d.DB), d.Mailer, d.EventBus, auth.Config{
		MasterKey:               cfg.Security.MasterKey,
		OTPTTL:                  cfg.Security.OTPTTL,
		MaxVerifyAttempts:       cfg.Security.MaxVerifyAttempts,
		BCryptCost:              cfg.Security.BCryptCost,
		ExposeCodeOnMailFailure: cfg.CodeFallbackAllowed(),
		ResetTokenTTL:           cfg.Security.ResetTokenTTL,
		BaseURL:                 cfg.App.BaseURL,
	}, lg)
	d.Services.User = user.NewService(d.Repos.User, d.Mailer, user.Config{BCryptCost: cfg.Security.BCryptCost}, lg)
	d.Services.Admin = admin.NewService(adminPostgres.NewAdminRepository(d.DB), cfg.Security.BCryptCost, lg)
	d.Services.Product = product.NewService(productPostgres.NewProductRepository(d.DB), cfg.Product.QRBaseURL, lg)
	d.Services.Borrow = borrow.NewService(d.Repos.Borrow, d.EventBus, lg)
	d.Services.Audit = audit.NewService(auditPostgres.NewAuditRepository(d.DB), lg)
	d.Services.Dashboard = dashboard.NewService(
		dashboardPostgres.NewStatsRepository(d.SQLX),
		d.Services.Product,
		d.Services.User,
		d.Services.Admin,
		d.Services.Borrow,
		d.Services.Audit,
		lg,
	)

	audit.NewEventHandler(d.Services.Audit, lg).RegisterEventHandlers(d.EventBus)
	notification.NewEventHandler(d.Repos.User, d.Mailer, lg).RegisterEventHandlers(d.EventBus)
}

// Close waits for in-flight event handlers, then releases connections.
func (d *Dependencies) Close() {
	if d.EventBus != nil {
		ctx, cancel := internal.WithTimeout(context.Background(), d.Config.Server.WriteTimeout)
		if err := d.EventBus.Drain(ctx); err != nil {
			d.Logger.Warn("event handlers still running at shutdown", "error", err)
		}
		cancel()
	}
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			d.Logger.Error("redis close error", "error", err)
		}
	}
	if d.SQL != nil {
		if err := d.SQL.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
			d.Logger.Error("database close error", "error", err)
		}
	}
}

// initDB opens the pgx stdlib pool shared by gorm, sqlx and goose.
func initDB(ctx context.Context, cfg internal.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open(sqlDriver, cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	pingCtx, cancel := internal.WithTimeout(ctx, 0)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
