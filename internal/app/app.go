package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cashclear/cashclear-pro/internal/audit"
	"github.com/cashclear/cashclear-pro/internal/config"
	"github.com/cashclear/cashclear-pro/internal/db"
	"github.com/cashclear/cashclear-pro/internal/directory"
	"github.com/cashclear/cashclear-pro/internal/events/kafka"
	cchttp "github.com/cashclear/cashclear-pro/internal/http"
	"github.com/cashclear/cashclear-pro/internal/http/api/admin"
	"github.com/cashclear/cashclear-pro/internal/http/api/front"
	"github.com/cashclear/cashclear-pro/internal/ledger"
	"github.com/cashclear/cashclear-pro/internal/logging"
	"github.com/cashclear/cashclear-pro/internal/lotto"
	"github.com/cashclear/cashclear-pro/internal/models"
	"github.com/cashclear/cashclear-pro/internal/notify"
	"github.com/cashclear/cashclear-pro/internal/security"
	"github.com/cashclear/cashclear-pro/internal/session"
	"github.com/cashclear/cashclear-pro/internal/settings"
	"github.com/cashclear/cashclear-pro/internal/util"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	shutdownTimeout = 10 * time.Second
	// provisionActor is recorded on entries written by bootstrap provisioning.
	provisionActor = "SYSTEM"
	// stalePendingAge is how long a voucher may stay reserved before startup reverses it.
	stalePendingAge = 10 * time.Minute
)

// ErrMissingAdminPassword is returned when the bootstrap administrator must be created
// but no password is configured.
var ErrMissingAdminPassword = errors.New("app: bootstrap admin password is required")

// ProvisionResult describes the outcome of Provision.
type ProvisionResult struct {
	AdminID  string
	Created  bool
	Location string
}

// Migrate opens the database and runs migrations.
func Migrate(ctx context.Context, cfg config.AppConfig) error {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)
	dsn, err := config.LoadDatabaseDSN(configPath)
	if err != nil {
		return err
	}
	conn, err := db.Open(dsn)
	if err != nil {
		return err
	}
	defer closeDB(conn)
	return db.Migrate(conn)
}

// Provision migrates the database and creates the bootstrap administrator when missing.
// An existing administrator keeps its password and balance.
func Provision(ctx context.Context, cfg config.AppConfig) (ProvisionResult, error) {
	conf, err := config.Load(config.ResolveConfigPath(cfg.ConfigPath))
	if err != nil {
		return ProvisionResult{}, err
	}
	conn, err := openAndMigrate(conf)
	if err != nil {
		return ProvisionResult{}, err
	}
	defer closeDB(conn)
	return provisionAdmin(ctx, conn, conf)
}

func provisionAdmin(ctx context.Context, conn *gorm.DB, conf *config.Config) (ProvisionResult, error) {
	dir := directory.New(conn, conf.Ledger.LegacyHashSalt)
	boot := conf.Bootstrap
	adminID := ledger.NormalizeOperatorID(boot.AdminID)

	existing, errLookup := dir.Lookup(ctx, adminID)
	if errLookup == nil {
		return ProvisionResult{AdminID: existing.ID, Location: existing.Location}, nil
	}
	if !errors.Is(errLookup, directory.ErrOperatorNotFound) {
		return ProvisionResult{}, errLookup
	}
	if strings.TrimSpace(boot.AdminPassword) == "" {
		return ProvisionResult{}, ErrMissingAdminPassword
	}

	entry, created, errProvision := dir.Provision(ctx, directory.CreateParams{
		ID:       adminID,
		Password: boot.AdminPassword,
		Role:     models.RoleAdmin,
		Location: boot.AdminLocation,
		Balance:  decimal.NewFromFloat(boot.AdminBalance).Round(2),
		ActorID:  provisionActor,
	})
	if errProvision != nil {
		return ProvisionResult{}, errProvision
	}
	if created {
		audit.NewRecorder(conn).Log(ctx, audit.KindOperatorCreated, "", map[string]any{
			"operator": entry.ID,
			"role":     entry.Role,
			"location": entry.Location,
			"balance":  entry.Balance.StringFixed(2),
		})
		log.WithField("operator", entry.ID).Info("bootstrap administrator created")
	}
	return ProvisionResult{AdminID: entry.ID, Created: created, Location: entry.Location}, nil
}

// RotateBreakGlass replaces the break-glass secret and returns the enrolment key.
func RotateBreakGlass(ctx context.Context, cfg config.AppConfig, actorID string) (security.BreakGlassKey, error) {
	conf, err := config.Load(config.ResolveConfigPath(cfg.ConfigPath))
	if err != nil {
		return security.BreakGlassKey{}, err
	}
	conn, err := openAndMigrate(conf)
	if err != nil {
		return security.BreakGlassKey{}, err
	}
	defer closeDB(conn)

	settingsStore := settings.NewStore(conn)
	if errRefresh := settingsStore.Refresh(ctx); errRefresh != nil {
		return security.BreakGlassKey{}, errRefresh
	}
	manager := session.NewManager(
		directory.New(conn, conf.Ledger.LegacyHashSalt),
		session.NewGormStore(conn),
		settingsStore,
		audit.NewRecorder(conn),
		session.ManagerOptions{Secret: conf.JWT.Secret, BreakGlassEnabled: conf.BreakGlass.Enabled, BreakGlassIssuer: conf.BreakGlass.Issuer},
	)
	return manager.RotateBreakGlass(ctx, actorID)
}

// RunServer boots the HTTP API with database-backed components and blocks until ctx is done.
func RunServer(ctx context.Context, cfg config.AppConfig) error {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)
	conf, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if errValidate := conf.Validate(); errValidate != nil {
		return errValidate
	}
	logCloser, errLog := logging.Setup(conf.Logging)
	if errLog != nil {
		return errLog
	}
	defer func() { _ = logCloser.Close() }()
	if !config.ConfigExists(configPath) {
		log.Warnf("config file %s not found, using defaults and environment", configPath)
	}

	conn, err := openAndMigrate(conf)
	if err != nil {
		return err
	}
	defer closeDB(conn)

	svc, closers, err := buildServices(ctx, conn, conf)
	if err != nil {
		return err
	}
	defer func() {
		for _, closer := range closers {
			if errClose := closer.Close(); errClose != nil {
				log.WithError(errClose).Warn("close component failed")
			}
		}
	}()

	if _, errRelease := svc.Ledger.ReleaseStalePending(ctx, stalePendingAge); errRelease != nil {
		log.WithError(errRelease).Warn("release stale pending vouchers failed")
	}

	if _, errProvision := provisionAdmin(ctx, conn, conf); errProvision != nil {
		if !errors.Is(errProvision, ErrMissingAdminPassword) {
			return errProvision
		}
		log.Warn("bootstrap administrator not provisioned: no admin password configured")
	}

	server := &http.Server{
		Addr:              conf.ListenAddr(),
		Handler:           newEngine(svc, conf.Logging.Level),
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		log.Infof("starting cashclear with config=%s on %s", configPath, server.Addr)
		if errServe := server.ListenAndServe(); errServe != nil && !errors.Is(errServe, http.ErrServerClosed) {
			serveErr <- errServe
		}
		close(serveErr)
	}()

	select {
	case errServe := <-serveErr:
		return errServe
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	log.Info("shutting down")
	return server.Shutdown(shutdownCtx)
}

// newEngine builds the gin engine with every route group registered.
func newEngine(svc cchttp.Services, level string) *gin.Engine {
	if !strings.EqualFold(level, "debug") {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(logging.GinLogger(), logging.GinRecovery())
	admin.RegisterAdminRoutes(engine, svc)
	front.RegisterTerminalRoutes(engine, svc)
	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
	return engine
}

// buildServices wires the domain components from configuration. The returned closers are
// released in order on shutdown.
func buildServices(ctx context.Context, conn *gorm.DB, conf *config.Config) (cchttp.Services, []io.Closer, error) {
	var closers []io.Closer

	settingsStore := settings.NewStore(conn)
	if errRefresh := settingsStore.Refresh(ctx); errRefresh != nil {
		return cchttp.Services{}, nil, fmt.Errorf("load settings: %w", errRefresh)
	}

	notifier, errNotifier := buildNotifier(conf.Notify)
	if errNotifier != nil {
		return cchttp.Services{}, nil, errNotifier
	}

	var publisher ledger.EventPublisher = ledger.NopPublisher{}
	if len(conf.Events.Kafka.Brokers) > 0 {
		kafkaPublisher := kafka.NewPublisher(conf.Events.Kafka.Brokers, conf.Events.Kafka.Topic)
		publisher = kafkaPublisher
		closers = append(closers, kafkaPublisher)
		log.WithFields(log.Fields{
			"brokers": strings.Join(conf.Events.Kafka.Brokers, ","),
			"topic":   conf.Events.Kafka.Topic,
		}).Info("voucher events publishing to kafka")
	}

	ledgerSvc := ledger.NewService(conn, ledger.Options{
		Notifier: notifier,
		Events:   publisher,
		Contacts: ledger.ContactPolicy{
			CountryCode:    conf.Ledger.Contact.CountryCode,
			NationalDigits: conf.Ledger.Contact.NationalDigits,
		},
		Codes:        ledger.NewCodeGenerator(conf.Ledger.CodeStyle),
		CodePrefix:   conf.Ledger.CodePrefix,
		ValidityDays: conf.Ledger.ValidityDays,
		Currency:     conf.Ledger.CurrencySymbol,
		Tunables:     settingsStore,
	})

	dir := directory.New(conn, conf.Ledger.LegacyHashSalt)
	recorder := audit.NewRecorder(conn)

	store, storeCloser, errStore := buildSessionStore(ctx, conn, conf.Sessions)
	if errStore != nil {
		return cchttp.Services{}, closers, errStore
	}
	if storeCloser != nil {
		closers = append(closers, storeCloser)
	}

	manager := session.NewManager(dir, store, settingsStore, recorder, session.ManagerOptions{
		Secret:            conf.JWT.Secret,
		TTL:               conf.Sessions.TTL,
		BreakGlassTTL:     conf.Sessions.BreakGlassTTL,
		BreakGlassEnabled: conf.BreakGlass.Enabled,
		BreakGlassIssuer:  conf.BreakGlass.Issuer,
	})

	return cchttp.Services{
		DB:        conn,
		Ledger:    ledgerSvc,
		Directory: dir,
		Sessions:  manager,
		Settings:  settingsStore,
		Audit:     recorder,
		Lotto:     lotto.NewGenerator(nil),
		BackupDir: util.BackupDir(),
	}, closers, nil
}

// buildNotifier selects the voucher delivery channel.
func buildNotifier(cfg config.NotifyConfig) (notify.Sender, error) {
	switch cfg.Driver {
	case "twilio":
		sender, errSender := notify.NewTwilioSender(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.From, cfg.Twilio.Timeout)
		if errSender != nil {
			return nil, errSender
		}
		log.WithFields(log.Fields{
			"account": util.HideSecret(cfg.Twilio.AccountSID),
			"from":    cfg.Twilio.From,
		}).Info("voucher delivery via twilio whatsapp")
		return sender, nil
	default:
		log.Warn("voucher delivery uses the log sender; recipients will not receive messages")
		return notify.LogSender{}, nil
	}
}

// buildSessionStore selects the session store. The gorm store gets a background sweeper.
func buildSessionStore(ctx context.Context, conn *gorm.DB, cfg config.SessionsConfig) (session.Store, io.Closer, error) {
	if cfg.Store == "redis" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if errPing := client.Ping(pingCtx).Err(); errPing != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("redis session store: %w", errPing)
		}
		log.WithField("addr", cfg.Redis.Addr).Info("sessions stored in redis")
		return session.NewRedisStore(client, cfg.Redis.Prefix), client, nil
	}
	store := session.NewGormStore(conn)
	session.NewSweeper(store, 0).Start(ctx)
	return store, nil, nil
}

func openAndMigrate(conf *config.Config) (*gorm.DB, error) {
	conn, err := db.Open(conf.Database.DSN)
	if err != nil {
		return nil, err
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		closeDB(conn)
		return nil, errMigrate
	}
	return conn, nil
}

func closeDB(conn *gorm.DB) {
	sqlDB, err := conn.DB()
	if err != nil {
		return
	}
	if errClose := sqlDB.Close(); errClose != nil {
		log.WithError(errClose).Warn("close database failed")
	}
}
