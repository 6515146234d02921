package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/careflow/careflow/internal/config"
	"github.com/careflow/careflow/internal/domain/account"
	"github.com/careflow/careflow/internal/domain/appointment"
	"github.com/careflow/careflow/internal/domain/establishment"
	"github.com/careflow/careflow/internal/domain/identity"
	"github.com/careflow/careflow/internal/domain/insurance"
	"github.com/careflow/careflow/internal/platform/auth"
	"github.com/careflow/careflow/internal/platform/db"
	"github.com/careflow/careflow/internal/platform/middleware"
	"github.com/careflow/careflow/internal/platform/notification"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "careflow-server",
		Short: "CareFlow appointment and coverage API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the CareFlow API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if dir == "" {
				dir = cfg.MigrationsDir
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, db.PoolConfig{MaxConns: cfg.DBMaxConns, MinConns: cfg.DBMinConns})
			if err != nil {
				return err
			}
			defer pool.Close()

			count, err := db.NewMigrator(pool, dir).Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s).\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "", "Path to migrations directory (defaults to MIGRATIONS_DIR)")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if dir == "" {
				dir = cfg.MigrationsDir
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, db.PoolConfig{MaxConns: cfg.DBMaxConns, MinConns: cfg.DBMinConns})
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, dir).Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "", "Path to migrations directory (defaults to MIGRATIONS_DIR)")
	cmd.AddCommand(statusCmd)

	return cmd
}

func runServer() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, db.PoolConfig{MaxConns: cfg.DBMaxConns, MinConns: cfg.DBMinConns})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeoutDuration()))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	jwtCfg := auth.JWTConfig{
		Issuer:     cfg.JWTIssuer,
		SigningKey: []byte(cfg.JWTSecret),
	}
	if cfg.IsDev() {
		e.Use(auth.DevAuthMiddleware())
	} else {
		e.Use(auth.JWTMiddleware(jwtCfg))
	}

	apiV1 := e.Group("/api/v1")

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	txRunner := func(ctx context.Context, fn func(ctx context.Context) error) error {
		return db.InTx(ctx, pool, fn)
	}

	// Accounts
	acctRepo := account.NewRepo(pool)
	acctSvc := account.NewService(acctRepo, jwtCfg, cfg.TokenTTLDuration())
	account.NewHandler(acctSvc).RegisterRoutes(apiV1)

	// Identity
	patientRepo := identity.NewPatientRepo(pool)
	doctorRepo := identity.NewDoctorRepo(pool)
	affRepo := identity.NewAffiliationRepo(pool)
	identitySvc := identity.NewService(patientRepo, doctorRepo, affRepo)
	identity.NewHandler(identitySvc).RegisterRoutes(apiV1)

	// Establishments and their care services
	estRepo := establishment.NewRepo(pool)
	careSvcRepo := establishment.NewServiceRepo(pool)
	estSvc := establishment.NewService(estRepo, careSvcRepo)
	establishment.NewHandler(estSvc).RegisterRoutes(apiV1)

	// Insurance
	companyRepo := insurance.NewCompanyRepo(pool)
	planRepo := insurance.NewPlanRepo(pool)
	policyRepo := insurance.NewPolicyRepo(pool)
	agreementRepo := insurance.NewAgreementRepo(pool)
	insSvc := insurance.NewService(companyRepo, planRepo, policyRepo, agreementRepo)
	insSvc.SetTxRunner(txRunner)
	insurance.NewHandler(insSvc).RegisterRoutes(apiV1)

	// Notifications: delivery log with logging transports. Real SMTP and SMS
	// gateways plug in behind the sender interfaces.
	notifyMgr := notification.NewManager(
		&logEmailSender{logger: logger},
		&logSMSSender{logger: logger},
		notification.NewTemplateEngine(),
	)
	notification.NewHandler(notifyMgr).RegisterRoutes(apiV1)

	// Appointments
	apptRepo := appointment.NewRepo(pool)
	apptSvc := appointment.NewService(apptRepo, identitySvc, identitySvc, estSvc, insSvc)
	apptSvc.SetTxRunner(txRunner)
	apptSvc.SetNotifier(&lifecycleNotifier{
		manager:        notifyMgr,
		appointments:   apptRepo,
		patients:       identitySvc,
		doctors:        identitySvc,
		establishments: estSvc,
	})
	appointment.NewHandler(apptSvc).RegisterRoutes(apiV1)

	addr := ":" + cfg.Port
	logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting server")
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("server stopped")
	}
	return nil
}

// logEmailSender records outbound email in the server log. Stands in for an
// SMTP transport.
type logEmailSender struct {
	logger zerolog.Logger
}

func (s *logEmailSender) SendEmail(_ context.Context, to, subject, body string) error {
	s.logger.Info().Str("to", to).Str("subject", subject).Int("body_len", len(body)).Msg("email dispatched")
	return nil
}

// logSMSSender records outbound SMS in the server log. Stands in for a
// telco gateway client.
type logSMSSender struct {
	logger zerolog.Logger
}

func (s *logSMSSender) SendSMS(_ context.Context, to, body string) error {
	s.logger.Info().Str("to", to).Int("body_len", len(body)).Msg("sms dispatched")
	return nil
}

type patientContacts interface {
	GetPatient(ctx context.Context, id uuid.UUID) (*identity.Patient, error)
}

type doctorContacts interface {
	GetDoctor(ctx context.Context, id uuid.UUID) (*identity.Doctor, error)
}

type establishmentSource interface {
	GetEstablishment(ctx context.Context, id uuid.UUID) (*establishment.Establishment, error)
	GetCareService(ctx context.Context, id uuid.UUID) (*establishment.CareService, error)
}

// lifecycleNotifier adapts appointment lifecycle events to the notification
// manager, resolving recipient contact details through the identity service.
// It lives in main to keep the appointment and notification packages
// decoupled.
type lifecycleNotifier struct {
	manager        *notification.Manager
	appointments   appointment.Repository
	patients       patientContacts
	doctors        doctorContacts
	establishments establishmentSource
}

func (n *lifecycleNotifier) Notify(ctx context.Context, ev appointment.Event) error {
	var templateID, smsTemplateID string
	switch ev.Kind {
	case appointment.EventCreated:
		templateID = notification.TemplateAppointmentBooked
		smsTemplateID = notification.TemplateAppointmentBookedSMS
	case appointment.EventCancelled:
		templateID = notification.TemplateAppointmentCancelled
		smsTemplateID = notification.TemplateAppointmentCancelledSMS
	default:
		return nil
	}

	appt, err := n.appointments.GetByID(ctx, ev.AppointmentID)
	if err != nil {
		return err
	}
	est, err := n.establishments.GetEstablishment(ctx, appt.EstablishmentID)
	if err != nil {
		return err
	}

	data := map[string]string{
		"establishment":  est.Name,
		"date":           appt.ScheduledAt.Format("2006-01-02"),
		"time":           appt.ScheduledAt.Format("15:04"),
		"patient_amount": strconv.FormatInt(appt.PatientAmount, 10),
		"covered_amount": strconv.FormatInt(appt.CoveredAmount, 10),
		"reason":         "not specified",
	}
	if appt.Reason != nil {
		data["reason"] = *appt.Reason
	}
	if cs, err := n.establishments.GetCareService(ctx, appt.CareServiceID); err == nil {
		data["service"] = cs.Name
	}

	var firstErr error
	for _, recipient := range ev.Recipients {
		name, email, phone := n.resolveContact(ctx, recipient)
		if name == "" {
			continue
		}
		data["recipient_name"] = name

		switch {
		case email != "":
			_, err = n.manager.SendFromTemplate(ctx, templateID, data, email)
		case phone != "":
			_, err = n.manager.SendFromTemplate(ctx, smsTemplateID, data, phone)
		default:
			continue
		}
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (n *lifecycleNotifier) resolveContact(ctx context.Context, id uuid.UUID) (name, email, phone string) {
	if p, err := n.patients.GetPatient(ctx, id); err == nil {
		if p.Email != nil {
			email = *p.Email
		}
		return p.FullName(), email, p.Phone
	}
	if d, err := n.doctors.GetDoctor(ctx, id); err == nil {
		if d.Email != nil {
			email = *d.Email
		}
		return d.FullName(), email, d.Phone
	}
	return "", "", ""
}
