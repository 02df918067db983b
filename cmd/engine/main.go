package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cmlabs-hris/attendance-engine-go/internal/config"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/cron"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/dedup"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/messaging"
	"github.com/cmlabs-hris/attendance-engine-go/internal/repository/postgresql"
	"github.com/cmlabs-hris/attendance-engine-go/internal/service/overtime"
	reportService "github.com/cmlabs-hris/attendance-engine-go/internal/service/report"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	setupLogger(cfg.App.LogLevel)

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	mq, err := messaging.Connect(cfg.AMQP.URL)
	if err != nil {
		slog.Error("Failed to connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer mq.Close()

	sink, err := messaging.NewSink(mq, cfg.AMQP.Exchange)
	if err != nil {
		slog.Error("Failed to initialize notification sink", "error", err)
		os.Exit(1)
	}

	attendanceRepo := postgresql.NewAttendanceRepository(db)
	orgRepo := postgresql.NewOrganizationRepository(db)
	hoursRepo := postgresql.NewWorkingHoursRepository(db)
	rosterRepo := postgresql.NewRosterRepository(db)
	targetRepo := postgresql.NewTargetRepository(db)

	loc := cfg.Location()

	overtimeGuard := dedup.NewCache(cfg.Engine.DedupTTL)
	defer overtimeGuard.Stop()
	reportGuard := dedup.NewCache(cfg.Engine.DedupTTL)
	defer reportGuard.Stop()

	overtimeSvc := overtime.NewService(
		orgRepo, hoursRepo, attendanceRepo, sink, overtimeGuard,
		cfg.Engine.ScanInterval, loc,
	)
	reportSvc := reportService.NewService(
		attendanceRepo, rosterRepo, targetRepo, hoursRepo, sink, reportGuard, loc,
	)

	scheduler := cron.NewScheduler()
	jobs := cron.NewEngineJobs(orgRepo, hoursRepo, overtimeSvc, reportSvc,
		cfg.Engine.ScanInterval, loc)
	jobs.RegisterJobs(scheduler)
	scheduler.Start()

	slog.Info("Attendance engine running",
		"timezone", cfg.Engine.Timezone,
		"scan_interval", cfg.Engine.ScanInterval)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down...")
	scheduler.Stop()
}

func setupLogger(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
