package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"multinic-controller/internal/application/polling"
	"multinic-controller/internal/application/usecases"
	"multinic-controller/internal/infrastructure/config"
	"multinic-controller/internal/infrastructure/container"
	"multinic-controller/internal/infrastructure/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

const version = "0.1.0"

func main() {
	// 로거 초기화
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// LOG_LEVEL 환경 변수 설정
	logLevelStr := os.Getenv("LOG_LEVEL")
	if logLevelStr != "" {
		logLevel, err := logrus.ParseLevel(logLevelStr)
		if err != nil {
			logger.WithError(err).Warnf("Unknown LOG_LEVEL value: %s. Using default Info level.", logLevelStr)
			logger.SetLevel(logrus.InfoLevel) // Fallback to Info
		} else {
			logger.SetLevel(logLevel)
		}
	} else {
		logger.SetLevel(logrus.InfoLevel) // Default to Info if not set
	}

	// 설정 로드 (CONFIG_FILE이 지정되면 YAML 파일이 환경 변수를 덮어씁니다)
	var configLoader config.ConfigLoader
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		configLoader = config.NewFileConfigLoader(path)
	} else {
		configLoader = config.NewEnvironmentConfigLoader()
	}
	cfg, err := configLoader.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	// 의존성 주입 컨테이너 생성
	appContainer, err := container.NewContainer(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create dependency injection container")
	}
	defer func() {
		if err := appContainer.Close(); err != nil {
			logger.WithError(err).Error("Failed to cleanup container")
		}
	}()

	// 애플리케이션 시작
	app := NewApplication(appContainer, logger)
	if err := app.Run(); err != nil {
		logger.WithError(err).Fatal("Failed to run application")
	}
}

// Application은 메인 애플리케이션 구조체입니다
type Application struct {
	container      *container.Container
	logger         *logrus.Logger
	cleanupUseCase *usecases.CleanupOrphanEdgesUseCase
	healthServer   *http.Server
	apiServer      *http.Server
}

// NewApplication은 새로운 Application을 생성합니다
func NewApplication(container *container.Container, logger *logrus.Logger) *Application {
	return &Application{
		container:      container,
		logger:         logger,
		cleanupUseCase: container.GetCleanupOrphanEdgesUseCase(),
	}
}

// Run은 애플리케이션을 실행합니다
func (a *Application) Run() error {
	cfg := a.container.GetConfig()

	// 컨트롤러 정보 메트릭 설정
	hostname, _ := os.Hostname()
	metrics.SetBuildInfo(version, hostname)

	// 헬스체크 서버 시작
	if err := a.startHealthServer(cfg.Health.Port); err != nil {
		return err
	}

	// API 서버 시작
	if err := a.startAPIServer(cfg.API.Port); err != nil {
		return err
	}

	// 컨텍스트 및 시그널 핸들링 설정
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// 스윕 전략 설정
	var strategy polling.Strategy
	if cfg.Sweep.Backoff.Enabled {
		// 연속 실패 시 간격을 늘리는 지수 백오프 전략 사용
		strategy = polling.NewExponentialBackoffStrategy(
			cfg.Sweep.Interval,
			cfg.Sweep.Backoff.MaxInterval,
			cfg.Sweep.Backoff.Multiplier,
			a.logger,
		)
		a.logger.WithFields(logrus.Fields{
			"base_interval": cfg.Sweep.Interval,
			"max_interval":  cfg.Sweep.Backoff.MaxInterval,
			"multiplier":    cfg.Sweep.Backoff.Multiplier,
		}).Info("Exponential backoff sweep enabled")
	} else {
		strategy = polling.NewFixedIntervalStrategy(cfg.Sweep.Interval)
		a.logger.WithField("interval", cfg.Sweep.Interval).Info("Fixed interval sweep enabled")
	}

	// 스윕 컨트롤러 생성
	sweepController := polling.NewPollingController(strategy, a.logger)

	a.logger.Info("MultiNIC controller started")

	// 시그널 처리를 위한 goroutine
	go func() {
		<-sigChan
		a.logger.Info("Received shutdown signal")
		a.shutdown()
		cancel()
	}()

	// 주기적 스윕 시작
	return sweepController.Start(ctx, func(ctx context.Context) error {
		err := a.runSweep(ctx)
		if err != nil {
			a.logger.WithError(err).Error("Failed to run cleanup sweep")
			a.container.GetHealthService().UpdateDBHealth(false, err)
			metrics.SetDBConnectionStatus(false)
			return err
		}
		a.container.GetHealthService().UpdateDBHealth(true, nil)
		metrics.SetDBConnectionStatus(true)
		return nil
	})
}

// startHealthServer는 헬스체크 서버를 시작합니다
func (a *Application) startHealthServer(port string) error {
	healthService := a.container.GetHealthService()

	// HTTP 핸들러 설정
	mux := http.NewServeMux()
	mux.Handle("/", healthService)
	mux.Handle("/metrics", promhttp.Handler())

	a.healthServer = &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}

	go func() {
		a.logger.WithField("port", port).Info("Health check server started (with /metrics)")
		if err := a.healthServer.ListenAndServe(); err != http.ErrServerClosed {
			a.logger.WithError(err).Error("Health check server failed")
		}
	}()

	return nil
}

// startAPIServer는 REST API 서버를 시작합니다
func (a *Application) startAPIServer(port string) error {
	a.apiServer = &http.Server{
		Addr:    ":" + port,
		Handler: a.container.GetAPIServer().Routes(),
	}

	go func() {
		a.logger.WithField("port", port).Info("API server started")
		if err := a.apiServer.ListenAndServe(); err != http.ErrServerClosed {
			a.logger.WithError(err).Error("API server failed")
		}
	}()

	return nil
}

// runSweep은 한 번의 정리 스윕을 실행합니다
func (a *Application) runSweep(ctx context.Context) error {
	startTime := time.Now()

	output, err := a.cleanupUseCase.Execute(ctx, usecases.CleanupOrphanEdgesInput{})
	if err != nil {
		return err
	}

	if output.TotalDeleted > 0 || len(output.Errors) > 0 {
		a.logger.WithFields(logrus.Fields{
			"deleted_total": output.TotalDeleted,
			"sweep_errors":  len(output.Errors),
		}).Info("Cleanup sweep completed")
	}

	// 개별 간선 삭제 실패는 치명적이지 않으므로 경고로만 남김
	for _, sweepErr := range output.Errors {
		a.logger.WithError(sweepErr).Warn("Error occurred during orphan edge cleanup")
	}

	metrics.RecordSweepCycle(time.Since(startTime).Seconds())

	return nil
}

// shutdown은 HTTP 서버들을 정리합니다
func (a *Application) shutdown() {
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if a.apiServer != nil {
		if err := a.apiServer.Shutdown(shutdownCtx); err != nil {
			a.logger.WithError(err).Error("Failed to shutdown API server")
		}
	}
	if a.healthServer != nil {
		if err := a.healthServer.Shutdown(shutdownCtx); err != nil {
			a.logger.WithError(err).Error("Failed to shutdown health check server")
		}
	}
}
