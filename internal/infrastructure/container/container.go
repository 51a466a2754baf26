package container

import (
	"database/sql"

	"multinic-controller/internal/application/usecases"
	"multinic-controller/internal/domain/interfaces"
	"multinic-controller/internal/domain/services"
	"multinic-controller/internal/infrastructure/adapters"
	"multinic-controller/internal/infrastructure/api"
	"multinic-controller/internal/infrastructure/config"
	"multinic-controller/internal/infrastructure/health"
	"multinic-controller/internal/infrastructure/persistence"
	"multinic-controller/pkg/db"
	"multinic-controller/pkg/utils"

	"github.com/sirupsen/logrus"
)

// Container는 의존성 주입을 관리하는 컨테이너입니다
type Container struct {
	config *config.Config
	logger *logrus.Logger

	// 인프라스트럭처 어댑터들
	clock interfaces.Clock

	// 서비스들
	healthService *health.HealthService
	namingService *services.InterfaceNamingService
	reconciler    *services.Reconciler

	// 레포지토리
	repository      *persistence.MySQLRepository
	leaseRepository interfaces.LeaseRepository

	// 유스케이스
	reconcileInterfaceUseCase *usecases.ReconcileInterfaceUseCase
	updateLeasesUseCase       *usecases.UpdateLeasesUseCase
	cleanupOrphanEdgesUseCase *usecases.CleanupOrphanEdgesUseCase

	// API 서버
	apiServer *api.Server

	// 데이터베이스
	db *sql.DB
}

// NewContainer는 새로운 Container를 생성합니다
func NewContainer(cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	container := &Container{
		config: cfg,
		logger: logger,
	}

	if err := container.initializeInfrastructure(); err != nil {
		return nil, err
	}

	if err := container.initializeServices(); err != nil {
		return nil, err
	}

	if err := container.initializeUseCases(); err != nil {
		return nil, err
	}

	return container, nil
}

// initializeInfrastructure는 인프라스트럭처 컴포넌트들을 초기화합니다
func (c *Container) initializeInfrastructure() error {
	c.clock = adapters.NewRealClock()

	// 데이터베이스 연결
	conn, err := db.Open(db.Config{
		Host:         c.config.Database.Host,
		Port:         c.config.Database.Port,
		User:         c.config.Database.User,
		Password:     c.config.Database.Password,
		Database:     c.config.Database.Database,
		MaxOpenConns: c.config.Database.MaxOpenConns,
		MaxIdleConns: c.config.Database.MaxIdleConns,
		MaxLifetime:  c.config.Database.MaxLifetime,
	})
	if err != nil {
		return err
	}
	c.db = conn

	// 레포지토리 초기화
	c.repository = persistence.NewMySQLRepository(c.db, c.logger)
	c.leaseRepository = persistence.NewMySQLLeaseRepository(c.db, c.logger)

	return nil
}

// initializeServices는 서비스들을 초기화합니다
func (c *Container) initializeServices() error {
	// 헬스 서비스
	c.healthService = health.NewHealthService(c.clock, c.logger)

	// 인터페이스 네이밍 서비스
	c.namingService = services.NewInterfaceNamingService()

	// 조정 엔진 (MySQLRepository가 VLAN 디렉터리를 겸합니다)
	c.reconciler = services.NewReconciler(c.repository, c.namingService)

	return nil
}

// initializeUseCases는 유스케이스들을 초기화합니다
func (c *Container) initializeUseCases() error {
	retryCfg := utils.RetryConfig{
		MaxAttempts:  c.config.Retry.MaxAttempts,
		InitialDelay: c.config.Retry.InitialDelay,
		MaxDelay:     c.config.Retry.MaxDelay,
		Multiplier:   utils.DefaultRetryConfig.Multiplier,
	}

	// 인터페이스 조정 유스케이스
	c.reconcileInterfaceUseCase = usecases.NewReconcileInterfaceUseCase(
		c.repository,
		c.reconciler,
		retryCfg,
		c.logger,
	)

	// DHCP 리스 갱신 유스케이스
	c.updateLeasesUseCase = usecases.NewUpdateLeasesUseCase(
		c.leaseRepository,
		retryCfg,
		c.logger,
	)

	// 고아 간선 정리 유스케이스
	c.cleanupOrphanEdgesUseCase = usecases.NewCleanupOrphanEdgesUseCase(
		c.repository,
		c.logger,
	)

	// API 서버
	c.apiServer = api.NewServer(
		c.reconcileInterfaceUseCase,
		c.updateLeasesUseCase,
		c.healthService,
		c.logger,
	)

	return nil
}

// GetConfig는 설정을 반환합니다
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetHealthService는 헬스 서비스를 반환합니다
func (c *Container) GetHealthService() *health.HealthService {
	return c.healthService
}

// GetAPIServer는 API 서버를 반환합니다
func (c *Container) GetAPIServer() *api.Server {
	return c.apiServer
}

// GetReconcileInterfaceUseCase는 인터페이스 조정 유스케이스를 반환합니다
func (c *Container) GetReconcileInterfaceUseCase() *usecases.ReconcileInterfaceUseCase {
	return c.reconcileInterfaceUseCase
}

// GetUpdateLeasesUseCase는 리스 갱신 유스케이스를 반환합니다
func (c *Container) GetUpdateLeasesUseCase() *usecases.UpdateLeasesUseCase {
	return c.updateLeasesUseCase
}

// GetCleanupOrphanEdgesUseCase는 고아 간선 정리 유스케이스를 반환합니다
func (c *Container) GetCleanupOrphanEdgesUseCase() *usecases.CleanupOrphanEdgesUseCase {
	return c.cleanupOrphanEdgesUseCase
}

// GetDB는 데이터베이스 연결을 반환합니다
func (c *Container) GetDB() *sql.DB {
	return c.db
}

// Close는 컨테이너를 정리합니다
func (c *Container) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}
