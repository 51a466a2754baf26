package usecases

import (
	"context"

	"multinic-controller/internal/domain/entities"
	domainErrors "multinic-controller/internal/domain/errors"
	"multinic-controller/internal/domain/interfaces"
	"multinic-controller/internal/infrastructure/metrics"
	"multinic-controller/pkg/utils"

	"github.com/sirupsen/logrus"
)

// UpdateLeasesUseCase는 클러스터가 보고한 DHCP 리스 묶음을 반영하는
// 유스케이스입니다. 클러스터의 리스 집합을 보고된 집합으로 교체하고,
// 리스에 나타난 MAC과 일치하는 인터페이스의 관측 정보를 갱신합니다.
type UpdateLeasesUseCase struct {
	repository interfaces.LeaseRepository
	retryCfg   utils.RetryConfig
	logger     *logrus.Logger
}

// NewUpdateLeasesUseCase는 새로운 UpdateLeasesUseCase를 생성합니다
func NewUpdateLeasesUseCase(
	repo interfaces.LeaseRepository,
	retryCfg utils.RetryConfig,
	logger *logrus.Logger,
) *UpdateLeasesUseCase {
	return &UpdateLeasesUseCase{
		repository: repo,
		retryCfg:   retryCfg,
		logger:     logger,
	}
}

// UpdateLeasesInput은 유스케이스의 입력 파라미터입니다
type UpdateLeasesInput struct {
	ClusterUUID string
	Mappings    []entities.LeaseMapping
}

// UpdateLeasesOutput은 유스케이스의 출력 결과입니다
type UpdateLeasesOutput struct {
	LeaseCount        int
	TouchedInterfaces int
}

// Execute는 리스 갱신 유스케이스를 실행합니다
func (uc *UpdateLeasesUseCase) Execute(ctx context.Context, input UpdateLeasesInput) (*UpdateLeasesOutput, error) {
	if err := utils.ValidateClusterUUID(input.ClusterUUID); err != nil {
		metrics.RecordLeaseUpdate("failed", 0)
		return nil, domainErrors.NewValidationError("클러스터 UUID 검증 실패", err)
	}

	// 같은 IP가 여러 번 보고되면 마지막 항목이 우선
	leases := entities.ConvertMappingsToLeases(input.Mappings)
	for ip := range leases {
		if err := utils.ValidateIPAddress(ip); err != nil {
			metrics.RecordLeaseUpdate("failed", 0)
			return nil, domainErrors.NewValidationError("리스 IP 검증 실패", err)
		}
	}

	cluster, err := uc.repository.GetClusterByUUID(ctx, input.ClusterUUID)
	if err != nil {
		metrics.RecordLeaseUpdate("failed", 0)
		return nil, err
	}

	var touched int
	err = utils.RetryWithBackoff(ctx, uc.retryCfg, domainErrors.IsConflictError, func() error {
		return uc.repository.WithinTransaction(ctx, func(ctx context.Context) error {
			if err := uc.repository.ReplaceClusterLeases(ctx, cluster.ID, leases); err != nil {
				return err
			}
			var err error
			touched, err = uc.repository.TouchInterfacesByMAC(ctx, leases)
			return err
		})
	})
	if err != nil {
		metrics.RecordLeaseUpdate("failed", 0)
		return nil, err
	}

	metrics.RecordLeaseUpdate("success", len(leases))

	uc.logger.WithFields(logrus.Fields{
		"cluster_uuid":       input.ClusterUUID,
		"lease_count":        len(leases),
		"touched_interfaces": touched,
	}).Info("DHCP 리스 갱신 완료")

	return &UpdateLeasesOutput{
		LeaseCount:        len(leases),
		TouchedInterfaces: touched,
	}, nil
}
