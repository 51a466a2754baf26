package usecases

import (
	"context"
	"fmt"

	"multinic-controller/internal/domain/entities"
	"multinic-controller/internal/domain/interfaces"
	"multinic-controller/internal/infrastructure/metrics"

	"github.com/sirupsen/logrus"
)

// CleanupOrphanEdgesInput은 정리 유스케이스의 입력 데이터입니다
type CleanupOrphanEdgesInput struct{}

// CleanupOrphanEdgesOutput은 정리 유스케이스의 출력 데이터입니다
type CleanupOrphanEdgesOutput struct {
	DeletedEdges []entities.Edge
	TotalDeleted int
	Errors       []error
}

// CleanupOrphanEdgesUseCase는 끝점 인터페이스가 삭제된 고아 간선을
// 감지하고 제거하는 유스케이스입니다. 주기적 스윕에서 실행됩니다.
type CleanupOrphanEdgesUseCase struct {
	repository interfaces.InterfaceRepository
	logger     *logrus.Logger
}

// NewCleanupOrphanEdgesUseCase는 새로운 CleanupOrphanEdgesUseCase를 생성합니다
func NewCleanupOrphanEdgesUseCase(
	repo interfaces.InterfaceRepository,
	logger *logrus.Logger,
) *CleanupOrphanEdgesUseCase {
	return &CleanupOrphanEdgesUseCase{
		repository: repo,
		logger:     logger,
	}
}

// Execute는 고아 간선 정리 유스케이스를 실행합니다
func (uc *CleanupOrphanEdgesUseCase) Execute(ctx context.Context, input CleanupOrphanEdgesInput) (*CleanupOrphanEdgesOutput, error) {
	output := &CleanupOrphanEdgesOutput{
		DeletedEdges: []entities.Edge{},
		Errors:       []error{},
	}

	orphans, err := uc.repository.FindOrphanEdges(ctx)
	if err != nil {
		return nil, fmt.Errorf("고아 간선 조회 실패: %w", err)
	}

	if len(orphans) == 0 {
		uc.logger.Debug("삭제 대상 고아 간선이 없습니다")
		return output, nil
	}

	uc.logger.WithField("orphan_edges", len(orphans)).Info("고아 간선 감지 완료 - 정리 시작")

	for _, edge := range orphans {
		if err := uc.repository.RemoveEdge(ctx, edge); err != nil {
			uc.logger.WithFields(logrus.Fields{
				"parent_id": edge.ParentID,
				"child_id":  edge.ChildID,
				"error":     err.Error(),
			}).Error("고아 간선 삭제 실패")
			output.Errors = append(output.Errors, fmt.Errorf("고아 간선 (%d->%d) 삭제 실패: %w", edge.ParentID, edge.ChildID, err))
		} else {
			output.DeletedEdges = append(output.DeletedEdges, edge)
			output.TotalDeleted++
		}
	}

	metrics.RecordOrphanEdgesDeleted(output.TotalDeleted)
	return output, nil
}
