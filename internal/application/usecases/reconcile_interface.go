package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"multinic-controller/internal/domain/entities"
	domainErrors "multinic-controller/internal/domain/errors"
	"multinic-controller/internal/domain/interfaces"
	"multinic-controller/internal/domain/services"
	"multinic-controller/internal/infrastructure/metrics"
	"multinic-controller/pkg/utils"

	"github.com/sirupsen/logrus"
)

// ReconcileInterfaceUseCase는 인터페이스 생성/수정 요청을 처리하는
// 유스케이스입니다. 하나의 트랜잭션 안에서 토폴로지 스냅샷을 읽고,
// Reconciler로 검증한 뒤, 인터페이스와 간선 변경분을 저장합니다.
// 동시 수정 충돌은 트랜잭션 전체를 재시도합니다.
type ReconcileInterfaceUseCase struct {
	repository interfaces.InterfaceRepository
	reconciler *services.Reconciler
	retryCfg   utils.RetryConfig
	logger     *logrus.Logger
}

// NewReconcileInterfaceUseCase는 새로운 ReconcileInterfaceUseCase를 생성합니다
func NewReconcileInterfaceUseCase(
	repo interfaces.InterfaceRepository,
	reconciler *services.Reconciler,
	retryCfg utils.RetryConfig,
	logger *logrus.Logger,
) *ReconcileInterfaceUseCase {
	return &ReconcileInterfaceUseCase{
		repository: repo,
		reconciler: reconciler,
		retryCfg:   retryCfg,
		logger:     logger,
	}
}

// ReconcileInterfaceInput은 유스케이스의 입력 파라미터입니다.
// InterfaceID가 0이면 생성, 아니면 수정입니다.
type ReconcileInterfaceInput struct {
	NodeID      int
	InterfaceID int
	Spec        entities.InterfaceSpec
}

// ReconcileInterfaceOutput은 유스케이스의 출력 결과입니다
type ReconcileInterfaceOutput struct {
	Interface    entities.Interface
	EdgesAdded   int
	EdgesRemoved int
	Created      bool
}

// Execute는 인터페이스 조정 유스케이스를 실행합니다
func (uc *ReconcileInterfaceUseCase) Execute(ctx context.Context, input ReconcileInterfaceInput) (*ReconcileInterfaceOutput, error) {
	startTime := time.Now()

	var output *ReconcileInterfaceOutput
	err := utils.RetryWithBackoff(ctx, uc.retryCfg, domainErrors.IsConflictError, func() error {
		var txErr error
		output, txErr = uc.executeOnce(ctx, input)
		return txErr
	})

	uc.recordMetrics(input.Spec.Type, err, time.Since(startTime).Seconds())

	if err != nil {
		return nil, err
	}

	uc.logger.WithFields(logrus.Fields{
		"node_id":        output.Interface.NodeID,
		"interface_id":   output.Interface.ID,
		"interface_name": output.Interface.Name,
		"type":           output.Interface.Type,
		"edges_added":    output.EdgesAdded,
		"edges_removed":  output.EdgesRemoved,
		"created":        output.Created,
	}).Info("인터페이스 조정 완료")

	return output, nil
}

// executeOnce는 조정을 한 번 시도합니다. 스냅샷 읽기부터 커밋까지
// 하나의 트랜잭션으로 묶여 검증 결과가 낡은 상태 위에 적용되지 않습니다.
func (uc *ReconcileInterfaceUseCase) executeOnce(ctx context.Context, input ReconcileInterfaceInput) (*ReconcileInterfaceOutput, error) {
	var output *ReconcileInterfaceOutput

	err := uc.repository.WithinTransaction(ctx, func(ctx context.Context) error {
		// 1. 대상 식별 (수정이면 기존 인터페이스, 생성이면 노드 확인)
		var existing *entities.Interface
		nodeID := input.NodeID

		if input.InterfaceID != 0 {
			var err error
			existing, err = uc.repository.GetInterfaceByID(ctx, input.InterfaceID)
			if err != nil {
				return err
			}
			if nodeID != 0 && nodeID != existing.NodeID {
				return domainErrors.NewNotFoundError(
					fmt.Sprintf("인터페이스가 해당 노드에 없음: ID=%d", input.InterfaceID))
			}
			nodeID = existing.NodeID
		} else {
			if _, err := uc.repository.GetNode(ctx, nodeID); err != nil {
				return err
			}
		}

		// 2. 토폴로지 스냅샷 읽기
		nodeInterfaces, err := uc.repository.GetNodeInterfaces(ctx, nodeID)
		if err != nil {
			return err
		}
		nodeEdges, err := uc.repository.GetNodeEdges(ctx, nodeID)
		if err != nil {
			return err
		}
		topo := services.TopologySnapshot{
			Interfaces: nodeInterfaces,
			Edges:      nodeEdges,
		}

		// 3. 후보 부모 결정 (요청에 없으면 기존 부모 집합 유지)
		parents, err := uc.resolveParents(input.Spec, existing, topo)
		if err != nil {
			return err
		}

		// 4. 검증과 변경분 계산
		result, err := uc.reconciler.Reconcile(ctx, nodeID, input.Spec, existing, parents, topo)
		if err != nil {
			return err
		}

		// 5. 저장
		if err := uc.repository.SaveInterface(ctx, &result.Interface); err != nil {
			return err
		}
		for _, edge := range result.EdgesToAdd {
			if edge.ChildID == 0 {
				edge.ChildID = result.Interface.ID
			}
			if err := uc.repository.AddEdge(ctx, edge); err != nil {
				return err
			}
		}
		for _, edge := range result.EdgesToRemove {
			if err := uc.repository.RemoveEdge(ctx, edge); err != nil {
				return err
			}
		}

		// 6. 신규 인터페이스에는 기본 링크 보장
		if result.Created {
			if err := uc.repository.EnsureLinkUp(ctx, result.Interface.ID); err != nil {
				return err
			}
		}

		output = &ReconcileInterfaceOutput{
			Interface:    result.Interface,
			EdgesAdded:   len(result.EdgesToAdd),
			EdgesRemoved: len(result.EdgesToRemove),
			Created:      result.Created,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordEdgeDiff(output.EdgesAdded, output.EdgesRemoved)
	return output, nil
}

// resolveParents는 요청의 부모 ID 목록을 스냅샷의 인터페이스로 해석합니다.
// 요청 순서가 보존되어 첫 번째 부모가 상속 기준이 됩니다.
func (uc *ReconcileInterfaceUseCase) resolveParents(
	spec entities.InterfaceSpec,
	existing *entities.Interface,
	topo services.TopologySnapshot,
) ([]entities.Interface, error) {
	var parentIDs []int
	switch spec.Parents.State {
	case entities.FieldSet:
		parentIDs = spec.Parents.Values
	case entities.FieldCleared:
		parentIDs = nil
	case entities.FieldAbsent:
		if existing != nil {
			parentIDs = topo.ParentsOf(existing.ID)
		}
	}

	verrs := domainErrors.NewValidationErrors()
	parents := make([]entities.Interface, 0, len(parentIDs))
	for _, id := range parentIDs {
		p := topo.ByID(id)
		if p == nil {
			verrs.Add(domainErrors.FieldParents, domainErrors.ReasonCrossNodeParents,
				"Unknown parent interface %d.", id)
			continue
		}
		parents = append(parents, *p)
	}
	if err := verrs.ErrOrNil(); err != nil {
		return nil, err
	}
	return parents, nil
}

// recordMetrics는 조정 결과를 메트릭으로 기록합니다
func (uc *ReconcileInterfaceUseCase) recordMetrics(ifaceType entities.InterfaceType, err error, duration float64) {
	status := "success"
	if err != nil {
		status = "failed"
		var verrs *domainErrors.ValidationErrors
		if errors.As(err, &verrs) {
			status = "rejected"
			for field, fieldErrs := range verrs.Fields() {
				for _, fe := range fieldErrs {
					metrics.RecordValidationFailure(field, string(fe.Reason))
				}
			}
		}
	}
	metrics.RecordReconciliation(string(ifaceType), status, duration)
}
