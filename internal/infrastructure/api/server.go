package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"multinic-controller/internal/application/usecases"
	"multinic-controller/internal/domain/entities"
	domainErrors "multinic-controller/internal/domain/errors"
	"multinic-controller/internal/infrastructure/health"
	"multinic-controller/internal/infrastructure/metrics"

	"github.com/sirupsen/logrus"
)

// interfaceReconciler는 인터페이스 조정 유스케이스의 실행 표면입니다
type interfaceReconciler interface {
	Execute(ctx context.Context, input usecases.ReconcileInterfaceInput) (*usecases.ReconcileInterfaceOutput, error)
}

// leaseUpdater는 리스 갱신 유스케이스의 실행 표면입니다
type leaseUpdater interface {
	Execute(ctx context.Context, input usecases.UpdateLeasesInput) (*usecases.UpdateLeasesOutput, error)
}

// Server는 컨트롤러의 REST API 서버입니다
type Server struct {
	reconciler    interfaceReconciler
	leases        leaseUpdater
	healthService *health.HealthService
	logger        *logrus.Logger
}

// NewServer는 새로운 Server를 생성합니다
func NewServer(
	reconciler interfaceReconciler,
	leases leaseUpdater,
	healthService *health.HealthService,
	logger *logrus.Logger,
) *Server {
	return &Server{
		reconciler:    reconciler,
		leases:        leases,
		healthService: healthService,
		logger:        logger,
	}
}

// Routes는 API 핸들러가 등록된 mux를 반환합니다
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/nodes/{node}/interfaces", s.handleCreateInterface)
	mux.HandleFunc("PUT /v1/interfaces/{id}", s.handleUpdateInterface)
	mux.HandleFunc("POST /v1/clusters/{uuid}/leases", s.handleUpdateLeases)
	return mux
}

// interfaceRequest는 인터페이스 생성/수정 요청의 JSON 본문입니다.
// 키가 없는 필드는 absent, null이면 cleared로 해석됩니다.
type interfaceRequest struct {
	Type       string                   `json:"type"`
	Name       entities.OptionalString  `json:"name"`
	MACAddress entities.OptionalString  `json:"mac_address"`
	VLANID     entities.OptionalInt     `json:"vlan"`
	Parents    entities.OptionalIntList `json:"parents"`

	MTU      entities.OptionalInt  `json:"mtu"`
	AcceptRA entities.OptionalBool `json:"accept_ra"`
	Autoconf entities.OptionalBool `json:"autoconf"`

	BondMode           entities.OptionalString `json:"bond_mode"`
	BondMiimon         entities.OptionalInt    `json:"bond_miimon"`
	BondDowndelay      entities.OptionalInt    `json:"bond_downdelay"`
	BondUpdelay        entities.OptionalInt    `json:"bond_updelay"`
	BondLACPRate       entities.OptionalString `json:"bond_lacp_rate"`
	BondXmitHashPolicy entities.OptionalString `json:"bond_xmit_hash_policy"`
}

// toSpec은 요청 본문을 도메인 스펙으로 변환합니다
func (r interfaceRequest) toSpec(ifaceType entities.InterfaceType) entities.InterfaceSpec {
	return entities.InterfaceSpec{
		Type:       ifaceType,
		Name:       r.Name,
		MACAddress: r.MACAddress,
		VLANID:     r.VLANID,
		Parents:    r.Parents,
		Params: entities.ParamsSpec{
			MTU:                r.MTU,
			AcceptRA:           r.AcceptRA,
			Autoconf:           r.Autoconf,
			BondMode:           r.BondMode,
			BondMiimon:         r.BondMiimon,
			BondDowndelay:      r.BondDowndelay,
			BondUpdelay:        r.BondUpdelay,
			BondLACPRate:       r.BondLACPRate,
			BondXmitHashPolicy: r.BondXmitHashPolicy,
		},
	}
}

// interfaceResponse는 인터페이스 조정 결과의 JSON 표현입니다
type interfaceResponse struct {
	ID           int                      `json:"id"`
	NodeID       int                      `json:"node_id"`
	Type         entities.InterfaceType   `json:"type"`
	Name         string                   `json:"name"`
	MACAddress   string                   `json:"mac_address,omitempty"`
	VLANID       int                      `json:"vlan"`
	Params       entities.InterfaceParams `json:"params"`
	EdgesAdded   int                      `json:"edges_added"`
	EdgesRemoved int                      `json:"edges_removed"`
}

func newInterfaceResponse(output *usecases.ReconcileInterfaceOutput) interfaceResponse {
	return interfaceResponse{
		ID:           output.Interface.ID,
		NodeID:       output.Interface.NodeID,
		Type:         output.Interface.Type,
		Name:         output.Interface.Name,
		MACAddress:   output.Interface.MACAddress,
		VLANID:       output.Interface.VLANID,
		Params:       output.Interface.Params,
		EdgesAdded:   output.EdgesAdded,
		EdgesRemoved: output.EdgesRemoved,
	}
}

// handleCreateInterface는 POST /v1/nodes/{node}/interfaces를 처리합니다
func (s *Server) handleCreateInterface(w http.ResponseWriter, r *http.Request) {
	nodeID, err := strconv.Atoi(r.PathValue("node"))
	if err != nil {
		s.writeError(w, domainErrors.NewValidationError("잘못된 노드 ID", err))
		return
	}

	var req interfaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, domainErrors.NewValidationError("요청 본문 파싱 실패", err))
		return
	}

	output, err := s.reconciler.Execute(r.Context(), usecases.ReconcileInterfaceInput{
		NodeID: nodeID,
		Spec:   req.toSpec(entities.InterfaceType(req.Type)),
	})
	s.healthService.RecordReconcile(err, domainErrors.IsValidationError(err))
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, newInterfaceResponse(output))
}

// handleUpdateInterface는 PUT /v1/interfaces/{id}를 처리합니다.
// 수정 요청은 타입을 바꿀 수 없으므로 본문의 type은 무시됩니다.
func (s *Server) handleUpdateInterface(w http.ResponseWriter, r *http.Request) {
	interfaceID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		s.writeError(w, domainErrors.NewValidationError("잘못된 인터페이스 ID", err))
		return
	}

	var req interfaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, domainErrors.NewValidationError("요청 본문 파싱 실패", err))
		return
	}

	output, err := s.reconciler.Execute(r.Context(), usecases.ReconcileInterfaceInput{
		InterfaceID: interfaceID,
		Spec:        req.toSpec(entities.InterfaceType(req.Type)),
	})
	s.healthService.RecordReconcile(err, domainErrors.IsValidationError(err))
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, newInterfaceResponse(output))
}

// leaseRequest는 리스 갱신 요청의 JSON 본문입니다
type leaseRequest struct {
	Mappings []entities.LeaseMapping `json:"mappings"`
}

// leaseResponse는 리스 갱신 결과의 JSON 표현입니다
type leaseResponse struct {
	LeaseCount        int `json:"lease_count"`
	TouchedInterfaces int `json:"touched_interfaces"`
}

// handleUpdateLeases는 POST /v1/clusters/{uuid}/leases를 처리합니다
func (s *Server) handleUpdateLeases(w http.ResponseWriter, r *http.Request) {
	var req leaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, domainErrors.NewValidationError("요청 본문 파싱 실패", err))
		return
	}

	output, err := s.leases.Execute(r.Context(), usecases.UpdateLeasesInput{
		ClusterUUID: r.PathValue("uuid"),
		Mappings:    req.Mappings,
	})
	s.healthService.RecordLeaseBatch(err)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, leaseResponse{
		LeaseCount:        output.LeaseCount,
		TouchedInterfaces: output.TouchedInterfaces,
	})
}

// errorResponse는 에러 응답의 JSON 표현입니다.
// 필드 검증 실패는 필드별로 귀속된 에러 목록을 담습니다.
type errorResponse struct {
	Error  string                                `json:"error"`
	Fields map[string][]domainErrors.FieldError `json:"fields,omitempty"`
}

// writeError는 도메인 에러를 HTTP 상태 코드와 본문으로 변환합니다
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var verrs *domainErrors.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		metrics.RecordError("validation")
		s.writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:  "validation failed",
			Fields: verrs.Fields(),
		})
	case domainErrors.IsValidationError(err):
		metrics.RecordError("validation")
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case domainErrors.IsNotFoundError(err):
		metrics.RecordError("not_found")
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case domainErrors.IsConflictError(err):
		metrics.RecordError("conflict")
		s.writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	default:
		metrics.RecordError("system")
		s.logger.WithError(err).Error("요청 처리 중 내부 오류")
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

// writeJSON은 JSON 응답을 기록합니다
func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.WithError(err).Error("응답 인코딩 실패")
	}
}
