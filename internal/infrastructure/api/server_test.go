package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"multinic-controller/internal/application/usecases"
	"multinic-controller/internal/domain/entities"
	domainErrors "multinic-controller/internal/domain/errors"
	"multinic-controller/internal/infrastructure/adapters"
	"multinic-controller/internal/infrastructure/health"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockReconciler struct {
	mock.Mock
}

func (m *mockReconciler) Execute(ctx context.Context, input usecases.ReconcileInterfaceInput) (*usecases.ReconcileInterfaceOutput, error) {
	args := m.Called(ctx, input)
	if out := args.Get(0); out != nil {
		return out.(*usecases.ReconcileInterfaceOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockLeaseUpdater struct {
	mock.Mock
}

func (m *mockLeaseUpdater) Execute(ctx context.Context, input usecases.UpdateLeasesInput) (*usecases.UpdateLeasesOutput, error) {
	args := m.Called(ctx, input)
	if out := args.Get(0); out != nil {
		return out.(*usecases.UpdateLeasesOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func newTestServer(reconciler *mockReconciler, leases *mockLeaseUpdater) *Server {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	healthService := health.NewHealthService(adapters.NewRealClock(), logger)
	return NewServer(reconciler, leases, healthService, logger)
}

func doRequest(t *testing.T, server *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	server.Routes().ServeHTTP(rec, req)
	return rec
}

func TestServer_CreateInterface(t *testing.T) {
	reconciler := new(mockReconciler)
	reconciler.On("Execute", mock.Anything, mock.MatchedBy(func(input usecases.ReconcileInterfaceInput) bool {
		return input.NodeID == 1 &&
			input.InterfaceID == 0 &&
			input.Spec.Type == entities.TypePhysical &&
			input.Spec.Name == entities.SetString("eth0") &&
			input.Spec.VLANID == entities.SetInt(10) &&
			input.Spec.Parents.State == entities.FieldAbsent
	})).Return(&usecases.ReconcileInterfaceOutput{
		Interface: entities.Interface{
			ID: 42, NodeID: 1, Type: entities.TypePhysical,
			Name: "eth0", MACAddress: "aa:bb:cc:dd:ee:01", VLANID: 10,
		},
		Created: true,
	}, nil)

	server := newTestServer(reconciler, new(mockLeaseUpdater))
	rec := doRequest(t, server, http.MethodPost, "/v1/nodes/1/interfaces",
		`{"type": "physical", "name": "eth0", "mac_address": "aa:bb:cc:dd:ee:01", "vlan": 10}`)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp interfaceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 42, resp.ID)
	assert.Equal(t, "eth0", resp.Name)
	reconciler.AssertExpectations(t)
}

func TestServer_UpdateInterface_TriStateFields(t *testing.T) {
	reconciler := new(mockReconciler)
	// null은 cleared, 없는 키는 absent로 전달되어야 함
	reconciler.On("Execute", mock.Anything, mock.MatchedBy(func(input usecases.ReconcileInterfaceInput) bool {
		return input.InterfaceID == 7 &&
			input.Spec.VLANID.State == entities.FieldCleared &&
			input.Spec.Name.State == entities.FieldAbsent &&
			input.Spec.Parents.State == entities.FieldSet &&
			assert.ObjectsAreEqual([]int{1, 2}, input.Spec.Parents.Values)
	})).Return(&usecases.ReconcileInterfaceOutput{
		Interface: entities.Interface{ID: 7, NodeID: 1, Type: entities.TypeBond, Name: "bond0"},
	}, nil)

	server := newTestServer(reconciler, new(mockLeaseUpdater))
	rec := doRequest(t, server, http.MethodPut, "/v1/interfaces/7",
		`{"type": "bond", "vlan": null, "parents": [1, 2]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	reconciler.AssertExpectations(t)
}

func TestServer_CreateInterface_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		path string
		body string
	}{
		{"노드 ID가 숫자가 아님", "/v1/nodes/abc/interfaces", `{"type": "physical"}`},
		{"본문이 JSON이 아님", "/v1/nodes/1/interfaces", `not-json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newTestServer(new(mockReconciler), new(mockLeaseUpdater))
			rec := doRequest(t, server, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestServer_ErrorMapping(t *testing.T) {
	verrs := domainErrors.NewValidationErrors()
	verrs.Add(domainErrors.FieldParents, domainErrors.ReasonInvalidParentCardinality,
		"A physical interface cannot have parents.")

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"필드 검증 실패는 400", verrs, http.StatusBadRequest},
		{"not found는 404", domainErrors.NewNotFoundError("없음"), http.StatusNotFound},
		{"충돌은 409", domainErrors.NewConflictError("충돌"), http.StatusConflict},
		{"그 외는 500", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reconciler := new(mockReconciler)
			reconciler.On("Execute", mock.Anything, mock.Anything).Return(nil, tt.err)

			server := newTestServer(reconciler, new(mockLeaseUpdater))
			rec := doRequest(t, server, http.MethodPost, "/v1/nodes/1/interfaces", `{"type": "physical"}`)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestServer_ValidationErrorBodyHasFieldErrors(t *testing.T) {
	verrs := domainErrors.NewValidationErrors()
	verrs.Add(domainErrors.FieldVLAN, domainErrors.ReasonInvalidVLANAssignment,
		"A physical interface can only belong to an untagged VLAN.")

	reconciler := new(mockReconciler)
	reconciler.On("Execute", mock.Anything, mock.Anything).Return(nil, verrs)

	server := newTestServer(reconciler, new(mockLeaseUpdater))
	rec := doRequest(t, server, http.MethodPost, "/v1/nodes/1/interfaces", `{"type": "physical"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Contains(t, resp.Fields, domainErrors.FieldVLAN)
	assert.Equal(t, domainErrors.ReasonInvalidVLANAssignment, resp.Fields[domainErrors.FieldVLAN][0].Reason)
}

func TestServer_UpdateLeases(t *testing.T) {
	leases := new(mockLeaseUpdater)
	leases.On("Execute", mock.Anything, usecases.UpdateLeasesInput{
		ClusterUUID: "2f5282bd-7a42-4e8a-a533-07a6cbcb867f",
		Mappings: []entities.LeaseMapping{
			{IP: "10.0.0.1", MAC: "aa:bb:cc:dd:ee:01"},
		},
	}).Return(&usecases.UpdateLeasesOutput{LeaseCount: 1, TouchedInterfaces: 1}, nil)

	server := newTestServer(new(mockReconciler), leases)
	rec := doRequest(t, server, http.MethodPost,
		"/v1/clusters/2f5282bd-7a42-4e8a-a533-07a6cbcb867f/leases",
		`{"mappings": [{"ip": "10.0.0.1", "mac": "aa:bb:cc:dd:ee:01"}]}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp leaseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.LeaseCount)
	assert.Equal(t, 1, resp.TouchedInterfaces)
	leases.AssertExpectations(t)
}

func TestServer_UpdateLeases_UnknownCluster(t *testing.T) {
	leases := new(mockLeaseUpdater)
	leases.On("Execute", mock.Anything, mock.Anything).
		Return(nil, domainErrors.NewNotFoundError("클러스터를 찾을 수 없음"))

	server := newTestServer(new(mockReconciler), leases)
	rec := doRequest(t, server, http.MethodPost,
		"/v1/clusters/2f5282bd-7a42-4e8a-a533-07a6cbcb867f/leases",
		`{"mappings": []}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
