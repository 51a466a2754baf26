package usecases

import (
	"context"
	"io"
	"testing"
	"time"

	"multinic-controller/internal/domain/entities"
	domainErrors "multinic-controller/internal/domain/errors"
	"multinic-controller/internal/domain/services"
	"multinic-controller/pkg/utils"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock 구현체들
type MockInterfaceRepository struct {
	mock.Mock
}

// WithinTransaction은 테스트에서 트랜잭션 경계 없이 fn을 그대로 실행합니다
func (m *MockInterfaceRepository) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (m *MockInterfaceRepository) GetNode(ctx context.Context, nodeID int) (*entities.Node, error) {
	args := m.Called(ctx, nodeID)
	return args.Get(0).(*entities.Node), args.Error(1)
}

func (m *MockInterfaceRepository) GetNodeInterfaces(ctx context.Context, nodeID int) ([]entities.Interface, error) {
	args := m.Called(ctx, nodeID)
	return args.Get(0).([]entities.Interface), args.Error(1)
}

func (m *MockInterfaceRepository) GetNodeEdges(ctx context.Context, nodeID int) ([]entities.Edge, error) {
	args := m.Called(ctx, nodeID)
	return args.Get(0).([]entities.Edge), args.Error(1)
}

func (m *MockInterfaceRepository) GetInterfaceByID(ctx context.Context, id int) (*entities.Interface, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*entities.Interface), args.Error(1)
}

func (m *MockInterfaceRepository) SaveInterface(ctx context.Context, iface *entities.Interface) error {
	args := m.Called(ctx, iface)
	return args.Error(0)
}

func (m *MockInterfaceRepository) AddEdge(ctx context.Context, edge entities.Edge) error {
	args := m.Called(ctx, edge)
	return args.Error(0)
}

func (m *MockInterfaceRepository) RemoveEdge(ctx context.Context, edge entities.Edge) error {
	args := m.Called(ctx, edge)
	return args.Error(0)
}

func (m *MockInterfaceRepository) EnsureLinkUp(ctx context.Context, interfaceID int) error {
	args := m.Called(ctx, interfaceID)
	return args.Error(0)
}

func (m *MockInterfaceRepository) FindOrphanEdges(ctx context.Context) ([]entities.Edge, error) {
	args := m.Called(ctx)
	return args.Get(0).([]entities.Edge), args.Error(1)
}

type MockVLANDirectory struct {
	mock.Mock
}

func (m *MockVLANDirectory) GetVLANByID(ctx context.Context, id int) (*entities.VLAN, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*entities.VLAN), args.Error(1)
}

func (m *MockVLANDirectory) GetDefaultVLAN(ctx context.Context, fabricID int) (*entities.VLAN, error) {
	args := m.Called(ctx, fabricID)
	return args.Get(0).(*entities.VLAN), args.Error(1)
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testRetryConfig() utils.RetryConfig {
	return utils.RetryConfig{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     time.Millisecond,
		Multiplier:   2.0,
	}
}

func newReconcileUseCase(repo *MockInterfaceRepository, vlans *MockVLANDirectory) *ReconcileInterfaceUseCase {
	reconciler := services.NewReconciler(vlans, services.NewInterfaceNamingService())
	return NewReconcileInterfaceUseCase(repo, reconciler, testRetryConfig(), testLogger())
}

func setupFabric(vlans *MockVLANDirectory) {
	vlans.On("GetVLANByID", mock.Anything, 10).Return(&entities.VLAN{ID: 10, FabricID: 1, VID: 0}, nil).Maybe()
	vlans.On("GetVLANByID", mock.Anything, 11).Return(&entities.VLAN{ID: 11, FabricID: 1, VID: 100}, nil).Maybe()
	vlans.On("GetDefaultVLAN", mock.Anything, 1).Return(&entities.VLAN{ID: 10, FabricID: 1, VID: 0}, nil).Maybe()
}

func TestReconcileInterfaceUseCase_CreatePhysical(t *testing.T) {
	repo := new(MockInterfaceRepository)
	vlans := new(MockVLANDirectory)
	setupFabric(vlans)

	repo.On("GetNode", mock.Anything, 1).Return(&entities.Node{ID: 1, Name: "node-1"}, nil)
	repo.On("GetNodeInterfaces", mock.Anything, 1).Return([]entities.Interface{}, nil)
	repo.On("GetNodeEdges", mock.Anything, 1).Return([]entities.Edge{}, nil)
	repo.On("SaveInterface", mock.Anything, mock.AnythingOfType("*entities.Interface")).
		Run(func(args mock.Arguments) {
			iface := args.Get(1).(*entities.Interface)
			iface.ID = 42
		}).Return(nil)
	repo.On("EnsureLinkUp", mock.Anything, 42).Return(nil)

	uc := newReconcileUseCase(repo, vlans)
	output, err := uc.Execute(context.Background(), ReconcileInterfaceInput{
		NodeID: 1,
		Spec: entities.InterfaceSpec{
			Type:       entities.TypePhysical,
			Name:       entities.SetString("eth0"),
			MACAddress: entities.SetString("aa:bb:cc:dd:ee:01"),
			VLANID:     entities.SetInt(10),
		},
	})

	require.NoError(t, err)
	assert.True(t, output.Created)
	assert.Equal(t, 42, output.Interface.ID)
	assert.Equal(t, "eth0", output.Interface.Name)
	assert.Equal(t, 0, output.EdgesAdded)
	repo.AssertExpectations(t)
}

func TestReconcileInterfaceUseCase_CreateBondAddsEdges(t *testing.T) {
	repo := new(MockInterfaceRepository)
	vlans := new(MockVLANDirectory)
	setupFabric(vlans)

	eth0 := entities.Interface{ID: 1, NodeID: 1, Type: entities.TypePhysical, Name: "eth0", MACAddress: "aa:bb:cc:dd:ee:01", VLANID: 10}
	eth1 := entities.Interface{ID: 2, NodeID: 1, Type: entities.TypePhysical, Name: "eth1", MACAddress: "aa:bb:cc:dd:ee:02", VLANID: 10}

	repo.On("GetNode", mock.Anything, 1).Return(&entities.Node{ID: 1, Name: "node-1"}, nil)
	repo.On("GetNodeInterfaces", mock.Anything, 1).Return([]entities.Interface{eth0, eth1}, nil)
	repo.On("GetNodeEdges", mock.Anything, 1).Return([]entities.Edge{}, nil)
	repo.On("SaveInterface", mock.Anything, mock.AnythingOfType("*entities.Interface")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*entities.Interface).ID = 42
		}).Return(nil)
	repo.On("AddEdge", mock.Anything, entities.Edge{ParentID: 1, ChildID: 42}).Return(nil)
	repo.On("AddEdge", mock.Anything, entities.Edge{ParentID: 2, ChildID: 42}).Return(nil)
	repo.On("EnsureLinkUp", mock.Anything, 42).Return(nil)

	uc := newReconcileUseCase(repo, vlans)
	output, err := uc.Execute(context.Background(), ReconcileInterfaceInput{
		NodeID: 1,
		Spec: entities.InterfaceSpec{
			Type:    entities.TypeBond,
			Name:    entities.SetString("bond0"),
			Parents: entities.SetIntList(1, 2),
		},
	})

	require.NoError(t, err)
	assert.Equal(t, 2, output.EdgesAdded)
	// 첫 번째 부모에서 MAC과 VLAN을 상속
	assert.Equal(t, "aa:bb:cc:dd:ee:01", output.Interface.MACAddress)
	assert.Equal(t, 10, output.Interface.VLANID)
	repo.AssertExpectations(t)
}

func TestReconcileInterfaceUseCase_ValidationRejectedWithoutSave(t *testing.T) {
	repo := new(MockInterfaceRepository)
	vlans := new(MockVLANDirectory)
	setupFabric(vlans)

	eth0 := entities.Interface{ID: 1, NodeID: 1, Type: entities.TypePhysical, Name: "eth0", MACAddress: "aa:bb:cc:dd:ee:01", VLANID: 10}

	repo.On("GetNode", mock.Anything, 1).Return(&entities.Node{ID: 1, Name: "node-1"}, nil)
	repo.On("GetNodeInterfaces", mock.Anything, 1).Return([]entities.Interface{eth0}, nil)
	repo.On("GetNodeEdges", mock.Anything, 1).Return([]entities.Edge{}, nil)

	uc := newReconcileUseCase(repo, vlans)
	_, err := uc.Execute(context.Background(), ReconcileInterfaceInput{
		NodeID: 1,
		Spec: entities.InterfaceSpec{
			Type:       entities.TypePhysical,
			Name:       entities.SetString("eth1"),
			MACAddress: entities.SetString("aa:bb:cc:dd:ee:02"),
			VLANID:     entities.SetInt(10),
			Parents:    entities.SetIntList(1),
		},
	})

	require.Error(t, err)
	assert.True(t, domainErrors.IsValidationError(err))
	repo.AssertNotCalled(t, "SaveInterface", mock.Anything, mock.Anything)
}

func TestReconcileInterfaceUseCase_UnknownParentRejected(t *testing.T) {
	repo := new(MockInterfaceRepository)
	vlans := new(MockVLANDirectory)
	setupFabric(vlans)

	repo.On("GetNode", mock.Anything, 1).Return(&entities.Node{ID: 1, Name: "node-1"}, nil)
	repo.On("GetNodeInterfaces", mock.Anything, 1).Return([]entities.Interface{}, nil)
	repo.On("GetNodeEdges", mock.Anything, 1).Return([]entities.Edge{}, nil)

	uc := newReconcileUseCase(repo, vlans)
	_, err := uc.Execute(context.Background(), ReconcileInterfaceInput{
		NodeID: 1,
		Spec: entities.InterfaceSpec{
			Type:    entities.TypeBond,
			Name:    entities.SetString("bond0"),
			Parents: entities.SetIntList(99),
		},
	})

	require.Error(t, err)
	var verrs *domainErrors.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.True(t, verrs.HasReason(domainErrors.FieldParents, domainErrors.ReasonCrossNodeParents))
}

func TestReconcileInterfaceUseCase_UpdateNotFound(t *testing.T) {
	repo := new(MockInterfaceRepository)
	vlans := new(MockVLANDirectory)

	repo.On("GetInterfaceByID", mock.Anything, 7).
		Return((*entities.Interface)(nil), domainErrors.NewNotFoundError("인터페이스를 찾을 수 없음: ID=7"))

	uc := newReconcileUseCase(repo, vlans)
	_, err := uc.Execute(context.Background(), ReconcileInterfaceInput{
		InterfaceID: 7,
		Spec:        entities.InterfaceSpec{Type: entities.TypePhysical},
	})

	require.Error(t, err)
	assert.True(t, domainErrors.IsNotFoundError(err))
}

func TestReconcileInterfaceUseCase_RetriesOnConflict(t *testing.T) {
	repo := new(MockInterfaceRepository)
	vlans := new(MockVLANDirectory)
	setupFabric(vlans)

	repo.On("GetNode", mock.Anything, 1).Return(&entities.Node{ID: 1, Name: "node-1"}, nil)
	// 첫 시도는 동시 수정 충돌, 재시도에서 성공
	repo.On("GetNodeInterfaces", mock.Anything, 1).
		Return([]entities.Interface{}, domainErrors.NewConflictError("데드락 감지")).Once()
	repo.On("GetNodeInterfaces", mock.Anything, 1).Return([]entities.Interface{}, nil)
	repo.On("GetNodeEdges", mock.Anything, 1).Return([]entities.Edge{}, nil)
	repo.On("SaveInterface", mock.Anything, mock.AnythingOfType("*entities.Interface")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*entities.Interface).ID = 42
		}).Return(nil)
	repo.On("EnsureLinkUp", mock.Anything, 42).Return(nil)

	uc := newReconcileUseCase(repo, vlans)
	output, err := uc.Execute(context.Background(), ReconcileInterfaceInput{
		NodeID: 1,
		Spec: entities.InterfaceSpec{
			Type:       entities.TypePhysical,
			Name:       entities.SetString("eth0"),
			MACAddress: entities.SetString("aa:bb:cc:dd:ee:01"),
			VLANID:     entities.SetInt(10),
		},
	})

	require.NoError(t, err)
	assert.True(t, output.Created)
	repo.AssertNumberOfCalls(t, "GetNodeInterfaces", 2)
}
