//go:build integration

package integration

import (
	"context"
	"io"
	"testing"
	"time"

	"multinic-controller/internal/application/usecases"
	"multinic-controller/internal/domain/entities"
	"multinic-controller/internal/domain/services"
	"multinic-controller/internal/infrastructure/persistence"
	"multinic-controller/pkg/db"
	"multinic-controller/pkg/utils"

	"github.com/sirupsen/logrus"
)

// 통합 테스트는 로컬 MySQL에 multinic_test 스키마가 준비되어 있어야 합니다.
//   go test -tags integration ./test/integration/
func testDB(t *testing.T) *testDeps {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	conn, err := db.Open(db.Config{
		Host:     "localhost",
		Port:     "3306",
		User:     "test",
		Password: "test",
		Database: "multinic_test",
	})
	if err != nil {
		t.Skipf("데이터베이스 연결 실패 (테스트 DB가 없을 수 있음): %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	repo := persistence.NewMySQLRepository(conn, logger)
	reconciler := services.NewReconciler(repo, services.NewInterfaceNamingService())

	return &testDeps{
		logger:     logger,
		repo:       repo,
		reconciler: reconciler,
	}
}

type testDeps struct {
	logger     *logrus.Logger
	repo       *persistence.MySQLRepository
	reconciler *services.Reconciler
}

func TestControllerIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("통합 테스트는 -short 플래그와 함께 실행시 스킵됩니다")
	}

	deps := testDB(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	uc := usecases.NewReconcileInterfaceUseCase(
		deps.repo, deps.reconciler, utils.DefaultRetryConfig, deps.logger)

	t.Run("physical 인터페이스 생성과 재조회", func(t *testing.T) {
		output, err := uc.Execute(ctx, usecases.ReconcileInterfaceInput{
			NodeID: 1,
			Spec: entities.InterfaceSpec{
				Type:       entities.TypePhysical,
				Name:       entities.SetString("itest0"),
				MACAddress: entities.SetString("02:00:00:00:00:01"),
				VLANID:     entities.SetInt(1),
			},
		})
		if err != nil {
			t.Fatalf("인터페이스 생성 실패: %v", err)
		}
		if !output.Created {
			t.Error("신규 생성이어야 함")
		}

		fetched, err := deps.repo.GetInterfaceByID(ctx, output.Interface.ID)
		if err != nil {
			t.Fatalf("인터페이스 재조회 실패: %v", err)
		}
		if fetched.Name != "itest0" {
			t.Errorf("이름 불일치: %s", fetched.Name)
		}
	})

	t.Run("고아 간선 조회", func(t *testing.T) {
		orphans, err := deps.repo.FindOrphanEdges(ctx)
		if err != nil {
			t.Fatalf("고아 간선 조회 실패: %v", err)
		}
		t.Logf("고아 간선 수: %d", len(orphans))
	})
}
