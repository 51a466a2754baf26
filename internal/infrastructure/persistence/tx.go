package persistence

import (
	"context"
	"database/sql"

	"multinic-controller/internal/domain/errors"

	"github.com/go-sql-driver/mysql"
)

// txKey는 컨텍스트에 트랜잭션을 싣기 위한 키입니다
type txKey struct{}

// querier는 *sql.DB와 *sql.Tx가 공통으로 제공하는 실행 표면입니다
type querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// conn은 컨텍스트에 트랜잭션이 실려 있으면 그것을, 아니면 풀을 반환합니다
func conn(ctx context.Context, db *sql.DB) querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return db
}

// runInTransaction은 fn을 트랜잭션 안에서 실행합니다. fn에 전달된
// 컨텍스트로 수행한 저장소 호출은 같은 트랜잭션에 참여합니다.
// 직렬화 실패(데드락, 중복 키)는 충돌 에러로 변환되어 호출자가
// 재시도할 수 있게 합니다.
func runInTransaction(ctx context.Context, db *sql.DB, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		// 이미 트랜잭션 안이면 그대로 합류
		return fn(ctx)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewSystemError("트랜잭션 시작 실패", err)
	}

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			return errors.NewSystemError("트랜잭션 롤백 실패", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return wrapDBError("트랜잭션 커밋 실패", err)
	}
	return nil
}

// wrapDBError는 드라이버 에러를 도메인 에러로 변환합니다
func wrapDBError(message string, err error) error {
	if me, ok := err.(*mysql.MySQLError); ok {
		// 1213: 데드락, 1062: 중복 키 — 둘 다 재시도 가능한 충돌로 취급
		if me.Number == 1213 || me.Number == 1062 {
			return errors.NewConflictError(message + ": " + me.Error())
		}
	}
	return errors.NewSystemError(message, err)
}
