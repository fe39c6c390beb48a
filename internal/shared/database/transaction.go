package database

import (
	"context"
	"database/sql"
	"errors"

	"gorm.io/gorm"
)

// WithTransaction executes the provided fn within a transaction while propagating context.
// The transaction DB instance passed to fn already includes the context, so repository methods
// can use it directly. Every mutation in the ledger commits entirely or not at all.
//
// Usage:
//
//	err := WithTransaction(ctx, db, func(tx *gorm.DB) error {
//	    if err := repo.Create(ctx, tx, entity); err != nil {
//	        return err // rollback
//	    }
//	    return nil // commit
//	})
func WithTransaction(ctx context.Context, db *gorm.DB, fn func(*gorm.DB) error) error {
	if fn == nil {
		return errors.New("database: transaction function is nil")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	return db.WithContext(ctx).Transaction(fn)
}

// WithReadTransaction runs fn inside a read-only transaction so every query
// in fn observes the same snapshot taken at the first statement.
//
// postgres: REPEATABLE READ (READ COMMITTED는 statement 마다 snapshot)
// oracle: go-ora는 TxOptions를 거부하므로 SET TRANSACTION READ ONLY 로 대체
// sqlite: 드라이버가 옵션을 무시, 트랜잭션 자체가 snapshot
func WithReadTransaction(ctx context.Context, db *gorm.DB, fn func(*gorm.DB) error) error {
	if fn == nil {
		return errors.New("database: transaction function is nil")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	dialect := db.Dialector.Name()
	if dialect == "oracle" {
		return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec("SET TRANSACTION READ ONLY").Error; err != nil {
				return err
			}
			return fn(tx)
		})
	}

	return db.WithContext(ctx).Transaction(fn, readTxOptions(dialect))
}

func readTxOptions(dialect string) *sql.TxOptions {
	opts := &sql.TxOptions{ReadOnly: true}
	if dialect == "postgres" {
		opts.Isolation = sql.LevelRepeatableRead
	}
	return opts
}
