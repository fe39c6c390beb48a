package database

import (
	"fmt"
	"log/slog"

	"github.com/kchsoft/gym-ledger/internal/config"
	"github.com/kchsoft/gym-ledger/internal/model"

	"gorm.io/gorm"
)

// Models lists every table in dependency order (FK 참조 순서)
func Models() []interface{} {
	return []interface{}{
		&model.Member{},
		&model.Payment{}, // payments.user_id -> members.user_id
	}
}

// Migrate executes database migration based on configuration
func Migrate(db *gorm.DB, cfg *config.Config) error {
	if cfg.Database.IsReset {
		if err := Reset(db, cfg); err != nil {
			return err
		}
	}

	if !cfg.Database.IsAutoMigrate {
		slog.Info("⏭️  데이터베이스 마이그레이션 비활성화됨",
			"auto_migrate", false, "env", cfg.App.Env,
		)
		return nil
	}

	if err := AutoMigrate(db); err != nil {
		return fmt.Errorf("테이블 생성 실패: %w", err)
	}

	slog.Info("✅ 마이그레이션 완료!")
	return nil
}

// Reset drops every ledger table. Blocked in production.
func Reset(db *gorm.DB, cfg *config.Config) error {
	// Safety check: prevent accidental data loss in production
	if cfg.IsProduction() {
		return fmt.Errorf("🚨 PRODUCTION 환경에서는 DB_RESET=true를 사용할 수 없습니다! 데이터 손실 방지를 위해 차단됨")
	}

	slog.Warn("🔧 데이터베이스 초기화 - 모든 테이블이 삭제됩니다!", "env", cfg.App.Env)

	// Order matters: drop in reverse dependency order (FK constraints)
	models := Models()
	for i := len(models) - 1; i >= 0; i-- {
		if !db.Migrator().HasTable(models[i]) {
			continue
		}
		if err := db.Migrator().DropTable(models[i]); err != nil {
			return fmt.Errorf("%T 삭제 실패: %w", models[i], err)
		}
		slog.Debug("테이블 삭제 성공", "model", fmt.Sprintf("%T", models[i]))
	}
	return nil
}

// AutoMigrate creates or extends tables based on model definitions. It never drops columns.
func AutoMigrate(db *gorm.DB) error {
	for _, m := range Models() {
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("%T 마이그레이션 실패: %w", m, err)
		}
		slog.Debug("테이블 생성됨", "model", fmt.Sprintf("%T", m))
	}

	return nil
}
