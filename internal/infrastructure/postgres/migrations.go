package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-event-attendance/internal/pkg/logger"
	"github.com/sanosuguru/go-event-attendance/migrations"
)

// RunMigrations はスキーマを最新にする
// migrationsPath が空ならバイナリに埋め込んだ定義を使う
func RunMigrations(db *sql.DB, migrationsPath string) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("マイグレーションドライバー作成エラー: %w", err)
	}

	m, err := newMigrate(driver, migrationsPath)
	if err != nil {
		return fmt.Errorf("マイグレーションインスタンス作成エラー: %w", err)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Debug("スキーマは最新です")
			return nil
		}
		return fmt.Errorf("マイグレーション実行エラー: %w", err)
	}

	version, dirty, _ := m.Version()
	logger.Info("スキーマを適用しました", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

func newMigrate(driver database.Driver, migrationsPath string) (*migrate.Migrate, error) {
	if migrationsPath != "" {
		return migrate.NewWithDatabaseInstance("file://"+migrationsPath, "postgres", driver)
	}
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return nil, err
	}
	return migrate.NewWithInstance("iofs", src, "postgres", driver)
}
