package infra

import (
	"fmt"
	"strings"

	"autopecas/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens the GORM connection and brings the schema up to date.
// A DSN starting with "file:" or "sqlite:" opens a local SQLite database,
// anything else goes to PostgreSQL through pgx.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(dialector(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if db.Dialector.Name() == "sqlite" {
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
	}

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

func dialector(dsn string) gorm.Dialector {
	switch {
	case strings.HasPrefix(dsn, "sqlite:"):
		return sqlite.Open(strings.TrimPrefix(dsn, "sqlite:"))
	case strings.HasPrefix(dsn, "file:"):
		return sqlite.Open(dsn)
	}
	return postgres.Open(dsn)
}

// RunMigrations creates / updates every table and then applies the partial
// unique indexes AutoMigrate cannot express. Used by the server and by tests.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Usuario{},
		&model.Categoria{},
		&model.Fornecedor{},
		&model.Produto{},
		&model.NotaEntrada{},
		&model.ItemNotaEntrada{},
		&model.EventoNotaEntrada{},
		&model.MovimentacaoEstoque{},
		&model.HistoricoPreco{},
		&model.CotacaoFornecedor{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}

	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

// applySchemaPatches runs idempotent DDL. Cancelled receipts free their
// identifiers, so uniqueness only holds among the other statuses. The syntax is
// shared by PostgreSQL and SQLite.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_notas_entrada_numero_ativa
		    ON notas_entrada (numero, serie, fornecedor_id)
		    WHERE status <> 'cancelada'`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_notas_entrada_chave_ativa
		    ON notas_entrada (chave_acesso)
		    WHERE status <> 'cancelada' AND chave_acesso IS NOT NULL`,
		`CREATE INDEX IF NOT EXISTS idx_eventos_nota_entrada_nota_data
		    ON eventos_nota_entrada (nota_entrada_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_historico_precos_produto_data
		    ON historico_precos (produto_id, created_at)`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
