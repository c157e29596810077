package repository

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newMockDB opens GORM on the PostgreSQL dialect over sqlmock, so the SQL
// the repositories emit in production can be asserted without a server.
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: mockDB, DriverName: "postgres"}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestProdutoRepo_FindByIDForUpdateTx_TravaLinha(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProdutoRepository(db)
	id := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "produtos" WHERE id = \$1 .*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "codigo", "descricao", "estoque"}).
			AddRow(id.String(), "000001", "FILTRO", 4))

	p, err := repo.FindByIDForUpdateTx(db, id)
	require.NoError(t, err)
	assert.Equal(t, "000001", p.Codigo)
	assert.Equal(t, 4, p.Estoque)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProdutoRepo_UpdateEstoqueTx(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProdutoRepository(db)

	t.Run("incrementa no banco", func(t *testing.T) {
		mock.ExpectExec(`UPDATE "produtos" SET "estoque"=estoque \+ \$1`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		require.NoError(t, repo.UpdateEstoqueTx(db, uuid.New(), 10))
	})

	t.Run("produto inexistente", func(t *testing.T) {
		mock.ExpectExec(`UPDATE "produtos" SET "estoque"=estoque \+ \$1`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		err := repo.UpdateEstoqueTx(db, uuid.New(), 3)
		assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	})

	t.Run("erro do driver", func(t *testing.T) {
		mock.ExpectExec(`UPDATE "produtos"`).WillReturnError(sql.ErrConnDone)
		assert.ErrorIs(t, repo.UpdateEstoqueTx(db, uuid.New(), 1), sql.ErrConnDone)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProdutoRepo_ProximoCodigoTx_SoCodigosNumericos(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProdutoRepository(db)

	mock.ExpectQuery(`SELECT "codigo" FROM "produtos" WHERE codigo ~ '\^\[0-9\]\{6\}\$' ORDER BY codigo DESC LIMIT`).
		WillReturnRows(sqlmock.NewRows([]string{"codigo"}).AddRow("000200"))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "produtos" WHERE codigo = \$1`).
		WithArgs("000201").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	codigo, err := repo.ProximoCodigoTx(db)
	require.NoError(t, err)
	assert.Equal(t, "000201", codigo)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNotaEntradaRepo_FindByIDForUpdateTx(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewNotaEntradaRepository(db)
	id := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "notas_entrada" WHERE id = \$1 .*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "numero", "serie", "status"}).
			AddRow(id.String(), "900", "1", "pendente"))
	mock.ExpectQuery(`SELECT \* FROM "itens_nota_entrada" WHERE nota_entrada_id = \$1 ORDER BY numero_item ASC`).
		WithArgs(id.String()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "nota_entrada_id", "numero_item", "descricao"}).
			AddRow(uuid.NewString(), id.String(), 1, "FILTRO").
			AddRow(uuid.NewString(), id.String(), 2, "PASTILHA"))

	n, err := repo.FindByIDForUpdateTx(db, id)
	require.NoError(t, err)
	assert.Equal(t, "900", n.Numero)
	require.Len(t, n.Itens, 2)
	assert.Equal(t, 2, n.Itens[1].NumeroItem)
	assert.Nil(t, n.Fornecedor)
	require.NoError(t, mock.ExpectationsWereMet())
}
