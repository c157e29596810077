package repository

import (
	"context"

	"autopecas/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FornecedorRepository interface {
	Create(ctx context.Context, f *model.Fornecedor) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Fornecedor, error)
	FindByCNPJ(ctx context.Context, cnpj string) (*model.Fornecedor, error)
	List(ctx context.Context) ([]model.Fornecedor, error)

	CreateTx(tx *gorm.DB, f *model.Fornecedor) error
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Fornecedor, error)
	FindByCNPJTx(tx *gorm.DB, cnpj string) (*model.Fornecedor, error)
	// FindByNomeTx matches razão social or nome fantasia, case-insensitively.
	FindByNomeTx(tx *gorm.DB, nome string) (*model.Fornecedor, error)
}

type fornecedorRepo struct{ db *gorm.DB }

func NewFornecedorRepository(db *gorm.DB) FornecedorRepository { return &fornecedorRepo{db: db} }

func (r *fornecedorRepo) Create(ctx context.Context, f *model.Fornecedor) error {
	return r.CreateTx(r.db.WithContext(ctx), f)
}

func (r *fornecedorRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Fornecedor, error) {
	return r.FindByIDTx(r.db.WithContext(ctx), id)
}

func (r *fornecedorRepo) FindByCNPJ(ctx context.Context, cnpj string) (*model.Fornecedor, error) {
	return r.FindByCNPJTx(r.db.WithContext(ctx), cnpj)
}

func (r *fornecedorRepo) List(ctx context.Context) ([]model.Fornecedor, error) {
	var fornecedores []model.Fornecedor
	err := r.db.WithContext(ctx).Where("ativo = ?", true).Order("razao_social ASC").Find(&fornecedores).Error
	return fornecedores, err
}

func (r *fornecedorRepo) CreateTx(tx *gorm.DB, f *model.Fornecedor) error {
	return tx.Create(f).Error
}

func (r *fornecedorRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Fornecedor, error) {
	var f model.Fornecedor
	err := tx.Where("id = ?", id).First(&f).Error
	return &f, err
}

func (r *fornecedorRepo) FindByCNPJTx(tx *gorm.DB, cnpj string) (*model.Fornecedor, error) {
	var f model.Fornecedor
	err := tx.Where("cnpj = ?", cnpj).First(&f).Error
	return &f, err
}

func (r *fornecedorRepo) FindByNomeTx(tx *gorm.DB, nome string) (*model.Fornecedor, error) {
	var f model.Fornecedor
	err := tx.Where("LOWER(razao_social) = LOWER(?) OR LOWER(nome_fantasia) = LOWER(?)", nome, nome).
		Order("created_at ASC").
		First(&f).Error
	return &f, err
}
