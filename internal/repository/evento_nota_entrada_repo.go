package repository

import (
	"context"

	"autopecas/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EventoNotaEntradaRepository is append-only: there is no update or delete.
type EventoNotaEntradaRepository interface {
	CreateTx(tx *gorm.DB, e *model.EventoNotaEntrada) error
	ListByNota(ctx context.Context, notaID uuid.UUID) ([]model.EventoNotaEntrada, error)
}

type eventoNotaEntradaRepo struct{ db *gorm.DB }

func NewEventoNotaEntradaRepository(db *gorm.DB) EventoNotaEntradaRepository {
	return &eventoNotaEntradaRepo{db: db}
}

func (r *eventoNotaEntradaRepo) CreateTx(tx *gorm.DB, e *model.EventoNotaEntrada) error {
	return tx.Create(e).Error
}

// ListByNota returns the trail oldest-first.
func (r *eventoNotaEntradaRepo) ListByNota(ctx context.Context, notaID uuid.UUID) ([]model.EventoNotaEntrada, error) {
	var eventos []model.EventoNotaEntrada
	err := r.db.WithContext(ctx).
		Where("nota_entrada_id = ?", notaID).
		Order("created_at ASC, id ASC").
		Find(&eventos).Error
	return eventos, err
}
