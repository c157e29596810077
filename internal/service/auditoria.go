package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"autopecas/internal/dto"
	"autopecas/internal/model"
	"autopecas/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditoriaService appends to and reads the per-receipt audit trail.
type AuditoriaService interface {
	RegistrarTx(tx *gorm.DB, ev Evento) error
	Listar(ctx context.Context, notaID uuid.UUID) ([]dto.EventoNotaEntradaResponse, error)
}

// Evento is one audit entry before it is persisted.
type Evento struct {
	NotaID    uuid.UUID
	ItemID    *uuid.UUID
	Acao      model.AcaoEvento
	Descricao string
	Dados     map[string]any
	UsuarioID uuid.UUID
}

type auditoriaService struct {
	repo repository.EventoNotaEntradaRepository
}

func NewAuditoriaService(repo repository.EventoNotaEntradaRepository) AuditoriaService {
	return &auditoriaService{repo: repo}
}

func (s *auditoriaService) RegistrarTx(tx *gorm.DB, ev Evento) error {
	e := &model.EventoNotaEntrada{
		NotaEntradaID: ev.NotaID,
		ItemID:        ev.ItemID,
		Acao:          ev.Acao,
		Descricao:     ev.Descricao,
		UsuarioID:     usuarioPtr(ev.UsuarioID),
	}
	if len(ev.Dados) > 0 {
		raw, err := json.Marshal(ev.Dados)
		if err != nil {
			return fmt.Errorf("auditoria: serializar dados: %w", err)
		}
		e.Dados = datatypes.JSON(raw)
	}
	if err := s.repo.CreateTx(tx, e); err != nil {
		return fmt.Errorf("auditoria: registrar %s: %w", ev.Acao, err)
	}
	return nil
}

func (s *auditoriaService) Listar(ctx context.Context, notaID uuid.UUID) ([]dto.EventoNotaEntradaResponse, error) {
	eventos, err := s.repo.ListByNota(ctx, notaID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.EventoNotaEntradaResponse, 0, len(eventos))
	for _, e := range eventos {
		out = append(out, eventoToResponse(e))
	}
	return out, nil
}

func eventoToResponse(e model.EventoNotaEntrada) dto.EventoNotaEntradaResponse {
	r := dto.EventoNotaEntradaResponse{
		ID:        e.ID.String(),
		ItemID:    uuidString(e.ItemID),
		Acao:      string(e.Acao),
		Descricao: e.Descricao,
		UsuarioID: uuidString(e.UsuarioID),
		CreatedAt: e.CreatedAt.Format(time.RFC3339),
	}
	if len(e.Dados) > 0 {
		if err := json.Unmarshal(e.Dados, &r.Dados); err != nil {
			log.Warn().Err(err).Str("evento_id", e.ID.String()).Msg("auditoria: dados ilegíveis")
		}
	}
	return r
}

// usuarioPtr maps the anonymous user (uuid.Nil) to NULL.
func usuarioPtr(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}

func uuidString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}
