package service

import (
	"context"
	"errors"
	"strings"

	"autopecas/internal/dto"
	"autopecas/internal/model"
	"autopecas/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CategoriaService defines business operations for product categories.
type CategoriaService interface {
	Criar(ctx context.Context, req dto.CriarCategoriaRequest) (dto.CategoriaResponse, error)
	Listar(ctx context.Context) ([]dto.CategoriaResponse, error)
	Atualizar(ctx context.Context, id uuid.UUID, req dto.AtualizarCategoriaRequest) (dto.CategoriaResponse, error)
}

type categoriaService struct {
	repo repository.CategoriaRepository
}

func NewCategoriaService(repo repository.CategoriaRepository) CategoriaService {
	return &categoriaService{repo: repo}
}

func mapCategoria(c model.Categoria) dto.CategoriaResponse {
	return dto.CategoriaResponse{
		ID:        c.ID,
		Nome:      c.Nome,
		Descricao: c.Descricao,
		Ativo:     c.Ativo,
	}
}

func (s *categoriaService) nomeEmUso(ctx context.Context, nome string, exceto uuid.UUID) (bool, error) {
	existente, err := s.repo.ObterPorNome(ctx, nome)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return existente.ID != exceto, nil
}

func (s *categoriaService) Criar(ctx context.Context, req dto.CriarCategoriaRequest) (dto.CategoriaResponse, error) {
	nome := strings.TrimSpace(req.Nome)
	emUso, err := s.nomeEmUso(ctx, nome, uuid.Nil)
	if err != nil {
		return dto.CategoriaResponse{}, err
	}
	if emUso {
		return dto.CategoriaResponse{}, erroValidacao("já existe uma categoria com esse nome")
	}

	c := &model.Categoria{Nome: nome, Descricao: req.Descricao, Ativo: true}
	if err := s.repo.Criar(ctx, c); err != nil {
		return dto.CategoriaResponse{}, err
	}
	return mapCategoria(*c), nil
}

func (s *categoriaService) Listar(ctx context.Context) ([]dto.CategoriaResponse, error) {
	list, err := s.repo.Listar(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]dto.CategoriaResponse, 0, len(list))
	for _, c := range list {
		result = append(result, mapCategoria(c))
	}
	return result, nil
}

func (s *categoriaService) Atualizar(ctx context.Context, id uuid.UUID, req dto.AtualizarCategoriaRequest) (dto.CategoriaResponse, error) {
	c, err := s.repo.ObterPorID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CategoriaResponse{}, erroNaoEncontrado("categoria não encontrada")
		}
		return dto.CategoriaResponse{}, err
	}

	if req.Nome != nil {
		nome := strings.TrimSpace(*req.Nome)
		if !strings.EqualFold(nome, c.Nome) {
			emUso, err := s.nomeEmUso(ctx, nome, id)
			if err != nil {
				return dto.CategoriaResponse{}, err
			}
			if emUso {
				return dto.CategoriaResponse{}, erroValidacao("já existe uma categoria com esse nome")
			}
		}
		c.Nome = nome
	}
	if req.Descricao != nil {
		c.Descricao = req.Descricao
	}
	if req.Ativo != nil {
		c.Ativo = *req.Ativo
	}

	if err := s.repo.Atualizar(ctx, c); err != nil {
		return dto.CategoriaResponse{}, err
	}
	return mapCategoria(*c), nil
}
