package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"autopecas/internal/documento"
	"autopecas/internal/dto"
	"autopecas/internal/model"
	"autopecas/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FornecedorService interface {
	Criar(ctx context.Context, req dto.CriarFornecedorRequest) (*dto.FornecedorResponse, error)
	Listar(ctx context.Context) ([]dto.FornecedorResponse, error)
	ObterPorID(ctx context.Context, id uuid.UUID) (*dto.FornecedorResponse, error)
	Cotacoes(ctx context.Context, id uuid.UUID) ([]dto.CotacaoResponse, error)
}

type fornecedorService struct {
	repo     repository.FornecedorRepository
	cotacoes repository.CotacaoFornecedorRepository
}

func NewFornecedorService(repo repository.FornecedorRepository, cotacoes repository.CotacaoFornecedorRepository) FornecedorService {
	return &fornecedorService{repo: repo, cotacoes: cotacoes}
}

func (s *fornecedorService) Criar(ctx context.Context, req dto.CriarFornecedorRequest) (*dto.FornecedorResponse, error) {
	cnpj := documento.FormatarCNPJ(req.CNPJ)
	if _, err := s.repo.FindByCNPJ(ctx, cnpj); err == nil {
		return nil, erroValidacao("já existe um fornecedor com o CNPJ %s", cnpj)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	f := &model.Fornecedor{
		RazaoSocial:       strings.TrimSpace(req.RazaoSocial),
		NomeFantasia:      strings.TrimSpace(req.NomeFantasia),
		CNPJ:              cnpj,
		InscricaoEstadual: req.InscricaoEstadual,
		Logradouro:        req.Logradouro,
		Numero:            req.Numero,
		Bairro:            req.Bairro,
		Cidade:            req.Cidade,
		UF:                strings.ToUpper(req.UF),
		CEP:               req.CEP,
		Telefone:          req.Telefone,
		Email:             req.Email,
		PrazoEntregaDias:  req.PrazoEntregaDias,
		Ativo:             true,
	}
	if err := s.repo.Create(ctx, f); err != nil {
		return nil, fmt.Errorf("criar fornecedor: %w", err)
	}
	resp := fornecedorToResponse(f)
	return &resp, nil
}

func (s *fornecedorService) Listar(ctx context.Context) ([]dto.FornecedorResponse, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.FornecedorResponse, 0, len(list))
	for i := range list {
		resp = append(resp, fornecedorToResponse(&list[i]))
	}
	return resp, nil
}

func (s *fornecedorService) ObterPorID(ctx context.Context, id uuid.UUID) (*dto.FornecedorResponse, error) {
	f, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, erroNaoEncontrado("fornecedor não encontrado")
	}
	if err != nil {
		return nil, err
	}
	resp := fornecedorToResponse(f)
	return &resp, nil
}

func (s *fornecedorService) Cotacoes(ctx context.Context, id uuid.UUID) ([]dto.CotacaoResponse, error) {
	if _, err := s.ObterPorID(ctx, id); err != nil {
		return nil, err
	}
	rows, err := s.cotacoes.ListByFornecedor(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("listar cotações: %w", err)
	}
	return cotacoesToResponse(rows), nil
}

func fornecedorToResponse(f *model.Fornecedor) dto.FornecedorResponse {
	return dto.FornecedorResponse{
		ID:                f.ID.String(),
		RazaoSocial:       f.RazaoSocial,
		NomeFantasia:      f.NomeFantasia,
		CNPJ:              f.CNPJ,
		InscricaoEstadual: f.InscricaoEstadual,
		Cidade:            f.Cidade,
		UF:                f.UF,
		Telefone:          f.Telefone,
		Email:             f.Email,
		PrazoEntregaDias:  f.PrazoEntregaDias,
		Ativo:             f.Ativo,
	}
}
