package service

import (
	"autopecas/internal/model"

	"github.com/shopspring/decimal"
)

var (
	cem = decimal.NewFromInt(100)
	um  = decimal.NewFromInt(1)

	// margemSubstituta replaces a product-creation margin of 100% or more.
	margemSubstituta = decimal.NewFromInt(30)
	fatorCredito     = decimal.RequireFromString("1.05")
	// fatorSemMargem marks up cost at finalization when the receipt margin is 100% or more.
	fatorSemMargem = decimal.RequireFromString("1.5")
)

// TotalItem is quantity * unit price - discount, 2 decimals.
func TotalItem(quantidade, valorUnitario, desconto decimal.Decimal) decimal.Decimal {
	return quantidade.Mul(valorUnitario).Sub(desconto).Round(2)
}

// CalcularCustoUnitario returns the landed unit cost of a line:
//
//	unit + ipi/qty + icms_st/qty [+ frete * (total/valor_produtos) / qty]
//
// The freight share only applies with RatearFrete and positive freight and
// product total. A non-positive quantity contributes nothing. 4 decimals.
func CalcularCustoUnitario(nota *model.NotaEntrada, item *model.ItemNotaEntrada) decimal.Decimal {
	custo := item.ValorUnitario
	qtd := item.Quantidade
	if !qtd.IsPositive() {
		return custo.Round(4)
	}

	custo = custo.Add(item.ValorIPI.Div(qtd)).Add(item.ValorICMSST.Div(qtd))
	if nota.RatearFrete && nota.ValorFrete.IsPositive() && nota.ValorProdutos.IsPositive() {
		proporcao := item.ValorTotal.Div(nota.ValorProdutos)
		custo = custo.Add(nota.ValorFrete.Mul(proporcao).Div(qtd))
	}
	return custo.Round(4)
}

// CalcularTotais recomputes the header totals from the given lines.
func CalcularTotais(nota *model.NotaEntrada, itens []model.ItemNotaEntrada) {
	produtos := decimal.Zero
	for _, it := range itens {
		produtos = produtos.Add(it.ValorTotal)
	}
	nota.ValorProdutos = produtos
	nota.ValorTotal = produtos.
		Add(nota.ValorFrete).
		Add(nota.ValorSeguro).
		Add(nota.ValorOutrasDespesas).
		Add(nota.ValorIPI).
		Add(nota.ValorICMSST).
		Sub(nota.ValorDesconto)
}

// PrecoVendaPorMargem is the cash price of a new product: cost / (1 - m/100),
// 2 decimals. A margin of 100% or more is replaced by 30%.
func PrecoVendaPorMargem(custo, margem decimal.Decimal) decimal.Decimal {
	if margem.GreaterThanOrEqual(cem) {
		margem = margemSubstituta
	}
	return custo.Div(um.Sub(margem.Div(cem))).Round(2)
}

// PrecoCredito is the credit-card price for a cash price.
func PrecoCredito(venda decimal.Decimal) decimal.Decimal {
	return venda.Mul(fatorCredito).Round(2)
}

// Precos groups the three sale prices of a product.
type Precos struct {
	Venda   decimal.Decimal
	Debito  decimal.Decimal
	Credito decimal.Decimal
}

// ReprecificarFinalizacao derives the new prices applied when a receipt with
// AtualizarPrecoVenda is finalized. Below 100% the cash price is
// cost / (1 - m/100), otherwise cost * 1.5. Debit and credit follow the
// new/old cash ratio when the old cash price and the dependent price are
// positive; otherwise they keep their value.
func ReprecificarFinalizacao(custo, margem decimal.Decimal, atual Precos) Precos {
	var venda decimal.Decimal
	if margem.LessThan(cem) {
		venda = custo.Div(um.Sub(margem.Div(cem)))
	} else {
		venda = custo.Mul(fatorSemMargem)
	}
	novo := Precos{Venda: venda.Round(2), Debito: atual.Debito, Credito: atual.Credito}

	if atual.Venda.IsPositive() {
		fator := novo.Venda.Div(atual.Venda)
		if atual.Debito.IsPositive() {
			novo.Debito = atual.Debito.Mul(fator).Round(2)
		}
		if atual.Credito.IsPositive() {
			novo.Credito = atual.Credito.Mul(fator).Round(2)
		}
	}
	return novo
}
