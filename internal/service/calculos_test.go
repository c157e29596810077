package service

import (
	"testing"

	"autopecas/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, d(want).Equal(got), append([]interface{}{"want %s, got %s", want, got.String()}, msgAndArgs...)...)
}

func TestCalcularCustoUnitario_FreightApportioned(t *testing.T) {
	// header total 1000.00, products 950.00, freight 50.00, one line 10 x 95.00
	nota := &model.NotaEntrada{
		ValorProdutos: d("950.00"),
		ValorFrete:    d("50.00"),
		ValorTotal:    d("1000.00"),
		RatearFrete:   true,
	}
	item := &model.ItemNotaEntrada{Quantidade: d("10"), ValorUnitario: d("95.00"), ValorTotal: d("950.00")}

	assertDecimal(t, "100.00", CalcularCustoUnitario(nota, item))
}

func TestCalcularCustoUnitario(t *testing.T) {
	tests := []struct {
		name string
		nota model.NotaEntrada
		item model.ItemNotaEntrada
		want string
	}{
		{
			name: "taxes spread per unit",
			nota: model.NotaEntrada{},
			item: model.ItemNotaEntrada{Quantidade: d("4"), ValorUnitario: d("10"), ValorIPI: d("2"), ValorICMSST: d("1")},
			want: "10.75",
		},
		{
			name: "freight ignored without flag",
			nota: model.NotaEntrada{ValorProdutos: d("100"), ValorFrete: d("30")},
			item: model.ItemNotaEntrada{Quantidade: d("2"), ValorUnitario: d("50"), ValorTotal: d("100")},
			want: "50",
		},
		{
			name: "freight ignored when product total is zero",
			nota: model.NotaEntrada{RatearFrete: true, ValorFrete: d("30")},
			item: model.ItemNotaEntrada{Quantidade: d("2"), ValorUnitario: d("50"), ValorTotal: d("100")},
			want: "50",
		},
		{
			name: "proportional share across two lines",
			nota: model.NotaEntrada{RatearFrete: true, ValorProdutos: d("300"), ValorFrete: d("30")},
			item: model.ItemNotaEntrada{Quantidade: d("3"), ValorUnitario: d("33.3333"), ValorTotal: d("100")},
			want: "36.6666",
		},
		{
			name: "zero quantity keeps unit price",
			nota: model.NotaEntrada{RatearFrete: true, ValorProdutos: d("100"), ValorFrete: d("10")},
			item: model.ItemNotaEntrada{Quantidade: decimal.Zero, ValorUnitario: d("7.5"), ValorIPI: d("3"), ValorTotal: d("0")},
			want: "7.5",
		},
		{
			name: "rounded to four decimals",
			nota: model.NotaEntrada{},
			item: model.ItemNotaEntrada{Quantidade: d("3"), ValorUnitario: d("1"), ValorIPI: d("1")},
			want: "1.3333",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertDecimal(t, tt.want, CalcularCustoUnitario(&tt.nota, &tt.item))
		})
	}
}

func TestCalcularTotais(t *testing.T) {
	nota := &model.NotaEntrada{
		ValorFrete:          d("10"),
		ValorSeguro:         d("2"),
		ValorOutrasDespesas: d("3"),
		ValorIPI:            d("5"),
		ValorICMSST:         d("4"),
		ValorDesconto:       d("6"),
	}
	itens := []model.ItemNotaEntrada{{ValorTotal: d("100")}, {ValorTotal: d("50.50")}}

	CalcularTotais(nota, itens)

	assertDecimal(t, "150.50", nota.ValorProdutos)
	assertDecimal(t, "168.50", nota.ValorTotal)
}

func TestTotalItem(t *testing.T) {
	assertDecimal(t, "47.50", TotalItem(d("5"), d("10"), d("2.5")))
	assertDecimal(t, "3.33", TotalItem(d("3"), d("1.111"), decimal.Zero))
}

func TestPrecoVendaPorMargem(t *testing.T) {
	assertDecimal(t, "14.29", PrecoVendaPorMargem(d("10"), d("30")))
	assertDecimal(t, "20.00", PrecoVendaPorMargem(d("10"), d("50")))
	assertDecimal(t, "10.00", PrecoVendaPorMargem(d("10"), decimal.Zero))
	// 100% or more falls back to 30%
	assertDecimal(t, "14.29", PrecoVendaPorMargem(d("10"), d("100")))
	assertDecimal(t, "14.29", PrecoVendaPorMargem(d("10"), d("250")))
}

func TestPrecoCredito(t *testing.T) {
	assertDecimal(t, "21.00", PrecoCredito(d("20")))
	assertDecimal(t, "15.00", PrecoCredito(d("14.29")))
}

func TestReprecificarFinalizacao(t *testing.T) {
	t.Run("scales debit and credit by the cash ratio", func(t *testing.T) {
		got := ReprecificarFinalizacao(d("12"), d("40"), Precos{Venda: d("10"), Debito: d("10"), Credito: d("10.50")})
		assertDecimal(t, "20", got.Venda)
		assertDecimal(t, "20", got.Debito)
		assertDecimal(t, "21", got.Credito)
	})
	t.Run("margin of 100 or more marks up 50 percent", func(t *testing.T) {
		got := ReprecificarFinalizacao(d("12"), d("100"), Precos{})
		assertDecimal(t, "18", got.Venda)
		assert.True(t, got.Debito.IsZero())
		assert.True(t, got.Credito.IsZero())
	})
	t.Run("no old cash price keeps dependent prices", func(t *testing.T) {
		got := ReprecificarFinalizacao(d("10"), d("50"), Precos{Debito: d("7"), Credito: d("8")})
		assertDecimal(t, "20", got.Venda)
		assertDecimal(t, "7", got.Debito)
		assertDecimal(t, "8", got.Credito)
	})
}
