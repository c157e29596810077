package documento

import (
	"strings"

	"github.com/rs/zerolog/log"
)

// extrator fills res from the text lines of a purchase order.
type extrator func(linhas []string, res *Resultado)

type formatoPedido struct {
	formato     Formato
	assinaturas []string
	extrair     extrator
}

// formatosPedido is the closed set of known vendor layouts, checked in order.
// Anything unmatched goes to the generic extractor.
var formatosPedido = []formatoPedido{
	{FormatoDPK, []string{"dpk distribuidora", "dpk.com.br"}, extrairDPK},
	{FormatoPellegrino, []string{"pellegrino distribuidora", "pellegrino.com.br"}, extrairPellegrino},
}

// DetectarFormato matches vendor fingerprints, case-insensitively, against the
// whole text.
func DetectarFormato(texto string) Formato {
	t := strings.ToLower(texto)
	for _, f := range formatosPedido {
		for _, a := range f.assinaturas {
			if strings.Contains(t, a) {
				return f.formato
			}
		}
	}
	return FormatoGenerico
}

func extratorDe(f Formato) extrator {
	for _, fp := range formatosPedido {
		if fp.formato == f {
			return fp.extrair
		}
	}
	return extrairGenerico
}

// ParseTextoPedido parses the text of a purchase order already extracted from
// a PDF.
func ParseTextoPedido(texto string) (res *Resultado) {
	formato := DetectarFormato(texto)
	res = novoResultado(formato)
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).Str("formato", string(formato)).Msg("documento: panic no extrator")
			res.Sucesso = false
			res.erro("falha inesperada ao processar pedido: %v", rec)
		}
	}()

	linhas := dividirLinhas(texto)
	lerCabecalhoPedido(texto, res)
	extratorDe(formato)(linhas, res)
	if formato == FormatoGenerico {
		res.aviso("formato não reconhecido: extração genérica encontrou %d itens", len(res.Itens))
	}
	fecharTotaisPedido(res)
	validarPedido(res)
	return res
}

func validarPedido(res *Resultado) {
	if len(res.Itens) == 0 {
		res.erro(MsgSemItens)
	}
	if res.Cabecalho.Numero == "" {
		res.erro("número do pedido não encontrado")
	}
	if res.Emitente.CNPJ == "" {
		res.aviso("CNPJ do emitente não encontrado no documento")
	}
	res.Sucesso = len(res.Erros) == 0
}
