package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"autopecas/internal/config"
	"autopecas/internal/dto"
	"autopecas/internal/infra"
	"autopecas/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "router_test_secret_with_32_chars!"

const nfe = `<?xml version="1.0" encoding="UTF-8"?>
<nfeProc xmlns="http://www.portalfiscal.inf.br/nfe" versao="4.00">
  <NFe>
    <infNFe Id="NFe35240312345678000190550010000123451000123458" versao="4.00">
      <ide><natOp>VENDA</natOp><serie>1</serie><nNF>12345</nNF><dhEmi>2024-03-12T10:30:00-03:00</dhEmi></ide>
      <emit><CNPJ>12345678000190</CNPJ><xNome>DISTRIBUIDORA DE AUTOPECAS SUL LTDA</xNome></emit>
      <det nItem="1">
        <prod>
          <cProd>FO-1234</cProd><cEAN>7891234567895</cEAN><xProd>FILTRO DE OLEO PSL55</xProd>
          <uCom>UN</uCom><qCom>10.0000</qCom><vUnCom>18.50</vUnCom><vProd>185.00</vProd>
        </prod>
      </det>
      <det nItem="2">
        <prod>
          <cProd>PF-2201</cProd><cEAN>SEM GTIN</cEAN><xProd>PASTILHA FREIO DIANTEIRA</xProd>
          <uCom>JG</uCom><qCom>2</qCom><vUnCom>89.90</vUnCom><vProd>179.80</vProd>
        </prod>
      </det>
      <total><ICMSTot><vProd>364.80</vProd><vNF>364.80</vNF></ICMSTot></total>
    </infNFe>
  </NFe>
</nfeProc>`

type testEnv struct {
	engine     *gin.Engine
	db         *gorm.DB
	comprador  string
	estoquista string
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Env:                   "test",
		DatabaseURL:           fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		JWTSecret:             testSecret,
		JWTExpirationHours:    8,
		JWTRefreshHours:       24,
		MargemPadrao:          30,
		MaxUploadXMLBytes:     1 << 20,
		MaxUploadPDFBytes:     1 << 20,
		ImportLockTTLSegundos: 60,
		NomeEmpresa:           "Autopeças Teste",
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	comprador := model.Usuario{Username: "compras", Nome: "Maria Compras", PasswordHash: "x", Rol: "comprador", Ativo: true}
	estoquista := model.Usuario{Username: "estoque", Nome: "João Estoque", PasswordHash: "x", Rol: "estoquista", Ativo: true}
	require.NoError(t, db.Create(&comprador).Error)
	require.NoError(t, db.Create(&estoquista).Error)

	return &testEnv{
		engine:     New(cfg, db, nil),
		db:         db,
		comprador:  signToken(t, comprador),
		estoquista: signToken(t, estoquista),
	}
}

func signToken(t *testing.T, u model.Usuario) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id": u.ID.String(), "username": u.Username, "rol": u.Rol,
		"exp": time.Now().Add(time.Hour).Unix(), "iat": time.Now().Unix(),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func (e *testEnv) upload(t *testing.T, path, nome string, conteudo []byte, campos map[string]string, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("arquivo", nome)
	require.NoError(t, err)
	_, err = fw.Write(conteudo)
	require.NoError(t, err)
	for k, v := range campos {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestHealth_SemRedis(t *testing.T) {
	env := setupTestEnv(t)

	w := env.do(t, http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"db":"connected","redis":"disabled"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRequestID_Propagado(t *testing.T) {
	env := setupTestEnv(t)

	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestCompras_Autorizacao(t *testing.T) {
	env := setupTestEnv(t)

	w := env.do(t, http.MethodGet, "/v1/compras/notas", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.upload(t, "/v1/compras/notas/importar-xml", "nfe.xml", []byte(nfe), nil, env.estoquista)
	assert.Equal(t, http.StatusForbidden, w.Code, "stock clerks cannot import")

	w = env.do(t, http.MethodGet, "/v1/compras/notas", nil, env.estoquista)
	assert.Equal(t, http.StatusOK, w.Code, "stock clerks can read")
}

func TestCompras_ErrosMapeados(t *testing.T) {
	env := setupTestEnv(t)

	w := env.do(t, http.MethodGet, "/v1/compras/notas/nao-e-uuid", nil, env.comprador)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/v1/compras/notas/"+uuid.NewString(), nil, env.comprador)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.upload(t, "/v1/compras/notas/importar-xml", "x.xml", []byte("<html/>"), nil, env.comprador)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decode[map[string]any](t, w)
	assert.NotEmpty(t, body["detail"])
	assert.NotNil(t, body["resultado"], "parser output is returned")

	w = env.upload(t, "/v1/compras/notas/importar-xml", "nfe.xml", []byte(nfe),
		map[string]string{"ratear_frete": "talvez"}, env.comprador)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.upload(t, "/v1/compras/notas/importar-pdf", "p.pdf", []byte("%PDF-1.4"), nil, env.comprador)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, "fornecedor_id is required")

	w = env.do(t, http.MethodPost, "/v1/compras/notas", map[string]any{"serie": "1"}, env.comprador)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), `"Numero":"required"`)
}

func TestCompras_ArquivoGrandeRecusado(t *testing.T) {
	env := setupTestEnv(t)

	grande := bytes.Repeat([]byte(" "), (1<<20)+1)
	w := env.upload(t, "/v1/compras/notas/importar-xml", "nfe.xml", grande, nil, env.comprador)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestCompras_FluxoCompleto(t *testing.T) {
	env := setupTestEnv(t)
	cb := "7891234567895"
	filtro := model.Produto{Codigo: "000100", CodigoBarras: &cb, Descricao: "FILTRO DE OLEO TECFIL PSL55", Unidade: "UN", Estoque: 5, Ativo: true}
	require.NoError(t, env.db.Create(&filtro).Error)

	// preview does not persist
	w := env.upload(t, "/v1/compras/documentos/analisar", "nfe.xml", []byte(nfe), nil, env.comprador)
	require.Equal(t, http.StatusOK, w.Code)
	var notas int64
	require.NoError(t, env.db.Model(&model.NotaEntrada{}).Count(&notas).Error)
	assert.Zero(t, notas)

	w = env.upload(t, "/v1/compras/notas/importar-xml", "nfe.xml", []byte(nfe),
		map[string]string{"atualizar_cotacao": "false"}, env.comprador)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	imp := decode[dto.ImportacaoResponse](t, w)
	assert.Equal(t, 1, imp.ItensVinculados)
	assert.False(t, imp.Nota.AtualizarCotacao)
	notaID := imp.Nota.ID
	require.Len(t, imp.Nota.Itens, 2)
	pastilhaID := imp.Nota.Itens[1].ID

	w = env.upload(t, "/v1/compras/notas/importar-xml", "nfe.xml", []byte(nfe), nil, env.comprador)
	require.Equal(t, http.StatusConflict, w.Code)
	conflito := decode[map[string]any](t, w)
	assert.Equal(t, notaID, conflito["resource_id"])
	assert.Equal(t, "pendente", conflito["status"])

	w = env.do(t, http.MethodPost, "/v1/compras/notas/"+notaID+"/conferir-todos", nil, env.estoquista)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "conferida", decode[dto.NotaEntradaResponse](t, w).Status)

	w = env.do(t, http.MethodPost, "/v1/compras/notas/"+notaID+"/finalizar", nil, env.comprador)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, "unlinked line blocks finalization")

	w = env.do(t, http.MethodPost, "/v1/compras/notas/"+notaID+"/itens/"+pastilhaID+"/criar-produto", nil, env.comprador)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	novo := decode[dto.ProdutoResponse](t, w)
	assert.Equal(t, "PF-2201", novo.ReferenciaFabricante)

	w = env.do(t, http.MethodPost, "/v1/compras/notas/"+notaID+"/finalizar", nil, env.comprador)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[dto.ResultadoFinalizacaoResponse](t, w)
	assert.True(t, res.Sucesso)
	assert.Equal(t, 2, res.ItensProcessados)
	assert.Equal(t, 2, res.EstoqueAtualizado)

	w = env.do(t, http.MethodGet, "/v1/preco/"+cb, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 15, decode[dto.ConsultaPrecoResponse](t, w).EstoqueDisponivel)

	w = env.do(t, http.MethodGet, "/v1/estoque/movimentacoes?nota_entrada_id="+notaID, nil, env.estoquista)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, decode[dto.MovimentacaoListResponse](t, w).Total)

	w = env.do(t, http.MethodPost, "/v1/compras/notas/"+notaID+"/cancelar", map[string]string{"motivo": "tarde demais"}, env.comprador)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, "finalized receipts are terminal")

	w = env.do(t, http.MethodGet, "/v1/compras/notas/"+notaID+"/eventos", nil, env.estoquista)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decode[[]dto.EventoNotaEntradaResponse](t, w))

	w = env.do(t, http.MethodGet, "/v1/compras/notas/"+notaID+"/itens.xlsx", nil, env.estoquista)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")
	assert.Equal(t, "PK", w.Body.String()[:2])

	w = env.do(t, http.MethodGet, "/v1/compras/notas/"+notaID+"/relatorio.pdf", nil, env.estoquista)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))
}

func TestConsultaPreco_ProdutoInexistente(t *testing.T) {
	env := setupTestEnv(t)

	w := env.do(t, http.MethodGet, "/v1/preco/0000000000000", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFornecedores(t *testing.T) {
	env := setupTestEnv(t)

	req := dto.CriarFornecedorRequest{RazaoSocial: "Peças Norte Ltda", CNPJ: "98765432000110", UF: "pa"}
	w := env.do(t, http.MethodPost, "/v1/fornecedores", req, env.comprador)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	f := decode[dto.FornecedorResponse](t, w)
	assert.Equal(t, "98.765.432/0001-10", f.CNPJ)
	assert.Equal(t, "PA", f.UF)

	w = env.do(t, http.MethodPost, "/v1/fornecedores", req, env.comprador)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = env.do(t, http.MethodPost, "/v1/fornecedores", req, env.estoquista)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodGet, "/v1/fornecedores/"+f.ID+"/cotacoes", nil, env.comprador)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}
