package worker

// relatorio_worker.go
// Processes conference report jobs from QueueRelatorio, enqueued after a
// receipt is finalized. Renders the PDF to disk and, when a purchasing mailbox
// is configured, enqueues an email job with the file attached.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"autopecas/internal/infra"
	"autopecas/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// RelatorioJobPayload is the job envelope sent to QueueRelatorio.
type RelatorioJobPayload struct {
	NotaEntradaID string `json:"nota_entrada_id"`
}

// NotaLoader loads a receipt with supplier and lines.
type NotaLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.NotaEntrada, error)
}

// EmailEnqueuer is satisfied by *Dispatcher.
type EmailEnqueuer interface {
	EnqueueEmail(ctx context.Context, payload EmailJobPayload) error
}

type RelatorioWorker struct {
	notas        NotaLoader
	emails       EmailEnqueuer
	storagePath  string
	empresa      string
	emailDestino string
}

func NewRelatorioWorker(notas NotaLoader, emails EmailEnqueuer, storagePath, empresa, emailDestino string) *RelatorioWorker {
	return &RelatorioWorker{
		notas:        notas,
		emails:       emails,
		storagePath:  storagePath,
		empresa:      empresa,
		emailDestino: emailDestino,
	}
}

// Process handles a single report job:
//  1. Load the receipt with supplier and lines
//  2. Render the PDF under storagePath
//  3. Optionally enqueue the email job
func (w *RelatorioWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload RelatorioJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("relatorio_worker: invalid payload")
		return nil
	}
	notaID, err := uuid.Parse(payload.NotaEntradaID)
	if err != nil {
		log.Error().Str("nota_entrada_id", payload.NotaEntradaID).Msg("relatorio_worker: invalid nota_entrada_id")
		return nil
	}

	nota, err := w.notas.FindByID(ctx, notaID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Warn().Str("nota_entrada_id", payload.NotaEntradaID).Msg("relatorio_worker: nota not found")
		return nil
	}
	if err != nil {
		return fmt.Errorf("relatorio_worker: load nota: %w", err)
	}

	pdfPath, err := infra.SalvarRelatorioConferencia(nota, w.empresa, w.storagePath)
	if err != nil {
		return err
	}
	log.Info().Str("pdf", pdfPath).Str("nota_entrada_id", payload.NotaEntradaID).Msg("relatorio_worker: PDF generated")

	if w.emailDestino == "" || w.emails == nil {
		return nil
	}
	job := EmailJobPayload{
		ToEmail:       w.emailDestino,
		Subject:       fmt.Sprintf("Entrada finalizada: NF %s", nota.Numero),
		Body:          fmt.Sprintf("Segue em anexo o relatório de conferência da NF %s.\nTotal: R$ %s", nota.Numero, nota.ValorTotal.StringFixed(2)),
		PDFPath:       pdfPath,
		NotaEntradaID: nota.ID.String(),
	}
	if err := w.emails.EnqueueEmail(ctx, job); err != nil {
		log.Warn().Err(err).Str("email", w.emailDestino).Msg("relatorio_worker: failed to enqueue email")
	}
	return nil
}
