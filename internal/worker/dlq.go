package worker

// Jobs that still fail after maxAttempts are parked in dlq:<fila> so the
// receipt they belong to can be found and the report regenerated by hand.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const prefixoDLQ = "dlq:"

// EntradaDLQ is one parked job.
type EntradaDLQ struct {
	Fila          string          `json:"fila"`
	Tipo          string          `json:"tipo"`
	NotaEntradaID string          `json:"nota_entrada_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
	Motivo        string          `json:"motivo"`
	Tentativas    int             `json:"tentativas"`
	FalhouEm      time.Time       `json:"falhou_em"`
}

func novaEntradaDLQ(fila string, job Job, motivo string) EntradaDLQ {
	e := EntradaDLQ{
		Fila:       fila,
		Tipo:       job.Type,
		Payload:    job.Payload,
		Motivo:     motivo,
		Tentativas: job.Attempts,
		FalhouEm:   time.Now().UTC(),
	}
	// both job payloads carry the receipt id under the same key
	var ref struct {
		NotaEntradaID string `json:"nota_entrada_id"`
	}
	if json.Unmarshal(job.Payload, &ref) == nil {
		e.NotaEntradaID = ref.NotaEntradaID
	}
	return e
}

func enviarParaDLQ(ctx context.Context, rdb redis.Cmdable, fila string, job Job, motivo string) {
	e := novaEntradaDLQ(fila, job, motivo)
	data, err := json.Marshal(e)
	if err != nil {
		log.Error().Err(err).Str("fila", fila).Msg("dlq: falha ao serializar job")
		return
	}
	if err := rdb.LPush(ctx, prefixoDLQ+fila, data).Err(); err != nil {
		log.Error().Err(err).Str("fila", fila).Str("nota_id", e.NotaEntradaID).Msg("dlq: falha ao mover job")
		return
	}
	log.Warn().
		Str("fila", fila).
		Str("tipo", e.Tipo).
		Str("nota_id", e.NotaEntradaID).
		Int("tentativas", e.Tentativas).
		Str("motivo", motivo).
		Msg("dlq: job movido para a fila de falhas")
}

// ProfundidadeDLQ reports how many parked jobs each queue has.
func ProfundidadeDLQ(ctx context.Context, rdb redis.Cmdable) (map[string]int64, error) {
	out := make(map[string]int64, 2)
	for _, fila := range []string{QueueRelatorio, QueueEmail} {
		n, err := rdb.LLen(ctx, prefixoDLQ+fila).Result()
		if err != nil {
			return nil, err
		}
		out[fila] = n
	}
	return out, nil
}

// ListarDLQ returns up to limite parked jobs of a queue, newest first.
func ListarDLQ(ctx context.Context, rdb redis.Cmdable, fila string, limite int64) ([]EntradaDLQ, error) {
	brutos, err := rdb.LRange(ctx, prefixoDLQ+fila, 0, limite-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]EntradaDLQ, 0, len(brutos))
	for _, b := range brutos {
		var e EntradaDLQ
		if err := json.Unmarshal([]byte(b), &e); err != nil {
			log.Warn().Err(err).Str("fila", fila).Msg("dlq: entrada ilegível ignorada")
			continue
		}
		out = append(out, e)
	}
	return out, nil
}
