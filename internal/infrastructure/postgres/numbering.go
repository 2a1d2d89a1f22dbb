package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/pataspro/petshop-api/internal/application/billing"
	"github.com/pataspro/petshop-api/pkg/fiscal"
)

var _ billing.NumberGenerator = (*NumberGenerator)(nil)

// maxSerializationRetries acota el reintento interno ante aborts 40001.
// Cada reintento es una transacción nueva; un número incrementado por una
// transacción abortada se descarta (la secuencia es monótona, no sin huecos).
const maxSerializationRetries = 3

// NumberGenerator produce números fiscales AAAA/NNNN con un contador por
// ámbito (empresa, tienda, año) en la tabla invoice_series. El
// leer-incrementar-escribir es un único upsert dentro de una transacción
// SERIALIZABLE: dos llamadas concurrentes del mismo ámbito jamás reciben el
// mismo número.
type NumberGenerator struct {
	runner *TxRunner
}

// NewNumberGenerator construye el generador sobre el runner transaccional.
func NewNumberGenerator(runner *TxRunner) *NumberGenerator {
	return &NumberGenerator{runner: runner}
}

// Next devuelve el siguiente número del ámbito, empezando en 0001 cada año.
func (g *NumberGenerator) Next(ctx context.Context, companyID, storeID string, year int) (string, error) {
	query := `
		INSERT INTO invoice_series (company_id, store_id, year, last_number)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (company_id, store_id, year)
		DO UPDATE SET last_number = invoice_series.last_number + 1
		RETURNING last_number`

	var seq int
	var lastErr error
	for attempt := 0; attempt < maxSerializationRetries; attempt++ {
		err := g.runner.RunSerializable(ctx, func(tx pgx.Tx) error {
			return tx.QueryRow(ctx, query, companyID, storeID, year).Scan(&seq)
		})
		if err == nil {
			return fiscal.FormatInvoiceNumber(year, seq), nil
		}
		if !isSerializationFailure(err) {
			return "", fmt.Errorf("next invoice number: %w", err)
		}
		lastErr = err
	}
	return "", fmt.Errorf("next invoice number: reintentos de serialización agotados: %w", lastErr)
}
