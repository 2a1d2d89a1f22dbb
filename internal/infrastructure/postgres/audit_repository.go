package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/pataspro/petshop-api/internal/application/billing"
)

var _ billing.AuditSink = (*AuditRepo)(nil)

// AuditRepo persiste entradas de auditoría en audit_log. Los snapshots
// antes/después van como JSONB. El que llama decide si un fallo aquí es
// fatal; los casos de uso lo tratan como fire-and-forget.
type AuditRepo struct {
	q Querier
}

// NewAuditRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAuditRepository(q Querier) *AuditRepo {
	return &AuditRepo{q: q}
}

// Record inserta una entrada de auditoría.
func (r *AuditRepo) Record(ctx context.Context, entry billing.AuditEntry) error {
	before, err := marshalSnapshot(entry.Before)
	if err != nil {
		return fmt.Errorf("marshal audit before: %w", err)
	}
	after, err := marshalSnapshot(entry.After)
	if err != nil {
		return fmt.Errorf("marshal audit after: %w", err)
	}
	query := `
		INSERT INTO audit_log (id, entity_type, entity_id, action, performed_by, before, after, at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err = r.q.Exec(ctx, query,
		uuid.New().String(), entry.EntityType, entry.EntityID, entry.Action,
		entry.PerformedBy, before, after, entry.At,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func marshalSnapshot(m map[string]string) ([]byte, error) {
	if len(m) == 0 {
		return nil, nil
	}
	return json.Marshal(m)
}
