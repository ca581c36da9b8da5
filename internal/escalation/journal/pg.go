package journal

import (
	"context"
	_ "embed"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/linnemanlabs/ward/internal/escalation"
)

var tracer = otel.Tracer("github.com/linnemanlabs/ward/internal/escalation/journal")

//go:embed schema.sql
var schema string

// PG persists transitions in PostgreSQL.
type PG struct {
	pool *pgxpool.Pool
}

// NewPG applies the schema and returns a ready postgres journal.
func NewPG(ctx context.Context, pool *pgxpool.Pool) (*PG, error) {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &PG{pool: pool}, nil
}

// Record appends one transition row.
func (p *PG) Record(ctx context.Context, t escalation.Transition) error {
	ctx, span := tracer.Start(ctx, "journal.Record", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "INSERT"),
	))
	defer span.End()

	const query = `INSERT INTO escalation_transitions (item_id, from_status, to_status, actor, at)
		VALUES ($1, $2, $3, $4, $5)`

	if _, err := p.pool.Exec(ctx, query, t.ItemID, string(t.From), string(t.To), t.Actor, t.At); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("insert transition: %w", err)
	}
	return nil
}

// ForItem returns the recorded transitions for one item, oldest first.
func (p *PG) ForItem(ctx context.Context, itemID string) ([]escalation.Transition, error) {
	ctx, span := tracer.Start(ctx, "journal.ForItem", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "SELECT"),
	))
	defer span.End()

	const query = `SELECT item_id, from_status, to_status, actor, at
		FROM escalation_transitions WHERE item_id = $1 ORDER BY at ASC, id ASC`

	rows, err := p.pool.Query(ctx, query, itemID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("query transitions: %w", err)
	}
	defer rows.Close()

	var out []escalation.Transition
	for rows.Next() {
		var t escalation.Transition
		var from, to string
		if err := rows.Scan(&t.ItemID, &from, &to, &t.Actor, &t.At); err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		t.From, t.To = escalation.Status(from), escalation.Status(to)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transitions: %w", err)
	}
	return out, nil
}
