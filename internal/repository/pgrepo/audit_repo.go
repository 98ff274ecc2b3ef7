package pgrepo

import (
	"context"
	"time"

	"github.com/fsdevblog/groph-bank/internal/domain"
	"github.com/fsdevblog/groph-bank/internal/repository/repoargs"
	"github.com/fsdevblog/groph-bank/pkg/uow"
	"github.com/jackc/pgx/v5"
)

const auditColumns = "id, created_at, principal, action_type, affected_entity, affected_id, " +
	"old_value, new_value, origin"

// AuditRepository единственный владелец таблицы audit_logs. Путей update/delete нет:
// журнал append-only.
type AuditRepository struct {
	conn uow.DBTX
}

func NewAuditRepository(conn uow.DBTX) *AuditRepository {
	return &AuditRepository{conn: conn}
}

func (r *AuditRepository) Create(
	ctx context.Context,
	args repoargs.AuditEntryCreate,
) (*domain.AuditEntry, error) {
	row := r.conn.QueryRow(ctx, `
		INSERT INTO audit_logs (principal, action_type, affected_entity, affected_id, old_value, new_value, origin)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+auditColumns,
		args.Principal, args.Action, args.AffectedEntity, args.AffectedID,
		args.OldValue, args.NewValue, args.Origin,
	)
	entry, err := scanAuditEntry(row)
	if err != nil {
		return nil, convertErr(err, "creating audit entry")
	}
	return entry, nil
}

// Query возвращает записи журнала в интервале [Start, End] отсортированные по времени по убыванию.
// Zero-value End означает "до текущего момента".
func (r *AuditRepository) Query(
	ctx context.Context,
	q repoargs.AuditQuery,
) ([]domain.AuditEntry, error) {
	end := q.End
	if end.IsZero() {
		end = time.Now()
	}

	rows, err := r.conn.Query(ctx, `
		SELECT `+auditColumns+`
		FROM audit_logs
		WHERE created_at >= $1
		  AND created_at <= $2
		  AND ($3::text IS NULL OR principal = $3)
		ORDER BY created_at DESC, id DESC`,
		q.Start, end, q.Principal,
	)
	if err != nil {
		return nil, convertErr(err, "querying audit log")
	}
	defer rows.Close()

	var entries []domain.AuditEntry
	for rows.Next() {
		entry, scanErr := scanAuditEntry(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "scanning audit entry")
		}
		entries = append(entries, *entry)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "querying audit log")
	}
	return entries, nil
}

func scanAuditEntry(row pgx.Row) (*domain.AuditEntry, error) {
	var m domain.AuditEntry
	err := row.Scan(
		&m.ID,
		&m.CreatedAt,
		&m.Principal,
		&m.Action,
		&m.AffectedEntity,
		&m.AffectedID,
		&m.OldValue,
		&m.NewValue,
		&m.Origin,
	)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &m, nil
}
