package incident

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Kulek-Kulek/ai-travel-planner-sub000/internal/platform/database"
	"github.com/google/uuid"
)

// Store persists incidents in the sentinel_incidents table.
type Store struct {
	db database.Querier
}

// NewStore creates a Postgres-backed incident store.
func NewStore(db database.Querier) *Store {
	return &Store{db: db}
}

// WriteBatch inserts records with a single multi-row INSERT.
func (s *Store) WriteBatch(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}
	sql, args := buildBatchInsert(records)
	if _, err := s.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("inserting incidents: %w", err)
	}
	return nil
}

const insertColumns = 10

func buildBatchInsert(records []Record) (string, []any) {
	const cols = "(id, created_at, category, severity, outcome, input_digest, excerpt, user_id, confidence, detail)"
	placeholders := make([]string, 0, len(records))
	args := make([]any, 0, len(records)*insertColumns)

	for i, r := range records {
		base := i * insertColumns
		ph := make([]string, insertColumns)
		for j := range ph {
			ph[j] = fmt.Sprintf("$%d", base+j+1)
		}
		placeholders = append(placeholders, "("+strings.Join(ph, ", ")+")")

		id := r.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		ts := r.Timestamp
		if ts.IsZero() {
			ts = time.Now().UTC()
		}
		args = append(args, id, ts, r.Category, r.Severity, r.Outcome, r.InputDigest, r.Excerpt, r.UserID, r.Confidence, r.Detail)
	}

	sql := fmt.Sprintf("INSERT INTO sentinel_incidents %s VALUES %s", cols, strings.Join(placeholders, ", "))
	return sql, args
}

// ListParams defines filters for querying incidents.
type ListParams struct {
	Category *string
	Severity *string
	UserID   *string
	After    *time.Time
	Before   *time.Time
	Limit    int
}

// List returns incidents newest first.
func (s *Store) List(ctx context.Context, p ListParams) ([]Record, error) {
	sql, args := buildListQuery(p)
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("querying incidents: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.Timestamp, &r.Category, &r.Severity, &r.Outcome,
			&r.InputDigest, &r.Excerpt, &r.UserID, &r.Confidence, &r.Detail); err != nil {
			return nil, fmt.Errorf("scanning incident: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating incidents: %w", err)
	}
	return records, nil
}

func buildListQuery(p ListParams) (string, []any) {
	var conditions []string
	var args []any
	argN := 1

	add := func(cond string, v any) {
		conditions = append(conditions, fmt.Sprintf(cond, argN))
		args = append(args, v)
		argN++
	}

	if p.Category != nil {
		add("category = $%d", *p.Category)
	}
	if p.Severity != nil {
		add("severity = $%d", *p.Severity)
	}
	if p.UserID != nil {
		add("user_id = $%d", *p.UserID)
	}
	if p.After != nil {
		add("created_at > $%d", *p.After)
	}
	if p.Before != nil {
		add("created_at < $%d", *p.Before)
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	sql := fmt.Sprintf(
		`SELECT id, created_at, category, severity, outcome, input_digest, excerpt, user_id, confidence, detail
		FROM sentinel_incidents
		%s
		ORDER BY created_at DESC
		LIMIT $%d`,
		where, argN,
	)
	args = append(args, p.Limit)

	return sql, args
}
