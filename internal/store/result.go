package store

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

type resultRepo struct {
	conn dialect.ExecQuerier
}

func (r *resultRepo) SaveResult(ctx context.Context, rec ResultRecord) error {
	if rec.AssessmentID == "" {
		return fmt.Errorf("save result: empty assessment ID")
	}
	data := rec.Data
	if data == nil {
		data = []byte("{}")
	}
	stmt := sqlite.Insert(AssessmentResultsTable.Name).
		Columns("id", "user_id", "score", "time_spent_ms", "next_difficulty", "completed_at", "data").
		Values(rec.AssessmentID, rec.UserID, rec.Score, rec.TimeSpentMs, rec.NextDifficulty,
			toMillis(rec.CompletedAt), string(data))
	if _, err := execStmt(ctx, r.conn, stmt); err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	return nil
}

func (r *resultRepo) ListResults(ctx context.Context, userID string, limit int) ([]ResultRecord, error) {
	stmt := sqlite.Select("id", "user_id", "score", "time_spent_ms", "next_difficulty", "completed_at", "data").
		From(entsql.Table(AssessmentResultsTable.Name)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy(entsql.Desc("completed_at"), "id")
	if limit > 0 {
		stmt.Limit(limit)
	}

	rows, err := queryStmt(ctx, r.conn, stmt)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var out []ResultRecord
	for rows.Next() {
		var (
			rec  ResultRecord
			ts   int64
			data string
		)
		if err := rows.Scan(&rec.AssessmentID, &rec.UserID, &rec.Score, &rec.TimeSpentMs,
			&rec.NextDifficulty, &ts, &data); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		rec.CompletedAt = fromMillis(ts)
		rec.Data = []byte(data)
		out = append(out, rec)
	}
	return out, rows.Err()
}
