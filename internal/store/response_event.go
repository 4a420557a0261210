package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

func (r *eventRepo) AppendResponse(ctx context.Context, data ResponseEventData) error {
	seqNum, err := nextSequence(ctx, r.conn)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	stmt := sqlite.Insert(ResponseEventsTable.Name).
		Columns("sequence", "timestamp", "session_id", "user_id", "question_id", "skill_area",
			"difficulty", "question_type", "answer", "correct", "response_time_ms", "score", "fallback").
		Values(seqNum, toMillis(r.now()), data.SessionID, data.UserID, data.QuestionID, data.SkillArea,
			data.Difficulty, data.QuestionType, data.Answer, data.Correct,
			data.ResponseTimeMs, data.Score, data.Fallback)
	if _, err := execStmt(ctx, r.conn, stmt); err != nil {
		return fmt.Errorf("save response event: %w", err)
	}
	return nil
}

func (r *eventRepo) ResponsesForSession(ctx context.Context, sessionID string) ([]ResponseEventRecord, error) {
	stmt := sqlite.Select("id", "sequence", "timestamp", "session_id", "user_id", "question_id",
		"skill_area", "difficulty", "question_type", "answer", "correct", "response_time_ms",
		"score", "fallback").
		From(entsql.Table(ResponseEventsTable.Name)).
		Where(entsql.EQ("session_id", sessionID)).
		OrderBy("sequence")

	rows, err := queryStmt(ctx, r.conn, stmt)
	if err != nil {
		return nil, fmt.Errorf("query response events: %w", err)
	}
	defer rows.Close()

	var out []ResponseEventRecord
	for rows.Next() {
		var (
			rec ResponseEventRecord
			ts  int64
		)
		err := rows.Scan(&rec.ID, &rec.Sequence, &ts, &rec.SessionID, &rec.UserID,
			&rec.QuestionID, &rec.SkillArea, &rec.Difficulty, &rec.QuestionType,
			&rec.Answer, &rec.Correct, &rec.ResponseTimeMs, &rec.Score, &rec.Fallback)
		if err != nil {
			return nil, fmt.Errorf("scan response event: %w", err)
		}
		rec.Timestamp = fromMillis(ts)
		out = append(out, rec)
	}
	return out, rows.Err()
}
