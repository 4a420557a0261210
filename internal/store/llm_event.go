package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	seqNum, err := nextSequence(ctx, r.conn)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	stmt := sqlite.Insert(LlmRequestEventsTable.Name).
		Columns("sequence", "timestamp", "provider", "model", "purpose", "input_tokens",
			"output_tokens", "latency_ms", "success", "error_message", "request_body", "response_body").
		Values(seqNum, toMillis(r.now()), data.Provider, data.Model, data.Purpose,
			data.InputTokens, data.OutputTokens, data.LatencyMs, data.Success,
			data.ErrorMessage, data.RequestBody, data.ResponseBody)
	if _, err := execStmt(ctx, r.conn, stmt); err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

func selectLLMEvents() *entsql.Selector {
	return sqlite.Select("id", "sequence", "timestamp", "provider", "model", "purpose",
		"input_tokens", "output_tokens", "latency_ms", "success", "error_message",
		"request_body", "response_body").
		From(entsql.Table(LlmRequestEventsTable.Name))
}

func (r *eventRepo) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEventRecord, error) {
	stmt := selectLLMEvents()
	if opts.After > 0 {
		stmt.Where(entsql.GT("sequence", opts.After))
	}
	if opts.Before > 0 {
		stmt.Where(entsql.LT("sequence", opts.Before))
	}
	if !opts.From.IsZero() {
		stmt.Where(entsql.GTE("timestamp", toMillis(opts.From)))
	}
	if !opts.To.IsZero() {
		stmt.Where(entsql.LTE("timestamp", toMillis(opts.To)))
	}
	if opts.Purpose != "" {
		stmt.Where(entsql.EQ("purpose", opts.Purpose))
	}
	stmt.OrderBy(entsql.Desc("sequence"))
	if opts.Limit > 0 {
		stmt.Limit(opts.Limit)
	}

	return r.queryLLMEvents(ctx, stmt)
}

func (r *eventRepo) GetLLMEvent(ctx context.Context, id int) (*LLMEventRecord, error) {
	out, err := r.queryLLMEvents(ctx, selectLLMEvents().Where(entsql.EQ("id", id)))
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return &out[0], nil
}

func (r *eventRepo) queryLLMEvents(ctx context.Context, stmt *entsql.Selector) ([]LLMEventRecord, error) {
	rows, err := queryStmt(ctx, r.conn, stmt)
	if err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}
	defer rows.Close()

	var out []LLMEventRecord
	for rows.Next() {
		var (
			rec LLMEventRecord
			ts  int64
		)
		err := rows.Scan(&rec.ID, &rec.Sequence, &ts, &rec.Provider, &rec.Model, &rec.Purpose,
			&rec.InputTokens, &rec.OutputTokens, &rec.LatencyMs, &rec.Success,
			&rec.ErrorMessage, &rec.RequestBody, &rec.ResponseBody)
		if err != nil {
			return nil, fmt.Errorf("scan LLM event: %w", err)
		}
		rec.Timestamp = fromMillis(ts)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *eventRepo) LLMUsageByPurpose(ctx context.Context) ([]LLMPurposeUsage, error) {
	stmt := sqlite.Select("purpose", entsql.Count("*"), entsql.Sum("input_tokens"),
		entsql.Sum("output_tokens"), entsql.Sum("latency_ms")).
		From(entsql.Table(LlmRequestEventsTable.Name)).
		GroupBy("purpose").
		OrderBy(entsql.Desc(entsql.Count("*")), "purpose")

	rows, err := queryStmt(ctx, r.conn, stmt)
	if err != nil {
		return nil, fmt.Errorf("query usage by purpose: %w", err)
	}
	defer rows.Close()

	var out []LLMPurposeUsage
	for rows.Next() {
		var (
			u            LLMPurposeUsage
			totalLatency int64
		)
		if err := rows.Scan(&u.Purpose, &u.Calls, &u.InputTokens, &u.OutputTokens, &totalLatency); err != nil {
			return nil, fmt.Errorf("scan usage: %w", err)
		}
		if u.Calls > 0 {
			u.AvgLatencyMs = totalLatency / int64(u.Calls)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *eventRepo) LLMUsageByModel(ctx context.Context) ([]LLMModelUsage, error) {
	stmt := sqlite.Select("model", entsql.Count("*"), entsql.Sum("input_tokens"), entsql.Sum("output_tokens")).
		From(entsql.Table(LlmRequestEventsTable.Name)).
		GroupBy("model").
		OrderBy("model")

	rows, err := queryStmt(ctx, r.conn, stmt)
	if err != nil {
		return nil, fmt.Errorf("query usage by model: %w", err)
	}
	defer rows.Close()

	var out []LLMModelUsage
	for rows.Next() {
		var u LLMModelUsage
		if err := rows.Scan(&u.Model, &u.Calls, &u.InputTokens, &u.OutputTokens); err != nil {
			return nil, fmt.Errorf("scan usage: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
