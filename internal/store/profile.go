package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/adaptiq/internal/adaptive"
)

// profileRepo stores each profile as a JSON document keyed by user ID.
type profileRepo struct {
	conn dialect.ExecQuerier
	now  func() time.Time
}

func (r *profileRepo) Load(ctx context.Context, userID string) (*adaptive.SkillProfile, error) {
	stmt := sqlite.Select("data").
		From(entsql.Table(ProfilesTable.Name)).
		Where(entsql.EQ("user_id", userID))

	docs, err := r.queryDocs(ctx, stmt)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}

	p, err := decodeProfile(docs[0])
	if err != nil {
		return nil, fmt.Errorf("decode profile %q: %w", userID, err)
	}
	return &p, nil
}

func (r *profileRepo) Save(ctx context.Context, profile adaptive.SkillProfile) error {
	if profile.UserID == "" {
		return fmt.Errorf("save profile: empty user ID")
	}
	b, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}

	stmt := sqlite.Insert(ProfilesTable.Name).
		Columns("user_id", "data", "updated_at").
		Values(profile.UserID, string(b), toMillis(r.now())).
		OnConflict(
			entsql.ConflictColumns("user_id"),
			entsql.ResolveWithNewValues(),
		)
	if _, err := execStmt(ctx, r.conn, stmt); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

func (r *profileRepo) List(ctx context.Context) ([]adaptive.SkillProfile, error) {
	stmt := sqlite.Select("data").
		From(entsql.Table(ProfilesTable.Name)).
		OrderBy("user_id")

	docs, err := r.queryDocs(ctx, stmt)
	if err != nil {
		return nil, err
	}

	var out []adaptive.SkillProfile
	for _, data := range docs {
		p, err := decodeProfile(data)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *profileRepo) Reset(ctx context.Context, userID string) (bool, error) {
	var n int64
	err := withTx(ctx, r.conn, func(conn dialect.ExecQuerier) error {
		res, err := execStmt(ctx, conn,
			sqlite.Delete(ProfilesTable.Name).Where(entsql.EQ("user_id", userID)))
		if err != nil {
			return fmt.Errorf("delete profile: %w", err)
		}
		for _, table := range []string{ResponseEventsTable.Name, AssessmentResultsTable.Name} {
			if _, err := execStmt(ctx, conn,
				sqlite.Delete(table).Where(entsql.EQ("user_id", userID))); err != nil {
				return fmt.Errorf("delete %s: %w", table, err)
			}
		}
		if n, err = res.RowsAffected(); err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("reset %q: %w", userID, err)
	}
	return n > 0, nil
}

func (r *profileRepo) queryDocs(ctx context.Context, stmt *entsql.Selector) ([]string, error) {
	rows, err := queryStmt(ctx, r.conn, stmt)
	if err != nil {
		return nil, fmt.Errorf("query profiles: %w", err)
	}
	defer rows.Close()

	var docs []string
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		docs = append(docs, data)
	}
	return docs, rows.Err()
}

// decodeProfile restores a profile and fills in nil maps so callers can
// write to them directly.
func decodeProfile(data string) (adaptive.SkillProfile, error) {
	var p adaptive.SkillProfile
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return p, err
	}
	if p.Skills == nil {
		p.Skills = make(map[string]float64)
	}
	if p.QuestionTypeCounts == nil {
		p.QuestionTypeCounts = make(map[adaptive.QuestionType]int)
	}
	return p, nil
}
