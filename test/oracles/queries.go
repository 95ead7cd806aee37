package oracles

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Oracle is a query that must return no rows while the system is healthy.
type Oracle struct {
	Name string
	SQL  string
}

func All() []Oracle {
	return []Oracle{
		{
			Name: "O1_ranks_contiguous",
			SQL: `SELECT session_id, COUNT(*) AS n, MAX(rank) AS top
                  FROM match_records
                  GROUP BY session_id
                  HAVING MIN(rank) <> 1 OR MAX(rank) <> COUNT(*) OR COUNT(*) > 5`,
		},
		{
			Name: "O2_score_above_cutoff",
			SQL:  `SELECT session_id, rank, score FROM match_records WHERE score <= 30 OR score > 100`,
		},
		{
			Name: "O3_score_order",
			SQL: `WITH ordered AS (
                      SELECT session_id, rank, score,
                             LAG(score) OVER (PARTITION BY session_id ORDER BY rank) AS prev
                      FROM match_records)
                  SELECT * FROM ordered WHERE prev IS NOT NULL AND score > prev`,
		},
		{
			Name: "O4_conversion_has_activity",
			SQL: `SELECT s.id FROM search_sessions s
                  WHERE s.lead_id IS NOT NULL
                    AND (SELECT COUNT(*) FROM lead_activities a
                         WHERE a.lead_id = s.lead_id
                           AND a.type = 'PROPERTY_INTEREST'
                           AND a.payload->>'session_id' = s.id::text) <> 1`,
		},
		{
			Name: "O5_no_orphan_leads",
			SQL: `SELECT l.id FROM leads l
                  WHERE l.source = 'SMART_MATCH'
                    AND NOT EXISTS (SELECT 1 FROM search_sessions s WHERE s.lead_id = l.id)`,
		},
		{
			Name: "O6_one_session_per_lead",
			SQL: `SELECT lead_id FROM search_sessions
                  WHERE lead_id IS NOT NULL
                  GROUP BY lead_id HAVING COUNT(*) > 1`,
		},
		{
			Name: "O7_criteria_frozen_valid",
			SQL: `SELECT id FROM search_sessions
                  WHERE criteria->>'purpose' IS NULL
                     OR criteria->>'purpose' NOT IN ('BUY','RENT','INVEST')`,
		},
		{
			Name: "O8_lead_stage_source",
			SQL:  `SELECT id FROM leads WHERE source <> 'SMART_MATCH' OR stage <> 'NEW'`,
		},
	}
}

// Run executes every oracle and returns the first one that found rows, with
// that row rendered as text. An empty name means all passed.
func Run(ctx context.Context, pool *pgxpool.Pool) (string, string, error) {
	for _, o := range All() {
		rows, err := pool.Query(ctx, o.SQL)
		if err != nil {
			return o.Name, "", fmt.Errorf("oracle %s: %w", o.Name, err)
		}
		if rows.Next() {
			vals, err := rows.Values()
			rows.Close()
			if err != nil {
				return o.Name, "", err
			}
			return o.Name, fmt.Sprintf("%v", vals), nil
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return o.Name, "", fmt.Errorf("oracle %s: %w", o.Name, err)
		}
	}
	return "", "", nil
}
