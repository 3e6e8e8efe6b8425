package querybuilder

import "testing"

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("id", "league_id").
		From("matches").
		Where(Eq("league_id", int64(3)), IsNull("deleted_at")).
		OrderBy("id").
		Limit(10).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id, league_id FROM matches WHERE league_id = $1 AND deleted_at IS NULL ORDER BY id LIMIT 10"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != int64(3) {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_EffectiveIntervalForUpdate(t *testing.T) {
	query, args, err := Select("ranking").
		From("ranking_versions").
		Where(
			Eq("participant_id", int64(9)),
			Lte("effective_from", "t"),
			Expr("(effective_to IS NULL OR effective_to > ?)", "t"),
			IsNotNull("ranking"),
		).
		OrderBy("effective_from DESC").
		Limit(1).
		ForUpdate().
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT ranking FROM ranking_versions WHERE participant_id = $1 AND effective_from <= $2 AND (effective_to IS NULL OR effective_to > $3) AND ranking IS NOT NULL ORDER BY effective_from DESC LIMIT 1 FOR UPDATE"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder(t *testing.T) {
	query, args, err := InsertInto("audit_logs").
		Columns("id", "action").
		Values("a1", "evaluate").
		Suffix("RETURNING id").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO audit_logs (id, action) VALUES ($1, $2) RETURNING id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "a1" || args[1] != "evaluate" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpdateBuilder(t *testing.T) {
	query, args, err := Update("matches").
		Set("is_evaluated", true).
		SetExpr("updated_at", "NOW()").
		Where(Eq("id", int64(1))).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE matches SET is_evaluated = $1, updated_at = NOW() WHERE id = $2"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != true || args[1] != int64(1) {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpdateBuilder_FromUnnest(t *testing.T) {
	query, args, err := Update("user_match_bets AS b").
		SetExpr("total_points", "u.total_points").
		Set("scored_at", "now").
		From("unnest(?::bigint[], ?::int[]) AS u(id, total_points)", "ids", "points").
		Where(Expr("b.id = u.id"), IsNull("b.deleted_at")).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE user_match_bets AS b SET total_points = u.total_points, scored_at = $1 FROM unnest($2::bigint[], $3::int[]) AS u(id, total_points) WHERE b.id = u.id AND b.deleted_at IS NULL"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[0] != "now" || args[1] != "ids" || args[2] != "points" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertModel(t *testing.T) {
	type row struct {
		ID     string `db:"id"`
		Action string `db:"action"`
		Skip   string `db:"-"`
		hidden string
	}

	query, args, err := InsertModel("audit_logs", row{ID: "a1", Action: "evaluate", hidden: "x"}, "ON CONFLICT (id) DO NOTHING")
	if err != nil {
		t.Fatalf("build insert model: %v", err)
	}
	wantQuery := "INSERT INTO audit_logs (id, action) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestBuilders_RejectIncompleteStatements(t *testing.T) {
	tests := []struct {
		name  string
		build func() (string, []any, error)
	}{
		{name: "select without columns", build: Select().From("matches").ToSQL},
		{name: "select without table", build: Select("id").ToSQL},
		{name: "insert without rows", build: InsertInto("audit_logs").Columns("id").ToSQL},
		{name: "insert row width mismatch", build: InsertInto("audit_logs").Columns("id", "action").Values("a1").ToSQL},
		{name: "update without assignments", build: Update("matches").Where(Eq("id", 1)).ToSQL},
		{name: "model that is not a struct", build: func() (string, []any, error) { return InsertModel("t", 3, "") }},
		{name: "nil model pointer", build: func() (string, []any, error) {
			var p *struct {
				ID int `db:"id"`
			}
			return InsertModel("t", p, "")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := tt.build(); err == nil {
				t.Fatalf("expected an error")
			}
		})
	}
}

func TestGroupByAndEqAny(t *testing.T) {
	query, args, err := Select("league_user_id", "SUM(total_points)").
		From("user_match_bets").
		Where(EqAny("match_id", []int64{1, 2})).
		GroupBy("league_user_id").
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}
	wantQuery := "SELECT league_user_id, SUM(total_points) FROM user_match_bets WHERE match_id = ANY($1) GROUP BY league_user_id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 {
		t.Fatalf("unexpected args: %+v", args)
	}
}
