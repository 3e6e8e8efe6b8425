package postgres

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/prediction-league/internal/domain/evaluator"
	"github.com/riskibarqy/prediction-league/internal/infrastructure/repository/memory"
	qb "github.com/riskibarqy/prediction-league/internal/platform/querybuilder"
	"github.com/shopspring/decimal"
)

type seedRow struct {
	table string
	model any
}

// BootstrapSeed loads the in-memory demo dataset into an empty database.
func BootstrapSeed(ctx context.Context, db *sqlx.DB) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM leagues WHERE deleted_at IS NULL`); err != nil {
		return fmt.Errorf("count leagues for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	rows, err := seedRows(memory.SeedDataset())
	if err != nil {
		return err
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	tables := make(map[string]struct{})
	for _, row := range rows {
		query, args, err := qb.InsertModel(row.table, row.model, "ON CONFLICT (id) DO NOTHING")
		if err != nil {
			return fmt.Errorf("build seed %s query: %w", row.table, err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("seed %s: %w", row.table, err)
		}
		tables[row.table] = struct{}{}
	}

	for table := range tables {
		stmt := fmt.Sprintf(`SELECT setval(pg_get_serial_sequence('%s', 'id'), (SELECT MAX(id) FROM %s))`, table, table)
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("advance %s id sequence: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}
	return nil
}

func seedRows(d memory.Dataset) ([]seedRow, error) {
	rows := make([]seedRow, 0, 64)

	for _, id := range sortedKeys(d.Leagues) {
		l := d.Leagues[id]
		rows = append(rows, seedRow{"leagues", struct {
			ID     int64  `db:"id"`
			Name   string `db:"name"`
			Season string `db:"season"`
		}{l.ID, l.Name, l.Season}})
	}
	for _, id := range sortedKeys(d.LeagueUsers) {
		lu := d.LeagueUsers[id]
		rows = append(rows, seedRow{"league_users", struct {
			ID          int64  `db:"id"`
			LeagueID    int64  `db:"league_id"`
			UserID      int64  `db:"user_id"`
			DisplayName string `db:"display_name"`
		}{lu.ID, lu.LeagueID, lu.UserID, lu.DisplayName}})
	}
	for _, id := range sortedKeys(d.Participants) {
		p := d.Participants[id]
		rows = append(rows, seedRow{"participants", struct {
			ID       int64  `db:"id"`
			LeagueID int64  `db:"league_id"`
			Name     string `db:"name"`
			Kind     string `db:"kind"`
			TeamID   *int64 `db:"team_id"`
			Position string `db:"position"`
		}{p.ID, p.LeagueID, p.Name, string(p.Kind), p.TeamID, p.Position}})
	}
	for _, cfg := range d.Evaluators {
		raw, err := evaluator.EncodeSettings(cfg.Settings)
		if err != nil {
			return nil, fmt.Errorf("encode seed evaluator %d: %w", cfg.ID, err)
		}
		rows = append(rows, seedRow{"evaluator_configs", struct {
			ID       int64   `db:"id"`
			LeagueID int64   `db:"league_id"`
			Kind     string  `db:"kind"`
			Name     string  `db:"name"`
			Points   int     `db:"points"`
			Config   *string `db:"config"`
		}{cfg.ID, cfg.LeagueID, string(cfg.Kind), cfg.Name, cfg.Points, jsonbValue(raw)}})
	}
	for _, v := range d.Rankings {
		rows = append(rows, seedRow{"ranking_versions", struct {
			ID            int64      `db:"id"`
			ParticipantID int64      `db:"participant_id"`
			LeagueID      int64      `db:"league_id"`
			Ranking       int        `db:"ranking"`
			EffectiveFrom time.Time  `db:"effective_from"`
			EffectiveTo   *time.Time `db:"effective_to"`
		}{v.ID, v.ParticipantID, v.LeagueID, v.Ranking, v.EffectiveFrom, v.EffectiveTo}})
	}

	for _, id := range sortedKeys(d.Matches.Instances) {
		m := d.Matches.Instances[id]
		rows = append(rows, seedRow{"matches", struct {
			ID           int64         `db:"id"`
			LeagueID     int64         `db:"league_id"`
			ScheduledAt  time.Time     `db:"scheduled_at"`
			HomeTeamID   int64         `db:"home_team_id"`
			AwayTeamID   int64         `db:"away_team_id"`
			HomeScore    *int          `db:"home_score"`
			AwayScore    *int          `db:"away_score"`
			WinnerTeamID *int64        `db:"winner_team_id"`
			ScorerIDs    pq.Int64Array `db:"scorer_ids"`
		}{m.ID, m.LeagueID, m.ScheduledAt, m.HomeTeamID, m.AwayTeamID, m.HomeScore, m.AwayScore, m.WinnerTeamID, pq.Int64Array(m.ScorerIDs)}})
	}
	for _, id := range sortedKeys(d.Matches.Predictions) {
		p := d.Matches.Predictions[id]
		rows = append(rows, seedRow{"user_match_bets", struct {
			ID           int64  `db:"id"`
			MatchID      int64  `db:"match_id"`
			LeagueUserID int64  `db:"league_user_id"`
			HomeScore    *int   `db:"home_score"`
			AwayScore    *int   `db:"away_score"`
			ScorerID     *int64 `db:"scorer_id"`
		}{p.ID, p.BetID, p.LeagueUserID, p.HomeScore, p.AwayScore, p.ScorerID}})
	}

	for _, id := range sortedKeys(d.Series.Instances) {
		s := d.Series.Instances[id]
		rows = append(rows, seedRow{"series", struct {
			ID          int64     `db:"id"`
			LeagueID    int64     `db:"league_id"`
			ScheduledAt time.Time `db:"scheduled_at"`
			HomeTeamID  int64     `db:"home_team_id"`
			AwayTeamID  int64     `db:"away_team_id"`
			BestOf      int       `db:"best_of"`
			HomeScore   *int      `db:"home_score"`
			AwayScore   *int      `db:"away_score"`
		}{s.ID, s.LeagueID, s.ScheduledAt, s.HomeTeamID, s.AwayTeamID, s.BestOf, s.HomeScore, s.AwayScore}})
	}
	for _, id := range sortedKeys(d.Series.Predictions) {
		p := d.Series.Predictions[id]
		rows = append(rows, seedRow{"user_series_bets", struct {
			ID           int64 `db:"id"`
			SeriesID     int64 `db:"series_id"`
			LeagueUserID int64 `db:"league_user_id"`
			HomeScore    *int  `db:"home_score"`
			AwayScore    *int  `db:"away_score"`
		}{p.ID, p.BetID, p.LeagueUserID, p.HomeScore, p.AwayScore}})
	}

	for _, id := range sortedKeys(d.SingleBets.Instances) {
		b := d.SingleBets.Instances[id]
		rows = append(rows, seedRow{"single_bets", struct {
			ID                int64               `db:"id"`
			LeagueID          int64               `db:"league_id"`
			ScheduledAt       time.Time           `db:"scheduled_at"`
			Title             string              `db:"title"`
			TeamID            *int64              `db:"team_id"`
			PlayerID          *int64              `db:"player_id"`
			Value             decimal.NullDecimal `db:"value"`
			GroupStageTeamIDs pq.Int64Array       `db:"group_stage_team_ids"`
		}{b.ID, b.LeagueID, b.ScheduledAt, b.Title, b.TeamID, b.PlayerID, nullDecimal(b.Value), pq.Int64Array(b.GroupStageTeamIDs)}})
	}
	for _, id := range sortedKeys(d.SingleBets.Predictions) {
		p := d.SingleBets.Predictions[id]
		rows = append(rows, seedRow{"user_single_bets", struct {
			ID           int64               `db:"id"`
			SingleBetID  int64               `db:"single_bet_id"`
			LeagueUserID int64               `db:"league_user_id"`
			TeamID       *int64              `db:"team_id"`
			PlayerID     *int64              `db:"player_id"`
			Value        decimal.NullDecimal `db:"value"`
		}{p.ID, p.BetID, p.LeagueUserID, p.TeamID, p.PlayerID, nullDecimal(p.Value)}})
	}

	for _, id := range sortedKeys(d.Questions.Instances) {
		q := d.Questions.Instances[id]
		rows = append(rows, seedRow{"questions", struct {
			ID          int64     `db:"id"`
			LeagueID    int64     `db:"league_id"`
			ScheduledAt time.Time `db:"scheduled_at"`
			Text        string    `db:"text"`
			Answer      *bool     `db:"answer"`
		}{q.ID, q.LeagueID, q.ScheduledAt, q.Text, q.Answer}})
	}
	for _, id := range sortedKeys(d.Questions.Predictions) {
		p := d.Questions.Predictions[id]
		rows = append(rows, seedRow{"user_question_bets", struct {
			ID           int64 `db:"id"`
			QuestionID   int64 `db:"question_id"`
			LeagueUserID int64 `db:"league_user_id"`
			Answer       *bool `db:"answer"`
		}{p.ID, p.BetID, p.LeagueUserID, p.Answer}})
	}

	return rows, nil
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func jsonbValue(raw []byte) *string {
	if len(raw) == 0 {
		return nil
	}
	s := string(raw)
	return &s
}

func nullDecimal(v *decimal.Decimal) decimal.NullDecimal {
	if v == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *v, Valid: true}
}
