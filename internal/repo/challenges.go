package repo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dieKrake/life-leveler-sub000/internal/models"
)

// ActiveChallenge is a user instance joined with its template, as served by
// the challenge surface.
type ActiveChallenge struct {
	models.UserChallenge
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Counter     string `json:"counter"`
	Target      int    `json:"target"`
	XPReward    int    `json:"xp_reward"`
	GemReward   int    `json:"gem_reward"`
	Icon        string `json:"icon"`
}

// InitializeChallenges creates a fresh zero-progress instance for every
// active template the user has no unexpired instance of. Daily templates run
// one day, weekly templates seven.
func (r *Repo) InitializeChallenges(ctx context.Context, q Querier, userID string, now time.Time) error {
	_, err := q.Exec(ctx, `INSERT INTO user_challenges (user_id, challenge_id, period_start, period_end)
		SELECT $1, c.id, $2,
			CASE WHEN c.type = 'daily' THEN $2::timestamptz + interval '1 day'
			     ELSE $2::timestamptz + interval '7 days' END
		FROM challenges c
		WHERE c.is_active = true
		  AND NOT EXISTS (
			SELECT 1 FROM user_challenges uc
			WHERE uc.user_id = $1 AND uc.challenge_id = c.id AND uc.period_end > $2
		  )`, userID, now)
	return err
}

// DeleteExpiredChallenges discards instances past period_end regardless of
// completion or claim state; unclaimed rewards are forfeited.
func (r *Repo) DeleteExpiredChallenges(ctx context.Context, q Querier, userID string, now time.Time) (int, error) {
	cmd, err := q.Exec(ctx, `DELETE FROM user_challenges WHERE user_id=$1 AND period_end < $2`, userID, now)
	if err != nil {
		return 0, err
	}
	return int(cmd.RowsAffected()), nil
}

func (r *Repo) ListActiveChallenges(ctx context.Context, q Querier, userID string, now time.Time) ([]ActiveChallenge, error) {
	rows, err := q.Query(ctx, `SELECT uc.id, uc.user_id, uc.challenge_id, uc.period_start, uc.period_end,
			uc.progress, uc.completed, uc.claimed, uc.created_at,
			c.type, c.title, c.description, c.counter, c.target, c.xp_reward, c.gem_reward, c.icon
		FROM user_challenges uc
		JOIN challenges c ON c.id = uc.challenge_id
		WHERE uc.user_id=$1 AND uc.period_end > $2
		ORDER BY c.type, c.title`, userID, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ActiveChallenge
	for rows.Next() {
		var a ActiveChallenge
		if err := rows.Scan(&a.ID, &a.UserID, &a.ChallengeID, &a.PeriodStart, &a.PeriodEnd,
			&a.Progress, &a.Completed, &a.Claimed, &a.CreatedAt,
			&a.Type, &a.Title, &a.Description, &a.Counter, &a.Target, &a.XPReward, &a.GemReward, &a.Icon); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ChallengeCompletion reports one instance that crossed its target for the
// first time during an increment.
type ChallengeCompletion struct {
	UserChallengeID string
	Title           string
}

// IncrementChallengeProgress bumps every active instance whose template
// counter matches, and marks first crossings of the target as completed.
// Progress is not capped; completion triggers only on the first crossing.
func (r *Repo) IncrementChallengeProgress(ctx context.Context, q Querier, userID string, counters []string, now time.Time) ([]ChallengeCompletion, error) {
	rows, err := q.Query(ctx, `UPDATE user_challenges uc
		SET progress = uc.progress + 1
		FROM challenges c
		WHERE c.id = uc.challenge_id
		  AND uc.user_id = $1
		  AND uc.period_end > $2
		  AND c.counter = ANY($3)
		RETURNING uc.id, uc.progress, uc.completed, c.target, c.title`, userID, now, counters)
	if err != nil {
		return nil, err
	}
	type bumped struct {
		id        string
		progress  int
		completed bool
		target    int
		title     string
	}
	var updated []bumped
	for rows.Next() {
		var b bumped
		if err := rows.Scan(&b.id, &b.progress, &b.completed, &b.target, &b.title); err != nil {
			rows.Close()
			return nil, err
		}
		updated = append(updated, b)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var completions []ChallengeCompletion
	for _, b := range updated {
		if b.completed || b.progress < b.target {
			continue
		}
		cmd, err := q.Exec(ctx, `UPDATE user_challenges SET completed=true WHERE id=$1 AND completed=false`, b.id)
		if err != nil {
			return nil, err
		}
		if cmd.RowsAffected() == 1 {
			completions = append(completions, ChallengeCompletion{UserChallengeID: b.id, Title: b.title})
		}
	}
	return completions, nil
}

// ClaimChallenge flips claimed on a completed, unclaimed, unexpired instance
// and returns the template rewards. The compare-and-set on claimed makes
// concurrent claims single-grant.
func (r *Repo) ClaimChallenge(ctx context.Context, q Querier, userChallengeID, userID string, now time.Time) (xpReward, gemReward int, err error) {
	err = q.QueryRow(ctx, `UPDATE user_challenges uc
		SET claimed = true
		FROM challenges c
		WHERE c.id = uc.challenge_id
		  AND uc.id = $1 AND uc.user_id = $2
		  AND uc.completed = true AND uc.claimed = false
		  AND uc.period_end > $3
		RETURNING c.xp_reward, c.gem_reward`, userChallengeID, userID, now).Scan(&xpReward, &gemReward)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, 0, ErrNotFound
	}
	return xpReward, gemReward, err
}

func (r *Repo) GetUserChallenge(ctx context.Context, q Querier, userChallengeID, userID string) (*models.UserChallenge, error) {
	var uc models.UserChallenge
	err := q.QueryRow(ctx, `SELECT id, user_id, challenge_id, period_start, period_end, progress, completed, claimed, created_at
		FROM user_challenges WHERE id=$1 AND user_id=$2`, userChallengeID, userID).
		Scan(&uc.ID, &uc.UserID, &uc.ChallengeID, &uc.PeriodStart, &uc.PeriodEnd, &uc.Progress, &uc.Completed, &uc.Claimed, &uc.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &uc, nil
}
