package repo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dieKrake/life-leveler-sub000/internal/progression"
)

func setupTestRepo(t *testing.T) (*Repo, func()) {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx := context.Background()
	schema := fmt.Sprintf("test_%d", time.Now().UnixNano())
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	config.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, fmt.Sprintf("SET search_path TO %s", schema))
		return err
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	_, err = pool.Exec(ctx, fmt.Sprintf("CREATE SCHEMA %s", schema))
	if err != nil {
		pool.Close()
		t.Fatalf("create schema: %v", err)
	}
	queries := []string{
		`CREATE TABLE users (id uuid PRIMARY KEY DEFAULT gen_random_uuid(), email text, password_hash text, created_at timestamptz DEFAULT now(), updated_at timestamptz DEFAULT now())`,
		`CREATE TABLE todos (id uuid PRIMARY KEY DEFAULT gen_random_uuid(), user_id uuid, title text, start_time timestamptz, end_time timestamptz, xp_value int, is_completed boolean DEFAULT false, completed_at timestamptz, xp_awarded int DEFAULT 0, archived_at timestamptz, created_at timestamptz DEFAULT now(), updated_at timestamptz DEFAULT now())`,
		`CREATE TABLE challenges (id uuid PRIMARY KEY DEFAULT gen_random_uuid(), type text, title text, description text DEFAULT '', counter text, target int, xp_reward int DEFAULT 0, gem_reward int DEFAULT 0, is_active boolean DEFAULT true, icon text DEFAULT '')`,
		`CREATE TABLE user_challenges (id uuid PRIMARY KEY DEFAULT gen_random_uuid(), user_id uuid, challenge_id uuid, period_start timestamptz, period_end timestamptz, progress int DEFAULT 0, completed boolean DEFAULT false, claimed boolean DEFAULT false, created_at timestamptz DEFAULT now())`,
		`CREATE TABLE streak_tiers (min_streak_days int PRIMARY KEY, multiplier double precision NOT NULL)`,
	}
	for _, query := range queries {
		if _, err := pool.Exec(ctx, query); err != nil {
			pool.Close()
			t.Fatalf("create tables: %v", err)
		}
	}
	return New(pool), func() {
		_, _ = pool.Exec(ctx, fmt.Sprintf("DROP SCHEMA %s CASCADE", schema))
		pool.Close()
	}
}

func insertUser(t *testing.T, r *Repo) string {
	t.Helper()
	id, err := r.CreateUser(context.Background(), "a@b.com", "hash")
	if err != nil {
		t.Fatalf("user: %v", err)
	}
	return id
}

func TestMarkTodoCompletedCAS(t *testing.T) {
	r, cleanup := setupTestRepo(t)
	defer cleanup()
	ctx := context.Background()

	userID := insertUser(t, r)
	todoID, err := r.CreateTodo(ctx, userID, "Mow the lawn", nil, nil, 20)
	if err != nil {
		t.Fatalf("todo: %v", err)
	}

	xpValue, err := r.MarkTodoCompleted(ctx, r.Pool, todoID, userID, time.Now())
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if xpValue != 20 {
		t.Fatalf("expected xp_value 20, got %d", xpValue)
	}

	// Already completed: the compare-and-set must not fire twice.
	if _, err := r.MarkTodoCompleted(ctx, r.Pool, todoID, userID, time.Now()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on repeat, got %v", err)
	}

	// Wrong owner never matches.
	otherID, err := r.CreateUser(ctx, "c@d.com", "hash")
	if err != nil {
		t.Fatalf("user: %v", err)
	}
	freshID, _ := r.CreateTodo(ctx, userID, "Another", nil, nil, 10)
	if _, err := r.MarkTodoCompleted(ctx, r.Pool, freshID, otherID, time.Now()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign todo, got %v", err)
	}
}

func TestMarkTodoIncompleteReturnsAwarded(t *testing.T) {
	r, cleanup := setupTestRepo(t)
	defer cleanup()
	ctx := context.Background()

	userID := insertUser(t, r)
	todoID, _ := r.CreateTodo(ctx, userID, "Write report", nil, nil, 10)
	if _, err := r.MarkTodoCompleted(ctx, r.Pool, todoID, userID, time.Now()); err != nil {
		t.Fatalf("complete: %v", err)
	}
	// Streak-scaled award differs from the base value.
	if err := r.SetTodoXPAwarded(ctx, r.Pool, todoID, 15); err != nil {
		t.Fatalf("set awarded: %v", err)
	}

	awarded, err := r.MarkTodoIncomplete(ctx, r.Pool, todoID, userID)
	if err != nil {
		t.Fatalf("incomplete: %v", err)
	}
	if awarded != 15 {
		t.Fatalf("expected awarded 15 back, got %d", awarded)
	}

	todo, err := r.GetTodo(ctx, r.Pool, todoID, userID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if todo.IsCompleted || todo.XPAwarded != 0 || todo.CompletedAt != nil {
		t.Fatalf("undo left state behind: %+v", todo)
	}

	if _, err := r.MarkTodoIncomplete(ctx, r.Pool, todoID, userID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on repeat, got %v", err)
	}
}

func TestArchiveTodoOneWay(t *testing.T) {
	r, cleanup := setupTestRepo(t)
	defer cleanup()
	ctx := context.Background()

	userID := insertUser(t, r)
	todoID, _ := r.CreateTodo(ctx, userID, "Old chore", nil, nil, 10)
	if err := r.ArchiveTodo(ctx, todoID, userID); err != nil {
		t.Fatalf("archive: %v", err)
	}
	if err := r.ArchiveTodo(ctx, todoID, userID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on re-archive, got %v", err)
	}
	if _, err := r.MarkTodoCompleted(ctx, r.Pool, todoID, userID, time.Now()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("archived todo must reject completion, got %v", err)
	}
	todos, err := r.ListTodos(ctx, userID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(todos) != 0 {
		t.Fatalf("archived todo still listed: %+v", todos)
	}
}

func TestIncrementChallengeProgress(t *testing.T) {
	r, cleanup := setupTestRepo(t)
	defer cleanup()
	ctx := context.Background()

	userID := insertUser(t, r)
	now := time.Now().UTC()
	if _, err := r.Pool.Exec(ctx, `INSERT INTO challenges (type, title, counter, target, xp_reward, gem_reward)
		VALUES ('daily', 'Heavy Lifting', 'hard_completed', 2, 40, 10)`); err != nil {
		t.Fatalf("challenge: %v", err)
	}
	if err := r.InitializeChallenges(ctx, r.Pool, userID, now); err != nil {
		t.Fatalf("init: %v", err)
	}
	// Re-initializing is a no-op while an unexpired instance exists.
	if err := r.InitializeChallenges(ctx, r.Pool, userID, now); err != nil {
		t.Fatalf("re-init: %v", err)
	}
	active, err := r.ListActiveChallenges(ctx, r.Pool, userID, now)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("expected one instance, got %d", len(active))
	}

	// A counter the challenge does not track changes nothing.
	done, err := r.IncrementChallengeProgress(ctx, r.Pool, userID, []string{"todos_completed"}, now)
	if err != nil || len(done) != 0 {
		t.Fatalf("unexpected: done=%v err=%v", done, err)
	}

	done, err = r.IncrementChallengeProgress(ctx, r.Pool, userID, []string{"todos_completed", "hard_completed"}, now)
	if err != nil || len(done) != 0 {
		t.Fatalf("first hit: done=%v err=%v", done, err)
	}
	done, err = r.IncrementChallengeProgress(ctx, r.Pool, userID, []string{"hard_completed"}, now)
	if err != nil {
		t.Fatalf("second hit: %v", err)
	}
	if len(done) != 1 {
		t.Fatalf("expected completion crossing on second hit, got %v", done)
	}
	// Past the target: progress keeps counting, completion fires once.
	done, err = r.IncrementChallengeProgress(ctx, r.Pool, userID, []string{"hard_completed"}, now)
	if err != nil || len(done) != 0 {
		t.Fatalf("third hit: done=%v err=%v", done, err)
	}
	active, _ = r.ListActiveChallenges(ctx, r.Pool, userID, now)
	if active[0].Progress != 3 || !active[0].Completed {
		t.Fatalf("unexpected instance: %+v", active[0])
	}
}

func TestClaimChallengeSingleGrant(t *testing.T) {
	r, cleanup := setupTestRepo(t)
	defer cleanup()
	ctx := context.Background()

	userID := insertUser(t, r)
	now := time.Now().UTC()
	var challengeID string
	if err := r.Pool.QueryRow(ctx, `INSERT INTO challenges (type, title, counter, target, xp_reward, gem_reward)
		VALUES ('weekly', 'Steady Hand', 'todos_completed', 1, 100, 25) RETURNING id`).Scan(&challengeID); err != nil {
		t.Fatalf("challenge: %v", err)
	}
	var instanceID string
	if err := r.Pool.QueryRow(ctx, `INSERT INTO user_challenges (user_id, challenge_id, period_start, period_end, progress, completed)
		VALUES ($1, $2, $3, $3 + interval '7 days', 1, true) RETURNING id`, userID, challengeID, now).Scan(&instanceID); err != nil {
		t.Fatalf("instance: %v", err)
	}

	xp, gems, err := r.ClaimChallenge(ctx, r.Pool, instanceID, userID, now)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if xp != 100 || gems != 25 {
		t.Fatalf("expected 100/25, got %d/%d", xp, gems)
	}
	if _, _, err := r.ClaimChallenge(ctx, r.Pool, instanceID, userID, now); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second claim, got %v", err)
	}
}

func TestDeleteExpiredChallenges(t *testing.T) {
	r, cleanup := setupTestRepo(t)
	defer cleanup()
	ctx := context.Background()

	userID := insertUser(t, r)
	now := time.Now().UTC()
	var challengeID string
	if err := r.Pool.QueryRow(ctx, `INSERT INTO challenges (type, title, counter, target)
		VALUES ('daily', 'Daily Dozen', 'todos_completed', 3) RETURNING id`).Scan(&challengeID); err != nil {
		t.Fatalf("challenge: %v", err)
	}
	if _, err := r.Pool.Exec(ctx, `INSERT INTO user_challenges (user_id, challenge_id, period_start, period_end, progress)
		VALUES ($1, $2, $3 - interval '2 days', $3 - interval '1 day', 2)`, userID, challengeID, now); err != nil {
		t.Fatalf("instance: %v", err)
	}

	deleted, err := r.DeleteExpiredChallenges(ctx, r.Pool, userID, now)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 deleted, got %d", deleted)
	}
}

func TestReplaceStreakTiers(t *testing.T) {
	r, cleanup := setupTestRepo(t)
	defer cleanup()
	ctx := context.Background()

	// Empty table falls back to the built-in schedule.
	tiers, err := r.ListStreakTiers(ctx, r.Pool)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tiers) != len(progression.DefaultTiers()) {
		t.Fatalf("expected default tiers, got %v", tiers)
	}

	custom := progression.Tiers{
		{MinStreakDays: 0, Multiplier: 1.0},
		{MinStreakDays: 3, Multiplier: 1.1},
		{MinStreakDays: 10, Multiplier: 1.6},
	}
	if err := r.ReplaceStreakTiers(ctx, custom); err != nil {
		t.Fatalf("replace: %v", err)
	}
	tiers, err = r.ListStreakTiers(ctx, r.Pool)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tiers) != 3 || tiers[1].MinStreakDays != 3 || tiers[2].Multiplier != 1.6 {
		t.Fatalf("unexpected tiers: %v", tiers)
	}
	if got := tiers.MultiplierFor(12); got != 1.6 {
		t.Fatalf("expected 1.6 at streak 12, got %v", got)
	}
}
