package testhelper

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueLessonID returns a lesson id unlikely to collide with other tests
// sharing the container.
func uniqueLessonID() int {
	return int(uuid.New().ID()%900_000) + 100_000
}

// SeedLesson creates a lesson with n theory items and returns the lesson id
// and the item ids in order.
func SeedLesson(t *testing.T, pool *pgxpool.Pool, n int) (int, []int64) {
	t.Helper()
	ctx := context.Background()

	lessonID := uniqueLessonID()
	_, err := pool.Exec(ctx,
		`INSERT INTO lessons (id, title, description) VALUES ($1, $2, $3)`,
		lessonID, "Seeded lesson", "seeded by testhelper",
	)
	if err != nil {
		t.Fatalf("testhelper: insert lesson: %v", err)
	}

	ids := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		var id int64
		err := pool.QueryRow(ctx,
			`INSERT INTO lesson_items (lesson_id, type, order_index, data)
			 VALUES ($1, 'theory', $2, $3) RETURNING id`,
			lessonID, i, map[string]any{"title": "Note", "text": "text"},
		).Scan(&id)
		if err != nil {
			t.Fatalf("testhelper: insert lesson item: %v", err)
		}
		ids = append(ids, id)
	}
	return lessonID, ids
}

// SeedProgress attaches a user_srs row to itemID, as a learner reviewing
// the item would.
func SeedProgress(t *testing.T, pool *pgxpool.Pool, itemID int64) uuid.UUID {
	t.Helper()

	userID := uuid.New()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO user_srs (user_id, item_id, ease_factor, interval_days) VALUES ($1, $2, 2.5, 1)`,
		userID, itemID,
	)
	if err != nil {
		t.Fatalf("testhelper: insert user_srs: %v", err)
	}
	return userID
}

// CountRows runs a count(*) query and returns its result.
func CountRows(t *testing.T, pool *pgxpool.Pool, query string, args ...any) int {
	t.Helper()

	var n int
	if err := pool.QueryRow(context.Background(), query, args...).Scan(&n); err != nil {
		t.Fatalf("testhelper: count rows: %v", err)
	}
	return n
}
