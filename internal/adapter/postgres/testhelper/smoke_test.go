package testhelper

import (
	"testing"
)

func TestSetupTestDB_Smoke(t *testing.T) {
	pool := SetupTestDB(t)

	lessonID, items := SeedLesson(t, pool, 2)
	SeedProgress(t, pool, items[0])

	if n := CountRows(t, pool, `SELECT count(*) FROM lesson_items WHERE lesson_id = $1`, lessonID); n != 2 {
		t.Fatalf("expected 2 lesson items, got %d", n)
	}
	if n := CountRows(t, pool, `SELECT count(*) FROM user_srs WHERE item_id = $1`, items[0]); n != 1 {
		t.Fatalf("expected 1 user_srs row, got %d", n)
	}
}
