package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNormalizeLimit(t *testing.T) {
	cases := map[int]int{0: DefaultLimit, -4: DefaultLimit, 10: 10, MaxLimit + 50: MaxLimit}
	for in, want := range cases {
		if got := NormalizeLimit(in); got != want {
			t.Fatalf("NormalizeLimit(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestCursorRoundTrip(t *testing.T) {
	want := Cursor{CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 42, time.UTC), ID: uuid.New()}
	got, err := ParseCursor(EncodeCursor(want))
	if err != nil {
		t.Fatalf("ParseCursor: %v", err)
	}
	if !got.CreatedAt.Equal(want.CreatedAt) || got.ID != want.ID {
		t.Fatalf("cursor mismatch: %+v vs %+v", got, want)
	}
}

func TestParseCursorRejectsGarbage(t *testing.T) {
	if c, err := ParseCursor(""); err != nil || c != nil {
		t.Fatalf("empty cursor should be nil, got %v %v", c, err)
	}
	if _, err := ParseCursor("%%%"); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestBuildTrimsLookaheadRow(t *testing.T) {
	base := time.Now().UTC()
	rows := make([]Cursor, 3)
	for i := range rows {
		rows[i] = Cursor{CreatedAt: base.Add(-time.Duration(i) * time.Minute), ID: uuid.New()}
	}
	page := Build(rows, Params{Limit: 2}, func(c Cursor) Cursor { return c })
	if len(page.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(page.Items))
	}
	next, err := ParseCursor(page.NextCursor)
	if err != nil || next.ID != rows[1].ID {
		t.Fatalf("next cursor should point at last returned row, got %v %v", next, err)
	}

	last := Build(rows[:1], Params{Limit: 2}, func(c Cursor) Cursor { return c })
	if last.NextCursor != "" {
		t.Fatalf("expected no next cursor on final page")
	}
	empty := Build[Cursor](nil, Params{}, func(c Cursor) Cursor { return c })
	if empty.Items == nil {
		t.Fatal("expected empty slice instead of nil")
	}
}
