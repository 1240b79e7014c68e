package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/datatypes"
)

func TestItems_CreateAssignsIDAndRereads(t *testing.T) {
	db := newTestDB(t, true)
	ctx := context.Background()
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	a, err := CreateItem(ctx, db, "first", datatypes.JSON(`{"k":1}`), now)
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	b, err := CreateItem(ctx, db, "second", nil, now)
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if a.ID == 0 || b.ID <= a.ID {
		t.Fatalf("ids not increasing: a=%d b=%d", a.ID, b.ID)
	}
	if string(a.Data) != `{"k":1}` {
		t.Fatalf("data = %s", a.Data)
	}
	if b.Data != nil {
		t.Fatalf("expected nil data, got %s", b.Data)
	}
	if !a.CreatedAt.Equal(now) {
		t.Fatalf("createdAt = %v, want %v", a.CreatedAt, now)
	}
}

func TestItems_ListNewestFirst(t *testing.T) {
	db := newTestDB(t, true)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, name := range []string{"old", "mid", "new"} {
		if _, err := CreateItem(ctx, db, name, nil, base.Add(time.Duration(i)*time.Hour)); err != nil {
			t.Fatalf("CreateItem(%s): %v", name, err)
		}
	}

	got, err := ListItems(ctx, db)
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for i, want := range []string{"new", "mid", "old"} {
		if got[i].Name != want {
			t.Fatalf("got[%d] = %q, want %q", i, got[i].Name, want)
		}
	}
}

func TestItems_ListEmptyIsNonNil(t *testing.T) {
	db := newTestDB(t, true)
	got, err := ListItems(context.Background(), db)
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("want empty non-nil slice, got %#v", got)
	}
}

func TestItems_GetMissing(t *testing.T) {
	db := newTestDB(t, true)
	if _, err := GetItem(context.Background(), db, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestItems_StoreErrorsAreNotNotFound(t *testing.T) {
	db := newTestDB(t, false)
	ctx := context.Background()

	if _, err := ListItems(ctx, db); err == nil {
		t.Fatalf("expected error without schema")
	}
	if _, err := GetItem(ctx, db, 1); err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("want store error, got %v", err)
	}
	if _, err := CreateItem(ctx, db, "x", nil, time.Now()); err == nil {
		t.Fatalf("expected insert error without schema")
	}
}
