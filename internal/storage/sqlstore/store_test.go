package sqlstore

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/tdvu/chanwork/internal/storage"
	"github.com/tdvu/chanwork/internal/types"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewFromDB(db), mock
}

func itemRows(items ...*types.WorkItem) *sqlmock.Rows {
	rows := sqlmock.NewRows(itemColumns)
	for _, it := range items {
		raw, _ := packProps(it)
		rows.AddRow(it.ID, string(it.Kind), it.ChannelID, it.Title,
			string(it.Status), it.CreatorID, it.Priority, raw,
			it.CreatedAt, it.UpdatedAt)
	}
	return rows
}

func TestGetItem(t *testing.T) {
	s, mock := newMockStore(t)
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	want := &types.WorkItem{
		ID:        "ta-1",
		Kind:      types.KindTask,
		ChannelID: "ch1",
		Title:     "rotate certs",
		Status:    types.StatusNew,
		CreatorID: "u1",
		Checklists: []types.ChecklistGroup{{
			Title: "steps",
			Items: []types.ChecklistItem{{Title: "step one", State: types.ItemOpen}},
		}},
		CreatedAt: base,
		UpdatedAt: base,
	}

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT id, kind, channel_id, title, status, creator_id, priority, props, created_at, updated_at FROM work_items WHERE id = ?")).
		WithArgs("ta-1").
		WillReturnRows(itemRows(want))

	got, err := s.GetItem(context.Background(), "ta-1")
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if got.Title != want.Title || got.Kind != want.Kind {
		t.Errorf("GetItem = %+v", got)
	}
	if len(got.Checklists) != 1 || len(got.Checklists[0].Items) != 1 {
		t.Errorf("checklists did not round-trip through props: %+v", got.Checklists)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestGetItemNotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("SELECT .+ FROM work_items WHERE id = ?").
		WithArgs("tr-ghost").
		WillReturnRows(sqlmock.NewRows(itemColumns))

	_, err := s.GetItem(context.Background(), "tr-ghost")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetItem(missing) error = %v, want ErrNotFound", err)
	}
}

func TestCreateItemDuplicate(t *testing.T) {
	s, mock := newMockStore(t)
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	item := &types.WorkItem{
		ID: "tr-1", Kind: types.KindTrouble, ChannelID: "ch1",
		Title: "login broken", Status: types.StatusNew, CreatorID: "u1",
		CreatedAt: base, UpdatedAt: base,
	}

	mock.ExpectExec("INSERT INTO work_items").
		WillReturnError(errors.New("Error 1062: Duplicate entry 'tr-1' for key 'PRIMARY'"))

	if err := s.CreateItem(context.Background(), item); !errors.Is(err, storage.ErrDuplicateID) {
		t.Errorf("CreateItem error = %v, want ErrDuplicateID", err)
	}
}

func TestUpdateItemMissing(t *testing.T) {
	s, mock := newMockStore(t)
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	item := &types.WorkItem{
		ID: "tr-ghost", Kind: types.KindTrouble, ChannelID: "ch1",
		Title: "gone", Status: types.StatusNew, CreatorID: "u1",
		CreatedAt: base, UpdatedAt: base,
	}

	mock.ExpectExec("UPDATE work_items SET").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT .+ FROM work_items WHERE id = ?").
		WithArgs("tr-ghost").
		WillReturnRows(sqlmock.NewRows(itemColumns))

	if _, err := s.UpdateItem(context.Background(), item); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("UpdateItem(missing) error = %v, want ErrNotFound", err)
	}
}

func TestCountByStatusScopes(t *testing.T) {
	open := []types.Status{types.StatusNew, types.StatusConfirmed}

	tests := []struct {
		name    string
		scope   types.Scope
		pattern string
		args    []driver.Value
	}{
		{
			name:    "channel",
			scope:   types.ChannelScope("ch1"),
			pattern: `SELECT COUNT\(\*\) FROM work_items w WHERE w\.kind = \? AND w\.status IN \(\?,\?\) AND w\.channel_id = \?`,
			args:    []driver.Value{"trouble", "new", "confirmed", "ch1"},
		},
		{
			name:    "technical domain",
			scope:   types.TechnicalScope(),
			pattern: `SELECT COUNT\(\*\) FROM work_items w WHERE w\.kind = \? AND w\.status IN \(\?,\?\) AND EXISTS`,
			args:    []driver.Value{"trouble", "new", "confirmed"},
		},
		{
			name:    "user",
			scope:   types.UserScope("u1"),
			pattern: `SELECT COUNT\(\*\) FROM work_items w WHERE w\.kind = \? AND w\.status IN \(\?,\?\) AND w\.creator_id = \?`,
			args:    []driver.Value{"trouble", "new", "confirmed", "u1"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newMockStore(t)

			mock.ExpectQuery(tt.pattern).
				WithArgs(tt.args...).
				WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(3))

			got, err := s.CountByStatus(context.Background(), tt.scope, types.KindTrouble, open)
			if err != nil {
				t.Fatalf("CountByStatus: %v", err)
			}
			if got != 3 {
				t.Errorf("CountByStatus = %d, want 3", got)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestStatuses(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT id, status FROM work_items WHERE id IN (?,?)")).
		WithArgs("tr-1", "tr-ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).AddRow("tr-1", "done"))

	got, err := s.Statuses(context.Background(), []string{"tr-1", "tr-ghost"})
	if err != nil {
		t.Fatalf("Statuses: %v", err)
	}
	if got["tr-1"] != types.StatusDone {
		t.Errorf("Statuses[tr-1] = %q, want done", got["tr-1"])
	}
	if _, ok := got["tr-ghost"]; ok {
		t.Error("missing items must be omitted")
	}
}

func TestIsMember(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT COUNT(*) FROM channel_members WHERE")).
		WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(1))

	ok, err := s.IsMember(context.Background(), "ch1", "u1")
	if err != nil {
		t.Fatalf("IsMember: %v", err)
	}
	if !ok {
		t.Error("IsMember = false, want true")
	}
}

func TestIsTechnicalUnknownChannel(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT technical FROM channels WHERE id = ?")).
		WithArgs("ch-ghost").
		WillReturnRows(sqlmock.NewRows([]string{"technical"}))

	ok, err := s.IsTechnical(context.Background(), "ch-ghost")
	if err != nil {
		t.Fatalf("IsTechnical: %v", err)
	}
	if ok {
		t.Error("unknown channel must not be technical")
	}
}
