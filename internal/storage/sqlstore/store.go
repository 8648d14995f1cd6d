// Package sqlstore implements the storage interface on MySQL.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	// MySQL driver
	_ "github.com/go-sql-driver/mysql"

	"github.com/tdvu/chanwork/internal/storage"
	"github.com/tdvu/chanwork/internal/types"
)

// Store is a MySQL-backed work-item store.
type Store struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

// New opens a MySQL connection for the given DSN and ensures the schema
// exists. The DSN must enable parseTime.
func New(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlstore: ping: %w", err)
	}

	s := NewFromDB(db)
	if err := s.init(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewFromDB wraps an existing connection. Used by tests (sqlmock) and by
// callers that manage their own pool.
func NewFromDB(db *sql.DB) *Store {
	return &Store{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Question),
	}
}

func (s *Store) init(ctx context.Context) error {
	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlstore: schema: %w", err)
		}
	}
	return nil
}

// props carries the item fields stored in the JSON document column.
type props struct {
	AssigneeIDs    []string              `json:"assignee_ids,omitempty"`
	ManagerIDs     []string              `json:"manager_ids,omitempty"`
	Checklists     []types.ChecklistGroup `json:"checklists,omitempty"`
	ChecklistItems []types.ChecklistItem `json:"checklist_items,omitempty"`
	LinkedItemIDs  []string              `json:"linked_item_ids,omitempty"`
	DueAt          *time.Time            `json:"due_at,omitempty"`
	Confirmed      *types.Mark           `json:"confirmed,omitempty"`
	Done           *types.Mark           `json:"done,omitempty"`
	Completed      *types.Mark           `json:"completed,omitempty"`
	Restored       *types.Mark           `json:"restored,omitempty"`
	PriorityMark   *types.Mark           `json:"priority_mark,omitempty"`
}

func packProps(item *types.WorkItem) ([]byte, error) {
	return json.Marshal(props{
		AssigneeIDs:    item.AssigneeIDs,
		ManagerIDs:     item.ManagerIDs,
		Checklists:     item.Checklists,
		ChecklistItems: item.ChecklistItems,
		LinkedItemIDs:  item.LinkedItemIDs,
		DueAt:          item.DueAt,
		Confirmed:      item.Confirmed,
		Done:           item.Done,
		Completed:      item.Completed,
		Restored:       item.Restored,
		PriorityMark:   item.PriorityMark,
	})
}

func unpackProps(item *types.WorkItem, raw []byte) error {
	if len(raw) == 0 {
		return nil
	}
	var p props
	if err := json.Unmarshal(raw, &p); err != nil {
		return fmt.Errorf("sqlstore: props for %s: %w", item.ID, err)
	}
	item.AssigneeIDs = p.AssigneeIDs
	item.ManagerIDs = p.ManagerIDs
	item.Checklists = p.Checklists
	item.ChecklistItems = p.ChecklistItems
	item.LinkedItemIDs = p.LinkedItemIDs
	item.DueAt = p.DueAt
	item.Confirmed = p.Confirmed
	item.Done = p.Done
	item.Completed = p.Completed
	item.Restored = p.Restored
	item.PriorityMark = p.PriorityMark
	return nil
}

var itemColumns = []string{
	"id", "kind", "channel_id", "title", "status", "creator_id",
	"priority", "props", "created_at", "updated_at",
}

// CreateItem implements storage.Store.
func (s *Store) CreateItem(ctx context.Context, item *types.WorkItem) error {
	raw, err := packProps(item)
	if err != nil {
		return fmt.Errorf("sqlstore: pack props: %w", err)
	}

	query, args, err := s.builder.
		Insert("work_items").
		Columns(itemColumns...).
		Values(item.ID, item.Kind, item.ChannelID, item.Title, item.Status,
			item.CreatorID, item.Priority, raw, item.CreatedAt, item.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("sqlstore: build insert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		if isDuplicateKey(err) {
			return storage.ErrDuplicateID
		}
		return fmt.Errorf("sqlstore: insert %s: %w", item.ID, err)
	}
	return nil
}

// GetItem implements storage.Store.
func (s *Store) GetItem(ctx context.Context, id string) (*types.WorkItem, error) {
	query, args, err := s.builder.
		Select(itemColumns...).
		From("work_items").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("sqlstore: build select: %w", err)
	}

	item, err := scanItem(s.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlstore: get %s: %w", id, err)
	}
	return item, nil
}

// UpdateItem implements storage.Store. The whole record is replaced in a
// single statement; MySQL serializes conflicting writers row-by-row and the
// last write wins.
func (s *Store) UpdateItem(ctx context.Context, item *types.WorkItem) (*types.WorkItem, error) {
	raw, err := packProps(item)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: pack props: %w", err)
	}

	query, args, err := s.builder.
		Update("work_items").
		Set("title", item.Title).
		Set("status", item.Status).
		Set("priority", item.Priority).
		Set("props", raw).
		Set("updated_at", item.UpdatedAt).
		Where(sq.Eq{"id": item.ID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("sqlstore: build update: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: update %s: %w", item.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Either the row is absent or the update was a no-op; disambiguate.
		if _, getErr := s.GetItem(ctx, item.ID); getErr != nil {
			return nil, getErr
		}
	}
	return item.Clone(), nil
}

// ListItems implements storage.Store. Results are ordered newest first.
func (s *Store) ListItems(ctx context.Context, filter types.ItemFilter) ([]*types.WorkItem, error) {
	b := s.builder.
		Select(itemColumns...).
		From("work_items").
		OrderBy("created_at DESC", "id ASC")

	if filter.ChannelID != "" {
		b = b.Where(sq.Eq{"channel_id": filter.ChannelID})
	}
	if filter.CreatorID != "" {
		b = b.Where(sq.Eq{"creator_id": filter.CreatorID})
	}
	if filter.Kind != nil {
		b = b.Where(sq.Eq{"kind": *filter.Kind})
	}
	if len(filter.Statuses) > 0 {
		b = b.Where(sq.Eq{"status": filter.Statuses})
	}
	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = 60
	}
	b = b.Limit(uint64(perPage)).Offset(uint64(filter.Page * perPage))

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("sqlstore: build list: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: list: %w", err)
	}
	defer rows.Close()

	var items []*types.WorkItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlstore: scan: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// CountByStatus implements storage.Store.
func (s *Store) CountByStatus(ctx context.Context, scope types.Scope, kind types.Kind, statuses []types.Status) (int, error) {
	b := s.builder.
		Select("COUNT(*)").
		From("work_items w").
		Where(sq.Eq{"w.kind": kind}).
		Where(sq.Eq{"w.status": statuses})

	switch scope.Kind {
	case types.ScopeChannel:
		b = b.Where(sq.Eq{"w.channel_id": scope.ID})
	case types.ScopeTechnical:
		b = b.Where("EXISTS (SELECT 1 FROM channels c WHERE c.id = w.channel_id AND c.technical = 1)")
	case types.ScopeUser:
		b = b.Where(sq.Eq{"w.creator_id": scope.ID})
	default:
		return 0, fmt.Errorf("sqlstore: unknown scope kind %q", scope.Kind)
	}

	query, args, err := b.ToSql()
	if err != nil {
		return 0, fmt.Errorf("sqlstore: build count: %w", err)
	}

	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("sqlstore: count: %w", err)
	}
	return count, nil
}

// IsMember implements storage.ChannelDirectory.
func (s *Store) IsMember(ctx context.Context, channelID, userID string) (bool, error) {
	query, args, err := s.builder.
		Select("COUNT(*)").
		From("channel_members").
		Where(sq.Eq{"channel_id": channelID, "user_id": userID}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("sqlstore: build member check: %w", err)
	}
	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("sqlstore: member check: %w", err)
	}
	return count > 0, nil
}

// IsTechnical implements storage.ChannelDirectory.
func (s *Store) IsTechnical(ctx context.Context, channelID string) (bool, error) {
	query, args, err := s.builder.
		Select("technical").
		From("channels").
		Where(sq.Eq{"id": channelID}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("sqlstore: build channel check: %w", err)
	}
	var technical bool
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&technical)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("sqlstore: channel check: %w", err)
	}
	return technical, nil
}

// Statuses returns the current status of each requested item, omitting IDs
// that do not exist.
func (s *Store) Statuses(ctx context.Context, ids []string) (map[string]types.Status, error) {
	if len(ids) == 0 {
		return map[string]types.Status{}, nil
	}
	query, args, err := s.builder.
		Select("id", "status").
		From("work_items").
		Where(sq.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("sqlstore: build statuses: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: statuses: %w", err)
	}
	defer rows.Close()

	out := make(map[string]types.Status, len(ids))
	for rows.Next() {
		var id string
		var status types.Status
		if err := rows.Scan(&id, &status); err != nil {
			return nil, fmt.Errorf("sqlstore: scan status: %w", err)
		}
		out[id] = status
	}
	return out, rows.Err()
}

// AddChannel registers a channel, updating the technical flag if it exists.
func (s *Store) AddChannel(ctx context.Context, channelID string, technical bool) error {
	query, args, err := s.builder.
		Insert("channels").
		Columns("id", "technical").
		Values(channelID, technical).
		Suffix("ON DUPLICATE KEY UPDATE technical = VALUES(technical)").
		ToSql()
	if err != nil {
		return fmt.Errorf("sqlstore: build add channel: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("sqlstore: add channel: %w", err)
	}
	return nil
}

// AddMember adds a user to a channel's member set.
func (s *Store) AddMember(ctx context.Context, channelID, userID string) error {
	query, args, err := s.builder.
		Insert("channel_members").
		Columns("channel_id", "user_id").
		Values(channelID, userID).
		Suffix("ON DUPLICATE KEY UPDATE user_id = user_id").
		ToSql()
	if err != nil {
		return fmt.Errorf("sqlstore: build add member: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("sqlstore: add member: %w", err)
	}
	return nil
}

// RemoveMember drops a user from a channel's member set.
func (s *Store) RemoveMember(ctx context.Context, channelID, userID string) error {
	query, args, err := s.builder.
		Delete("channel_members").
		Where(sq.Eq{"channel_id": channelID, "user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("sqlstore: build remove member: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("sqlstore: remove member: %w", err)
	}
	return nil
}

// Close implements storage.Store.
func (s *Store) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*types.WorkItem, error) {
	var item types.WorkItem
	var raw []byte
	err := row.Scan(&item.ID, &item.Kind, &item.ChannelID, &item.Title,
		&item.Status, &item.CreatorID, &item.Priority, &raw,
		&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := unpackProps(&item, raw); err != nil {
		return nil, err
	}
	return &item, nil
}

func isDuplicateKey(err error) bool {
	// MySQL error 1062: duplicate entry for key.
	return err != nil && strings.Contains(err.Error(), "Error 1062")
}
