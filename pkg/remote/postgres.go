package remote

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type columnKind int

const (
	textColumn columnKind = iota
	boolColumn
	tagsColumn
	timeColumn
)

type column struct {
	field string
	name  string
	kind  columnKind
}

// table maps record fields onto one PostgreSQL table. Id is always the text
// primary key "id".
type table struct {
	name    string
	columns []column
}

var (
	taskColumns = []column{
		{"Name", "name", textColumn},
		{"title", "title", textColumn},
		{"description", "description", textColumn},
		{"completed", "completed", boolColumn},
		{"category", "category", textColumn},
		{"Tags", "tags", tagsColumn},
		{"CreatedOn", "created_on", timeColumn},
	}
	categoryColumns = []column{
		{"Name", "name", textColumn},
		{"color", "color", textColumn},
		{"Tags", "tags", tagsColumn},
		{"CreatedOn", "created_on", timeColumn},
	}
)

// PostgresService is a RecordService backed by two PostgreSQL tables, one per
// collection. Record ids are UUIDs.
type PostgresService struct {
	db     *sql.DB
	tables map[string]table
}

// OpenPostgres connects to dsn and makes sure both collection tables exist.
func OpenPostgres(ctx context.Context, dsn string, coll Collections) (*PostgresService, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	s := NewPostgresService(db, coll)
	if err := s.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewPostgresService wraps an open database.
func NewPostgresService(db *sql.DB, coll Collections) *PostgresService {
	def := DefaultCollections()
	if coll.Tasks == "" {
		coll.Tasks = def.Tasks
	}
	if coll.Categories == "" {
		coll.Categories = def.Categories
	}
	return &PostgresService{
		db: db,
		tables: map[string]table{
			coll.Tasks:      {name: coll.Tasks, columns: taskColumns},
			coll.Categories: {name: coll.Categories, columns: categoryColumns},
		},
	}
}

// EnsureSchema creates the collection tables when missing.
func (s *PostgresService) EnsureSchema(ctx context.Context) error {
	for _, t := range s.tables {
		defs := []string{"id TEXT PRIMARY KEY"}
		for _, c := range t.columns {
			defs = append(defs, c.name+" "+c.ddl())
		}
		query := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", pq.QuoteIdentifier(t.name), strings.Join(defs, ", "))
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("create table %s: %w", t.name, err)
		}
	}
	return nil
}

func (c column) ddl() string {
	switch c.kind {
	case boolColumn:
		return "BOOLEAN NOT NULL DEFAULT FALSE"
	case tagsColumn:
		return "TEXT[] NOT NULL DEFAULT '{}'"
	case timeColumn:
		return "TIMESTAMPTZ NOT NULL DEFAULT now()"
	}
	return "TEXT NOT NULL DEFAULT ''"
}

func (s *PostgresService) table(collection string) (table, error) {
	t, ok := s.tables[collection]
	if !ok {
		return table{}, fmt.Errorf("unknown collection %q", collection)
	}
	return t, nil
}

func (t table) column(field string) (column, bool) {
	for _, c := range t.columns {
		if c.field == field {
			return c, true
		}
	}
	return column{}, false
}

// selectList returns the requested columns, always led by the id.
func (t table) selectList(fields []string) []column {
	cols := []column{{"Id", "id", textColumn}}
	if len(fields) == 0 {
		return append(cols, t.columns...)
	}
	for _, f := range fields {
		if c, ok := t.column(f); ok {
			cols = append(cols, c)
		}
	}
	return cols
}

func names(cols []column) string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.name
	}
	return strings.Join(out, ", ")
}

func (s *PostgresService) FetchRecords(ctx context.Context, collection string, params FetchParams) (*FetchResponse, error) {
	t, err := s.table(collection)
	if err != nil {
		return nil, err
	}
	cols := t.selectList(params.Fields)

	query := fmt.Sprintf("SELECT %s FROM %s", names(cols), pq.QuoteIdentifier(t.name))
	var order []string
	for _, o := range params.OrderBy {
		c, ok := t.column(o.Field)
		if !ok {
			return nil, fmt.Errorf("cannot order by unknown field %q", o.Field)
		}
		dir := "ASC"
		if strings.EqualFold(o.Direction, "DESC") {
			dir = "DESC"
		}
		order = append(order, c.name+" "+dir)
	}
	if len(order) > 0 {
		query += " ORDER BY " + strings.Join(order, ", ")
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	data := []json.RawMessage{}
	for rows.Next() {
		rec, err := scanRecord(rows, cols)
		if err != nil {
			return nil, err
		}
		data = append(data, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &FetchResponse{Success: true, Data: data}, nil
}

func (s *PostgresService) CreateRecord(ctx context.Context, collection string, records []Record) (*MutationResponse, error) {
	t, err := s.table(collection)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	resp := &MutationResponse{Success: true}
	all := t.selectList(nil)
	for _, rec := range records {
		cols := []string{"id"}
		args := []any{uuid.NewString()}
		for field, v := range rec {
			c, ok := t.column(field)
			if !ok {
				if field == "Id" {
					continue
				}
				return nil, fmt.Errorf("unknown field %q in %s", field, t.name)
			}
			if c.kind == timeColumn {
				continue
			}
			arg, err := c.value(v)
			if err != nil {
				return nil, err
			}
			cols = append(cols, c.name)
			args = append(args, arg)
		}

		query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
			pq.QuoteIdentifier(t.name), strings.Join(cols, ", "), placeholders(len(args)), names(all))
		data, err := scanRecord(tx.QueryRowContext(ctx, query, args...), all)
		if err != nil {
			return nil, fmt.Errorf("insert into %s: %w", t.name, err)
		}
		resp.Results = append(resp.Results, RecordResult{Success: true, Data: data})
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *PostgresService) UpdateRecord(ctx context.Context, collection string, records []Record) (*MutationResponse, error) {
	t, err := s.table(collection)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	resp := &MutationResponse{Success: true}
	all := t.selectList(nil)
	for _, rec := range records {
		id, ok := rec["Id"]
		if !ok {
			return nil, fmt.Errorf("update of %s without Id", t.name)
		}

		var sets []string
		args := []any{fmt.Sprint(id)}
		for field, v := range rec {
			if field == "Id" {
				continue
			}
			c, ok := t.column(field)
			if !ok {
				return nil, fmt.Errorf("unknown field %q in %s", field, t.name)
			}
			if c.kind == timeColumn {
				continue
			}
			arg, err := c.value(v)
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			sets = append(sets, fmt.Sprintf("%s = $%d", c.name, len(args)))
		}
		if len(sets) == 0 {
			sets = append(sets, "id = id")
		}

		query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $1 RETURNING %s",
			pq.QuoteIdentifier(t.name), strings.Join(sets, ", "), names(all))
		data, err := scanRecord(tx.QueryRowContext(ctx, query, args...), all)
		if errors.Is(err, sql.ErrNoRows) {
			resp.Success = false
			resp.Results = append(resp.Results, RecordResult{Message: fmt.Sprintf("record %v not found", id)})
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("update %s: %w", t.name, err)
		}
		resp.Results = append(resp.Results, RecordResult{Success: true, Data: data})
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *PostgresService) DeleteRecord(ctx context.Context, collection string, ids []string) (*DeleteResponse, error) {
	t, err := s.table(collection)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf("DELETE FROM %s WHERE id = ANY($1)", pq.QuoteIdentifier(t.name))
	res, err := s.db.ExecContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if int(n) != len(ids) {
		return &DeleteResponse{Success: false, Message: fmt.Sprintf("deleted %d of %d records", n, len(ids))}, nil
	}
	return &DeleteResponse{Success: true}, nil
}

func (s *PostgresService) Close() error {
	return s.db.Close()
}

// value converts a decoded record value into a driver argument.
func (c column) value(v any) (any, error) {
	switch c.kind {
	case boolColumn:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("field %s: want bool, got %T", c.field, v)
		}
		return b, nil
	case tagsColumn:
		switch tags := v.(type) {
		case nil:
			return pq.Array([]string{}), nil
		case []string:
			return pq.Array(tags), nil
		case []any:
			out := make([]string, len(tags))
			for i, t := range tags {
				out[i] = fmt.Sprint(t)
			}
			return pq.Array(out), nil
		}
		return nil, fmt.Errorf("field %s: want string list, got %T", c.field, v)
	}
	if v == nil {
		return "", nil
	}
	return fmt.Sprint(v), nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner, cols []column) (json.RawMessage, error) {
	dest := make([]any, len(cols))
	for i, c := range cols {
		switch c.kind {
		case boolColumn:
			dest[i] = new(bool)
		case tagsColumn:
			dest[i] = new(pq.StringArray)
		case timeColumn:
			dest[i] = new(time.Time)
		default:
			dest[i] = new(string)
		}
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	rec := make(map[string]any, len(cols))
	for i, c := range cols {
		switch d := dest[i].(type) {
		case *bool:
			rec[c.field] = *d
		case *pq.StringArray:
			rec[c.field] = []string(*d)
		case *time.Time:
			rec[c.field] = d.UTC().Format(time.RFC3339Nano)
		case *string:
			rec[c.field] = *d
		}
	}
	return json.Marshal(rec)
}

func placeholders(n int) string {
	ps := make([]string, n)
	for i := range ps {
		ps[i] = fmt.Sprintf("$%d", i+1)
	}
	return strings.Join(ps, ", ")
}
