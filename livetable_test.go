package livetable

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type usersTable struct{}

func (usersTable) Query(tx *gorm.DB) *gorm.DB {
	return tx.Model(&User{})
}

func (usersTable) Columns() []Column {
	return []Column{
		NewColumn("Name", "name").Searchable().Sortable(),
		NewColumn("Email", "email").Searchable().Sortable(),
	}
}

func userRows(from, to int) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "name", "email", "role"})
	for i := from; i <= to; i++ {
		rows.AddRow(i, "user", "user@example.com", "member")
	}
	return rows
}

func TestNew(t *testing.T) {
	db, _ := newMockDB(t)

	table := New[User](db, usersTable{})
	if table.tx == nil {
		t.Error("expected tx to be initialized, got nil")
	}
	if !table.config.Searchable || !table.config.Paginate {
		t.Errorf("expected Searchable and Paginate to be true, got %+v", table.config)
	}
	state := table.State()
	if state.Sorting.Field != "id" || state.Sorting.Direction != Ascending {
		t.Errorf("expected default sort id asc, got %+v", state.Sorting)
	}
	if state.Pagination.Page != 1 || state.Pagination.PerPage != 10 {
		t.Errorf("expected page 1 of 10 rows, got %+v", state.Pagination)
	}
}

func TestValidate(t *testing.T) {
	db, _ := newMockDB(t)

	tests := []struct {
		name  string
		table *Table[User]
	}{
		{"missing_db", New[User](nil, usersTable{})},
		{"missing_definition", New[User](db, nil)},
		{"invalid_column", New[User](db, Define(
			func(tx *gorm.DB) *gorm.DB { return tx.Model(&User{}) },
			NewColumn("Broken", ""),
		))},
		{"invalid_per_page", New[User](db, usersTable{}).SetConfig(Config{Paginate: true, PerPage: 0})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.table.Validate(); !errors.Is(err, ErrConfiguration) {
				t.Errorf("expected configuration error, got %v", err)
			}
		})
	}

	if err := New[User](db, usersTable{}).Validate(); err != nil {
		t.Errorf("expected a valid table, got %v", err)
	}
}

func TestRenderPaginationBoundary(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(qm("SELECT count(*) FROM `users`")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(25)))
	mock.ExpectQuery(qm("SELECT * FROM `users` ORDER BY `id` LIMIT ? OFFSET ?")).
		WithArgs(10, 20).
		WillReturnRows(userRows(21, 25))

	table := New[User](db, usersTable{}).SetPage(3)
	result, err := table.Render(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Rows) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(result.Rows))
	}
	if result.Rows[0].ID != 21 || result.Rows[4].ID != 25 {
		t.Errorf("expected rows 21-25, got %d-%d", result.Rows[0].ID, result.Rows[4].ID)
	}
	expected := Pagination{Total: 25, PerPage: 10, CurrentPage: 3, LastPage: 3, From: 21, To: 25}
	if *result.Pagination != expected {
		t.Errorf("expected %+v, got %+v", expected, *result.Pagination)
	}
	if len(result.Columns) != 2 {
		t.Errorf("expected the declared columns, got %d", len(result.Columns))
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRenderFirstPage(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(qm("SELECT count(*) FROM `users` WHERE")).
		WithArgs("%jane%", "%jane%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(2)))
	mock.ExpectQuery(qm("ORDER BY `email` LIMIT ?")).
		WithArgs("%jane%", "%jane%", 10).
		WillReturnRows(userRows(1, 2))

	table := New[User](db, usersTable{}).SetPage(4).SetSearch("jane").Sort("email")
	result, err := table.Render(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Pagination.CurrentPage != 1 || result.Pagination.LastPage != 1 {
		t.Errorf("expected the search to reset to page 1 of 1, got %+v", *result.Pagination)
	}
	if !result.Pagination.OnFirstPage() || result.Pagination.HasMorePages() {
		t.Errorf("expected a single page, got %+v", *result.Pagination)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRenderWithoutPagination(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT \\* FROM `users` WHERE \\(?`users`\\.`name` LIKE \\? OR `users`\\.`email` LIKE \\?\\)? ORDER BY `name` DESC").
		WithArgs("%jane%", "%jane%").
		WillReturnRows(userRows(1, 3))

	table := New[User](db, usersTable{}).DisablePagination().SetSearch("jane").Sort("name").Sort("name")
	result, err := table.Render(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Rows) != 3 {
		t.Errorf("expected 3 rows, got %d", len(result.Rows))
	}
	if result.Pagination != nil {
		t.Errorf("expected no pagination, got %+v", *result.Pagination)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRenderMaps(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(qm("SELECT * FROM `users` ORDER BY `id`")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(1, "John Doe"))

	table := New[map[string]any](db, Define(
		func(tx *gorm.DB) *gorm.DB { return tx.Table("users") },
		NewColumn("Name", "name").Searchable(),
	)).DisablePagination()

	result, err := table.Render(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Rows) != 1 || result.Rows[0]["name"] != "John Doe" {
		t.Errorf("unexpected rows: %v", result.Rows)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRenderFilters(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(qm("SELECT * FROM `users` WHERE role = ?")).
		WithArgs("admin").
		WillReturnRows(userRows(1, 1))

	table := New[User](db, usersTable{}).
		DisablePagination().
		Filter(func(tx *gorm.DB) *gorm.DB { return tx.Where("role = ?", "admin") })

	if _, err := table.Render(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRenderQueryErrors(t *testing.T) {
	tests := []struct {
		name   string
		expect func(mock sqlmock.Sqlmock)
	}{
		{
			name: "count_fails",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(qm("SELECT count(*) FROM `users`")).
					WillReturnError(errors.New("unknown column"))
			},
		},
		{
			name: "select_fails",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(qm("SELECT count(*) FROM `users`")).
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(1)))
				mock.ExpectQuery(qm("SELECT * FROM `users` ORDER BY `missing` LIMIT ?")).
					WithArgs(10).
					WillReturnError(errors.New("unknown column"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			tt.expect(mock)

			_, err := New[User](db, usersTable{}).Sort("missing").Render(context.Background())
			if !errors.Is(err, ErrQueryExecution) {
				t.Errorf("expected query execution error, got %v", err)
			}
		})
	}
}

func TestRenderDisabledSearch(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(qm("SELECT * FROM `users` ORDER BY `id`")).
		WillReturnRows(userRows(1, 1))

	table := New[User](db, usersTable{}).DisablePagination().SetSearch("jane").DisableSearch()
	if _, err := table.Render(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRenderIsRepeatable(t *testing.T) {
	db, mock := newMockDB(t)

	for i := 0; i < 2; i++ {
		mock.ExpectQuery(qm("SELECT * FROM `users` WHERE")).
			WithArgs("%jo%", "%jo%").
			WillReturnRows(userRows(1, 2))
	}

	table := New[User](db, usersTable{}).DisablePagination().SetSearch("jo")
	before := table.State()
	for i := 0; i < 2; i++ {
		result, err := table.Render(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result.Rows) != 2 {
			t.Errorf("expected 2 rows, got %d", len(result.Rows))
		}
	}
	if table.State() != before {
		t.Errorf("expected render not to change the state, got %+v", table.State())
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRenderLogs(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(qm("SELECT * FROM `users` ORDER BY `id`")).
		WillReturnRows(userRows(1, 1))

	var buf bytes.Buffer
	table := New[User](db, usersTable{}).
		DisablePagination().
		WithLogger(zerolog.New(&buf).Level(zerolog.DebugLevel))

	if _, err := table.Render(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{`"message":"composed table query"`, `"message":"rendered table"`, `"sort_field":"id"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in log output %s", want, out)
		}
	}
}

func TestQuery(t *testing.T) {
	db, _ := newMockDB(t)

	table := New[User](db, usersTable{}).SetSearch("jane").Sort("email")
	query, err := table.Query()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var rows []User
		return query.Session(&gorm.Session{DryRun: true}).Find(&rows)
	})
	if !strings.Contains(sql, "LIKE '%jane%'") || !strings.Contains(sql, "ORDER BY `email`") {
		t.Errorf("unexpected query: %q", sql)
	}
}

func TestRestore(t *testing.T) {
	db, _ := newMockDB(t)

	state := NewState(DefaultConfig())
	state.SetSearch("jane")
	state.Sort("email")
	state.SetPage(2)

	table := New[User](db, usersTable{}).Restore(state)
	if table.State() != state {
		t.Errorf("expected %+v, got %+v", state, table.State())
	}
}
