// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// article_scan_test.go checks that article SELECT lists line up with the
// scan destinations. It runs against a canned in-process driver that
// answers every query with one row shaped exactly like the query's
// column list, so a drifting SELECT breaks the test without Postgres.
package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"io"
	"strings"
	"testing"
	"time"
)

type cannedArticleDriver struct{}

func (cannedArticleDriver) Open(string) (driver.Conn, error) {
	return &cannedArticleConn{}, nil
}

type cannedArticleConn struct{}

func (c *cannedArticleConn) Prepare(string) (driver.Stmt, error) {
	return nil, driver.ErrSkip
}

func (c *cannedArticleConn) Close() error { return nil }

func (c *cannedArticleConn) Begin() (driver.Tx, error) {
	return nil, driver.ErrSkip
}

func (c *cannedArticleConn) QueryContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Rows, error) {
	return &cannedArticleRows{width: selectWidth(query)}, nil
}

// cannedArticleRows yields a single article row padded or truncated to
// the width of the query's SELECT list.
type cannedArticleRows struct {
	width int
	done  bool
}

func (r *cannedArticleRows) Columns() []string {
	cols := make([]string, r.width)
	for i := range cols {
		cols[i] = "c"
	}
	return cols
}

func (r *cannedArticleRows) Close() error { return nil }

func (r *cannedArticleRows) Next(dest []driver.Value) error {
	if r.done {
		return io.EOF
	}
	r.done = true

	now := time.Now()
	row := []driver.Value{
		int64(1), "Canned Title", "canned-title", int64(2), nil, int64(3),
		"teaser", "body", nil, "published", false,
		now, now, "author", false, "General", "general",
	}
	for i := range dest {
		if i < len(row) {
			dest[i] = row[i]
		} else {
			dest[i] = float64(0)
		}
	}
	return nil
}

// selectWidth counts the top-level comma-separated expressions between
// SELECT and FROM.
func selectWidth(query string) int {
	upper := strings.ToUpper(query)
	start := strings.Index(upper, "SELECT")
	if start < 0 {
		return 0
	}
	list := query[start+len("SELECT"):]
	width, depth := 1, 0
	for i := 0; i < len(list); i++ {
		switch list[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				width++
			}
		default:
			if depth == 0 && strings.HasPrefix(strings.ToUpper(list[i:]), "FROM") {
				return width
			}
		}
	}
	return width
}

func cannedArticleDB(t *testing.T) *sql.DB {
	t.Helper()
	sql.Register("canned-article-"+t.Name(), cannedArticleDriver{})
	db, err := sql.Open("canned-article-"+t.Name(), "")
	if err != nil {
		t.Fatalf("open canned driver: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSearchScansEverySelectedColumn(t *testing.T) {
	articles := NewArticleStore(cannedArticleDB(t))

	items, err := articles.Search(context.Background(), "golang", 10, 0)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("results: got %d, want 1", len(items))
	}
	if items[0].Title != "Canned Title" {
		t.Errorf("title: got %q", items[0].Title)
	}
}

func TestListPublishedScansEverySelectedColumn(t *testing.T) {
	articles := NewArticleStore(cannedArticleDB(t))

	items, err := articles.ListPublished(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("list published: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("results: got %d, want 1", len(items))
	}
}
