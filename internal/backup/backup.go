// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package backup writes a timestamped JSON export of the content
// tables. A cron entry runs it nightly; it can also be invoked on
// demand. Local exports are additive snapshots; when S3 is configured
// a copy goes off-site and old remote copies are pruned.
package backup

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"inkwell/internal/storage"
)

// keepRemoteExports is how many off-site copies survive pruning.
const keepRemoteExports = 14

// Exporter dumps database content to JSON files.
type Exporter struct {
	db     *sql.DB
	dir    string
	remote *storage.Client
}

// NewExporter creates an exporter writing into dir. remote may be nil
// for local-only exports.
func NewExporter(db *sql.DB, dir string, remote *storage.Client) *Exporter {
	return &Exporter{db: db, dir: dir, remote: remote}
}

// Filename returns the export file name for the given moment, e.g.
// database-2026-08-30-00-00-00.json.
func Filename(t time.Time) string {
	return "database-" + t.Format("2006-01-02-15-04-05") + ".json"
}

// snapshot is the shape of one export file.
type snapshot struct {
	ExportedAt time.Time                   `json:"exported_at"`
	Tables     map[string][]map[string]any `json:"tables"`
}

// exportTables lists what goes into the snapshot. Sessions and other
// Redis-side state are deliberately absent.
var exportTables = []string{
	"users", "profiles", "profile_follows",
	"categories", "articles", "tags", "article_tags",
	"comments", "ratings", "viewers", "article_viewers",
	"feedback",
}

// Run exports all content tables into a new timestamped file and
// returns its path.
func (e *Exporter) Run(ctx context.Context) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("backup dir: %w", err)
	}

	snap := snapshot{
		ExportedAt: time.Now(),
		Tables:     make(map[string][]map[string]any, len(exportTables)),
	}
	for _, table := range exportTables {
		rows, err := e.dumpTable(ctx, table)
		if err != nil {
			return "", fmt.Errorf("backup %s: %w", table, err)
		}
		snap.Tables[table] = rows
	}

	path := filepath.Join(e.dir, Filename(snap.ExportedAt))
	payload, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("backup encode: %w", err)
	}
	if err := os.WriteFile(path, payload, 0o600); err != nil {
		return "", fmt.Errorf("backup write: %w", err)
	}

	slog.Info("backup written", "path", path)

	if e.remote != nil {
		name := Filename(snap.ExportedAt)
		err := e.remote.Upload(ctx, name, "application/json", bytes.NewReader(payload), int64(len(payload)))
		if err != nil {
			// The local file exists, so a failed upload is not fatal.
			slog.Error("backup upload failed", "error", err, "key", name)
			return path, nil
		}
		if err := e.remote.Prune(ctx, "database-", keepRemoteExports); err != nil {
			slog.Error("backup prune failed", "error", err)
		}
		slog.Info("backup uploaded", "key", name)
	}

	return path, nil
}

// dumpTable reads every row of a table into generic maps.
func (e *Exporter) dumpTable(ctx context.Context, table string) ([]map[string]any, error) {
	rows, err := e.db.QueryContext(ctx, "SELECT * FROM "+table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	out := []map[string]any{}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		record := make(map[string]any, len(cols))
		for i, col := range cols {
			switch v := values[i].(type) {
			case []byte:
				record[col] = string(v)
			default:
				record[col] = v
			}
		}
		out = append(out, record)
	}
	return out, rows.Err()
}
