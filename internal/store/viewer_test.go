// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"sync"
	"testing"
)

func TestViewerTrackIsIdempotent(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	s := NewViewerStore(db)

	email := "viewer-track@store-test.local"
	t.Cleanup(func() {
		cleanArticles(t, db, "viewer-track-article")
		cleanCategories(t, db, "viewer-track-cat")
		cleanUsers(t, db, email)
		db.Exec("DELETE FROM viewers WHERE ip_address LIKE '203.0.113.%'")
	})

	u := seedUser(t, db, "viewer-track", email)
	c := seedCategory(t, db, "Viewer Track", "viewer-track-cat")
	a := seedArticle(t, db, u.ID, c.ID, "Viewer Track Article", "viewer-track-article")

	// Anonymous visitor views twice; the count moves once.
	if err := s.Track(ctx, a.ID, nil, "203.0.113.50"); err != nil {
		t.Fatalf("Track: %v", err)
	}
	if err := s.Track(ctx, a.ID, nil, "203.0.113.50"); err != nil {
		t.Fatalf("Track (revisit): %v", err)
	}

	count, err := s.CountForArticle(ctx, a.ID)
	if err != nil {
		t.Fatalf("CountForArticle: %v", err)
	}
	if count != 1 {
		t.Errorf("count after revisit: got %d, want 1", count)
	}

	// A logged-in visitor from the same IP is a distinct viewer.
	if err := s.Track(ctx, a.ID, &u.ID, "203.0.113.50"); err != nil {
		t.Fatalf("Track logged-in: %v", err)
	}
	count, err = s.CountForArticle(ctx, a.ID)
	if err != nil {
		t.Fatalf("CountForArticle: %v", err)
	}
	if count != 2 {
		t.Errorf("count with logged-in viewer: got %d, want 2", count)
	}

	// The logged-in visitor moving to another IP stays one viewer.
	if err := s.Track(ctx, a.ID, &u.ID, "203.0.113.51"); err != nil {
		t.Fatalf("Track new IP: %v", err)
	}
	count, err = s.CountForArticle(ctx, a.ID)
	if err != nil {
		t.Fatalf("CountForArticle: %v", err)
	}
	if count != 2 {
		t.Errorf("count after IP change: got %d, want 2", count)
	}
}

func TestViewerTrackConcurrentFirstViews(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	s := NewViewerStore(db)

	email := "viewer-race@store-test.local"
	t.Cleanup(func() {
		cleanArticles(t, db, "viewer-race-article")
		cleanCategories(t, db, "viewer-race-cat")
		cleanUsers(t, db, email)
		db.Exec("DELETE FROM viewers WHERE ip_address = '203.0.113.52'")
	})

	u := seedUser(t, db, "viewer-race", email)
	c := seedCategory(t, db, "Viewer Race", "viewer-race-cat")
	a := seedArticle(t, db, u.ID, c.ID, "Viewer Race Article", "viewer-race-article")

	// Same anonymous identity fires its first views in parallel.
	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.Track(ctx, a.ID, nil, "203.0.113.52")
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("Track: %v", err)
		}
	}

	count, err := s.CountForArticle(ctx, a.ID)
	if err != nil {
		t.Fatalf("CountForArticle: %v", err)
	}
	if count != 1 {
		t.Errorf("count after concurrent first views: got %d, want 1", count)
	}

	var rows int
	if err := db.QueryRow(
		"SELECT COUNT(*) FROM viewers WHERE ip_address = '203.0.113.52'",
	).Scan(&rows); err != nil {
		t.Fatalf("count viewer rows: %v", err)
	}
	if rows != 1 {
		t.Errorf("viewer rows for one identity: got %d, want 1", rows)
	}
}
