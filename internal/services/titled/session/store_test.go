package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/louisbranch/pagetitle/internal/services/titled/sitemap"
	"github.com/louisbranch/pagetitle/internal/services/titled/view"
)

func TestCreateIssuesUUIDAndIsolatesRegistries(t *testing.T) {
	t.Parallel()

	site, err := sitemap.Default()
	if err != nil {
		t.Fatalf("load site map: %v", err)
	}
	store := NewStore(time.Minute, nil)
	a := store.Create()
	b := store.Create()
	if _, err := uuid.Parse(a.ID()); err != nil {
		t.Fatalf("session id %q is not a uuid: %v", a.ID(), err)
	}
	if a.ID() == b.ID() {
		t.Fatal("expected distinct session ids")
	}

	chain, _ := site.Resolve("/campaigns")
	if err := a.Do(func(tree *view.Tree) error {
		if err := tree.Reload(chain); err != nil {
			return err
		}
		return tree.Registry().SetSeparator(" | ")
	}); err != nil {
		t.Fatalf("session A: %v", err)
	}

	var titleB, sepB string
	_ = b.Do(func(tree *view.Tree) error {
		titleB = tree.Registry().Title()
		sepB = tree.Registry().Separator()
		return nil
	})
	if titleB != "" {
		t.Fatalf("session B saw title %q from session A", titleB)
	}
	if sepB == " | " {
		t.Fatal("session B saw separator from session A")
	}
}

func TestGetOrCreate(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute, nil)
	first, created := store.GetOrCreate("")
	if !created {
		t.Fatal("expected new session for empty id")
	}
	again, created := store.GetOrCreate(first.ID())
	if created || again != first {
		t.Fatal("expected existing session to be returned")
	}
	_, created = store.GetOrCreate("unknown")
	if !created {
		t.Fatal("expected new session for unknown id")
	}
	if store.Len() != 2 {
		t.Fatalf("Len = %d, want 2", store.Len())
	}
}

func TestSweepRemovesIdleSessions(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	store := NewStore(10*time.Minute, nil)
	store.now = func() time.Time { return now }

	stale := store.Create()
	now = now.Add(8 * time.Minute)
	fresh := store.Create()
	now = now.Add(5 * time.Minute)

	if removed := store.Sweep(); removed != 1 {
		t.Fatalf("Sweep removed %d, want 1", removed)
	}
	if _, ok := store.Get(stale.ID()); ok {
		t.Fatal("expected stale session to be gone")
	}
	if _, ok := store.Get(fresh.ID()); !ok {
		t.Fatal("expected fresh session to survive")
	}
}

func TestDeleteUnmountsTree(t *testing.T) {
	t.Parallel()

	site, err := sitemap.Default()
	if err != nil {
		t.Fatalf("load site map: %v", err)
	}
	store := NewStore(time.Minute, nil)
	sess := store.Create()
	chain, _ := site.Resolve("/settings/profile")
	var tree *view.Tree
	_ = sess.Do(func(tr *view.Tree) error {
		tree = tr
		return tr.Reload(chain)
	})

	store.Delete(sess.ID())
	if store.Len() != 0 {
		t.Fatalf("Len = %d, want 0", store.Len())
	}
	if parts := tree.Registry().Parts(); len(parts) != 0 {
		t.Fatalf("parts after delete = %v, want none", parts)
	}
}

func TestSessionDoSerializesAccess(t *testing.T) {
	t.Parallel()

	site, err := sitemap.Default()
	if err != nil {
		t.Fatalf("load site map: %v", err)
	}
	store := NewStore(time.Minute, nil)
	sess := store.Create()
	paths := []string{"/", "/campaigns", "/settings", "/campaigns/sessions/live"}

	var wg sync.WaitGroup
	for idx := 0; idx < 20; idx++ {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			chain, _ := site.Resolve(path)
			_ = sess.Do(func(tree *view.Tree) error {
				return tree.Navigate(chain)
			})
		}(paths[idx%len(paths)])
	}
	wg.Wait()

	_ = sess.Do(func(tree *view.Tree) error {
		if got, want := tree.Title(), tree.Registry().Title(); got != want {
			t.Errorf("document title %q diverged from registry %q", got, want)
		}
		return nil
	})
}

func TestRunStopsWithContext(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Nanosecond, nil)
	store.Create()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		store.Run(ctx, time.Millisecond)
		close(done)
	}()
	deadline := time.After(2 * time.Second)
	for store.Len() != 0 {
		select {
		case <-deadline:
			t.Fatal("sweeper never removed idle session")
		case <-time.After(time.Millisecond):
		}
	}
	cancel()
	<-done
}
