package main

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRebuilderCoalescesRequests(t *testing.T) {
	var calls, inFlight, maxInFlight atomic.Int32
	started := make(chan struct{}, 10)
	release := make(chan struct{})

	rb := newRebuilder(func() error {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		if n > maxInFlight.Load() {
			maxInFlight.Store(n)
		}
		calls.Add(1)
		started <- struct{}{}
		<-release
		return nil
	}, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		rb.run(ctx)
		close(done)
	}()

	rb.request()
	<-started

	// Five changes while the first rebuild is running queue a single rebuild.
	for i := 0; i < 5; i++ {
		rb.request()
	}
	close(release)
	<-started

	assert.Never(t, func() bool { return calls.Load() > 2 }, 300*time.Millisecond, 10*time.Millisecond)
	assert.EqualValues(t, 2, calls.Load())
	assert.EqualValues(t, 1, maxInFlight.Load())

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("rebuilder did not stop")
	}
}

func TestRebuilderRequestNeverBlocks(t *testing.T) {
	rb := newRebuilder(func() error { return nil }, quietLogger())
	for i := 0; i < 3; i++ {
		rb.request()
	}
	assert.Len(t, rb.pending, 1)
}

func TestRouteFor(t *testing.T) {
	root := t.TempDir()
	a := newRebuilder(nil, quietLogger())
	b := newRebuilder(nil, quietLogger())
	routes := []watchRoute{
		{dir: filepath.Join(root, "src"), rb: a},
		{dir: filepath.Join(root, "src2"), rb: b},
	}

	assert.Equal(t, []*rebuilder{a}, routeFor(routes, filepath.Join(root, "src", "post.md")))
	assert.Equal(t, []*rebuilder{a}, routeFor(routes, filepath.Join(root, "src", "images", "x.png")))
	assert.Equal(t, []*rebuilder{a}, routeFor(routes, filepath.Join(root, "src")))
	assert.Equal(t, []*rebuilder{b}, routeFor(routes, filepath.Join(root, "src2", "post.md")))
	assert.Empty(t, routeFor(routes, filepath.Join(root, "other", "post.md")))
}

func TestRerenderOnChange(t *testing.T) {
	site, c := newTestCollection(t, SkipInvalid)
	writeThreePosts(t, c)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errc := make(chan error, 1)
	go func() { errc <- rerenderOnChange(ctx, site, []*CollectionConf{c}, quietLogger()) }()

	src := filepath.Join(c.SourceDir, "4-d.md")
	page := filepath.Join(c.OutDir, "d.html")
	require.Eventually(t, func() bool {
		// Rewritten on every poll until the watcher has picked it up.
		_ = os.WriteFile(src, []byte(postSource("d", "Post D", "2024-04-01", "FSE", "Fourth post.")), 0o644)
		return fileExists(page)
	}, 10*time.Second, 250*time.Millisecond)

	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch loop did not stop")
	}

	assert.Contains(t, readFile(t, filepath.Join(c.OutDir, "c.html")), `href="d.html" class="devblog-nav-link next"`)
}
