package main

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/radovskyb/watcher"
)

const pollInterval = 200 * time.Millisecond

// rebuilder runs rebuilds one at a time. Requests made while a rebuild is in
// flight collapse into a single queued one.
type rebuilder struct {
	build   func() error
	pending chan struct{}
	logger  *log.Logger
}

func newRebuilder(build func() error, logger *log.Logger) *rebuilder {
	return &rebuilder{
		build:   build,
		pending: make(chan struct{}, 1),
		logger:  logger,
	}
}

// request queues a rebuild unless one is already queued. It never blocks.
func (r *rebuilder) request() {
	select {
	case r.pending <- struct{}{}:
	default:
	}
}

// run serves queued rebuilds until ctx is done. A rebuild in flight when ctx
// ends is finished first.
func (r *rebuilder) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.pending:
			if err := r.build(); err != nil {
				r.logger.Printf("Rebuild failed: %v", err)
			}
		}
	}
}

type watchRoute struct {
	dir string
	rb  *rebuilder
}

// routeFor returns the rebuilders of every collection whose source
// directory contains path.
func routeFor(routes []watchRoute, path string) []*rebuilder {
	var rbs []*rebuilder
	for _, r := range routes {
		if path == r.dir || strings.HasPrefix(path, r.dir+string(os.PathSeparator)) {
			rbs = append(rbs, r.rb)
		}
	}
	return rbs
}

// rerenderOnChange watches the source directory of every collection and
// rebuilds a collection whenever one of its files is added, changed or
// removed. It returns once ctx is done and running rebuilds have finished.
func rerenderOnChange(ctx context.Context, siteConf *SiteConf, collections []*CollectionConf, logger *log.Logger) error {
	w := watcher.New()
	w.SetMaxEvents(1)
	w.IgnoreHiddenFiles(true)
	w.FilterOps(watcher.Create, watcher.Write, watcher.Remove, watcher.Rename, watcher.Move)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	routes := make([]watchRoute, 0, len(collections))
	for _, c := range collections {
		c := c
		rb := newRebuilder(func() error {
			_, err := buildCollection(siteConf, c, logger)
			return err
		}, logger)
		routes = append(routes, watchRoute{dir: filepath.Clean(c.SourceDir), rb: rb})

		wg.Add(1)
		go func() {
			defer wg.Done()
			rb.run(ctx)
		}()

		logger.Println("Watching " + c.SourceDir + " for changes...")
		if err := w.AddRecursive(c.SourceDir); err != nil {
			cancel()
			wg.Wait()
			return err
		}
	}

	// The watcher blocks on sending events, so this loop keeps draining
	// until the watcher reports it is closed.
	go func() {
		for {
			select {
			case event := <-w.Event:
				logger.Printf("File %s: %s", strings.ToLower(event.Op.String()), event.Path)
				for _, rb := range routeFor(routes, filepath.Clean(event.Path)) {
					rb.request()
				}
			case err := <-w.Error:
				logger.Println(err)
			case <-w.Closed:
				return
			}
		}
	}()

	// Close is a no-op until Start is running.
	go func() {
		<-ctx.Done()
		w.Wait()
		w.Close()
	}()

	err := w.Start(pollInterval)
	cancel()
	wg.Wait()
	return err
}
