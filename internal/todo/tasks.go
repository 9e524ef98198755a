package todo

import (
	"context"
	"net/url"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type taskKind int

const (
	titleTask taskKind = iota
	faviconTask
)

func (k taskKind) String() string {
	if k == titleTask {
		return "title"
	}
	return "favicon"
}

// taskKey identifies a background fetch by its target.
type taskKey struct {
	itemID    uuid.UUID
	linkIndex int
	kind      taskKind
}

// taskSet tracks in-flight fetches so callers can wait for or cancel them.
type taskSet struct {
	mu       sync.Mutex
	wg       sync.WaitGroup
	inflight map[taskKey]int
	ctx      context.Context
	cancel   context.CancelFunc
}

func newTaskSet() *taskSet {
	ctx, cancel := context.WithCancel(context.Background())
	return &taskSet{
		inflight: make(map[taskKey]int),
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (t *taskSet) spawn(key taskKey, fn func(ctx context.Context)) {
	t.mu.Lock()
	t.inflight[key]++
	t.mu.Unlock()

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		defer t.finish(key)
		fn(t.ctx)
	}()
}

func (t *taskSet) finish(key taskKey) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.inflight[key]--; t.inflight[key] <= 0 {
		delete(t.inflight, key)
	}
}

func (t *taskSet) count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, c := range t.inflight {
		n += c
	}
	return n
}

// Pending returns the number of metadata fetches still running.
func (s *Store) Pending() int {
	return s.tasks.count()
}

// Wait blocks until every background fetch has finished.
func (s *Store) Wait() {
	s.tasks.wg.Wait()
}

// Close cancels in-flight fetches and waits for them to return.
func (s *Store) Close() {
	s.tasks.cancel()
	s.tasks.wg.Wait()
}

func (s *Store) startTitleFetch(itemID uuid.UUID, rawURL, placeholder string) {
	if s.fetcher == nil {
		return
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return
	}
	s.tasks.spawn(taskKey{itemID: itemID, kind: titleTask}, func(ctx context.Context) {
		title, ok := s.fetcher.FetchPageTitle(ctx, u)
		s.applyTitle(itemID, rawURL, placeholder, title, ok)
	})
}

func (s *Store) startFaviconFetch(itemID uuid.UUID, linkIndex int, rawURL string) {
	if s.fetcher == nil {
		return
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return
	}
	s.tasks.spawn(taskKey{itemID: itemID, linkIndex: linkIndex, kind: faviconTask}, func(ctx context.Context) {
		data, ok := s.fetcher.FetchFavicon(ctx, u)
		if !ok {
			return
		}
		s.applyFavicon(itemID, linkIndex, rawURL, data)
	})
}

// applyTitle sets the item's title from a fetched page title, unless the
// title was edited away from placeholder meanwhile. The link the title came
// from is marked as fetched either way.
func (s *Store) applyTitle(itemID uuid.UUID, rawURL, placeholder, title string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(itemID)
	if idx < 0 {
		s.log.WithField("item_id", itemID).Debug("Discarding title for removed item")
		return
	}
	item := &s.items[idx]
	changed := false
	if ok && item.Title == placeholder {
		item.Title = title
		changed = true
	}
	if len(item.Links) > 0 && item.Links[0].URL == rawURL {
		if ok {
			item.Links[0].DisplayTitle = title
		}
		item.Links[0].IsTitleFetched = true
		changed = true
	}
	if changed {
		s.saveLocked()
	}
}

// applyFavicon stores favicon bytes on the link, unless the item, its link
// count or the URL at linkIndex changed since the fetch started.
func (s *Store) applyFavicon(itemID uuid.UUID, linkIndex int, rawURL string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.log.WithFields(logrus.Fields{"item_id": itemID, "link_index": linkIndex})
	idx := s.indexOf(itemID)
	if idx < 0 || linkIndex >= len(s.items[idx].Links) || s.items[idx].Links[linkIndex].URL != rawURL {
		log.Debug("Discarding stale favicon")
		return
	}
	s.items[idx].Links[linkIndex].FaviconData = append([]byte(nil), data...)
	s.saveLocked()
}
