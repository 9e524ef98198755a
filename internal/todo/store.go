// Package todo owns the item list. All mutations are serialized; metadata
// fetches run as tracked background tasks whose results re-enter the store
// through the same lock and are dropped when their target has changed.
package todo

import (
	"context"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"jetgrind/internal/domain"
	"jetgrind/internal/marker"
	"jetgrind/internal/registry"
	"jetgrind/internal/scraper"
	"jetgrind/internal/splitter"
	"jetgrind/internal/storage"
	"jetgrind/internal/urldetect"
)

// Store holds the to-do items, most recent first.
type Store struct {
	mu    sync.Mutex
	items []domain.Item

	repo    storage.ListRepository
	fetcher scraper.Fetcher
	reg     *registry.Registry
	log     logrus.FieldLogger

	saveTimeout time.Duration
	tasks       *taskSet
}

// Option customizes a Store.
type Option func(*Store)

// WithSaveTimeout bounds each persistence call.
func WithSaveTimeout(d time.Duration) Option {
	return func(s *Store) { s.saveTimeout = d }
}

// NewStore creates an empty store. Call Load to read persisted items.
func NewStore(repo storage.ListRepository, fetcher scraper.Fetcher, reg *registry.Registry, logger logrus.FieldLogger, opts ...Option) *Store {
	s := &Store{
		items:       []domain.Item{},
		repo:        repo,
		fetcher:     fetcher,
		reg:         reg,
		log:         logger.WithField("component", "todo_store"),
		saveTimeout: 10 * time.Second,
		tasks:       newTaskSet(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the persisted items. The first Load in a process also rewrites
// literal URLs into markers and saves the list if anything changed.
func (s *Store) Load(ctx context.Context) error {
	items, err := s.repo.LoadAll(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = items

	if s.reg.MarkMigrated() {
		if migrateItems(s.items) {
			s.log.Info("Migrated raw URLs to link markers")
			return s.repo.SaveAll(ctx, domain.CloneItems(s.items))
		}
	}
	return nil
}

// migrateItems upgrades every title and description in place and reports
// whether anything changed.
func migrateItems(items []domain.Item) bool {
	changed := false
	for i := range items {
		item := &items[i]
		title, links := marker.MigrateRawURLs(item.Title, item.Links)
		if title != item.Title {
			item.Title = title
			item.Links = links
			changed = true
		}
		if item.Description == "" {
			continue
		}
		desc, links := marker.MigrateRawURLs(item.Description, item.Links)
		if desc != item.Description {
			item.Description = desc
			item.Links = links
			changed = true
		}
	}
	return changed
}

// Items returns a snapshot of all items.
func (s *Store) Items() []domain.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.CloneItems(s.items)
}

// Item returns a snapshot of the item with id.
func (s *Store) Item(id uuid.UUID) (domain.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return domain.Item{}, false
	}
	return s.items[idx].Clone(), true
}

// Add splits input into a new item at the front of the list. Empty input
// is ignored. Metadata for the new links is fetched in the background.
func (s *Store) Add(input string) (domain.Item, bool) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return domain.Item{}, false
	}

	res := splitter.Split(trimmed)
	item := domain.NewItem(res.Title, res.Description, res.Links)
	single := urldetect.IsSingleURL(trimmed)

	s.mu.Lock()
	s.items = append([]domain.Item{item}, s.items...)
	s.saveLocked()
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{
		"item_id":    item.ID,
		"link_count": len(item.Links),
	}).Debug("Item added")

	if single && len(item.Links) > 0 {
		s.startTitleFetch(item.ID, item.Links[0].URL, item.Title)
	}
	for i, link := range item.Links {
		s.startFaviconFetch(item.ID, i, link.URL)
	}
	return item.Clone(), true
}

// Toggle flips the completion state of the item with id.
func (s *Store) Toggle(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return false
	}
	s.items[idx].IsCompleted = !s.items[idx].IsCompleted
	s.saveLocked()
	return true
}

// Delete removes the item with id.
func (s *Store) Delete(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return false
	}
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	s.saveLocked()
	return true
}

// UpdateTitle replaces the title only. The link table is left alone.
func (s *Store) UpdateTitle(id uuid.UUID, title string) bool {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return false
	}
	s.items[idx].Title = trimmed
	s.saveLocked()
	return true
}

// UpdateTitleAndDescription replaces title and description and rebuilds
// the link table from the new text.
func (s *Store) UpdateTitleAndDescription(id uuid.UUID, title, description string) bool {
	trimmedTitle := strings.TrimSpace(title)
	if trimmedTitle == "" {
		return false
	}
	trimmedDesc := strings.TrimSpace(description)

	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	item := &s.items[idx]
	item.Title = trimmedTitle
	item.Description = trimmedDesc

	synced, fresh := syncLinks(item.Links, trimmedTitle+" "+trimmedDesc)
	item.Links = synced
	s.saveLocked()
	s.mu.Unlock()

	for _, i := range fresh {
		s.startFaviconFetch(id, i, synced[i].URL)
	}
	return true
}

// UpdateTitleDescriptionAndLinks replaces title, description and the link
// table as given. Supplied links are kept even when no marker references
// them. Favicons are fetched for links that have none cached.
func (s *Store) UpdateTitleDescriptionAndLinks(id uuid.UUID, title, description string, links []domain.Link) bool {
	trimmedTitle := strings.TrimSpace(title)
	if trimmedTitle == "" {
		return false
	}

	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	item := &s.items[idx]
	item.Title = trimmedTitle
	item.Description = strings.TrimSpace(description)
	item.Links = domain.CloneLinks(links)
	s.saveLocked()
	pending := domain.CloneLinks(item.Links)
	s.mu.Unlock()

	for i, link := range pending {
		if !link.HasFavicon() {
			s.startFaviconFetch(id, i, link.URL)
		}
	}
	return true
}

// syncLinks rebuilds a link table from text. Literal URLs and markers for
// known links both count as occurrences; a URL already tracked keeps its
// link. It returns the new table and the indexes of newly minted links.
func syncLinks(current []domain.Link, text string) ([]domain.Link, []int) {
	byURL := make(map[string]domain.Link, len(current))
	for _, l := range current {
		if _, dup := byURL[l.URL]; !dup {
			byURL[l.URL] = l
		}
	}

	type occurrence struct {
		start int
		url   string
		u     *url.URL
	}
	var occs []occurrence
	for _, m := range urldetect.ExtractMatches(text) {
		occs = append(occs, occurrence{start: m.Start, url: m.URL.String(), u: m.URL})
	}
	for _, tok := range marker.FindTokens(text) {
		if l, ok := domain.FindLink(current, tok.ID); ok {
			occs = append(occs, occurrence{start: tok.Start, url: l.URL})
		}
	}
	sort.Slice(occs, func(i, j int) bool { return occs[i].start < occs[j].start })

	synced := []domain.Link{}
	var fresh []int
	seen := make(map[string]bool)
	for _, o := range occs {
		if seen[o.url] {
			continue
		}
		seen[o.url] = true
		if existing, ok := byURL[o.url]; ok {
			synced = append(synced, existing)
			continue
		}
		synced = append(synced, domain.NewLink(o.u))
		fresh = append(fresh, len(synced)-1)
	}
	return synced, fresh
}

func (s *Store) indexOf(id uuid.UUID) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

// saveLocked persists the current list. Failures are logged; the in-memory
// list stays authoritative.
func (s *Store) saveLocked() {
	ctx, cancel := context.WithTimeout(context.Background(), s.saveTimeout)
	defer cancel()
	if err := s.repo.SaveAll(ctx, domain.CloneItems(s.items)); err != nil {
		s.log.WithError(err).Error("Failed to persist items")
	}
}
