package web

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	v1 "github.com/wrale/wrale-trips/api/types/v1"
)

// Trip list load results reported to the observer
const (
	loadHit    = "hit"
	loadMiss   = "miss"
	loadShared = "shared"
)

// ListFilter selects which trips the list page shows. At most one selector
// applies, in the order Query, Style, Country, paging; an empty filter lists
// every trip.
type ListFilter struct {
	Query   string
	Style   string
	Country string
	// Paged is set when any of page, size or sort was given
	Paged bool
	Page  v1.PageRequest
}

// parseListFilter reads a ListFilter from the list page query string
func parseListFilter(q url.Values) (ListFilter, error) {
	f := ListFilter{
		Query:   strings.TrimSpace(q.Get("q")),
		Style:   strings.TrimSpace(q.Get("style")),
		Country: strings.TrimSpace(q.Get("country")),
	}

	for _, name := range []string{"page", "size"} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return ListFilter{}, ErrInvalidRequest("invalid " + name + ": " + raw)
		}
		f.Paged = true
		if name == "page" {
			f.Page.Page = n
		} else {
			f.Page.Size = n
		}
	}
	if sort := q["sort"]; len(sort) > 0 {
		f.Paged = true
		f.Page.Sort = sort
	}
	return f, nil
}

// key identifies the backend call the filter maps to
func (f ListFilter) key() string {
	switch {
	case f.Query != "":
		return "search:" + f.Query
	case f.Style != "":
		return "style:" + f.Style
	case f.Country != "":
		return "country:" + f.Country
	case f.Paged:
		return "paged:" + strconv.Itoa(f.Page.Page) + ":" + strconv.Itoa(f.Page.Size) + ":" + strings.Join(f.Page.Sort, "|")
	default:
		return "all"
	}
}

// tripPage is a loaded trip list. Paging is nil unless the paged endpoint
// was used. Loaded pages are shared between requests and must not be modified.
type tripPage struct {
	Trips  []v1.Trip
	Paging *v1.TripList
}

type cacheEntry struct {
	page    *tripPage
	expires time.Time
}

// listLoader loads trip lists, merging concurrent identical loads into one
// backend call and optionally reusing results for a TTL
type listLoader struct {
	trips   TripService
	ttl     time.Duration
	group   singleflight.Group
	observe func(result string)
	now     func() time.Time

	mu    sync.Mutex
	cache map[string]cacheEntry
}

func newListLoader(trips TripService) *listLoader {
	return &listLoader{
		trips: trips,
		now:   time.Now,
		cache: make(map[string]cacheEntry),
	}
}

// Load returns the trips selected by f
func (l *listLoader) Load(ctx context.Context, f ListFilter) (*tripPage, error) {
	key := f.key()
	if page, ok := l.cached(key); ok {
		l.report(loadHit)
		return page, nil
	}

	ch := l.group.DoChan(key, func() (interface{}, error) {
		// A caller going away must not fail the load for the others
		// waiting on it.
		page, err := l.fetch(context.WithoutCancel(ctx), f)
		if err != nil {
			return nil, err
		}
		l.store(key, page)
		return page, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Shared {
			l.report(loadShared)
		} else {
			l.report(loadMiss)
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*tripPage), nil
	}
}

// Invalidate drops every cached list
func (l *listLoader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[string]cacheEntry)
}

func (l *listLoader) fetch(ctx context.Context, f ListFilter) (*tripPage, error) {
	var (
		trips []v1.Trip
		err   error
	)
	switch {
	case f.Query != "":
		trips, err = l.trips.SearchTrips(ctx, f.Query)
	case f.Style != "":
		trips, err = l.trips.ListTripsByTravelStyle(ctx, f.Style)
	case f.Country != "":
		trips, err = l.trips.ListTripsByCountry(ctx, f.Country)
	case f.Paged:
		list, err := l.trips.ListTripsPaged(ctx, f.Page)
		if err != nil {
			return nil, err
		}
		paging := *list
		paging.Items = nil
		return &tripPage{Trips: list.Items, Paging: &paging}, nil
	default:
		trips, err = l.trips.ListTrips(ctx)
	}
	if err != nil {
		return nil, err
	}
	return &tripPage{Trips: trips}, nil
}

func (l *listLoader) cached(key string) (*tripPage, bool) {
	if l.ttl <= 0 {
		return nil, false
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.cache[key]
	if !ok {
		return nil, false
	}
	if !l.now().Before(entry.expires) {
		delete(l.cache, key)
		return nil, false
	}
	return entry.page, true
}

func (l *listLoader) store(key string, page *tripPage) {
	if l.ttl <= 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache[key] = cacheEntry{page: page, expires: l.now().Add(l.ttl)}
}

func (l *listLoader) report(result string) {
	if l.observe != nil {
		l.observe(result)
	}
}
