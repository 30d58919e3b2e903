package offline

import (
	"net/url"
	"sync"
)

// Request describes one outgoing request as seen by the worker.
type Request struct {
	Method string
	URL    string
	// Destination is "document" for full-page navigations; empty or other
	// values for subresources.
	Destination string
}

// Path extracts the request path for policy classification. A bare path is
// returned as-is.
func (r Request) Path() string {
	u, err := url.Parse(r.URL)
	if err != nil {
		return r.URL
	}
	return u.Path
}

// Key identifies the exact request inside a cache bucket.
func (r Request) Key() string {
	method := r.Method
	if method == "" {
		method = "GET"
	}
	return method + " " + r.URL
}

// Response is a stored or live response snapshot.
type Response struct {
	Status int
	Header map[string]string
	Body   []byte
}

// Clone returns an independent copy so a stored snapshot cannot alias the
// returned response body.
func (r *Response) Clone() *Response {
	if r == nil {
		return nil
	}
	cp := &Response{Status: r.Status, Body: append([]byte(nil), r.Body...)}
	if r.Header != nil {
		cp.Header = make(map[string]string, len(r.Header))
		for k, v := range r.Header {
			cp.Header[k] = v
		}
	}
	return cp
}

// Bucket is one named cache of request snapshots.
type Bucket interface {
	Match(key string) (*Response, bool)
	Put(key string, resp *Response)
}

// Storage holds named buckets and enumerates them for version pruning.
type Storage interface {
	Open(name string) Bucket
	Keys() []string
	Delete(name string)
}

// Fetcher performs a live network fetch.
type Fetcher func(req Request) (*Response, error)

// memoryStorage is the in-process Storage used by tests and by hosts that
// do not bring their own persistence.
type memoryStorage struct {
	mu      sync.Mutex
	buckets map[string]*memoryBucket
}

// NewMemoryStorage returns an empty in-memory cache storage.
func NewMemoryStorage() Storage {
	return &memoryStorage{buckets: make(map[string]*memoryBucket)}
}

func (s *memoryStorage) Open(name string) Bucket {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.buckets[name]
	if !ok {
		b = &memoryBucket{entries: make(map[string]*Response)}
		s.buckets[name] = b
	}
	return b
}

func (s *memoryStorage) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.buckets))
	for name := range s.buckets {
		keys = append(keys, name)
	}
	return keys
}

func (s *memoryStorage) Delete(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.buckets, name)
}

type memoryBucket struct {
	mu      sync.Mutex
	entries map[string]*Response
}

func (b *memoryBucket) Match(key string) (*Response, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	resp, ok := b.entries[key]
	if !ok {
		return nil, false
	}
	return resp.Clone(), true
}

// Put stores a snapshot; a later write for the same key wins.
func (b *memoryBucket) Put(key string, resp *Response) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries[key] = resp.Clone()
}
