package search

import (
	"testing"
	"time"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := NewIndex()
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}
	t.Cleanup(func() { idx.Close() })
	return idx
}

func TestSearchFindsOwnMessages(t *testing.T) {
	idx := newTestIndex(t)
	now := time.Now()
	idx.Add(Document{MessageID: "m1", SessionID: "s1", UserID: "u1", SenderName: "Wanderer", Content: "tell me about freelance pricing", CreatedAt: now})
	idx.Add(Document{MessageID: "m2", SessionID: "s1", UserID: "u1", SenderName: "Gandalfius", Content: "your rate is your floor", CreatedAt: now})

	hits, err := idx.Search("u1", "pricing", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 || hits[0].MessageID != "m1" {
		t.Fatalf("hits = %+v", hits)
	}
	if hits[0].SessionID != "s1" {
		t.Errorf("session not stored on hit: %+v", hits[0])
	}
}

func TestSearchScopedToUser(t *testing.T) {
	idx := newTestIndex(t)
	now := time.Now()
	idx.Add(Document{MessageID: "m1", SessionID: "s1", UserID: "u1", SenderName: "Wanderer", Content: "research acme corp", CreatedAt: now})
	idx.Add(Document{MessageID: "m2", SessionID: "s2", UserID: "u2", SenderName: "Visitor", Content: "research beta corp", CreatedAt: now})

	hits, err := idx.Search("u1", "research", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	for _, h := range hits {
		if h.MessageID == "m2" {
			t.Fatalf("leaked another user's message: %+v", hits)
		}
	}
	if len(hits) != 1 {
		t.Fatalf("hits = %+v", hits)
	}
}

func TestSearchNoResults(t *testing.T) {
	idx := newTestIndex(t)
	hits, err := idx.Search("u1", "anything", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("expected no hits, got %+v", hits)
	}
}
