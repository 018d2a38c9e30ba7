package search

import (
	"fmt"
	"log"
	"time"

	"github.com/blevesearch/bleve"
	_ "github.com/blevesearch/bleve/analysis/analyzer/keyword"
)

// Document is an indexed chat message.
type Document struct {
	MessageID  string    `json:"message_id"`
	SessionID  string    `json:"session_id"`
	UserID     string    `json:"user_id"`
	SenderName string    `json:"sender_name"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// Hit is one search result.
type Hit struct {
	MessageID  string  `json:"message_id"`
	SessionID  string  `json:"session_id"`
	SenderName string  `json:"sender_name"`
	Content    string  `json:"content"`
	Score      float64 `json:"score"`
}

// Index is an in-memory full-text index over chat messages. Messages
// are indexed as they are persisted; the index rebuilds empty on
// restart.
type Index struct {
	idx    bleve.Index
	logger *log.Logger
}

// NewIndex creates the in-memory message index.
func NewIndex() (*Index, error) {
	mapping := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()

	content := bleve.NewTextFieldMapping()
	content.Store = true
	docMapping.AddFieldMappingsAt("content", content)

	sender := bleve.NewTextFieldMapping()
	sender.Store = true
	docMapping.AddFieldMappingsAt("sender_name", sender)

	keyword := bleve.NewTextFieldMapping()
	keyword.Analyzer = "keyword"
	keyword.Store = true
	docMapping.AddFieldMappingsAt("user_id", keyword)
	docMapping.AddFieldMappingsAt("session_id", keyword)

	mapping.DefaultMapping = docMapping

	idx, err := bleve.NewMemOnly(mapping)
	if err != nil {
		return nil, fmt.Errorf("bleve index: %w", err)
	}
	return &Index{
		idx:    idx,
		logger: log.New(log.Writer(), "[SEARCH] ", log.LstdFlags),
	}, nil
}

// Add indexes one message. Failures are logged, not fatal: search is
// best effort and must never block chat persistence.
func (i *Index) Add(doc Document) {
	if err := i.idx.Index(doc.MessageID, doc); err != nil {
		i.logger.Printf("index message %s: %v", doc.MessageID, err)
	}
}

// Search runs a full-text query over one user's messages.
func (i *Index) Search(userID, q string, limit int) ([]Hit, error) {
	if limit <= 0 {
		limit = 20
	}

	match := bleve.NewMatchQuery(q)
	match.SetField("content")
	owner := bleve.NewTermQuery(userID)
	owner.SetField("user_id")
	conj := bleve.NewConjunctionQuery(owner, match)

	req := bleve.NewSearchRequestOptions(conj, limit, 0, false)
	req.Fields = []string{"session_id", "sender_name", "content"}

	res, err := i.idx.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	var out []Hit
	for _, h := range res.Hits {
		hit := Hit{MessageID: h.ID, Score: h.Score}
		if v, ok := h.Fields["session_id"].(string); ok {
			hit.SessionID = v
		}
		if v, ok := h.Fields["sender_name"].(string); ok {
			hit.SenderName = v
		}
		if v, ok := h.Fields["content"].(string); ok {
			hit.Content = v
		}
		out = append(out, hit)
	}
	return out, nil
}

// Close releases the index.
func (i *Index) Close() error {
	return i.idx.Close()
}
