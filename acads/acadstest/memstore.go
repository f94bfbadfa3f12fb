// Package acadstest provides in-memory doubles for the acads interfaces.
package acadstest

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/SamuelLeutner/notion-acads/models"
)

// NotFoundError mimics a store 404.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string  { return fmt.Sprintf("object %s not found", e.ID) }
func (e *NotFoundError) NotFound() bool { return true }

// MemStore is a Store kept in memory. Records keep insertion order.
type MemStore struct {
	mu sync.Mutex

	records     map[string]*models.Record
	order       map[string][]string
	collections map[string]*models.Collection
	blocks      map[string][]*models.Block

	// Calls counts invocations per method name.
	Calls map[string]int
	// Fail, when set, is consulted before every call; a non-nil error is
	// returned instead of performing the call. target is the id the call
	// addresses (parent id for creates).
	Fail func(op, target string, payload interface{}) error

	User *models.User
}

func NewMemStore() *MemStore {
	return &MemStore{
		records:     make(map[string]*models.Record),
		order:       make(map[string][]string),
		collections: make(map[string]*models.Collection),
		blocks:      make(map[string][]*models.Block),
		Calls:       make(map[string]int),
		User:        &models.User{Object: "user", ID: uuid.NewString(), Name: "acads", Type: "bot"},
	}
}

func (m *MemStore) enter(op, target string, payload interface{}) error {
	m.Calls[op]++
	if m.Fail != nil {
		return m.Fail(op, target, payload)
	}
	return nil
}

// AddCollection registers an empty collection and returns its id.
func (m *MemStore) AddCollection(title string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.NewString()
	m.collections[id] = &models.Collection{Object: "database", ID: id, Title: models.Text(title), Properties: models.PropertySchema{}}
	return id
}

// Seed inserts a record directly, bypassing Calls and Fail.
func (m *MemStore) Seed(collectionID string, props models.Properties) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insert(collectionID, true, props)
}

// AddBlock appends a child block under parentID.
func (m *MemStore) AddBlock(parentID string, b models.Block) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	b.Object = "block"
	m.blocks[parentID] = append(m.blocks[parentID], &b)
	return b.ID
}

func (m *MemStore) Record(id string) (*models.Record, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	if !ok {
		return nil, false
	}
	cp := *r
	return &cp, true
}

// Records returns the records of a collection in insertion order.
func (m *MemStore) Records(collectionID string) []models.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Record, 0, len(m.order[collectionID]))
	for _, id := range m.order[collectionID] {
		out = append(out, *m.records[id])
	}
	return out
}

func (m *MemStore) Collection(id string) (*models.Collection, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.collections[id]
	return c, ok
}

func (m *MemStore) Block(parentID, id string) (*models.Block, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.blocks[parentID] {
		if b.ID == id {
			cp := *b
			return &cp, true
		}
	}
	return nil, false
}

func (m *MemStore) insert(parentID string, inCollection bool, props models.Properties) string {
	id := uuid.NewString()
	rec := &models.Record{
		Object:     "page",
		ID:         id,
		URL:        "https://www.notion.so/" + id,
		Properties: models.Properties{},
	}
	if inCollection {
		rec.Parent = models.Parent{Type: "database_id", DatabaseID: parentID}
	} else {
		rec.Parent = models.Parent{Type: "page_id", PageID: parentID}
	}
	for k, v := range props {
		rec.Properties[k] = v
	}
	m.records[id] = rec
	m.order[parentID] = append(m.order[parentID], id)
	return id
}

func (m *MemStore) CreateRecord(ctx context.Context, req models.CreateRecordRequest) (*models.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("CreateRecord", req.ParentID, req); err != nil {
		return nil, err
	}
	if req.ParentIsCollection {
		if _, ok := m.collections[req.ParentID]; !ok {
			return nil, &NotFoundError{ID: req.ParentID}
		}
	}
	id := m.insert(req.ParentID, req.ParentIsCollection, req.Properties)
	rec := m.records[id]
	if req.IconEmoji != "" {
		rec.Icon = &models.Emoji{Type: "emoji", Emoji: req.IconEmoji}
	}
	for _, c := range req.Children {
		m.blocks[id] = append(m.blocks[id], &models.Block{
			Object: "block", ID: uuid.NewString(), Type: c.Type,
			Quote: c.Quote, Paragraph: c.Paragraph, Heading2: c.Heading2, Bulleted: c.Bulleted,
		})
	}
	cp := *rec
	return &cp, nil
}

func (m *MemStore) QueryCollection(ctx context.Context, collectionID string, q models.Query) (*models.RecordList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("QueryCollection", collectionID, q); err != nil {
		return nil, err
	}
	if _, ok := m.collections[collectionID]; !ok {
		return nil, &NotFoundError{ID: collectionID}
	}

	var matched []models.Record
	for _, id := range m.order[collectionID] {
		r := m.records[id]
		if matches(r, q.Filter) {
			matched = append(matched, *r)
		}
	}

	start := 0
	if q.Cursor != "" {
		n, err := strconv.Atoi(q.Cursor)
		if err != nil {
			return nil, fmt.Errorf("bad cursor %q", q.Cursor)
		}
		start = n
	}
	size := q.PageSize
	if size <= 0 || size > 100 {
		size = 100
	}
	end := start + size
	if end > len(matched) {
		end = len(matched)
	}
	if start > end {
		start = end
	}

	out := &models.RecordList{Object: "list", Results: matched[start:end]}
	if end < len(matched) {
		next := strconv.Itoa(end)
		out.NextCursor = &next
		out.HasMore = true
	}
	return out, nil
}

func matches(r *models.Record, f *models.Filter) bool {
	if f == nil {
		return true
	}
	v := r.Properties.Text(f.Property)
	switch {
	case f.Title != nil:
		return v == f.Title.Equals
	case f.Select != nil:
		return v == f.Select.Equals
	}
	return true
}

func (m *MemStore) UpdateRecordFields(ctx context.Context, recordID string, fields models.Properties) (*models.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("UpdateRecordFields", recordID, fields); err != nil {
		return nil, err
	}
	r, ok := m.records[recordID]
	if !ok {
		return nil, &NotFoundError{ID: recordID}
	}
	for k, v := range fields {
		r.Properties[k] = v
	}
	cp := *r
	return &cp, nil
}

func (m *MemStore) UpdateCollectionSchema(ctx context.Context, collectionID string, defs models.PropertySchema) (*models.Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("UpdateCollectionSchema", collectionID, defs); err != nil {
		return nil, err
	}
	c, ok := m.collections[collectionID]
	if !ok {
		return nil, &NotFoundError{ID: collectionID}
	}
	for k, v := range defs {
		c.Properties[k] = v
	}
	cp := *c
	return &cp, nil
}

func (m *MemStore) CreateCollection(ctx context.Context, parentPageID, title string, defs models.PropertySchema) (*models.Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("CreateCollection", parentPageID, defs); err != nil {
		return nil, err
	}
	if _, ok := m.records[parentPageID]; !ok {
		return nil, &NotFoundError{ID: parentPageID}
	}
	id := uuid.NewString()
	c := &models.Collection{
		Object:     "database",
		ID:         id,
		Title:      models.Text(title),
		Parent:     models.Parent{Type: "page_id", PageID: parentPageID},
		Properties: models.PropertySchema{},
	}
	for k, v := range defs {
		c.Properties[k] = v
	}
	m.collections[id] = c
	m.blocks[parentPageID] = append(m.blocks[parentPageID], &models.Block{
		Object: "block", ID: id, Type: models.BlockChildDatabase, ChildDatabase: &models.ChildTitle{Title: title},
	})
	cp := *c
	return &cp, nil
}

func (m *MemStore) ListChildRecords(ctx context.Context, parentID string) ([]models.Block, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("ListChildRecords", parentID, nil); err != nil {
		return nil, err
	}
	out := make([]models.Block, 0, len(m.blocks[parentID]))
	for _, b := range m.blocks[parentID] {
		out = append(out, *b)
	}
	return out, nil
}

func (m *MemStore) UpdateBlockContent(ctx context.Context, blockID string, content models.BlockContent) (*models.Block, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("UpdateBlockContent", blockID, content); err != nil {
		return nil, err
	}
	for _, list := range m.blocks {
		for _, b := range list {
			if b.ID != blockID {
				continue
			}
			switch {
			case content.Quote != nil && b.Type == models.BlockQuote:
				b.Quote = content.Quote
			case content.Paragraph != nil && b.Type == models.BlockParagraph:
				b.Paragraph = content.Paragraph
			default:
				return nil, fmt.Errorf("block %s is a %s", blockID, b.Type)
			}
			cp := *b
			return &cp, nil
		}
	}
	return nil, &NotFoundError{ID: blockID}
}

func (m *MemStore) WhoAmI(ctx context.Context) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("WhoAmI", "", nil); err != nil {
		return nil, err
	}
	return m.User, nil
}

// CallCount is a locked read of Calls[op].
func (m *MemStore) CallCount(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls[op]
}

// Ops returns the names of every method called at least once, sorted.
func (m *MemStore) Ops() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ops := make([]string, 0, len(m.Calls))
	for op := range m.Calls {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	return ops
}
