package meme

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Jinius36/JJalBox-JJalKeyboard/internal/domain"
)

// DocumentSource lists and reads raw template documents.
type DocumentSource interface {
	List(ctx context.Context, exts ...string) ([]string, error)
	Read(ctx context.Context, key string) ([]byte, error)
}

// Store holds the templates loaded at startup. It is never mutated after
// LoadStore returns.
type Store struct {
	byID map[string]*Template
	ids  []string
}

// NewStore builds a Store from already parsed templates, validating each.
func NewStore(templates ...*Template) (*Store, error) {
	s := &Store{byID: make(map[string]*Template, len(templates))}
	for _, tpl := range templates {
		if err := tpl.Validate(); err != nil {
			return nil, err
		}
		if _, dup := s.byID[tpl.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate template id %q", domain.ErrInvalidTemplate, tpl.ID)
		}
		s.byID[tpl.ID] = tpl
		s.ids = append(s.ids, tpl.ID)
	}
	sort.Strings(s.ids)
	return s, nil
}

// LoadStore reads every .json/.yaml/.yml document from src. A document
// without an id takes its file stem.
func LoadStore(ctx context.Context, src DocumentSource) (*Store, error) {
	keys, err := src.List(ctx, ".json", ".yaml", ".yml")
	if err != nil {
		return nil, err
	}
	templates := make([]*Template, 0, len(keys))
	for _, key := range keys {
		data, err := src.Read(ctx, key)
		if err != nil {
			return nil, err
		}
		ext := strings.ToLower(filepath.Ext(key))
		format := "yaml"
		if ext == ".json" {
			format = "json"
		}
		tpl, err := ParseTemplate(data, format)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		if strings.TrimSpace(tpl.ID) == "" {
			tpl.ID = strings.TrimSuffix(filepath.Base(key), filepath.Ext(key))
		}
		templates = append(templates, tpl)
	}
	return NewStore(templates...)
}

// Get returns the template with the given id.
func (s *Store) Get(id string) (*Template, error) {
	tpl, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrTemplateNotFound, id)
	}
	return tpl, nil
}

// List returns template summaries sorted by id.
func (s *Store) List() []Summary {
	out := make([]Summary, 0, len(s.ids))
	for _, id := range s.ids {
		tpl := s.byID[id]
		out = append(out, Summary{ID: tpl.ID, Size: tpl.Size, SlotCount: len(tpl.Slots)})
	}
	return out
}
