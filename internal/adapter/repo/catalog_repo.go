package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Jinius36/JJalBox-JJalKeyboard/internal/domain"
	"github.com/Jinius36/JJalBox-JJalKeyboard/internal/infra"
	"github.com/Jinius36/JJalBox-JJalKeyboard/internal/sqlinline"
)

// ErrDuplicateURL is returned by Insert when the url is already catalogued.
var ErrDuplicateURL = errors.New("catalog: url already registered")

// CatalogRepository reads and writes jjal_metadata through the marker-checked
// SQL runner.
type CatalogRepository struct {
	sql infra.SQLExecutor
}

// NewCatalogRepository constructs a repository over exec.
func NewCatalogRepository(exec infra.SQLExecutor) *CatalogRepository {
	return &CatalogRepository{sql: exec}
}

// EnsureSchema creates the table when it does not exist yet.
func (r *CatalogRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.sql.Exec(ctx, sqlinline.QCreateCatalogTable)
	return err
}

// List returns every entry ordered by id.
func (r *CatalogRepository) List(ctx context.Context) ([]domain.CatalogEntry, error) {
	return r.query(ctx, sqlinline.QListCatalog)
}

// Search returns entries whose tags or text contain keyword, case-insensitively.
func (r *CatalogRepository) Search(ctx context.Context, keyword string) ([]domain.CatalogEntry, error) {
	return r.query(ctx, sqlinline.QSearchCatalog, "%"+escapeLike(keyword)+"%")
}

// Insert stores one entry and returns its id.
func (r *CatalogRepository) Insert(ctx context.Context, entry domain.CatalogEntry) (int64, error) {
	tags := entry.Tags
	if tags == nil {
		tags = []string{}
	}
	rawTags, err := json.Marshal(tags)
	if err != nil {
		return 0, fmt.Errorf("catalog: encode tags: %w", err)
	}
	var id int64
	err = r.sql.QueryRow(ctx, sqlinline.QInsertCatalogEntry, entry.URL, json.RawMessage(rawTags), entry.Text).Scan(&id)
	if infra.IsNoRows(err) {
		return 0, ErrDuplicateURL
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

// ExistingURLs returns the set of catalogued urls.
func (r *CatalogRepository) ExistingURLs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListCatalogURLs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	urls := make(map[string]struct{})
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		urls[u] = struct{}{}
	}
	return urls, rows.Err()
}

func (r *CatalogRepository) query(ctx context.Context, query string, args ...any) ([]domain.CatalogEntry, error) {
	rows, err := r.sql.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []domain.CatalogEntry{}
	for rows.Next() {
		var (
			entry   domain.CatalogEntry
			rawTags []byte
			text    *string
		)
		// Rows registered before the schema default existed may hold NULL text.
		if err := rows.Scan(&entry.ID, &entry.URL, &rawTags, &text); err != nil {
			return nil, err
		}
		if text != nil {
			entry.Text = *text
		}
		if len(rawTags) > 0 {
			if err := json.Unmarshal(rawTags, &entry.Tags); err != nil {
				return nil, fmt.Errorf("catalog: decode tags of %d: %w", entry.ID, err)
			}
		}
		if entry.Tags == nil {
			entry.Tags = []string{}
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
