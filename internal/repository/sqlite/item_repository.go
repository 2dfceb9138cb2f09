package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/repository"
)

type itemRepository struct {
	db *sql.DB
}

// NewItemRepository creates a new ItemRepository implementation
func NewItemRepository(db *sql.DB) repository.ItemRepository {
	return &itemRepository{db: db}
}

var itemColumns = []string{
	"id", "deck_id", "front", "back", "tags", "hint", "favorite",
	"repetitions", "ease_factor", "interval_days", "next_review_date", "status",
	"created_at", "updated_at",
}

func scanItem(row interface{ Scan(...any) error }) (models.Item, error) {
	var (
		it   models.Item
		tags string
	)
	err := row.Scan(&it.ID, &it.DeckID, &it.Front, &it.Back, &tags, &it.Hint, &it.Favorite,
		&it.Repetitions, &it.EaseFactor, &it.Interval, &it.NextReviewDate, &it.Status,
		&it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return it, err
	}
	it.Tags, err = decodeTags(tags)
	return it, err
}

func (r *itemRepository) Get(ctx context.Context, id int64) (*models.Item, error) {
	log := logger.FromContext(ctx).WithPrefix("item_repo")
	log.Debug("getting item: id=%d", id)

	query, args, err := sqlBuilder.Select(itemColumns...).From("items").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	it, err := scanItem(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("item not found: id=%d", id)
		} else {
			log.Error("failed to get item: %v", err)
		}
		return nil, err
	}
	return &it, nil
}

func applyItemFilter(q squirrel.SelectBuilder, f models.ItemFilter) squirrel.SelectBuilder {
	if f.DeckID != 0 {
		q = q.Where(squirrel.Eq{"deck_id": f.DeckID})
	}
	if f.Status != "" {
		q = q.Where(squirrel.Eq{"status": f.Status})
	}
	if f.Favorite != nil {
		q = q.Where(squirrel.Eq{"favorite": *f.Favorite})
	}
	if f.Tag != "" {
		q = q.Where("EXISTS (SELECT 1 FROM json_each(items.tags) WHERE json_each.value = ?)", f.Tag)
	}
	return q
}

// List returns matching items in creation order. A zero Limit returns all rows.
func (r *itemRepository) List(ctx context.Context, filter models.ItemFilter) ([]models.Item, error) {
	log := logger.FromContext(ctx).WithPrefix("item_repo")
	log.Debug("listing items: deck_id=%d, status=%s, tag=%s", filter.DeckID, filter.Status, filter.Tag)

	q := applyItemFilter(sqlBuilder.Select(itemColumns...).From("items"), filter).OrderBy("id ASC")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	query, args, err := q.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list items: %v", err)
		return nil, err
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			log.Error("failed to scan item row: %v", err)
			return nil, err
		}
		items = append(items, it)
	}
	log.Debug("found %d items", len(items))
	return items, rows.Err()
}

func (r *itemRepository) Count(ctx context.Context, filter models.ItemFilter) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("item_repo")

	query, args, err := applyItemFilter(sqlBuilder.Select("COUNT(*)").From("items"), filter).ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return 0, err
	}

	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		log.Error("failed to count items: %v", err)
		return 0, err
	}
	return n, nil
}

func itemValues(it models.Item) ([]any, error) {
	tags, err := tagList(it.Tags).encode()
	if err != nil {
		return nil, err
	}
	return []any{
		it.DeckID, it.Front, it.Back, tags, it.Hint, it.Favorite,
		it.Repetitions, it.EaseFactor, it.Interval, it.NextReviewDate, it.Status,
		it.CreatedAt, it.UpdatedAt,
	}, nil
}

func insertItem(ctx context.Context, exec execer, it models.Item) (int64, error) {
	values, err := itemValues(it)
	if err != nil {
		return 0, err
	}
	query, args, err := sqlBuilder.Insert("items").Columns(itemColumns[1:]...).Values(values...).ToSql()
	if err != nil {
		return 0, err
	}
	res, err := exec.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *itemRepository) Insert(ctx context.Context, it models.Item) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("item_repo")
	log.Debug("inserting item: deck_id=%d", it.DeckID)

	id, err := insertItem(ctx, r.db, it)
	if err != nil {
		log.Error("failed to insert item: %v", err)
		return 0, err
	}
	log.Debug("item inserted: id=%d", id)
	return id, nil
}

// InsertBatch inserts all items in one transaction; either every item is
// stored or none is.
func (r *itemRepository) InsertBatch(ctx context.Context, items []models.Item) ([]int64, error) {
	log := logger.FromContext(ctx).WithPrefix("item_repo")
	log.Debug("batch inserting %d items", len(items))

	if len(items) == 0 {
		return nil, nil
	}

	ids := make([]int64, 0, len(items))
	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		for _, it := range items {
			id, err := insertItem(ctx, tx, it)
			if err != nil {
				log.Error("failed to insert item front=%q: %v", it.Front, err)
				return err
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Debug("batch insert completed, %d items inserted", len(ids))
	return ids, nil
}

func updateItem(ctx context.Context, exec execer, it models.Item) error {
	tags, err := tagList(it.Tags).encode()
	if err != nil {
		return err
	}
	query, args, err := sqlBuilder.Update("items").SetMap(map[string]any{
		"deck_id":          it.DeckID,
		"front":            it.Front,
		"back":             it.Back,
		"tags":             tags,
		"hint":             it.Hint,
		"favorite":         it.Favorite,
		"repetitions":      it.Repetitions,
		"ease_factor":      it.EaseFactor,
		"interval_days":    it.Interval,
		"next_review_date": it.NextReviewDate,
		"status":           it.Status,
		"updated_at":       it.UpdatedAt,
	}).Where(squirrel.Eq{"id": it.ID}).ToSql()
	if err != nil {
		return err
	}

	res, err := exec.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *itemRepository) Update(ctx context.Context, it models.Item) error {
	log := logger.FromContext(ctx).WithPrefix("item_repo")
	log.Debug("updating item: id=%d, status=%s, interval=%d, ease=%.2f", it.ID, it.Status, it.Interval, it.EaseFactor)

	if err := updateItem(ctx, r.db, it); err != nil {
		log.Error("failed to update item: %v", err)
		return err
	}
	return nil
}

func (r *itemRepository) Delete(ctx context.Context, id int64) error {
	log := logger.FromContext(ctx).WithPrefix("item_repo")
	log.Info("deleting item: id=%d", id)

	res, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		log.Error("failed to delete item: %v", err)
		return err
	}
	return requireAffected(res)
}
