package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/repository"
)

type deckRepository struct {
	db *sql.DB
}

// NewDeckRepository creates a new DeckRepository implementation
func NewDeckRepository(db *sql.DB) repository.DeckRepository {
	return &deckRepository{db: db}
}

const deckColumns = `id, name, description, color, sort_order, created_at, updated_at`

func scanDeck(row interface{ Scan(...any) error }) (models.Deck, error) {
	var d models.Deck
	err := row.Scan(&d.ID, &d.Name, &d.Description, &d.Color, &d.SortOrder, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

func (r *deckRepository) Get(ctx context.Context, id int64) (*models.Deck, error) {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")
	log.Debug("getting deck: id=%d", id)

	d, err := scanDeck(r.db.QueryRowContext(ctx, `SELECT `+deckColumns+` FROM decks WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("deck not found: id=%d", id)
		} else {
			log.Error("failed to get deck: %v", err)
		}
		return nil, err
	}
	return &d, nil
}

func (r *deckRepository) List(ctx context.Context) ([]models.Deck, error) {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")

	rows, err := r.db.QueryContext(ctx, `SELECT `+deckColumns+` FROM decks ORDER BY sort_order, id`)
	if err != nil {
		log.Error("failed to list decks: %v", err)
		return nil, err
	}
	defer rows.Close()

	var decks []models.Deck
	for rows.Next() {
		d, err := scanDeck(rows)
		if err != nil {
			log.Error("failed to scan deck row: %v", err)
			return nil, err
		}
		decks = append(decks, d)
	}
	log.Debug("found %d decks", len(decks))
	return decks, rows.Err()
}

func (r *deckRepository) Insert(ctx context.Context, d models.Deck) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")
	log.Debug("inserting deck: name=%s", d.Name)

	res, err := r.db.ExecContext(ctx, `
INSERT INTO decks (name, description, color, sort_order, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
`, d.Name, d.Description, d.Color, d.SortOrder, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		log.Error("failed to insert deck: %v", err)
		return 0, err
	}
	return res.LastInsertId()
}

func (r *deckRepository) Update(ctx context.Context, d models.Deck) error {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")
	log.Debug("updating deck: id=%d", d.ID)

	res, err := r.db.ExecContext(ctx, `
UPDATE decks SET name = ?, description = ?, color = ?, sort_order = ?, updated_at = ?
WHERE id = ?
`, d.Name, d.Description, d.Color, d.SortOrder, d.UpdatedAt, d.ID)
	if err != nil {
		log.Error("failed to update deck: %v", err)
		return err
	}
	return requireAffected(res)
}

// Delete removes the deck; its items and review log go with it through
// ON DELETE CASCADE.
func (r *deckRepository) Delete(ctx context.Context, id int64) error {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")
	log.Info("deleting deck: id=%d", id)

	res, err := r.db.ExecContext(ctx, `DELETE FROM decks WHERE id = ?`, id)
	if err != nil {
		log.Error("failed to delete deck: %v", err)
		return err
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
