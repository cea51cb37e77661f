package pricing

import (
	"context"
	"database/sql"
	"fmt"
)

// Repository handles pricing tier persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new pricing repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// List returns all tiers in ascending min_questions order
func (r *Repository) List(ctx context.Context) ([]*Tier, error) {
	query := `
		SELECT id, min_questions, max_questions, price_per_survey
		FROM pricing_tiers
		ORDER BY min_questions
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list pricing tiers: %w", err)
	}
	defer rows.Close()

	var tiers []*Tier
	for rows.Next() {
		t := &Tier{}
		if err := rows.Scan(&t.ID, &t.MinQuestions, &t.MaxQuestions, &t.PricePerSurvey); err != nil {
			return nil, fmt.Errorf("failed to scan pricing tier: %w", err)
		}
		tiers = append(tiers, t)
	}

	return tiers, rows.Err()
}

// GetByID retrieves a tier by its ID, or nil when it does not exist
func (r *Repository) GetByID(ctx context.Context, id int64) (*Tier, error) {
	query := `
		SELECT id, min_questions, max_questions, price_per_survey
		FROM pricing_tiers
		WHERE id = $1
	`

	t := &Tier{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.MinQuestions, &t.MaxQuestions, &t.PricePerSurvey,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get pricing tier: %w", err)
	}

	return t, nil
}

// Create inserts a new tier
func (r *Repository) Create(ctx context.Context, t *Tier) (*Tier, error) {
	query := `
		INSERT INTO pricing_tiers (min_questions, max_questions, price_per_survey)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx, query, t.MinQuestions, t.MaxQuestions, t.PricePerSurvey).Scan(&t.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create pricing tier: %w", err)
	}

	return t, nil
}

// Update rewrites an existing tier
func (r *Repository) Update(ctx context.Context, t *Tier) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE pricing_tiers
		SET min_questions = $2, max_questions = $3, price_per_survey = $4
		WHERE id = $1
	`, t.ID, t.MinQuestions, t.MaxQuestions, t.PricePerSurvey)
	if err != nil {
		return fmt.Errorf("failed to update pricing tier: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrTierNotFound
	}
	return nil
}
