package characteristic

import (
	"context"
	"database/sql"
	"fmt"
)

// Repository reads respondent characteristic values from the accounts store
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new characteristic repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// ListForCompletedRespondents returns every characteristic value stored for
// respondents who completed the given survey
func (r *Repository) ListForCompletedRespondents(ctx context.Context, surveyID int64) ([]*Value, error) {
	query := `
		SELECT rc.respondent_id, c.name, c.value_type, cv.value_text
		FROM respondent_characteristics rc
		JOIN characteristic_values cv ON rc.characteristic_value_id = cv.id
		JOIN characteristics c ON cv.characteristic_id = c.id
		JOIN respondent_survey_status rs ON rs.respondent_id = rc.respondent_id
		WHERE rs.survey_id = $1 AND rs.status = 'completed'
		ORDER BY c.name
	`

	rows, err := r.db.QueryContext(ctx, query, surveyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list respondent characteristics: %w", err)
	}
	defer rows.Close()

	var values []*Value
	for rows.Next() {
		v := &Value{}
		if err := rows.Scan(&v.RespondentID, &v.Name, &v.ValueType, &v.Value); err != nil {
			return nil, fmt.Errorf("failed to scan characteristic value: %w", err)
		}
		values = append(values, v)
	}

	return values, rows.Err()
}
