package survey

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
)

// Repository is the read-side store over surveys, questions, answers and
// completion records. Survey CRUD itself lives in a collaborating service;
// the only write this core performs is persisting the resolved cost.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new survey repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// GetByID retrieves a survey by its ID, or nil when it does not exist
func (r *Repository) GetByID(ctx context.Context, id int64) (*Survey, error) {
	query := `
		SELECT id, name, creator_id, max_participants, cost, status, date_finished
		FROM surveys
		WHERE id = $1
	`

	s := &Survey{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&s.ID,
		&s.Name,
		&s.CreatorID,
		&s.MaxParticipants,
		&s.Cost,
		&s.Status,
		&s.DateFinished,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get survey: %w", err)
	}

	return s, nil
}

// UpdateCost persists the resolved price-per-response onto the survey
func (r *Repository) UpdateCost(ctx context.Context, id int64, cost decimal.Decimal) error {
	res, err := r.db.ExecContext(ctx, `UPDATE surveys SET cost = $2 WHERE id = $1`, id, cost)
	if err != nil {
		return fmt.Errorf("failed to update survey cost: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountQuestions returns the number of questions linked to a survey
func (r *Repository) CountQuestions(ctx context.Context, surveyID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM survey_questions WHERE survey_id = $1`, surveyID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count survey questions: %w", err)
	}
	return count, nil
}

// ListQuestions returns a survey's questions in display order
func (r *Repository) ListQuestions(ctx context.Context, surveyID int64) ([]*SurveyQuestion, error) {
	query := `
		SELECT sq.id, sq.survey_id, sq.question_order, q.id, q.text, q.type
		FROM survey_questions sq
		JOIN questions q ON sq.question_id = q.id
		WHERE sq.survey_id = $1
		ORDER BY sq.question_order
	`

	rows, err := r.db.QueryContext(ctx, query, surveyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list survey questions: %w", err)
	}
	defer rows.Close()

	var questions []*SurveyQuestion
	for rows.Next() {
		sq := &SurveyQuestion{}
		if err := rows.Scan(
			&sq.ID,
			&sq.SurveyID,
			&sq.Order,
			&sq.Question.ID,
			&sq.Question.Text,
			&sq.Question.Type,
		); err != nil {
			return nil, fmt.Errorf("failed to scan survey question: %w", err)
		}
		questions = append(questions, sq)
	}

	return questions, rows.Err()
}

// ListAnswerValues returns the literal answer texts recorded for one linked
// question, in submission order
func (r *Repository) ListAnswerValues(ctx context.Context, surveyQuestionID int64) ([]string, error) {
	query := `
		SELECT COALESCE(text_answer, '')
		FROM respondent_answers
		WHERE survey_question_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, surveyQuestionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list answers: %w", err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan answer: %w", err)
		}
		values = append(values, v)
	}

	return values, rows.Err()
}

// GetCompletion returns a respondent's participation record for a survey,
// or nil when the respondent never joined it
func (r *Repository) GetCompletion(ctx context.Context, surveyID, respondentID int64) (*Completion, error) {
	query := `
		SELECT survey_id, respondent_id, status, score, updated_at
		FROM respondent_survey_status
		WHERE survey_id = $1 AND respondent_id = $2
	`

	c := &Completion{}
	err := r.db.QueryRowContext(ctx, query, surveyID, respondentID).Scan(
		&c.SurveyID,
		&c.RespondentID,
		&c.Status,
		&c.Score,
		&c.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get completion status: %w", err)
	}

	return c, nil
}

// ListCompleted returns every completed participation record for a survey,
// with the respondent's email joined in
func (r *Repository) ListCompleted(ctx context.Context, surveyID int64) ([]*Completion, error) {
	query := `
		SELECT rs.survey_id, rs.respondent_id, rs.status, rs.score, rs.updated_at, u.email
		FROM respondent_survey_status rs
		JOIN users u ON rs.respondent_id = u.id
		WHERE rs.survey_id = $1 AND rs.status = 'completed'
		ORDER BY rs.updated_at
	`

	rows, err := r.db.QueryContext(ctx, query, surveyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list completed respondents: %w", err)
	}
	defer rows.Close()

	var completions []*Completion
	for rows.Next() {
		c := &Completion{}
		if err := rows.Scan(
			&c.SurveyID,
			&c.RespondentID,
			&c.Status,
			&c.Score,
			&c.UpdatedAt,
			&c.RespondentEmail,
		); err != nil {
			return nil, fmt.Errorf("failed to scan completion: %w", err)
		}
		completions = append(completions, c)
	}

	return completions, rows.Err()
}

// AnswersByRespondent returns one respondent's answers for a survey keyed
// by survey question ID
func (r *Repository) AnswersByRespondent(ctx context.Context, surveyID, respondentID int64) (map[int64]string, error) {
	query := `
		SELECT ra.survey_question_id, COALESCE(ra.text_answer, '')
		FROM respondent_answers ra
		JOIN survey_questions sq ON ra.survey_question_id = sq.id
		WHERE sq.survey_id = $1 AND ra.respondent_id = $2
	`

	rows, err := r.db.QueryContext(ctx, query, surveyID, respondentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list respondent answers: %w", err)
	}
	defer rows.Close()

	answers := make(map[int64]string)
	for rows.Next() {
		var sqID int64
		var text string
		if err := rows.Scan(&sqID, &text); err != nil {
			return nil, fmt.Errorf("failed to scan respondent answer: %w", err)
		}
		answers[sqID] = text
	}

	return answers, rows.Err()
}
