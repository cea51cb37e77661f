package dashboard

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sociowork/surveypay/internal/characteristic"
	"github.com/sociowork/surveypay/internal/identity"
	"github.com/sociowork/surveypay/internal/survey"
)

// Service builds aggregated result views for survey creators and
// moderators
type Service struct {
	surveys         *survey.Repository
	characteristics *characteristic.Repository
	summarizer      Summarizer
}

// NewService creates a new dashboard service
func NewService(surveys *survey.Repository, characteristics *characteristic.Repository, summarizer Summarizer) *Service {
	return &Service{
		surveys:         surveys,
		characteristics: characteristics,
		summarizer:      summarizer,
	}
}

// authorize loads the survey and checks the principal may view its results
func (s *Service) authorize(ctx context.Context, principal identity.Principal, surveyID int64) (*survey.Survey, error) {
	sv, err := s.surveys.GetByID(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	if sv == nil {
		return nil, ErrSurveyNotFound
	}
	if sv.CreatorID != principal.UserID && principal.Role != identity.RoleModerator {
		return nil, ErrForbidden
	}
	return sv, nil
}

// Aggregate builds the full dashboard for a survey: per-question stats
// plus characteristic distributions over its completed respondents
func (s *Service) Aggregate(ctx context.Context, principal identity.Principal, surveyID int64) (*Dashboard, error) {
	sv, err := s.authorize(ctx, principal, surveyID)
	if err != nil {
		return nil, err
	}

	questions, err := s.surveys.ListQuestions(ctx, surveyID)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{
		SurveyID:   sv.ID,
		SurveyName: sv.Name,
	}

	for _, sq := range questions {
		answers, err := s.surveys.ListAnswerValues(ctx, sq.ID)
		if err != nil {
			return nil, err
		}
		if stats := aggregateQuestion(ctx, s.summarizer, sq, answers); stats != nil {
			d.Questions = append(d.Questions, *stats)
		}
	}

	completions, err := s.surveys.ListCompleted(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	d.CompletedCount = len(completions)

	values, err := s.characteristics.ListForCompletedRespondents(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	d.Characteristics = aggregateCharacteristics(values)

	return d, nil
}

// Respondents returns the completed participation records for a survey
func (s *Service) Respondents(ctx context.Context, principal identity.Principal, surveyID int64) ([]*survey.Completion, error) {
	if _, err := s.authorize(ctx, principal, surveyID); err != nil {
		return nil, err
	}
	return s.surveys.ListCompleted(ctx, surveyID)
}

// ResultTable is the tabular per-respondent view of a survey's answers,
// one row per completed respondent and one column per question
type ResultTable struct {
	SurveyID   int64      `json:"survey_id"`
	SurveyName string     `json:"survey_name"`
	Headers    []string   `json:"headers"`
	Rows       [][]string `json:"rows"`
}

// BuildResults assembles the result table. When anonymize is set the
// respondent column holds a positional label instead of the email.
func (s *Service) BuildResults(ctx context.Context, principal identity.Principal, surveyID int64, anonymize bool) (*ResultTable, error) {
	sv, err := s.authorize(ctx, principal, surveyID)
	if err != nil {
		return nil, err
	}

	questions, err := s.surveys.ListQuestions(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	completions, err := s.surveys.ListCompleted(ctx, surveyID)
	if err != nil {
		return nil, err
	}

	table := &ResultTable{
		SurveyID:   sv.ID,
		SurveyName: sv.Name,
		Headers:    make([]string, 0, len(questions)+3),
	}
	table.Headers = append(table.Headers, "Respondent", "Score", "Completed At")
	for _, sq := range questions {
		table.Headers = append(table.Headers, sq.Question.Text)
	}

	for i, c := range completions {
		answers, err := s.surveys.AnswersByRespondent(ctx, surveyID, c.RespondentID)
		if err != nil {
			return nil, err
		}

		label := c.RespondentEmail
		if anonymize {
			label = fmt.Sprintf("Respondent %d", i+1)
		}

		score := ""
		if c.Score != nil {
			score = strconv.FormatFloat(*c.Score, 'f', -1, 64)
		}

		row := make([]string, 0, len(table.Headers))
		row = append(row, label, score, c.UpdatedAt.UTC().Format("2006-01-02 15:04:05"))
		for _, sq := range questions {
			row = append(row, answers[sq.ID])
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}
