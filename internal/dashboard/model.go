package dashboard

import (
	"errors"
	"math"
)

// Common errors
var (
	ErrSurveyNotFound = errors.New("survey not found")
	ErrForbidden      = errors.New("operation is not permitted for this user")
)

// DistributionEntry is one answer option with its count and share
type DistributionEntry struct {
	Value   string  `json:"value"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// QuestionStats holds the aggregated view of one survey question. Which
// fields are set depends on the question type: choice questions carry a
// distribution, rating questions carry parsed values and a mean, date
// questions carry the raw values plus a count distribution, and text
// questions carry a summary.
type QuestionStats struct {
	SurveyQuestionID int64               `json:"survey_question_id"`
	Order            int                 `json:"order"`
	Text             string              `json:"text"`
	Type             string              `json:"type"`
	AnswerCount      int                 `json:"answer_count"`
	Distribution     []DistributionEntry `json:"distribution,omitempty"`
	Values           []float64           `json:"values,omitempty"`
	Mean             *float64            `json:"mean,omitempty"`
	RawValues        []string            `json:"raw_values,omitempty"`
	Summary          string              `json:"summary,omitempty"`
}

// CharacteristicStats holds the aggregated view of one respondent
// characteristic across a survey's completed respondents
type CharacteristicStats struct {
	Name         string              `json:"name"`
	ValueType    string              `json:"value_type"`
	Distribution []DistributionEntry `json:"distribution,omitempty"`
	Values       []float64           `json:"values,omitempty"`
}

// Dashboard is the full aggregated view of a survey's results
type Dashboard struct {
	SurveyID        int64                 `json:"survey_id"`
	SurveyName      string                `json:"survey_name"`
	CompletedCount  int                   `json:"completed_count"`
	Questions       []QuestionStats       `json:"questions"`
	Characteristics []CharacteristicStats `json:"characteristics,omitempty"`
}

// distribution counts each distinct value and computes its share of the
// total, rounded to 2 places. Entries keep first-seen order so repeated
// aggregations of the same answers render identically.
func distribution(values []string) []DistributionEntry {
	if len(values) == 0 {
		return nil
	}

	counts := make(map[string]int, len(values))
	var order []string
	for _, v := range values {
		if _, seen := counts[v]; !seen {
			order = append(order, v)
		}
		counts[v]++
	}

	total := float64(len(values))
	entries := make([]DistributionEntry, 0, len(order))
	for _, v := range order {
		entries = append(entries, DistributionEntry{
			Value:   v,
			Count:   counts[v],
			Percent: round2(float64(counts[v]) / total * 100),
		})
	}

	return entries
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func round4(f float64) float64 {
	return math.Round(f*10000) / 10000
}
