package dashboard

import (
	"context"
	"strconv"
	"strings"

	"github.com/sociowork/surveypay/internal/characteristic"
	"github.com/sociowork/surveypay/internal/survey"
)

// aggregateQuestion builds the stats for one question from its raw answer
// values. Returns nil when there are no answers; unanswered questions are
// omitted from the dashboard rather than rendered empty.
func aggregateQuestion(ctx context.Context, summarizer Summarizer, sq *survey.SurveyQuestion, answers []string) *QuestionStats {
	if len(answers) == 0 {
		return nil
	}

	stats := &QuestionStats{
		SurveyQuestionID: sq.ID,
		Order:            sq.Order,
		Text:             sq.Question.Text,
		Type:             string(sq.Question.Type),
		AnswerCount:      len(answers),
	}

	switch sq.Question.Type {
	case survey.QuestionTypeSingleChoice, survey.QuestionTypeMultiChoice, survey.QuestionTypeDropdown:
		stats.Distribution = distribution(answers)

	case survey.QuestionTypeRating:
		stats.Values = parseNumeric(answers)
		stats.Mean = mean(stats.Values)

	case survey.QuestionTypeDateTime:
		stats.RawValues = answers
		stats.Distribution = distribution(answers)

	case survey.QuestionTypeText:
		// Blank rows carry nothing to summarize; when all rows are blank
		// the summarizer is not contacted at all
		if nonEmpty := filterNonEmpty(answers); len(nonEmpty) > 0 {
			stats.Summary = summarizeAnswers(ctx, summarizer, nonEmpty)
		}
	}

	return stats
}

func filterNonEmpty(values []string) []string {
	var kept []string
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			kept = append(kept, v)
		}
	}
	return kept
}

// parseNumeric keeps the answers that parse as numbers, silently dropping
// the rest. Free-text noise in rating answers must not break aggregation.
func parseNumeric(values []string) []float64 {
	var parsed []float64
	for _, v := range values {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			continue
		}
		parsed = append(parsed, f)
	}
	return parsed
}

// mean returns the average rounded to 4 places, or nil when no values
// parsed
func mean(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	m := round4(sum / float64(len(values)))
	return &m
}

// aggregateCharacteristics groups the stored values by characteristic name
// and aggregates each group per its value type: numeric characteristics
// produce a value list, everything else a distribution
func aggregateCharacteristics(values []*characteristic.Value) []CharacteristicStats {
	type group struct {
		valueType characteristic.ValueType
		values    []string
	}

	groups := make(map[string]*group)
	var order []string
	for _, v := range values {
		g, ok := groups[v.Name]
		if !ok {
			g = &group{valueType: v.ValueType}
			groups[v.Name] = g
			order = append(order, v.Name)
		}
		g.values = append(g.values, v.Value)
	}

	stats := make([]CharacteristicStats, 0, len(order))
	for _, name := range order {
		g := groups[name]
		cs := CharacteristicStats{
			Name:      name,
			ValueType: string(g.valueType),
		}
		if g.valueType == characteristic.ValueTypeNumeric {
			cs.Values = parseNumeric(g.values)
		} else {
			cs.Distribution = distribution(g.values)
		}
		stats = append(stats, cs)
	}

	return stats
}
