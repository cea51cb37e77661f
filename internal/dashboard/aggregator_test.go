package dashboard

import (
	"context"
	"reflect"
	"testing"

	"github.com/sociowork/surveypay/internal/characteristic"
	"github.com/sociowork/surveypay/internal/survey"
)

func TestDistribution(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   []DistributionEntry
	}{
		{
			name:   "two options",
			values: []string{"A", "A", "B"},
			want: []DistributionEntry{
				{Value: "A", Count: 2, Percent: 66.67},
				{Value: "B", Count: 1, Percent: 33.33},
			},
		},
		{
			name:   "single option",
			values: []string{"Yes", "Yes", "Yes"},
			want: []DistributionEntry{
				{Value: "Yes", Count: 3, Percent: 100},
			},
		},
		{
			name:   "keeps first-seen order",
			values: []string{"C", "A", "B", "A"},
			want: []DistributionEntry{
				{Value: "C", Count: 1, Percent: 25},
				{Value: "A", Count: 2, Percent: 50},
				{Value: "B", Count: 1, Percent: 25},
			},
		},
		{name: "no answers", values: nil, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := distribution(tt.values)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("distribution(%v) = %+v, want %+v", tt.values, got, tt.want)
			}
		})
	}
}

func TestParseNumeric(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   []float64
	}{
		{name: "clean ratings", values: []string{"4", "5", "3"}, want: []float64{4, 5, 3}},
		{name: "drops unparseable noise", values: []string{"4", "abc", "5"}, want: []float64{4, 5}},
		{name: "trims whitespace", values: []string{" 4.5 ", "2"}, want: []float64{4.5, 2}},
		{name: "all noise", values: []string{"good", "bad"}, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseNumeric(tt.values)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("parseNumeric(%v) = %v, want %v", tt.values, got, tt.want)
			}
		})
	}
}

func TestMean(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   *float64
	}{
		{name: "simple average", values: []float64{4, 5}, want: floatPtr(4.5)},
		{name: "rounds to four places", values: []float64{1, 1, 1, 1, 1, 1, 2}, want: floatPtr(1.1429)},
		{name: "no values", values: nil, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mean(tt.values)
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("mean(%v) = %v, want %v", tt.values, got, tt.want)
			}
			if got != nil && *got != *tt.want {
				t.Fatalf("mean(%v) = %v, want %v", tt.values, *got, *tt.want)
			}
		})
	}
}

func floatPtr(f float64) *float64 {
	return &f
}

// recordingSummarizer captures what it is asked to summarize
type recordingSummarizer struct {
	calls   [][]string
	summary string
}

func (r *recordingSummarizer) Summarize(_ context.Context, answers []string) (string, error) {
	r.calls = append(r.calls, answers)
	return r.summary, nil
}

func question(id int64, order int, text string, qType survey.QuestionType) *survey.SurveyQuestion {
	return &survey.SurveyQuestion{
		ID:    id,
		Order: order,
		Question: survey.Question{
			ID:   id,
			Text: text,
			Type: qType,
		},
	}
}

func TestAggregateQuestion(t *testing.T) {
	ctx := context.Background()

	t.Run("choice question produces distribution", func(t *testing.T) {
		sq := question(1, 1, "Favourite colour?", survey.QuestionTypeSingleChoice)
		stats := aggregateQuestion(ctx, nil, sq, []string{"Red", "Red", "Blue"})
		if stats == nil {
			t.Fatal("aggregateQuestion() returned nil for answered question")
		}
		if stats.AnswerCount != 3 {
			t.Fatalf("AnswerCount = %d, want 3", stats.AnswerCount)
		}
		want := []DistributionEntry{
			{Value: "Red", Count: 2, Percent: 66.67},
			{Value: "Blue", Count: 1, Percent: 33.33},
		}
		if !reflect.DeepEqual(stats.Distribution, want) {
			t.Fatalf("Distribution = %+v, want %+v", stats.Distribution, want)
		}
	})

	t.Run("rating question parses values and mean", func(t *testing.T) {
		sq := question(2, 2, "Rate the service", survey.QuestionTypeRating)
		stats := aggregateQuestion(ctx, nil, sq, []string{"4", "abc", "5"})
		if !reflect.DeepEqual(stats.Values, []float64{4, 5}) {
			t.Fatalf("Values = %v, want [4 5]", stats.Values)
		}
		if stats.Mean == nil || *stats.Mean != 4.5 {
			t.Fatalf("Mean = %v, want 4.5", stats.Mean)
		}
	})

	t.Run("date question keeps raw values and counts", func(t *testing.T) {
		sq := question(3, 3, "When did you visit?", survey.QuestionTypeDateTime)
		stats := aggregateQuestion(ctx, nil, sq, []string{"2026-01-01", "2026-01-01", "2026-02-01"})
		if !reflect.DeepEqual(stats.RawValues, []string{"2026-01-01", "2026-01-01", "2026-02-01"}) {
			t.Fatalf("RawValues = %v", stats.RawValues)
		}
		if len(stats.Distribution) != 2 || stats.Distribution[0].Count != 2 {
			t.Fatalf("Distribution = %+v, want two entries with first count 2", stats.Distribution)
		}
	})

	t.Run("text question falls back without summarizer", func(t *testing.T) {
		sq := question(4, 4, "Any comments?", survey.QuestionTypeText)
		stats := aggregateQuestion(ctx, nil, sq, []string{"great service", "great food"})
		if stats.Summary != "Main themes: great, service, food" {
			t.Fatalf("Summary = %q", stats.Summary)
		}
	})

	t.Run("blank text answers never reach the summarizer", func(t *testing.T) {
		sq := question(6, 6, "Any comments?", survey.QuestionTypeText)
		rec := &recordingSummarizer{summary: "should not be used"}
		stats := aggregateQuestion(ctx, rec, sq, []string{"", "   ", ""})
		if len(rec.calls) != 0 {
			t.Fatalf("summarizer was called %d times for all-blank answers, want 0", len(rec.calls))
		}
		if stats == nil || stats.Summary != "" {
			t.Fatalf("stats = %+v, want empty summary without a summarizer call", stats)
		}
		if stats.AnswerCount != 3 {
			t.Fatalf("AnswerCount = %d, want 3 (blank rows still count as answers)", stats.AnswerCount)
		}
	})

	t.Run("summarizer receives only the non-blank answers", func(t *testing.T) {
		sq := question(7, 7, "Any comments?", survey.QuestionTypeText)
		rec := &recordingSummarizer{summary: "One theme"}
		stats := aggregateQuestion(ctx, rec, sq, []string{"", "quick delivery", "  "})
		if len(rec.calls) != 1 {
			t.Fatalf("summarizer was called %d times, want 1", len(rec.calls))
		}
		if !reflect.DeepEqual(rec.calls[0], []string{"quick delivery"}) {
			t.Fatalf("summarizer received %v, want only the non-blank answer", rec.calls[0])
		}
		if stats.Summary != "One theme" {
			t.Fatalf("Summary = %q", stats.Summary)
		}
	})

	t.Run("unanswered question is omitted", func(t *testing.T) {
		sq := question(5, 5, "Skipped?", survey.QuestionTypeText)
		if stats := aggregateQuestion(ctx, nil, sq, nil); stats != nil {
			t.Fatalf("aggregateQuestion() = %+v, want nil for unanswered question", stats)
		}
	})
}

func TestAggregateCharacteristics(t *testing.T) {
	values := []*characteristic.Value{
		{RespondentID: 1, Name: "age", ValueType: characteristic.ValueTypeNumeric, Value: "25"},
		{RespondentID: 2, Name: "age", ValueType: characteristic.ValueTypeNumeric, Value: "30"},
		{RespondentID: 1, Name: "city", ValueType: characteristic.ValueTypeChoice, Value: "Moscow"},
		{RespondentID: 2, Name: "city", ValueType: characteristic.ValueTypeChoice, Value: "Moscow"},
	}

	stats := aggregateCharacteristics(values)
	if len(stats) != 2 {
		t.Fatalf("got %d characteristic groups, want 2", len(stats))
	}

	age := stats[0]
	if age.Name != "age" || !reflect.DeepEqual(age.Values, []float64{25, 30}) {
		t.Fatalf("age stats = %+v, want parsed numeric values [25 30]", age)
	}
	if age.Distribution != nil {
		t.Fatalf("numeric characteristic should not carry a distribution, got %+v", age.Distribution)
	}

	city := stats[1]
	wantCity := []DistributionEntry{{Value: "Moscow", Count: 2, Percent: 100}}
	if city.Name != "city" || !reflect.DeepEqual(city.Distribution, wantCity) {
		t.Fatalf("city stats = %+v, want %+v", city, wantCity)
	}
}
