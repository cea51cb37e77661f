package dashboard

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"
)

func TestBackoffDelay(t *testing.T) {
	want := []time.Duration{
		500 * time.Millisecond,
		1 * time.Second,
		2 * time.Second,
		3 * time.Second,
		3 * time.Second,
	}

	for attempt, w := range want {
		if got := backoffDelay(attempt); got != w {
			t.Fatalf("backoffDelay(%d) = %v, want %v", attempt, got, w)
		}
	}
}

// newTestSummarizer wires an HTTPSummarizer against a test server and
// records sleeps instead of performing them
func newTestSummarizer(url string) (*HTTPSummarizer, *[]time.Duration) {
	var slept []time.Duration
	s := NewHTTPSummarizer(url)
	s.sleep = func(d time.Duration) {
		slept = append(slept, d)
	}
	return s, &slept
}

func TestSummarizeSucceedsFirstTry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"summary":"Mostly positive feedback"}`))
	}))
	defer srv.Close()

	s, slept := newTestSummarizer(srv.URL)
	got, err := s.Summarize(context.Background(), []string{"good", "great"})
	if err != nil {
		t.Fatalf("Summarize() unexpected error: %v", err)
	}
	if got != "Mostly positive feedback" {
		t.Fatalf("Summarize() = %q", got)
	}
	if len(*slept) != 0 {
		t.Fatalf("slept %v, want no backoff on first-try success", *slept)
	}
}

func TestSummarizeRetriesThenSucceeds(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"summary":"Recovered"}`))
	}))
	defer srv.Close()

	s, slept := newTestSummarizer(srv.URL)
	got, err := s.Summarize(context.Background(), []string{"answer"})
	if err != nil {
		t.Fatalf("Summarize() unexpected error: %v", err)
	}
	if got != "Recovered" {
		t.Fatalf("Summarize() = %q", got)
	}

	want := []time.Duration{500 * time.Millisecond, 1 * time.Second}
	if !reflect.DeepEqual(*slept, want) {
		t.Fatalf("backoff sleeps = %v, want %v", *slept, want)
	}
}

func TestSummarizeExhaustsAttempts(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	s, slept := newTestSummarizer(srv.URL)
	if _, err := s.Summarize(context.Background(), []string{"answer"}); err == nil {
		t.Fatal("Summarize() expected error after exhausting attempts")
	}
	if calls != summarizerAttempts {
		t.Fatalf("made %d calls, want %d", calls, summarizerAttempts)
	}

	// No sleep after the final attempt
	want := []time.Duration{
		500 * time.Millisecond,
		1 * time.Second,
		2 * time.Second,
		3 * time.Second,
	}
	if !reflect.DeepEqual(*slept, want) {
		t.Fatalf("backoff sleeps = %v, want %v", *slept, want)
	}
}

func TestSummarizeEmptySummaryRetries(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Write([]byte(`{"summary":"  "}`))
			return
		}
		w.Write([]byte(`{"summary":"Filled in"}`))
	}))
	defer srv.Close()

	s, _ := newTestSummarizer(srv.URL)
	got, err := s.Summarize(context.Background(), []string{"answer"})
	if err != nil {
		t.Fatalf("Summarize() unexpected error: %v", err)
	}
	if got != "Filled in" {
		t.Fatalf("Summarize() = %q, want retry past the empty summary", got)
	}
}

func TestSummarizeAnswersFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	s, _ := newTestSummarizer(srv.URL)
	got := summarizeAnswers(context.Background(), s, []string{"slow delivery", "slow support"})
	if got != "Main themes: slow, delivery, support" {
		t.Fatalf("summarizeAnswers() = %q, want word-frequency fallback", got)
	}
}

func TestFallbackSummary(t *testing.T) {
	tests := []struct {
		name    string
		answers []string
		want    string
	}{
		{
			name:    "top five by frequency",
			answers: []string{"a a a b b c", "d e f"},
			want:    "Main themes: a, b, c, d, e",
		},
		{
			name:    "strips punctuation and lowercases",
			answers: []string{"Great! Great, great.", "Good."},
			want:    "Main themes: great, good",
		},
		{
			name:    "ties keep first-seen order",
			answers: []string{"zebra apple", "zebra apple"},
			want:    "Main themes: zebra, apple",
		},
		{
			name:    "no answers",
			answers: nil,
			want:    "Main themes: ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fallbackSummary(tt.answers); got != tt.want {
				t.Fatalf("fallbackSummary(%v) = %q, want %q", tt.answers, got, tt.want)
			}
		})
	}
}
