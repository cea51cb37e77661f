package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	summarizerAttempts      = 5
	summarizerBaseDelay     = 500 * time.Millisecond
	summarizerMaxDelay      = 3 * time.Second
	summarizerConnectWindow = 5 * time.Second
	summarizerReadWindow    = 30 * time.Second
)

// Summarizer condenses a list of free-text answers into a short summary
type Summarizer interface {
	Summarize(ctx context.Context, answers []string) (string, error)
}

// HTTPSummarizer calls an external summarization service. Failures are
// retried with capped exponential backoff; exhausting the attempts is
// reported to the caller, who falls back to a local summary.
type HTTPSummarizer struct {
	url    string
	client *http.Client
	sleep  func(time.Duration)
}

// NewHTTPSummarizer creates a summarizer client against the given URL
func NewHTTPSummarizer(url string) *HTTPSummarizer {
	return &HTTPSummarizer{
		url: url,
		client: &http.Client{
			Timeout: summarizerReadWindow,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: summarizerConnectWindow,
				}).DialContext,
			},
		},
		sleep: time.Sleep,
	}
}

type summarizeRequest struct {
	Answers []string `json:"answers"`
}

type summarizeResponse struct {
	Summary string `json:"summary"`
}

// Summarize posts the answers to the summarization service, retrying on
// any failure. An empty summary counts as a failure.
func (s *HTTPSummarizer) Summarize(ctx context.Context, answers []string) (string, error) {
	body, err := json.Marshal(summarizeRequest{Answers: answers})
	if err != nil {
		return "", fmt.Errorf("failed to encode summarize request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < summarizerAttempts; attempt++ {
		summary, err := s.post(ctx, body)
		if err == nil {
			return summary, nil
		}
		lastErr = err

		if attempt < summarizerAttempts-1 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			default:
			}
			s.sleep(backoffDelay(attempt))
		}
	}

	return "", fmt.Errorf("summarizer unavailable after %d attempts: %w", summarizerAttempts, lastErr)
}

func (s *HTTPSummarizer) post(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("summarizer returned status %d", resp.StatusCode)
	}

	var out summarizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.Summary) == "" {
		return "", errors.New("summarizer returned an empty summary")
	}

	return out.Summary, nil
}

// backoffDelay is the wait before retrying attempt+1: base doubled per
// attempt, capped at the max delay
func backoffDelay(attempt int) time.Duration {
	d := summarizerBaseDelay << uint(attempt)
	if d > summarizerMaxDelay {
		d = summarizerMaxDelay
	}
	return d
}

// summarizeAnswers runs the summarizer and degrades to a local word
// frequency summary when the service stays unreachable
func summarizeAnswers(ctx context.Context, summarizer Summarizer, answers []string) string {
	if summarizer != nil {
		summary, err := summarizer.Summarize(ctx, answers)
		if err == nil {
			return summary
		}
		logrus.WithField("error", err).Warn("text summarization failed, using fallback")
	}
	return fallbackSummary(answers)
}

// fallbackSummary names the five most frequent words across the answers.
// Ties keep first-seen order so the output is deterministic.
func fallbackSummary(answers []string) string {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	for _, a := range answers {
		for _, w := range strings.Fields(strings.ToLower(a)) {
			w = strings.Trim(w, ".,!?;:\"'()")
			if w == "" {
				continue
			}
			if _, seen := counts[w]; !seen {
				firstSeen[w] = len(firstSeen)
			}
			counts[w]++
		}
	}

	words := make([]string, 0, len(counts))
	for w := range counts {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return firstSeen[words[i]] < firstSeen[words[j]]
	})

	if len(words) > 5 {
		words = words[:5]
	}

	return "Main themes: " + strings.Join(words, ", ")
}
