package marketplace

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// APIError is a non-2xx response from a review or Q&A endpoint.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// NewAPIClient returns a resty client that retries 429 and 5xx responses with backoff.
func NewAPIClient(userAgent string, timeout time.Duration) *resty.Client {
	return resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json").
		SetRetryCount(3).
		SetRetryWaitTime(time.Second).
		SetRetryMaxWaitTime(4 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil || r == nil {
				return false
			}
			return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= 500
		})
}

type bvReview struct {
	Rating         any    `json:"rating"`
	Title          string `json:"title"`
	ReviewText     string `json:"reviewText"`
	UserNickname   string `json:"userNickname"`
	SubmissionTime string `json:"submissionTime"`
}

type bvAnswer struct {
	AnswerText     string `json:"answerText"`
	UserNickname   string `json:"userNickname"`
	SubmissionTime string `json:"submissionTime"`
}

type bvQuestion struct {
	QuestionText string     `json:"questionText"`
	Answers      []bvAnswer `json:"answers"`
}

// FetchReviews reads a BazaarVoice-style review listing.
func FetchReviews(ctx context.Context, client *resty.Client, endpoint string) ([]APIReview, error) {
	var body struct {
		Results []bvReview `json:"results"`
	}
	if err := getJSON(ctx, client, endpoint, &body); err != nil {
		return nil, err
	}
	out := make([]APIReview, 0, len(body.Results))
	for _, r := range body.Results {
		out = append(out, APIReview{
			Rating: r.Rating,
			Title:  r.Title,
			Review: r.ReviewText,
			Author: r.UserNickname,
			Date:   r.SubmissionTime,
		})
	}
	return out, nil
}

// FetchQuestions reads a BazaarVoice-style Q&A listing.
func FetchQuestions(ctx context.Context, client *resty.Client, endpoint string) ([]APIQuestion, error) {
	var body struct {
		Results []bvQuestion `json:"results"`
	}
	if err := getJSON(ctx, client, endpoint, &body); err != nil {
		return nil, err
	}
	out := make([]APIQuestion, 0, len(body.Results))
	for _, q := range body.Results {
		answers := make([]APIAnswer, 0, len(q.Answers))
		for _, a := range q.Answers {
			answers = append(answers, APIAnswer{Answer: a.AnswerText, Author: a.UserNickname, Date: a.SubmissionTime})
		}
		out = append(out, APIQuestion{Question: q.QuestionText, Answers: answers})
	}
	return out, nil
}

func getJSON(ctx context.Context, client *resty.Client, endpoint string, dest any) error {
	resp, err := client.R().SetContext(ctx).Get(endpoint)
	if err != nil {
		return fmt.Errorf("get %s: %w", endpoint, err)
	}
	if resp.IsError() {
		b := resp.String()
		if len(b) > 512 {
			b = b[:512]
		}
		return &APIError{StatusCode: resp.StatusCode(), Body: b}
	}
	if err := json.Unmarshal(resp.Body(), dest); err != nil {
		return fmt.Errorf("decode %s: %w", endpoint, err)
	}
	return nil
}
