// Package trivia fetches question sets from the Open Trivia Database
// (https://opentdb.com). One fetch happens per tournament creation; there is
// no retry logic, a transient failure surfaces as a creation failure.
package trivia

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	// Wildcard is the category/difficulty code meaning "any"; wildcard
	// parameters are omitted from the request URL.
	Wildcard = "0"

	questionCount  = 10
	defaultBaseURL = "https://opentdb.com/api.php"
	defaultTimeout = 15 * time.Second
)

// ErrNoQuestions is returned when the API cannot supply a question set for
// the requested category/difficulty (non-zero response_code).
var ErrNoQuestions = errors.New("no questions found for the requested category and difficulty")

// Result is one question with its answers. Text fields may contain HTML
// entities; callers decode before storage.
type Result struct {
	Category         string   `json:"category"`
	Difficulty       string   `json:"difficulty"`
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
}

type apiResponse struct {
	ResponseCode int      `json:"response_code"`
	Results      []Result `json:"results"`
}

// QuestionProvider is the boundary consumed by the tournament service.
type QuestionProvider interface {
	FetchQuestions(ctx context.Context, category, difficulty string) ([]Result, error)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a client against the given base URL; an empty baseURL
// selects the public OpenTDB endpoint.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// FetchQuestions requests ten questions filtered by the given codes. A
// wildcard code drops that filter from the query, giving the four URL
// variants: both set, category only, difficulty only, neither.
func (c *Client) FetchQuestions(ctx context.Context, category, difficulty string) ([]Result, error) {
	requestURL, err := c.buildURL(category, difficulty)
	if err != nil {
		return nil, err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create trivia request: %w", err)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("trivia request failed: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("trivia API returned status %d", response.StatusCode)
	}

	var payload apiResponse
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode trivia response: %w", err)
	}

	if payload.ResponseCode != 0 || len(payload.Results) == 0 {
		return nil, ErrNoQuestions
	}

	return payload.Results, nil
}

func (c *Client) buildURL(category, difficulty string) (string, error) {
	parsedURL, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid trivia base URL %q: %w", c.baseURL, err)
	}

	params := parsedURL.Query()
	params.Set("amount", strconv.Itoa(questionCount))
	if category != Wildcard {
		params.Set("category", category)
	}
	if difficulty != Wildcard {
		params.Set("difficulty", difficulty)
	}
	parsedURL.RawQuery = params.Encode()

	return parsedURL.String(), nil
}
