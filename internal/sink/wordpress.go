package sink

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nao1215/spider/internal/model"
)

const (
	// wordPressTimeout bounds one post request.
	wordPressTimeout = 5 * time.Second

	// wordPressPostsPath is the REST endpoint for creating posts.
	wordPressPostsPath = "/index.php/wp-json/wp/v2/posts"
)

// WordPressOptions configures a WordPress sink.
type WordPressOptions struct {
	// Host is the site host (and optional port). A scheme may be given;
	// http is assumed otherwise.
	Host string

	// User and Password are sent with HTTP Basic auth
	// (an application password on current WordPress versions).
	User     string
	Password string

	// Client overrides the HTTP client.
	Client *http.Client
}

// WordPress publishes each data row as a post. The matrix must have
// "title" and "content" columns.
type WordPress struct {
	endpoint string
	user     string
	password string
	client   *http.Client
}

// NewWordPress creates a WordPress sink.
func NewWordPress(opts WordPressOptions) (*WordPress, error) {
	if opts.Host == "" {
		return nil, fmt.Errorf("wordpress host is required")
	}
	base := strings.TrimRight(opts.Host, "/")
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("invalid wordpress host %q: %w", opts.Host, err)
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: wordPressTimeout}
	}
	return &WordPress{
		endpoint: base + wordPressPostsPath,
		user:     opts.User,
		password: opts.Password,
		client:   client,
	}, nil
}

// Save implements Sink. The tag is ignored. Rows are posted in order and
// the first failure stops the save, so earlier rows stay published.
func (wp *WordPress) Save(ctx context.Context, matrix model.Matrix, _ string) error {
	if err := checkMatrix(matrix); err != nil {
		return err
	}
	title := matrix.Column("title")
	body := matrix.Column("content")
	if title < 0 || body < 0 {
		return fmt.Errorf("%w: wordpress needs \"title\" and \"content\", got %v",
			ErrMissingColumn, matrix.Header())
	}

	for i, record := range matrix.Records() {
		if err := wp.post(ctx, cell(record, title), cell(record, body)); err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}
	}
	return nil
}

func (wp *WordPress) post(ctx context.Context, title, content string) error {
	form := url.Values{
		"title":          {title},
		"content":        {content},
		"status":         {"publish"},
		"comment_status": {"open"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, wp.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(wp.user, wp.password)

	resp, err := wp.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post to wordpress: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode > http.StatusCreated {
		return fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
	}
	return nil
}

func cell(record []string, i int) string {
	if i < len(record) {
		return record[i]
	}
	return ""
}
