package directory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/UnknownOlympus/themis/internal/metrics"
)

var ErrScrapeStaff = errors.New("failed to scrape staff directory")

// Table cells of a staff row, 1-based as used by nth-child.
const (
	tdID       = 2
	tdFullName = 3
	tdPosition = 4
	tdEmail    = 5
	tdPhone    = 6
)

// StaffMember is one row of the staff directory as published, before any cleanup.
type StaffMember struct {
	ExternalID int
	FullName   string
	Position   string
	Email      string
	Phone      string
}

// Source logs into the staff directory and reads its staff list.
type Source struct {
	log     *slog.Logger
	client  *http.Client
	metrics *metrics.Metrics
	creds   Credentials
	retries int
	backoff time.Duration
}

func NewSource(
	log *slog.Logger,
	client *http.Client,
	metrics *metrics.Metrics,
	creds Credentials,
	retries int,
	backoff time.Duration,
) *Source {
	return &Source{
		log:     log.With(slog.String("division", "directory")),
		client:  client,
		metrics: metrics,
		creds:   creds,
		retries: retries,
		backoff: backoff,
	}
}

// FetchStaff opens a session and returns every staff row of the directory.
func (s *Source) FetchStaff(ctx context.Context) ([]StaffMember, error) {
	if err := RetryLogin(ctx, s.log, s.client, s.creds, s.retries, s.backoff); err != nil {
		return nil, fmt.Errorf("failed to login: %w", err)
	}

	query := url.Values{}
	query.Set("core_section", "staff_unit")

	body, err := s.getHTML(ctx, query)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	staff, err := ParseStaff(body)
	if err != nil {
		return nil, err
	}
	s.metrics.ItemsParsed.WithLabelValues("employee").Add(float64(len(staff)))
	s.log.DebugContext(ctx, "staff directory parsed", "count", len(staff))

	return staff, nil
}

func (s *Source) getHTML(ctx context.Context, query url.Values) (io.ReadCloser, error) {
	target, err := url.Parse(s.creds.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid directory url '%s': %w", s.creds.BaseURL, err)
	}
	target.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create new request %s: %w", target, err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to request %s: %w", target, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: status code %d", ErrScrapeStaff, resp.StatusCode)
	}

	return resp.Body, nil
}

// ParseStaff extracts staff rows (`tr[tag^="row_"]`) from a directory page.
// Rows without a numeric id keep ExternalID 0.
func ParseStaff(in io.Reader) ([]StaffMember, error) {
	doc, err := goquery.NewDocumentFromReader(in)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScrapeStaff, err)
	}

	staff := make([]StaffMember, 0)
	doc.Find(`tr[tag^="row_"]`).Each(func(_ int, row *goquery.Selection) {
		externalID, _ := strconv.Atoi(row.Find(fmt.Sprintf("td:nth-child(%d) input", tdID)).AttrOr("value", "0"))
		staff = append(staff, StaffMember{
			ExternalID: externalID,
			FullName:   cell(row, tdFullName),
			Position:   cell(row, tdPosition),
			Email:      cell(row, tdEmail),
			Phone:      cell(row, tdPhone),
		})
	})

	return staff, nil
}

func cell(row *goquery.Selection, index int) string {
	return strings.TrimSpace(row.Find(fmt.Sprintf("td:nth-child(%d)", index)).Text())
}
