package corpus

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spec-kit/triage-service/internal/domain"
)

// Column defaults applied when a column is absent or a cell is blank.
const (
	DefaultIssue           = "Unknown Issue"
	DefaultSentiment       = domain.SentimentNeutral
	DefaultPriority        = domain.PriorityMedium
	DefaultSolution        = "No solution provided"
	DefaultStatus          = "Pending"
	DefaultResolutionHours = 24.0
)

const (
	columnIssue          = "Issue Category"
	columnSentiment      = "Sentiment"
	columnPriority       = "Priority"
	columnSolution       = "Solution"
	columnStatus         = "Resolution Status"
	columnResolutionTime = "Resolution Time"
	columnResolutionDate = "Date of Resolution"
)

var columnAliases = map[string][]string{
	columnIssue:          {"Issue Category", "Issue", "issue_category"},
	columnSentiment:      {"Sentiment"},
	columnPriority:       {"Priority"},
	columnSolution:       {"Solution"},
	columnStatus:         {"Resolution Status", "Status", "resolution_status"},
	columnResolutionTime: {"Resolution Time", "resolution_time", "Resolution Hours"},
	columnResolutionDate: {"Date of Resolution", "Resolution Date", "Date_of_Resolution", "resolution_date", "date_resolved"},
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// ErrNoHeader is returned for a CSV without a header row.
var ErrNoHeader = errors.New("csv has no header row")

// LoadReport describes how a CSV was mapped onto the corpus schema.
type LoadReport struct {
	Headers        []string `json:"headers"`
	MissingColumns []string `json:"missing_columns"`
	Rows           int      `json:"rows"`
	SkippedRows    int      `json:"skipped_rows"`
}

// CSVSource loads a corpus from a CSV export of historical tickets.
type CSVSource struct {
	Path string
}

// NewCSVSource builds a source for path.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{Path: path}
}

// Name identifies the source in logs.
func (s *CSVSource) Name() string {
	return "csv:" + s.Path
}

// Load reads and parses the CSV file.
func (s *CSVSource) Load(ctx context.Context) (*Corpus, error) {
	c, _, err := s.LoadWithReport(ctx)
	return c, err
}

// LoadWithReport is Load plus a description of the column mapping.
func (s *CSVSource) LoadWithReport(ctx context.Context) (*Corpus, LoadReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, LoadReport{}, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, LoadReport{}, fmt.Errorf("open corpus csv: %w", err)
	}
	defer f.Close()
	return ReadCSV(f, s.Name())
}

// ReadCSV parses historical tickets from r. Missing columns and blank cells
// are filled with the package defaults instead of failing the load.
func ReadCSV(r io.Reader, source string) (*Corpus, LoadReport, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, LoadReport{}, ErrNoHeader
	}
	if err != nil {
		return nil, LoadReport{}, fmt.Errorf("read csv header: %w", err)
	}

	report := LoadReport{Headers: make([]string, len(header))}
	for i, h := range header {
		report.Headers[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	index := resolveColumns(report.Headers)
	for _, col := range []string{columnIssue, columnSentiment, columnPriority, columnSolution, columnStatus, columnResolutionTime} {
		if _, ok := index[col]; !ok {
			report.MissingColumns = append(report.MissingColumns, col)
		}
	}

	var tickets []domain.HistoricalTicket
	line := 1
	for {
		record, err := reader.Read()
		line++
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, report, fmt.Errorf("read csv line %d: %w", line, err)
		}
		if isBlankRecord(record) {
			report.SkippedRows++
			continue
		}
		tickets = append(tickets, parseRecord(record, index))
	}
	report.Rows = len(tickets)
	return New(source, tickets), report, nil
}

func resolveColumns(headers []string) map[string]int {
	index := make(map[string]int)
	for col, aliases := range columnAliases {
		for _, alias := range aliases {
			if i := indexFold(headers, alias); i >= 0 {
				index[col] = i
				break
			}
		}
	}
	return index
}

func indexFold(headers []string, name string) int {
	for i, h := range headers {
		if strings.EqualFold(h, name) {
			return i
		}
	}
	return -1
}

func parseRecord(record []string, index map[string]int) domain.HistoricalTicket {
	cell := func(col string) (string, bool) {
		i, ok := index[col]
		if !ok {
			return "", false
		}
		if i >= len(record) {
			return "", true
		}
		return strings.TrimSpace(record[i]), true
	}
	text := func(col, fallback string) string {
		if v, _ := cell(col); v != "" {
			return v
		}
		return fallback
	}

	ticket := domain.HistoricalTicket{
		Issue:     text(columnIssue, DefaultIssue),
		Solution:  text(columnSolution, DefaultSolution),
		Sentiment: DefaultSentiment,
		Priority:  DefaultPriority,
		Status:    text(columnStatus, DefaultStatus),
	}
	if v, _ := cell(columnSentiment); v != "" {
		ticket.Sentiment = domain.ParseSentiment(v)
	}
	if v, _ := cell(columnPriority); v != "" {
		ticket.Priority = domain.ParsePriority(v)
	}

	// Unparseable or negative hours stay nil so they never skew the average.
	if v, _ := cell(columnResolutionTime); v == "" {
		h := DefaultResolutionHours
		ticket.ResolutionHours = &h
	} else if h, err := strconv.ParseFloat(v, 64); err == nil && h >= 0 {
		ticket.ResolutionHours = &h
	}

	if v, _ := cell(columnResolutionDate); v != "" {
		ticket.ResolvedAt = parseDate(v)
	}
	return ticket
}

func parseDate(v string) *time.Time {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return &t
		}
	}
	return nil
}

func isBlankRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
