package parser

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"sla-insights/errors"
	"sla-insights/metrics"
	"sla-insights/models"
)

// Source labels used for metrics and error context.
const (
	SourceState   = "state"
	SourceInsight = "insight"
)

// ParseRows reads header-keyed CSV data and returns one Row per record.
// The first non-blank record is the header. Blank lines are skipped, values and
// header names are trimmed, and records shorter than the header are padded with
// empty values so that every Row carries every header key.
// An input with no header at all yields no rows and no error.
func ParseRows(r io.Reader, source string) ([]models.Row, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	var header []string
	var rows []models.Row
	lineNum := 0

	for {
		record, err := reader.Read()
		lineNum++
		if err == io.EOF {
			break
		}
		if err != nil {
			metrics.ParserErrorsTotal.WithLabelValues(source).Inc()
			return nil, &errors.ParseError{Source: source, Line: lineNum, Record: record, Err: err}
		}
		if isBlank(record) {
			continue
		}

		if header == nil {
			header = make([]string, len(record))
			seen := make(map[string]bool, len(record))
			for i, name := range record {
				header[i] = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
				if header[i] != "" && seen[header[i]] {
					metrics.ParserErrorsTotal.WithLabelValues(source).Inc()
					return nil, &errors.ParseError{
						Source: source,
						Line:   lineNum,
						Record: record,
						Err:    fmt.Errorf("%w: %s", errors.ErrDuplicateHeader, header[i]),
					}
				}
				seen[header[i]] = true
			}
			continue
		}

		row := make(models.Row, len(header))
		for i, name := range header {
			if name == "" {
				continue
			}
			if i < len(record) {
				row[name] = strings.TrimSpace(record[i])
			} else {
				row[name] = ""
			}
		}
		rows = append(rows, row)
	}

	metrics.ParserRowsTotal.WithLabelValues(source).Add(float64(len(rows)))
	return rows, nil
}

// ParseFile opens path and parses it with ParseRows.
func ParseFile(path, source string) ([]models.Row, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening %s file: %w", source, err)
	}
	defer file.Close()

	return ParseRows(file, source)
}

// LoadFiles reads the state and insight files concurrently.
// It is the single initialization boundary of a session; once it returns,
// nothing else touches the raw sources.
func LoadFiles(ctx context.Context, statePath, insightPath string) (state, insight []models.Row, err error) {
	start := time.Now()
	defer func() {
		metrics.ParserDurationSeconds.Observe(time.Since(start).Seconds())
	}()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		rows, err := ParseFile(statePath, SourceState)
		state = rows
		return err
	})
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		rows, err := ParseFile(insightPath, SourceInsight)
		insight = rows
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return state, insight, nil
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
