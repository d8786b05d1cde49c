package analysis

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/lueurxax/sentiment-scope/internal/core/domain"
	apperrors "github.com/lueurxax/sentiment-scope/internal/core/errors"
	"github.com/lueurxax/sentiment-scope/internal/platform/observability"
)

const textColumn = "text"

// AnalyzeCSV classifies the "text" column of a CSV upload. Rows beyond MaxCSVRows are
// ignored, as are empty cells and the literal "nan".
func (s *Service) AnalyzeCSV(ctx context.Context, r io.Reader) (*BatchResult, error) {
	texts, err := ReadTextColumn(r, s.cfg.MaxCSVRows)
	if err != nil {
		return nil, err
	}

	observability.AnalysesTotal.WithLabelValues(string(domain.AnalysisCSV)).Inc()

	return s.analyzeBatch(ctx, texts, domain.AnalysisCSV)
}

// ReadTextColumn returns the non-empty cells of the "text" column among the first maxRows rows.
func ReadTextColumn(r io.Reader, maxRows int) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, apperrors.ErrEmptyCSV
		}

		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}

	col := -1

	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if name == textColumn {
			col = i
			break
		}
	}

	if col < 0 {
		return nil, apperrors.ErrMissingTextColumn
	}

	texts := make([]string, 0)

	for rows := 0; maxRows <= 0 || rows < maxRows; rows++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
		}

		if col >= len(record) {
			continue
		}

		text := record[col]
		if strings.TrimSpace(text) == "" || text == "nan" {
			continue
		}

		texts = append(texts, text)
	}

	return texts, nil
}
