package neural

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

var errUnsupportedLabels = errors.New("unsupported label set")

// labelIndex maps model output positions onto sentiment classes.
// A value of -1 means the model has no such class.
type labelIndex struct {
	negative int
	neutral  int
	positive int
	size     int
}

var defaultLabelIndex = labelIndex{negative: 0, neutral: 1, positive: 2, size: 3}

type modelConfig struct {
	ID2Label map[string]string `json:"id2label"`
}

type tokenizerConfig struct {
	DoLowerCase *bool `json:"do_lower_case"`
}

func readModelConfig(path string) (labelIndex, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return defaultLabelIndex, nil
	}

	if err != nil {
		return labelIndex{}, fmt.Errorf("read model config: %w", err)
	}

	var cfg modelConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return labelIndex{}, fmt.Errorf("parse model config: %w", err)
	}

	return parseLabels(cfg.ID2Label)
}

func readLowerCase(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return true, nil
	}

	if err != nil {
		return false, fmt.Errorf("read tokenizer config: %w", err)
	}

	var cfg tokenizerConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return false, fmt.Errorf("parse tokenizer config: %w", err)
	}

	if cfg.DoLowerCase == nil {
		return true, nil
	}

	return *cfg.DoLowerCase, nil
}

// parseLabels resolves id2label. Named labels (negative/neutral/positive and
// common abbreviations) are matched by name; generic LABEL_n names fall back to
// positional order negative, neutral, positive.
func parseLabels(id2label map[string]string) (labelIndex, error) {
	if len(id2label) == 0 {
		return defaultLabelIndex, nil
	}

	ids := make([]int, 0, len(id2label))
	names := make(map[int]string, len(id2label))

	for k, v := range id2label {
		id, err := strconv.Atoi(k)
		if err != nil {
			return labelIndex{}, fmt.Errorf("%w: id %q", errUnsupportedLabels, k)
		}

		ids = append(ids, id)
		names[id] = strings.ToLower(v)
	}

	sort.Ints(ids)

	idx := labelIndex{negative: -1, neutral: -1, positive: -1, size: len(ids)}
	named := 0

	for _, id := range ids {
		switch name := names[id]; {
		case strings.HasPrefix(name, "neg"):
			idx.negative = id
			named++
		case strings.HasPrefix(name, "neu"):
			idx.neutral = id
			named++
		case strings.HasPrefix(name, "pos"):
			idx.positive = id
			named++
		}
	}

	if named > 0 {
		if idx.negative < 0 || idx.positive < 0 {
			return labelIndex{}, fmt.Errorf("%w: need negative and positive", errUnsupportedLabels)
		}

		return idx, nil
	}

	switch len(ids) {
	case 3:
		return defaultLabelIndex, nil
	case 2:
		return labelIndex{negative: 0, neutral: -1, positive: 1, size: 2}, nil
	default:
		return labelIndex{}, fmt.Errorf("%w: %d classes", errUnsupportedLabels, len(ids))
	}
}

func (l labelIndex) pick(probs []float64, i int) float64 {
	if i < 0 || i >= len(probs) {
		return 0
	}

	return probs[i]
}
