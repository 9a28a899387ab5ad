package dimacs

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// LoadModels reads a model fixture file: one satisfying assignment per
// line, encoded as a DIMACS-style list of nonzero literals (positive for
// True, negative for False) terminated by end-of-line rather than a "0"
// token. It is used by the regression test suite as an oracle of
// previously-computed models (e.g. from MiniSat or Glucose), not by the
// solver itself.
func LoadModels(filename string) ([][]bool, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var models [][]bool
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		model := make([]bool, 0, len(fields))
		for _, tok := range fields {
			if tok == "0" {
				continue
			}
			v, err := strconv.Atoi(tok)
			if err != nil {
				return nil, fmt.Errorf("dimacs: parsing model literal %q: %w", tok, err)
			}
			model = append(model, v > 0)
		}
		models = append(models, model)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return models, nil
}
