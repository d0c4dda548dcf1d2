package bench

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var thresholdPattern = regexp.MustCompile(`^(\w+)\s*([<>]=?)\s*(.+)$`)

// ParseThresholds parses a threshold string like "p95<200ms,errors<1%"
func ParseThresholds(s string) (Thresholds, error) {
	var t Thresholds

	if s == "" {
		return t, nil
	}

	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if err := parseThresholdPart(part, &t); err != nil {
			return t, err
		}
	}

	return t, nil
}

func parseThresholdPart(part string, t *Thresholds) error {
	// Matches "p95<200ms", "errors<0.1%", "cps>5"
	matches := thresholdPattern.FindStringSubmatch(part)
	if len(matches) != 4 {
		return fmt.Errorf("invalid threshold format: %s", part)
	}

	metric := strings.ToLower(matches[1])
	op := matches[2]
	valueStr := matches[3]

	switch metric {
	case "p50", "p95", "p99", "max", "maxlatency":
		d, err := time.ParseDuration(valueStr)
		if err != nil {
			return fmt.Errorf("invalid duration for %s: %s", metric, valueStr)
		}
		if op != "<" && op != "<=" {
			return fmt.Errorf("%s threshold must use < or <=", metric)
		}
		switch metric {
		case "p50":
			t.P50 = d
		case "p95":
			t.P95 = d
		case "p99":
			t.P99 = d
		default:
			t.Max = d
		}

	case "errors", "error", "errorrate":
		// Accepts a percentage like "0.1%" or a decimal like "0.001"
		valueStr = strings.TrimSuffix(valueStr, "%")
		f, err := strconv.ParseFloat(valueStr, 64)
		if err != nil {
			return fmt.Errorf("invalid error rate: %s", valueStr)
		}
		if strings.Contains(part, "%") {
			f = f / 100
		}
		if op != "<" && op != "<=" {
			return fmt.Errorf("error rate threshold must use < or <=")
		}
		t.ErrorRate = f

	case "cps", "rate":
		f, err := strconv.ParseFloat(valueStr, 64)
		if err != nil {
			return fmt.Errorf("invalid capture rate: %s", valueStr)
		}
		if op != ">" && op != ">=" {
			return fmt.Errorf("capture rate threshold must use > or >=")
		}
		t.MinCPS = f

	default:
		return fmt.Errorf("unknown threshold metric: %s", metric)
	}

	return nil
}
