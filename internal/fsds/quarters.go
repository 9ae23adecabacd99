package fsds

import (
	"fmt"
	"regexp"
	"strconv"
)

var yqPattern = regexp.MustCompile(`^(\d{4})q([1-4])$`)

// ParseQuarter splits a year-quarter identifier like "2025q2".
func ParseQuarter(yq string) (year, quarter int, err error) {
	m := yqPattern.FindStringSubmatch(yq)
	if m == nil {
		return 0, 0, fmt.Errorf("invalid quarter %q (want e.g. 2025q2)", yq)
	}
	year, _ = strconv.Atoi(m[1])
	quarter, _ = strconv.Atoi(m[2])
	return year, quarter, nil
}

// QuarterRange lists the year-quarter identifiers from `from` to `to`,
// inclusive, in chronological order. FSDS coverage starts at 2009q1.
func QuarterRange(from, to string) ([]string, error) {
	fy, fq, err := ParseQuarter(from)
	if err != nil {
		return nil, err
	}
	ty, tq, err := ParseQuarter(to)
	if err != nil {
		return nil, err
	}
	if fy > ty || (fy == ty && fq > tq) {
		return nil, fmt.Errorf("quarter range start %s is after end %s", from, to)
	}

	var out []string
	y, q := fy, fq
	for {
		out = append(out, fmt.Sprintf("%dq%d", y, q))
		if y == ty && q == tq {
			break
		}
		q++
		if q > 4 {
			y++
			q = 1
		}
	}
	return out, nil
}
