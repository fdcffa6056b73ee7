package influx

import (
	"bufio"
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Annotated-CSV schema contract with the store: fixed column positions.
const (
	timeColumn  = 5
	valueColumn = 6
)

// decodeTable turns a delimited query response into points. Annotation lines
// start with '#'; the first remaining line is the column header. Rows whose
// value column is not a finite number are dropped, or rejected when strict.
func decodeTable(body []byte, strict bool) ([]Point, error) {
	points := []Point{}
	headerSeen := false

	scanner := bufio.NewScanner(bytes.NewReader(body))
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !headerSeen {
			headerSeen = true
			continue
		}

		columns := strings.Split(line, ",")
		if len(columns) <= valueColumn {
			if strict {
				return nil, fmt.Errorf("row has %d columns, need %d", len(columns), valueColumn+1)
			}
			continue
		}

		value, err := strconv.ParseFloat(columns[valueColumn], 64)
		if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
			if strict {
				return nil, fmt.Errorf("non-finite value [%s]", columns[valueColumn])
			}
			continue
		}

		points = append(points, Point{Timestamp: columns[timeColumn], Value: value})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return points, nil
}
