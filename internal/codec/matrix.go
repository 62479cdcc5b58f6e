package codec

import (
	"strconv"
	"strings"
)

// EncodeMatrix is the matrix serializer used by /status and the name node's
// aggregated /df: the outer sequence is newline-joined, each inner sequence
// is tab-joined.
func EncodeMatrix(rows [][]string) []byte {
	lines := make([]string, len(rows))
	for i, row := range rows {
		lines[i] = strings.Join(row, "\t")
	}
	return []byte(strings.Join(lines, "\n"))
}

// DecodeMatrix is the inverse of EncodeMatrix.
func DecodeMatrix(data []byte) [][]string {
	if len(data) == 0 {
		return nil
	}
	lines := strings.Split(string(data), "\n")
	rows := make([][]string, len(lines))
	for i, line := range lines {
		rows[i] = strings.Split(line, "\t")
	}
	return rows
}

// DecodeDF parses the space-separated (total, used, free) triple produced
// by Encode([]string{...}) for a single data node's df response.
func DecodeDF(data []byte) (total, used, free int64, err error) {
	fields := strings.Fields(string(data))
	if len(fields) != 3 {
		return 0, 0, 0, errorf("DecodeDF", "expected 3 fields, got %d", len(fields))
	}
	values := make([]int64, 3)
	for i, f := range fields {
		values[i], err = strconv.ParseInt(f, 10, 64)
		if err != nil {
			return 0, 0, 0, errorf("DecodeDF", "field %d: %v", i, err)
		}
	}
	return values[0], values[1], values[2], nil
}

// DecodeStat parses the space-separated (path, size, mode) triple returned
// by a data node's /stat.
func DecodeStat(data []byte) (path string, size int64, mode uint32, err error) {
	fields := strings.Fields(string(data))
	if len(fields) != 3 {
		return "", 0, 0, errorf("DecodeStat", "expected 3 fields, got %d", len(fields))
	}
	size, err = strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return "", 0, 0, errorf("DecodeStat", "size: %v", err)
	}
	modeVal, err := strconv.ParseUint(fields[2], 10, 32)
	if err != nil {
		return "", 0, 0, errorf("DecodeStat", "mode: %v", err)
	}
	return fields[0], size, uint32(modeVal), nil
}

// DecodeList parses the whitespace-separated list returned by /ls.
func DecodeList(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	return strings.Fields(string(data))
}
