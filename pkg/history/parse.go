package history

import (
	"bytes"
	"encoding/csv"
	"io"
	"math"
	"strconv"
	"strings"

	"emperror.dev/errors"
)

const (
	ColTimestamp    = "timestamp"
	ColCycles       = "cycles"
	ColInstructions = "instructions"
	ColCacheMisses  = "cache_misses"
	ColBranchMisses = "branch_misses"
	ColCPI          = "cpi"
)

// Columns lists the fields every record log must carry, in collector order.
var Columns = []string{ColTimestamp, ColCycles, ColInstructions, ColCacheMisses, ColBranchMisses, ColCPI}

// RowParser converts data rows into samples using the column positions of a header.
type RowParser struct {
	index map[string]int
}

// NewRowParser indexes header. Columns may appear in any order; extra ones are ignored.
func NewRowParser(header []string) (*RowParser, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, ok := index[name]; !ok {
			index[name] = i
		}
	}
	for _, col := range Columns {
		if _, ok := index[col]; !ok {
			return nil, &ParseError{Row: 0, Field: col, Err: ErrMissingColumn}
		}
	}
	return &RowParser{index: index}, nil
}

// IsHeader reports whether record looks like a header line rather than data.
func IsHeader(record []string) bool {
	return len(record) > 0 && strings.TrimSpace(strings.TrimPrefix(record[0], "\ufeff")) == ColTimestamp
}

// Parse converts record, the data row numbered row, into a Sample.
func (p *RowParser) Parse(row int, record []string) (Sample, error) {
	var s Sample

	field := func(col string) (string, error) {
		i := p.index[col]
		if i >= len(record) {
			return "", &ParseError{Row: row, Field: col, Err: ErrMissingField}
		}
		v := strings.TrimSpace(record[i])
		if v == "" {
			return "", &ParseError{Row: row, Field: col, Err: ErrEmptyValue}
		}
		return v, nil
	}

	counter := func(col string, dst *uint64) error {
		v, err := field(col)
		if err != nil {
			return err
		}
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return &ParseError{Row: row, Field: col, Value: v, Err: unwrapNum(err)}
		}
		*dst = n
		return nil
	}

	v, err := field(ColTimestamp)
	if err != nil {
		return s, err
	}
	if s.Timestamp, err = strconv.ParseInt(v, 10, 64); err != nil {
		return s, &ParseError{Row: row, Field: ColTimestamp, Value: v, Err: unwrapNum(err)}
	}

	if err = counter(ColCycles, &s.Cycles); err != nil {
		return s, err
	}
	if err = counter(ColInstructions, &s.Instructions); err != nil {
		return s, err
	}
	if err = counter(ColCacheMisses, &s.CacheMisses); err != nil {
		return s, err
	}
	if err = counter(ColBranchMisses, &s.BranchMisses); err != nil {
		return s, err
	}

	if v, err = field(ColCPI); err != nil {
		return s, err
	}
	cpi, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return s, &ParseError{Row: row, Field: ColCPI, Value: v, Err: unwrapNum(err)}
	}
	if math.IsNaN(cpi) || math.IsInf(cpi, 0) || cpi < 0 {
		return s, &ParseError{Row: row, Field: ColCPI, Value: v, Err: ErrInvalidCPI}
	}
	s.CPI = cpi

	return s, nil
}

// ParseRecords reads a whole record log: a header line followed by data rows.
// A final line without a terminating newline is still being written by the
// collector and is left for a later read. Parsing stops at the first bad row.
func ParseRecords(r io.Reader) ([]Sample, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	end := bytes.LastIndexByte(data, '\n')
	if end < 0 {
		return nil, nil
	}

	cr := csv.NewReader(bytes.NewReader(data[:end+1]))
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, &ParseError{Row: 0, Err: err}
	}
	parser, err := NewRowParser(header)
	if err != nil {
		return nil, err
	}

	var samples []Sample
	for row := 1; ; row++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ParseError{Row: row, Err: err}
		}
		s, err := parser.Parse(row, record)
		if err != nil {
			return nil, err
		}
		samples = append(samples, s)
	}
	return samples, nil
}

func unwrapNum(err error) error {
	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		return numErr.Err
	}
	return err
}
