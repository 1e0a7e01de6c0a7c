package follower

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/nxadm/tail"

	"github.com/voluzi/perfwatch/pkg/history"
)

// Follower streams samples from a record log while the collector appends to it.
type Follower struct {
	tail    *tail.Tail
	Records chan *Record
}

// Record is one data row of the log. Row counts data rows since the last header.
type Record struct {
	Sample history.Sample
	Row    int
	Err    error
}

// New follows the log at path. The log does not need to exist yet. When
// fromEnd is set only rows written after New returns are streamed, and they
// are parsed with the collector's default column order until a header is seen.
func New(path string, fromEnd bool) (*Follower, error) {
	cfg := tail.Config{
		ReOpen:    true,
		Follow:    true,
		MustExist: false,
		Logger:    tail.DiscardingLogger,
	}
	if fromEnd {
		cfg.Location = &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd}
	}

	t, err := tail.TailFile(path, cfg)
	if err != nil {
		return nil, err
	}

	return &Follower{
		tail:    t,
		Records: make(chan *Record),
	}, nil
}

func (f *Follower) Stop() error {
	return f.tail.Stop()
}

// Start blocks until the follower is stopped, then closes Records.
func (f *Follower) Start() {
	defer close(f.Records)

	parser, _ := history.NewRowParser(history.Columns)
	row := 0

	for line := range f.tail.Lines {
		if line.Err != nil {
			if !f.send(&Record{Err: line.Err}) {
				return
			}
			continue
		}

		text := strings.TrimSpace(line.Text)
		if text == "" {
			continue
		}

		fields, err := csv.NewReader(strings.NewReader(text)).Read()
		if err != nil {
			row++
			if !f.send(&Record{Row: row, Err: &history.ParseError{Row: row, Err: err}}) {
				return
			}
			continue
		}

		if history.IsHeader(fields) {
			p, err := history.NewRowParser(fields)
			if err != nil {
				if !f.send(&Record{Err: err}) {
					return
				}
				continue
			}
			parser = p
			row = 0
			continue
		}

		row++
		sample, err := parser.Parse(row, fields)
		if err != nil {
			sample = history.Sample{}
		}
		if !f.send(&Record{Sample: sample, Row: row, Err: err}) {
			return
		}
	}
}

func (f *Follower) send(r *Record) bool {
	select {
	case f.Records <- r:
		return true
	case <-f.tail.Dying():
		return false
	}
}
