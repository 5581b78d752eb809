package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/taym/wikiharvest/internal/model"
)

// JSONLWriter streams records as line-delimited JSON: one complete,
// independently parseable object per line, appended in emission order.
//
// Records are flushed as they are written so that a long run's partial
// output is usable if the process is interrupted.
type JSONLWriter struct {
	// buf batches small writes; flushed after every record.
	buf *bufio.Writer

	// enc writes one JSON value per line.
	enc *json.Encoder

	// count is the number of lines written.
	count int
}

// NewJSONLWriter creates a JSONLWriter on the given output.
func NewJSONLWriter(output io.Writer) *JSONLWriter {
	buf := bufio.NewWriter(output)
	return &JSONLWriter{
		buf: buf,
		enc: json.NewEncoder(buf),
	}
}

// WriteRecord writes one output record line.
func (w *JSONLWriter) WriteRecord(rec model.OutputRecord) error {
	return w.writeLine(rec)
}

// WriteLink writes one reference link line. Used by the standalone
// discovery command, whose output feeds the resolve command.
func (w *JSONLWriter) WriteLink(link model.ReferenceLink) error {
	return w.writeLine(link)
}

// Count returns the number of lines written so far.
func (w *JSONLWriter) Count() int {
	return w.count
}

func (w *JSONLWriter) writeLine(v any) error {
	if err := w.enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}
	if err := w.buf.Flush(); err != nil {
		return fmt.Errorf("failed to flush record: %w", err)
	}
	w.count++
	return nil
}

// ReadLinks decodes reference links from a JSONL stream, calling fn for
// each in file order. It stops at the first malformed line or fn error.
func ReadLinks(r io.Reader, fn func(model.ReferenceLink) error) error {
	dec := json.NewDecoder(r)
	for {
		var link model.ReferenceLink
		if err := dec.Decode(&link); err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("failed to decode link line: %w", err)
		}
		if err := link.Validate(); err != nil {
			return err
		}
		if err := fn(link); err != nil {
			return err
		}
	}
}
