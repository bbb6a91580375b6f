package ingest

import (
	"errors"
	"fmt"
)

// RecordError marks a single malformed log record: an unparseable envelope
// or content that breaks reference resolution. Recoverable - the ingestion
// loop skips the record and continues, so one bad record never halts the
// stream.
type RecordError struct {
	// Seq is the log sequence of the offending record.
	Seq int64
	// Err is the underlying parse or resolution failure.
	Err error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record at seq %d: %v", e.Seq, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// IsRecordError returns true if the error is a recoverable per-record
// ingestion error. Uses errors.As to handle wrapped errors.
func IsRecordError(err error) bool {
	var re *RecordError
	return errors.As(err, &re)
}
