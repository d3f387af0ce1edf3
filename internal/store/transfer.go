package store

import (
	"go.uber.org/zap"
)

// Transfer moves all records from src to dst: read src, merge into dst,
// then wipe src to an empty array. Returns the number of records moved.
// The wipe only happens after the destination write succeeds, so a failure
// can duplicate work on retry but never lose records.
func Transfer(src, dst *Store) (int, error) {
	records, err := src.ReadRaw()
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}

	if _, err := dst.Append(records); err != nil {
		return 0, err
	}

	if err := src.Wipe(); err != nil {
		return 0, err
	}

	src.logger.Info("records transferred",
		zap.Int("count", len(records)),
		zap.String("destination", dst.path))

	return len(records), nil
}
