// Package storage opens the embedded BadgerDB used for users and
// permission entries.
package storage

import (
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"github.com/drivekeep/drivekeep/internal/infrastructure/logging"
)

// Open opens (or creates) the database at dir with logging routed
// through zap.
func Open(dir string, log *logging.Logger) (*badger.DB, error) {
	opts := badger.DefaultOptions(dir).
		WithLogger(&badgerLogger{log: log.Named("badger").Sugar()})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open database at %s: %w", dir, err)
	}
	return db, nil
}

// badgerLogger adapts zap to badger.Logger. Badger's INFO output is
// chatty, so it is demoted to debug.
type badgerLogger struct {
	log *zap.SugaredLogger
}

func (b *badgerLogger) Errorf(format string, args ...interface{}) {
	b.log.Errorf(format, args...)
}

func (b *badgerLogger) Warningf(format string, args ...interface{}) {
	b.log.Warnf(format, args...)
}

func (b *badgerLogger) Infof(format string, args ...interface{}) {
	b.log.Debugf(format, args...)
}

func (b *badgerLogger) Debugf(format string, args ...interface{}) {
	b.log.Debugf(format, args...)
}
