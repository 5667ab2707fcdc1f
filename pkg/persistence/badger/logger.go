package badger

import (
	"strings"

	badgerdb "github.com/dgraph-io/badger/v3"
	"go.uber.org/zap"
)

// claimStoreLogger routes badger's printf-style logging into the claim store's
// zap logger. Badger reports compactions and value log GC at info level, which
// is demoted to debug so claim logs are not drowned out.
type claimStoreLogger struct {
	sugar *zap.SugaredLogger
}

var _ badgerdb.Logger = (*claimStoreLogger)(nil)

func newClaimStoreLogger(logger *zap.Logger) *claimStoreLogger {
	return &claimStoreLogger{sugar: logger.Named("badger").Sugar()}
}

func (l *claimStoreLogger) Errorf(format string, args ...interface{}) {
	l.sugar.Errorf(trimNewline(format), args...)
}

func (l *claimStoreLogger) Warningf(format string, args ...interface{}) {
	l.sugar.Warnf(trimNewline(format), args...)
}

func (l *claimStoreLogger) Infof(format string, args ...interface{}) {
	l.sugar.Debugf(trimNewline(format), args...)
}

func (l *claimStoreLogger) Debugf(format string, args ...interface{}) {
	l.sugar.Debugf(trimNewline(format), args...)
}

func trimNewline(format string) string {
	return strings.TrimSuffix(format, "\n")
}
