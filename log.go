package nedb

import "go.uber.org/zap"

// nopLogger is used when a Store is constructed without an explicit
// *zap.Logger so the library never writes to stderr unasked.
func nopLogger() *zap.Logger {
	return zap.NewNop()
}
