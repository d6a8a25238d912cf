package logging

import (
	"go.uber.org/zap"
)

// New builds the application logger. Debug mode uses zap's development
// output (human-readable, debug level); otherwise production JSON at
// info level.
func New(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
