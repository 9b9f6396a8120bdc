package output

import (
	"bytes"
	"testing"
)

func TestSetupLogger_Levels(t *testing.T) {
	tests := []struct {
		name                    string
		quiet, verbose, debug   bool
		debugOK, infoOK, warnOK bool
		errorOK                 bool
	}{
		{name: "default", warnOK: true, errorOK: true},
		{name: "verbose", verbose: true, infoOK: true, warnOK: true, errorOK: true},
		{name: "debug", debug: true, debugOK: true, infoOK: true, warnOK: true, errorOK: true},
		{name: "quiet", quiet: true},
		{name: "quiet overrides debug", quiet: true, debug: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := SetupLogger(tt.quiet, tt.verbose, tt.debug, &buf)

			check := func(level string, emit func(string, ...any), want bool) {
				t.Helper()
				buf.Reset()
				emit(level + " message")
				got := bytes.Contains(buf.Bytes(), []byte(level+" message"))
				if got != want {
					t.Errorf("%s logged = %v, want %v", level, got, want)
				}
			}
			check("debug", logger.Debug, tt.debugOK)
			check("info", logger.Info, tt.infoOK)
			check("warn", logger.Warn, tt.warnOK)
			check("error", logger.Error, tt.errorOK)
		})
	}
}
