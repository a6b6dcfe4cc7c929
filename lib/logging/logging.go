// Package logging configures the slog handlers sphinxd logs through.
package logging

import (
	"fmt"
	"log/slog"
	"os"
)

// Init builds the process-wide JSON handler at the given level. An
// unparseable level falls back to info with a note on stderr.
func Init(level string) slog.Handler {
	var programLevel slog.Level
	if err := (&programLevel).UnmarshalText([]byte(level)); err != nil {
		fmt.Fprintf(os.Stderr, "invalid log level %s: %v, using info\n", level, err)
		programLevel = slog.LevelInfo
	}

	leveler := &slog.LevelVar{}
	leveler.Set(programLevel)

	return slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		AddSource: true,
		Level:     leveler,
	})
}
