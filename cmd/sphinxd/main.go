package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/facebookgo/flagenv"

	"github.com/glyphforge/sphinx"
	"github.com/glyphforge/sphinx/cmd/sphinxd/internal/entrypoint"
	"github.com/glyphforge/sphinx/lib/logging"
)

var (
	configFname = flag.String("config", "./sphinxd.hcl", "Configuration file (HCL), see docs")
	slogLevel   = flag.String("slog-level", "INFO", "logging level (see https://pkg.go.dev/log/slog#hdr-Levels)")
	versionFlag = flag.Bool("version", false, "if true, show version information then quit")
)

func main() {
	flagenv.Parse()
	flag.Parse()

	if *versionFlag {
		fmt.Println("Sphinxd", sphinx.Version)
		return
	}

	// Suppress the TLS handshake probe spam every public listener gets.
	handler := logging.NewFilterHandler(
		logging.Init(*slogLevel),
		logging.FilterFunc(func(ctx context.Context, r *slog.Record) bool {
			return !strings.Contains(r.Message, "http: TLS handshake error")
		}),
	)
	slog.SetDefault(slog.New(handler))

	if err := entrypoint.Main(entrypoint.Options{
		ConfigFname: *configFname,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
