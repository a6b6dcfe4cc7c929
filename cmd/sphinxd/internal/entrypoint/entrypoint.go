// Package entrypoint boots sphinxd: it reads the HCL config, opens the
// ledger backend, compiles the mint rules, and serves the JSON API.
package entrypoint

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/glyphforge/sphinx/cmd/sphinxd/internal/config"
	"github.com/glyphforge/sphinx/data"
	"github.com/glyphforge/sphinx/lib"
	"github.com/glyphforge/sphinx/lib/entropy"
	"github.com/glyphforge/sphinx/lib/ledger"
	_ "github.com/glyphforge/sphinx/lib/ledger/all"
	"github.com/glyphforge/sphinx/lib/logging"
	"github.com/glyphforge/sphinx/lib/policy"
)

type Options struct {
	ConfigFname string
}

func Main(opts Options) error {
	var cfg config.Toplevel
	if err := hclsimple.DecodeFile(opts.ConfigFname, nil, &cfg); err != nil {
		return fmt.Errorf("can't read configuration file %s:\n\n%w", opts.ConfigFname, err)
	}

	if err := cfg.Valid(); err != nil {
		return fmt.Errorf("configuration file %s is invalid:\n\n%w", opts.ConfigFname, err)
	}

	ctx := context.Background()

	store, err := ledger.Open(ctx, cfg.Store.Backend, cfg.Store.RawParameters())
	if err != nil {
		return fmt.Errorf("can't open %s ledger backend: %w", cfg.Store.Backend, err)
	}

	l := ledger.New(store)
	defer l.Close()

	pol, err := loadRules(cfg.RulesFname)
	if err != nil {
		return err
	}

	engine, err := lib.New(lib.Options{
		Ledger:  l,
		Entropy: entropy.System(cfg.SlotInterval()),
		Policy:  pol,
	})
	if err != nil {
		return err
	}

	errorLog := logging.StdlibLogger(slog.Default().Handler(), slog.LevelError)

	go func() {
		srv := &http.Server{
			Addr:     cfg.Bind.Metrics,
			Handler:  promhttp.Handler(),
			ErrorLog: errorLog,
		}
		slog.Info("metrics listening", "bind", cfg.Bind.Metrics)
		if err := srv.ListenAndServe(); err != nil {
			slog.Error("metrics server died", "err", err)
		}
	}()

	srv := &http.Server{
		Addr:     cfg.Bind.HTTP,
		Handler:  NewRouter(engine, slog.Default()),
		ErrorLog: errorLog,
	}

	slog.Info("listening on", "http", cfg.Bind.HTTP, "store", cfg.Store.Backend)
	return srv.ListenAndServe()
}

// loadRules reads the operator's rule file, or the embedded defaults when
// none is configured.
func loadRules(fname string) (*policy.Policy, error) {
	if fname == "" {
		fin, err := data.MintRules.Open(data.MintRulesFname)
		if err != nil {
			return nil, fmt.Errorf("can't open default mint rules: %w", err)
		}
		defer fin.Close()

		return policy.Load(fin, data.MintRulesFname)
	}

	fin, err := os.Open(fname)
	if err != nil {
		return nil, fmt.Errorf("can't open mint rules %s: %w", fname, err)
	}
	defer fin.Close()

	return policy.Load(fin, fname)
}
