package main

import (
	"net/http"

	"github.com/spf13/cobra"

	"jhp/internal/bindings"
	"jhp/internal/executor"
	"jhp/internal/httpserver"
	"jhp/internal/logging"
	"jhp/internal/metrics"
	"jhp/internal/registry"
	"jhp/internal/render"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a JHP document root over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
	cmd.Flags().StringVarP(&flagBind, "serve", "S", "", "bind address HOST:PORT (overrides config)")
	cmd.Flags().IntVar(&flagExecutors, "executors", 0, "number of executor workers (overrides config)")
	return cmd
}

func runServe() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log := logging.Get(logging.CategoryBoot)
	reg := registry.New(cfg.ExtensionsDir)
	installers := []bindings.Installer{
		bindings.Global(),
		bindings.LoadedModules(reg),
		bindings.Include(cfg.DocumentRoot, cfg.ExtensionsDir, reg),
	}
	pool := executor.NewPool(cfg.Executors, cfg.MailboxDepth, render.New(installers...), installers)
	pool.Start()
	defer pool.Join()

	srv := httpserver.New(cfg, pool)

	if cfg.MetricsAddr != "" {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", metrics.Handler())
		go func() {
			log.Infof("metrics listening on %s", cfg.MetricsAddr)
			if err := http.ListenAndServe(cfg.MetricsAddr, metricsMux); err != nil {
				log.Errorf("metrics server: %v", err)
			}
		}()
	}

	log.Infof("serving %s on %s", cfg.DocumentRoot, cfg.Addr())
	if err := http.ListenAndServe(cfg.Addr(), srv); err != nil {
		return &runtimeError{err}
	}
	return nil
}
