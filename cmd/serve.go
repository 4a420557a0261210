package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/abhisek/adaptiq/internal/api"
	"github.com/abhisek/adaptiq/internal/logger"
	"github.com/abhisek/adaptiq/internal/session"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the assessment HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := newLogger(logger.ModeDev)
		if err != nil {
			return err
		}
		defer log.Sync()

		rt, err := openRuntime(cmd, log)
		if err != nil {
			return err
		}
		defer rt.Close()

		cfg := api.DefaultConfig()
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Addr = addr
		}
		if ttl, _ := cmd.Flags().GetDuration("session-ttl"); ttl > 0 {
			cfg.SessionTTL = ttl
		}
		if origins, _ := cmd.Flags().GetStringSlice("allowed-origins"); len(origins) > 0 {
			cfg.AllowedOrigins = origins
		}

		srv := api.NewServer(cfg, api.Deps{
			Catalog:       rt.catalog,
			Engine:        rt.engine,
			Grader:        rt.grader,
			Explainer:     rt.sessionExplainer(),
			SessionConfig: rt.sessCfg,
			Profiles:      rt.store.ProfileRepo(),
			Recorder:      rt.recorder,
			Registry:      session.NewRegistry(),
		}, log)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return srv.ListenAndServe(ctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default :8080)")
	serveCmd.Flags().Duration("session-ttl", 0, "Drop sessions idle for longer than this (default 2h)")
	serveCmd.Flags().StringSlice("allowed-origins", nil, "CORS allowed origins (default *)")
	serveCmd.Flags().Int("max-questions", 0, "Questions per assessment (0 uses the default)")
}

