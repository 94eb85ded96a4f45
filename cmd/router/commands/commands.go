// Package commands implements the ebs-router CLI subcommands.
package commands

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/ayhangulbjk/ebs-insight/pkg/catalog"
	"github.com/ayhangulbjk/ebs-insight/pkg/intent"
	"github.com/ayhangulbjk/ebs-insight/pkg/observability/logging"
)

// NewValidateCmd creates the catalog healthcheck command. It loads and
// validates every control file and reports all problems at once.
func NewValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the control catalog",
		Long:  `Load every control JSON file, check required fields, intent values and duplicate IDs, and report all problems.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			snap, err := catalog.Load(cfg.CatalogDir)
			if err != nil {
				var verr *catalog.ValidationError
				if errors.As(err, &verr) {
					fmt.Fprintf(cmd.ErrOrStderr(), "Catalog validation FAILED (%d problems):\n", len(verr.Problems))
					for _, p := range verr.Problems {
						fmt.Fprintf(cmd.ErrOrStderr(), "  ✗ %s\n", p)
					}
				}
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Catalog OK: %d controls (snapshot=%s)\n", snap.Len(), snap.Version())
			for _, c := range snap.Controls() {
				fmt.Fprintf(cmd.OutOrStdout(), "  ✓ %s (intent=%s, keywords=%d, queries=%d)\n",
					c.ControlID, c.Intent, len(c.Keywords.All()), len(c.Queries))
			}
			return nil
		},
	}
}

// NewClassifyCmd creates the classify command: prompt in, IntentResult out.
func NewClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <prompt>",
		Short: "Classify a prompt's intent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			snap, err := catalog.Load(cfg.CatalogDir)
			if err != nil {
				return err
			}

			model := intent.TrainModel(snap, cfg.Classifier.ExtraNegativeSamples)
			classifier := intent.NewClassifier(model, cfg.Classifier)

			return printJSON(cmd, classifier.Classify(args[0]))
		},
	}
}

// NewRouteCmd creates the route command: a full engine pass over one prompt.
func NewRouteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "route <prompt>",
		Short: "Route a prompt to a diagnostic control",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			engine, _, _, err := buildEngine(cfg)
			if err != nil {
				return err
			}

			return printJSON(cmd, engine.Handle(cmd.Context(), args[0]))
		},
	}
}

// NewReplCmd creates the interactive session command: prompts from stdin,
// catalog hot reload via fsnotify, prometheus metrics endpoint.
func NewReplCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Interactive routing session with catalog hot reload",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			engine, store, classifier, err := buildEngine(cfg)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			// Catalog watcher: new snapshots retrain the classifier model
			// and swap it atomically.
			watcher := catalog.NewWatcher(cfg.CatalogDir, store)
			go func() {
				if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					logging.Errorf("Catalog watcher stopped: %v", err)
				}
			}()
			go func() {
				for snap := range store.WatchUpdates() {
					classifier.ReplaceModel(intent.TrainModel(snap, cfg.Classifier.ExtraNegativeSamples))
				}
			}()

			go func() {
				mux := http.NewServeMux()
				mux.Handle("/metrics", promhttp.Handler())
				addr := fmt.Sprintf(":%d", cfg.MetricsPort)
				logging.Infof("Metrics server listening on %s", addr)
				if err := http.ListenAndServe(addr, mux); err != nil {
					logging.Errorf("Metrics server error: %v", err)
				}
			}()

			fmt.Fprintln(cmd.OutOrStdout(), "Enter a prompt (empty line to quit):")
			scanner := bufio.NewScanner(os.Stdin)
			for scanner.Scan() {
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					break
				}
				if err := printJSON(cmd, engine.Handle(ctx, line)); err != nil {
					return err
				}
			}
			return scanner.Err()
		},
	}
	return cmd
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
