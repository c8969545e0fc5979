package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Structurer/nav-front-build/internal/app"
	"github.com/Structurer/nav-front-build/internal/config"
	"github.com/Structurer/nav-front-build/internal/domain"
	"github.com/Structurer/nav-front-build/internal/logger"
	"github.com/Structurer/nav-front-build/internal/transfer"
	"github.com/Structurer/nav-front-build/internal/version"
)

// passwordEnv is read when --password is not given.
const passwordEnv = "NAV_UPLOAD_PASSWORD"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "navgrid",
		Short: "Icon navigation grid with a local cache and an optional remote store",
		Long: `navgrid serves a categorized grid of link tiles.

The catalog is cached locally (sqlite or redis) and can be synchronized with a
remote HTTP store. All settings come from NAV_* environment variables.`,
		SilenceUsage: true,
		RunE:         runServe,
	}

	root.AddCommand(
		&cobra.Command{Use: "serve", Short: "Run the HTTP server (default)", Args: cobra.NoArgs, RunE: runServe},
		&cobra.Command{Use: "pull", Short: "Replace the local catalog with the remote one", Args: cobra.NoArgs, RunE: runPull},
		withPassword(&cobra.Command{Use: "push", Short: "Upload the local catalog to the remote store", Args: cobra.NoArgs, RunE: runPush}),
		withPassword(&cobra.Command{Use: "init-remote", Short: "Overwrite the remote catalog with the seed", Args: cobra.NoArgs, RunE: runInitRemote}),
		newExportCmd(),
		&cobra.Command{Use: "import <file>", Short: "Replace the local catalog with a backup file", Args: cobra.ExactArgs(1), RunE: runImport},
		&cobra.Command{Use: "reset", Short: "Clear the local catalog and reload it", Args: cobra.NoArgs, RunE: runReset},
		&cobra.Command{
			Use:   "version",
			Short: "Print build information",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintln(cmd.OutOrStdout(), version.String())
			},
		},
	)
	return root
}

func withPassword(cmd *cobra.Command) *cobra.Command {
	cmd.Flags().String("password", "", "upload password (default $"+passwordEnv+")")
	return cmd
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the current catalog as a backup file",
		Args:  cobra.NoArgs,
		RunE:  runExport,
	}
	cmd.Flags().StringP("out", "o", "", "output file (default nav_data_<date>.json, - for stdout)")
	return cmd
}

func setup() (*config.Config, logger.Logger) {
	cfg := config.Load()
	return cfg, logger.New(cfg.LogLevel, cfg.PrettyLog)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log := setup()
	defer func() { _ = log.Sync() }()

	a, err := app.New(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	return a.Run(cmd.Context())
}

// withRuntime runs fn against an opened runtime. When bootstrap is set the
// session is loaded first (local, then seed), without remote adoption.
func withRuntime(ctx context.Context, bootstrap bool, fn func(rt *app.Runtime) error) error {
	cfg, log := setup()
	defer func() { _ = log.Sync() }()

	rt, err := app.NewRuntime(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer rt.Close()

	if bootstrap {
		if _, err := rt.Coordinator.Bootstrap(ctx); err != nil {
			return fmt.Errorf("bootstrap catalog: %w", err)
		}
	}
	return fn(rt)
}

func runPull(cmd *cobra.Command, _ []string) error {
	return withRuntime(cmd.Context(), false, func(rt *app.Runtime) error {
		res, err := rt.Coordinator.Pull(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "pulled %d entries\n", res.Entries)
		if !res.Durable {
			return errors.New("catalog downloaded but not saved locally")
		}
		return nil
	})
}

func password(cmd *cobra.Command) string {
	p, _ := cmd.Flags().GetString("password")
	if p == "" {
		p = os.Getenv(passwordEnv)
	}
	return strings.TrimSpace(p)
}

func runPush(cmd *cobra.Command, _ []string) error {
	return withRuntime(cmd.Context(), false, func(rt *app.Runtime) error {
		if _, err := rt.Coordinator.Push(cmd.Context(), password(cmd)); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "upload complete")
		return nil
	})
}

func runInitRemote(cmd *cobra.Command, _ []string) error {
	return withRuntime(cmd.Context(), false, func(rt *app.Runtime) error {
		if _, err := rt.Coordinator.InitRemote(cmd.Context(), password(cmd)); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "remote initialized from seed")
		return nil
	})
}

func runExport(cmd *cobra.Command, _ []string) error {
	return withRuntime(cmd.Context(), true, func(rt *app.Runtime) error {
		doc, err := rt.Coordinator.LocalDocument(cmd.Context())
		if err != nil {
			return err
		}

		out, _ := cmd.Flags().GetString("out")
		if out == "-" {
			return transfer.Export(cmd.OutOrStdout(), doc)
		}
		if out == "" {
			out = transfer.FileName(time.Now())
		}
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("create export file: %w", err)
		}
		if err := transfer.Export(f, doc); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close export file: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "exported %d entries to %s\n", len(doc.NavList), out)
		return nil
	})
}

func runImport(cmd *cobra.Command, args []string) error {
	doc, err := readBackup(args[0])
	if err != nil {
		return err
	}
	return withRuntime(cmd.Context(), true, func(rt *app.Runtime) error {
		res, err := rt.Coordinator.Import(cmd.Context(), doc)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d entries\n", len(doc.NavList))
		if !res.Durable {
			return errors.New("catalog imported but not saved locally")
		}
		return nil
	})
}

func readBackup(path string) (doc domain.Document, err error) {
	var r io.ReadCloser
	if path == "-" {
		r = io.NopCloser(os.Stdin)
	} else if r, err = os.Open(path); err != nil {
		return doc, fmt.Errorf("open backup: %w", err)
	}
	defer r.Close()
	return transfer.Decode(r)
}

func runReset(cmd *cobra.Command, _ []string) error {
	return withRuntime(cmd.Context(), false, func(rt *app.Runtime) error {
		res, err := rt.Coordinator.Reset(cmd.Context())
		if err != nil {
			return err
		}
		if res.NeedsRemote {
			if _, err := rt.Coordinator.AdoptRemote(cmd.Context(), res.Revision); err != nil {
				rt.Logger.Warn("remote catalog not adopted after reset", logger.Error(err))
			}
		}
		snap := rt.Coordinator.Session().Snapshot()
		fmt.Fprintf(cmd.OutOrStdout(), "reset complete: %d entries from %s\n", len(snap.Doc.NavList), snap.Source)
		return nil
	})
}
