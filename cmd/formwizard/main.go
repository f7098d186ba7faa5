package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-formwizard"
	"github.com/goliatone/go-formwizard/internal/config"
	"github.com/goliatone/go-formwizard/internal/logging"
	"github.com/goliatone/go-formwizard/pkg/notify"
	"github.com/goliatone/go-formwizard/pkg/renderers/tui"
	"github.com/goliatone/go-formwizard/pkg/storage"
	"github.com/goliatone/go-formwizard/pkg/wizard"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if errors.Is(err, tui.ErrAborted) {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type app struct {
	configPath string
	cfg        config.Config
	log        *zap.Logger
	closeLog   func() error
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "formwizard",
		Short:         "Multi-step onboarding form in the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var opts []config.Option
			if a.configPath != "" {
				opts = append(opts, config.WithFile(a.configPath))
			}
			cfg, err := config.Load(opts...)
			if err != nil {
				return err
			}
			log, closeLog, err := logging.New(cfg.Log, logging.WithDevelopment(cfg.IsDevelopment()))
			if err != nil {
				return err
			}
			a.cfg, a.log, a.closeLog = cfg, log, closeLog
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if a.closeLog != nil {
				return a.closeLog()
			}
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "YAML configuration file")

	root.AddCommand(
		a.runCmd(),
		a.statusCmd(),
		a.exportCmd(),
		a.resetCmd(),
	)
	return root
}

func (a *app) open(ctx context.Context, opts ...formwizard.Option) (*formwizard.Session, error) {
	return formwizard.Open(ctx, a.cfg, append([]formwizard.Option{formwizard.WithLogger(a.log)}, opts...)...)
}

func (a *app) runCmd() *cobra.Command {
	var downloadDir string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fill in the form, resuming saved answers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			driver := tui.NewSurveyDriver(cmd.OutOrStdout())
			theme := tui.DefaultTheme()

			session, err := a.open(ctx, formwizard.WithNotifier(tui.NewNotifier(driver, theme)))
			if err != nil {
				return err
			}
			defer session.Close(context.WithoutCancel(ctx))

			if session.Store.IsCompleted(ctx) {
				at, _ := session.Store.CompletedAt(ctx)
				fmt.Fprintf(cmd.OutOrStdout(), "This form was submitted on %s. Run `formwizard reset` to start a new one.\n", at.Local().Format("January 2, 2006 3:04 PM"))
				return nil
			}
			session.Controller.Restore(ctx)

			runner, err := tui.New(session.Controller, session.Registry,
				tui.WithPromptDriver(driver),
				tui.WithTheme(theme),
				tui.WithLogger(a.log.Named("tui")),
				tui.WithDownloadDir(downloadDir),
			)
			if err != nil {
				return err
			}
			outcome, err := runner.Run(ctx)
			if err != nil {
				return err
			}
			if outcome == tui.OutcomeSaved {
				fmt.Fprintln(cmd.OutOrStdout(), "Progress saved. Run `formwizard run` to continue.")
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&downloadDir, "download-dir", "d", ".", "directory for the post-submission download")
	return cmd
}

func (a *app) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show saved progress",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			session, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer session.Close(ctx)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Store:     %s\n", a.cfg.Store.Driver)
			fmt.Fprintf(out, "Progress:  %d%%\n", session.Store.Progress(ctx))
			if at, ok := session.Store.LastSaved(ctx); ok {
				fmt.Fprintf(out, "Saved at:  %s\n", at.Local().Format("January 2, 2006 3:04 PM"))
			} else {
				fmt.Fprintln(out, "Saved at:  never")
			}
			if at, ok := session.Store.CompletedAt(ctx); ok {
				fmt.Fprintf(out, "Submitted: %s\n", at.Local().Format("January 2, 2006 3:04 PM"))
			} else {
				fmt.Fprintln(out, "Submitted: no")
			}
			return nil
		},
	}
}

func (a *app) exportCmd() *cobra.Command {
	var (
		format string
		output string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write saved answers as json, csv or text",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			session, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer session.Close(ctx)

			data, err := session.Store.Export(ctx, storage.ParseFormat(format))
			if err != nil {
				return err
			}
			if output == "" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			notify.NewLogger(a.log).Notify(notify.New(notify.KindSuccess, notify.TopicSession, "Data downloaded successfully!"))
			fmt.Fprintf(cmd.OutOrStdout(), "Form data written to %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(storage.FormatJSON), "json, csv or text")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	return cmd
}

func (a *app) resetCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear saved answers and start over",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			session, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer session.Close(ctx)

			var confirmer wizard.Confirmer = wizard.Always(true)
			if !yes {
				driver := tui.NewSurveyDriver(cmd.OutOrStdout())
				confirmer = wizard.ConfirmFunc(func(ctx context.Context, msg string) (bool, error) {
					return driver.Confirm(ctx, tui.ConfirmConfig{Message: msg})
				})
			}
			done, err := session.Controller.Reset(ctx, confirmer)
			if err != nil {
				return err
			}
			if done {
				fmt.Fprintln(cmd.OutOrStdout(), wizard.MessageReset)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}
