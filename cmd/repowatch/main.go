package main

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/yubzen/repowatch/internal/config"
	"github.com/yubzen/repowatch/internal/engine"
	"github.com/yubzen/repowatch/internal/logging"
	"github.com/yubzen/repowatch/internal/tui"
	"github.com/yubzen/repowatch/internal/vcs"
)

var version = "dev"

type runtimeDeps struct {
	ctx    context.Context
	cancel context.CancelFunc
	eng    *engine.Engine
	logC   io.Closer
}

func (r *runtimeDeps) Close() {
	if r == nil {
		return
	}
	if r.eng != nil {
		r.eng.Stop()
	}
	if r.cancel != nil {
		r.cancel()
	}
	if r.logC != nil {
		_ = r.logC.Close()
	}
}

func restoreTerminalState() {
	fmt.Fprint(os.Stderr, "\x1b[?25h\x1b[0m")
}

func bootstrapRuntime(cfg *config.Config) (*runtimeDeps, error) {
	rt := &runtimeDeps{}
	rt.logC = logging.Setup(cfg.LogFile)
	rt.ctx, rt.cancel = context.WithCancel(context.Background())

	backend, err := vcs.Open(cfg.RepoPath)
	if err != nil {
		rt.Close()
		return nil, err
	}
	cfg.LoadRepoOverrides(backend.Root())

	rt.eng = engine.New(cfg, backend)
	if err := rt.eng.Start(rt.ctx); err != nil {
		rt.Close()
		return nil, err
	}
	return rt, nil
}

func main() {
	var repoPath string
	var refresh float64

	rootCmd := &cobra.Command{
		Use:   "repowatch",
		Short: "Live dashboard for uncommitted and recently committed files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if repoPath != "" {
				cfg.RepoPath = repoPath
			}
			if refresh > 0 {
				cfg.RefreshIntervalSeconds = refresh
			}
			cfg.Normalize()

			rt, err := bootstrapRuntime(cfg)
			if err != nil {
				return err
			}
			defer rt.Close()

			app := tui.NewAppModel(rt.eng)
			p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(rt.ctx))
			_, err = p.Run()
			return err
		},
	}

	rootCmd.Flags().StringVar(&repoPath, "repo", "", "Repository path to watch (default: current directory)")
	rootCmd.Flags().Float64Var(&refresh, "refresh", 0, "Status refresh interval in seconds")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the repowatch version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("repowatch", version)
		},
	}

	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		restoreTerminalState()
		os.Exit(1)
	}
	restoreTerminalState()
}
