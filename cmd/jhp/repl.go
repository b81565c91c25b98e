package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"jhp/internal/bindings"
	"jhp/internal/executor"
	"jhp/internal/registry"
	"jhp/internal/render"
	"jhp/internal/replui"
)

func replCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Interactively evaluate scripts against a document root",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepl()
		},
	}
}

func runRepl() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	reg := registry.New(cfg.ExtensionsDir)
	installers := []bindings.Installer{
		bindings.Global(),
		bindings.LoadedModules(reg),
		bindings.Include(cfg.DocumentRoot, cfg.ExtensionsDir, reg),
	}
	pool := executor.NewPool(1, cfg.MailboxDepth, render.New(installers...), installers)
	pool.Start()
	defer pool.Join()

	sessionID := uuid.NewString()
	eval := func(source string) (string, error) {
		result := pool.EvalAndWait(&executor.EvalRequest{SessionID: sessionID, Source: source})
		return result.Value, result.Err
	}

	program := tea.NewProgram(replui.New(eval), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return &runtimeError{fmt.Errorf("repl: %w", err)}
	}
	return nil
}
