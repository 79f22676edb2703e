package main

import (
	"context"
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/jhoicas/maquipaes-api/internal/bootstrap"
	"github.com/jhoicas/maquipaes-api/pkg/config"
	"github.com/jhoicas/maquipaes-api/pkg/logger"
)

// opener arma las dependencias desde la configuración del entorno.
type opener func(cmd *cobra.Command) (*bootstrap.App, error)

func newRootCmd() *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:          "maquipaesctl",
		Short:        "Operación del libro de flota: conciliación y cola de sincronización",
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "logs de depuración en stderr")

	open := func(cmd *cobra.Command) (*bootstrap.App, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		level := "warn"
		if verbose {
			level = "debug"
		}
		log := logger.New(logger.Config{Env: "development", Level: level, Out: cmd.ErrOrStderr()})
		return bootstrap.Build(ctxOf(cmd), cfg, log.Zerolog())
	}

	root.AddGroup(
		&cobra.Group{ID: "ledger", Title: "Libro:"},
		&cobra.Group{ID: "sync", Title: "Sincronización:"},
	)
	root.AddCommand(newReconcileCmd(open), newSyncCmd(open), newQueueCmd(open))
	return root
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func ctxOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
