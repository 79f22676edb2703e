package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSyncCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:     "sync",
		Short:   "Hace ping al remoto y drena la cola de sincronización",
		GroupID: "sync",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := open(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			if app.Remote == nil {
				return fmt.Errorf("sin remoto configurado: nada que sincronizar")
			}
			snap := app.Conn.Probe(ctxOf(cmd), app.Remote)
			if !snap.Reachable() {
				return fmt.Errorf("remoto inalcanzable; la cola queda intacta")
			}
			res, err := app.Queue.Process(ctxOf(cmd))
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}
}
