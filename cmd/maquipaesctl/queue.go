package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/jhoicas/maquipaes-api/internal/domain/entity"
)

func newQueueCmd(open opener) *cobra.Command {
	var (
		deadOnly bool
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:     "queue",
		Short:   "Lista las entradas pendientes y en dead-letter",
		GroupID: "sync",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := open(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			var entries []entity.SyncQueueEntry
			if deadOnly {
				entries, err = app.Queue.DeadLetters(ctxOf(cmd))
			} else {
				entries, err = app.Queue.All(ctxOf(cmd))
			}
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), entries)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SEQ\tID\tENTIDAD\tFILA\tOP\tESTADO\tINTENTOS\tENCOLADA\tÚLTIMO ERROR")
			for _, e := range entries {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
					e.Seq, e.ID, e.EntityType, e.EntityID, e.Operation, e.Status, e.Attempts,
					e.EnqueuedAt.Format(time.DateTime), e.LastError)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&deadOnly, "dead", false, "solo dead-letters")
	cmd.Flags().BoolVar(&asJSON, "json", false, "salida JSON")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "retry <id>",
			Short: "Devuelve una entrada dead-letter a pendiente",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				app, err := open(cmd)
				if err != nil {
					return err
				}
				defer app.Close()
				if err := app.Queue.RetryDeadLetter(ctxOf(cmd), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "entrada %s pendiente de nuevo\n", args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:   "discard <id>",
			Short: "Descarta una entrada dead-letter",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				app, err := open(cmd)
				if err != nil {
					return err
				}
				defer app.Close()
				if err := app.Queue.DiscardDeadLetter(ctxOf(cmd), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "entrada %s descartada\n", args[0])
				return nil
			},
		},
	)
	return cmd
}
