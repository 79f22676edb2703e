package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jhoicas/maquipaes-api/internal/infrastructure/pdf"
	"github.com/jhoicas/maquipaes-api/internal/infrastructure/xmlexport"
)

// errDiscrepancies salida distinta de cero para usar el comando en cron/CI.
var errDiscrepancies = errors.New("la conciliación encontró discrepancias")

func newReconcileCmd(open opener) *cobra.Command {
	var (
		format string
		out    string
		strict bool
	)
	cmd := &cobra.Command{
		Use:     "reconcile",
		Short:   "Verifica reportes, libro de inventario y ventas automáticas",
		GroupID: "ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := open(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			rep, err := app.Checker.Run(ctxOf(cmd))
			if err != nil {
				return err
			}

			var body []byte
			switch format {
			case "json":
				w := cmd.OutOrStdout()
				if out != "" {
					f, err := os.Create(out)
					if err != nil {
						return err
					}
					defer f.Close()
					w = f
				}
				if err := writeJSON(w, rep); err != nil {
					return err
				}
			case "xml":
				if body, err = xmlexport.Reconciliation(rep); err != nil {
					return err
				}
			case "pdf":
				if out == "" {
					return fmt.Errorf("--format pdf requiere --out")
				}
				if body, err = pdf.NewReconciliationPDF("").Generate(ctxOf(cmd), rep); err != nil {
					return err
				}
			default:
				return fmt.Errorf("formato desconocido %q (json, xml, pdf)", format)
			}
			if body != nil {
				if out != "" {
					if err := os.WriteFile(out, body, 0o644); err != nil {
						return err
					}
				} else if _, err := cmd.OutOrStdout().Write(body); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "%d discrepancias (fuente %s)\n", len(rep.Discrepancies), rep.Source)
			if strict && !rep.Consistent() {
				return errDiscrepancies
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "json | xml | pdf")
	cmd.Flags().StringVarP(&out, "out", "o", "", "archivo de salida (por defecto stdout)")
	cmd.Flags().BoolVar(&strict, "strict", false, "terminar con error si hay discrepancias")
	return cmd
}
