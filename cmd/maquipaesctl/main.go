// maquipaesctl herramientas de operación: conciliación, drenado de la cola y diagnóstico.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
