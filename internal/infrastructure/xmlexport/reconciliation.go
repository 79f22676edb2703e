// Package xmlexport serializa el informe de conciliación a XML para auditoría externa.
package xmlexport

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/beevik/etree"

	"github.com/jhoicas/maquipaes-api/internal/application/reconciliation"
)

// Namespace del documento de conciliación.
const Namespace = "urn:maquipaes:conciliacion:1"

// Reconciliation construye el documento:
//
//	<Conciliacion xmlns=... generado=... fuente=... consistente=...>
//	  <Resumen reportes= movimientos= ventas= saldos=/>
//	  <Discrepancias>
//	    <Discrepancia tipo= entidad= id=>
//	      <Esperado/><Actual/><Mensaje/>
//	    </Discrepancia>
//	  </Discrepancias>
//	</Conciliacion>
func Reconciliation(rep reconciliation.Report) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("Conciliacion")
	root.CreateAttr("xmlns", Namespace)
	root.CreateAttr("generado", rep.GeneratedAt.UTC().Format(time.RFC3339))
	root.CreateAttr("fuente", string(rep.Source))
	root.CreateAttr("consistente", strconv.FormatBool(rep.Consistent()))

	sum := root.CreateElement("Resumen")
	sum.CreateAttr("reportes", strconv.Itoa(rep.Reports))
	sum.CreateAttr("movimientos", strconv.Itoa(rep.Movements))
	sum.CreateAttr("ventas", strconv.Itoa(rep.Sales))
	sum.CreateAttr("saldos", strconv.Itoa(rep.Items))
	sum.CreateAttr("discrepancias", strconv.Itoa(len(rep.Discrepancies)))

	list := root.CreateElement("Discrepancias")
	for _, d := range rep.Discrepancies {
		el := list.CreateElement("Discrepancia")
		el.CreateAttr("tipo", string(d.Kind))
		el.CreateAttr("entidad", d.EntityType)
		el.CreateAttr("id", d.EntityID)
		el.CreateElement("Esperado").SetText(d.Expected)
		el.CreateElement("Actual").SetText(d.Actual)
		if d.Message != "" {
			el.CreateElement("Mensaje").SetText(d.Message)
		}
	}

	doc.Indent(2)
	var out bytes.Buffer
	if _, err := doc.WriteTo(&out); err != nil {
		return nil, fmt.Errorf("xmlexport: serializar: %w", err)
	}
	return out.Bytes(), nil
}
