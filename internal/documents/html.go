package documents

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/shopspring/decimal"
)

//go:embed templates/*.html
var templateFS embed.FS

var templateNames = map[Kind]string{
	KindBrochure:    "quotation.html",
	KindProfitSheet: "profit_sheet.html",
	KindInvoice:     "invoice.html",
	KindVoucher:     "voucher.html",
}

// HTMLTemplates renders documents to standalone HTML pages.
type HTMLTemplates struct {
	pages map[Kind]*template.Template
}

func NewHTMLTemplates(currency string) (*HTMLTemplates, error) {
	funcs := template.FuncMap{
		"money": func(v decimal.Decimal) string { return FormatMoney(currency, v) },
		"date": func(v any) string {
			switch t := v.(type) {
			case time.Time:
				return formatDate(t)
			case *time.Time:
				if t == nil {
					return ""
				}
				return formatDate(*t)
			}
			return ""
		},
	}
	pages := make(map[Kind]*template.Template, len(templateNames))
	for kind, name := range templateNames {
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/base.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[kind] = tmpl
	}
	return &HTMLTemplates{pages: pages}, nil
}

func (t *HTMLTemplates) Execute(doc Document) ([]byte, error) {
	tmpl, ok := t.pages[doc.Kind()]
	if !ok {
		return nil, fmt.Errorf("no template for %s", doc.Kind())
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, templateNames[doc.Kind()], doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
