package bot

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"github.com/sig-0/twdrates/rates"
)

// Field maps a CSS selector (relative to the schema base) to a record field
type Field struct {
	Name     string
	Selector string
}

// Schema is a declarative page-to-record mapping.
// Every element matched by BaseSelector yields a single record
type Schema struct {
	Name         string
	BaseSelector string
	Fields       []Field
}

// SchemaFromLayout builds the rate board schema for the given layout
func SchemaFromLayout(layout Layout) Schema {
	// Columns count td cells only, same as the table extractor
	column := func(idx int) string {
		return fmt.Sprintf("td:nth-of-type(%d)", idx+1)
	}

	return Schema{
		Name:         "匯率資訊",
		BaseSelector: layout.TableSelector + " tr",
		Fields: []Field{
			{Name: rates.FieldCurrency, Selector: column(layout.Currency)},
			{Name: rates.FieldCashBuy, Selector: column(layout.CashBuy)},
			{Name: rates.FieldCashSell, Selector: column(layout.CashSell)},
			{Name: rates.FieldSpotBuy, Selector: column(layout.SpotBuy)},
			{Name: rates.FieldSpotSell, Selector: column(layout.SpotSell)},
		},
	}
}

// Extract runs the schema against the document.
// Fields without a matching element are left out of the record,
// and records with no values at all (ex. header rows) are dropped
func (s Schema) Extract(doc *goquery.Document) []rates.Record {
	records := make([]rates.Record, 0, 32)

	doc.Find(s.BaseSelector).Each(func(_ int, base *goquery.Selection) {
		var (
			record = make(rates.Record, len(s.Fields))
			filled bool
		)

		for _, field := range s.Fields {
			sel := base.Find(field.Selector).First()
			if sel.Length() == 0 {
				continue
			}

			value := joinedText(sel)
			record[field.Name] = value

			if value != "" {
				filled = true
			}
		}

		if !filled {
			return
		}

		records = append(records, record)
	})

	return records
}
