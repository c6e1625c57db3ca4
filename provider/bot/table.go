package bot

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/sig-0/twdrates/rates"
)

// ExtractTable extracts the rate rows from the given HTML.
// A missing table, or a document that can't be parsed, yields no rows
func ExtractTable(r io.Reader, layout Layout) []rates.RateRow {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return []rates.RateRow{}
	}

	return ExtractDocument(doc, layout)
}

// ExtractDocument extracts the rate rows from the parsed document
func ExtractDocument(doc *goquery.Document, layout Layout) []rates.RateRow {
	rows := make([]rates.RateRow, 0, 32)

	table := doc.Find(layout.TableSelector).First()
	if table.Length() == 0 {
		return rows
	}

	table.Find("tr").Each(func(i int, tr *goquery.Selection) {
		// Header row
		if i == 0 {
			return
		}

		cells := tr.ChildrenFiltered("td")
		if cells.Length() == 0 {
			return
		}

		label := cellText(cells, layout.Currency)

		rows = append(rows, rates.NewRateRow(
			label,
			rates.ExtractCode(label),
			rates.CleanCell(cellText(cells, layout.CashBuy)),
			rates.CleanCell(cellText(cells, layout.CashSell)),
			rates.CleanCell(cellText(cells, layout.SpotBuy)),
			rates.CleanCell(cellText(cells, layout.SpotSell)),
		))
	})

	return rows
}

// cellText returns the text of the cell at the given index,
// or an empty string if the row is too short
func cellText(cells *goquery.Selection, idx int) string {
	if idx < 0 || idx >= cells.Length() {
		return ""
	}

	return joinedText(cells.Eq(idx))
}

// joinedText joins all the non-blank text nodes of the selection with a single space.
// The board repeats the label in phone / desktop variants, in separate elements
func joinedText(sel *goquery.Selection) string {
	parts := make([]string, 0, 4)

	var walk func(n *html.Node)

	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if txt := strings.Join(strings.Fields(n.Data), " "); txt != "" {
				parts = append(parts, txt)
			}

			return
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	for _, n := range sel.Nodes {
		walk(n)
	}

	return strings.Join(parts, " ")
}
