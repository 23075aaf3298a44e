// Package receipt формирует текстовый чек заказа для 80-мм принтера.
package receipt

import (
	"fmt"
	"strings"

	"github.com/mmeshcher/kitchen-display/internal/model"
)

const width = 32

// Render возвращает чек заказа в виде моноширинного текста.
func Render(o model.Order, kitchen, branch string) string {
	var b strings.Builder

	writeCentered(&b, "*** "+kitchen+" ***")
	if branch != "" {
		writeCentered(&b, branch)
	}
	b.WriteString(strings.Repeat("-", width) + "\n")

	writeLine(&b, "Order #"+o.ID, string(o.Type))
	if o.Type == model.OrderTypeDineIn && o.Table != "" {
		writeLine(&b, "Table", o.Table)
	}
	writeLine(&b, o.Date, o.Time)
	b.WriteString(strings.Repeat("-", width) + "\n")

	for _, it := range o.Items {
		writeLine(&b, fmt.Sprintf("%d x %s", it.Quantity, it.Name), money(it.Price))
		if it.Variation != "" {
			b.WriteString("  " + it.Variation + "\n")
		}
		for _, a := range it.Addons {
			b.WriteString(fmt.Sprintf("  + %dx %s\n", a.Count, a.Name))
		}
		for _, e := range it.Excludes {
			b.WriteString("  - no " + e + "\n")
		}
		for _, e := range it.Extras {
			b.WriteString("  + extra " + e + "\n")
		}
	}

	if o.Note != "" {
		b.WriteString(strings.Repeat("-", width) + "\n")
		b.WriteString("Note: " + o.Note + "\n")
	}

	b.WriteString(strings.Repeat("-", width) + "\n")
	writeLine(&b, "Items Price", money(o.ItemsPrice))
	writeLine(&b, "Addons Price", money(o.AddonsPrice))
	writeLine(&b, "Discount", "-"+money(o.Discount))
	writeLine(&b, "VAT", money(o.VATTax))
	b.WriteString(strings.Repeat("=", width) + "\n")
	writeLine(&b, "TOTAL", money(o.Total))

	return b.String()
}

func money(v float64) string {
	return fmt.Sprintf("EGP %.2f", v)
}

func writeLine(b *strings.Builder, left, right string) {
	pad := width - len(left) - len(right)
	if pad < 1 {
		pad = 1
	}
	b.WriteString(left + strings.Repeat(" ", pad) + right + "\n")
}

func writeCentered(b *strings.Builder, text string) {
	pad := (width - len(text)) / 2
	if pad < 0 {
		pad = 0
	}
	b.WriteString(strings.Repeat(" ", pad) + text + "\n")
}
