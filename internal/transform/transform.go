// Package transform превращает сырые заказы бэкенда в модель дисплея.
package transform

import (
	"time"

	"github.com/mmeshcher/kitchen-display/internal/model"
)

const (
	dateLayout = "Jan 02, 2006"
	timeLayout = "03:04 PM"
)

// Форматы created_at, которые встречаются у бэкенда.
var createdAtLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Orders отображает пачку сырых заказов в нормализованные. Функция тотальна:
// отсутствующие поля получают значения по умолчанию, ошибок не бывает.
// Момент now используется вместо отсутствующего или нечитаемого created_at.
func Orders(raw []model.RawOrder, now time.Time) []model.Order {
	orders := make([]model.Order, 0, len(raw))
	for _, r := range raw {
		orders = append(orders, order(r, now))
	}
	return orders
}

func order(r model.RawOrder, now time.Time) model.Order {
	typ, icon := typeAndIcon(r.Type)

	status := r.Status
	if status == "" {
		status = "preparing"
	}

	createdAt := parseCreatedAt(r.CreatedAt, now)

	table := ""
	if r.Type == "dine_in" {
		table = "N/A"
		if r.Table != nil && r.Table.TableNumber.String() != "" {
			table = r.Table.TableNumber.String()
		}
	}

	items := make([]model.LineItem, 0, len(r.Order))
	var itemsPrice, addonsPrice float64
	for _, it := range r.Order {
		items = append(items, lineItem(it))
		itemsPrice += it.PriceAfterTax.Float() * float64(it.Count.Int())
		// Цена добавки бэкендом не передаётся, слагаемое всегда нулевое.
		for _, a := range it.AddonsSelected {
			addonsPrice += 0 * float64(a.Count.Int())
		}
	}

	return model.Order{
		ID:          r.ID.String(),
		Type:        typ,
		Icon:        icon,
		Date:        createdAt.Format(dateLayout),
		Time:        createdAt.Format(timeLayout),
		Status:      status,
		Read:        r.Read,
		Table:       table,
		Items:       items,
		Note:        r.Note,
		ItemsPrice:  itemsPrice,
		AddonsPrice: addonsPrice,
		Discount:    r.Discount.Float(),
		VATTax:      r.Tax.Float(),
		// Скидка и налог в итог не входят, итог повторяет сумму позиций.
		Total: itemsPrice,
	}
}

func lineItem(it model.RawLineItem) model.LineItem {
	variation := ""
	for i, v := range it.VariationSelected {
		if len(v.Options) == 0 {
			continue
		}
		if i > 0 && variation != "" {
			variation += ", "
		}
		variation += v.Name + ": " + v.Options[0].Name
	}

	addons := make([]model.Addon, 0, len(it.AddonsSelected))
	for _, a := range it.AddonsSelected {
		addons = append(addons, model.Addon{
			Name:  a.Name,
			Count: a.Count.Int(),
			Price: 0,
		})
	}

	excludes := make([]string, 0, len(it.Excludes))
	for _, e := range it.Excludes {
		excludes = append(excludes, e.Name)
	}

	extras := make([]string, 0, len(it.Extras))
	for _, e := range it.Extras {
		extras = append(extras, e.Name)
	}

	return model.LineItem{
		Name:      it.Name,
		Quantity:  it.Count.Int(),
		Variation: variation,
		Price:     it.PriceAfterTax.Float(),
		Addons:    addons,
		Excludes:  excludes,
		Extras:    extras,
	}
}

func typeAndIcon(kind string) (model.OrderType, string) {
	switch kind {
	case "take_away":
		return model.OrderTypeTakeAway, "🚚"
	case "dine_in":
		return model.OrderTypeDineIn, "🍽️"
	default:
		return model.OrderTypeDelivery, "📦"
	}
}

func parseCreatedAt(s string, now time.Time) time.Time {
	if s == "" {
		return now
	}
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return now
}
