// Package model содержит доменные сущности кухонного дисплея.
package model

import (
	"strconv"
	"strings"
)

// OrderType описывает способ выдачи заказа.
type OrderType string

const (
	OrderTypeTakeAway OrderType = "Take Away"
	OrderTypeDineIn   OrderType = "Dine In"
	OrderTypeDelivery OrderType = "Delivery"
)

// Number принимает числовые поля, которые бэкенд отдаёт то числом, то строкой
// ("2" и 2 равнозначны). Нечитаемое значение считается нулём: клиент обязан
// переживать частично заполненные данные.
type Number float64

// UnmarshalJSON разбирает число из числового или строкового JSON-значения.
func (n *Number) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*n = 0
		return nil
	}
	*n = Number(v)
	return nil
}

// Float возвращает значение как float64.
func (n Number) Float() float64 { return float64(n) }

// Int возвращает целую часть значения.
func (n Number) Int() int { return int(n) }

// Text принимает строковые поля, которые бэкенд отдаёт то строкой, то числом
// (числовые идентификаторы и номера столов).
type Text string

// UnmarshalJSON разбирает строку из строкового или числового JSON-значения.
func (t *Text) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" {
		s = ""
	}
	*t = Text(s)
	return nil
}

// String возвращает значение как string.
func (t Text) String() string { return string(t) }

// OrdersBatch описывает конверт, в котором бэкенд отдаёт списки заказов.
type OrdersBatch struct {
	KitchenOrder []RawOrder `json:"kitchen_order"`
}

// RawOrder описывает заказ в том виде, в котором его отдаёт бэкенд.
type RawOrder struct {
	ID        Text          `json:"id"`
	Type      string        `json:"type"`
	CreatedAt string        `json:"created_at"`
	Status    string        `json:"status"`
	Read      bool          `json:"read"`
	Table     *RawTable     `json:"table"`
	Order     []RawLineItem `json:"order"`
	Note      string        `json:"note"`
	Discount  Number        `json:"discount"`
	Tax       Number        `json:"tax"`
}

// RawTable описывает привязку заказа к столу.
type RawTable struct {
	TableNumber Text `json:"table_number"`
}

// RawLineItem описывает позицию заказа в формате бэкенда.
type RawLineItem struct {
	Name              string          `json:"name"`
	Count             Number          `json:"count"`
	PriceAfterTax     Number          `json:"price_after_tax"`
	VariationSelected []RawVariation  `json:"variation_selected"`
	AddonsSelected    []RawAddon      `json:"addons_selected"`
	Excludes          []RawIngredient `json:"excludes"`
	Extras            []RawIngredient `json:"extras"`
}

// RawVariation описывает выбранную вариацию позиции.
type RawVariation struct {
	Name    string      `json:"name"`
	Options []RawOption `json:"options"`
}

// RawOption описывает вариант вариации; смысл несёт первый вариант списка.
type RawOption struct {
	Name string `json:"name"`
}

// RawAddon описывает выбранную добавку к позиции.
type RawAddon struct {
	Name  string `json:"name"`
	Count Number `json:"count"`
}

// RawIngredient описывает исключённый или дополнительный ингредиент.
type RawIngredient struct {
	Name string `json:"name"`
}

// Order — нормализованная модель заказа, которой оперирует дисплей.
// Экземпляры пересобираются из RawOrder на каждом опросе и нигде не хранятся.
type Order struct {
	ID          string     `json:"id"`
	Type        OrderType  `json:"type"`
	Icon        string     `json:"icon"`
	Date        string     `json:"date"`
	Time        string     `json:"time"`
	Status      string     `json:"status"`
	Read        bool       `json:"read"`
	Table       string     `json:"table,omitempty"`
	Items       []LineItem `json:"items"`
	Note        string     `json:"note"`
	ItemsPrice  float64    `json:"itemsPrice"`
	AddonsPrice float64    `json:"addonsPrice"`
	Discount    float64    `json:"discount"`
	VATTax      float64    `json:"vatTax"`
	Total       float64    `json:"total"`
}

// LineItem — нормализованная позиция заказа.
type LineItem struct {
	Name      string   `json:"name"`
	Quantity  int      `json:"quantity"`
	Variation string   `json:"variation"`
	Price     float64  `json:"price"`
	Addons    []Addon  `json:"addons"`
	Excludes  []string `json:"excludes"`
	Extras    []string `json:"extras"`
}

// Addon — добавка к позиции. Цену добавки бэкенд не передаёт, она всегда ноль.
type Addon struct {
	Name  string  `json:"name"`
	Count int     `json:"count"`
	Price float64 `json:"price"`
}
