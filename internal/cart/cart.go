// Package cart содержит корзину кассового терминала.
package cart

import (
	"github.com/shopspring/decimal"

	"github.com/mmeshcher/motosync-terminal/internal/model"
)

// MinQuantity задаёт минимальное количество товара в позиции корзины.
const MinQuantity = 1

// Line описывает позицию корзины.
type Line struct {
	Product  model.Product
	Quantity int
}

// Total возвращает стоимость позиции: цена продажи, умноженная на количество.
func (l Line) Total() decimal.Decimal {
	return l.Product.SRP.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart хранит позиции в порядке добавления. Cart не потокобезопасна:
// синхронизацию обеспечивает владелец.
type Cart struct {
	lines []Line
}

// New создаёт пустую корзину.
func New() *Cart {
	return &Cart{}
}

func (c *Cart) index(productID int64) int {
	for i, l := range c.lines {
		if l.Product.ID == productID {
			return i
		}
	}
	return -1
}

// Add добавляет товар с количеством 1. Повторное добавление того же товара ничего не меняет.
// Возвращает true, если позиция была добавлена.
func (c *Cart) Add(p model.Product) bool {
	if c.index(p.ID) >= 0 {
		return false
	}
	c.lines = append(c.lines, Line{Product: p, Quantity: MinQuantity})
	return true
}

// SetQuantity устанавливает количество, не опуская его ниже MinQuantity.
// Возвращает false, если товара нет в корзине.
func (c *Cart) SetQuantity(productID int64, qty int) bool {
	i := c.index(productID)
	if i < 0 {
		return false
	}
	c.lines[i].Quantity = max(qty, MinQuantity)
	return true
}

// Remove удаляет позицию. Возвращает false, если товара нет в корзине.
func (c *Cart) Remove(productID int64) bool {
	i := c.index(productID)
	if i < 0 {
		return false
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	return true
}

// Lines возвращает копию позиций корзины.
func (c *Cart) Lines() []Line {
	res := make([]Line, len(c.lines))
	copy(res, c.lines)
	return res
}

// Len возвращает число позиций.
func (c *Cart) Len() int {
	return len(c.lines)
}

// Total возвращает сумму всех позиций.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Total())
	}
	return total
}

// Clear очищает корзину.
func (c *Cart) Clear() {
	c.lines = nil
}
