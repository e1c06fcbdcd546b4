// Package report строит сводки выручки по уже загруженным продажам.
package report

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmeshcher/motosync-terminal/internal/model"
)

// Размеры окон сводки в днях.
const (
	WeekDays  = 7
	MonthDays = 30
	YearDays  = 365
)

// SeriesDays задаёт число точек дневного ряда: сегодня и 30 предыдущих дней.
const SeriesDays = 31

const dateLayout = "2006-01-02"

// Window содержит число продаж и выручку за окно.
type Window struct {
	Days    int
	Count   int
	Revenue decimal.Decimal
}

// DailyPoint содержит выручку за календарный день.
type DailyPoint struct {
	Date    string
	Revenue decimal.Decimal
}

// Summary содержит сводку за неделю, месяц, год и дневной ряд.
type Summary struct {
	Week  Window
	Month Window
	Year  Window
	Daily []DailyPoint
}

// Summarize считает продажи с датой не раньше now минус days дней.
func Summarize(sales []model.Sale, days int, now time.Time) Window {
	since := now.AddDate(0, 0, -days)

	w := Window{Days: days, Revenue: decimal.Zero}
	for _, s := range sales {
		if s.Date.Before(since) {
			continue
		}
		w.Count++
		w.Revenue = w.Revenue.Add(s.TotalPrice)
	}
	return w
}

// DailySeries возвращает выручку по дням от now минус 30 дней до now включительно.
// Принадлежность дню определяется датой продажи в часовом поясе now.
func DailySeries(sales []model.Sale, now time.Time) []DailyPoint {
	loc := now.Location()

	byDay := make(map[string]decimal.Decimal, SeriesDays)
	for _, s := range sales {
		key := s.Date.In(loc).Format(dateLayout)
		byDay[key] = byDay[key].Add(s.TotalPrice)
	}

	res := make([]DailyPoint, 0, SeriesDays)
	for i := SeriesDays - 1; i >= 0; i-- {
		key := now.AddDate(0, 0, -i).Format(dateLayout)
		rev, ok := byDay[key]
		if !ok {
			rev = decimal.Zero
		}
		res = append(res, DailyPoint{Date: key, Revenue: rev})
	}
	return res
}

// Build строит полную сводку.
func Build(sales []model.Sale, now time.Time) Summary {
	return Summary{
		Week:  Summarize(sales, WeekDays, now),
		Month: Summarize(sales, MonthDays, now),
		Year:  Summarize(sales, YearDays, now),
		Daily: DailySeries(sales, now),
	}
}
