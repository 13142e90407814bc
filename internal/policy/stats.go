package policy

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"magis-site/models"
)

var (
	ptBR     = message.NewPrinter(language.BrazilianPortuguese)
	maxInt64 = decimal.NewFromInt(math.MaxInt64)
)

// FormatStatistic renders a stored statistic the way every page shows it.
func FormatStatistic(key string, value float64) string {
	switch key {
	case models.StatValoresArrecadados:
		return FormatCurrency(decimal.NewFromFloat(value))
	case models.StatDelegados, models.StatEventosRealizados:
		return FormatInteger(value)
	default:
		return strconv.FormatFloat(value, 'f', -1, 64)
	}
}

// FormatInteger truncates toward zero and groups thousands with dots.
func FormatInteger(value float64) string {
	return groupWhole(decimal.NewFromFloat(value))
}

// FormatCurrency renders whole reais: "R$ 1.234". Cents are dropped.
func FormatCurrency(amount decimal.Decimal) string {
	return "R$ " + groupWhole(amount)
}

// FormatPrice renders a price with cents: "R$ 1.234,50".
func FormatPrice(amount decimal.Decimal) string {
	whole := amount.Truncate(0)
	cents := amount.Sub(whole).Abs().Shift(2).Round(0).IntPart()
	if cents == 100 {
		whole = whole.Add(decimal.NewFromInt(int64(amount.Sign())))
		cents = 0
	}
	return "R$ " + groupWhole(whole) + "," + leftPad2(cents)
}

// groupWhole truncates d toward zero and groups thousands with dots.
// Magnitudes past int64 are grouped from the decimal digits instead.
func groupWhole(d decimal.Decimal) string {
	whole := d.Truncate(0)
	if whole.Abs().LessThanOrEqual(maxInt64) {
		return ptBR.Sprintf("%d", whole.IntPart())
	}

	digits := whole.String()
	sign := ""
	if strings.HasPrefix(digits, "-") {
		sign, digits = "-", digits[1:]
	}
	var b strings.Builder
	for i, c := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(c)
	}
	return sign + b.String()
}

func leftPad2(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}

// StatisticSet is the stored statistics indexed by key. Missing keys read
// as zero.
type StatisticSet map[string]models.Statistic

func NewStatisticSet(stats []models.Statistic) StatisticSet {
	set := StatisticSet{}
	for _, s := range stats {
		set[s.Key] = s
	}
	return set
}

func (s StatisticSet) Value(key string) float64 {
	return s[key].Value
}

func (s StatisticSet) Formatted(key string) string {
	return FormatStatistic(key, s.Value(key))
}

// Label falls back to the given default when the record has no label.
func (s StatisticSet) Label(key, fallback string) string {
	if l := s[key].Label; l != "" {
		return l
	}
	return fallback
}

// Counters is the block of figures shown on the home and about pages.
type Counters struct {
	Delegados          string `json:"delegados"`
	EventosRealizados  string `json:"eventos_realizados"`
	ValoresArrecadados string `json:"valores_arrecadados"`
	MesesDeAtuacao     string `json:"meses_de_atuacao"`
	Months             int    `json:"months"`
}

func (s StatisticSet) Counters(now time.Time, loc *time.Location) Counters {
	months := MonthsOfOperation(now, loc)
	return Counters{
		Delegados:          s.Formatted(models.StatDelegados),
		EventosRealizados:  s.Formatted(models.StatEventosRealizados),
		ValoresArrecadados: s.Formatted(models.StatValoresArrecadados),
		MesesDeAtuacao:     FormatInteger(float64(months)),
		Months:             months,
	}
}
