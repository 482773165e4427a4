package payment

import "github.com/shopspring/decimal"

var (
	minAmount = decimal.NewFromFloat(0.01)
	maxAmount = decimal.NewFromFloat(999999.99)
)

// Money is a fixed-point currency amount. Construction rounds half-up
// (away from zero) to two decimals and validates the result against
// [0.01, 999999.99]. All arithmetic re-rounds and re-validates.
type Money struct {
	value decimal.Decimal
}

func NewMoney(amount float64) (Money, error) {
	return newMoney(decimal.NewFromFloat(amount))
}

func NewMoneyFromString(amount string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	return newMoney(d)
}

func newMoney(d decimal.Decimal) (Money, error) {
	rounded := d.Round(2)
	if rounded.LessThan(minAmount) || rounded.GreaterThan(maxAmount) {
		return Money{}, ErrInvalidAmount
	}
	return Money{value: rounded}, nil
}

func (m Money) Add(other Money) (Money, error) {
	return newMoney(m.value.Add(other.value))
}

func (m Money) Subtract(other Money) (Money, error) {
	return newMoney(m.value.Sub(other.value))
}

// Fee computes amount × rate rounded to cents.
func (m Money) Fee(rate float64) (Money, error) {
	return newMoney(m.value.Mul(decimal.NewFromFloat(rate)))
}

func (m Money) Equal(other Money) bool {
	return m.value.Equal(other.value)
}

func (m Money) GreaterThan(other Money) bool {
	return m.value.GreaterThan(other.value)
}

func (m Money) Float64() float64 {
	f, _ := m.value.Float64()
	return f
}

func (m Money) Decimal() decimal.Decimal {
	return m.value
}

func (m Money) String() string {
	return m.value.StringFixed(2)
}
