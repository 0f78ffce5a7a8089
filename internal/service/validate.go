package service

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"storefront/internal/models"

	"github.com/shopspring/decimal"
)

var (
	nifPattern   = regexp.MustCompile(`^[0-9]{9}$`)
	pricePattern = regexp.MustCompile(`^[0-9]+([.,][0-9]{1,2})?$`)
)

// maxPrice is the first value NUMERIC(10,2) cannot hold
var maxPrice = decimal.New(1, 8)

// MaxQuantity bounds stock and line quantities to the INTEGER columns
const MaxQuantity = math.MaxInt32

// ValidNIF reports whether s is exactly nine ASCII digits
func ValidNIF(s string) bool {
	return nifPattern.MatchString(s)
}

func validateNIF(nif string) error {
	if !ValidNIF(nif) {
		return invalid("nif", "O NIF deve ter exatamente 9 dígitos.")
	}
	return nil
}

// ParsePrice accepts plain decimals such as "12.50" or "12,50" with at
// most two decimal places, below 100000000
func ParsePrice(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if !pricePattern.MatchString(s) {
		return decimal.Zero, invalid("price", "Preço inválido.")
	}
	price, err := decimal.NewFromString(strings.Replace(s, ",", ".", 1))
	if err != nil {
		return decimal.Zero, invalid("price", "Preço inválido.")
	}
	if price.GreaterThanOrEqual(maxPrice) {
		return decimal.Zero, invalid("price", "O preço deve ser inferior a 100000000.")
	}
	return price, nil
}

// ParseStock accepts a non-negative integer up to MaxQuantity
func ParseStock(s string) (int, error) {
	stock, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
	if err != nil || stock < 0 {
		return 0, invalid("stock", "Stock inválido.")
	}
	return int(stock), nil
}

// ParseDate parses a YYYY-MM-DD date
func ParseDate(field, s string) (time.Time, error) {
	d, err := time.Parse(models.DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, invalid(field, "Data inválida.")
	}
	return d, nil
}

func requirePositive(quantity int) error {
	if quantity <= 0 || quantity > MaxQuantity {
		return ErrInvalidQuantity
	}
	return nil
}

func blank(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func today() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
