package domain

import (
	"errors"
	"strings"
)

// Money is an amount in the currency's minor unit.
type Money struct {
	Amount   int64
	Currency string
}

func NewMoney(amount int64, currency string) (Money, error) {
	if amount < 0 {
		return Money{}, NewInvalidAmountError(amount)
	}
	if currency == "" {
		return Money{}, errors.New("currency is required")
	}
	return Money{Amount: amount, Currency: strings.ToLower(currency)}, nil
}

// Term is the school term a class runs in.
type Term string

const (
	Term1 Term = "Term1"
	Term2 Term = "Term2"
	Term3 Term = "Term3"
	Term4 Term = "Term4"
)

func (t Term) Valid() bool {
	switch t {
	case Term1, Term2, Term3, Term4:
		return true
	}
	return false
}
