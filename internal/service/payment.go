package service

import (
    "regexp"
    "strconv"
    "strings"
    "time"
)

// PaymentInput is the card data as submitted by the customer.
type PaymentInput struct {
    CardType   string `json:"cardType" validate:"oneof=credit debit"`
    CardNumber string `json:"cardNumber" validate:"number,min=12,max=32"`
    NameOnCard string `json:"nameOnCard" validate:"required,max=120"`
    Expiration string `json:"expiration" validate:"required"`
}

// Payment is a validated PaymentInput.  CardNumber holds digits only and
// is still unmasked; it must be masked before it is stored.
type Payment struct {
    CardType   string
    CardNumber string
    NameOnCard string
    Expiration string
}

var expiryPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])/(\d{2})$`)

// ValidatePayment checks the card data in field order and reports the
// first failure.  It touches no storage.
func ValidatePayment(in PaymentInput, now time.Time) (Payment, error) {
    in = PaymentInput{
        CardType:   strings.ToLower(strings.TrimSpace(in.CardType)),
        CardNumber: strings.Join(strings.Fields(in.CardNumber), ""),
        NameOnCard: strings.TrimSpace(in.NameOnCard),
        Expiration: strings.TrimSpace(in.Expiration),
    }
    if err := check(in); err != nil {
        return Payment{}, err
    }

    p := Payment(in)
    m := expiryPattern.FindStringSubmatch(p.Expiration)
    if m == nil {
        return Payment{}, invalid("expiration", "must be MM/YY")
    }
    month, _ := strconv.Atoi(m[1])
    year, _ := strconv.Atoi(m[2])
    // a card is valid through the last instant of its expiry month
    firstAfter := time.Date(2000+year, time.Month(month)+1, 1, 0, 0, 0, 0, time.UTC)
    if !now.Before(firstAfter) {
        return Payment{}, invalid("expiration", "card has expired")
    }
    return p, nil
}
