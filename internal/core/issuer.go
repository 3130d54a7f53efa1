package core

import (
	"errors"
	"fmt"
	"strings"
)

// CardIssuer names the card a charge was billed on.
type CardIssuer string

const (
	IssuerNubank      CardIssuer = "nubank"
	IssuerMercadoPago CardIssuer = "mercado-pago"
)

var ErrUnknownIssuer = errors.New("unknown card issuer")

// Issuers lists every known issuer in display order.
func Issuers() []CardIssuer {
	return []CardIssuer{IssuerNubank, IssuerMercadoPago}
}

func ParseCardIssuer(s string) (CardIssuer, error) {
	switch CardIssuer(strings.ToLower(strings.TrimSpace(s))) {
	case IssuerNubank:
		return IssuerNubank, nil
	case IssuerMercadoPago, "mercadopago":
		return IssuerMercadoPago, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownIssuer, s)
}

// Label is the description used for a quick statement entry.
func (i CardIssuer) Label() string {
	switch i {
	case IssuerMercadoPago:
		return "Fatura Mercado Pago"
	default:
		return "Fatura Nubank"
	}
}

// IssuerOf classifies a charge by its description. Anything mentioning
// "mercado" is billed on Mercado Pago, everything else on Nubank.
func IssuerOf(c CardCharge) CardIssuer {
	if strings.Contains(strings.ToLower(c.Description), "mercado") {
		return IssuerMercadoPago
	}
	return IssuerNubank
}
