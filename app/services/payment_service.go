package services

import (
	"sync"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"

	"github.com/shashiranjanraj/motomart/config"
)

// IntentClient opens a payment intent with the external processor and
// returns its client confirmation secret. Tests substitute a fake.
type IntentClient interface {
	CreateIntent(amount int64, currency string) (clientSecret string, err error)
}

// PaymentService bridges checkout to the payment processor. The intent is
// not linked to any order server-side: the client confirms the charge with
// the processor directly and then calls mark-paid on its own.
type PaymentService struct {
	client IntentClient
}

func NewPaymentService(client IntentClient) *PaymentService {
	return &PaymentService{client: client}
}

type IntentInput struct {
	Amount   int64  `json:"amount" validate:"required,gt=0"`
	Currency string `json:"currency" validate:"nullable"`
}

// CreateIntent opens a payment intent for the given amount in minor
// currency units. Currency defaults to "usd".
func (s *PaymentService) CreateIntent(in IntentInput) (string, error) {
	currency := in.Currency
	if currency == "" {
		currency = "usd"
	}
	return s.client.CreateIntent(in.Amount, currency)
}

// stripeClient is the production IntentClient backed by stripe-go.
type stripeClient struct {
	once sync.Once
}

// NewStripeClient returns an IntentClient that talks to Stripe using the
// configured secret key.
func NewStripeClient() IntentClient {
	return &stripeClient{}
}

func (c *stripeClient) CreateIntent(amount int64, currency string) (string, error) {
	c.once.Do(func() { stripe.Key = config.StripeSecretKey() })

	pi, err := paymentintent.New(&stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(currency),
	})
	if err != nil {
		return "", err
	}
	return pi.ClientSecret, nil
}
