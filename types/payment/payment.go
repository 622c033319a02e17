package payment

import "fmt"

// ChargeIntentRequest is the body of POST /create-payment-intent.
type ChargeIntentRequest struct {
	AmountInCents int64 `json:"amountInCents"`
}

func (r ChargeIntentRequest) Validate() error {
	if r.AmountInCents <= 0 {
		return fmt.Errorf("amountInCents must be greater than zero")
	}
	return nil
}

// ChargeIntentResponse carries the secret the client uses to confirm the
// card charge with the processor.
type ChargeIntentResponse struct {
	ClientSecret string `json:"clientSecret"`
}

// RecordRequest is the body of POST /payments.
type RecordRequest struct {
	ParcelID      string  `json:"parcelId"`
	TransactionID string  `json:"transactionId"`
	Email         string  `json:"email"`
	Amount        float64 `json:"amount"`
}

func (r RecordRequest) Validate() error {
	if r.ParcelID == "" {
		return fmt.Errorf("parcelId is required")
	}
	if r.TransactionID == "" {
		return fmt.Errorf("transactionId is required")
	}
	if r.Email == "" {
		return fmt.Errorf("email is required")
	}
	if r.Amount <= 0 {
		return fmt.Errorf("amount must be greater than zero")
	}
	return nil
}

// RecordResponse answers POST /payments.
type RecordResponse struct {
	PaymentID string `json:"paymentId"`
}
