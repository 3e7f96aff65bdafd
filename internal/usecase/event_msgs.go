package usecase

// PaymentConfirmedMsg is published on RabbitMQ once a settlement lands; the
// consumer side turns it into the confirmation email.
type PaymentConfirmedMsg struct {
	OrderID     string `json:"orderId"`
	UserID      string `json:"userId"`
	Email       string `json:"email"`
	Provider    string `json:"provider"`
	Reference   string `json:"reference"`
	AmountCents int64  `json:"amountCents"`
	Currency    string `json:"currency"`
}

// SettlementMsg arrives on the back-office Kafka feed. Offline methods (COD,
// manual bank transfer) have no webhook; ops records their settlements there.
type SettlementMsg struct {
	OrderID   string `json:"orderId"`
	Provider  string `json:"provider"`
	Reference string `json:"reference"`
	Status    string `json:"status"` // e.g. "SETTLED"
}
