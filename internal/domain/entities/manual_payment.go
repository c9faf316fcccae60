package entities

// ManualPaymentPhase is the step of the manual-verification workflow
type ManualPaymentPhase string

const (
	ManualPhaseDetails      ManualPaymentPhase = "details"
	ManualPhaseVerification ManualPaymentPhase = "verification"
	ManualPhaseSubmitted    ManualPaymentPhase = "submitted"
)

// ManualPaymentDetails is what the payer sees in the details phase
type ManualPaymentDetails struct {
	Recipient    Identity `json:"recipient"`
	PaymentID    string   `json:"paymentId,omitempty"`
	PaymentQRURL string   `json:"paymentQrUrl,omitempty"`
	QRCodePNG    string   `json:"qrCodePng,omitempty"` // base64
}
