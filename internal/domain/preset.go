package domain

// CardFragment is the masked card metadata kept by the vault. It never
// holds more than the last four digits of a card number and never a CVV.
type CardFragment struct {
	Brand      string `json:"brand"`
	Last4      string `json:"last4"`
	ExpMonth   int    `json:"expMonth"`
	ExpYear    int    `json:"expYear"`
	HolderName string `json:"holderName,omitempty"`
}

// CheckoutPreset is a saved bundle of delivery details and masked card
// metadata used to autofill the checkout form.
type CheckoutPreset struct {
	ID       string       `json:"id"`
	FullName string       `json:"fullName"`
	Email    string       `json:"email"`
	Address  string       `json:"address"`
	City     string       `json:"city,omitempty"`
	Country  string       `json:"country,omitempty"`
	Card     CardFragment `json:"card"`
}

// SavedCard is a standalone masked card entry, kept per user and merged
// with any remote-sourced cards on read.
type SavedCard struct {
	ID         string `json:"id"`
	Brand      string `json:"brand"`
	Last4      string `json:"last4"`
	ExpMonth   int    `json:"expMonth"`
	ExpYear    int    `json:"expYear"`
	HolderName string `json:"holderName,omitempty"`
	IsDefault  bool   `json:"isDefault,omitempty"`
}
