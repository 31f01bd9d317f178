package models

// Variant is one purchasable form of a card on the pricing provider:
// a (printing, condition) pair with its current price.
type Variant struct {
	ID        string  `json:"id,omitempty"`
	Printing  string  `json:"printing"`  // "Normal", "Foil", "Holofoil", "Reverse Holofoil"
	Condition string  `json:"condition"` // "Near Mint", "Lightly Played", ...
	Price     float64 `json:"price"`
	Currency  string  `json:"currency,omitempty"`
}

// PricedCard is a pricing-provider search hit with its variant list.
type PricedCard struct {
	Name     string    `json:"name"`
	SetName  string    `json:"set_name,omitempty"`
	SetCode  string    `json:"set_code,omitempty"`
	Number   string    `json:"number,omitempty"`
	Ref      CardRef   `json:"ref"`
	Variants []Variant `json:"variants,omitempty"`
}
