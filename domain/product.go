package domain

// Product is a credit product and the eligibility range it covers. A nil
// maximum means the range is open-ended.
type Product struct {
	Code        int      `json:"codigoProduto"`
	Description string   `json:"descricaoProduto"`
	Rate        float64  `json:"taxaJuros"`
	MinTerm     int      `json:"minimoMeses"`
	MaxTerm     *int     `json:"maximoMeses,omitempty"`
	MinAmount   float64  `json:"valorMinimo"`
	MaxAmount   *float64 `json:"valorMaximo,omitempty"`
}

// Covers reports whether the product is eligible for the given term and amount.
// Both bounds are inclusive.
func (p Product) Covers(termMonths int, amount float64) bool {
	if termMonths < p.MinTerm || (p.MaxTerm != nil && termMonths > *p.MaxTerm) {
		return false
	}
	if amount < p.MinAmount || (p.MaxAmount != nil && amount > *p.MaxAmount) {
		return false
	}
	return true
}
