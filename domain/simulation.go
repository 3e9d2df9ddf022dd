package domain

// SimulationRequest is the body accepted by POST /simulacao.
type SimulationRequest struct {
	Amount     float64 `json:"valorDesejado"`
	TermMonths int     `json:"prazo"`
}

// Installment is one parcela of a simulated schedule.
type Installment struct {
	Number       int     `json:"numero"`
	Amortization float64 `json:"valorAmortizacao"`
	Interest     float64 `json:"valorJuros"`
	Payment      float64 `json:"valorPrestacao"`
}

// Schedule is the list of parcelas produced under one amortization policy.
type Schedule struct {
	Type         string        `json:"tipo"`
	Installments []Installment `json:"parcelas"`
}

// SimulationEnvelope is both the HTTP response and the event published to the
// simulations stream.
type SimulationEnvelope struct {
	ID                 string     `json:"idSimulacao"`
	ProductCode        int        `json:"codigoProduto"`
	ProductDescription string     `json:"descricaoProduto"`
	InterestRate       float64    `json:"taxaJuros"`
	Schedules          []Schedule `json:"resultadoSimulacao"`
}

// ErrorResponse is returned when no simulation could be produced.
type ErrorResponse struct {
	Detail string `json:"detalhe"`
}
