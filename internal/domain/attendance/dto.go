package attendance

// TotalsResponse mirrors the attendance service payload: the cycle plus its totals.
type TotalsResponse struct {
	Period PayPeriod `json:"period"`
	Totals Totals    `json:"totals"`
}
