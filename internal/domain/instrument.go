package domain

// Instrument is the desk's metadata for one tradable symbol. ContractSize is
// the cash value of one full lot per unit of price; getting it wrong directly
// over- or under-risks the account, so it is always resolved per instrument.
type Instrument struct {
	Name         string  `json:"name"`
	ContractSize float64 `json:"contract_size"`
	Point        float64 `json:"point"`
	SpreadPoints int     `json:"spread"`
	MinLot       float64 `json:"min_lot"`
	LotStep      float64 `json:"lot_step"`
	Digits       int     `json:"digits"`
}

// SpreadPrice converts the broker's spread from points to price units.
func (i *Instrument) SpreadPrice() float64 {
	return float64(i.SpreadPoints) * i.Point
}
