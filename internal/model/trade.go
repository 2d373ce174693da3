package model

import (
	"encoding/json"
	"errors"
)

// ErrInvalidTrade is returned for payloads that do not carry a complete trade.
var ErrInvalidTrade = errors.New("invalid trade payload")

// Trade is a single price/quantity observation for a symbol.
//
// The wire shape is preserved end to end: a trade is forwarded to
// consumers with exactly these fields.
type Trade struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Quantity  float64 `json:"quantity"`
	Timestamp int64   `json:"timestamp"`
}

// ParseTrade decodes a raw provider payload into a Trade.
//
// A payload that is not a JSON object, or that is missing any of
// symbol, price, quantity or timestamp (zero values count as
// missing), fails with ErrInvalidTrade.
func ParseTrade(data []byte) (Trade, error) {
	var t Trade
	if err := json.Unmarshal(data, &t); err != nil {
		return Trade{}, ErrInvalidTrade
	}
	if t.Symbol == "" || t.Price == 0 || t.Quantity == 0 || t.Timestamp == 0 {
		return Trade{}, ErrInvalidTrade
	}
	return t, nil
}
