package checkout

import (
	"bytes"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/talkincode/storefront/internal/validate"
)

// MaxQuantity upper bound of a single line quantity
const MaxQuantity = 1000000

// LineItem one requested (product, unit price, quantity) tuple.
type LineItem struct {
	ProductID string           `json:"productId" validate:"required,uuid4"`
	UnitPrice *decimal.Decimal `json:"unitPrice" validate:"required,min=0"`
	Quantity  int              `json:"quantity" validate:"min=1,max=1000000"`
}

// UnmarshalJSON accepts unitPrice only as a JSON number.
func (l *LineItem) UnmarshalJSON(data []byte) error {
	var raw struct {
		ProductID string              `json:"productId"`
		UnitPrice jsoniter.RawMessage `json:"unitPrice"`
		Quantity  int                 `json:"quantity"`
	}
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(data, &raw); err != nil {
		return err
	}

	item := LineItem{ProductID: raw.ProductID, Quantity: raw.Quantity}
	if price := bytes.TrimSpace(raw.UnitPrice); len(price) > 0 && !bytes.Equal(price, []byte("null")) {
		if price[0] == '"' {
			return errors.New("unitPrice must be a number")
		}
		var d decimal.Decimal
		if err := d.UnmarshalJSON(price); err != nil {
			return errors.Wrap(err, "unitPrice")
		}
		item.UnitPrice = &d
	}
	*l = item
	return nil
}

// PlaceOrderRequest body of POST /orders
type PlaceOrderRequest struct {
	UserID     string     `json:"userId" validate:"required,uuid4"`
	OrderItems []LineItem `json:"orderItems" validate:"required,min=1,dive"`
}

var schema = validate.New()

// Validate checks the shape of an order request. It performs no I/O.
func Validate(req PlaceOrderRequest) error {
	if err := schema.Struct(req); err != nil {
		return &ValidationError{Message: validate.Message(err)}
	}
	return nil
}
