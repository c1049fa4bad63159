package discount

// MerchandiseProductVariant is the merchandise typename that can carry a tier discount.
const MerchandiseProductVariant = "ProductVariant"

// ApplicationStrategy mirrors the host enum describing how discounts on the same target combine.
type ApplicationStrategy string

const (
	// StrategyFirst applies only the first qualifying discount per target. It is the
	// only strategy this function emits.
	StrategyFirst ApplicationStrategy = "FIRST"
)

// RunInput is the document handed to the function by the host runtime.
type RunInput struct {
	Cart Cart `json:"cart"`
}

// Cart is the ordered set of lines being priced.
type Cart struct {
	Lines []CartLine `json:"lines" validate:"dive"`
}

// CartLine is a single quantity of merchandise in the cart.
type CartLine struct {
	ID          string      `json:"id" validate:"required"`
	Quantity    int         `json:"quantity" validate:"gte=1"`
	Merchandise Merchandise `json:"merchandise"`
}

// Merchandise is a tagged union keyed by Typename. Product is only populated for product variants.
type Merchandise struct {
	Typename string   `json:"__typename" validate:"required"`
	Product  *Product `json:"product,omitempty"`
}

// Product carries the tag flag and the tier metafield for a variant's parent product.
type Product struct {
	HasAnyTag bool       `json:"hasAnyTag"`
	Metafield *Metafield `json:"metafield"`
}

// Metafield holds the raw, externally authored tier configuration.
type Metafield struct {
	Value string `json:"value"`
}

// FunctionRunResult is the document returned to the host runtime.
type FunctionRunResult struct {
	DiscountApplicationStrategy ApplicationStrategy `json:"discountApplicationStrategy"`
	Discounts                   []Discount          `json:"discounts"`
}

// Discount targets one cart line with a percentage off.
type Discount struct {
	Targets []Target `json:"targets"`
	Value   Value    `json:"value"`
	Message string   `json:"message,omitempty"`
}

// Target identifies what a discount applies to.
type Target struct {
	CartLine *CartLineTarget `json:"cartLine,omitempty"`
}

// CartLineTarget references a cart line by id.
type CartLineTarget struct {
	ID string `json:"id"`
}

// Value is the discount amount. Only percentages are produced.
type Value struct {
	Percentage *Percentage `json:"percentage,omitempty"`
}

// Percentage is a decimal string such as "10" or "12.5".
type Percentage struct {
	Value string `json:"value"`
}

// EmptyResult returns the result used when no line qualifies.
func EmptyResult() FunctionRunResult {
	return FunctionRunResult{
		DiscountApplicationStrategy: StrategyFirst,
		Discounts:                   []Discount{},
	}
}
