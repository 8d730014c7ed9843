package strategy

// priceEpsilon 吸收浮点乘法误差，保证恰好落在区间端点的价格被包含
const priceEpsilon = 1e-6

// CartLine 购物车中的一行及其商品属性
type CartLine struct {
	CartID    int64
	ProductID int64
	Category  string
	Price     float64
}

// CartContext 由最后加购的商品推导出的筛选条件
type CartContext struct {
	Category   string
	MinPrice   float64
	MaxPrice   float64
	ExcludeIDs []int64
}

// BuildCartContext 取 cart_id 最大的一行作为锚点，价格上下浮动 band，两端闭区间。
// 购物车为空时 ok=false。
func BuildCartContext(lines []CartLine, band float64) (CartContext, bool) {
	if len(lines) == 0 {
		return CartContext{}, false
	}
	if band < 0 {
		band = 0
	}

	last := lines[0]
	seen := make(map[int64]struct{}, len(lines))
	exclude := make([]int64, 0, len(lines))
	for _, l := range lines {
		if l.CartID > last.CartID {
			last = l
		}
		if _, ok := seen[l.ProductID]; ok {
			continue
		}
		seen[l.ProductID] = struct{}{}
		exclude = append(exclude, l.ProductID)
	}

	lo, hi := last.Price*(1-band), last.Price*(1+band)
	if lo > hi {
		lo, hi = hi, lo
	}
	lo, hi = lo-priceEpsilon, hi+priceEpsilon
	return CartContext{
		Category:   last.Category,
		MinPrice:   lo,
		MaxPrice:   hi,
		ExcludeIDs: exclude,
	}, true
}
