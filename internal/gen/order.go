package gen

import "strconv"

// Order is the binding strength of an expression. Lower binds tighter.
type Order int

const (
	OrderAtomic         Order = 0  // literals, identifiers
	OrderUnaryPostfix   Order = 1  // expr++ expr-- () [] . ?.
	OrderUnaryPrefix    Order = 2  // -expr !expr ~expr ++expr --expr
	OrderMultiplicative Order = 3  // * / % ~/
	OrderAdditive       Order = 4  // + -
	OrderShift          Order = 5  // << >>
	OrderBitwiseAnd     Order = 6  // &
	OrderBitwiseXor     Order = 7  // ^
	OrderBitwiseOr      Order = 8  // |
	OrderRelational     Order = 9  // >= > <= < as is is!
	OrderEquality       Order = 10 // == !=
	OrderLogicalAnd     Order = 11 // &&
	OrderLogicalOr      Order = 12 // ||
	OrderIfNull         Order = 13 // ??
	OrderConditional    Order = 14 // expr ? expr : expr
	OrderCascade        Order = 15 // ..
	OrderAssignment     Order = 16 // = *= /= ~/= %= += -= <<= >>= &= ^= |=
	OrderNone           Order = 99 // (...)
)

var orderNames = map[Order]string{
	OrderAtomic:         "atomic",
	OrderUnaryPostfix:   "unary-postfix",
	OrderUnaryPrefix:    "unary-prefix",
	OrderMultiplicative: "multiplicative",
	OrderAdditive:       "additive",
	OrderShift:          "shift",
	OrderBitwiseAnd:     "bitwise-and",
	OrderBitwiseXor:     "bitwise-xor",
	OrderBitwiseOr:      "bitwise-or",
	OrderRelational:     "relational",
	OrderEquality:       "equality",
	OrderLogicalAnd:     "logical-and",
	OrderLogicalOr:      "logical-or",
	OrderIfNull:         "if-null",
	OrderConditional:    "conditional",
	OrderCascade:        "cascade",
	OrderAssignment:     "assignment",
	OrderNone:           "none",
}

func (o Order) String() string {
	if name, ok := orderNames[o]; ok {
		return name
	}
	return "order(" + strconv.Itoa(int(o)) + ")"
}

// Tighter returns the order one step tighter than o. Handlers request the
// right operand of a non-associative operator this way so that a - (b - c)
// keeps its parentheses.
func (o Order) Tighter() Order {
	if o == OrderAtomic {
		return o
	}
	return o - 1
}

// WrapIfNeeded parenthesises code of order inner when it is placed where
// order outer is expected and binds more loosely than that.
func WrapIfNeeded(code string, inner, outer Order) string {
	if inner > outer {
		return "(" + code + ")"
	}
	return code
}
