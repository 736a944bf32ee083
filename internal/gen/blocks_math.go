package gen

import (
	"math"
	"strings"

	"github.com/AppKaki/blockly-ulisp/internal/workspace"
)

const (
	mathImportKey = "import_lisp_math"
	mathImport    = "import 'lisp:math' as Math;"
	htmlImportKey = "import_lisp_html"
	htmlImport    = "import 'lisp:html' as Html;"
)

func requireMath(c *Context) {
	c.RequireImport(mathImportKey, mathImport)
}

func init() {
	RegisterGenerator(BlockGenerator{Type: "math_number", Emit: mathNumber})
	RegisterGenerator(BlockGenerator{Type: "math_arithmetic", Emit: mathArithmetic})
	RegisterGenerator(BlockGenerator{Type: "math_single", Emit: mathSingle})
	DefaultRegistry.Alias("math_round", "math_single")
	DefaultRegistry.Alias("math_trig", "math_single")
	RegisterGenerator(BlockGenerator{Type: "math_constant", Emit: mathConstant})
	RegisterGenerator(BlockGenerator{Type: "math_number_property", Emit: mathNumberProperty})
	RegisterGenerator(BlockGenerator{Type: "math_change", Emit: mathChange})
	RegisterGenerator(BlockGenerator{Type: "math_on_list", Emit: mathOnList})
	RegisterGenerator(BlockGenerator{Type: "math_modulo", Emit: mathModulo})
	RegisterGenerator(BlockGenerator{Type: "math_constrain", Emit: mathConstrain})
	RegisterGenerator(BlockGenerator{Type: "math_random_int", Emit: mathRandomInt})
	RegisterGenerator(BlockGenerator{Type: "math_random_float", Emit: mathRandomFloat})
	RegisterGenerator(BlockGenerator{Type: "math_atan2", Emit: mathAtan2})
}

func mathNumber(c *Context, b *workspace.Block) Code {
	n := ParseNumber(b.FieldValue("NUM"))
	switch {
	case math.IsInf(n, 1):
		return Expr("double.infinity", OrderUnaryPostfix)
	case math.IsInf(n, -1):
		return Expr("-double.infinity", OrderUnaryPrefix)
	case n < 0:
		// -4.abs() is -(4.abs()), so a negative literal is a prefix expression
		return Expr(FormatNumber(n), OrderUnaryPrefix)
	}
	return Expr(FormatNumber(n), OrderAtomic)
}

func mathArithmetic(c *Context, b *workspace.Block) Code {
	type operator struct {
		symbol string
		order  Order
	}
	operators := map[string]operator{
		"ADD":      {" + ", OrderAdditive},
		"MINUS":    {" - ", OrderAdditive},
		"MULTIPLY": {" * ", OrderMultiplicative},
		"DIVIDE":   {" / ", OrderMultiplicative},
		"POWER":    {"", OrderNone},
	}
	op := b.FieldValue("OP")
	o, ok := operators[op]
	if !ok {
		return c.Failf(ErrUnhandledOption, b, "unknown arithmetic operator %q", op)
	}
	right := o.order
	if op == "MINUS" || op == "DIVIDE" {
		right = o.order.Tighter()
	}
	a := c.ValueOr(b, "A", o.order, "0")
	bb := c.ValueOr(b, "B", right, "0")
	if o.symbol == "" {
		requireMath(c)
		return Expr("Math.pow("+a+", "+bb+")", OrderUnaryPostfix)
	}
	return Expr(a+o.symbol+bb, o.order)
}

func mathSingle(c *Context, b *workspace.Block) Code {
	op := b.FieldValue("OP")
	if op == "NEG" {
		arg := c.ValueOr(b, "NUM", OrderUnaryPrefix, "0")
		if strings.HasPrefix(arg, "-") {
			// --3 is not a legal expression
			arg = " " + arg
		}
		return Expr("-"+arg, OrderUnaryPrefix)
	}
	requireMath(c)
	var arg string
	switch {
	case op == "ABS" || strings.HasPrefix(op, "ROUND"):
		arg = c.ValueOr(b, "NUM", OrderUnaryPostfix, "0")
	case op == "SIN" || op == "COS" || op == "TAN":
		arg = c.ValueOr(b, "NUM", OrderMultiplicative, "0")
	default:
		arg = c.ValueOr(b, "NUM", OrderNone, "0")
	}

	switch op {
	case "ABS":
		return Expr(arg+".abs()", OrderUnaryPostfix)
	case "ROOT":
		return Expr("Math.sqrt("+arg+")", OrderUnaryPostfix)
	case "LN":
		return Expr("Math.log("+arg+")", OrderUnaryPostfix)
	case "EXP":
		return Expr("Math.exp("+arg+")", OrderUnaryPostfix)
	case "POW10":
		return Expr("Math.pow(10,"+arg+")", OrderUnaryPostfix)
	case "ROUND":
		return Expr(arg+".round()", OrderUnaryPostfix)
	case "ROUNDUP":
		return Expr(arg+".ceil()", OrderUnaryPostfix)
	case "ROUNDDOWN":
		return Expr(arg+".floor()", OrderUnaryPostfix)
	case "SIN":
		return Expr("Math.sin("+arg+" / 180 * Math.pi)", OrderUnaryPostfix)
	case "COS":
		return Expr("Math.cos("+arg+" / 180 * Math.pi)", OrderUnaryPostfix)
	case "TAN":
		return Expr("Math.tan("+arg+" / 180 * Math.pi)", OrderUnaryPostfix)
	case "LOG10":
		return Expr("Math.log("+arg+") / Math.log(10)", OrderMultiplicative)
	case "ASIN":
		return Expr("Math.asin("+arg+") / Math.pi * 180", OrderMultiplicative)
	case "ACOS":
		return Expr("Math.acos("+arg+") / Math.pi * 180", OrderMultiplicative)
	case "ATAN":
		return Expr("Math.atan("+arg+") / Math.pi * 180", OrderMultiplicative)
	}
	return c.Failf(ErrUnhandledDispatch, b, "unknown math operator %q", op)
}

func mathConstant(c *Context, b *workspace.Block) Code {
	constant := b.FieldValue("CONSTANT")
	var code Code
	switch constant {
	case "PI":
		code = Expr("Math.pi", OrderUnaryPostfix)
	case "E":
		code = Expr("Math.e", OrderUnaryPostfix)
	case "GOLDEN_RATIO":
		code = Expr("(1 + Math.sqrt(5)) / 2", OrderMultiplicative)
	case "SQRT2":
		code = Expr("Math.sqrt2", OrderUnaryPostfix)
	case "SQRT1_2":
		code = Expr("Math.sqrt1_2", OrderUnaryPostfix)
	case "INFINITY":
		return Expr("double.infinity", OrderAtomic)
	default:
		return c.Failf(ErrUnhandledOption, b, "unknown constant %q", constant)
	}
	requireMath(c)
	return code
}

func mathNumberProperty(c *Context, b *workspace.Block) Code {
	number := c.ValueToCode(b, "NUMBER_TO_CHECK", OrderMultiplicative)
	if number == "" {
		return Expr("false", OrderAtomic)
	}
	property := b.FieldValue("PROPERTY")
	var code string
	switch property {
	case "PRIME":
		requireMath(c)
		name := c.ProvideFunction("math_isPrime", []string{
			"bool " + FunctionNamePlaceholder + "(n) {",
			"  // https://en.wikipedia.org/wiki/Primality_test#Naive_methods",
			"  if (n == 2 || n == 3) {",
			"    return true;",
			"  }",
			"  // False if n is null, negative, is 1, or not whole.",
			"  // And false if n is divisible by 2 or 3.",
			"  if (n == null || n <= 1 || n % 1 != 0 || n % 2 == 0 || n % 3 == 0) {",
			"    return false;",
			"  }",
			"  // Check all the numbers of form 6k +/- 1, up to sqrt(n).",
			"  for (var x = 6; x <= Math.sqrt(n) + 1; x += 6) {",
			"    if (n % (x - 1) == 0 || n % (x + 1) == 0) {",
			"      return false;",
			"    }",
			"  }",
			"  return true;",
			"}",
		})
		return Expr(name+"("+number+")", OrderUnaryPostfix)
	case "EVEN":
		code = number + " % 2 == 0"
	case "ODD":
		code = number + " % 2 == 1"
	case "WHOLE":
		code = number + " % 1 == 0"
	case "POSITIVE":
		code = number + " > 0"
	case "NEGATIVE":
		code = number + " < 0"
	case "DIVISIBLE_BY":
		divisor := c.ValueToCode(b, "DIVISOR", OrderMultiplicative.Tighter())
		if divisor == "" {
			return Expr("false", OrderAtomic)
		}
		code = number + " % " + divisor + " == 0"
	default:
		return c.Failf(ErrUnhandledOption, b, "unknown number property %q", property)
	}
	return Expr(code, OrderEquality)
}

func mathChange(c *Context, b *workspace.Block) Code {
	delta := c.ValueOr(b, "DELTA", OrderAdditive, "0")
	v := c.VariableName(b.FieldValue("VAR"))
	return Stmt(v + " = (" + v + " is num ? " + v + " : 0) + " + delta + ";\n")
}

// listHelpers holds the helper functions behind math_on_list, keyed by
// operator.
var listHelpers = map[string]struct {
	name      string
	needsMath bool
	lines     []string
}{
	"SUM": {"math_sum", false, []string{
		"num " + FunctionNamePlaceholder + "(List<num> myList) {",
		"  num sumVal = 0;",
		"  myList.forEach((num entry) {sumVal += entry;});",
		"  return sumVal;",
		"}",
	}},
	"MIN": {"math_min", true, []string{
		"num " + FunctionNamePlaceholder + "(List<num> myList) {",
		"  if (myList.isEmpty) return null;",
		"  num minVal = myList[0];",
		"  myList.forEach((num entry) {minVal = Math.min(minVal, entry);});",
		"  return minVal;",
		"}",
	}},
	"MAX": {"math_max", true, []string{
		"num " + FunctionNamePlaceholder + "(List<num> myList) {",
		"  if (myList.isEmpty) return null;",
		"  num maxVal = myList[0];",
		"  myList.forEach((num entry) {maxVal = Math.max(maxVal, entry);});",
		"  return maxVal;",
		"}",
	}},
	"AVERAGE": {"math_mean", false, []string{
		"num " + FunctionNamePlaceholder + "(List myList) {",
		"  // First filter list for numbers only.",
		"  List localList = new List.from(myList);",
		"  localList.removeWhere((a) => a is! num);",
		"  if (localList.isEmpty) return null;",
		"  num sumVal = 0;",
		"  localList.forEach((var entry) {sumVal += entry;});",
		"  return sumVal / localList.length;",
		"}",
	}},
	"MEDIAN": {"math_median", false, []string{
		"num " + FunctionNamePlaceholder + "(List myList) {",
		"  // First filter list for numbers only, then sort, then return middle value",
		"  // or the average of two middle values if list has an even number of elements.",
		"  List localList = new List.from(myList);",
		"  localList.removeWhere((a) => a is! num);",
		"  if (localList.isEmpty) return null;",
		"  localList.sort((a, b) => (a - b));",
		"  int index = localList.length ~/ 2;",
		"  if (localList.length % 2 == 1) {",
		"    return localList[index];",
		"  } else {",
		"    return (localList[index - 1] + localList[index]) / 2;",
		"  }",
		"}",
	}},
	"MODE": {"math_modes", true, []string{
		"List " + FunctionNamePlaceholder + "(List values) {",
		"  List modes = [];",
		"  List counts = [];",
		"  int maxCount = 0;",
		"  for (int i = 0; i < values.length; i++) {",
		"    var value = values[i];",
		"    bool found = false;",
		"    int thisCount;",
		"    for (int j = 0; j < counts.length; j++) {",
		"      if (counts[j][0] == value) {",
		"        thisCount = ++counts[j][1];",
		"        found = true;",
		"        break;",
		"      }",
		"    }",
		"    if (!found) {",
		"      counts.add([value, 1]);",
		"      thisCount = 1;",
		"    }",
		"    maxCount = Math.max(thisCount, maxCount);",
		"  }",
		"  for (int j = 0; j < counts.length; j++) {",
		"    if (counts[j][1] == maxCount) {",
		"        modes.add(counts[j][0]);",
		"    }",
		"  }",
		"  return modes;",
		"}",
	}},
	"STD_DEV": {"math_standard_deviation", true, []string{
		"num " + FunctionNamePlaceholder + "(List myList) {",
		"  // First filter list for numbers only.",
		"  List numbers = new List.from(myList);",
		"  numbers.removeWhere((a) => a is! num);",
		"  if (numbers.isEmpty) return null;",
		"  num n = numbers.length;",
		"  num sum = 0;",
		"  numbers.forEach((x) => sum += x);",
		"  num mean = sum / n;",
		"  num sumSquare = 0;",
		"  numbers.forEach((x) => sumSquare += Math.pow(x - mean, 2));",
		"  return Math.sqrt(sumSquare / n);",
		"}",
	}},
	"RANDOM": {"math_random_item", true, []string{
		"dynamic " + FunctionNamePlaceholder + "(List myList) {",
		"  int x = new Math.Random().nextInt(myList.length);",
		"  return myList[x];",
		"}",
	}},
}

func mathOnList(c *Context, b *workspace.Block) Code {
	op := b.FieldValue("OP")
	helper, ok := listHelpers[op]
	if !ok {
		return c.Failf(ErrUnhandledOption, b, "unknown list operator %q", op)
	}
	list := c.ValueOr(b, "LIST", OrderNone, "[]")
	if helper.needsMath {
		requireMath(c)
	}
	name := c.ProvideFunction(helper.name, helper.lines)
	return Expr(name+"("+list+")", OrderUnaryPostfix)
}

func mathModulo(c *Context, b *workspace.Block) Code {
	dividend := c.ValueOr(b, "DIVIDEND", OrderMultiplicative, "0")
	divisor := c.ValueOr(b, "DIVISOR", OrderMultiplicative.Tighter(), "0")
	return Expr(dividend+" % "+divisor, OrderMultiplicative)
}

func mathConstrain(c *Context, b *workspace.Block) Code {
	requireMath(c)
	value := c.ValueOr(b, "VALUE", OrderNone, "0")
	low := c.ValueOr(b, "LOW", OrderNone, "0")
	high := c.ValueOr(b, "HIGH", OrderNone, "double.infinity")
	return Expr("Math.min(Math.max("+value+", "+low+"), "+high+")", OrderUnaryPostfix)
}

func mathRandomInt(c *Context, b *workspace.Block) Code {
	requireMath(c)
	from := c.ValueOr(b, "FROM", OrderNone, "0")
	to := c.ValueOr(b, "TO", OrderNone, "0")
	name := c.ProvideFunction("math_random_int", []string{
		"int " + FunctionNamePlaceholder + "(num a, num b) {",
		"  if (a > b) {",
		"    // Swap a and b to ensure a is smaller.",
		"    num c = a;",
		"    a = b;",
		"    b = c;",
		"  }",
		"  return new Math.Random().nextInt(b - a + 1) + a;",
		"}",
	})
	return Expr(name+"("+from+", "+to+")", OrderUnaryPostfix)
}

func mathRandomFloat(c *Context, b *workspace.Block) Code {
	requireMath(c)
	return Expr("new Math.Random().nextDouble()", OrderUnaryPostfix)
}

func mathAtan2(c *Context, b *workspace.Block) Code {
	requireMath(c)
	x := c.ValueOr(b, "X", OrderNone, "0")
	y := c.ValueOr(b, "Y", OrderNone, "0")
	return Expr("Math.atan2("+y+", "+x+") / Math.pi * 180", OrderMultiplicative)
}
