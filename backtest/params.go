package backtest

// Params carries strategy construction parameters. Values are written by
// hand or produced by a Grid expansion during optimization.
type Params map[string]any

// Int reads an integer parameter, accepting int or float64 values.
func (p Params) Int(name string, def int) int {
	switch v := p[name].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return def
}

// Float reads a float parameter, accepting float64 or int values.
func (p Params) Float(name string, def float64) float64 {
	switch v := p[name].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return def
}

// String reads a string parameter.
func (p Params) String(name, def string) string {
	if v, ok := p[name].(string); ok {
		return v
	}
	return def
}

func (p Params) clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// GridParam enumerates the values one parameter sweeps over. A single-value
// set pins the parameter.
type GridParam struct {
	Name   string
	Values []any
}

// Grid is an ordered parameter grid; the cartesian product of its value
// sets defines the optimization combinations. Order matters: it fixes the
// combination-generation order, which is also the tie order of equal-equity
// results.
type Grid []GridParam

// Ints is a convenience constructor for an integer value set.
func Ints(vs ...int) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = v
	}
	return out
}

// Floats is a convenience constructor for a float value set.
func Floats(vs ...float64) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = v
	}
	return out
}

// combinations expands the grid into the full cartesian product, in
// generation order: the last parameter varies fastest.
func (g Grid) combinations() []Params {
	combos := []Params{{}}
	for _, param := range g {
		if len(param.Values) == 0 {
			continue
		}
		next := make([]Params, 0, len(combos)*len(param.Values))
		for _, combo := range combos {
			for _, v := range param.Values {
				c := combo.clone()
				c[param.Name] = v
				next = append(next, c)
			}
		}
		combos = next
	}
	return combos
}
