package broker

import "math"

// Position tracks the open quantity and weighted-average cost for one
// symbol. Size is signed: positive long, negative short. Price is the cost
// basis of the currently open quantity only; it is reset to 0 whenever the
// position is flat.
type Position struct {
	Size  float64
	Price float64
}

// Update applies a signed fill to the position and returns the realized
// P&L from any closed quantity (gross of commission).
//
//   - flat before: opens at (size, price), realized 0
//   - same direction: size adds up, price becomes the weighted average
//   - opposite direction: closes min(|old|, |new|) at the fill price; if the
//     sign flips, the remaining leg carries the fill price as its cost basis
func (p *Position) Update(size, price float64) float64 {
	if size == 0 {
		return 0
	}

	prev := p.Size

	if prev == 0 {
		p.Size = size
		p.Price = price
		return 0
	}

	sameDirection := (prev > 0) == (size > 0)
	if sameDirection {
		total := prev + size
		weighted := math.Abs(prev)*p.Price + math.Abs(size)*price
		p.Size = total
		p.Price = weighted / math.Abs(total)
		return 0
	}

	closed := math.Min(math.Abs(prev), math.Abs(size))
	var realized float64
	if prev > 0 {
		realized = (price - p.Price) * closed
	} else {
		realized = (p.Price - price) * closed
	}

	next := prev + size
	p.Size = next

	switch {
	case next == 0:
		p.Price = 0
	case (prev > 0) != (next > 0):
		// Flipped: the surviving leg was opened at this fill.
		p.Price = price
	}

	return realized
}
