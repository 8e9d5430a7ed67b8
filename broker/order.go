package broker

import "time"

// Kind is the order type.
type Kind int8

const (
	Market Kind = iota
	Limit
	Stop
)

func (k Kind) String() string {
	switch k {
	case Market:
		return "MARKET"
	case Limit:
		return "LIMIT"
	case Stop:
		return "STOP"
	}
	return "UNKNOWN"
}

// Side is the order direction.
type Side int8

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	if s == Sell {
		return "SELL"
	}
	return "BUY"
}

// Status is the order lifecycle state. The machine is forward-only:
// Created -> Submitted -> Accepted -> {Completed | Rejected | Canceled}.
type Status int8

const (
	Created Status = iota
	Submitted
	Accepted
	Completed
	Canceled
	Rejected
)

func (s Status) String() string {
	switch s {
	case Created:
		return "CREATED"
	case Submitted:
		return "SUBMITTED"
	case Accepted:
		return "ACCEPTED"
	case Completed:
		return "COMPLETED"
	case Canceled:
		return "CANCELED"
	case Rejected:
		return "REJECTED"
	}
	return "UNKNOWN"
}

// Order is a trading order owned by the Broker from submission until it
// reaches a terminal state. The submitting strategy keeps only a read view.
type Order struct {
	Ref    int64
	Symbol string
	Kind   Kind
	Side   Side
	Size   float64
	Price  float64 // trigger price for Limit/Stop; 0 means none

	Status Status

	// Execution fields, populated only on Completed.
	ExecPrice  float64
	ExecSize   float64
	ExecTime   time.Time
	Commission float64
}

// Alive reports whether the order has not reached a terminal state.
func (o *Order) Alive() bool {
	switch o.Status {
	case Created, Submitted, Accepted:
		return true
	}
	return false
}

// Cancel moves a live order to Canceled. Terminal orders are left untouched.
func (o *Order) Cancel() {
	if o.Alive() {
		o.Status = Canceled
	}
}

// IsBuy reports whether this is a buy order.
func (o *Order) IsBuy() bool { return o.Side == Buy }

// IsSell reports whether this is a sell order.
func (o *Order) IsSell() bool { return o.Side == Sell }

func (o *Order) execute(price, size float64, t time.Time, commission float64) {
	o.ExecPrice = price
	o.ExecSize = size
	o.ExecTime = t
	o.Commission = commission
	o.Status = Completed
}
