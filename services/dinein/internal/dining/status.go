package dining

type TableStatus string

const (
	TableAvailable      TableStatus = "AVAILABLE"
	TableOccupied       TableStatus = "OCCUPIED"
	TableRequestingBill TableStatus = "REQUESTING_BILL"
	TableCleaning       TableStatus = "CLEANING"
)

type OrderStatus string

const (
	OrderDraft     OrderStatus = "DRAFT"
	OrderActive    OrderStatus = "ACTIVE"
	OrderCompleted OrderStatus = "COMPLETED"
	OrderCanceled  OrderStatus = "CANCELED"
)

// Open reports whether the order still occupies its table.
func (s OrderStatus) Open() bool {
	return s == OrderDraft || s == OrderActive
}

type ItemStatus string

const (
	ItemDraft    ItemStatus = "DRAFT"
	ItemPending  ItemStatus = "PENDING"
	ItemCooking  ItemStatus = "COOKING"
	ItemReady    ItemStatus = "READY"
	ItemServed   ItemStatus = "SERVED"
	ItemCanceled ItemStatus = "CANCELED"
)

func (s ItemStatus) Valid() bool {
	switch s {
	case ItemDraft, ItemPending, ItemCooking, ItemReady, ItemServed, ItemCanceled:
		return true
	}
	return false
}

// transitions maps a state to the states it may move to. States without an
// entry are terminal.
type transitions[S ~string] map[S][]S

func (t transitions[S]) allows(from, to S) bool {
	for _, next := range t[from] {
		if next == to {
			return true
		}
	}
	return false
}

var tableTransitions = transitions[TableStatus]{
	TableAvailable:      {TableOccupied},
	TableOccupied:       {TableRequestingBill, TableCleaning},
	TableRequestingBill: {TableCleaning},
	TableCleaning:       {TableAvailable},
}

// CANCELED is reachable but no flow uses it yet.
var orderTransitions = transitions[OrderStatus]{
	OrderDraft:  {OrderActive, OrderCanceled},
	OrderActive: {OrderCompleted, OrderCanceled},
}

var itemTransitions = transitions[ItemStatus]{
	ItemDraft:   {ItemPending},
	ItemPending: {ItemCooking, ItemCanceled},
	ItemCooking: {ItemReady, ItemCanceled},
	ItemReady:   {ItemServed},
}

func checkTableTransition(t *Table, to TableStatus) error {
	if !tableTransitions.allows(t.Status, to) {
		return rejected("table %s cannot move from %s to %s", t.Code, t.Status, to)
	}
	return nil
}

func checkOrderTransition(o *Order, to OrderStatus) error {
	if !orderTransitions.allows(o.Status, to) {
		return rejected("order %s cannot move from %s to %s", o.ID, o.Status, to)
	}
	return nil
}

// checkItemTransition reports whether from -> to is legal. Self transitions
// are checked by the caller.
func checkItemTransition(from, to ItemStatus) error {
	switch {
	case !to.Valid():
		return rejected("unknown item status %q", to)
	case to == ItemDraft:
		return rejected("invalid item transition %s -> %s: items cannot return to %s", from, to, ItemDraft)
	case from == ItemServed || from == ItemCanceled:
		return rejected("invalid item transition %s -> %s: item is already %s", from, to, from)
	case !itemTransitions.allows(from, to):
		return rejected("invalid item transition %s -> %s", from, to)
	}
	return nil
}
