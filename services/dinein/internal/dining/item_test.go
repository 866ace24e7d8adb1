package dining

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func newTestItem(status ItemStatus) *Item {
	item, err := NewItem(uuid.New(), MenuItem{ID: uuid.New(), Name: "Beef Pho", Price: decimal.NewFromInt(45000), Available: true}, 1, "", OriginGuest)
	if err != nil {
		panic(err)
	}
	item.Status = status
	return item
}

func TestNewItem(t *testing.T) {
	menu := MenuItem{ID: uuid.New(), Name: "Beef Pho", Price: decimal.NewFromInt(45000), Available: true}

	tests := []struct {
		name       string
		menu       MenuItem
		qty        int
		origin     Origin
		wantStatus ItemStatus
		wantSent   bool
		wantErr    bool
	}{
		{name: "staffGoesToKitchen", menu: menu, qty: 2, origin: OriginStaff, wantStatus: ItemPending, wantSent: true},
		{name: "guestStaysDraft", menu: menu, qty: 1, origin: OriginGuest, wantStatus: ItemDraft},
		{name: "zeroQuantity", menu: menu, qty: 0, origin: OriginStaff, wantErr: true},
		{name: "unavailableMenuItem", menu: MenuItem{ID: uuid.New(), Name: "Sugarcane Juice", Available: false}, qty: 1, origin: OriginGuest, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, err := NewItem(uuid.New(), tt.menu, tt.qty, "no onions", tt.origin)
			if tt.wantErr {
				if !errors.Is(err, ErrRejected) {
					t.Fatalf("NewItem() error = %v, want rejection", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewItem() error = %v", err)
			}
			if item.Status != tt.wantStatus {
				t.Errorf("Status = %s, want %s", item.Status, tt.wantStatus)
			}
			if (item.SentAt != nil) != tt.wantSent {
				t.Errorf("SentAt set = %v, want %v", item.SentAt != nil, tt.wantSent)
			}
			if item.Name != tt.menu.Name || !item.UnitPrice.Equal(tt.menu.Price) {
				t.Errorf("snapshot = %s %s, want %s %s", item.Name, item.UnitPrice, tt.menu.Name, tt.menu.Price)
			}
		})
	}
}

func TestItemSnapshotIgnoresLaterMenuChanges(t *testing.T) {
	menu := MenuItem{ID: uuid.New(), Name: "Beef Pho", Price: decimal.NewFromInt(45000), Available: true}
	item, err := NewItem(uuid.New(), menu, 1, "", OriginStaff)
	if err != nil {
		t.Fatalf("NewItem() error = %v", err)
	}

	menu.Name = "Beef Pho Special"
	menu.Price = decimal.NewFromInt(60000)

	if item.Name != "Beef Pho" || !item.UnitPrice.Equal(decimal.NewFromInt(45000)) {
		t.Errorf("snapshot changed to %s %s", item.Name, item.UnitPrice)
	}
}

func TestItemTransitionStatus(t *testing.T) {
	tests := []struct {
		name    string
		from    ItemStatus
		to      ItemStatus
		changed bool
		wantErr bool
	}{
		{name: "draftToPending", from: ItemDraft, to: ItemPending, changed: true},
		{name: "pendingToCooking", from: ItemPending, to: ItemCooking, changed: true},
		{name: "pendingToCanceled", from: ItemPending, to: ItemCanceled, changed: true},
		{name: "cookingToReady", from: ItemCooking, to: ItemReady, changed: true},
		{name: "cookingToCanceled", from: ItemCooking, to: ItemCanceled, changed: true},
		{name: "readyToServed", from: ItemReady, to: ItemServed, changed: true},
		{name: "sameStatusIsNoop", from: ItemCooking, to: ItemCooking, changed: false},
		{name: "pendingToReadySkipsCooking", from: ItemPending, to: ItemReady, wantErr: true},
		{name: "readyToCanceled", from: ItemReady, to: ItemCanceled, wantErr: true},
		{name: "servedIsTerminal", from: ItemServed, to: ItemPending, wantErr: true},
		{name: "canceledIsTerminal", from: ItemCanceled, to: ItemPending, wantErr: true},
		{name: "backToDraft", from: ItemPending, to: ItemDraft, wantErr: true},
		{name: "unknownStatus", from: ItemPending, to: ItemStatus("BURNT"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := newTestItem(tt.from)

			changed, err := item.TransitionStatus(tt.to, "")
			if tt.wantErr {
				if !errors.Is(err, ErrRejected) {
					t.Fatalf("TransitionStatus() error = %v, want rejection", err)
				}
				if item.Status != tt.from {
					t.Errorf("Status = %s after rejected transition, want %s", item.Status, tt.from)
				}
				return
			}
			if err != nil {
				t.Fatalf("TransitionStatus() error = %v", err)
			}
			if changed != tt.changed {
				t.Errorf("TransitionStatus() changed = %v, want %v", changed, tt.changed)
			}
			if item.Status != tt.to {
				t.Errorf("Status = %s, want %s", item.Status, tt.to)
			}
		})
	}
}

func TestItemTransitionStampsTimestamps(t *testing.T) {
	item := newTestItem(ItemDraft)

	steps := []struct {
		to    ItemStatus
		stamp func() bool
	}{
		{to: ItemPending, stamp: func() bool { return item.SentAt != nil }},
		{to: ItemCooking, stamp: func() bool { return item.CookingAt != nil }},
		{to: ItemReady, stamp: func() bool { return item.ReadyAt != nil }},
		{to: ItemServed, stamp: func() bool { return item.ServedAt != nil }},
	}

	for _, step := range steps {
		if _, err := item.TransitionStatus(step.to, ""); err != nil {
			t.Fatalf("TransitionStatus(%s) error = %v", step.to, err)
		}
		if !step.stamp() {
			t.Errorf("timestamp for %s not set", step.to)
		}
	}
	if item.CanceledAt != nil {
		t.Error("CanceledAt should stay nil for a served item")
	}
}

func TestItemCancelReason(t *testing.T) {
	tests := []struct {
		name   string
		reason string
		want   string
	}{
		{name: "withReason", reason: "  kitchen ran out  ", want: "kitchen ran out"},
		{name: "blankReason", reason: "   ", want: DefaultCancelReason},
		{name: "noReason", reason: "", want: DefaultCancelReason},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := newTestItem(ItemPending)
			if _, err := item.TransitionStatus(ItemCanceled, tt.reason); err != nil {
				t.Fatalf("TransitionStatus() error = %v", err)
			}
			if item.CancelReason != tt.want {
				t.Errorf("CancelReason = %q, want %q", item.CancelReason, tt.want)
			}
			if item.CanceledAt == nil {
				t.Error("CanceledAt not set")
			}
			if item.Billable() {
				t.Error("canceled item should not be billable")
			}
		})
	}
}

func TestItemEdit(t *testing.T) {
	tests := []struct {
		name    string
		status  ItemStatus
		qty     int
		wantErr bool
	}{
		{name: "pending", status: ItemPending, qty: 3},
		{name: "cooking", status: ItemCooking, qty: 2},
		{name: "ready", status: ItemReady, qty: 2, wantErr: true},
		{name: "served", status: ItemServed, qty: 2, wantErr: true},
		{name: "canceled", status: ItemCanceled, qty: 2, wantErr: true},
		{name: "zeroQuantity", status: ItemPending, qty: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := newTestItem(tt.status)
			err := item.Edit(tt.qty, "extra herbs")
			if tt.wantErr {
				if !errors.Is(err, ErrRejected) {
					t.Errorf("Edit() error = %v, want rejection", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Edit() error = %v", err)
			}
			if item.Quantity != tt.qty || item.Note != "extra herbs" {
				t.Errorf("Edit() left %d %q", item.Quantity, item.Note)
			}
		})
	}
}

func TestItemCheckRemovable(t *testing.T) {
	tests := []struct {
		status  ItemStatus
		wantErr bool
	}{
		{status: ItemDraft},
		{status: ItemPending},
		{status: ItemCooking},
		{status: ItemCanceled},
		{status: ItemReady, wantErr: true},
		{status: ItemServed, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			err := newTestItem(tt.status).CheckRemovable()
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckRemovable() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
