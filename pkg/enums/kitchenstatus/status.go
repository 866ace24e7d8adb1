package kitchenstatus

import (
	"strings"
)

type Status struct {
	Name string
}

func (s Status) Code() string {
	return s.Name
}

func (s Status) Label() string {
	parts := strings.Split(s.Name, "-")
	for i := range parts {
		if len(parts[i]) > 0 {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, " ")
}

// ItemStatus returns the order line status a kitchen status maps to, or ""
// when the kitchen status has no counterpart on the dining floor.
func (s Status) ItemStatus() string {
	switch s.Name {
	case Statuses.Accepted.Name:
		return "PENDING"
	case Statuses.Started.Name:
		return "COOKING"
	case Statuses.Ready.Name:
		return "READY"
	case Statuses.Delivered.Name:
		return "SERVED"
	case Statuses.Reject.Name, Statuses.Cancelled.Name:
		return "CANCELED"
	default:
		return ""
	}
}

type Enum struct {
	Created   Status
	Accepted  Status
	Started   Status
	Ready     Status
	Delivered Status
	Reject    Status
	Cancelled Status
}

var Statuses = Enum{
	Created:   Status{Name: "created"},
	Accepted:  Status{Name: "accepted"},
	Started:   Status{Name: "started"},
	Ready:     Status{Name: "ready"},
	Delivered: Status{Name: "delivered"},
	Reject:    Status{Name: "reject"},
	Cancelled: Status{Name: "cancelled"},
}

var All = []Status{
	Statuses.Created,
	Statuses.Accepted,
	Statuses.Started,
	Statuses.Ready,
	Statuses.Delivered,
	Statuses.Reject,
	Statuses.Cancelled,
}

// ByName returns the status for a given name, or nil if not found
func ByName(name string) *Status {
	for _, s := range All {
		if s.Name == name {
			return &s
		}
	}
	return nil
}
