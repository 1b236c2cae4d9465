package observable

import "testing"

type profile struct {
	Entity
	host string
	port int
}

func TestSetFieldAssignsAndNotifies(t *testing.T) {
	p := &profile{}

	var events []string
	p.OnChange(func(property string) {
		events = append(events, property)
	})

	if changed := SetField(&p.Entity, &p.host, "robot.local", "Host"); !changed {
		t.Error("SetField() = false, want true for a new value")
	}
	if p.host != "robot.local" {
		t.Errorf("host = %q, want %q", p.host, "robot.local")
	}
	if len(events) != 1 || events[0] != "Host" {
		t.Errorf("events = %v, want [Host]", events)
	}
}

func TestSetFieldEqualValueIsNoOp(t *testing.T) {
	p := &profile{host: "robot.local"}

	notified := false
	p.OnChange(func(string) { notified = true })

	if changed := SetField(&p.Entity, &p.host, "robot.local", "Host"); changed {
		t.Error("SetField() = true, want false for an equal value")
	}
	if notified {
		t.Error("handler fired for an equal value")
	}
}

func TestSetFieldFiresOncePerChange(t *testing.T) {
	p := &profile{}

	count := 0
	p.OnChange(func(string) { count++ })

	SetField(&p.Entity, &p.port, 443, "Port")
	SetField(&p.Entity, &p.port, 443, "Port")

	if count != 1 {
		t.Errorf("handler fired %d times, want 1", count)
	}
}

func TestRaiseChangedReachesAllHandlersInOrder(t *testing.T) {
	p := &profile{}

	var order []int
	p.OnChange(func(string) { order = append(order, 1) })
	p.OnChange(func(string) { order = append(order, 2) })

	p.RaiseChanged("Derived")

	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("handler order = %v, want [1 2]", order)
	}
}

func TestOnChangeUnsubscribe(t *testing.T) {
	p := &profile{}

	first := 0
	second := 0
	unsubscribe := p.OnChange(func(string) { first++ })
	p.OnChange(func(string) { second++ })

	p.RaiseChanged("Host")
	unsubscribe()
	p.RaiseChanged("Host")
	// Unsubscribing twice must not panic or affect other handlers.
	unsubscribe()
	p.RaiseChanged("Host")

	if first != 1 {
		t.Errorf("unsubscribed handler fired %d times, want 1", first)
	}
	if second != 3 {
		t.Errorf("remaining handler fired %d times, want 3", second)
	}
}

func TestHandlersRunInline(t *testing.T) {
	p := &profile{}

	sawValue := ""
	p.OnChange(func(string) {
		// The handler observes the already-assigned value, on the
		// mutating goroutine, before the setter returns.
		sawValue = p.host
	})

	SetField(&p.Entity, &p.host, "relay.example.com", "Host")

	if sawValue != "relay.example.com" {
		t.Errorf("handler saw %q, want %q", sawValue, "relay.example.com")
	}
}
