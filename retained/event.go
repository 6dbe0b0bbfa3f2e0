package retained

// ============================================================================
// Control Events
// ============================================================================

// ControlEvent identifies a kind of event a control sends to its targets.
type ControlEvent uint8

const (
	// ControlEventValueChanged fires when the user changes a control's value;
	// for a RefreshControl, when a pull gesture commits to a refresh.
	ControlEventValueChanged ControlEvent = iota + 1
)

func (e ControlEvent) String() string {
	switch e {
	case ControlEventValueChanged:
		return "value-changed"
	default:
		return "unknown"
	}
}

// ControlHandler is called when a control sends an event.
type ControlHandler func(event ControlEvent)

// controlTargets holds the handlers registered on a control, in
// registration order.
type controlTargets struct {
	next    uint64
	targets []controlTarget
}

type controlTarget struct {
	id      uint64
	event   ControlEvent
	handler ControlHandler
}

// add registers handler for event and returns a function removing it.
func (c *controlTargets) add(event ControlEvent, handler ControlHandler) (remove func()) {
	c.next++
	id := c.next
	c.targets = append(c.targets, controlTarget{id: id, event: event, handler: handler})
	return func() {
		for i, t := range c.targets {
			if t.id == id {
				c.targets = append(c.targets[:i], c.targets[i+1:]...)
				return
			}
		}
	}
}

// send calls every handler registered for event. Handlers added or removed
// while sending take effect on the next send.
func (c *controlTargets) send(event ControlEvent) {
	var matched []ControlHandler
	for _, t := range c.targets {
		if t.event == event {
			matched = append(matched, t.handler)
		}
	}
	for _, h := range matched {
		h(event)
	}
}
