// Package msg defines the closed message taxonomy exchanged over the bus:
// instances, message kinds, the tagged Msg union, and the packet/target
// types used for subscription and routing.
package msg

// Instance identifies a bus participant. The zero value, InstanceNone,
// means "no sender" / "no target" and is never a legal subscription key.
type Instance uint8

const (
	InstanceNone Instance = iota
	// InstanceAll is a subscription wildcard matching any sender.
	InstanceAll
	// InstanceOther matches any remote peer instance, used by connectors
	// that don't know the full instance roster ahead of time.
	InstanceOther
	InstanceExample
	InstanceDS
	InstanceTO
	InstanceHS
	InstanceGround
)

// String renders the instance for logging.
func (i Instance) String() string {
	switch i {
	case InstanceNone:
		return "none"
	case InstanceAll:
		return "all"
	case InstanceOther:
		return "other"
	case InstanceExample:
		return "example"
	case InstanceDS:
		return "ds"
	case InstanceTO:
		return "to"
	case InstanceHS:
		return "hs"
	case InstanceGround:
		return "ground"
	default:
		return "unknown"
	}
}

// ParseInstance looks up an Instance by its String() name, for config
// files that name instances rather than encoding the numeric tag
// directly.
func ParseInstance(name string) (Instance, bool) {
	for i := InstanceNone; i <= InstanceGround; i++ {
		if i.String() == name {
			return i, true
		}
	}
	return InstanceNone, false
}
