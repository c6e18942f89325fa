package dolphin

// HookState is the lifecycle state of an Engine
type HookState int

const (
	Unhooked HookState = iota
	Hooking
	Hooked
	Unhooking
)

func (s HookState) String() string {
	switch s {
	case Unhooked:
		return "unhooked"
	case Hooking:
		return "hooking"
	case Hooked:
		return "hooked"
	case Unhooking:
		return "unhooking"
	}
	return "unknown"
}
