package skewer

// Mode selects how position groups are drawn.
type Mode interface {
	Name() string
	isMode()
}

// SkewerMode stacks discs above the axis, sized by occurrence.
type SkewerMode struct{}

func (SkewerMode) Name() string { return "skewer" }
func (SkewerMode) isMode()      {}

// NumericMode places every record on a value axis.
type NumericMode struct {
	Source ValueSource
	Domain Domain // nil means AutoDomain
}

func (NumericMode) Name() string { return "numeric" }
func (NumericMode) isMode()      {}
