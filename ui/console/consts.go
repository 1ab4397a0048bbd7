package console

const (
	// Default terminal width in characters.
	defaultTermWidth = 80
	// Width of the separator lines printed between sections.
	maxRuleWidth = 100
)
