package domain

// TransferItem pairs a fully attributed image with its destination.
type TransferItem struct {
	Image       Image
	Destination string
}

// TransferPlan is the result of scanning one job's source tree.
type TransferPlan struct {
	Items []TransferItem
	// Unresolved holds images whose destination could not be computed.
	Unresolved []Outcome
	Warnings   []string
}
