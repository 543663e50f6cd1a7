package domain

// BookingStep is one screen of the public booking flow.
type BookingStep string

const (
	StepSeats        BookingStep = "seats"
	StepPassengers   BookingStep = "passengers"
	StepSummary      BookingStep = "summary"
	StepPayment      BookingStep = "payment"
	StepConfirmation BookingStep = "confirmation"
)

// BookingSteps returns the ordered steps for a party. The passengers step is
// skipped for a single adult travelling without children.
func BookingSteps(adults, children int) []BookingStep {
	steps := []BookingStep{StepSeats}
	if !(adults == 1 && children == 0) {
		steps = append(steps, StepPassengers)
	}
	return append(steps, StepSummary, StepPayment, StepConfirmation)
}

// NextStep returns the step after current, or current itself when it is the last one.
func NextStep(steps []BookingStep, current BookingStep) BookingStep {
	for i, s := range steps {
		if s == current && i+1 < len(steps) {
			return steps[i+1]
		}
	}
	return current
}
