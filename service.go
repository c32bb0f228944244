package currency

type (
	// Converter is the set of user intents the presentation layer sends.
	// Methods that change the base currency return a channel closed once
	// the resulting rate request settles.
	Converter interface {
		SetAmount(amount float64)
		SetAmountString(value string)
		SetBaseCurrency(code string) <-chan struct{}
		SetTargetCurrency(code string)
		Swap() <-chan struct{}
		SelectChip(code string) <-chan struct{}
		Retry() <-chan struct{}
		View() View
	}
)
