package usecase

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"

	"github.com/mvoss/signalbridge/internal/domain"
)

// ConfirmPolicy decides whether a proposed trade goes out. The execution path
// never knows which policy is active.
type ConfirmPolicy interface {
	Confirm(sig *domain.TradeSignal, analysis string) (bool, error)
}

// AutoConfirm approves everything. The fully automated mode.
type AutoConfirm struct{}

func (AutoConfirm) Confirm(*domain.TradeSignal, string) (bool, error) { return true, nil }

// PromptConfirm blocks on an interactive console prompt before every
// execution. The safety-switch mode for supervised runs.
type PromptConfirm struct{}

func (PromptConfirm) Confirm(sig *domain.TradeSignal, analysis string) (bool, error) {
	summary := fmt.Sprintf("%s %s", sig.Action, sig.Symbol)
	if sig.Class == domain.ClassForex {
		summary = fmt.Sprintf("%s %s @ %.5f, TP %.5f, SL %.5f",
			sig.Action, sig.Symbol, sig.Entry, sig.FirstTakeProfit(), sig.StopLoss)
	}
	if analysis != "" {
		summary += " | " + analysis
	}

	confirmed := false
	err := survey.AskOne(&survey.Confirm{
		Message: "Execute trade? " + summary,
		Default: false,
	}, &confirmed)
	if err != nil {
		return false, err
	}
	return confirmed, nil
}
