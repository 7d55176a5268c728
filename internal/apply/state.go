package apply

// State is a node of the application flow.
type State int

const (
	Start State = iota
	CheckEasyApply
	OpenDetail
	CheckAlreadyApplied
	LocateApplyButton
	ClickApplyButton
	OptionalPhoneStep
	OptionalNextAfterPhone
	OptionalFileUploadStep
	StepLoop
	Submitted
	Abandoned
	AlreadyApplied
	SkippedNoEasyApply
)

var stateNames = [...]string{
	Start:                  "start",
	CheckEasyApply:         "check-easy-apply",
	OpenDetail:             "open-detail",
	CheckAlreadyApplied:    "check-already-applied",
	LocateApplyButton:      "locate-apply-button",
	ClickApplyButton:       "click-apply-button",
	OptionalPhoneStep:      "phone-step",
	OptionalNextAfterPhone: "next-after-phone",
	OptionalFileUploadStep: "file-upload-step",
	StepLoop:               "step-loop",
	Submitted:              "submitted",
	Abandoned:              "abandoned",
	AlreadyApplied:         "already-applied",
	SkippedNoEasyApply:     "skipped-no-easy-apply",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether the attempt is over in this state.
func (s State) Terminal() bool {
	switch s {
	case Submitted, Abandoned, AlreadyApplied, SkippedNoEasyApply:
		return true
	default:
		return false
	}
}

// Reasons recorded on terminal attempts.
const (
	ReasonSubmitted           = "submitted"
	ReasonNoEasyApply         = "no easy apply"
	ReasonAlreadyApplied      = "already applied"
	ReasonOpenDetailFailed    = "cannot open posting detail"
	ReasonApplyButtonMissing  = "easy apply button not found"
	ReasonApplyClickFailed    = "easy apply button click failed"
	ReasonSubmitClickFailed   = "submit click failed"
	ReasonContinueClickFailed = "continue click failed"
	ReasonNoControl           = "no submit or continue control"
	ReasonManualIntervention  = "manual intervention required"
	ReasonCancelled           = "cancelled"
)
