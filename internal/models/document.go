// Package models defines core data structures for contracts, paragraphs, and risk analysis.
package models

// Paragraph is one addressable unit of contract text. IDs are assigned
// sequentially in document order (p1, p2, ...) and never change; they are the
// sole mechanism for cross-referencing extracted claims back to source text.
type Paragraph struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// SourceRef points from an extracted claim back to the paragraph(s) that
// justify it. In a validated document every paragraph ID resolves to a
// paragraph of the same document.
type SourceRef struct {
	ParagraphIDs []string `json:"paragraphIds,omitempty"`
	Comment      string   `json:"comment,omitempty"`
}

// Party roles. Every payment obligation names one of these two roles on each side.
const (
	PartyCustomer   = "customer"
	PartyContractor = "contractor"
)

// Priority values for provisions and tasks.
const (
	PriorityPrimary   = "primary"
	PrioritySecondary = "secondary"
)

// ContractMeta holds the general attributes extracted from a contract header.
type ContractMeta struct {
	Number      string   `json:"number,omitempty"`
	Date        string   `json:"date,omitempty"`
	City        string   `json:"city,omitempty"`
	Subject     string   `json:"subject,omitempty"`
	Parties     []string `json:"parties,omitempty"`
	TotalAmount *Amount  `json:"totalAmount,omitempty"`
}

// KeyProvision is one extracted provision of the contract.
// Category is always a non-empty value from the category vocabulary.
type KeyProvision struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	Content    string      `json:"content"`
	Category   string      `json:"category"`
	VisibleFor string      `json:"visibleFor,omitempty"`
	SourceRefs []SourceRef `json:"sourceRefs"`
	Priority   string      `json:"priority"`
}

// Amount kinds.
const (
	AmountFixed      = "fixed"
	AmountPercentage = "percentage"
	AmountCalculated = "calculated"
)

// Amount is a monetary value. Value is always a finite number after
// validation (string amounts are coerced, unparsable ones become 0).
type Amount struct {
	Value    float64 `json:"value"`
	Currency string  `json:"currency,omitempty"`
	Kind     string  `json:"kind"`
	Formula  string  `json:"formula,omitempty"`
}

// Schedule kinds.
const (
	ScheduleOneTime      = "one-time"
	ScheduleInstallments = "installments"
	ScheduleMilestone    = "milestone"
	SchedulePeriodic     = "periodic"
)

// Schedule describes when a payment obligation is due. Kind-specific fields
// are optional and only meaningful for their kind.
type Schedule struct {
	Kind         string   `json:"kind"`
	DueDate      string   `json:"dueDate,omitempty"`      // one-time
	Installments []Amount `json:"installments,omitempty"` // installments
	Milestone    string   `json:"milestone,omitempty"`    // milestone
	Period       string   `json:"period,omitempty"`       // periodic
}

// PaymentObligation is one extracted payment duty between the two parties.
type PaymentObligation struct {
	ID         string      `json:"id"`
	Payer      string      `json:"payer"`
	Recipient  string      `json:"recipient"`
	Amount     Amount      `json:"amount"`
	Schedule   *Schedule   `json:"schedule,omitempty"`
	SourceRefs []SourceRef `json:"sourceRefs"`
}

// RelativeDate types and directions.
const (
	DateCalendar = "calendar"
	DateWorking  = "working"

	DirectionBefore = "before"
	DirectionAfter  = "after"
)

// RelativeDate is a deadline expressed as an offset from a yet-unspecified
// reference date. It is materialized into an absolute date only when combined
// with a caller-supplied reference date; it is never stored resolved.
type RelativeDate struct {
	Value       int    `json:"value"`
	Type        string `json:"type"`      // calendar | working
	Direction   string `json:"direction"` // before | after
	Description string `json:"description,omitempty"`
}

// ContractTask is something that must happen within a contract stage.
type ContractTask struct {
	ID         string        `json:"id"`
	Label      string        `json:"label"`
	AssignedTo string        `json:"assignedTo"`
	SourceRefs []SourceRef   `json:"sourceRefs"`
	Priority   string        `json:"priority"`
	Deadline   *RelativeDate `json:"deadline,omitempty"`
}

// ContractState is a catalog entry describing one reachable lifecycle stage
// of the contract (e.g. "in execution", "terminated") and what must happen in
// it. It is not a live state machine instance.
type ContractState struct {
	ID          string         `json:"id"`
	Label       string         `json:"label"`
	Description string         `json:"description,omitempty"`
	SourceRefs  []SourceRef    `json:"sourceRefs"`
	Tasks       []ContractTask `json:"tasks,omitempty"`
}

// ContractDocument is the validated output of the extraction pipeline.
// It is constructed once per raw-text submission and is immutable after
// validation; a new document replaces the old one, never a partial update.
type ContractDocument struct {
	ID                 string              `json:"id,omitempty"`
	OriginalText       string              `json:"originalText"`
	Paragraphs         []Paragraph         `json:"paragraphs"`
	ContractState      ContractMeta        `json:"contractState"`
	KeyProvisions      []KeyProvision      `json:"keyProvisions"`
	PaymentObligations []PaymentObligation `json:"paymentObligations"`
	PossibleStates     []ContractState     `json:"possibleStates"`
}

// ParagraphIDSet returns the set of paragraph IDs present in the document.
func (d *ContractDocument) ParagraphIDSet() map[string]bool {
	set := make(map[string]bool, len(d.Paragraphs))
	for _, p := range d.Paragraphs {
		set[p.ID] = true
	}
	return set
}
