// Package normalize turns untrusted extraction-service JSON into values that
// provably satisfy the document and risk-analysis invariants. Missing or
// malformed optional data never causes an error; only a fundamentally
// unusable top-level structure does.
package normalize

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/skriv/kontrakt/internal/models"
)

var (
	priorities    = []string{models.PriorityPrimary, models.PrioritySecondary}
	partyRoles    = []string{models.PartyCustomer, models.PartyContractor}
	amountKinds   = []string{models.AmountFixed, models.AmountPercentage, models.AmountCalculated}
	scheduleKinds = []string{models.ScheduleOneTime, models.ScheduleInstallments, models.ScheduleMilestone, models.SchedulePeriodic}
	dateTypes     = []string{models.DateCalendar, models.DateWorking}
	directions    = []string{models.DirectionBefore, models.DirectionAfter}
)

// Normalizer validates raw extraction output against the document model.
type Normalizer struct {
	categories CategoryTable
}

// New creates a Normalizer with the given category table; nil uses the default.
func New(categories CategoryTable) *Normalizer {
	if categories == nil {
		categories = DefaultCategoryTable()
	}
	return &Normalizer{categories: categories}
}

// Document normalizes a raw merged extraction result into a validated
// ContractDocument. paragraphs must come from the segmenter; they define the
// valid reference set. Returns an error only when raw is not an object.
func (n *Normalizer) Document(raw map[string]interface{}, paragraphs []models.Paragraph, originalText string) (*models.ContractDocument, error) {
	if raw == nil {
		return nil, fmt.Errorf("extraction result is not an object")
	}
	doc := &models.ContractDocument{
		OriginalText:       originalText,
		Paragraphs:         paragraphs,
		KeyProvisions:      []models.KeyProvision{},
		PaymentObligations: []models.PaymentObligation{},
		PossibleStates:     []models.ContractState{},
	}
	valid := doc.ParagraphIDSet()

	doc.ContractState = n.meta(asMap(raw["contractState"]))
	for _, item := range asSlice(raw["keyProvisions"]) {
		if m := asMap(item); m != nil {
			doc.KeyProvisions = append(doc.KeyProvisions, n.provision(m, valid))
		}
	}
	for _, item := range asSlice(raw["paymentObligations"]) {
		if m := asMap(item); m != nil {
			doc.PaymentObligations = append(doc.PaymentObligations, n.obligation(m, valid))
		}
	}
	for _, item := range asSlice(raw["possibleStates"]) {
		if m := asMap(item); m != nil {
			doc.PossibleStates = append(doc.PossibleStates, n.state(m, valid))
		}
	}
	return doc, nil
}

func (n *Normalizer) meta(m map[string]interface{}) models.ContractMeta {
	meta := models.ContractMeta{
		Number:  str(m["number"]),
		Date:    str(m["date"]),
		City:    str(m["city"]),
		Subject: str(m["subject"]),
		Parties: stringSlice(m["parties"]),
	}
	// Optional total: unparsable values are treated as absent, not zero.
	if total := asMap(m["totalAmount"]); total != nil {
		if value, ok := num(total["value"]); ok {
			meta.TotalAmount = &models.Amount{
				Value:    value,
				Currency: str(total["currency"]),
				Kind:     clampEnum(str(total["kind"]), amountKinds, models.AmountFixed),
				Formula:  str(total["formula"]),
			}
		}
	}
	return meta
}

func (n *Normalizer) provision(m map[string]interface{}, valid map[string]bool) models.KeyProvision {
	title := str(m["title"])
	content := str(m["content"])
	category := str(m["category"])
	if canonical, ok := n.categories.Vocabulary(category); ok && !missing(category) {
		category = canonical
	} else {
		category = n.categories.Infer(title, content)
	}
	return models.KeyProvision{
		ID:         idOr(m["id"]),
		Title:      title,
		Content:    content,
		Category:   category,
		VisibleFor: str(m["visibleFor"]),
		SourceRefs: n.sourceRefs(m["sourceRefs"], valid),
		Priority:   clampEnum(str(m["priority"]), priorities, models.PriorityPrimary),
	}
}

func (n *Normalizer) obligation(m map[string]interface{}, valid map[string]bool) models.PaymentObligation {
	ob := models.PaymentObligation{
		ID:         idOr(m["id"]),
		Payer:      clampEnum(str(m["payer"]), partyRoles, models.PartyCustomer),
		Recipient:  clampEnum(str(m["recipient"]), partyRoles, models.PartyContractor),
		Amount:     n.amount(asMap(m["amount"])),
		SourceRefs: n.sourceRefs(m["sourceRefs"], valid),
	}
	if sched := asMap(m["schedule"]); sched != nil {
		ob.Schedule = n.schedule(sched)
	}
	return ob
}

// amount coerces an amount object; a missing or unparsable value becomes 0.
func (n *Normalizer) amount(m map[string]interface{}) models.Amount {
	return models.Amount{
		Value:    numOr(m["value"], 0),
		Currency: str(m["currency"]),
		Kind:     clampEnum(str(m["kind"]), amountKinds, models.AmountFixed),
		Formula:  str(m["formula"]),
	}
}

func (n *Normalizer) schedule(m map[string]interface{}) *models.Schedule {
	s := &models.Schedule{
		Kind:      clampEnum(str(m["kind"]), scheduleKinds, models.ScheduleOneTime),
		DueDate:   str(m["dueDate"]),
		Milestone: str(m["milestone"]),
		Period:    str(m["period"]),
	}
	for _, item := range asSlice(m["installments"]) {
		if im := asMap(item); im != nil {
			s.Installments = append(s.Installments, n.amount(im))
		}
	}
	return s
}

func (n *Normalizer) state(m map[string]interface{}, valid map[string]bool) models.ContractState {
	st := models.ContractState{
		ID:          idOr(m["id"]),
		Label:       str(m["label"]),
		Description: str(m["description"]),
		SourceRefs:  n.sourceRefs(m["sourceRefs"], valid),
	}
	for _, item := range asSlice(m["tasks"]) {
		if tm := asMap(item); tm != nil {
			st.Tasks = append(st.Tasks, n.task(tm, valid))
		}
	}
	return st
}

func (n *Normalizer) task(m map[string]interface{}, valid map[string]bool) models.ContractTask {
	t := models.ContractTask{
		ID:         idOr(m["id"]),
		Label:      str(m["label"]),
		AssignedTo: clampEnum(str(m["assignedTo"]), partyRoles, models.PartyContractor),
		SourceRefs: n.sourceRefs(m["sourceRefs"], valid),
		Priority:   clampEnum(str(m["priority"]), priorities, models.PriorityPrimary),
	}
	// A deadline is kept only when its value is a positive integer; anything
	// else means the task has no schedule information, not an invalid one.
	if dm := asMap(m["deadline"]); dm != nil {
		if value, ok := num(dm["value"]); ok && value > 0 && value == float64(int(value)) {
			t.Deadline = &models.RelativeDate{
				Value:       int(value),
				Type:        clampEnum(str(dm["type"]), dateTypes, models.DateCalendar),
				Direction:   clampEnum(str(dm["direction"]), directions, models.DirectionAfter),
				Description: str(dm["description"]),
			}
		}
	}
	return t
}

// sourceRefs filters every ref's paragraph IDs against the valid set. A ref
// whose ID list empties out is dropped entirely; an item ending up with zero
// refs keeps an empty (never nil) slice, which marks it as unlinked.
func (n *Normalizer) sourceRefs(v interface{}, valid map[string]bool) []models.SourceRef {
	refs := []models.SourceRef{}
	for _, item := range asSlice(v) {
		m := asMap(item)
		if m == nil {
			continue
		}
		var kept []string
		for _, id := range stringSlice(m["paragraphIds"]) {
			if valid[id] {
				kept = append(kept, id)
			}
		}
		if len(kept) == 0 {
			continue
		}
		refs = append(refs, models.SourceRef{
			ParagraphIDs: kept,
			Comment:      str(m["comment"]),
		})
	}
	return refs
}

// idOr returns the supplied id or generates a short one, the same way the
// rest of the system mints chunk-style identifiers.
func idOr(v interface{}) string {
	if id := str(v); id != "" {
		return id
	}
	return uuid.New().String()[:8]
}
