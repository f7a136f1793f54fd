package pipeline

import "github.com/skriv/kontrakt/internal/section"

// Facet instructions sent verbatim to the extraction service. Each asks for
// exactly one disjoint section of the unified document, so merged facets
// never write overlapping fields. Paragraph markers like [p3] from the
// rendered section text are echoed back in sourceRefs.

const promptPreamble = `Ты — система извлечения структуры из текста договора. ` +
	`Отвечай строго одним JSON-объектом без пояснений. ` +
	`Каждый абзац входного текста помечен идентификатором вида [p3]; ` +
	`указывай эти идентификаторы в sourceRefs.paragraphIds.`

var facetInstructions = map[section.Facet]string{
	section.FacetMetadata: promptPreamble + `
Извлеки общие сведения о договоре. Схема ответа:
{"contractState": {"number": string, "date": string, "city": string, "subject": string,
"parties": [string], "totalAmount": {"value": number, "currency": string, "kind": "fixed"|"percentage"|"calculated"}}}`,

	section.FacetObligations: promptPreamble + `
Извлеки ключевые положения и обязательства договора. Схема ответа:
{"keyProvisions": [{"id": string, "title": string, "content": string, "category": string,
"priority": "primary"|"secondary", "sourceRefs": [{"paragraphIds": [string], "comment": string}]}]}`,

	section.FacetPayments: promptPreamble + `
Извлеки платежные обязательства сторон. Роли сторон: "customer" (заказчик) и "contractor" (исполнитель). Схема ответа:
{"paymentObligations": [{"id": string, "payer": string, "recipient": string,
"amount": {"value": number, "currency": string, "kind": "fixed"|"percentage"|"calculated", "formula": string},
"schedule": {"kind": "one-time"|"installments"|"milestone"|"periodic", "dueDate": string, "period": string},
"sourceRefs": [{"paragraphIds": [string]}]}]}`,

	section.FacetStates: promptPreamble + `
Извлеки возможные стадии жизненного цикла договора и задачи в каждой стадии. Схема ответа:
{"possibleStates": [{"id": string, "label": string, "description": string,
"sourceRefs": [{"paragraphIds": [string]}],
"tasks": [{"id": string, "label": string, "assignedTo": "customer"|"contractor",
"priority": "primary"|"secondary",
"deadline": {"value": number, "type": "calendar"|"working", "direction": "before"|"after", "description": string},
"sourceRefs": [{"paragraphIds": [string]}]}]}]}`,
}

// monolithicInstruction covers the whole document in one call; used only when
// the facet strategy as a whole is unusable.
const monolithicInstruction = promptPreamble + `
Извлеки из договора все разделы сразу. Схема ответа:
{"contractState": {...}, "keyProvisions": [...], "paymentObligations": [...], "possibleStates": [...]}
со структурой разделов, как описано выше: contractState с реквизитами договора,
keyProvisions с ключевыми положениями, paymentObligations с платежами сторон
(роли "customer" и "contractor"), possibleStates со стадиями и задачами.`
