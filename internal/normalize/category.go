package normalize

import (
	"sort"
	"strings"
)

// CategoryOther is the catch-all category used when no keyword evidence
// points anywhere else.
const CategoryOther = "прочее"

// CategoryTable maps each provision category to its keyword list. Inference
// counts keyword occurrences over a provision's title and content and picks
// the category with the most hits.
type CategoryTable map[string][]string

// DefaultCategoryTable returns the built-in category keyword table.
func DefaultCategoryTable() CategoryTable {
	return CategoryTable{
		"оплата": {
			"оплат", "платеж", "платёж", "стоимость", "цена", "сумма",
			"рубл", "аванс", "предоплат", "вознаграждени", "счет", "счёт",
		},
		"сроки": {
			"срок", "дней", "дня", "дата", "период", "календарн",
			"месяц", "продлен",
		},
		"ответственность": {
			"ответственност", "неустойк", "пеня", "пени", "штраф",
			"убытк", "возмещени", "просрочк",
		},
		"права и обязанности": {
			"обязан", "обязуется", "вправе", "право", "должен",
			"гарантир", "выполн",
		},
		"конфиденциальность": {
			"конфиденциальн", "тайн", "разглашени", "персональн",
			"неразглашени",
		},
		"расторжение": {
			"расторж", "прекращ", "отказ", "аннулир", "одностороннем",
		},
	}
}

// Vocabulary reports whether category is part of the closed vocabulary
// (including the catch-all), returning its canonical spelling.
func (t CategoryTable) Vocabulary(category string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(category))
	if lower == CategoryOther {
		return CategoryOther, true
	}
	for name := range t {
		if lower == name {
			return name, true
		}
	}
	return "", false
}

// Infer picks the category whose keywords occur most often in title+content.
// Ties and zero-hit cases resolve to the catch-all, so a validated provision
// always carries a non-empty category.
func (t CategoryTable) Infer(title, content string) string {
	text := strings.ToLower(title + " " + content)
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names) // fixed iteration order keeps inference deterministic
	best := CategoryOther
	bestHits := 0
	tied := false
	for _, name := range names {
		hits := 0
		for _, kw := range t[name] {
			hits += strings.Count(text, kw)
		}
		switch {
		case hits > bestHits:
			best, bestHits, tied = name, hits, false
		case hits == bestHits && hits > 0:
			tied = true
		}
	}
	if bestHits == 0 || tied {
		return CategoryOther
	}
	return best
}
