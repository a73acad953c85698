package usecase

import (
	"strings"

	"github.com/annavdvet2000/chatbot11directanswers/internal/domain"
)

// minNameTokenLength filters out generic short name tokens ("de", "la") that
// would match almost any query.
const minNameTokenLength = 2

// ResolveEntities finds registry records whose person name appears in the
// query text. A record matches on its full lowercased name, or failing that
// on any single name token longer than minNameTokenLength; the first token
// hit wins so one person is never counted twice. Matches keep registry order.
// An empty result is a normal outcome, not an error.
func ResolveEntities(text string, registry []domain.PersonRecord) []domain.PersonRecord {
	lowered := strings.ToLower(text)

	var matches []domain.PersonRecord
	for _, rec := range registry {
		name := strings.ToLower(rec.Name)
		if name == "" {
			continue
		}
		if strings.Contains(lowered, name) {
			matches = append(matches, rec)
			continue
		}
		for _, token := range strings.Fields(name) {
			if len(token) > minNameTokenLength && strings.Contains(lowered, token) {
				matches = append(matches, rec)
				break
			}
		}
	}
	return matches
}
