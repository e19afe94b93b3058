package llm

import (
	"fmt"
	"strings"

	"github.com/futig/crm-assistant/internal/entity"
)

const extractUserInfoPrompt = `Extract the customer's contact details from the message below.
Reply with a single JSON object and nothing else, using exactly these keys:
{"name": "", "email": "", "company": "", "phone": ""}
Leave a value empty when the message does not state it. Do not guess.`

func categorizePrompt() string {
	labels := make([]string, 0, len(entity.Categories))
	for _, c := range entity.Categories {
		labels = append(labels, string(c))
	}

	return fmt.Sprintf(`Classify the customer's conversation into exactly one category.
Allowed categories: %s.
- support: the customer has a problem with a product or service
- sales: the customer wants to buy, upgrade or asks about pricing
- inquiring: the customer asks for general information
- resolved / unresolved: the customer reports that an issue was or was not fixed
- general: anything else
Reply with the category name only.`, strings.Join(labels, ", "))
}

// cleanJSONReply strips markdown code fences models like to wrap JSON in
func cleanJSONReply(reply string) string {
	reply = strings.TrimSpace(reply)
	if !strings.HasPrefix(reply, "```") {
		return reply
	}

	reply = strings.TrimPrefix(reply, "```")
	reply = strings.TrimPrefix(reply, "json")
	reply = strings.TrimSuffix(strings.TrimSpace(reply), "```")
	return strings.TrimSpace(reply)
}

// parseCategory accepts a bare label, tolerating case, punctuation and quotes
func parseCategory(reply string) (entity.ConversationCategory, error) {
	label := strings.ToLower(strings.Trim(strings.TrimSpace(reply), "\"'`.!"))
	if fields := strings.Fields(label); len(fields) > 0 {
		label = fields[0]
	}
	return entity.ParseCategory(label)
}
