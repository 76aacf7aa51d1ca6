package models

// Category is the closed set of intents a message can classify into.
type Category string

const (
	CategoryTask              Category = "task"
	CategoryIdea              Category = "idea"
	CategoryReminder          Category = "reminder"
	CategoryNote              Category = "note"
	CategoryRecurringReminder Category = "recurring_reminder"
	CategoryKnowledgeQuery    Category = "knowledge_query"
	CategoryWeather           Category = "weather"
	CategoryNews              Category = "news"
	CategoryUncategorized     Category = "uncategorized"
)

// Categories lists every valid category, useful for stats iteration.
var Categories = []Category{
	CategoryTask,
	CategoryIdea,
	CategoryReminder,
	CategoryNote,
	CategoryRecurringReminder,
	CategoryKnowledgeQuery,
	CategoryWeather,
	CategoryNews,
	CategoryUncategorized,
}

// IsLookup reports whether the category is answered by an external lookup
// instead of a journal write.
func (c Category) IsLookup() bool {
	return c == CategoryKnowledgeQuery || c == CategoryWeather || c == CategoryNews
}
