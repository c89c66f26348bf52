package models

// TaskBuckets is the display grouping of a user's task collection.
// Every slice is a pure filter over the same snapshot; Notifications
// repeats the overdue predicate without the parent-context expansion
// used by Overdue.
type TaskBuckets struct {
	Today         []Task       `json:"today"`
	Overdue       []Task       `json:"overdue"`
	Pending       []Task       `json:"pending"`
	Completed     []Task       `json:"completed"`
	Notifications []Task       `json:"notifications"`
	Counts        BucketCounts `json:"counts"`
}

// BucketCounts backs the section headers. DueToday and NoDueDate are
// computed with the same predicates as the Today bucket so header
// numbers and list contents never diverge.
type BucketCounts struct {
	DueToday  int `json:"due_today"`
	NoDueDate int `json:"no_due_date"`
	Overdue   int `json:"overdue"`
	Completed int `json:"completed"`
}
