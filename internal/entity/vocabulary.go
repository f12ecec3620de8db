package entity

import "strings"

// StatusVocabulary is the pipeline label set shared by validation, aggregation and the dashboard.
type StatusVocabulary struct {
	Statuses          []string
	RequiringFollowUp []string
	Blocks            map[int][]string

	Booked          string
	Converted       string
	AppFailed       string
	ExpectedPayment string
}

const ExpectedAmountCard = "Expected Amount"

func DefaultStatusVocabulary() StatusVocabulary {
	return StatusVocabulary{
		Statuses: []string{
			"New", "In Follow Up", "Expected Payment", "Not Responding", "Yet To Talk",
			"Booked", "Hot", "Warm", "App. Failed", "Converted", "Trial Booked",
			"Successful Trial", "Cold(Joined Other)", "Cold(Price Issue)",
			"Lost (Wrong Info)", "Lost(Irrelevant)",
		},
		RequiringFollowUp: []string{
			"In Follow Up", "Expected Payment", "Not Responding", "Booked", "Hot", "Warm",
			"App. Failed", "Converted", "Trial Booked", "Successful Trial", "Cold(Joined Other)",
		},
		Blocks: map[int][]string{
			2: {"New", "In Follow Up", "Not Responding", "Yet To Talk"},
			3: {"Booked", "Hot", "Warm", "App. Failed", "Converted", ExpectedAmountCard, "Trial Booked", "Successful Trial"},
			4: {"Cold(Joined Other)", "Cold(Price Issue)", "Lost (Wrong Info)", "Lost(Irrelevant)"},
		},
		Booked:          "Booked",
		Converted:       "Converted",
		AppFailed:       "App. Failed",
		ExpectedPayment: "Expected Payment",
	}
}

func (v StatusVocabulary) IsKnown(status string) bool {
	return containsFold(v.Statuses, status)
}

func (v StatusVocabulary) RequiresFollowUp(status string) bool {
	return containsFold(v.RequiringFollowUp, status)
}

// Canonical returns the vocabulary's spelling of status, or status trimmed when it is unknown.
func (v StatusVocabulary) Canonical(status string) string {
	status = strings.TrimSpace(status)
	for _, item := range v.Statuses {
		if strings.EqualFold(item, status) {
			return item
		}
	}
	return status
}

// IsLost matches every "Lost..." label, with or without a qualifier.
func (v StatusVocabulary) IsLost(status string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(status)), "lost")
}

func containsFold(list []string, s string) bool {
	s = strings.TrimSpace(s)
	for _, item := range list {
		if strings.EqualFold(item, s) {
			return true
		}
	}
	return false
}
