package models

// Job categories, in the priority order used for keyword matching.
const (
	CategorySoftwareEngineering = "Software Engineering"
	CategoryDataAnalytics       = "Data and Analytics"
	CategoryComputerIT          = "Computer and IT"
)

// Seniority levels.
const (
	LevelInternship = "Internship"
	LevelEntry      = "Entry Level"
	LevelSenior     = "Senior Level"
	LevelMid        = "Mid Level"
)

// Classification is the category and level inferred from a job title.
type Classification struct {
	Category string `json:"category"`
	Level    string `json:"level"`
}
