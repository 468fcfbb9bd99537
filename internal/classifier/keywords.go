package classifier

import "jobetl/internal/models"

type categoryRule struct {
	category string
	keywords []string
}

// categoryRules is evaluated top to bottom; the order breaks ties and must not change.
var categoryRules = []categoryRule{
	{
		category: models.CategorySoftwareEngineering,
		keywords: []string{
			"software engineer",
			"developer",
			"development",
			"programmer",
			"application engineer",
			"frontend",
			"network engineer",
			"operations engineer",
			"backend",
			"full stack",
			"embedded engineer",
			"firmware engineer",
			"devops engineer",
			"site reliability engineer",
			"sre",
			"cyber security",
			"cloud engineer",
			"solutions engineer",
			"application engineer",
		},
	},
	{
		category: models.CategoryDataAnalytics,
		keywords: []string{
			"data",
			"analytics",
			"analysis",
			"analyst",
			"machine learning",
			"ml",
			"artificial intelligence",
			"ai",
			"business intelligence",
			"bi developer",
			"statistics",
			"scientist",
			"science",
			"operations research",
			"forecasting",
			"etl",
			"research engineer",
			"database",
			"modeler",
			"warehouse",
			"value",
			"aws",
			"azure",
			"gcp",
			"google cloud",
			"ehs",
			"sap",
		},
	},
	{
		category: models.CategoryComputerIT,
		keywords: []string{
			" it ",
			"computer",
			"support",
			"helpdesk",
			"help desk",
			"infrastracture",
			"administrator",
			"sysadmin",
			"security",
			"technician",
			"product manager",
			"product owner",
			"it manager",
			"it director",
		},
	},
}

type levelRule struct {
	level    string
	keywords []string
}

// levelRules is checked in order; the first rule with a hit wins.
var levelRules = []levelRule{
	{
		level:    models.LevelInternship,
		keywords: []string{"intern", "internship", "trainee", "student"},
	},
	{
		level:    models.LevelEntry,
		keywords: []string{"junior", "jr", "entry", "graduate", "apprentice"},
	},
	{
		level: models.LevelSenior,
		keywords: []string{
			"senior",
			"sr ",
			"sr.",
			"sr-",
			"lead",
			"principal",
			"head",
			"director",
			"vice president",
			"vp",
			"manager",
			"chief",
			"architect",
			"mgr",
			"management",
		},
	},
}
