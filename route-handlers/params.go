package routehandlers

// paramID is the URL parameter name routes.go uses for resource ids.
const paramID = "id"

const dueBackField = "due_back"

// Field limits of catalog records.
const (
	maxNameChars       = 200
	maxPersonNameChars = 100
	maxTitleChars      = 200
	maxSummaryChars    = 1000
	isbnChars          = 13
	maxImprintChars    = 200
	maxUsernameChars   = 150
	minPasswordChars   = 8
)
