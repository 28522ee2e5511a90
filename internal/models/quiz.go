package models

// FragranceType is one of the three quiz families
type FragranceType string

// Quiz fragrance families
const (
	FragranceTerra FragranceType = "Terra"
	FragranceIgnis FragranceType = "Ignis"
	FragranceAqua  FragranceType = "Aqua"
)

// Votes counts quiz answers per family
type Votes struct {
	Terra int `json:"Terra" binding:"gte=0"`
	Ignis int `json:"Ignis" binding:"gte=0"`
	Aqua  int `json:"Aqua" binding:"gte=0"`
}

// QuizResultsRequest is the body of POST /api/quiz/results
type QuizResultsRequest struct {
	Votes Votes  `json:"votes"`
	Lang  string `json:"lang" binding:"required"`
}

// Winner is a recommended fragrance
type Winner struct {
	FragranceType FragranceType `json:"fragranceType"`
	Title         string        `json:"title"`
	UID           string        `json:"uid,omitempty"`
}

// QuizResultsResponse lists the recommended fragrances
type QuizResultsResponse struct {
	Winners []Winner `json:"winners"`
}
