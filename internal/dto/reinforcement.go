package dto

type QuestionRequest struct {
	DifficultyID uint     `json:"difficultyId" binding:"required,min=1"`
	Grade        string   `json:"grade" binding:"required,oneof=none low medium high"`
	Statement    string   `json:"statement" binding:"required,max=2000"`
	Options      []string `json:"options" binding:"omitempty,max=10,dive,required,max=500"`
	Answer       string   `json:"answer" binding:"required,max=500"`
}

type CreateSessionRequest struct {
	Name         string `json:"name" binding:"required,max=150"`
	Description  string `json:"description" binding:"max=1000"`
	DifficultyID uint   `json:"difficultyId" binding:"required,min=1"`
	Grade        string `json:"grade" binding:"required,oneof=none low medium high"`
	TimeLimit    int    `json:"timeLimit" binding:"required,min=1,max=180"`
	QuestionIDs  []uint `json:"questionIds" binding:"required,min=1,unique,dive,min=1"`
}

type ExportResult struct {
	URL   string `json:"url"`
	Count int    `json:"count"`
}
