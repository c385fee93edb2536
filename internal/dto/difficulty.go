package dto

type CreateDifficultyRequest struct {
	Topic       string `json:"topic" binding:"required,max=100"`
	Description string `json:"description" binding:"max=500"`
}

type UpdateDifficultyRequest struct {
	Topic       *string `json:"topic" binding:"omitnil,min=1,max=100"`
	Description *string `json:"description" binding:"omitnil,max=500"`
}

type GradeRequest struct {
	DifficultyID uint   `json:"difficultyId" binding:"required,min=1"`
	Grade        string `json:"grade" binding:"required,oneof=none low medium high"`
}
