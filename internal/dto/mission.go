package dto

type CreateMissionRequest struct {
	Name         string `json:"name" binding:"required,max=150"`
	Description  string `json:"description" binding:"max=1000"`
	DifficultyID *uint  `json:"difficultyId" binding:"omitnil,min=1"`
	MaxStars     int    `json:"maxStars" binding:"omitempty,min=1,max=5"`
	Experience   int    `json:"experience" binding:"min=0"`
}

type UpdateMissionRequest struct {
	Name         *string `json:"name" binding:"omitnil,min=1,max=150"`
	Description  *string `json:"description" binding:"omitnil,max=1000"`
	DifficultyID *uint   `json:"difficultyId" binding:"omitnil,min=1"`
	MaxStars     *int    `json:"maxStars" binding:"omitnil,min=1,max=5"`
	Experience   *int    `json:"experience" binding:"omitnil,min=0"`
}

// CompleteMissionRequest reports one attempt. Zero stars is a failed attempt.
type CompleteMissionRequest struct {
	Stars      int `json:"stars" binding:"min=0,max=5"`
	Experience int `json:"experience" binding:"min=0"`
}
