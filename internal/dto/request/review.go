package request

// ScoreRequest is the body of score-add and score-update.
type ScoreRequest struct {
	Rating *int `json:"rating" validate:"required,min=1,max=5"`
}
