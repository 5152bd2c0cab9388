package response

import "encoding/json"

const (
	MsgReviewAdded   = "Review added successfully"
	MsgReviewUpdated = "Review updated successfully"
	MsgRatingDeleted = "Rating deleted successfully"

	MsgGenreNotFound  = "Genre not found"
	MsgNotEnoughData  = "There is not enough data about you"
	MsgRecommendError = "Failed to compute recommendations"
)

type Recommendation struct {
	BookID int64   `json:"book_id"`
	Title  string  `json:"title"`
	Rating float64 `json:"rating"`
}

// RecommendationResult is either a ranked list, a soft signal in Message,
// or a failure in Error. It marshals to the array in the first case and to
// {"message": ...} or {"error": ...} otherwise.
type RecommendationResult struct {
	Message string
	Error   string
	Items   []Recommendation
}

func (r RecommendationResult) MarshalJSON() ([]byte, error) {
	switch {
	case r.Error != "":
		return json.Marshal(map[string]string{"error": r.Error})
	case r.Message != "":
		return json.Marshal(map[string]string{"message": r.Message})
	case r.Items == nil:
		return []byte("[]"), nil
	default:
		return json.Marshal(r.Items)
	}
}

type ScoreAddResponse struct {
	Message         string               `json:"message"`
	Recommendations RecommendationResult `json:"recommendations"`
}
