package domain

// Rating bounds accepted from users.
const (
	MinRating = 1
	MaxRating = 5

	// LikedThreshold is the lowest rating that counts as a like.
	LikedThreshold = 4
)

// UserRating is the single rating the user gave a prompt.
type UserRating struct {
	PromptID string `json:"promptId"`
	Rating   int    `json:"rating"`
	IsLiked  bool   `json:"isLiked"`
}

// NewUserRating builds a rating record, deriving IsLiked.
func NewUserRating(promptID string, rating int) UserRating {
	return UserRating{
		PromptID: promptID,
		Rating:   rating,
		IsLiked:  rating >= LikedThreshold,
	}
}

// AverageRating returns the mean of the non-zero ratings given to promptID,
// or 0 when there are none.
func AverageRating(ratings map[string]UserRating, promptID string) float64 {
	var sum, n int
	for _, r := range ratings {
		if r.PromptID != promptID || r.Rating == 0 {
			continue
		}
		sum += r.Rating
		n++
	}
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

// ApplyRatings recomputes AverageRating on every prompt that has a user
// rating. Prompts without one keep the value they were loaded with.
func ApplyRatings(prompts []Prompt, ratings map[string]UserRating) {
	if len(ratings) == 0 {
		return
	}
	for i := range prompts {
		if _, ok := ratings[prompts[i].ID]; ok {
			prompts[i].AverageRating = AverageRating(ratings, prompts[i].ID)
		}
	}
}
