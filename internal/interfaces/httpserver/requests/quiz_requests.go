package requests

// CheckAnswerRequest carries the client's selected option for the active
// round.
type CheckAnswerRequest struct {
	SelectedOption string `json:"selected_option" binding:"required"`
}
