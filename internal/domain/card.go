package domain

// Card is one rendered step/instruction unit produced by the
// formatting layer. Text is already HTML-escaped; raw markup from
// model output is never trusted.
type Card struct {
	Number  int    `json:"number"`
	Text    string `json:"text"`
	Flagged bool   `json:"flagged"`
}
