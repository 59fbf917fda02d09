package internal

// GenerateResponse reports the outcome of a generation request
type GenerateResponse struct {
	Success  bool   `json:"success"`
	ID       string `json:"id,omitempty"`
	VideoURL string `json:"video_url,omitempty"`
	Message  string `json:"message"`
}
