package domain

// Attempt is one logged try at a route, joined with the route's grade and colour when listed.
type Attempt struct {
	Username  string `json:"Username,omitempty"`
	RID       int64  `json:"RID"`
	Mode      string `json:"Mode_column"` // Flash, Redpoint, Top rope, ...
	AttemptNo int    `json:"AttemptNo"`
	Date      string `json:"Date_column"` // 2006-01-02
	Time      string `json:"Time_column"` // 15:04
	Result    string `json:"Result"`
	Rating    int    `json:"Rating"` // 0-5
	Notes     string `json:"Notes"`
	Video     string `json:"Video,omitempty"`
	Grade     string `json:"Grade,omitempty"`
	Colour    string `json:"Colour,omitempty"`
}

// NewAttempt is the payload for logging an attempt.
type NewAttempt struct {
	RID    int64  `json:"rid"`
	Mode   string `json:"mode"`
	Date   string `json:"date"`
	Time   string `json:"time"`
	Result string `json:"result"`
	Rating int    `json:"rating"`
	Notes  string `json:"notes"`
	Video  string `json:"video,omitempty"`
}
