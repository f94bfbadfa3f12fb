package models

// ListResponse is the envelope Notion wraps every paginated list in.
type ListResponse[T any] struct {
	Object     string  `json:"object"`
	Results    []T     `json:"results"`
	NextCursor *string `json:"next_cursor"`
	HasMore    bool    `json:"has_more"`
}

// Cursor returns the cursor of the next page, or "" when this was the last one.
func (l *ListResponse[T]) Cursor() string {
	if l == nil || !l.HasMore || l.NextCursor == nil {
		return ""
	}
	return *l.NextCursor
}

type RecordList = ListResponse[Record]

type BlockList = ListResponse[Block]

type ErrorResponse struct {
	Object  string `json:"object"`
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type User struct {
	Object string   `json:"object"`
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Type   string   `json:"type"`
	Bot    *BotInfo `json:"bot,omitempty"`
}

type BotInfo struct {
	WorkspaceName string `json:"workspace_name"`
}

// Photo is the subset of an Unsplash photo the image lookup reads.
type Photo struct {
	ID   string `json:"id"`
	URLs struct {
		Raw     string `json:"raw"`
		Full    string `json:"full"`
		Regular string `json:"regular"`
		Small   string `json:"small"`
	} `json:"urls"`
}
