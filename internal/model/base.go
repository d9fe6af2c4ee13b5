package model

// Pagination represents common pagination parameters
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// JSONMap represents a generic JSON object
type JSONMap map[string]interface{}
