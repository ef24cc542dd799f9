package entity

// PageInfo mirrors the pagination metadata of the REST responses.
type PageInfo struct {
	Number        int  `json:"number"`
	Size          int  `json:"size"`
	TotalElements int  `json:"totalElements"`
	TotalPages    int  `json:"totalPages"`
	First         bool `json:"first"`
	Last          bool `json:"last"`
}

type PaginatedResponse[T any] struct {
	Content []T      `json:"content"`
	Page    PageInfo `json:"page"`
}
