package types

// Envelope is the uniform response body: {status, message, data}. Error
// responses carry a machine-readable code and optional details instead of
// data.
type Envelope struct {
	Status  string                 `json:"status"`
	Message string                 `json:"message"`
	Data    interface{}            `json:"data,omitempty"`
	Code    string                 `json:"code,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func Success(message string, data interface{}) Envelope {
	return Envelope{
		Status:  "success",
		Message: message,
		Data:    data,
	}
}

func Error(code, message string, details map[string]interface{}) Envelope {
	return Envelope{
		Status:  "error",
		Message: message,
		Code:    code,
		Details: details,
	}
}

// Page wraps a paginated list result.
type Page struct {
	Items    interface{} `json:"items"`
	Total    int64       `json:"total"`
	PageNum  int         `json:"page"`
	PageSize int         `json:"page_size"`
	Pages    int         `json:"pages"`
}

// NewPage computes the page count from the total and size.
func NewPage(items interface{}, total int64, page, pageSize int) Page {
	pages := 0
	if pageSize > 0 {
		pages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return Page{
		Items:    items,
		Total:    total,
		PageNum:  page,
		PageSize: pageSize,
		Pages:    pages,
	}
}
