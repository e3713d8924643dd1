package tools

// NavigateResult is returned by Navigate.
type NavigateResult struct {
	Success      bool   `json:"success"`
	URL          string `json:"url"`
	RequestedURL string `json:"requested_url"`
	Redirected   bool   `json:"redirected"`
	TimeoutMs    int    `json:"timeout_ms"`
	Message      string `json:"message"`
}

// ClickResult is returned by Click.
type ClickResult struct {
	Success  bool   `json:"success"`
	Selector string `json:"selector"`
	Message  string `json:"message"`
}

// TypeTextResult is returned by TypeText.
type TypeTextResult struct {
	Success  bool   `json:"success"`
	Selector string `json:"selector"`
	Message  string `json:"message"`
}

// ScrollResult is returned by Scroll.
type ScrollResult struct {
	Success bool   `json:"success"`
	X       int    `json:"x,omitempty"`
	Y       int    `json:"y,omitempty"`
	Message string `json:"message"`
}

// ScreenshotResult is returned by Screenshot. The base64 field is
// intentionally named Image, not Base64, to match the wire contract.
type ScreenshotResult struct {
	Success   bool   `json:"success"`
	Image     string `json:"image"`
	Format    string `json:"format"`
	SizeBytes int    `json:"size_bytes"`
	Message   string `json:"message"`
}

// ExtractTextResult is returned by ExtractText.
type ExtractTextResult struct {
	Success  bool   `json:"success"`
	Text     string `json:"text"`
	Length   int    `json:"length"`
	Selector string `json:"selector,omitempty"`
	Source   string `json:"source"` // "inner_text" or "html_fallback"
	Message  string `json:"message"`
}

// SearchResult is one entry in a web_search response.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
}
