package api

// Request bodies for the analysis endpoints. Field validation happens in the
// handlers; defaults are applied before dispatch.

type descriptiveRequest struct {
	Variable string    `json:"variable"`
	Probs    []float64 `json:"percentiles,omitempty"`
	Bins     int       `json:"bins,omitempty"`
}

type correlationRequest struct {
	Variables []string `json:"variables"`
	Method    string   `json:"method,omitempty"`  // pearson (default) or spearman
	Tail      string   `json:"tail,omitempty"`    // two (default) or one
	Policy    string   `json:"missing,omitempty"` // listwise (default) or pairwise
}

type partialRequest struct {
	Variables []string `json:"variables"`
	Controls  []string `json:"controls"`
}

type distanceRequest struct {
	Variables []string `json:"variables"`
	Metric    string   `json:"metric,omitempty"` // euclidean default
}

type regressionRequest struct {
	Dependent    string   `json:"dependent"`
	Independents []string `json:"independents"`
}

type errorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}
