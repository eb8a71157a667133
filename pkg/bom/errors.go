package bom

// ValidationError is a domain precondition failure surfaced to the caller
// verbatim. It aborts the surrounding transaction like any other error but
// maps to a 4xx rather than a 500 at the HTTP layer.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func errDraftExists() error {
	return &ValidationError{Code: "bom_draft_exists", Message: "A draft already exists for this item and level"}
}

func errMissingRates() error {
	return &ValidationError{Code: "bom_missing_rates", Message: "Missing required material rates"}
}

func errNoApprovedSfgBom() error {
	return &ValidationError{Code: "bom_sfg_not_approved", Message: "Selected SFG item has no approved BOM"}
}

func errNotDraft() error {
	return &ValidationError{Code: "bom_not_draft", Message: "Only draft BOMs can be modified"}
}

func errNotApproved() error {
	return &ValidationError{Code: "bom_not_approved", Message: "New versions can only be created from an approved BOM"}
}

func errNotFound() error {
	return &ValidationError{Code: "bom_not_found", Message: "BOM not found"}
}
