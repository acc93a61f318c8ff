package requests

// ResolveAddressRequest asks whether a raw address string refers to a
// known canonical record.
type ResolveAddressRequest struct {
	Address string `json:"address" binding:"required"`
}

// ValidateAddressRequest registers a raw address string: find the
// canonical record for that location or create one.
type ValidateAddressRequest struct {
	Address string `json:"address" binding:"required"`
}

// AppendDescriptionRequest attaches a contributed description to an
// existing canonical address.
type AppendDescriptionRequest struct {
	Content       string `json:"content" binding:"required"`
	ContributorID string `json:"contributor_id,omitempty"`
}
