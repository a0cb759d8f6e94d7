package transcript

// DefaultLimit is used when the request does not set one
const DefaultLimit = 50

// ListTranscriptsRequest represents query parameters for listing records
type ListTranscriptsRequest struct {
	Limit int `query:"limit" validate:"omitempty,min=1,max=500"`
}

// EffectiveLimit returns the requested limit or the default
func (r ListTranscriptsRequest) EffectiveLimit() int {
	if r.Limit == 0 {
		return DefaultLimit
	}
	return r.Limit
}
