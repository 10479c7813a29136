package profile

import "fmt"

// Reference is the profile on whose behalf matching is performed.
type Reference struct {
	*Profile

	// DesiredAge is nil when the operator has not set any bounds.
	DesiredAge *AgeRange
	Offset     int
	PageSize   int
}

func NewReference(p *Profile, pageSize int) *Reference {
	return &Reference{
		Profile:  p,
		PageSize: pageSize,
	}
}

// NextPage advances the search offset by one page and returns the new value.
func (r *Reference) NextPage() int {
	r.Offset += r.PageSize
	return r.Offset
}

func (r *Reference) String() string {
	if r.Profile == nil {
		return "reference: <nil>"
	}
	return fmt.Sprintf("reference: %s, offset %d", r.Profile, r.Offset)
}
