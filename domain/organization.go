package domain

// DomainState is the verification state of an organization domain.
type DomainState string

const (
	DomainStateVerified DomainState = "verified"
	DomainStatePending  DomainState = "pending"
	DomainStateFailed   DomainState = "failed"
)

// OrganizationDomain is a domain claimed by an organization, with its
// verification state as reported by the identity provider.
type OrganizationDomain struct {
	Domain string      `json:"domain"`
	State  DomainState `json:"state"`
}

// Organization represents a tenant as known to the identity provider.
type Organization struct {
	ID      string               `json:"id"`
	Name    string               `json:"name"`
	Domains []OrganizationDomain `json:"domains,omitempty"`
}

// RequiresStepUp reports whether switching into this organization forces a
// fresh SSO authentication: true iff at least one domain is verified.
func (o *Organization) RequiresStepUp() bool {
	for _, d := range o.Domains {
		if d.State == DomainStateVerified {
			return true
		}
	}
	return false
}
