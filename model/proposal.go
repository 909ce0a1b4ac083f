package model

import "time"

// Proposal statuses
const (
	ProposalDraft     = "Draft"
	ProposalSubmitted = "Submitted"
)

// Opportunity type codes
const (
	OpportunityCodeWithUs   = "code-with-us"
	OpportunitySprintWithUs = "sprint-with-us"
)

// Team is an ordered set of user keys
type Team struct {
	Team []string `json:"team"`
}

// Phases holds the three sprint-with-us phases of a proposal
type Phases struct {
	Inception      Team `json:"inception"`
	Proto          Team `json:"proto"`
	Implementation Team `json:"implementation"`
}

// Proposal is a response to an opportunity on behalf of an org
type Proposal struct {
	Key         string    `json:"_key,omitempty"`
	Rev         string    `json:"_rev,omitempty"`
	Org         string    `json:"org"`
	Opportunity string    `json:"opportunity"`
	Status      string    `json:"status"`
	Phases      Phases    `json:"phases"`
	Updated     time.Time `json:"updated"`
}

// TeamSize returns the aggregate size of all phase teams
func (p *Proposal) TeamSize() int {
	return len(p.Phases.Inception.Team) + len(p.Phases.Proto.Team) + len(p.Phases.Implementation.Team)
}

// Opportunity is the subset of an opportunity needed by proposal rules
type Opportunity struct {
	Key               string    `json:"_key,omitempty"`
	Name              string    `json:"name"`
	OpportunityTypeCd string    `json:"opportunityTypeCd"`
	Deadline          time.Time `json:"deadline"`
}

// IsOpenSprint reports whether the opportunity is sprint-with-us and its
// deadline is strictly after now.
func (o Opportunity) IsOpenSprint(now time.Time) bool {
	return o.OpportunityTypeCd == OpportunitySprintWithUs && o.Deadline.After(now)
}

// ProposalWithOpportunity pairs a proposal with its opportunity document
type ProposalWithOpportunity struct {
	Proposal    Proposal    `json:"proposal"`
	Opportunity Opportunity `json:"opportunity"`
}

// Capability is a skill area an org or user can claim
type Capability struct {
	Key    string   `json:"_key,omitempty"`
	Name   string   `json:"name"`
	Code   string   `json:"code,omitempty"`
	Skills []string `json:"skills,omitempty"`
}

// CapabilitySkill is a single skill within a capability
type CapabilitySkill struct {
	Key  string `json:"_key,omitempty"`
	Name string `json:"name"`
	Code string `json:"code,omitempty"`
}
