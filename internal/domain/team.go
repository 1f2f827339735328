package domain

import "strings"

// Team identifies the support team a ticket is routed to.
type Team string

const (
	TeamTechnical       Team = "Technical"
	TeamBilling         Team = "Billing"
	TeamSecurity        Team = "Security"
	TeamProduct         Team = "Product"
	TeamCustomerSuccess Team = "Customer Success"
)

// Teams lists the routing targets in their default precedence order.
var Teams = []Team{TeamTechnical, TeamBilling, TeamSecurity, TeamProduct, TeamCustomerSuccess}

// ParseTeam resolves a team name case-insensitively, ignoring spaces and underscores.
func ParseTeam(raw string) (Team, bool) {
	key := normalizeTeamKey(raw)
	for _, team := range Teams {
		if normalizeTeamKey(string(team)) == key {
			return team, true
		}
	}
	return "", false
}

func normalizeTeamKey(raw string) string {
	raw = strings.ToLower(strings.TrimSpace(raw))
	raw = strings.ReplaceAll(raw, "_", "")
	return strings.ReplaceAll(raw, " ", "")
}
