package engine

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/okian/matchlog/internal/domain/agent"
	"github.com/okian/matchlog/internal/domain/model"
)

const outfieldPlayers = 10

// parseFormation expands a dash-separated formation like "4-4-2" into the
// eleven roles of a lineup: a goalkeeper, then defenders from the first
// group, forwards from the last, midfielders from everything in between.
func parseFormation(s string) ([]agent.Role, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) < 2 {
		return nil, fmt.Errorf("%w: formation %q needs at least two groups", ErrInvalidConfig, s)
	}

	counts := make([]int, len(parts))
	total := 0
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("%w: formation %q has invalid group %q", ErrInvalidConfig, s, part)
		}
		counts[i] = n
		total += n
	}
	if total != outfieldPlayers {
		return nil, fmt.Errorf("%w: formation %q describes %d outfield players, want %d",
			ErrInvalidConfig, s, total, outfieldPlayers)
	}

	roles := make([]agent.Role, 0, outfieldPlayers+1)
	roles = append(roles, agent.RoleGoalkeeper)
	for i, n := range counts {
		role := agent.RoleMidfielder
		switch i {
		case 0:
			role = agent.RoleDefender
		case len(counts) - 1:
			role = agent.RoleForward
		}
		for j := 0; j < n; j++ {
			roles = append(roles, role)
		}
	}
	return roles, nil
}

// buildTeam creates a full lineup with jerseys assigned in role order,
// goalkeeper first. Attribute rolls consume the match generator in jersey
// order so lineups are reproducible per seed.
func buildTeam(rng *rand.Rand, team model.Team, formation string) ([]*agent.Player, error) {
	roles, err := parseFormation(formation)
	if err != nil {
		return nil, err
	}

	players := make([]*agent.Player, 0, len(roles))
	seen := make(map[int]bool, len(roles))
	for i, role := range roles {
		jersey := i + 1
		if seen[jersey] {
			return nil, fmt.Errorf("%w: duplicate jersey %d on team %s", ErrInvalidConfig, jersey, team)
		}
		seen[jersey] = true
		players = append(players, agent.NewPlayer(rng, team, role, jersey))
	}
	return players, nil
}
