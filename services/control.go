package services

import (
	"fmt"

	"pk10/database"
	"pk10/models"
)

// ActiveControlConfigs returns the win/loss controls that apply to a period,
// most specific scope first (single_member before agent_chain).
func ActiveControlConfigs(periodNo string) ([]models.WinLossControlConfig, error) {
	var configs []models.WinLossControlConfig
	err := database.DB.
		Where("is_active = ? AND start_period <= ?", true, periodNo).
		Order("created_at ASC").
		Find(&configs).Error
	if err != nil {
		return nil, err
	}

	ordered := make([]models.WinLossControlConfig, 0, len(configs))
	for _, cfg := range configs {
		if cfg.TargetType == models.ControlTargetMember {
			ordered = append(ordered, cfg)
		}
	}
	for _, cfg := range configs {
		if cfg.TargetType == models.ControlTargetAgentChain {
			ordered = append(ordered, cfg)
		}
	}
	return ordered, nil
}

// ResolveControlScope maps a control target to the set of member codes whose
// bets count toward its exposure. An agent_chain target covers every member
// under the agent's subtree.
func ResolveControlScope(cfg *models.WinLossControlConfig) ([]string, error) {
	if cfg.TargetType == models.ControlTargetMember {
		return []string{cfg.TargetCode}, nil
	}
	if cfg.TargetType != models.ControlTargetAgentChain {
		return nil, fmt.Errorf("%w: unknown control target type %q", ErrDataIntegrity, cfg.TargetType)
	}

	agentCodes := []string{cfg.TargetCode}
	frontier := []string{cfg.TargetCode}
	for len(frontier) > 0 {
		var children []models.Agent
		if err := database.DB.Where("parent_code IN ?", frontier).Find(&children).Error; err != nil {
			return nil, err
		}
		frontier = frontier[:0]
		for _, child := range children {
			agentCodes = append(agentCodes, child.AgentCode)
			frontier = append(frontier, child.AgentCode)
		}
	}

	var memberCodes []string
	err := database.DB.Model(&models.Member{}).
		Where("agent_code IN ?", agentCodes).
		Pluck("member_code", &memberCodes).Error
	if err != nil {
		return nil, err
	}
	return memberCodes, nil
}
