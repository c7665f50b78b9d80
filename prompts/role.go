// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package prompts

import (
	"fmt"
	"strings"
)

// Role is the closed set of read-only agent personas.
type Role int

const (
	RoleControls Role = iota
	RoleFrameworks
	RoleMappings
)

// Roles lists every Role.
var Roles = []Role{RoleControls, RoleFrameworks, RoleMappings}

func (r Role) String() string {
	switch r {
	case RoleControls:
		return "Controls"
	case RoleFrameworks:
		return "Frameworks"
	case RoleMappings:
		return "Mappings"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

func (r Role) key() string {
	return strings.ToLower(r.String())
}

// ParseRole resolves a role name case-insensitively.
func ParseRole(s string) (Role, error) {
	for _, r := range Roles {
		if strings.EqualFold(strings.TrimSpace(s), r.String()) {
			return r, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

// AgentParams parameterizes an agent instruction.
type AgentParams struct {
	// App is the application name shown to the agent.
	App string
	// TableNames are the collections the agent may read.
	TableNames []string
	// MethodologyRubric is optional extra guidance appended verbatim.
	MethodologyRubric string
}

type agentData struct {
	AgentParams
	Role string
}

// AgentInstruction renders the instruction text for role.
func (l *Library) AgentInstruction(role Role, params AgentParams) (string, error) {
	text, ok := l.cat.Agents.Roles[role.key()]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
	if params.App == "" {
		params.App = "usecasegen"
	}
	return render(l.agent, agentData{AgentParams: params, Role: strings.TrimSpace(text)})
}
