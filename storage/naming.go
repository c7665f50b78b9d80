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

package storage

import "fmt"

// Default naming components.
const (
	DefaultStage = "staging"
	DefaultApp   = "fusefy"
)

// Naming derives collection names from a deployment stage and app.
type Naming struct {
	Stage string
	App   string
}

// DefaultNaming returns the staging/fusefy naming.
func DefaultNaming() Naming {
	return Naming{Stage: DefaultStage, App: DefaultApp}
}

// WithDefaults fills blank components from DefaultNaming.
func (n Naming) WithDefaults() Naming {
	if n.Stage == "" {
		n.Stage = DefaultStage
	}
	if n.App == "" {
		n.App = DefaultApp
	}
	return n
}

// Usecases is the per-tenant use case collection.
func (n Naming) Usecases(tenant string) string {
	n = n.WithDefaults()
	return fmt.Sprintf("%s-%s-usecaseAssessments-%s", n.Stage, n.App, tenant)
}

// Frameworks is the risk framework collection.
func (n Naming) Frameworks() string {
	n = n.WithDefaults()
	return fmt.Sprintf("%s-%s-frameworks", n.Stage, n.App)
}

// MethodologyMapping is the methodology and metrics catalogue collection.
func (n Naming) MethodologyMapping() string {
	n = n.WithDefaults()
	return fmt.Sprintf("%s-%s-methodologyMetricsMapping", n.Stage, n.App)
}
