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

// Package mock provides test double implementations of the ai interfaces.
//
// # Usage in Tests
//
//	completer := mock.NewMockCompleter()
//	completer.CompleteFunc = func(ctx context.Context, req ai.Request) (string, error) {
//	    if req.JSONMode {
//	        return `{"modelName": "Churn Predictor"}`, nil
//	    }
//	    return "Category: Machine Learning", nil
//	}
//
//	// Check what the code under test sent
//	reqs := completer.Requests()
//	count := completer.CallCount()
//
// # Default Behavior
//
// Without a CompleteFunc the mock echoes the prompt back, which is enough
// for tests that only care that a call happened.
package mock
