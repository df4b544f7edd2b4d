// Copyright 2025 Docuverse
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


package retrieval

import "errors"

var (
	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrInvalidWeights is returned when the hybrid weights do not sum to 1.0.
	ErrInvalidWeights = errors.New("hybrid weights must sum to 1.0")

	// ErrBuildFailed indicates the retrieval index could not be constructed.
	// This is fatal for the request; no answer can be produced.
	ErrBuildFailed = errors.New("retrieval index build failed")

	// ErrQueryFailed indicates an index query failed. Infrastructure
	// failure is deliberately distinct from an empty result: degrading
	// silently would surface as a misleading "no match" downstream.
	ErrQueryFailed = errors.New("retrieval query failed")
)
