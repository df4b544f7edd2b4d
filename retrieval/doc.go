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


// Package retrieval provides hybrid lexical and semantic retrieval
// over document chunk sets.
//
// The Retriever type combines two independent ranking signals:
//   - A BM25 lexical index over tokenized chunk text
//   - A vector index queried by embedding cosine similarity
//
// The two ranked lists are merged by fixed weights into one ordering.
// Indexes are content-addressed by a hash of the chunk set's
// concatenated text: the lexical index is rebuilt per build, the
// vector index is persisted to disk and reloaded on later builds so
// embedding work is never repeated for an unchanged chunk set.
//
// A failure to build or query the vector index is an error, not an
// empty result. Degrading to lexical-only silently would let the
// relevance gate refuse questions the corpus can actually answer.
package retrieval
