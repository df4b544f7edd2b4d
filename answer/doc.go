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


// Package answer produces verified answers to questions over a chunk
// set. A Controller sequences three model-backed steps: a relevance
// gate that refuses questions the retrieved material cannot address, a
// research step that drafts an answer with numbered source citations,
// and a verification step that checks the draft against the retrieved
// text and sends unsupported drafts back for another attempt.
//
// The loop is bounded: verification can reject at most a fixed number
// of drafts before the last one is returned with a note. Model-side
// failures never escape the package; each step has a documented
// conservative fallback, so the only errors a caller sees come from
// retrieval or input validation.
package answer
