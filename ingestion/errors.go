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


package ingestion

import "errors"

var (
	// ErrCacheRequired is returned when a chunk cache is not provided.
	ErrCacheRequired = errors.New("chunk cache required")

	// ErrUnsupportedFileType is returned for files with an extension
	// no parser handles.
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrTotalSizeExceeded is returned when the combined size of the
	// input files is over the limit. Checked before any parsing work.
	ErrTotalSizeExceeded = errors.New("total file size exceeds limit")
)
