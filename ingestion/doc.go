// Package ingestion parses document files into chunks with source and
// page provenance. Supported formats are PDF, DOCX, markdown, and
// plain text. Parsed chunks are cached per file content hash and
// deduplicated by chunk content across files.
package ingestion
