// Package domain contains the core business entities and errors for the
// corpus knowledge base: chunks, document records, collection profiles and
// the result types returned by the ingestion and retrieval pipelines.
package domain
