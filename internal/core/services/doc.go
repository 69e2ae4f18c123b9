// Package services implements the driving port interfaces.
// Services contain the ingestion and retrieval pipelines and orchestrate
// calls to driven ports (adapters).
package services
