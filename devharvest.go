// Package devharvest harvests hackathon project listings from Devpost
// galleries. It lists gallery projects, scrapes every project page through
// a resumable fetch-retry loop, enriches projects lacking a description with
// an LLM summary of their GitHub README, and reports coverage.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., rod/, goquery/, sqlite/, gemini/).
package devharvest
