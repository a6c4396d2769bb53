// Package services implements the driving ports on top of the driven ports.
//
// Services contain the application logic: the ingestion flow
// (load, chunk, embed, upsert), the four-stage turn pipeline, settings
// persistence, and history inspection. They depend only on domain types and
// port interfaces, never on concrete adapters.
package services
