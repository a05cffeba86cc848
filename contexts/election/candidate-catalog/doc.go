// Package candidatecatalog manages candidate records for the election
// context: admin CRUD, CSV bulk import, and the atomic round-2
// qualification replace consumed by the ballot engine.
package candidatecatalog
