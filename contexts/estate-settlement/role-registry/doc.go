// Package roleregistry implements the estate-settlement role registry.
//
// Layering:
// - domain: core entities, invariants, errors
// - application: commands/queries/workers using explicit ports
// - ports: stable boundaries for persistence and event relay
// - adapters: concrete HTTP, memory, and postgres implementations
// - transport: module-private DTOs for HTTP contracts
//
// Boundary notes:
// - Keep this module self-contained under the estate-settlement context.
// - Do not import other context adapters into domain/application.
// - Role assignments are only ever derived from court events and heir
//   delegations; nothing else writes to the registry.
package roleregistry
