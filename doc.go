// Package di is the root of an explicit, reflection-free dependency-injection
// container for Go.
//
// The repository is organised as:
//
//   - di: the container (registry, resolver, lifecycle, typed lookups)
//   - manifest: YAML declarations of bindings, realised against a provider catalog
//   - config, logging: environment configuration and zap loggers for tools
//   - cmd/odi: plan, check, gen and fmt commands over manifests
//   - examples/core: member, order and discount services wired through the container
//
// Wiring stays explicit: providers are plain functions receiving their
// already-built dependencies, and the container only decides when they run.
package di
