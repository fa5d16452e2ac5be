// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

/*
Package store provides the taxonomy and evidence stores used by the pipeline.

Taxonomy stores implement taxonomy.Store and taxonomy.Catalog:

  - BadgerTaxonomyStore: durable, BadgerDB-backed. Learning writes run in a
    read-write transaction and are retried on badger.ErrConflict, so two
    writers for the same topic never lose an update. Applied feedback ids are
    recorded under the topic so re-delivery is a no-op.
  - MemoryTaxonomyStore: mutex-guarded map for tests and ephemeral runs.

Evidence stores implement scoring.EvidenceStore:

  - DuckDBEvidenceStore: historical records in a DuckDB table, queried by topic.
  - MemoryEvidenceStore: in-memory slice per topic.
  - CachedEvidenceStore: expirable LRU in front of another evidence store.

Seed files (YAML) populate both stores at startup; see LoadSeedFile.

BadgerDB key layout:

	topic:<id>                    JSON models.TaxonomyEntry
	kw:<term>\x00<id>             keyword index for FindCandidates
	applied:<id>\x00<feedback>    applied learning writes
*/
package store
