// Package domain models synthetic wildlife-disease surveillance records for Kenya.
//
// # Data Source
//
// Records are synthetic. They are produced by the generator package (or loaded
// from a CSV snapshot that the generator wrote earlier) and never come from a
// live feed. The category tables in [DefaultCatalog] mirror the Kenya
// Wildlife Health Watch demo: eight protected areas, ten species, eight
// syndromic categories.
//
// # Record Conventions
//
// Case IDs:
//
//	"<prefix>-<year>-<NNNN>"  →  e.g. "WHW-2024-0042"
//	NNNN is the 1-based generation index, zero-padded to four digits. IDs keep
//	generation order even after the collection is sorted by report date.
//
// Report dates:
//
//	Calendar dates only. Stored as midnight UTC and serialized as YYYY-MM-DD.
//
// Coordinates:
//
//	Region centroid plus independent Gaussian noise (σ = 0.1°) on latitude and
//	longitude, rounded to four decimals. A record's coordinates always derive
//	from its own region.
//
// Severity:
//
//	Ordered Low < Moderate < High < Critical. Animals affected are drawn from a
//	range keyed by severity:
//
//	  Low 1–3 | Moderate 1–5 | High 3–10 | Critical 5–20
//
// Status:
//
//	Active, Resolved or Under Investigation, skewed by how many days have passed
//	since the report: fewer than 14 days leans Active, 60 or more leans Resolved.
//
// Syndrome seasonality:
//
//	Dry months (Jun–Aug) favour Respiratory, wet months (Mar–May, Nov) favour
//	Gastrointestinal, all other months use the shoulder weights.
package domain
